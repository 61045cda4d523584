package probe

import "strings"

// DefaultLoginMarkers are the path fragments that identify a login page.
var DefaultLoginMarkers = []string{"/login", "/signin"}

// Classify reports whether a probe response indicates an authenticated user.
// With no markers supplied, [DefaultLoginMarkers] are used.
func Classify(status int, finalURL string, markers ...string) bool {
	if status < 200 || status > 299 {
		return false
	}
	if len(markers) == 0 {
		markers = DefaultLoginMarkers
	}
	for _, m := range markers {
		if m != "" && strings.Contains(finalURL, m) {
			return false
		}
	}
	return true
}
