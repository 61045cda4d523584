package probe

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrCookieFile is returned when a cookie file cannot be parsed.
var ErrCookieFile = errors.New("invalid cookie file")

const httpOnlyPrefix = "#HttpOnly_"

// jsonCookie is one entry of a browser cookie export. Both "expires" and
// "expirationDate" are unix seconds.
type jsonCookie struct {
	Name           string  `json:"name"`
	Value          string  `json:"value"`
	Domain         string  `json:"domain"`
	Path           string  `json:"path"`
	Secure         bool    `json:"secure"`
	HTTPOnly       bool    `json:"httpOnly"`
	HostOnly       bool    `json:"hostOnly"`
	Expires        float64 `json:"expires"`
	ExpirationDate float64 `json:"expirationDate"`
}

// LoadCookieFile seeds jar from a Netscape cookies.txt file or a JSON array of
// cookie objects and returns how many cookies were set. Expired entries are
// skipped.
func LoadCookieFile(jar http.CookieJar, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open cookie file: %w", err)
	}
	defer f.Close()
	return LoadCookies(jar, f, time.Now())
}

// LoadCookies is [LoadCookieFile] over a reader. now decides expiry.
func LoadCookies(jar http.CookieJar, r io.Reader, now time.Time) (int, error) {
	if jar == nil {
		return 0, errors.New("nil cookie jar")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read cookie file: %w", err)
	}

	var entries []seeded
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		entries, err = parseJSONCookies(trimmed)
	} else {
		entries, err = parseNetscapeCookies(data)
	}
	if err != nil {
		return 0, err
	}

	set := 0
	for _, e := range entries {
		if !e.cookie.Expires.IsZero() && !e.cookie.Expires.After(now) {
			continue
		}
		jar.SetCookies(e.origin(), []*http.Cookie{e.cookie})
		set++
	}
	return set, nil
}

// seeded is a parsed cookie and the host it was recorded for.
type seeded struct {
	host   string
	cookie *http.Cookie
}

// origin is the URL the cookie is set from. Secure cookies are set over https.
func (s seeded) origin() *url.URL {
	scheme := "http"
	if s.cookie.Secure {
		scheme = "https"
	}
	return &url.URL{Scheme: scheme, Host: s.host, Path: "/"}
}

// newSeeded builds a seeded cookie. Host-only entries keep Domain empty so the
// jar scopes them to the exact host.
func newSeeded(domain string, hostOnly bool, c *http.Cookie) (seeded, error) {
	host := strings.TrimPrefix(strings.TrimSpace(domain), ".")
	if host == "" {
		return seeded{}, errors.New("missing domain")
	}
	if c.Name == "" {
		return seeded{}, errors.New("missing name")
	}
	if !hostOnly {
		c.Domain = host
	}
	if c.Path == "" {
		c.Path = "/"
	}
	return seeded{host: host, cookie: c}, nil
}

func parseNetscapeCookies(data []byte) ([]seeded, error) {
	var out []seeded
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")

		httpOnly := false
		if strings.HasPrefix(text, httpOnlyPrefix) {
			httpOnly = true
			text = strings.TrimPrefix(text, httpOnlyPrefix)
		}
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) != 7 {
			return nil, fmt.Errorf("%w: line %d has %d fields, want 7", ErrCookieFile, line, len(fields))
		}
		expires, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d expiry %q", ErrCookieFile, line, fields[4])
		}

		c := &http.Cookie{
			Name:     fields[5],
			Value:    fields[6],
			Path:     fields[2],
			Secure:   strings.EqualFold(fields[3], "TRUE"),
			HttpOnly: httpOnly,
		}
		if expires > 0 {
			c.Expires = time.Unix(expires, 0)
		}
		e, err := newSeeded(fields[0], !strings.EqualFold(fields[1], "TRUE"), c)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrCookieFile, line, err)
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCookieFile, err)
	}
	return out, nil
}

func parseJSONCookies(data []byte) ([]seeded, error) {
	var entries []jsonCookie
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCookieFile, err)
	}

	out := make([]seeded, 0, len(entries))
	for i, j := range entries {
		c := &http.Cookie{
			Name:     j.Name,
			Value:    j.Value,
			Path:     j.Path,
			Secure:   j.Secure,
			HttpOnly: j.HTTPOnly,
		}
		exp := j.ExpirationDate
		if exp == 0 {
			exp = j.Expires
		}
		if exp > 0 {
			c.Expires = time.Unix(int64(exp), 0)
		}
		hostOnly := j.HostOnly || !strings.HasPrefix(j.Domain, ".")
		e, err := newSeeded(j.Domain, hostOnly, c)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrCookieFile, i, err)
		}
		out = append(out, e)
	}
	return out, nil
}
