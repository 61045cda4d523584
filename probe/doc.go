// Package probe decides whether the end user is signed in to a remote service by
// issuing one credentialed GET and inspecting where it ended up.
//
// # Classification
//
// [Classify] is a pure function of (status, final URL): a response counts as
// logged in only when the status is 2xx and the URL reached after redirects
// contains none of the login markers ("/login", "/signin" by default). The
// response body is never read.
//
// # Architecture boundaries
//
// This package owns the HTTP client, its cookie jar and the classifier. It does
// NOT store sessions, retry requests or impose timeouts beyond the caller's
// context.
package probe
