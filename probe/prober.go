package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"

	"golang.org/x/net/publicsuffix"
)

// DefaultURL is the page probed to detect an authenticated session.
const DefaultURL = "https://referenceradar.com/create-reference"

// ErrTransport wraps failures to complete the probe request.
var ErrTransport = errors.New("auth probe transport failure")

// maxDrain bounds how much of an unread body is consumed to allow connection reuse.
const maxDrain = 64 << 10

// Result is the outcome of one probe.
type Result struct {
	LoggedIn bool
	Status   int
	FinalURL string
	// Err is non-nil only for transport failures; it wraps [ErrTransport].
	Err error
}

// ErrorMessage returns the raw transport error text, or "" when the probe completed.
func (r Result) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	var te *transportError
	if errors.As(r.Err, &te) {
		return te.cause.Error()
	}
	return r.Err.Error()
}

type transportError struct {
	cause error
}

func (e *transportError) Error() string { return fmt.Sprintf("%v: %v", ErrTransport, e.cause) }
func (e *transportError) Unwrap() []error { return []error{ErrTransport, e.cause} }

// Prober issues credentialed GET requests against a fixed URL.
type Prober struct {
	client  *http.Client
	url     string
	markers []string
}

// Option customizes a [Prober].
type Option func(*Prober)

// WithClient replaces the HTTP client. A client without a cookie jar sends no
// ambient cookies.
func WithClient(c *http.Client) Option {
	return func(p *Prober) {
		if c != nil {
			p.client = c
		}
	}
}

// WithLoginMarkers replaces [DefaultLoginMarkers].
func WithLoginMarkers(markers ...string) Option {
	return func(p *Prober) {
		if len(markers) > 0 {
			p.markers = append([]string(nil), markers...)
		}
	}
}

// New builds a Prober for url. The default client follows redirects and carries
// a public-suffix aware cookie jar so cookies are scoped per origin.
func New(url string, opts ...Option) (*Prober, error) {
	if url == "" {
		url = DefaultURL
	}
	jar, err := NewCookieJar()
	if err != nil {
		return nil, err
	}

	p := &Prober{
		client:  &http.Client{Jar: jar},
		url:     url,
		markers: DefaultLoginMarkers,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// NewCookieJar returns an in-memory jar using the public suffix list.
func NewCookieJar() (http.CookieJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return jar, nil
}

// URL returns the probed URL.
func (p *Prober) URL() string {
	return p.url
}

// Jar exposes the client's cookie jar so hosts can seed ambient credentials.
func (p *Prober) Jar() http.CookieJar {
	return p.client.Jar
}

// Check performs the probe. Transport failures are reported in [Result.Err],
// never as a panic or a second return value, so callers always get one Result.
func (p *Prober) Check(ctx context.Context) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return Result{Err: &transportError{cause: err}}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Result{Err: &transportError{cause: err}}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))

	finalURL := p.url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return Result{
		LoggedIn: Classify(resp.StatusCode, finalURL, p.markers...),
		Status:   resp.StatusCode,
		FinalURL: finalURL,
	}
}
