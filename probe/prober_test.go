package probe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func newTestProber(t *testing.T, target string, opts ...Option) *Prober {
	t.Helper()
	p, err := New(target, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

func TestCheckLoggedInWhenTargetServed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>create reference</html>"))
	}))
	defer srv.Close()

	res := newTestProber(t, srv.URL+"/create-reference").Check(context.Background())
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if !res.LoggedIn {
		t.Fatalf("expected logged in, got %+v", res)
	}
	if !strings.HasSuffix(res.FinalURL, "/create-reference") {
		t.Fatalf("unexpected final URL %q", res.FinalURL)
	}
}

func TestCheckFollowsRedirectToLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/create-reference", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login?next=/create-reference", http.StatusFound)
	})
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	res := newTestProber(t, srv.URL+"/create-reference").Check(context.Background())
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.LoggedIn {
		t.Fatal("expected logged out after login redirect")
	}
	if res.Status != http.StatusOK {
		t.Fatalf("expected final status 200, got %d", res.Status)
	}
	if !strings.Contains(res.FinalURL, "/login") {
		t.Fatalf("expected final URL to be the login page, got %q", res.FinalURL)
	}
}

func TestCheckUnauthorizedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	res := newTestProber(t, srv.URL+"/create-reference").Check(context.Background())
	if res.Err != nil || res.LoggedIn {
		t.Fatalf("expected logged out without error, got %+v", res)
	}
}

func TestCheckSendsAmbientCookies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("sb-access-token"); err != nil || c.Value != "tok" {
			http.Redirect(w, r, "/signin", http.StatusSeeOther)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := newTestProber(t, srv.URL+"/create-reference")

	if res := p.Check(context.Background()); res.LoggedIn {
		t.Fatal("expected logged out without cookie")
	}

	u, _ := url.Parse(srv.URL)
	p.Jar().SetCookies(u, []*http.Cookie{{Name: "sb-access-token", Value: "tok", Path: "/"}})

	if res := p.Check(context.Background()); !res.LoggedIn {
		t.Fatalf("expected logged in with cookie, got %+v", res)
	}
}

func TestCheckConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	target := srv.URL + "/create-reference"
	srv.Close()

	res := newTestProber(t, target).Check(context.Background())
	if res.LoggedIn {
		t.Fatal("expected logged out on transport failure")
	}
	if !errors.Is(res.Err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", res.Err)
	}
	if !strings.Contains(res.ErrorMessage(), "connection refused") {
		t.Fatalf("expected raw connection refused message, got %q", res.ErrorMessage())
	}
}

func TestCheckCanceledContextIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newTestProber(t, srv.URL).Check(ctx)
	if !errors.Is(res.Err, ErrTransport) || !errors.Is(res.Err, context.Canceled) {
		t.Fatalf("expected transport error wrapping context.Canceled, got %v", res.Err)
	}
}

func TestNewDefaultsURL(t *testing.T) {
	p := newTestProber(t, "")
	if p.URL() != DefaultURL {
		t.Fatalf("expected default URL, got %q", p.URL())
	}
}

func TestWithClientWithoutJarSendsNoCookies(t *testing.T) {
	p := newTestProber(t, "https://example.invalid", WithClient(&http.Client{}))
	if p.Jar() != nil {
		t.Fatal("expected caller-supplied client without jar to be kept as is")
	}
}
