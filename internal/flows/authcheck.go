package flows

import "context"

// AuthProber is the subset of probe.Prober the auth flow needs.
type AuthProber interface {
	Check(ctx context.Context) AuthProbeResult
}

// AuthProbeResult mirrors probe.Result without importing it.
type AuthProbeResult struct {
	LoggedIn bool
	Status   int
	FinalURL string
	Err      error
	// ErrMessage is the raw transport error text surfaced to callers.
	ErrMessage string
}

// AuthDeps captures auth check flow dependencies.
type AuthDeps struct {
	Prober AuthProber
}

// AuthCheckResult is the outcome of RunAuthCheck.
type AuthCheckResult struct {
	LoggedIn bool
	Status   int
	FinalURL string
	Err      error
	ErrMsg   string
}

// RunAuthCheck probes once. A transport failure forces LoggedIn to false.
func RunAuthCheck(ctx context.Context, deps AuthDeps) AuthCheckResult {
	res := deps.Prober.Check(ctx)
	if res.Err != nil {
		msg := res.ErrMessage
		if msg == "" {
			msg = res.Err.Error()
		}
		return AuthCheckResult{Err: res.Err, ErrMsg: msg}
	}
	return AuthCheckResult{
		LoggedIn: res.LoggedIn,
		Status:   res.Status,
		FinalURL: res.FinalURL,
	}
}
