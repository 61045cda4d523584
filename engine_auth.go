package goRelay

import (
	"context"
	"strconv"
	"time"

	"github.com/MrEthical07/goRelay/internal/flows"
)

// CheckAuth probes the configured URL with ambient credentials and reports
// whether the user is signed in. Transport failures return false and an error
// wrapping [ErrTransport]; a completed probe never returns an error.
func (e *Engine) CheckAuth(ctx context.Context) (bool, error) {
	if !e.ready() {
		return false, ErrEngineNotReady
	}
	ctx = e.prepare(ctx, Message{Type: TypeAuthCheck})
	loggedIn, _, err := e.checkAuth(ctx)
	return loggedIn, err
}

func (e *Engine) handleAuthCheck(ctx context.Context) Response {
	loggedIn, msg, err := e.checkAuth(ctx)
	if err != nil {
		return Response{Type: TypeAuthCheck, LoggedIn: false, Error: msg}
	}
	return Response{Type: TypeAuthCheck, LoggedIn: loggedIn}
}

func (e *Engine) checkAuth(ctx context.Context) (bool, string, error) {
	log := e.logger.With("request_id", requestIDFromContext(ctx), "type", string(TypeAuthCheck))

	start := time.Now()
	res := e.probe(ctx)
	if e.metrics.LatencyEnabled() {
		e.metrics.Observe(MetricProbeLatency, time.Since(start))
	}

	if res.Err != nil {
		e.metricInc(MetricAuthCheckTransportFailure)
		log.ErrorContext(ctx, "auth probe failed", "url", e.prober.URL(), "error", res.Err)
		e.emitAudit(ctx, TypeAuthCheck, auditEventAuthCheck, false, res.Err, nil)
		return false, res.ErrMsg, res.Err
	}

	if res.LoggedIn {
		e.metricInc(MetricAuthCheckLoggedIn)
	} else {
		e.metricInc(MetricAuthCheckLoggedOut)
	}
	log.DebugContext(ctx, "auth probe classified",
		"status", res.Status,
		"final_url", res.FinalURL,
		"logged_in", res.LoggedIn,
	)
	e.emitAudit(ctx, TypeAuthCheck, auditEventAuthCheck, true, nil, map[string]string{
		"logged_in": boolString(res.LoggedIn),
		"status":    strconv.Itoa(res.Status),
	})
	return res.LoggedIn, "", nil
}

// probe runs one auth check. With Probe.Coalesce set, callers arriving while a
// probe is in flight share its result. The shared request keeps the first
// caller's values but not its cancellation, so one caller going away does not
// fail the others.
func (e *Engine) probe(ctx context.Context) flows.AuthCheckResult {
	if !e.config.Probe.Coalesce {
		return e.flows.AuthCheck(ctx)
	}
	detached := context.WithoutCancel(ctx)
	v, _, shared := e.probes.Do("auth", func() (any, error) {
		return e.flows.AuthCheck(detached), nil
	})
	if shared {
		e.logger.DebugContext(ctx, "auth probe shared with concurrent check", "request_id", requestIDFromContext(ctx))
	}
	return v.(flows.AuthCheckResult)
}
