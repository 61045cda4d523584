package flows

import "context"

// Service is the centralized flow runner built once by the root engine.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.Session.Store != nil && s.deps.Auth.Prober != nil
}

func (s Service) Store(ctx context.Context, rec []byte) StoreResult {
	return RunStore(ctx, rec, s.deps.Session)
}

func (s Service) Get(ctx context.Context) GetResult {
	return RunGet(ctx, s.deps.Session)
}

func (s Service) Logout(ctx context.Context) error {
	return RunLogout(ctx, s.deps.Session)
}

func (s Service) AuthCheck(ctx context.Context) AuthCheckResult {
	return RunAuthCheck(ctx, s.deps.Auth)
}
