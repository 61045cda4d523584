package flows

// Deps groups flow dependency sets. Root engine builds this once and delegates
// message handling to the matching flow implementation.
type Deps struct {
	Session SessionDeps
	Auth    AuthDeps
}
