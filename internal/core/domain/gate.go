package domain

// GateState is the admin authorization gate's state.
type GateState string

const (
	GateChecking              GateState = "checking"
	GateUnauthenticated       GateState = "unauthenticated"
	GateAuthenticatedNonAdmin GateState = "authenticated_non_admin"
	GateAuthorized            GateState = "authorized"
)

// terminalStates are the states a check may settle on. CHECKING is only ever
// the initial state; a re-check after a session event moves directly between
// terminal states.
var terminalStates = map[GateState]struct{}{
	GateUnauthenticated:       {},
	GateAuthenticatedNonAdmin: {},
	GateAuthorized:            {},
}

// IsTerminal reports whether s is a settled result of a check.
func (s GateState) IsTerminal() bool {
	_, ok := terminalStates[s]
	return ok
}

// CanTransitionTo reports whether the gate may move from s to next.
func (s GateState) CanTransitionTo(next GateState) bool {
	if !next.IsTerminal() {
		return false
	}
	return s == GateChecking || s.IsTerminal()
}

// AllowsAdmin reports whether admin content may be rendered in state s.
func (s GateState) AllowsAdmin() bool {
	return s == GateAuthorized
}

// CheckAccess decides the gate state from a resolved identity and its
// profile. A nil identity means there is no valid session. It is pure: the
// same inputs always produce the same state.
func CheckAccess(identity *Identity, profile *Profile) GateState {
	switch {
	case identity == nil:
		return GateUnauthenticated
	case profile == nil || profile.ID != identity.ID || !profile.IsAdmin:
		return GateAuthenticatedNonAdmin
	default:
		return GateAuthorized
	}
}
