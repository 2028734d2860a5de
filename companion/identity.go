package companion

import (
	"github.com/google/uuid"
)

// Identity names the caller of a turn. Authenticated users and anonymous
// sessions carry the same contract; the engine never special-cases one or
// the other.
type Identity struct {
	// Subject keys the user in storage: an auth subject for signed-in
	// callers, a session id for anonymous ones.
	Subject   string
	Anonymous bool
}

func Authenticated(subject string) Identity {
	return Identity{Subject: subject}
}

// AnonymousSession wraps an existing session id, or mints a fresh one when
// the caller has none yet (first contact without a cookie).
func AnonymousSession(sessionID string) Identity {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	return Identity{Subject: sessionID, Anonymous: true}
}

func (id Identity) valid() bool { return id.Subject != "" }
