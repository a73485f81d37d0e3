package sandbox

import "github.com/google/uuid"

// validatorSession is the subset of *Session a Validator needs, so tests
// can substitute a fake without spawning a real PTY.
type validatorSession interface {
	Validate(cmdLine string) Outcome
	SessionID() uuid.UUID
}

// SessionID identifies the long-lived shell backing this Session, so a
// restarted sandbox's log lines are never mistaken for the dead session's.
func (s *Session) SessionID() uuid.UUID { return s.ID }

// Validator runs candidate commands against a Session and reports a
// classification verdict (§4.2 rule 7). It exists as a thin seam over
// Session so the classification rules can be exercised without a real PTY.
type Validator struct {
	session validatorSession
}

// NewValidator wraps session for classification use.
func NewValidator(session *Session) *Validator {
	return &Validator{session: session}
}

// Classify validates cmdLine and returns the verdict plus whatever output
// accumulated, for the caller to fold into an ipc.Record.
func (v *Validator) Classify(cmdLine string) Outcome {
	return v.session.Validate(cmdLine)
}
