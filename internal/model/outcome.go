package model

import "fmt"

// OutcomeStatus is the terminal state of one registration attempt.
type OutcomeStatus string

const (
	StatusRegistered         OutcomeStatus = "registered"
	StatusAlreadyRegistered  OutcomeStatus = "already_registered"
	StatusInvalidTeamSize    OutcomeStatus = "invalid_team_size"
	StatusRegistrationFailed OutcomeStatus = "registration_failed"
)

// Outcome is the result of a registration attempt. Token is set for
// registered and already_registered; Reason for invalid_team_size; Err for
// registration_failed.
type Outcome struct {
	Status OutcomeStatus `json:"status"`
	Token  int           `json:"token,omitempty"`
	Reason string        `json:"reason,omitempty"`
	Err    error         `json:"-"`
}

func Registered(token int) Outcome {
	return Outcome{Status: StatusRegistered, Token: token}
}

func AlreadyRegistered(token int) Outcome {
	return Outcome{Status: StatusAlreadyRegistered, Token: token}
}

func InvalidTeamSize(reason string) Outcome {
	return Outcome{Status: StatusInvalidTeamSize, Reason: reason}
}

func RegistrationFailed(cause error) Outcome {
	return Outcome{Status: StatusRegistrationFailed, Err: cause}
}

// String renders the outcome for logs.
func (o Outcome) String() string {
	switch o.Status {
	case StatusRegistered, StatusAlreadyRegistered:
		return fmt.Sprintf("%s(%d)", o.Status, o.Token)
	case StatusInvalidTeamSize:
		return fmt.Sprintf("%s(%s)", o.Status, o.Reason)
	default:
		return fmt.Sprintf("%s(%v)", o.Status, o.Err)
	}
}
