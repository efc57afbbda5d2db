package policy

import (
	"errors"
	"fmt"
)

// Action is the kind of access being requested.
type Action int

const (
	ActionRead Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionRead:
		return "read"
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Outcome of a policy evaluation.
type Outcome int

const (
	Deny Outcome = iota
	Allow
	NotFound
)

// Reason explains a Deny. Callers surface each reason with a different message.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonUnauthenticated   Reason = "unauthenticated"
	ReasonRole              Reason = "role"
	ReasonOwnership         Reason = "ownership"
	ReasonEditWindowExpired Reason = "edit_window_expired"
	ReasonSelfTarget        Reason = "self_target"
)

var (
	// ErrForbidden is matched by every *DeniedError.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when the decision target did not resolve.
	ErrNotFound = errors.New("not found")
)

// Decision is the result of evaluating one rule.
type Decision struct {
	Outcome Outcome
	Reason  Reason
	Message string
	// HoursAgo is set for ReasonEditWindowExpired: whole hours since the comment was posted.
	HoursAgo int
}

func (d Decision) Allowed() bool { return d.Outcome == Allow }

// Err converts the decision into nil, ErrNotFound or a *DeniedError.
func (d Decision) Err() error {
	switch d.Outcome {
	case Allow:
		return nil
	case NotFound:
		if d.Message == "" {
			return ErrNotFound
		}
		return notFoundError(d.Message)
	}
	return &DeniedError{Reason: d.Reason, Message: d.Message, HoursAgo: d.HoursAgo}
}

// DeniedError carries the human readable reason for a policy denial.
type DeniedError struct {
	Reason   Reason
	Message  string
	HoursAgo int
}

func (e *DeniedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "forbidden: " + string(e.Reason)
}

func (e *DeniedError) Is(target error) bool { return target == ErrForbidden }

// notFoundError keeps the "<what> not found" message while matching ErrNotFound.
type notFoundError string

func (e notFoundError) Error() string        { return string(e) }
func (e notFoundError) Is(target error) bool { return target == ErrNotFound }

func allow() Decision { return Decision{Outcome: Allow} }

func notFound(what string) Decision {
	return Decision{Outcome: NotFound, Message: what + " not found"}
}

func deny(reason Reason, msg string) Decision {
	return Decision{Outcome: Deny, Reason: reason, Message: msg}
}

func unauthenticated() Decision {
	return deny(ReasonUnauthenticated, "You must be signed in to do that.")
}
