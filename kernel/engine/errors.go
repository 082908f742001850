package engine

import "github.com/pkg/errors"

// Sentinel errors for dispatch outcomes. Returned errors wrap one of these; test with errors.Is.
var (
	// ErrActionBlocked indicates the gate refused the action for the current snapshot.
	ErrActionBlocked = errors.New("action blocked")

	// ErrActionCancelled indicates the operator declined the confirmation prompt.
	ErrActionCancelled = errors.New("action cancelled")

	// ErrActionInProgress indicates the same action is already being dispatched.
	ErrActionInProgress = errors.New("action already in progress")

	// ErrActionFailed indicates the launchpad rejected the command or could not be reached.
	ErrActionFailed = errors.New("action failed")

	// ErrInvalidParams indicates fill targets outside the configured limits.
	ErrInvalidParams = errors.New("invalid action parameters")
)
