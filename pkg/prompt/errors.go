package prompt

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrNoOptions is returned when a selection field has no visible option.
	ErrNoOptions = errors.New("prompt: no visible options")
)
