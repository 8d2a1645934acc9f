package actor

import "errors"

var (
	// ErrUnregisteredDirective is logged (not returned to the caller of
	// Deliver) when an envelope names a directive the actor has not
	// registered a handler for. Auto-reply still fires when requested.
	ErrUnregisteredDirective = errors.New("actor: unregistered directive")

	// ErrHandlerFault wraps a panic recovered from a handler or a
	// resumed continuation.
	ErrHandlerFault = errors.New("actor: handler fault")
)
