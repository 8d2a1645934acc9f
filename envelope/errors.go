package envelope

import "errors"

var (
	// ErrMissingField is returned by New when a required field is empty.
	ErrMissingField = errors.New("envelope: missing required field")

	// ErrNoHiveProxy is returned by Reply when the message has no
	// attached hive capability to send the reply through.
	ErrNoHiveProxy = errors.New("envelope: no hive proxy attached")

	// ErrNoSender is returned by Reply when the message being replied to
	// has no FromID, so there is nowhere to address the reply.
	ErrNoSender = errors.New("envelope: cannot reply, message has no sender")
)
