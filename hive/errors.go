package hive

import "errors"

var (
	// ErrNoSuchActor is returned when an operation names a local-ID with
	// no registered actor, and logged when dispatch finds no actor or
	// ambassador for an envelope's target. The error.no_such_actor reply
	// body carries only the target ID, under "to".
	ErrNoSuchActor = errors.New("hive: no such actor")

	// ErrReservedID is returned when CreateActor is asked to use the
	// reserved "hive" local-ID.
	ErrReservedID = errors.New("hive: local-ID \"hive\" is reserved")

	// ErrDuplicateActor is returned when CreateActor is asked to use a
	// local-ID that is already registered.
	ErrDuplicateActor = errors.New("hive: actor ID already registered")

	// ErrUnknownActorClass is returned by the create_actor directive
	// handler when body.class names a constructor nobody registered
	// with RegisterActorClass.
	ErrUnknownActorClass = errors.New("hive: unknown actor class")

	// ErrNotRunning reports that the hive's dispatch loop is not active.
	// No operation in this package returns it.
	ErrNotRunning = errors.New("hive: not running")

	// ErrSenderNotLocal is returned by the register_ambassador directive
	// handler when the message has no sender or the sender's hive does
	// not match this hive.
	ErrSenderNotLocal = errors.New("hive: sender is not local to this hive")

	// ErrAmbassadorMismatch is returned by unregister_ambassador when
	// the sender does not match the currently registered ambassador.
	ErrAmbassadorMismatch = errors.New("hive: sender does not match registered ambassador")
)
