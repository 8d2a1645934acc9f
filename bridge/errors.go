package bridge

import "errors"

var (
	// ErrTransportDecode is returned (and logged, with the frame
	// dropped) when a frame read off a transport cannot be decoded into
	// an envelope.
	ErrTransportDecode = errors.New("bridge: failed to decode transport frame")

	// ErrTransportClosed names the use of a transport after Close. None of
	// the transports in this package returns it: after Close, a
	// newline-framed or websocket Send fails with the underlying pipe or
	// socket error, and a ChannelTransport Send panics on its closed
	// channel.
	ErrTransportClosed = errors.New("bridge: transport closed")
)
