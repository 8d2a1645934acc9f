// Package bridge implements the inter-hive side of the runtime: a pluggable
// byte-stream Transport, the Ambassador actor that sits at each end of one,
// and the PeerHive wrapper that lets two hives forward envelopes across a
// process or machine boundary while each stays single-threaded internally.
package bridge

import (
	"bufio"
	"context"
	"io"
	"sync"
)

// Transport moves opaque, newline-free frames between this hive's ambassador
// and its counterpart on the other side of a process or network boundary.
// Implementations decide their own framing; Ambassador only ever deals in
// whole frames, each one the JSON encoding of an envelope's wire map.
type Transport interface {
	// Send writes one frame. It may block until the frame is accepted by
	// the underlying channel, pipe, or socket.
	Send(ctx context.Context, frame []byte) error

	// Recv returns the channel frames arrive on and the channel transport
	// errors (including EOF) are reported on. Both are closed once the
	// transport can no longer produce data. Recv may be called more than
	// once; it always returns the same pair of channels.
	Recv(ctx context.Context) (<-chan []byte, <-chan error)

	// Close releases the transport's underlying resources. It is safe to
	// call more than once.
	Close() error
}

// ChannelTransport is an in-process Transport backed by a pair of Go
// channels, the bridge-package counterpart to the teacher's channel-backed
// in-process mailbox: no serialization boundary is actually required
// in-process, but Ambassador always frames through JSON regardless of
// transport so that swapping in a ProcessTransport or WSTransport later
// changes nothing else.
type ChannelTransport struct {
	out   chan []byte
	in    chan []byte
	errCh chan error

	closeOnce sync.Once
}

// NewChannelTransportPair returns two ChannelTransports wired to each
// other's inbox, suitable for bridging two in-process hives without an
// external process or socket.
func NewChannelTransportPair(bufSize int) (a, b *ChannelTransport) {
	toB := make(chan []byte, bufSize)
	toA := make(chan []byte, bufSize)

	a = &ChannelTransport{out: toB, in: toA, errCh: make(chan error)}
	b = &ChannelTransport{out: toA, in: toB, errCh: make(chan error)}

	return a, b
}

// Send implements Transport.
func (c *ChannelTransport) Send(ctx context.Context, frame []byte) error {
	select {
	case c.out <- frame:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recv implements Transport. The data channel closes when the peer calls
// Close; the error channel never carries an error and is never closed.
func (c *ChannelTransport) Recv(ctx context.Context) (<-chan []byte, <-chan error) {
	return c.in, c.errCh
}

// Close implements Transport. Only the sending side of the pair is closed;
// the peer observes this as its Recv data channel draining and closing.
func (c *ChannelTransport) Close() error {
	c.closeOnce.Do(func() {
		close(c.out)
	})
	return nil
}

// newlineFramer implements newline-delimited framing over an arbitrary
// io.Reader/io.Writer pair, the shared machinery behind ProcessTransport's
// stdin/stdout pipes. It is exercised directly in tests via io.Pipe, and by
// ProcessTransport against a subprocess's pipes.
type newlineFramer struct {
	w io.Writer

	writeMu sync.Mutex

	recvCh chan []byte
	errCh  chan error

	closer    io.Closer
	closeOnce sync.Once
}

func newNewlineFramer(r io.Reader, w io.Writer, closer io.Closer) *newlineFramer {
	f := &newlineFramer{
		w:      w,
		recvCh: make(chan []byte, 16),
		errCh:  make(chan error, 1),
		closer: closer,
	}

	go f.readLoop(r)

	return f
}

func (f *newlineFramer) readLoop(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	for scanner.Scan() {
		line := append([]byte(nil), scanner.Bytes()...)
		f.recvCh <- line
	}

	if err := scanner.Err(); err != nil {
		f.errCh <- err
	}

	close(f.recvCh)
	close(f.errCh)
}

func (f *newlineFramer) Send(ctx context.Context, frame []byte) error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	_, err := f.w.Write(append(append([]byte(nil), frame...), '\n'))
	return err
}

func (f *newlineFramer) Recv(ctx context.Context) (<-chan []byte, <-chan error) {
	return f.recvCh, f.errCh
}

func (f *newlineFramer) Close() error {
	var err error
	f.closeOnce.Do(func() {
		if f.closer != nil {
			err = f.closer.Close()
		}
	})
	return err
}
