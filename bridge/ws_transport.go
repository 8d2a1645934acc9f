package bridge

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
)

// WSTransport frames envelopes as text websocket messages over an
// established *websocket.Conn, for bridging two hives across a network
// boundary. The caller is responsible for the handshake (gorilla's
// websocket.Dialer on the connecting side, websocket.Upgrader on the
// accepting side); WSTransport only owns the established connection.
type WSTransport struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	recvCh chan []byte
	errCh  chan error

	closeOnce sync.Once
}

// NewWSTransport wraps an already-established websocket connection.
func NewWSTransport(conn *websocket.Conn) *WSTransport {
	t := &WSTransport{
		conn:   conn,
		recvCh: make(chan []byte, 16),
		errCh:  make(chan error, 1),
	}

	go t.readLoop()

	return t
}

func (t *WSTransport) readLoop() {
	for {
		_, data, err := t.conn.ReadMessage()
		if err != nil {
			t.errCh <- err
			close(t.recvCh)
			close(t.errCh)
			return
		}

		t.recvCh <- data
	}
}

// Send implements Transport.
func (t *WSTransport) Send(ctx context.Context, frame []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	return t.conn.WriteMessage(websocket.TextMessage, frame)
}

// Recv implements Transport.
func (t *WSTransport) Recv(ctx context.Context) (<-chan []byte, <-chan error) {
	return t.recvCh, t.errCh
}

// Close implements Transport.
func (t *WSTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		err = t.conn.Close()
	})
	return err
}
