package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/xudd/xudd/envelope"
)

// encodeFrame serializes m's wire map as a single JSON frame.
func encodeFrame(m *envelope.Message) ([]byte, error) {
	return jsonMarshalWire(m.ToWireMap())
}

// jsonMarshalWire serializes an already-built envelope wire map, the path
// taken when an inner envelope arrives as a forward_message body and so has
// already gone through Message.ToWireMap once.
func jsonMarshalWire(wire map[string]any) ([]byte, error) {
	frame, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("bridge: encode frame: %w", err)
	}

	return frame, nil
}

// decodeFrame reconstructs a Message from a JSON frame produced by
// encodeFrame on the peer side.
func decodeFrame(frame []byte) (*envelope.Message, error) {
	var wire map[string]any
	if err := json.Unmarshal(frame, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransportDecode, err)
	}

	m, err := envelope.FromWireMap(wire)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransportDecode, err)
	}

	return m, nil
}
