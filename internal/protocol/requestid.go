package protocol

import (
	"fmt"

	"github.com/google/uuid"
)

// RequestId is the 128-bit opaque identifier that correlates every frame
// of one public request across both directions of the duplex channel.
type RequestId uuid.UUID

// NewRequestId draws a fresh, uniformly random RequestId.
func NewRequestId() RequestId {
	return RequestId(uuid.New())
}

// String renders the canonical hyphenated hex form.
func (id RequestId) String() string {
	return uuid.UUID(id).String()
}

// Bytes returns the 16 raw bytes, in the order they appear on the wire.
func (id RequestId) Bytes() []byte {
	b := uuid.UUID(id)
	return b[:]
}

// RequestIdFromBytes parses the first 16 bytes of b into a RequestId.
func RequestIdFromBytes(b []byte) (RequestId, error) {
	if len(b) < 16 {
		return RequestId{}, fmt.Errorf("protocol: short request id (%d bytes)", len(b))
	}
	var u uuid.UUID
	copy(u[:], b[:16])
	return RequestId(u), nil
}
