// Package protocol implements the multiplexed binary frame wire format
// shared by the Relay and the Agent: encoding, decoding, and the frame
// type constants of the duplex channel protocol.
package protocol

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// FrameType is the one-byte discriminator that follows every frame's
// RequestId (except the standalone heartbeat, which carries neither).
type FrameType byte

const (
	FrameHeartbeat     FrameType = 0x00
	FrameRespHeader    FrameType = 0x01
	FrameRespBodyChunk FrameType = 0x02
	FrameRespEOF       FrameType = 0x03

	FrameReqHeader    FrameType = 0x10
	FrameReqBodyChunk FrameType = 0x11
	FrameReqEOF       FrameType = 0x12
)

func (t FrameType) String() string {
	switch t {
	case FrameHeartbeat:
		return "heartbeat"
	case FrameRespHeader:
		return "resp-header"
	case FrameRespBodyChunk:
		return "resp-body-chunk"
	case FrameRespEOF:
		return "resp-eof"
	case FrameReqHeader:
		return "req-header"
	case FrameReqBodyChunk:
		return "req-body-chunk"
	case FrameReqEOF:
		return "req-eof"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(t))
	}
}

// Frame is implemented by every concrete frame payload.
type Frame interface {
	Type() FrameType
}

// ReqHeaderMeta is the JSON metadata carried by a 0x10 request-header frame.
type ReqHeaderMeta struct {
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Headers map[string]string `json:"headers"`
	HasBody bool              `json:"hasBody"`
}

type ReqHeaderFrame struct {
	ID   RequestId
	Meta ReqHeaderMeta
}

func (*ReqHeaderFrame) Type() FrameType { return FrameReqHeader }

type ReqBodyChunkFrame struct {
	ID    RequestId
	Chunk []byte
}

func (*ReqBodyChunkFrame) Type() FrameType { return FrameReqBodyChunk }

type ReqEOFFrame struct {
	ID RequestId
}

func (*ReqEOFFrame) Type() FrameType { return FrameReqEOF }

type RespHeaderFrame struct {
	ID          RequestId
	Status      int
	ContentType string
	Headers     map[string][]string
}

func (*RespHeaderFrame) Type() FrameType { return FrameRespHeader }

type RespBodyChunkFrame struct {
	ID    RequestId
	Chunk []byte
}

func (*RespBodyChunkFrame) Type() FrameType { return FrameRespBodyChunk }

type RespEOFFrame struct {
	ID RequestId
}

func (*RespEOFFrame) Type() FrameType { return FrameRespEOF }

type HeartbeatFrame struct{}

func (*HeartbeatFrame) Type() FrameType { return FrameHeartbeat }

const headerLen = 17 // 16-byte RequestId + 1-byte type

// EncodeHeartbeat returns the single-byte heartbeat frame.
func EncodeHeartbeat() []byte {
	return []byte{byte(FrameHeartbeat)}
}

// EncodeReqHeader encodes a 0x10 request-header frame.
func EncodeReqHeader(id RequestId, meta ReqHeaderMeta) ([]byte, error) {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("protocol: marshal request metadata: %w", err)
	}
	buf := make([]byte, headerLen+4+len(metaJSON))
	n := writeHeader(buf, id, FrameReqHeader)
	binary.LittleEndian.PutUint32(buf[n:], uint32(len(metaJSON)))
	copy(buf[n+4:], metaJSON)
	return buf, nil
}

// EncodeReqBodyChunk encodes a 0x11 request-body-chunk frame.
func EncodeReqBodyChunk(id RequestId, chunk []byte) []byte {
	buf := make([]byte, headerLen+len(chunk))
	n := writeHeader(buf, id, FrameReqBodyChunk)
	copy(buf[n:], chunk)
	return buf
}

// EncodeReqEOF encodes a 0x12 request-EOF frame.
func EncodeReqEOF(id RequestId) []byte {
	buf := make([]byte, headerLen)
	writeHeader(buf, id, FrameReqEOF)
	return buf
}

// EncodeRespHeader encodes a 0x01 response-header frame.
func EncodeRespHeader(id RequestId, status int, contentType string, headers map[string][]string) ([]byte, error) {
	if headers == nil {
		headers = map[string][]string{}
	}
	hdrJSON, err := json.Marshal(headers)
	if err != nil {
		return nil, fmt.Errorf("protocol: marshal response headers: %w", err)
	}
	ctBytes := []byte(contentType)
	buf := make([]byte, headerLen+4+4+len(ctBytes)+4+len(hdrJSON))
	n := writeHeader(buf, id, FrameRespHeader)
	binary.LittleEndian.PutUint32(buf[n:], uint32(int32(status)))
	n += 4
	binary.LittleEndian.PutUint32(buf[n:], uint32(len(ctBytes)))
	n += 4
	copy(buf[n:], ctBytes)
	n += len(ctBytes)
	binary.LittleEndian.PutUint32(buf[n:], uint32(len(hdrJSON)))
	n += 4
	copy(buf[n:], hdrJSON)
	return buf, nil
}

// EncodeRespBodyChunk encodes a 0x02 response-body-chunk frame.
func EncodeRespBodyChunk(id RequestId, chunk []byte) []byte {
	buf := make([]byte, headerLen+len(chunk))
	n := writeHeader(buf, id, FrameRespBodyChunk)
	copy(buf[n:], chunk)
	return buf
}

// EncodeRespEOF encodes a 0x03 response-EOF frame.
func EncodeRespEOF(id RequestId) []byte {
	buf := make([]byte, headerLen)
	writeHeader(buf, id, FrameRespEOF)
	return buf
}

func writeHeader(buf []byte, id RequestId, t FrameType) int {
	copy(buf[0:16], id.Bytes())
	buf[16] = byte(t)
	return headerLen
}

// Decode parses one logical message into its concrete Frame. An unknown
// type byte yields ErrMalformedFrame so the caller can drop the frame
// silently without terminating the channel, per the forward-compat
// requirement in the spec.
func Decode(data []byte) (Frame, error) {
	if len(data) == 1 && data[0] == byte(FrameHeartbeat) {
		return &HeartbeatFrame{}, nil
	}
	if len(data) < headerLen {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrMalformedFrame, len(data), headerLen)
	}

	id, err := RequestIdFromBytes(data[0:16])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	typ := FrameType(data[16])
	body := data[headerLen:]

	switch typ {
	case FrameReqHeader:
		if len(body) < 4 {
			return nil, fmt.Errorf("%w: req-header missing metaLen", ErrMalformedFrame)
		}
		metaLen := binary.LittleEndian.Uint32(body)
		if uint32(len(body)-4) < metaLen {
			return nil, fmt.Errorf("%w: req-header metaLen %d exceeds frame", ErrMalformedFrame, metaLen)
		}
		var meta ReqHeaderMeta
		if err := json.Unmarshal(body[4:4+metaLen], &meta); err != nil {
			return nil, fmt.Errorf("%w: req-header metadata: %v", ErrMalformedFrame, err)
		}
		if meta.Headers == nil {
			meta.Headers = map[string]string{}
		}
		return &ReqHeaderFrame{ID: id, Meta: meta}, nil

	case FrameReqBodyChunk:
		chunk := append([]byte{}, body...)
		return &ReqBodyChunkFrame{ID: id, Chunk: chunk}, nil

	case FrameReqEOF:
		return &ReqEOFFrame{ID: id}, nil

	case FrameRespHeader:
		if len(body) < 4 {
			return nil, fmt.Errorf("%w: resp-header missing status", ErrMalformedFrame)
		}
		status := int32(binary.LittleEndian.Uint32(body))
		rest := body[4:]
		if len(rest) < 4 {
			return nil, fmt.Errorf("%w: resp-header missing ctLen", ErrMalformedFrame)
		}
		ctLen := binary.LittleEndian.Uint32(rest)
		rest = rest[4:]
		if uint32(len(rest)) < ctLen {
			return nil, fmt.Errorf("%w: resp-header ctLen %d exceeds frame", ErrMalformedFrame, ctLen)
		}
		contentType := string(rest[:ctLen])
		rest = rest[ctLen:]
		if len(rest) < 4 {
			return nil, fmt.Errorf("%w: resp-header missing hdrLen", ErrMalformedFrame)
		}
		hdrLen := binary.LittleEndian.Uint32(rest)
		rest = rest[4:]
		if uint32(len(rest)) < hdrLen {
			return nil, fmt.Errorf("%w: resp-header hdrLen %d exceeds frame", ErrMalformedFrame, hdrLen)
		}
		headers := map[string][]string{}
		if hdrLen > 0 {
			if err := json.Unmarshal(rest[:hdrLen], &headers); err != nil {
				// Deserialization failure of headers JSON falls back to an
				// empty header map and continues, per the spec's failure
				// semantics for this exact case.
				headers = map[string][]string{}
			}
		}
		return &RespHeaderFrame{ID: id, Status: int(status), ContentType: contentType, Headers: headers}, nil

	case FrameRespBodyChunk:
		chunk := append([]byte(nil), body...)
		return &RespBodyChunkFrame{ID: id, Chunk: chunk}, nil

	case FrameRespEOF:
		return &RespEOFFrame{ID: id}, nil

	default:
		return nil, fmt.Errorf("%w: unknown type 0x%02x", ErrMalformedFrame, byte(typ))
	}
}
