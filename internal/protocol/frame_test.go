package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReqHeaderRoundTrip(t *testing.T) {
	id := NewRequestId()
	meta := ReqHeaderMeta{
		Method:  "GET",
		Path:    "/api/users?x=1",
		Headers: map[string]string{"Accept": "application/json"},
		HasBody: false,
	}

	encoded, err := EncodeReqHeader(id, meta)
	require.NoError(t, err)

	frame, err := Decode(encoded)
	require.NoError(t, err)

	got, ok := frame.(*ReqHeaderFrame)
	require.True(t, ok)
	require.Equal(t, id, got.ID)
	require.Equal(t, meta, got.Meta)
}

func TestReqBodyChunkRoundTripAnyLength(t *testing.T) {
	id := NewRequestId()
	for _, n := range []int{0, 1, 16 * 1024, 64*1024 + 7} {
		chunk := make([]byte, n)
		for i := range chunk {
			chunk[i] = byte(i)
		}
		encoded := EncodeReqBodyChunk(id, chunk)
		frame, err := Decode(encoded)
		require.NoError(t, err)
		got, ok := frame.(*ReqBodyChunkFrame)
		require.True(t, ok)
		require.Equal(t, chunk, got.Chunk)
	}
}

func TestReqEOFRoundTrip(t *testing.T) {
	id := NewRequestId()
	encoded := EncodeReqEOF(id)
	frame, err := Decode(encoded)
	require.NoError(t, err)
	got, ok := frame.(*ReqEOFFrame)
	require.True(t, ok)
	require.Equal(t, id, got.ID)
}

func TestRespHeaderRoundTrip(t *testing.T) {
	id := NewRequestId()
	headers := map[string][]string{"Set-Cookie": {"a=1", "b=2"}}

	encoded, err := EncodeRespHeader(id, 200, "application/json", headers)
	require.NoError(t, err)

	frame, err := Decode(encoded)
	require.NoError(t, err)
	got, ok := frame.(*RespHeaderFrame)
	require.True(t, ok)
	require.Equal(t, id, got.ID)
	require.Equal(t, 200, got.Status)
	require.Equal(t, "application/json", got.ContentType)
	require.Equal(t, headers, got.Headers)
}

func TestRespHeaderMalformedHeaderJSONFallsBackToEmptyMap(t *testing.T) {
	id := NewRequestId()
	buf := make([]byte, 0)
	encoded, err := EncodeRespHeader(id, 200, "text/plain", map[string][]string{"X": {"1"}})
	require.NoError(t, err)
	buf = append(buf, encoded...)

	// Corrupt the header JSON bytes (last few bytes) without touching
	// the length prefixes, forcing json.Unmarshal to fail.
	for i := len(buf) - 3; i < len(buf); i++ {
		buf[i] = '!'
	}

	frame, err := Decode(buf)
	require.NoError(t, err)
	got, ok := frame.(*RespHeaderFrame)
	require.True(t, ok)
	require.Empty(t, got.Headers)
}

func TestRespBodyChunkRoundTrip(t *testing.T) {
	id := NewRequestId()
	chunk := []byte("hello world")
	encoded := EncodeRespBodyChunk(id, chunk)
	frame, err := Decode(encoded)
	require.NoError(t, err)
	got, ok := frame.(*RespBodyChunkFrame)
	require.True(t, ok)
	require.Equal(t, chunk, got.Chunk)
}

func TestRespEOFRoundTrip(t *testing.T) {
	id := NewRequestId()
	encoded := EncodeRespEOF(id)
	frame, err := Decode(encoded)
	require.NoError(t, err)
	got, ok := frame.(*RespEOFFrame)
	require.True(t, ok)
	require.Equal(t, id, got.ID)
}

func TestHeartbeatRoundTrip(t *testing.T) {
	encoded := EncodeHeartbeat()
	require.Equal(t, []byte{0x00}, encoded)
	frame, err := Decode(encoded)
	require.NoError(t, err)
	_, ok := frame.(*HeartbeatFrame)
	require.True(t, ok)
}

func TestDecodeRejectsShortFrames(t *testing.T) {
	_, err := Decode([]byte{0x01, 0x02, 0x03})
	require.ErrorIs(t, err, ErrMalformedFrame)
}

func TestDecodeDropsUnknownTypeWithoutPanic(t *testing.T) {
	id := NewRequestId()
	buf := make([]byte, headerLen)
	copy(buf[0:16], id.Bytes())
	buf[16] = 0x7f // unknown type
	_, err := Decode(buf)
	require.ErrorIs(t, err, ErrMalformedFrame)
}
