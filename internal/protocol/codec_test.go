package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	var channel [16]byte
	channel[0] = 1

	req := &MessageRequest{Channel: channel, Message: []byte("hello")}
	frame, err := EncodeResponse(7, req)
	require.NoError(t, err)

	number, payload, err := DecodeRequest(frame)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), number)

	got, ok := payload.(*MessageRequest)
	require.True(t, ok)
	assert.Equal(t, channel, got.Channel)
	assert.Equal(t, []byte("hello"), got.Message)
}

func TestDecodeRequestUnrecognizedKind(t *testing.T) {
	frame, err := EncodeResponse(0, &PingResponse{})
	require.NoError(t, err)

	// PingResponse's kind ("ping") is not a valid request kind on its
	// own; swap in a genuinely unknown kind to exercise the error path.
	_, _, err = DecodeRequest(mustReplaceKind(t, frame, "not-a-real-kind"))
	assert.Error(t, err)
}

func TestDecodeRequestMissingKind(t *testing.T) {
	_, _, err := DecodeRequest([]byte{0x80}) // empty msgpack map
	assert.Error(t, err)
}

func TestEncodeResponseUnrecognizedType(t *testing.T) {
	_, err := EncodeResponse(0, struct{ Foo string }{Foo: "bar"})
	assert.Error(t, err)
}

func TestErrorIsAnError(t *testing.T) {
	var e error = NewError("boom")
	assert.EqualError(t, e, "boom")
}

func mustReplaceKind(t *testing.T, frame []byte, kind string) []byte {
	t.Helper()
	var fields map[string]any
	require.NoError(t, msgpack.Unmarshal(frame, &fields))
	fields["kind"] = kind
	out, err := msgpack.Marshal(fields)
	require.NoError(t, err)
	return out
}
