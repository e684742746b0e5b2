package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMessage(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"type":"trade_created","trade":{"id":1}}`))
	require.NoError(t, err)

	assert.Equal(t, "trade_created", msg.Type)
	trade, ok := msg.Field("trade")
	require.True(t, ok)
	assert.JSONEq(t, `{"id":1}`, string(trade))

	var decoded struct {
		Trade struct {
			ID int `json:"id"`
		} `json:"trade"`
	}
	require.NoError(t, msg.Decode(&decoded))
	assert.Equal(t, 1, decoded.Trade.ID)

	_, ok = msg.Field("missing")
	assert.False(t, ok)
}

func TestDecodeMessage_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"NotJSON", `pong`, ErrMalformedMessage},
		{"Array", `[1,2,3]`, ErrMalformedMessage},
		{"Null", `null`, ErrMalformedMessage},
		{"String", `"trade_created"`, ErrMalformedMessage},
		{"NoType", `{"trade":{"id":1}}`, ErrMissingType},
		{"NumericType", `{"type":7}`, ErrMissingType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMessage([]byte(tt.input))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeMessage_CopiesFrame(t *testing.T) {
	buf := []byte(`{"type":"trade_updated"}`)
	msg, err := DecodeMessage(buf)
	require.NoError(t, err)

	buf[2] = 'X'
	assert.JSONEq(t, `{"type":"trade_updated"}`, string(msg.Raw))
}
