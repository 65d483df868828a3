package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInbound_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"submit name", `{"action":"submitName","name":"Alice"}`, nil},
		{"submit name missing", `{"action":"submitName"}`, ErrMissingField},
		{"join queue", `{"action":"joinQueue"}`, nil},
		{"rejoin queue", `{"action":"rejoinQueue"}`, nil},
		{"offer", `{"action":"offer","message":{"type":"offer","sdp":"v=0"}}`, nil},
		{"candidate null", `{"action":"candidate","message":null}`, ErrMissingField},
		{"answer missing", `{"action":"answer"}`, ErrMissingField},
		{"rating", `{"action":"submitRating","rating":5}`, nil},
		{"rating missing", `{"action":"submitRating"}`, ErrMissingField},
		{"end call", `{"action":"endCall"}`, nil},
		{"no action", `{"name":"Alice"}`, ErrMissingField},
		{"unknown action", `{"action":"dance"}`, ErrUnknownAction},
		{"not json", `hello`, ErrInvalidJSON},
		{"not an object", `[1,2]`, ErrInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := DecodeInbound([]byte(tt.data))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, in.Action)
		})
	}
}

func TestDecodeInbound_KeepsPayloadVerbatim(t *testing.T) {
	payload := `{"candidate":"candidate:1 1 UDP 2122252543 10.0.0.2 54321 typ host","sdpMLineIndex":0}`
	in, err := DecodeInbound([]byte(`{"action":"candidate","message":` + payload + `}`))
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(in.Message))

	out, err := json.Marshal(Relay(in.Action, in.Message))
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"candidate","message":`+payload+`}`, string(out))
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{`5`, 5, false},
		{`"4"`, 4, false},
		{`" 3 "`, 3, false},
		{`0`, 0, false},
		{`9`, 9, false},
		{`-2`, -2, false},
		{`4.5`, 0, true},
		{`"five"`, 0, true},
		{`true`, 0, true},
		{`{}`, 0, true},
		{`99999999999`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseRating(json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRating)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeName(t *testing.T) {
	name, err := NormalizeName("  Alice ")
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)

	_, err = NormalizeName("   ")
	assert.ErrorIs(t, err, ErrInvalidName)

	long := make([]rune, MaxNameLength+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err = NormalizeName(string(long))
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = NormalizeName(string(long[:MaxNameLength]))
	assert.NoError(t, err)
}

func TestOutbound_Encoding(t *testing.T) {
	out, err := json.Marshal(Matched("Hi Bob, you are now matched with Alice", "Alice", false))
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"matched","message":"Hi Bob, you are now matched with Alice","peerName":"Alice","initiator":false}`, string(out))

	out, err = json.Marshal(&Outbound{Action: ActionStartTimer})
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"startTimer"}`, string(out))

	out, err = json.Marshal(WithRating(ActionNameSubmitted, "Welcome, Alice!", "0.00"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"nameSubmitted","message":"Welcome, Alice!","avgRating":"0.00"}`, string(out))
}

func TestIsNegotiationAction(t *testing.T) {
	assert.True(t, IsNegotiationAction(ActionOffer))
	assert.True(t, IsNegotiationAction(ActionAnswer))
	assert.True(t, IsNegotiationAction(ActionCandidate))
	assert.False(t, IsNegotiationAction(ActionEndCall))
}
