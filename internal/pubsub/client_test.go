package pubsub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeScoreUpdate(t *testing.T) {
	in := ScoreUpdate{
		Recipient:   "r1",
		MatchID:     "m1",
		Home:        "TeamA",
		Away:        "TeamB",
		HomeScore:   1,
		Map:         "Inferno",
		HomeRounds:  11,
		AwayRounds:  8,
		Fingerprint: "1-0-🧨 Inferno: 11x8",
		At:          time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC),
	}
	b, err := Encode(in)
	require.NoError(t, err)

	var out ScoreUpdate
	require.NoError(t, Decode(b, &out))
	assert.Equal(t, in.Fingerprint, out.Fingerprint)
	assert.True(t, in.At.Equal(out.At))

	assert.Error(t, Decode([]byte{0xc1}, &out), "0xc1 is never valid msgpack")
}
