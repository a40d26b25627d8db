package cassette

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeShouldRecord(t *testing.T) {
	tests := []struct {
		mode     Mode
		hasMatch bool
		count    int
		want     bool
	}{
		{ModeNone, false, 0, false},
		{ModeNone, true, 3, false},

		{ModeOnce, false, 0, true},
		{ModeOnce, true, 0, true},
		{ModeOnce, false, 1, false}, // a distinct unmatched request still may not record
		{ModeOnce, true, 5, false},

		{ModeNewEpisodes, false, 0, true},
		{ModeNewEpisodes, false, 7, true},
		{ModeNewEpisodes, true, 1, false},

		{ModeAll, false, 0, true},
		{ModeAll, true, 9, true},
	}
	for _, tt := range tests {
		got := tt.mode.ShouldRecord(tt.hasMatch, tt.count)
		assert.Equal(t, tt.want, got, "%s hasMatch=%v count=%d", tt.mode, tt.hasMatch, tt.count)
	}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"none", "once", "new_episodes", "all"} {
		m, err := ParseMode(s)
		require.NoError(t, err)
		assert.Equal(t, Mode(s), m)
	}

	_, err := ParseMode("sometimes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown record mode")
}
