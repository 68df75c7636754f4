package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModerator_Censor(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"crap", "damn"}, '*')
	req.NoError(err)

	tests := []struct {
		name      string
		input     string
		want      string
		wantFound int
	}{
		{"clean input untouched", "hello there", "hello there", 0},
		{"single match masked", "this is crap", "this is ****", 1},
		{"case insensitive", "DAMN it", "**** it", 1},
		{"multiple matches", "damn this crap", "**** this ****", 2},
		{"empty input", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			censored, found := moderator.Censor(tt.input)
			req.Equal(tt.want, censored)
			req.Len(found, tt.wantFound)
		})
	}
}

func TestLoadEmbedded(t *testing.T) {
	req := require.New(t)

	data, err := LoadEmbedded()
	req.NoError(err)
	req.Contains(data.Languages, "en")
	req.Contains(data.Languages, "fr")
	req.NotEmpty(data.Words)
	req.Contains(data.Words, "crap")
}
