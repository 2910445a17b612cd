package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameScore(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected int
	}{
		{"exact", "maria lopez", "maria lopez", 100},
		{"exact after normalization", "Lopez, Maria", "lopez maria", 100},
		{"first token only", "maria lopez", "maria garcia", 45},
		{"last token only", "ana lopez", "maria lopez", 65},
		{"swapped order", "maria lopez", "lopez maria", 50},
		{"middle initial", "maria lopez", "maria j lopez", 99},
		{"no overlap", "maria lopez", "john smith", 0},
		{"substring floor", "mar", "maria lopez", 35},
		{"empty", "", "maria lopez", 0},
		{"both empty", "", "", 0},
		{"repeated tokens count once", "ana ana", "ana", 85},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NameScore(tt.a, tt.b))
		})
	}
}

func TestNameScore_FirstTokenOnlyBelowAutoLink(t *testing.T) {
	score := NameScore("maria lopez", "maria garcia")
	assert.Greater(t, score, 0)
	assert.Less(t, score, ScoreAutoLink)
}
