package reconcile

import (
	"strings"

	"fjacquet/eod-recon/internal/textutils"
)

// Scoring constants
const (
	ScoreExact       = 100
	ScoreCap         = 99
	ScoreAutoLink    = 60
	ScoreContainment = 35
	scorePerToken    = 25
	scoreLastToken   = 40
	scoreFirstToken  = 20
)

// NameScore rates how likely two person names refer to the same agent, from
// 0 to 100. Identical normalized names score 100. Otherwise shared tokens
// score 25 each, plus 40 when the last tokens agree and 20 when the first
// tokens agree, capped at 99. A zero score is raised to 35 when one name
// contains the other.
func NameScore(a, b string) int {
	na, nb := textutils.NormalizeName(a), textutils.NormalizeName(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return ScoreExact
	}

	ta, tb := strings.Fields(na), strings.Fields(nb)
	inB := make(map[string]bool, len(tb))
	for _, t := range tb {
		inB[t] = true
	}

	score := 0
	seen := make(map[string]bool, len(ta))
	for _, t := range ta {
		if seen[t] {
			continue
		}
		seen[t] = true
		if inB[t] {
			score += scorePerToken
		}
	}
	if ta[len(ta)-1] == tb[len(tb)-1] {
		score += scoreLastToken
	}
	if ta[0] == tb[0] {
		score += scoreFirstToken
	}
	if score > ScoreCap {
		score = ScoreCap
	}

	if score == 0 && (strings.Contains(na, nb) || strings.Contains(nb, na)) {
		score = ScoreContainment
	}
	return score
}
