package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func breakdown(candidatID string, total, experience float64) *ScoreBreakdown {
	return &ScoreBreakdown{CandidatID: candidatID, Total: total, Experience: experience}
}

func TestFilterAndRankThresholdAndTruncation(t *testing.T) {
	t.Parallel()

	input := []*ScoreBreakdown{
		breakdown("c1", 90, 80),
		breakdown("c2", 85, 60),
		breakdown("c3", 60, 50),
		breakdown("c4", 39.99, 90),
		nil,
		breakdown("c5", 55, 40),
	}

	ranked := FilterAndRank(input, 40, 3)
	require.Len(t, ranked, 3)

	assert.Equal(t, "c1", ranked[0].CandidatID)
	assert.Equal(t, "c2", ranked[1].CandidatID)
	assert.Equal(t, "c3", ranked[2].CandidatID)
	for i, r := range ranked {
		assert.Equal(t, i+1, r.Rang)
	}
}

func TestFilterAndRankDropsDisqualified(t *testing.T) {
	t.Parallel()

	blocked := breakdown("c1", 95, 100)
	blocked.Disqualifie = true

	ranked := FilterAndRank([]*ScoreBreakdown{blocked, breakdown("c2", 50, 10)}, 40, 5)
	require.Len(t, ranked, 1)
	assert.Equal(t, "c2", ranked[0].CandidatID)
	assert.Equal(t, 1, ranked[0].Rang)
}

func TestFilterAndRankTieBreak(t *testing.T) {
	t.Parallel()

	// same total: higher experience wins; same experience: lower ID wins
	input := []*ScoreBreakdown{
		breakdown("c-zz", 80, 50),
		breakdown("c-aa", 80, 50),
		breakdown("c-mm", 80, 70),
	}

	ranked := FilterAndRank(input, 0, 0)
	require.Len(t, ranked, 3)
	assert.Equal(t, "c-mm", ranked[0].CandidatID)
	assert.Equal(t, "c-aa", ranked[1].CandidatID)
	assert.Equal(t, "c-zz", ranked[2].CandidatID)
}

func TestFilterAndRankDeterministic(t *testing.T) {
	t.Parallel()

	input := []*ScoreBreakdown{
		breakdown("c3", 70, 30),
		breakdown("c1", 70, 30),
		breakdown("c2", 90, 10),
	}
	reversed := []*ScoreBreakdown{input[2], input[1], input[0]}

	assert.Equal(t, FilterAndRank(input, 0, 0), FilterAndRank(reversed, 0, 0),
		"input order must not influence the ranking")
}

func TestFilterAndRankDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	input := []*ScoreBreakdown{
		breakdown("c2", 50, 10),
		breakdown("c1", 90, 20),
	}

	_ = FilterAndRank(input, 0, 1)

	assert.Equal(t, "c2", input[0].CandidatID)
	assert.Equal(t, "c1", input[1].CandidatID)
}

func TestFilterAndRankEmptyInput(t *testing.T) {
	t.Parallel()

	assert.Empty(t, FilterAndRank(nil, 40, 5))
	assert.Empty(t, FilterAndRank([]*ScoreBreakdown{}, 40, 5))
}
