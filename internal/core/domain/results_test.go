package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankResults(t *testing.T) {
	session := VotingSession{ID: uuid.New()}
	catalog := []FeatureWithVotes{
		{Feature: Feature{ID: uuid.New(), Title: "b"}, TotalVotes: 1},
		{Feature: Feature{ID: uuid.New(), Title: "a"}, TotalVotes: 3, Voters: []VoterInfo{
			{Name: "Zed", VoteCount: 1},
			{Name: "Amy", VoteCount: 2},
		}},
		{Feature: Feature{ID: uuid.New(), Title: "c"}, TotalVotes: 1},
		{Feature: Feature{ID: uuid.New(), Title: "d"}},
	}

	res := RankResults(session, catalog)
	require.Len(t, res.Features, 4)
	assert.Equal(t, 5, res.TotalVotes)

	titles := []string{}
	for _, f := range res.Features {
		titles = append(titles, f.Feature.Title)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, titles)
	assert.Equal(t, 60.0, res.Features[0].Percentage)
	assert.Equal(t, 20.0, res.Features[1].Percentage)
	assert.Equal(t, "Amy", res.Features[0].Voters[0].Name)
	assert.NotNil(t, res.Features[3].Voters)
}

func TestRankResults_NoVotes(t *testing.T) {
	res := RankResults(VotingSession{}, []FeatureWithVotes{{Feature: Feature{Title: "x"}}})
	assert.Zero(t, res.TotalVotes)
	assert.Zero(t, res.Features[0].Percentage)
}
