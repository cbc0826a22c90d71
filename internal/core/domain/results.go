package domain

import (
	"math"
	"sort"
)

type FeatureResult struct {
	Feature    Feature     `json:"feature"`
	TotalVotes int         `json:"total_votes"`
	Percentage float64     `json:"percentage"`
	Voters     []VoterInfo `json:"voters"`
}

type SessionResults struct {
	Session    VotingSession   `json:"session"`
	TotalVotes int             `json:"total_votes"`
	Features   []FeatureResult `json:"features"`
}

// RankResults orders the catalog by total votes, highest first, then by
// title. Percentage is the feature's share of all votes cast in the
// session, rounded to two decimals, and zero when nothing was cast.
func RankResults(session VotingSession, catalog []FeatureWithVotes) SessionResults {
	total := 0
	for _, f := range catalog {
		total += f.TotalVotes
	}

	results := make([]FeatureResult, 0, len(catalog))
	for _, f := range catalog {
		voters := append([]VoterInfo(nil), f.Voters...)
		SortVoters(voters)
		if voters == nil {
			voters = []VoterInfo{}
		}

		pct := 0.0
		if total > 0 {
			pct = math.Round(float64(f.TotalVotes)/float64(total)*10000) / 100
		}
		results = append(results, FeatureResult{
			Feature:    f.Feature,
			TotalVotes: f.TotalVotes,
			Percentage: pct,
			Voters:     voters,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].TotalVotes != results[j].TotalVotes {
			return results[i].TotalVotes > results[j].TotalVotes
		}
		return results[i].Feature.Title < results[j].Feature.Title
	})

	return SessionResults{Session: session, TotalVotes: total, Features: results}
}
