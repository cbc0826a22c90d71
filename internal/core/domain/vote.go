package domain

import (
	"sort"

	"github.com/google/uuid"
)

// VoteRecord is the committed allocation of one user to one feature.
// There is at most one record per (FeatureID, UserID).
type VoteRecord struct {
	FeatureID uuid.UUID `json:"feature_id"`
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
	VoteCount int       `json:"vote_count"`
}

type VoterInfo struct {
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	VoteCount int       `json:"vote_count"`
}

func TotalVotes(voters []VoterInfo) int {
	total := 0
	for _, v := range voters {
		total += v.VoteCount
	}
	return total
}

// SortVoters orders voters by vote count, highest first, then by name.
func SortVoters(voters []VoterInfo) {
	sort.SliceStable(voters, func(i, j int) bool {
		if voters[i].VoteCount != voters[j].VoteCount {
			return voters[i].VoteCount > voters[j].VoteCount
		}
		return voters[i].Name < voters[j].Name
	})
}
