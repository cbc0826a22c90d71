package domain

import (
	"time"

	"github.com/google/uuid"
)

type VotingSession struct {
	ID           uuid.UUID `json:"id"`
	ProductID    uuid.UUID `json:"product_id"`
	Title        string    `json:"title"`
	Goal         string    `json:"goal"`
	VotesPerUser int       `json:"votes_per_user"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsOpen reports whether now falls within [StartDate, EndDate].
// IsActive is only a cached copy of this value.
func (s VotingSession) IsOpen(now time.Time) bool {
	return !now.Before(s.StartDate) && !now.After(s.EndDate)
}

// NeedsReconcile reports whether the cached IsActive flag disagrees with
// the date range.
func (s VotingSession) NeedsReconcile(now time.Time) bool {
	return s.IsOpen(now) != s.IsActive
}
