package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func sequentialIDs(ids ...uuid.UUID) func() uuid.UUID {
	i := 0
	return func() uuid.UUID {
		id := ids[i]
		i++
		return id
	}
}

func TestMergeImport_PreservesVotes(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	sessionID := uuid.New()
	voter := VoterInfo{UserID: uuid.New(), Name: "Ana", VoteCount: 7}
	imported := FeatureWithVotes{
		Feature: Feature{
			ID:         uuid.New(),
			SessionID:  sessionID,
			Title:      "old title",
			ExternalID: strPtr("E1"),
		},
		TotalVotes: 7,
		Voters:     []VoterInfo{voter},
	}

	plan := MergeImport(sessionID, []FeatureWithVotes{imported}, []ExternalFeature{
		{ExternalID: "E1", Title: "new title", Description: "d", Epic: strPtr("Billing"), URL: "https://tracker/1"},
	}, uuid.New, now)

	require.Len(t, plan.Catalog, 1)
	got := plan.Catalog[0]
	assert.Equal(t, imported.ID, got.ID)
	assert.Equal(t, "new title", got.Title)
	assert.Equal(t, "Billing", *got.Epic)
	assert.Equal(t, "https://tracker/1", *got.ExternalURL)
	assert.Equal(t, 7, got.TotalVotes)
	assert.Equal(t, []VoterInfo{voter}, got.Voters)
	assert.Len(t, plan.Updated, 1)
	assert.Empty(t, plan.Inserted)
}

func TestMergeImport_InsertsAndRetainsLocal(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	sessionID := uuid.New()
	local := FeatureWithVotes{
		Feature:    Feature{ID: uuid.New(), SessionID: sessionID, Title: "local"},
		TotalVotes: 2,
	}
	stale := FeatureWithVotes{
		Feature:    Feature{ID: uuid.New(), SessionID: sessionID, Title: "stale", ExternalID: strPtr("E9")},
		TotalVotes: 1,
	}
	newID := uuid.New()

	plan := MergeImport(sessionID, []FeatureWithVotes{local, stale}, []ExternalFeature{
		{ExternalID: "E2", Title: "fresh"},
	}, sequentialIDs(newID), now)

	require.Len(t, plan.Catalog, 3)
	assert.Equal(t, newID, plan.Catalog[0].ID)
	assert.Equal(t, "fresh", plan.Catalog[0].Title)
	assert.Equal(t, sessionID, plan.Catalog[0].SessionID)
	assert.Zero(t, plan.Catalog[0].TotalVotes)
	assert.NotNil(t, plan.Catalog[0].Voters)
	assert.Nil(t, plan.Catalog[0].ExternalURL)

	assert.Equal(t, local, plan.Catalog[1])
	assert.Equal(t, stale, plan.Catalog[2])
	require.Len(t, plan.Inserted, 1)
	assert.Empty(t, plan.Updated)
}

func TestMergeImport_RepeatedExternalIDLaterWins(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	sessionID := uuid.New()

	plan := MergeImport(sessionID, nil, []ExternalFeature{
		{ExternalID: "E3", Title: "first"},
		{ExternalID: "E3", Title: "second"},
	}, uuid.New, now)

	require.Len(t, plan.Catalog, 1)
	require.Len(t, plan.Inserted, 1)
	assert.Equal(t, "second", plan.Catalog[0].Title)
	assert.Equal(t, "second", plan.Inserted[0].Title)
}

func TestEpicFromTags(t *testing.T) {
	tests := []struct {
		tags string
		want string
	}{
		{"Checkout; Mobile", "Checkout"},
		{"  ; Billing", "Billing"},
		{"Single", "Single"},
	}
	for _, tt := range tests {
		got := EpicFromTags(tt.tags)
		require.NotNil(t, got, tt.tags)
		assert.Equal(t, tt.want, *got)
	}
	assert.Nil(t, EpicFromTags(""))
	assert.Nil(t, EpicFromTags(" ; "))
}
