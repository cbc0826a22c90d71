package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Feature struct {
	ID          uuid.UUID `json:"id"`
	SessionID   uuid.UUID `json:"session_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Epic        *string   `json:"epic,omitempty"`
	ExternalID  *string   `json:"external_id,omitempty"`
	ExternalURL *string   `json:"external_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsImported reports whether the feature came from the external tracker.
func (f Feature) IsImported() bool {
	return f.ExternalID != nil && *f.ExternalID != ""
}

// FeatureWithVotes is a feature joined with its tally and voter roster.
type FeatureWithVotes struct {
	Feature
	TotalVotes int         `json:"votes"`
	Voters     []VoterInfo `json:"voters"`
}

// ExternalFeature is a work item as supplied by the external tracker.
type ExternalFeature struct {
	ExternalID  string
	Title       string
	Description string
	Epic        *string
	URL         string
}

type ImportPlan struct {
	Updated  []Feature
	Inserted []Feature
	// Catalog is the merged set in batch order, followed by every existing
	// feature the batch did not touch.
	Catalog []FeatureWithVotes
}

// MergeImport folds a batch of external features into the existing catalog
// of a session. A batch item whose ExternalID matches an existing feature
// refreshes that feature's metadata in place and keeps its ID, votes and
// voters. Unmatched items become new features. Existing features the batch
// does not mention, local ones included, are retained unchanged.
func MergeImport(sessionID uuid.UUID, existing []FeatureWithVotes, batch []ExternalFeature, newID func() uuid.UUID, now time.Time) ImportPlan {
	byExternal := make(map[string]int, len(existing))
	for i, f := range existing {
		if f.IsImported() {
			byExternal[*f.ExternalID] = i
		}
	}

	var plan ImportPlan
	touched := make(map[int]bool)
	merged := make(map[string]int, len(batch))

	for _, item := range batch {
		if pos, ok := merged[item.ExternalID]; ok {
			// repeated id in one batch: the later item wins
			f := &plan.Catalog[pos]
			applyExternal(&f.Feature, item, now)
			replaceFeature(plan.Updated, f.Feature)
			replaceFeature(plan.Inserted, f.Feature)
			continue
		}

		if idx, ok := byExternal[item.ExternalID]; ok {
			f := existing[idx]
			applyExternal(&f.Feature, item, now)
			touched[idx] = true
			plan.Updated = append(plan.Updated, f.Feature)
			plan.Catalog = append(plan.Catalog, f)
		} else {
			f := Feature{
				ID:        newID(),
				SessionID: sessionID,
				CreatedAt: now,
			}
			applyExternal(&f, item, now)
			plan.Inserted = append(plan.Inserted, f)
			plan.Catalog = append(plan.Catalog, FeatureWithVotes{Feature: f, Voters: []VoterInfo{}})
		}
		merged[item.ExternalID] = len(plan.Catalog) - 1
	}

	for i, f := range existing {
		if !touched[i] {
			plan.Catalog = append(plan.Catalog, f)
		}
	}
	return plan
}

func applyExternal(f *Feature, item ExternalFeature, now time.Time) {
	externalID := item.ExternalID
	f.ExternalID = &externalID
	f.Title = item.Title
	f.Description = item.Description
	f.Epic = item.Epic
	if item.URL != "" {
		url := item.URL
		f.ExternalURL = &url
	} else {
		f.ExternalURL = nil
	}
	f.UpdatedAt = now
}

func replaceFeature(list []Feature, f Feature) {
	for i := range list {
		if list[i].ID == f.ID {
			list[i] = f
		}
	}
}

// EpicFromTags returns the first entry of a "a; b" tag list, or nil when
// the list is empty.
func EpicFromTags(tags string) *string {
	for _, t := range strings.Split(tags, ";") {
		if t = strings.TrimSpace(t); t != "" {
			return &t
		}
	}
	return nil
}
