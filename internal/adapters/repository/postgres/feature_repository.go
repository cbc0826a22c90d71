package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
	"github.com/vncsmyrnk/featurevote/internal/core/ports"
)

const featureColumns = `id, session_id, title, description, epic, external_id, external_url, created_at, updated_at`

type featureRepository struct {
	db *sql.DB
}

func NewFeatureRepository(db *sql.DB) ports.FeatureRepository {
	return &featureRepository{db: db}
}

func scanFeature(row rowScanner) (domain.Feature, error) {
	var f domain.Feature
	err := row.Scan(&f.ID, &f.SessionID, &f.Title, &f.Description, &f.Epic, &f.ExternalID, &f.ExternalURL, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func (r *featureRepository) Create(ctx context.Context, feature *domain.Feature) error {
	if feature.ID == uuid.Nil {
		feature.ID = uuid.New()
	}
	return insertFeature(ctx, r.db, feature)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertFeature(ctx context.Context, db queryRower, feature *domain.Feature) error {
	query := `
		INSERT INTO features (id, session_id, title, description, epic, external_id, external_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := db.QueryRowContext(ctx, query,
		feature.ID, feature.SessionID, feature.Title, feature.Description,
		feature.Epic, feature.ExternalID, feature.ExternalURL,
	).Scan(&feature.CreatedAt, &feature.UpdatedAt)
	if err != nil {
		switch pgCode(err) {
		case foreignKeyViolation:
			return domain.ErrSessionNotFound
		case uniqueViolation:
			return fmt.Errorf("feature with external id in session: %w", domain.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create feature: %w", err)
	}
	return nil
}

func (r *featureRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Feature, error) {
	query := `SELECT ` + featureColumns + ` FROM features WHERE id = $1`
	f, err := scanFeature(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrFeatureNotFound
		}
		return nil, fmt.Errorf("failed to get feature: %w", err)
	}
	return &f, nil
}

func (r *featureRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.Feature, error) {
	query := `SELECT ` + featureColumns + ` FROM features WHERE session_id = $1 ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list features: %w", err)
	}
	defer rows.Close()

	features := []domain.Feature{}
	for rows.Next() {
		f, err := scanFeature(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feature: %w", err)
		}
		features = append(features, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating features: %w", err)
	}
	return features, nil
}

func (r *featureRepository) Update(ctx context.Context, feature *domain.Feature) error {
	return updateFeature(ctx, r.db, feature)
}

func updateFeature(ctx context.Context, db execer, feature *domain.Feature) error {
	query := `
		UPDATE features
		SET title = $2, description = $3, epic = $4, external_id = $5, external_url = $6, updated_at = $7
		WHERE id = $1
	`
	changed, err := execChanged(ctx, db, query,
		feature.ID, feature.Title, feature.Description, feature.Epic,
		feature.ExternalID, feature.ExternalURL, feature.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update feature: %w", err)
	}
	if !changed {
		return domain.ErrFeatureNotFound
	}
	return nil
}

func (r *featureRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM votes WHERE feature_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete feature votes: %w", err)
	}
	deleted, err := execChanged(ctx, tx, `DELETE FROM features WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete feature: %w", err)
	}
	if !deleted {
		return domain.ErrFeatureNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *featureRepository) ApplyImport(ctx context.Context, plan domain.ImportPlan) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range plan.Updated {
		if err := updateFeature(ctx, tx, &plan.Updated[i]); err != nil {
			return err
		}
	}
	for i := range plan.Inserted {
		if err := insertFeature(ctx, tx, &plan.Inserted[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}
