package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
	"github.com/vncsmyrnk/featurevote/internal/core/ports"
)

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

const upsertVoteQuery = `
	INSERT INTO votes (feature_id, user_id, user_name, user_email, vote_count)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (feature_id, user_id) DO UPDATE
	SET user_name = EXCLUDED.user_name,
		user_email = EXCLUDED.user_email,
		vote_count = EXCLUDED.vote_count,
		updated_at = NOW()
`

func (r *voteRepository) Upsert(ctx context.Context, record domain.VoteRecord) error {
	_, err := r.db.ExecContext(ctx, upsertVoteQuery,
		record.FeatureID, record.UserID, record.UserName, record.UserEmail, record.VoteCount)
	if err != nil {
		if pgCode(err) == foreignKeyViolation {
			return domain.ErrFeatureNotFound
		}
		return fmt.Errorf("failed to upsert vote: %w", err)
	}
	return nil
}

func (r *voteRepository) UpsertBatch(ctx context.Context, records []domain.VoteRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertVoteQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare vote statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.ExecContext(ctx, rec.FeatureID, rec.UserID, rec.UserName, rec.UserEmail, rec.VoteCount)
		if err != nil {
			if pgCode(err) == foreignKeyViolation {
				return domain.ErrFeatureNotFound
			}
			return fmt.Errorf("failed to upsert vote for feature %s: %w", rec.FeatureID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit votes: %w", err)
	}
	return nil
}

func (r *voteRepository) TotalVotes(ctx context.Context, featureID uuid.UUID) (int, error) {
	query := `SELECT COALESCE(SUM(vote_count), 0) FROM votes WHERE feature_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, query, featureID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum votes: %w", err)
	}
	return total, nil
}

func (r *voteRepository) Voters(ctx context.Context, featureID uuid.UUID) ([]domain.VoterInfo, error) {
	query := `
		SELECT feature_id, user_id, user_name, user_email, vote_count
		FROM votes
		WHERE feature_id = $1 AND vote_count > 0
	`
	byFeature, err := r.voters(ctx, query, featureID)
	if err != nil {
		return nil, err
	}
	voters := byFeature[featureID]
	if voters == nil {
		voters = []domain.VoterInfo{}
	}
	return voters, nil
}

func (r *voteRepository) VotersBySession(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID][]domain.VoterInfo, error) {
	query := `
		SELECT v.feature_id, v.user_id, v.user_name, v.user_email, v.vote_count
		FROM votes v
		JOIN features f ON f.id = v.feature_id
		WHERE f.session_id = $1 AND v.vote_count > 0
	`
	return r.voters(ctx, query, sessionID)
}

func (r *voteRepository) voters(ctx context.Context, query string, arg uuid.UUID) (map[uuid.UUID][]domain.VoterInfo, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list voters: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]domain.VoterInfo)
	for rows.Next() {
		var featureID uuid.UUID
		var v domain.VoterInfo
		if err := rows.Scan(&featureID, &v.UserID, &v.Name, &v.Email, &v.VoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan voter: %w", err)
		}
		result[featureID] = append(result[featureID], v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating voters: %w", err)
	}
	for _, voters := range result {
		domain.SortVoters(voters)
	}
	return result, nil
}

func (r *voteRepository) DeleteByFeature(ctx context.Context, featureID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM votes WHERE feature_id = $1`, featureID); err != nil {
		return fmt.Errorf("failed to reset feature votes: %w", err)
	}
	return nil
}

func (r *voteRepository) DeleteBySession(ctx context.Context, sessionID uuid.UUID) error {
	query := `DELETE FROM votes WHERE feature_id IN (SELECT id FROM features WHERE session_id = $1)`
	if _, err := r.db.ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("failed to reset session votes: %w", err)
	}
	return nil
}

func (r *voteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM votes`); err != nil {
		return fmt.Errorf("failed to reset votes: %w", err)
	}
	return nil
}
