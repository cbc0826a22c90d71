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

const sessionColumns = `id, product_id, title, goal, votes_per_user, start_date, end_date, is_active, created_at`

type sessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) ports.SessionRepository {
	return &sessionRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (domain.VotingSession, error) {
	var s domain.VotingSession
	err := row.Scan(&s.ID, &s.ProductID, &s.Title, &s.Goal, &s.VotesPerUser, &s.StartDate, &s.EndDate, &s.IsActive, &s.CreatedAt)
	s.StartDate = s.StartDate.UTC()
	s.EndDate = s.EndDate.UTC()
	return s, err
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.VotingSession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	query := `
		INSERT INTO voting_sessions (id, product_id, title, goal, votes_per_user, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		session.ID, session.ProductID, session.Title, session.Goal, session.VotesPerUser,
		session.StartDate, session.EndDate, session.IsActive,
	).Scan(&session.CreatedAt)
	if err != nil {
		if pgCode(err) == foreignKeyViolation {
			return domain.ErrProductNotFound
		}
		return fmt.Errorf("failed to create voting session: %w", err)
	}
	return nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.VotingSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM voting_sessions WHERE id = $1`
	s, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get voting session: %w", err)
	}
	return &s, nil
}

func (r *sessionRepository) List(ctx context.Context) ([]domain.VotingSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM voting_sessions ORDER BY created_at, id`
	return r.query(ctx, query)
}

func (r *sessionRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]domain.VotingSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM voting_sessions WHERE product_id = $1 ORDER BY created_at, id`
	return r.query(ctx, query, productID)
}

func (r *sessionRepository) query(ctx context.Context, query string, args ...any) ([]domain.VotingSession, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list voting sessions: %w", err)
	}
	defer rows.Close()

	sessions := []domain.VotingSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan voting session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating voting sessions: %w", err)
	}
	return sessions, nil
}

func (r *sessionRepository) Update(ctx context.Context, session *domain.VotingSession) error {
	query := `
		UPDATE voting_sessions
		SET title = $2, goal = $3, votes_per_user = $4, start_date = $5, end_date = $6, is_active = $7
		WHERE id = $1
	`
	changed, err := execChanged(ctx, r.db, query,
		session.ID, session.Title, session.Goal, session.VotesPerUser,
		session.StartDate, session.EndDate, session.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update voting session: %w", err)
	}
	if !changed {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *sessionRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	changed, err := execChanged(ctx, r.db, `UPDATE voting_sessions SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("failed to set session activity: %w", err)
	}
	if !changed {
		return domain.ErrSessionNotFound
	}
	return nil
}
