package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
	"github.com/vncsmyrnk/featurevote/internal/core/ports"
)

type roleRepository struct {
	db *sql.DB
}

func NewRoleRepository(db *sql.DB) ports.RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) GrantsForUser(ctx context.Context, userID uuid.UUID, email string) (domain.GrantSet, error) {
	return r.grants(ctx,
		`SELECT user_id FROM system_admins WHERE user_id = $1`, []any{userID},
		`SELECT user_id, product_id FROM product_product_owners WHERE user_id = $1`, []any{userID},
		`SELECT product_id, user_email, user_name FROM product_stakeholders WHERE user_email = $1`, []any{domain.NormalizeEmail(email)},
	)
}

func (r *roleRepository) ListGrants(ctx context.Context) (domain.GrantSet, error) {
	return r.grants(ctx,
		`SELECT user_id FROM system_admins`, nil,
		`SELECT user_id, product_id FROM product_product_owners`, nil,
		`SELECT product_id, user_email, user_name FROM product_stakeholders`, nil,
	)
}

func (r *roleRepository) grants(ctx context.Context, adminQuery string, adminArgs []any, ownerQuery string, ownerArgs []any, stakeholderQuery string, stakeholderArgs []any) (domain.GrantSet, error) {
	set := domain.GrantSet{
		SystemAdmins:  []domain.SystemAdminGrant{},
		ProductOwners: []domain.ProductOwnerGrant{},
		Stakeholders:  []domain.StakeholderGrant{},
	}

	err := queryEach(ctx, r.db, adminQuery, adminArgs, func(rows *sql.Rows) error {
		var g domain.SystemAdminGrant
		if err := rows.Scan(&g.UserID); err != nil {
			return err
		}
		set.SystemAdmins = append(set.SystemAdmins, g)
		return nil
	})
	if err != nil {
		return domain.GrantSet{}, fmt.Errorf("failed to load system admin grants: %w", err)
	}

	err = queryEach(ctx, r.db, ownerQuery, ownerArgs, func(rows *sql.Rows) error {
		var g domain.ProductOwnerGrant
		if err := rows.Scan(&g.UserID, &g.ProductID); err != nil {
			return err
		}
		set.ProductOwners = append(set.ProductOwners, g)
		return nil
	})
	if err != nil {
		return domain.GrantSet{}, fmt.Errorf("failed to load product owner grants: %w", err)
	}

	err = queryEach(ctx, r.db, stakeholderQuery, stakeholderArgs, func(rows *sql.Rows) error {
		var g domain.StakeholderGrant
		if err := rows.Scan(&g.ProductID, &g.UserEmail, &g.UserName); err != nil {
			return err
		}
		set.Stakeholders = append(set.Stakeholders, g)
		return nil
	})
	if err != nil {
		return domain.GrantSet{}, fmt.Errorf("failed to load stakeholder grants: %w", err)
	}
	return set, nil
}

func queryEach(ctx context.Context, db *sql.DB, query string, args []any, scan func(*sql.Rows) error) error {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *roleRepository) GrantSystemAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	query := `INSERT INTO system_admins (user_id) VALUES ($1) ON CONFLICT DO NOTHING`
	changed, err := execChanged(ctx, r.db, query, userID)
	if err != nil {
		if pgCode(err) == foreignKeyViolation {
			return false, domain.ErrUserNotFound
		}
		return false, fmt.Errorf("failed to grant system admin: %w", err)
	}
	return changed, nil
}

func (r *roleRepository) RevokeSystemAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	changed, err := execChanged(ctx, r.db, `DELETE FROM system_admins WHERE user_id = $1`, userID)
	if err != nil {
		return false, fmt.Errorf("failed to revoke system admin: %w", err)
	}
	return changed, nil
}

func (r *roleRepository) GrantProductOwner(ctx context.Context, grant domain.ProductOwnerGrant) (bool, error) {
	query := `INSERT INTO product_product_owners (product_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	changed, err := execChanged(ctx, r.db, query, grant.ProductID, grant.UserID)
	if err != nil {
		if pgCode(err) == foreignKeyViolation {
			return false, fmt.Errorf("product owner grant references a missing row: %w", domain.ErrNotFound)
		}
		return false, fmt.Errorf("failed to grant product owner: %w", err)
	}
	return changed, nil
}

func (r *roleRepository) RevokeProductOwner(ctx context.Context, grant domain.ProductOwnerGrant) (bool, error) {
	query := `DELETE FROM product_product_owners WHERE product_id = $1 AND user_id = $2`
	changed, err := execChanged(ctx, r.db, query, grant.ProductID, grant.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to revoke product owner: %w", err)
	}
	return changed, nil
}

func (r *roleRepository) GrantStakeholder(ctx context.Context, grant domain.StakeholderGrant) (bool, error) {
	query := `
		INSERT INTO product_stakeholders (product_id, user_email, user_name)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`
	changed, err := execChanged(ctx, r.db, query, grant.ProductID, domain.NormalizeEmail(grant.UserEmail), grant.UserName)
	if err != nil {
		if pgCode(err) == foreignKeyViolation {
			return false, domain.ErrProductNotFound
		}
		return false, fmt.Errorf("failed to grant stakeholder: %w", err)
	}
	return changed, nil
}

func (r *roleRepository) RevokeStakeholder(ctx context.Context, productID uuid.UUID, email string) (bool, error) {
	query := `DELETE FROM product_stakeholders WHERE product_id = $1 AND user_email = $2`
	changed, err := execChanged(ctx, r.db, query, productID, domain.NormalizeEmail(email))
	if err != nil {
		return false, fmt.Errorf("failed to revoke stakeholder: %w", err)
	}
	return changed, nil
}
