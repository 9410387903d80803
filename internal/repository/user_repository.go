package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campushq/campus-admin-api/internal/models"
	appErrors "github.com/campushq/campus-admin-api/pkg/errors"
)

const userColumns = "id, email, password_hash, full_name, role, batch_id, active, last_login, created_at, updated_at"

// UserRepository manages application users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository instantiates the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByEmail fetches a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1", userColumns)
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return &user, nil
}

// GetByID fetches a user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return &user, nil
}

// TouchLastLogin records a successful authentication.
func (r *UserRepository) TouchLastLogin(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE users SET last_login = $1 WHERE id = $2", time.Now().UTC(), id); err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

// AudienceIDs resolves the recipient user IDs for a notification audience.
func (r *UserRepository) AudienceIDs(ctx context.Context, audience models.NotificationAudience, batchID *string) ([]string, error) {
	var ids []string
	switch audience {
	case models.AudienceAll:
		if err := r.db.SelectContext(ctx, &ids, "SELECT id FROM users WHERE active"); err != nil {
			return nil, fmt.Errorf("query all recipients: %w", err)
		}
	case models.AudienceFaculty:
		if err := r.db.SelectContext(ctx, &ids, "SELECT id FROM users WHERE active AND role = $1", models.RoleFaculty); err != nil {
			return nil, fmt.Errorf("query faculty recipients: %w", err)
		}
	case models.AudienceStudents:
		if err := r.db.SelectContext(ctx, &ids, "SELECT id FROM users WHERE active AND role = $1", models.RoleStudent); err != nil {
			return nil, fmt.Errorf("query student recipients: %w", err)
		}
	case models.AudienceBatch:
		if batchID == nil || *batchID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "batch_id is required for BATCH audience")
		}
		if err := r.db.SelectContext(ctx, &ids, "SELECT id FROM users WHERE active AND batch_id = $1", *batchID); err != nil {
			return nil, fmt.Errorf("query batch recipients: %w", err)
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown audience %s", audience))
	}
	return ids, nil
}
