package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aeternum/journeys-backend/internal/domain"
	"github.com/aeternum/journeys-backend/internal/repository/ports"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, email string, hash, salt []byte) (*domain.User, error) {
	const query = `
		INSERT INTO user_account (email, password_hash, password_salt)
		VALUES ($1, $2, $3)
		RETURNING id, email, display_name, password_hash, password_salt, created_at, updated_at
	`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email, hash, salt); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
		SELECT id, email, display_name, password_hash, password_salt, created_at, updated_at
		FROM user_account
		WHERE email = $1
	`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `
		SELECT id, email, display_name, password_hash, password_salt, created_at, updated_at
		FROM user_account
		WHERE id = $1
	`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertByEmail backs the Google sign-in path: federated users have no local
// password material, so only email and display name are written.
func (r *UserRepository) UpsertByEmail(ctx context.Context, email string, displayName *string) (*domain.User, error) {
	const query = `
		INSERT INTO user_account (email, display_name)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE
		SET display_name = COALESCE(user_account.display_name, EXCLUDED.display_name),
		    updated_at = NOW()
		RETURNING id, email, display_name, password_hash, password_salt, created_at, updated_at
	`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email, nullString(displayName)); err != nil {
		return nil, err
	}
	return &user, nil
}

var _ ports.UserRepository = (*UserRepository)(nil)
