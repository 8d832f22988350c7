package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/aeternum/journeys-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, email string, hash, salt []byte) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpsertByEmail(ctx context.Context, email string, displayName *string) (*domain.User, error)
}
