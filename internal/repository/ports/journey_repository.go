package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/aeternum/journeys-backend/internal/domain"
)

type JourneyRepository interface {
	Create(ctx context.Context, journey *domain.Journey) (*domain.Journey, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Journey, error)
	ListAll(ctx context.Context) ([]domain.Journey, error)
}
