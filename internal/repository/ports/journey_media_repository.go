package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/aeternum/journeys-backend/internal/domain"
)

type JourneyMediaRepository interface {
	Create(ctx context.Context, media *domain.JourneyMedia) (*domain.JourneyMedia, error)
	ListByJourneyIDs(ctx context.Context, journeyIDs []uuid.UUID) (map[uuid.UUID][]domain.JourneyMedia, error)
}
