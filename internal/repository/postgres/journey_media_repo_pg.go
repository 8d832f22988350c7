package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aeternum/journeys-backend/internal/domain"
	"github.com/aeternum/journeys-backend/internal/repository/ports"
)

type JourneyMediaRepository struct {
	db *sqlx.DB
}

func NewJourneyMediaRepo(db *sqlx.DB) *JourneyMediaRepository {
	return &JourneyMediaRepository{db: db}
}

// Create inserts a single media row. The submission workflow calls this once
// per uploaded file, right after that file's upload settles, so a failed
// upload leaves no row behind for it.
func (r *JourneyMediaRepository) Create(ctx context.Context, media *domain.JourneyMedia) (*domain.JourneyMedia, error) {
	const query = `
		INSERT INTO journey_media (journey_id, object_key, media_url, media_type, ordering)
		VALUES (:journey_id, :object_key, :media_url, :media_type, :ordering)
		RETURNING id, journey_id, object_key, media_url, media_type, ordering, created_at
	`
	args := map[string]any{
		"journey_id": media.JourneyID,
		"object_key": media.ObjectKey,
		"media_url":  media.MediaURL,
		"media_type": media.MediaType,
		"ordering":   media.Ordering,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		var stored domain.JourneyMedia
		if err := rows.StructScan(&stored); err != nil {
			return nil, err
		}
		return &stored, nil
	}
	return nil, sql.ErrNoRows
}

func (r *JourneyMediaRepository) ListByJourneyIDs(ctx context.Context, journeyIDs []uuid.UUID) (map[uuid.UUID][]domain.JourneyMedia, error) {
	result := make(map[uuid.UUID][]domain.JourneyMedia, len(journeyIDs))
	if len(journeyIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, journey_id, object_key, media_url, media_type, ordering, created_at
		FROM journey_media
		WHERE journey_id IN (?)
		ORDER BY journey_id, ordering, created_at, id
	`, journeyIDs)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var media domain.JourneyMedia
		if err := rows.StructScan(&media); err != nil {
			return nil, err
		}
		result[media.JourneyID] = append(result[media.JourneyID], media)
	}
	return result, rows.Err()
}

var _ ports.JourneyMediaRepository = (*JourneyMediaRepository)(nil)
