package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/aeternum/journeys-backend/internal/domain"
	"github.com/aeternum/journeys-backend/internal/repository/ports"
)

type JourneyRepository struct {
	db *sqlx.DB
}

func NewJourneyRepo(db *sqlx.DB) *JourneyRepository {
	return &JourneyRepository{db: db}
}

// journeyRow mirrors the journeys table. Tags need pq.Array on the way in and
// out, so the row type keeps its own column set instead of reusing the domain
// struct tags directly.
type journeyRow struct {
	ID            uuid.UUID      `db:"id"`
	UserID        uuid.UUID      `db:"user_id"`
	Destination   string         `db:"destination"`
	Title         sql.NullString `db:"title"`
	ArrivalDate   sql.NullTime   `db:"arrival_date"`
	DepartureDate sql.NullTime   `db:"departure_date"`
	Story         sql.NullString `db:"story"`
	Latitude      float64        `db:"latitude"`
	Longitude     float64        `db:"longitude"`
	Tags          pq.StringArray `db:"tags"`
	CreatedAt     time.Time      `db:"created_at"`
}

func (row journeyRow) toDomain() domain.Journey {
	journey := domain.Journey{
		ID:          row.ID,
		UserID:      row.UserID,
		Destination: row.Destination,
		Latitude:    row.Latitude,
		Longitude:   row.Longitude,
		CreatedAt:   row.CreatedAt,
	}
	if row.Title.Valid {
		title := row.Title.String
		journey.Title = &title
	}
	if row.Story.Valid {
		story := row.Story.String
		journey.Story = &story
	}
	if row.ArrivalDate.Valid {
		arrival := row.ArrivalDate.Time
		journey.ArrivalDate = &arrival
	}
	if row.DepartureDate.Valid {
		departure := row.DepartureDate.Time
		journey.DepartureDate = &departure
	}
	if len(row.Tags) > 0 {
		journey.Tags = append([]string(nil), row.Tags...)
	}
	return journey
}

func (r *JourneyRepository) Create(ctx context.Context, journey *domain.Journey) (*domain.Journey, error) {
	const query = `
		INSERT INTO journeys (user_id, destination, title, arrival_date, departure_date, story, latitude, longitude, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, user_id, destination, title, arrival_date, departure_date, story, latitude, longitude, tags, created_at
	`

	var row journeyRow
	err := r.db.GetContext(ctx, &row, query,
		journey.UserID,
		journey.Destination,
		nullString(journey.Title),
		nullTime(journey.ArrivalDate),
		nullTime(journey.DepartureDate),
		nullString(journey.Story),
		journey.Latitude,
		journey.Longitude,
		tagsValue(journey.Tags),
	)
	if err != nil {
		return nil, err
	}
	stored := row.toDomain()
	return &stored, nil
}

func (r *JourneyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Journey, error) {
	const query = `
		SELECT id, user_id, destination, title, arrival_date, departure_date, story, latitude, longitude, tags, created_at
		FROM journeys
		WHERE id = $1
	`

	var row journeyRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	journey := row.toDomain()
	return &journey, nil
}

func (r *JourneyRepository) ListAll(ctx context.Context) ([]domain.Journey, error) {
	const query = `
		SELECT id, user_id, destination, title, arrival_date, departure_date, story, latitude, longitude, tags, created_at
		FROM journeys
		ORDER BY created_at DESC, id
	`

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	journeys := make([]domain.Journey, 0)
	for rows.Next() {
		var row journeyRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		journeys = append(journeys, row.toDomain())
	}
	return journeys, rows.Err()
}

func nullString(ptr *string) sql.NullString {
	if ptr == nil {
		return sql.NullString{Valid: false}
	}
	v := strings.TrimSpace(*ptr)
	if v == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: v, Valid: true}
}

func nullTime(ptr *time.Time) sql.NullTime {
	if ptr == nil || ptr.IsZero() {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *ptr, Valid: true}
}

func tagsValue(tags []string) interface{} {
	if len(tags) == 0 {
		return pq.StringArray(nil)
	}
	return pq.StringArray(tags)
}

var _ ports.JourneyRepository = (*JourneyRepository)(nil)
