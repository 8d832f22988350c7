package domain

import (
	"time"

	"github.com/google/uuid"
)

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

type Journey struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	UserID        uuid.UUID  `db:"user_id" json:"user_id"`
	Destination   string     `db:"destination" json:"destination"`
	Title         *string    `db:"title" json:"title,omitempty"`
	ArrivalDate   *time.Time `db:"arrival_date" json:"arrival_date,omitempty"`
	DepartureDate *time.Time `db:"departure_date" json:"departure_date,omitempty"`
	Story         *string    `db:"story" json:"story,omitempty"`
	Latitude      float64    `db:"latitude" json:"latitude"`
	Longitude     float64    `db:"longitude" json:"longitude"`
	Tags          []string   `db:"-" json:"tags,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`

	Media []JourneyMedia `json:"media,omitempty"`
}

type JourneyMedia struct {
	ID        uuid.UUID `db:"id" json:"id"`
	JourneyID uuid.UUID `db:"journey_id" json:"journey_id"`
	ObjectKey string    `db:"object_key" json:"-"`
	MediaURL  string    `db:"media_url" json:"media_url"`
	MediaType MediaType `db:"media_type" json:"media_type"`
	Ordering  int       `db:"ordering" json:"ordering"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
