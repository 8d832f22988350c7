package service

import (
	"context"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/aeternum/journeys-backend/internal/domain"
)

// minQueryLength keeps trivial keystrokes from reaching the paid geocoding
// API at all.
const minQueryLength = 3

// Geocoder resolves free text into candidate places.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]domain.Place, error)
}

// PlaceService wraps the geocoder with the suggestion policy: short queries
// are answered locally and upstream failures degrade to an empty candidate
// list. Suggestions are a convenience, not a critical path, so the caller
// never sees a resolver error.
type PlaceService struct {
	geocoder Geocoder
}

func NewPlaceService(geocoder Geocoder) *PlaceService {
	return &PlaceService{geocoder: geocoder}
}

// Suggest returns candidate places for a destination query. The result is
// always non-nil; each call fully replaces whatever the client showed before.
func (s *PlaceService) Suggest(ctx context.Context, query string) []domain.Place {
	trimmed := strings.TrimSpace(query)
	if utf8.RuneCountInString(trimmed) < minQueryLength {
		return []domain.Place{}
	}

	places, err := s.geocoder.Search(ctx, trimmed)
	if err != nil {
		log.Printf("place suggest %q: %v", trimmed, err)
		return []domain.Place{}
	}
	if places == nil {
		return []domain.Place{}
	}
	return places
}
