package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aeternum/journeys-backend/internal/domain"
)

func TestPlaceService_Suggest_ShortQuerySkipsGeocoder(t *testing.T) {
	geocoder := &fakeGeocoder{}
	svc := NewPlaceService(geocoder)

	for _, query := range []string{"", "R", "Ro", "  Ro  "} {
		places := svc.Suggest(context.Background(), query)
		if places == nil {
			t.Fatalf("Suggest(%q) returned nil", query)
		}
		if len(places) != 0 {
			t.Fatalf("Suggest(%q) returned %d places, want 0", query, len(places))
		}
	}
	if geocoder.calls != 0 {
		t.Fatalf("geocoder called %d times for short queries", geocoder.calls)
	}
}

func TestPlaceService_Suggest_ReturnsCandidates(t *testing.T) {
	geocoder := &fakeGeocoder{
		places: []domain.Place{
			{ID: "place.rome", Name: "Rome, Italy", Longitude: 12.4964, Latitude: 41.9028},
			{ID: "place.romania", Name: "Romania", Longitude: 24.9668, Latitude: 45.9432},
		},
	}
	svc := NewPlaceService(geocoder)

	places := svc.Suggest(context.Background(), " Rom ")
	if len(places) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(places))
	}
	if geocoder.lastQuery != "Rom" {
		t.Fatalf("expected trimmed query, got %q", geocoder.lastQuery)
	}
	if places[0].Name != "Rome, Italy" {
		t.Fatalf("unexpected first candidate %q", places[0].Name)
	}
}

func TestPlaceService_Suggest_GeocoderFailureDegradesToEmpty(t *testing.T) {
	geocoder := &fakeGeocoder{err: errors.New("upstream down")}
	svc := NewPlaceService(geocoder)

	places := svc.Suggest(context.Background(), "Rome")
	if places == nil || len(places) != 0 {
		t.Fatalf("expected empty result on geocoder failure, got %v", places)
	}
}

func TestPlaceService_Suggest_NilResultBecomesEmpty(t *testing.T) {
	svc := NewPlaceService(&fakeGeocoder{})

	places := svc.Suggest(context.Background(), "Nowhere")
	if places == nil {
		t.Fatalf("expected non-nil empty slice")
	}
}

type fakeGeocoder struct {
	places    []domain.Place
	err       error
	calls     int
	lastQuery string
}

func (f *fakeGeocoder) Search(_ context.Context, query string) ([]domain.Place, error) {
	f.calls++
	f.lastQuery = query
	if f.err != nil {
		return nil, f.err
	}
	return f.places, nil
}

var _ Geocoder = (*fakeGeocoder)(nil)
