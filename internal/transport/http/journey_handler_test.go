package http

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/aeternum/journeys-backend/internal/domain"
	"github.com/aeternum/journeys-backend/internal/service"
)

func newMultipartContext(t *testing.T, fields map[string]string, files map[string][]string) echo.Context {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %q: %v", key, err)
		}
	}
	for field, names := range files {
		for _, name := range names {
			part, err := writer.CreateFormFile(field, name)
			if err != nil {
				t.Fatalf("create file part %q: %v", name, err)
			}
			if _, err := io.WriteString(part, "file-bytes-"+name); err != nil {
				t.Fatalf("write file part %q: %v", name, err)
			}
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/journeys", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := c.Request().ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("parse multipart form: %v", err)
	}
	return c
}

func TestBuildDraftParsesFields(t *testing.T) {
	c := newMultipartContext(t, map[string]string{
		"destination":    "  Rome, Italy  ",
		"title":          "Spring break",
		"arrival_date":   "2025-04-02",
		"departure_date": "2025-04-09",
		"story":          "We walked everywhere.",
		"latitude":       "41.9028",
		"longitude":      "12.4964",
		"tags":           "europe, food ,",
	}, map[string][]string{
		"media":   {"one.jpg"},
		"media[]": {"two.mp4"},
	})

	draft, closers, err := buildDraft(c)
	if err != nil {
		t.Fatalf("buildDraft returned error: %v", err)
	}
	defer func() {
		for _, closer := range closers {
			_ = closer.Close()
		}
	}()

	if draft.Destination != "Rome, Italy" {
		t.Fatalf("expected trimmed destination, got %q", draft.Destination)
	}
	if draft.Title == nil || *draft.Title != "Spring break" {
		t.Fatalf("unexpected title %v", draft.Title)
	}
	if draft.ArrivalDate == nil || !draft.ArrivalDate.Equal(time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected arrival date %v", draft.ArrivalDate)
	}
	if draft.Latitude == nil || *draft.Latitude != 41.9028 {
		t.Fatalf("unexpected latitude %v", draft.Latitude)
	}
	if draft.Longitude == nil || *draft.Longitude != 12.4964 {
		t.Fatalf("unexpected longitude %v", draft.Longitude)
	}
	if len(draft.Tags) != 2 || draft.Tags[0] != "europe" || draft.Tags[1] != "food" {
		t.Fatalf("unexpected tags %v", draft.Tags)
	}
	if len(draft.Media) != 2 {
		t.Fatalf("expected 2 media uploads, got %d", len(draft.Media))
	}
	if draft.Media[0].FileName != "one.jpg" || draft.Media[1].FileName != "two.mp4" {
		t.Fatalf("unexpected media order: %q, %q", draft.Media[0].FileName, draft.Media[1].FileName)
	}
	if draft.Media[0].Size <= 0 {
		t.Fatalf("expected upload size to be recorded")
	}
}

func TestBuildDraftOptionalFieldsStayNil(t *testing.T) {
	c := newMultipartContext(t, map[string]string{
		"destination": "Rome, Italy",
		"latitude":    "41.9",
		"longitude":   "12.5",
	}, nil)

	draft, _, err := buildDraft(c)
	if err != nil {
		t.Fatalf("buildDraft returned error: %v", err)
	}
	if draft.Title != nil || draft.Story != nil || draft.ArrivalDate != nil || draft.DepartureDate != nil {
		t.Fatalf("expected optional fields to stay nil, got %+v", draft)
	}
	if len(draft.Media) != 0 {
		t.Fatalf("expected no media, got %d", len(draft.Media))
	}
}

func TestBuildDraftRejectsMalformedValues(t *testing.T) {
	cases := []map[string]string{
		{"destination": "Rome", "arrival_date": "02-04-2025"},
		{"destination": "Rome", "departure_date": "soon"},
		{"destination": "Rome", "latitude": "north"},
		{"destination": "Rome", "longitude": "east"},
	}
	for _, fields := range cases {
		c := newMultipartContext(t, fields, nil)
		if _, _, err := buildDraft(c); err == nil {
			t.Fatalf("expected error for fields %v", fields)
		}
	}
}

func TestGetJourneyInvalidID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	handler := &JourneyHandler{}
	if err := handler.getJourney(c); err != nil {
		t.Fatalf("getJourney returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateJourneyReturnsCreated(t *testing.T) {
	svc := service.NewJourneyService(&stubJourneyRepo{}, &stubMediaRepo{}, &stubStorage{}, service.JourneyServiceConfig{Bucket: "journey-media"})
	handler := &JourneyHandler{journeys: svc}

	c := newMultipartContext(t, map[string]string{
		"destination": "Rome, Italy",
		"latitude":    "41.9028",
		"longitude":   "12.4964",
	}, nil)
	c.Set(contextUserKey, &domain.User{ID: uuid.New(), Email: "traveler@example.com"})

	if err := handler.createJourney(c); err != nil {
		t.Fatalf("createJourney returned error: %v", err)
	}
	rec := c.Response().Writer.(*httptest.ResponseRecorder)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp JourneyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Destination != "Rome, Italy" {
		t.Fatalf("unexpected destination %q", resp.Destination)
	}
}

func TestCreateJourneyValidationIsBadRequest(t *testing.T) {
	svc := service.NewJourneyService(&stubJourneyRepo{}, &stubMediaRepo{}, &stubStorage{}, service.JourneyServiceConfig{Bucket: "journey-media"})
	handler := &JourneyHandler{journeys: svc}

	c := newMultipartContext(t, map[string]string{"destination": "Rome, Italy"}, nil)
	c.Set(contextUserKey, &domain.User{ID: uuid.New(), Email: "traveler@example.com"})

	if err := handler.createJourney(c); err != nil {
		t.Fatalf("createJourney returned error: %v", err)
	}
	rec := c.Response().Writer.(*httptest.ResponseRecorder)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing coordinates, got %d", rec.Code)
	}
}

func TestGetJourneyUnknownIDIsNotFound(t *testing.T) {
	svc := service.NewJourneyService(&stubJourneyRepo{}, &stubMediaRepo{}, &stubStorage{}, service.JourneyServiceConfig{})
	handler := &JourneyHandler{journeys: svc}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	if err := handler.getJourney(c); err != nil {
		t.Fatalf("getJourney returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown journey, got %d", rec.Code)
	}
}

func TestToJourneyResponseFormatsDates(t *testing.T) {
	arrival := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)
	journey := domain.Journey{
		ID:          uuid.New(),
		Destination: "Rome, Italy",
		ArrivalDate: &arrival,
		Latitude:    41.9,
		Longitude:   12.5,
		Media: []domain.JourneyMedia{
			{ID: uuid.New(), MediaURL: "http://x/1.jpg", MediaType: domain.MediaTypeImage, Ordering: 0},
		},
	}

	resp := toJourneyResponse(journey)
	if resp.ArrivalDate == nil || *resp.ArrivalDate != "2025-04-02" {
		t.Fatalf("unexpected arrival date %v", resp.ArrivalDate)
	}
	if resp.DepartureDate != nil {
		t.Fatalf("expected nil departure date")
	}
	if len(resp.Media) != 1 || resp.Media[0].MediaType != domain.MediaTypeImage {
		t.Fatalf("unexpected media mapping %+v", resp.Media)
	}
}

// --- Test doubles ---

type stubJourneyRepo struct {
	stored map[uuid.UUID]*domain.Journey
}

func (s *stubJourneyRepo) Create(_ context.Context, journey *domain.Journey) (*domain.Journey, error) {
	if s.stored == nil {
		s.stored = make(map[uuid.UUID]*domain.Journey)
	}
	cloned := *journey
	cloned.ID = uuid.New()
	cloned.CreatedAt = time.Now().UTC()
	s.stored[cloned.ID] = &cloned
	result := cloned
	return &result, nil
}

func (s *stubJourneyRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Journey, error) {
	journey, ok := s.stored[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cloned := *journey
	return &cloned, nil
}

func (s *stubJourneyRepo) ListAll(_ context.Context) ([]domain.Journey, error) {
	journeys := make([]domain.Journey, 0, len(s.stored))
	for _, journey := range s.stored {
		journeys = append(journeys, *journey)
	}
	return journeys, nil
}

type stubMediaRepo struct{}

func (s *stubMediaRepo) Create(_ context.Context, media *domain.JourneyMedia) (*domain.JourneyMedia, error) {
	cloned := *media
	cloned.ID = uuid.New()
	return &cloned, nil
}

func (s *stubMediaRepo) ListByJourneyIDs(_ context.Context, _ []uuid.UUID) (map[uuid.UUID][]domain.JourneyMedia, error) {
	return map[uuid.UUID][]domain.JourneyMedia{}, nil
}

type stubStorage struct{}

func (s *stubStorage) Upload(_ context.Context, bucket, objectName, _ string, reader io.Reader, _ int64) (string, error) {
	_, err := io.Copy(io.Discard, reader)
	return "http://storage.local/" + bucket + "/" + objectName, err
}
