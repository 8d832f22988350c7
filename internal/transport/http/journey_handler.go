package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/aeternum/journeys-backend/internal/domain"
	"github.com/aeternum/journeys-backend/internal/service"
	"github.com/aeternum/journeys-backend/internal/util"
)

const dateLayout = "2006-01-02"

type JourneyHandler struct {
	journeys *service.JourneyService

	maxUploadBytes int64
}

type JourneyMediaResponse struct {
	ID        uuid.UUID        `json:"id"`
	MediaURL  string           `json:"media_url"`
	MediaType domain.MediaType `json:"media_type"`
	Ordering  int              `json:"ordering"`
}

type JourneyResponse struct {
	ID            uuid.UUID              `json:"id"`
	Destination   string                 `json:"destination"`
	Title         *string                `json:"title,omitempty"`
	ArrivalDate   *string                `json:"arrival_date,omitempty"`
	DepartureDate *string                `json:"departure_date,omitempty"`
	Story         *string                `json:"story,omitempty"`
	Latitude      float64                `json:"latitude"`
	Longitude     float64                `json:"longitude"`
	Tags          []string               `json:"tags,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	Media         []JourneyMediaResponse `json:"media"`
}

type JourneyListResponse struct {
	Journeys []JourneyResponse `json:"journeys"`
}

func RegisterJourneys(e *echo.Echo, auth *service.AuthService, journeys *service.JourneyService, maxUploadBytes int64) {
	handler := &JourneyHandler{
		journeys:       journeys,
		maxUploadBytes: maxUploadBytes,
	}

	group := e.Group("/api/v1/journeys", RequireAuth(auth))
	group.POST("", handler.createJourney)
	group.GET("", handler.listJourneys)
	group.GET("/:id", handler.getJourney)
}

// createJourney handles POST /api/v1/journeys
func (h *JourneyHandler) createJourney(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	memory := h.maxUploadBytes
	if memory <= 0 {
		memory = 32 << 20
	}
	if err := c.Request().ParseMultipartForm(memory); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid multipart payload"))
	}

	draft, closeFns, err := buildDraft(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	defer func() {
		for _, closer := range closeFns {
			_ = closer.Close()
		}
	}()

	journey, err := h.journeys.CreateJourney(c.Request().Context(), user.ID, draft)
	if err != nil {
		if errors.Is(err, service.ErrJourneyValidation) {
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		}
		// Insert and upload failures alike surface as one generic notice; the
		// log line carries the cause.
		return c.JSON(http.StatusInternalServerError, util.Error("unable to save journey"))
	}
	return c.JSON(http.StatusCreated, toJourneyResponse(*journey))
}

// listJourneys handles GET /api/v1/journeys
func (h *JourneyHandler) listJourneys(c echo.Context) error {
	journeys, err := h.journeys.ListJourneys(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to list journeys"))
	}

	resp := JourneyListResponse{Journeys: make([]JourneyResponse, 0, len(journeys))}
	for _, journey := range journeys {
		resp.Journeys = append(resp.Journeys, toJourneyResponse(journey))
	}
	return c.JSON(http.StatusOK, resp)
}

// getJourney handles GET /api/v1/journeys/{id}. A missing journey is 404,
// distinct from transport failures, so the gallery can tell "not found" from
// "still loading".
func (h *JourneyHandler) getJourney(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid journey id"))
	}

	journey, err := h.journeys.GetJourney(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrJourneyNotFound) {
			return c.JSON(http.StatusNotFound, util.Error(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load journey"))
	}
	return c.JSON(http.StatusOK, toJourneyResponse(*journey))
}

func buildDraft(c echo.Context) (service.JourneyDraft, []io.ReadCloser, error) {
	draft := service.JourneyDraft{
		Destination: strings.TrimSpace(c.FormValue("destination")),
		Title:       optionalString(c.FormValue("title")),
		Story:       optionalString(c.FormValue("story")),
	}

	arrival, err := optionalDate(c.FormValue("arrival_date"))
	if err != nil {
		return service.JourneyDraft{}, nil, errors.New("arrival_date must be YYYY-MM-DD")
	}
	draft.ArrivalDate = arrival

	departure, err := optionalDate(c.FormValue("departure_date"))
	if err != nil {
		return service.JourneyDraft{}, nil, errors.New("departure_date must be YYYY-MM-DD")
	}
	draft.DepartureDate = departure

	draft.Latitude, err = optionalFloat(c.FormValue("latitude"))
	if err != nil {
		return service.JourneyDraft{}, nil, errors.New("latitude must be a number")
	}
	draft.Longitude, err = optionalFloat(c.FormValue("longitude"))
	if err != nil {
		return service.JourneyDraft{}, nil, errors.New("longitude must be a number")
	}

	if raw := strings.TrimSpace(c.FormValue("tags")); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(tag); trimmed != "" {
				draft.Tags = append(draft.Tags, trimmed)
			}
		}
	}

	uploads, closers, err := buildMediaUploads(c.Request().MultipartForm)
	if err != nil {
		return service.JourneyDraft{}, nil, err
	}
	draft.Media = uploads
	return draft, closers, nil
}

func buildMediaUploads(form *multipart.Form) ([]service.MediaUpload, []io.ReadCloser, error) {
	if form == nil {
		return nil, nil, nil
	}

	var headers []*multipart.FileHeader
	if files := form.File["media"]; files != nil {
		headers = append(headers, files...)
	}
	if files := form.File["media[]"]; files != nil {
		headers = append(headers, files...)
	}

	uploads := make([]service.MediaUpload, 0, len(headers))
	closers := make([]io.ReadCloser, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			for _, closer := range closers {
				_ = closer.Close()
			}
			return nil, nil, err
		}
		closers = append(closers, file)
		uploads = append(uploads, service.MediaUpload{
			Reader:      file,
			Size:        header.Size,
			FileName:    header.Filename,
			ContentType: header.Header.Get(echo.HeaderContentType),
		})
	}
	return uploads, closers, nil
}

func toJourneyResponse(journey domain.Journey) JourneyResponse {
	resp := JourneyResponse{
		ID:            journey.ID,
		Destination:   journey.Destination,
		Title:         journey.Title,
		ArrivalDate:   formatDate(journey.ArrivalDate),
		DepartureDate: formatDate(journey.DepartureDate),
		Story:         journey.Story,
		Latitude:      journey.Latitude,
		Longitude:     journey.Longitude,
		Tags:          journey.Tags,
		CreatedAt:     journey.CreatedAt,
		Media:         make([]JourneyMediaResponse, 0, len(journey.Media)),
	}
	for _, item := range journey.Media {
		resp.Media = append(resp.Media, JourneyMediaResponse{
			ID:        item.ID,
			MediaURL:  item.MediaURL,
			MediaType: item.MediaType,
			Ordering:  item.Ordering,
		})
	}
	return resp
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func optionalDate(value string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, trimmed)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func optionalFloat(value string) (*float64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func formatDate(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.Format(dateLayout)
	return &formatted
}
