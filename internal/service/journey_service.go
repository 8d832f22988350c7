package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aeternum/journeys-backend/internal/domain"
	"github.com/aeternum/journeys-backend/internal/media"
	"github.com/aeternum/journeys-backend/internal/repository/ports"
)

var (
	ErrJourneyValidation = errors.New("journey validation failed")
	ErrJourneyNotFound   = errors.New("journey not found")
)

type JourneyServiceConfig struct {
	Bucket            string
	PublicBaseURL     string
	MaxMediaFiles     int
	MaxMediaBytes     int64
	AllowedImageMIMEs []string
	AllowedVideoMIMEs []string
	ImageProcessor    media.Processor
	ImageMaxDimension int
}

// MediaUpload is one pending file attached to a draft, in attachment order.
type MediaUpload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

// JourneyDraft is the transient form state for one submission. It lives only
// for the duration of a CreateJourney call and is never persisted as-is.
type JourneyDraft struct {
	Destination   string
	Title         *string
	ArrivalDate   *time.Time
	DepartureDate *time.Time
	Story         *string
	Latitude      *float64
	Longitude     *float64
	Tags          []string
	Media         []MediaUpload
}

type JourneyService struct {
	journeys ports.JourneyRepository
	media    ports.JourneyMediaRepository
	storage  ports.ObjectStorage

	bucket            string
	publicBase        string
	maxFiles          int
	maxBytes          int64
	imageMIMEs        map[string]struct{}
	videoMIMEs        map[string]struct{}
	imageProcessor    media.Processor
	imageMaxDimension int
}

const (
	defaultMaxMediaFiles = 10
	defaultMaxMediaBytes = int64(50 * 1024 * 1024)
)

var defaultImageMIMEs = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/gif",
}

var defaultVideoMIMEs = []string{
	"video/mp4",
	"video/webm",
	"video/ogg",
	"video/quicktime",
}

func NewJourneyService(
	journeys ports.JourneyRepository,
	mediaRepo ports.JourneyMediaRepository,
	storage ports.ObjectStorage,
	cfg JourneyServiceConfig,
) *JourneyService {
	maxFiles := cfg.MaxMediaFiles
	if maxFiles <= 0 {
		maxFiles = defaultMaxMediaFiles
	}
	maxBytes := cfg.MaxMediaBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxMediaBytes
	}
	imageMIMEs := cfg.AllowedImageMIMEs
	if len(imageMIMEs) == 0 {
		imageMIMEs = defaultImageMIMEs
	}
	videoMIMEs := cfg.AllowedVideoMIMEs
	if len(videoMIMEs) == 0 {
		videoMIMEs = defaultVideoMIMEs
	}
	maxDimension := cfg.ImageMaxDimension
	if maxDimension <= 0 {
		maxDimension = media.DefaultMaxDimension
	}

	return &JourneyService{
		journeys:          journeys,
		media:             mediaRepo,
		storage:           storage,
		bucket:            strings.TrimSpace(cfg.Bucket),
		publicBase:        strings.TrimRight(cfg.PublicBaseURL, "/"),
		maxFiles:          maxFiles,
		maxBytes:          maxBytes,
		imageMIMEs:        mimeSet(imageMIMEs),
		videoMIMEs:        mimeSet(videoMIMEs),
		imageProcessor:    cfg.ImageProcessor,
		imageMaxDimension: maxDimension,
	}
}

// CreateJourney persists a draft and its attached media. The journey row is
// inserted first; media files are then uploaded and linked strictly one at a
// time, in attachment order. A failure mid-loop returns immediately: rows and
// blobs from earlier iterations stay committed, later files are never
// touched. There is no retry and no compensating delete; the caller surfaces
// a generic failure and the user reconciles by hand.
func (s *JourneyService) CreateJourney(ctx context.Context, userID uuid.UUID, draft JourneyDraft) (*domain.Journey, error) {
	if err := s.validateDraft(draft); err != nil {
		return nil, err
	}

	toCreate := &domain.Journey{
		UserID:        userID,
		Destination:   strings.TrimSpace(draft.Destination),
		Title:         normalizeString(draft.Title),
		ArrivalDate:   draft.ArrivalDate,
		DepartureDate: draft.DepartureDate,
		Story:         normalizeString(draft.Story),
		Latitude:      *draft.Latitude,
		Longitude:     *draft.Longitude,
		Tags:          normalizeTags(draft.Tags),
	}

	stored, err := s.journeys.Create(ctx, toCreate)
	if err != nil {
		return nil, err
	}

	for idx, upload := range draft.Media {
		if err := s.attachMedia(ctx, stored.ID, idx, upload); err != nil {
			return nil, err
		}
	}

	return s.GetJourney(ctx, stored.ID)
}

// attachMedia uploads one file and links it to the journey. The media row is
// written only after the blob upload settles, so a failed upload leaves no
// dangling row.
func (s *JourneyService) attachMedia(ctx context.Context, journeyID uuid.UUID, ordering int, upload MediaUpload) error {
	contentType := media.NormalizeContentType(upload.ContentType, upload.FileName)
	mediaType := s.mediaTypeFor(contentType)

	objectKey := fmt.Sprintf("journeys/%s/%s%s", journeyID, uuid.NewString(), objectExtension(upload.FileName, contentType))

	reader := upload.Reader
	size := upload.Size
	if mediaType == domain.MediaTypeImage && s.imageProcessor != nil {
		result, err := s.imageProcessor.Process(ctx, media.Upload{
			Reader:      upload.Reader,
			Size:        upload.Size,
			FileName:    upload.FileName,
			ContentType: contentType,
		}, s.imageMaxDimension)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(result.Bytes)
		size = int64(len(result.Bytes))
		contentType = result.ContentType
	}

	url, err := s.storage.Upload(ctx, s.bucket, objectKey, contentType, reader, size)
	if err != nil {
		return err
	}
	if s.publicBase != "" {
		url = s.publicBase + "/" + strings.TrimLeft(objectKey, "/")
	}

	_, err = s.media.Create(ctx, &domain.JourneyMedia{
		JourneyID: journeyID,
		ObjectKey: objectKey,
		MediaURL:  url,
		MediaType: mediaType,
		Ordering:  ordering,
	})
	return err
}

// ListJourneys returns every journey with its media listing, newest first.
func (s *JourneyService) ListJourneys(ctx context.Context) ([]domain.Journey, error) {
	journeys, err := s.journeys.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(journeys))
	for _, journey := range journeys {
		ids = append(ids, journey.ID)
	}
	if len(ids) > 0 {
		mediaMap, err := s.media.ListByJourneyIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range journeys {
			journeys[i].Media = mediaMap[journeys[i].ID]
		}
	}
	return journeys, nil
}

func (s *JourneyService) GetJourney(ctx context.Context, id uuid.UUID) (*domain.Journey, error) {
	journey, err := s.journeys.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrJourneyNotFound
		}
		return nil, err
	}

	mediaMap, err := s.media.ListByJourneyIDs(ctx, []uuid.UUID{journey.ID})
	if err != nil {
		return nil, err
	}
	journey.Media = mediaMap[journey.ID]
	return journey, nil
}

func (s *JourneyService) validateDraft(draft JourneyDraft) error {
	if strings.TrimSpace(draft.Destination) == "" {
		return fmt.Errorf("%w: destination is required", ErrJourneyValidation)
	}
	if draft.Latitude == nil || draft.Longitude == nil {
		return fmt.Errorf("%w: select a destination from the suggestions", ErrJourneyValidation)
	}
	if len(draft.Media) > s.maxFiles {
		return fmt.Errorf("%w: maximum %d media files allowed", ErrJourneyValidation, s.maxFiles)
	}
	for idx, upload := range draft.Media {
		if upload.Size <= 0 {
			return fmt.Errorf("%w: media file %d is empty", ErrJourneyValidation, idx+1)
		}
		if s.maxBytes > 0 && upload.Size > s.maxBytes {
			return fmt.Errorf("%w: media file %d exceeds size limit (%d bytes)", ErrJourneyValidation, idx+1, s.maxBytes)
		}
		contentType := media.NormalizeContentType(upload.ContentType, upload.FileName)
		if _, ok := s.imageMIMEs[contentType]; ok {
			continue
		}
		if _, ok := s.videoMIMEs[contentType]; ok {
			continue
		}
		return fmt.Errorf("%w: media file %d has unsupported content type %s", ErrJourneyValidation, idx+1, contentType)
	}
	return nil
}

// mediaTypeFor classifies once, at upload time. Read paths trust the stored
// value instead of re-sniffing the URL.
func (s *JourneyService) mediaTypeFor(contentType string) domain.MediaType {
	if _, ok := s.videoMIMEs[contentType]; ok {
		return domain.MediaTypeVideo
	}
	return domain.MediaTypeImage
}

func objectExtension(fileName, contentType string) string {
	if fileName != "" {
		if ext := strings.ToLower(strings.TrimSpace(filepath.Ext(fileName))); ext != "" {
			return ext
		}
	}
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "video/ogg":
		return ".ogv"
	case "video/quicktime":
		return ".mov"
	}
	return ".bin"
}

func mimeSet(mimes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(mimes))
	for _, mt := range mimes {
		set[strings.ToLower(strings.TrimSpace(mt))] = struct{}{}
	}
	return set
}

func normalizeString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
