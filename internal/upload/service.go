// Package upload joins the transcoder, the buffer cache and the upload
// providers: images are processed into the cache first and uploaded later
// by handle.
package upload

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/optibridge/service/internal/cache"
	"github.com/optibridge/service/internal/history"
	"github.com/optibridge/service/internal/metrics"
	"github.com/optibridge/service/internal/provider"
	"github.com/optibridge/service/internal/transcode"
)

const (
	// DefaultThumbnailSize bounds the longest side of history thumbnails.
	DefaultThumbnailSize = 200
	// UploadFilename is the name every processed image is uploaded under.
	UploadFilename = "image.webp"
)

// ErrImageNotFound is returned when a handle is unknown or already consumed.
var ErrImageNotFound = errors.New("image not found in cache")

// HistoryRecorder persists completed uploads.
type HistoryRecorder interface {
	Insert(ctx context.Context, rec history.Record) error
}

// UploaderFactory builds an Uploader for the given credentials.
type UploaderFactory func(creds provider.Credentials) (provider.Uploader, error)

// Processed is the outcome of Process.
type Processed struct {
	Handle        string `json:"temp_id"        example:"0b8c3f4e-5d61-4d8b-a3c2-5a9e2f7b1c10"`
	SizeInfo      string `json:"size_info"      example:"182.37 KB"`
	Width         int    `json:"width"          example:"1600"`
	Height        int    `json:"height"         example:"1067"`
	PreviewBase64 string `json:"preview_base64"`
}

// Result is the outcome of Upload.
type Result struct {
	URL string `json:"url" example:"https://cdn.example.com/3f9c.webp"`
}

// Service processes images into the cache and uploads them by handle.
type Service struct {
	cache       cache.Store
	history     HistoryRecorder
	metrics     metrics.Recorder
	newUploader UploaderFactory
	sem         *semaphore.Weighted
	thumbSize   int
	now         func() time.Time
	newID       func() string
}

// Option customises a Service.
type Option func(*Service)

// WithMetrics sets the metrics recorder.
func WithMetrics(m metrics.Recorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithUploaderFactory replaces provider.New.
func WithUploaderFactory(f UploaderFactory) Option {
	return func(s *Service) {
		if f != nil {
			s.newUploader = f
		}
	}
}

// WithMaxConcurrent bounds simultaneous transcode passes across all requests.
func WithMaxConcurrent(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithThumbnailSize overrides the thumbnail bound.
func WithThumbnailSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.thumbSize = n
		}
	}
}

// WithClock overrides the time source for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service over store, recording completed uploads with rec.
func NewService(store cache.Store, rec HistoryRecorder, opts ...Option) *Service {
	s := &Service{
		cache:   store,
		history: rec,
		metrics: metrics.Noop{},
		newUploader: func(c provider.Credentials) (provider.Uploader, error) {
			return provider.New(c)
		},
		sem:       semaphore.NewWeighted(int64(runtime.NumCPU())),
		thumbSize: DefaultThumbnailSize,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process transcodes src with the given width clamp and caches the result.
func (s *Service) Process(ctx context.Context, src Source, maxWidth int) (*Processed, error) {
	img, err := src.transcode(ctx, s.transcoder(maxWidth))
	if err != nil {
		s.metrics.ObserveProcessed(src.Label(), metrics.StatusError)
		return nil, err
	}

	handle, err := s.cache.Put(ctx, img.Data)
	if err != nil {
		s.metrics.ObserveProcessed(src.Label(), metrics.StatusError)
		return nil, fmt.Errorf("cache processed image: %w", err)
	}
	s.metrics.ObserveProcessed(src.Label(), metrics.StatusOK)
	s.refreshCacheGauge(ctx)

	log.Debug().
		Str("handle", handle).
		Str("source", src.Label()).
		Int("width", img.Width).
		Int("height", img.Height).
		Int("bytes", len(img.Data)).
		Msg("image processed")

	return &Processed{
		Handle:        handle,
		SizeInfo:      img.SizeInfo(),
		Width:         img.Width,
		Height:        img.Height,
		PreviewBase64: base64.StdEncoding.EncodeToString(img.Data),
	}, nil
}

// Upload sends the cached image behind handle to the provider named by tag,
// records it in history and frees the cache entry. On any failure the entry
// stays cached so the caller may retry with the same handle.
func (s *Service) Upload(ctx context.Context, handle, tag string, creds provider.CredentialSet) (*Result, error) {
	data, err := s.cache.Get(ctx, handle)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, ErrImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read cached image: %w", err)
	}

	kind, err := provider.ParseKind(tag)
	if err != nil {
		return nil, err
	}
	c, err := creds.For(kind)
	if err != nil {
		return nil, err
	}
	uploader, err := s.newUploader(c)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	url, err := uploader.Upload(ctx, data, UploadFilename)
	if err != nil {
		s.metrics.ObserveUpload(string(kind), metrics.StatusError, time.Since(start))
		log.Warn().Err(err).Str("provider", string(kind)).Str("handle", handle).Msg("upload failed")
		return nil, err
	}
	s.metrics.ObserveUpload(string(kind), metrics.StatusOK, time.Since(start))

	thumb, err := s.transcoder(0).Thumbnail(ctx, data, s.thumbSize)
	if err != nil {
		return nil, fmt.Errorf("generate thumbnail: %w", err)
	}

	rec := history.Record{
		ID:              s.newID(),
		Provider:        string(kind),
		OriginalName:    UploadFilename,
		URL:             url,
		CreatedAt:       s.now().Unix(),
		ThumbnailBase64: base64.StdEncoding.EncodeToString(thumb),
	}
	if err := s.history.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("record upload history: %w", err)
	}

	if err := s.cache.Delete(ctx, handle); err != nil {
		log.Warn().Err(err).Str("handle", handle).Msg("evict uploaded image")
	}
	s.refreshCacheGauge(ctx)

	log.Info().Str("provider", string(kind)).Str("handle", handle).Str("url", url).Msg("image uploaded")
	return &Result{URL: url}, nil
}

func (s *Service) transcoder(maxWidth int) *transcode.Transcoder {
	return transcode.New(maxWidth, transcode.WithSemaphore(s.sem))
}

func (s *Service) refreshCacheGauge(ctx context.Context) {
	n, err := s.cache.Len(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("count cache entries")
		return
	}
	s.metrics.SetCacheEntries(n)
}
