package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchcryptid/planet-weather-fusion/internal/domain"
	"github.com/couchcryptid/planet-weather-fusion/internal/observability"
	"github.com/jonboulle/clockwork"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// pinger is implemented by backends that can report reachability.
type pinger interface {
	Ping(ctx context.Context) error
}

// Service exposes the fusion, custom record and history use cases.
type Service struct {
	fuser     *Fuser
	store     domain.RecordStore
	publisher domain.RecordPublisher
	cache     domain.Cache
	metrics   *observability.Metrics
	logger    *slog.Logger
	clock     clockwork.Clock
	newID     func() string
}

// NewService wires the use cases. publisher may be nil.
func NewService(fuser *Fuser, store domain.RecordStore, publisher domain.RecordPublisher, metrics *observability.Metrics, logger *slog.Logger) *Service {
	return &Service{
		fuser:     fuser,
		store:     store,
		publisher: publisher,
		cache:     fuser.cache,
		metrics:   metrics,
		logger:    logger,
		clock:     fuser.clock,
		newID:     fuser.newID,
	}
}

// GetFused fuses (or replays today's cached fusion), records it in history
// and publishes it. Publish failures are logged, not returned.
func (s *Service) GetFused(ctx context.Context) (domain.FusedRecord, error) {
	rec, err := s.fuser.Fuse(ctx)
	if err != nil {
		return domain.FusedRecord{}, err
	}

	if err := s.store.SaveFused(ctx, rec); err != nil {
		return domain.FusedRecord{}, fmt.Errorf("save fused record: %w", err)
	}
	s.metrics.RecordsSaved.WithLabelValues(string(domain.RecordTypeFused)).Inc()

	if s.publisher != nil {
		if err := s.publisher.PublishFused(ctx, rec); err != nil {
			s.metrics.PublishErrors.Inc()
			s.logger.Warn("publish fused record failed", "id", rec.ID, "error", err)
		}
	}
	return rec, nil
}

// StoreCustom saves a caller-supplied record. A blank title is rejected with
// domain.ErrInvalidRecord.
func (s *Service) StoreCustom(ctx context.Context, in domain.CustomInput) (domain.CustomRecord, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.CustomRecord{}, fmt.Errorf("%w: title is required", domain.ErrInvalidRecord)
	}

	data := in.Data
	if data == nil {
		data = map[string]any{}
	}
	rec := domain.CustomRecord{
		ID:          s.newID(),
		Title:       title,
		Description: in.Description,
		Data:        data,
		CreatedAt:   domain.FormatTimestamp(s.clock.Now()),
	}

	if err := s.store.SaveCustom(ctx, rec); err != nil {
		return domain.CustomRecord{}, fmt.Errorf("save custom record: %w", err)
	}
	s.metrics.RecordsSaved.WithLabelValues(string(domain.RecordTypeCustom)).Inc()
	s.logger.Info("custom record stored", "id", rec.ID)
	return rec, nil
}

// History returns one page of records, newest first. HasMore is set whenever
// the page is full, so the last full page reports true.
func (s *Service) History(ctx context.Context, page, limit int) (domain.HistoryPage, error) {
	if page < 1 || limit < 1 || limit > MaxLimit {
		return domain.HistoryPage{}, fmt.Errorf("%w: page=%d limit=%d", domain.ErrInvalidPagination, page, limit)
	}

	records, err := s.store.History(ctx, (page-1)*limit, limit)
	if err != nil {
		return domain.HistoryPage{}, fmt.Errorf("list history: %w", err)
	}
	if records == nil {
		records = []domain.HistoryRecord{}
	}

	return domain.HistoryPage{
		Records: records,
		Pagination: domain.Pagination{
			Page:    page,
			Limit:   limit,
			HasMore: len(records) == limit,
		},
	}, nil
}

// CheckReadiness pings the store and cache when they support it.
func (s *Service) CheckReadiness(ctx context.Context) error {
	var errs []error
	if p, ok := s.store.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if p, ok := s.cache.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("cache: %w", err))
		}
	}
	return errors.Join(errs...)
}
