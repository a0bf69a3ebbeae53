package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "boxoffice/internal/errors"
	"boxoffice/internal/logger"
	"boxoffice/internal/models"
	"boxoffice/internal/seating"
)

type EventStore interface {
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	List(ctx context.Context, query string, page, pageSize int) ([]models.Event, error)
}

type EventSearcher interface {
	Search(ctx context.Context, query string, page, pageSize int) ([]models.Event, error)
}

type BookingStore interface {
	ListByEventTitle(ctx context.Context, title string) ([]models.Booking, error)
	ListByEmail(ctx context.Context, email string) ([]models.Booking, error)
}

// Cache stores JSON values with a TTL
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

type EventService struct {
	events   EventStore
	bookings BookingStore
	searcher EventSearcher
	cache    Cache
	cacheTTL time.Duration
	layout   seating.Layout
}

// NewEventService wires the catalog. searcher and cache may be nil.
func NewEventService(events EventStore, bookings BookingStore, searcher EventSearcher, cache Cache, cacheTTL time.Duration, layout seating.Layout) *EventService {
	return &EventService{
		events:   events,
		bookings: bookings,
		searcher: searcher,
		cache:    cache,
		cacheTTL: cacheTTL,
		layout:   layout,
	}
}

func (s *EventService) List(ctx context.Context, query string, page, pageSize int) ([]models.ListEventsResponseItem, error) {
	query = strings.TrimSpace(query)
	log := logger.WithContext(ctx)

	cacheKey := fmt.Sprintf("events:list:%d:%d", page, pageSize)
	if query == "" && s.cache != nil {
		var cached []models.ListEventsResponseItem
		hit, err := s.cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			log.Warn("Events cache read failed", "error", err)
		} else if hit {
			return cached, nil
		}
	}

	var (
		events []models.Event
		err    error
	)
	if query != "" && s.searcher != nil {
		events, err = s.searcher.Search(ctx, query, page, pageSize)
		if err != nil {
			log.Warn("Event search failed, falling back to database", "error", err)
			events, err = s.events.List(ctx, query, page, pageSize)
		}
	} else {
		events, err = s.events.List(ctx, query, page, pageSize)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	result := make([]models.ListEventsResponseItem, len(events))
	for i, event := range events {
		result[i] = models.ListEventsResponseItem{
			ID:    event.ID,
			Title: event.Title,
			Date:  event.Date,
			Time:  event.Time,
			Price: event.Price,
		}
	}

	if query == "" && s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, result, s.cacheTTL); err != nil {
			log.Warn("Events cache write failed", "error", err)
		}
	}

	return result, nil
}

func (s *EventService) Get(ctx context.Context, id int64) (*models.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, apperrors.ErrEventNotFound
	}
	return event, nil
}

// SeatMap resolves seat availability for an event. It is recomputed on every call.
func (s *EventService) SeatMap(ctx context.Context, id int64) (*models.SeatMapResponse, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookings.ListByEventTitle(ctx, event.Title)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	views := seating.Resolve(event.Title, s.layout.Generate(), bookings)
	booked, available := seating.Count(views)

	return &models.SeatMapResponse{
		Event:     *event,
		Seats:     views,
		Booked:    booked,
		Available: available,
	}, nil
}
