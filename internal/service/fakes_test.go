package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"boxoffice/internal/external"
	"boxoffice/internal/models"
)

type fakeGateway struct {
	mu          sync.Mutex
	payCalls    []external.PayRequest
	statusCalls []string
	payResp     json.RawMessage
	statusResp  json.RawMessage
	err         error
}

func (g *fakeGateway) Pay(_ context.Context, req external.PayRequest) (json.RawMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.payCalls = append(g.payCalls, req)
	if g.err != nil {
		return nil, g.err
	}
	return g.payResp, nil
}

func (g *fakeGateway) Status(_ context.Context, id string) (json.RawMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statusCalls = append(g.statusCalls, id)
	if g.err != nil {
		return nil, g.err
	}
	return g.statusResp, nil
}

type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
	events   []any
	err      error
}

func (p *fakePublisher) Publish(subject string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.events = append(p.events, data)
	return p.err
}

type fakeEventStore struct {
	events    map[int64]*models.Event
	listCalls int
	err       error
}

func (s *fakeEventStore) GetByID(_ context.Context, id int64) (*models.Event, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.events[id], nil
}

func (s *fakeEventStore) List(_ context.Context, _ string, _, _ int) ([]models.Event, error) {
	s.listCalls++
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Event
	for id := int64(1); id <= int64(len(s.events)); id++ {
		if e, ok := s.events[id]; ok {
			out = append(out, *e)
		}
	}
	return out, nil
}

type fakeBookingStore struct {
	bookings []models.Booking
}

func (s *fakeBookingStore) ListByEventTitle(_ context.Context, title string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range s.bookings {
		if b.EventTitle == title {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeBookingStore) ListByEmail(_ context.Context, email string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range s.bookings {
		if b.CustomerEmail == email {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeSearcher struct {
	events []models.Event
	err    error
	calls  int
}

func (s *fakeSearcher) Search(_ context.Context, _ string, _, _ int) ([]models.Event, error) {
	s.calls++
	return s.events, s.err
}

type memCache struct {
	data map[string][]byte
}

func (c *memCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	v, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(v, dest)
}

func (c *memCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	if c.data == nil {
		c.data = make(map[string][]byte)
	}
	v, err := json.Marshal(value)
	c.data[key] = v
	return err
}
