package main

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"boxoffice/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryEvents struct {
	stored []models.Event
	err    error
}

func (m *memoryEvents) Create(_ context.Context, event *models.Event) error {
	if m.err != nil {
		return m.err
	}
	event.ID = int64(len(m.stored) + 1)
	m.stored = append(m.stored, *event)
	return nil
}

func (m *memoryEvents) List(_ context.Context, _ string, page, pageSize int) ([]models.Event, error) {
	from := (page - 1) * pageSize
	if from >= len(m.stored) {
		return nil, nil
	}
	to := min(from+pageSize, len(m.stored))
	return m.stored[from:to], nil
}

type memoryIndex struct {
	ids []int64
}

func (m *memoryIndex) IndexEvent(_ context.Context, event *models.Event) error {
	m.ids = append(m.ids, event.ID)
	return nil
}

func TestBuildEvents(t *testing.T) {
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	events := buildEvents(rand.New(rand.NewSource(1)), 5, start)

	require.Len(t, events, 5)
	assert.Equal(t, "2026-10-08", events[0].Date)
	assert.Equal(t, "2026-10-11", events[1].Date)

	titles := map[string]bool{}
	for _, e := range events {
		assert.False(t, titles[e.Title], "titles must be unique: %s", e.Title)
		titles[e.Title] = true
		require.NotNil(t, e.Price)
		assert.Positive(t, *e.Price)
	}
}

func TestSeedIndexesInsertedEvents(t *testing.T) {
	store := &memoryEvents{}
	index := &memoryIndex{}
	seeder := &Seeder{events: store, indexer: index}

	n, err := seeder.Seed(context.Background(), buildEvents(rand.New(rand.NewSource(2)), 3, time.Now()))
	require.NoError(t, err)

	assert.Equal(t, 3, n)
	assert.Equal(t, []int64{1, 2, 3}, index.ids)
}

func TestSeedStopsOnInsertError(t *testing.T) {
	seeder := &Seeder{events: &memoryEvents{err: errors.New("db down")}}

	n, err := seeder.Seed(context.Background(), buildEvents(rand.New(rand.NewSource(3)), 2, time.Now()))
	assert.Error(t, err)
	assert.Zero(t, n)
}

func TestReindex(t *testing.T) {
	store := &memoryEvents{}
	seeder := &Seeder{events: store}
	_, err := seeder.Seed(context.Background(), buildEvents(rand.New(rand.NewSource(4)), 4, time.Now()))
	require.NoError(t, err)

	_, err = seeder.Reindex(context.Background())
	assert.Error(t, err)

	index := &memoryIndex{}
	seeder.indexer = index
	n, err := seeder.Reindex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
