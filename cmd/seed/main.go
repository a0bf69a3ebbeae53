package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"boxoffice/internal/config"
	"boxoffice/internal/database"
	"boxoffice/internal/logger"
	"boxoffice/internal/models"
	"boxoffice/internal/repository"
	"boxoffice/internal/search"

	"github.com/spf13/pflag"
)

var (
	count   = pflag.Int("count", 12, "Number of sample events to insert")
	reindex = pflag.Bool("reindex", false, "Index every stored event into Elasticsearch without inserting new ones")
	dryRun  = pflag.Bool("dry-run", false, "Show what would be inserted without making changes")
	seed    = pflag.Int64("seed", time.Now().UnixNano(), "Random seed for sample data")
)

var (
	performers = []string{"Jazz Night", "Symphony Orchestra", "Stand-up Comedy", "Indie Rock Live", "Classical Carnatic", "Bollywood Retro", "Theatre: Hamlet", "Sufi Evening", "Electronic Beats", "Folk Festival"}
	venues     = []string{"Main Hall", "Riverside Auditorium", "City Theatre", "Open Air Stage"}
	showTimes  = []string{"18:00", "19:00", "19:30", "20:00"}
	prices     = []float64{300, 500, 750, 1000, 1500}
)

// EventStore is where seeded events are written
type EventStore interface {
	Create(ctx context.Context, event *models.Event) error
	List(ctx context.Context, query string, page, pageSize int) ([]models.Event, error)
}

// EventIndexer makes events searchable
type EventIndexer interface {
	IndexEvent(ctx context.Context, event *models.Event) error
}

type Seeder struct {
	events  EventStore
	indexer EventIndexer
}

func main() {
	pflag.Parse()

	config.LoadDotEnv()
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	slog.Info("Starting event seeder...", "count", *count, "reindex", *reindex, "dry_run", *dryRun)

	ctx := context.Background()
	rng := rand.New(rand.NewSource(*seed))

	if *dryRun {
		for _, e := range buildEvents(rng, *count, time.Now()) {
			fmt.Printf("%s  %s %s  %s  ₹%.0f\n", e.Title, e.Date, e.Time, *e.Venue, *e.Price)
		}
		return
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	seeder := &Seeder{events: repository.NewEventRepository(db)}

	if cfg.Elasticsearch.Enabled {
		es, err := search.NewElasticsearchClient(cfg.Elasticsearch)
		if err != nil {
			slog.Warn("Elasticsearch unavailable, events will not be indexed", "error", err)
		} else {
			seeder.indexer = es
		}
	}

	if *reindex {
		n, err := seeder.Reindex(ctx)
		if err != nil {
			slog.Error("Failed to reindex events", "error", err)
			os.Exit(1)
		}
		slog.Info("Reindex completed", "indexed", n)
		return
	}

	n, err := seeder.Seed(ctx, buildEvents(rng, *count, time.Now()))
	if err != nil {
		slog.Error("Failed to seed events", "error", err)
		os.Exit(1)
	}

	slog.Info("Event seeding completed successfully!", "inserted", n)
}

// Seed inserts events and indexes each one. Index failures are logged and skipped.
func (s *Seeder) Seed(ctx context.Context, events []models.Event) (int, error) {
	inserted := 0
	for i := range events {
		event := &events[i]
		if err := s.events.Create(ctx, event); err != nil {
			return inserted, fmt.Errorf("failed to insert event %q: %w", event.Title, err)
		}
		inserted++
		slog.Info("Inserted event", "event_id", event.ID, "title", event.Title, "date", event.Date)

		s.index(ctx, event)
	}
	return inserted, nil
}

// Reindex pushes every stored event to the search index
func (s *Seeder) Reindex(ctx context.Context) (int, error) {
	if s.indexer == nil {
		return 0, fmt.Errorf("elasticsearch is not enabled")
	}

	const pageSize = 100
	indexed := 0
	for page := 1; ; page++ {
		events, err := s.events.List(ctx, "", page, pageSize)
		if err != nil {
			return indexed, err
		}
		for i := range events {
			if s.index(ctx, &events[i]) {
				indexed++
			}
		}
		if len(events) < pageSize {
			return indexed, nil
		}
	}
}

func (s *Seeder) index(ctx context.Context, event *models.Event) bool {
	if s.indexer == nil {
		return false
	}
	if err := s.indexer.IndexEvent(ctx, event); err != nil {
		slog.Warn("Failed to index event", "event_id", event.ID, "error", err)
		return false
	}
	return true
}

// buildEvents generates sample events on distinct evenings after start
func buildEvents(rng *rand.Rand, n int, start time.Time) []models.Event {
	events := make([]models.Event, 0, n)
	for i := 0; i < n; i++ {
		performer := performers[rng.Intn(len(performers))]
		venue := venues[rng.Intn(len(venues))]
		price := prices[rng.Intn(len(prices))]
		description := fmt.Sprintf("%s at the %s.", performer, venue)

		events = append(events, models.Event{
			Title:       fmt.Sprintf("%s #%d", performer, i+1),
			Description: &description,
			Date:        start.AddDate(0, 0, 7+i*3).Format("2006-01-02"),
			Time:        showTimes[rng.Intn(len(showTimes))],
			Venue:       &venue,
			Price:       &price,
		})
	}
	return events
}
