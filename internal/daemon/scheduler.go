package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"pulpit/internal/config"
	"pulpit/internal/logging"
	"pulpit/internal/queue"
)

// ErrDuplicateRun indicates a run for the requested date is already moving
// through the pipeline.
var ErrDuplicateRun = errors.New("run already queued for this date")

// Scheduler enqueues one sermon run per day at the configured wall-clock time.
type Scheduler struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	// now is swapped in tests to control clock reads.
	now func() time.Time
}

// NewScheduler constructs a daily run scheduler.
func NewScheduler(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		store:  store,
		logger: logger.With(logging.String("component", "scheduler")),
		now:    time.Now,
	}
}

// Start launches the scheduling loop when daily runs are enabled.
func (s *Scheduler) Start(ctx context.Context) {
	if !s.cfg.Schedule.Enabled {
		s.logger.Debug("daily scheduling disabled")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(runCtx)
}

// Stop halts the scheduling loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	loc, err := s.location()
	if err != nil {
		s.logger.Error("invalid schedule timezone", logging.Error(err))
		return
	}

	for {
		next := s.nextFireTime(s.now().In(loc))
		s.logger.Info("next daily run scheduled",
			logging.String("fire_at", next.Format(time.RFC3339)),
		)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		runDate := s.now().In(loc).Format("2006-01-02")
		item, err := enqueueRun(ctx, s.store, runDate, s.seedTopicFor(s.now().In(loc)))
		switch {
		case errors.Is(err, ErrDuplicateRun):
			s.logger.Info("daily run already queued", logging.String("run_date", runDate))
		case err != nil:
			s.logger.Error("failed to enqueue daily run",
				logging.String("run_date", runDate),
				logging.Error(err),
			)
		default:
			s.logger.Info("daily run enqueued",
				logging.Int64(logging.FieldItemID, item.ID),
				logging.String("run_date", runDate),
			)
		}
	}
}

// location resolves the configured timezone, defaulting to the host locale.
func (s *Scheduler) location() (*time.Location, error) {
	tz := strings.TrimSpace(s.cfg.Schedule.Timezone)
	if tz == "" {
		return time.Local, nil
	}
	return time.LoadLocation(tz)
}

// nextFireTime returns the next occurrence of the configured schedule time
// strictly after now.
func (s *Scheduler) nextFireTime(now time.Time) time.Time {
	hour, minute := parseScheduleTime(s.cfg.Schedule.Time)
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// seedTopicFor rotates through the configured topics by day of year so
// consecutive runs vary even without operator input.
func (s *Scheduler) seedTopicFor(day time.Time) string {
	topics := s.cfg.Schedule.SeedTopics
	if len(topics) == 0 {
		return ""
	}
	return topics[day.YearDay()%len(topics)]
}

// parseScheduleTime parses an HH:MM string. Config validation guarantees the
// format, so errors fall back to midnight.
func parseScheduleTime(value string) (hour, minute int) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, 0
	}
	return parsed.Hour(), parsed.Minute()
}

// enqueueRun inserts a pending run for the date unless one is already active.
func enqueueRun(ctx context.Context, store *queue.Store, runDate, seedTopic string) (*queue.Item, error) {
	runDate = strings.TrimSpace(runDate)
	if runDate == "" {
		return nil, errors.New("run date is required")
	}
	if _, err := time.Parse("2006-01-02", runDate); err != nil {
		return nil, fmt.Errorf("run date must be YYYY-MM-DD, got %q", runDate)
	}

	active, err := store.ActiveRunDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("check active runs: %w", err)
	}
	if _, exists := active[runDate]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateRun, runDate)
	}

	item, err := store.NewRun(ctx, runDate, strings.TrimSpace(seedTopic))
	if err != nil {
		return nil, fmt.Errorf("enqueue run: %w", err)
	}
	return item, nil
}
