package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"event-planner-web/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Sweeper runs Registry.Sweep on a cron schedule.
type Sweeper struct {
	cron     *cron.Cron
	registry *Registry
	log      *slog.Logger
	timeout  time.Duration
}

// NewSweeper validates schedule (standard cron spec or "@every <duration>") and prepares the job.
func NewSweeper(registry *Registry, schedule string, log *slog.Logger) (*Sweeper, error) {
	s := &Sweeper{
		cron:     cron.New(),
		registry: registry,
		log:      logger.OrDefault(log),
		timeout:  30 * time.Second,
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("session sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Sweeper) Start() { s.cron.Start() }

// Stop halts scheduling and waits for a running sweep to finish or ctx to end.
func (s *Sweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if n := s.registry.Sweep(ctx); n > 0 {
		s.log.Info("expired sessions swept", "count", n)
	}
}
