package limits

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Memehub-GmbH-Co-KG/MemeHub-Limits/internal/metrics"
)

const sweepTimeout = time.Minute

// balanceSweeper is the store operation the Sweeper needs.
type balanceSweeper interface {
	SweepZeroBalances(ctx context.Context) (int64, error)
}

// Sweeper garbage-collects zero-balance token records at every window
// boundary. Post counters expire via TTL on their own; only token keys that
// decayed back to zero need an explicit sweep.
type Sweeper struct {
	store balanceSweeper
	cron  *cron.Cron
}

// NewSweeper schedules a sweep on the given cron expression (the window
// boundary schedule).
func NewSweeper(store balanceSweeper, schedule string) (*Sweeper, error) {
	s := &Sweeper{store: store, cron: cron.New()}
	if _, err := s.cron.AddFunc(schedule, s.sweep); err != nil {
		return nil, fmt.Errorf("failed to schedule sweep: %w", err)
	}
	return s, nil
}

// Start begins running scheduled sweeps.
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	swept, err := s.store.SweepZeroBalances(ctx)
	if err != nil {
		slog.Error("Zero balance sweep failed", "swept", swept, "error", err)
		return
	}

	metrics.ZeroBalancesSwept.Add(float64(swept))
	slog.Info("Zero balance sweep complete", "swept", swept)
}
