package limits

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
)

// Window derives the remaining lifetime of the current free-post window from
// a cron expression marking the window boundaries. Post counters are created
// with this TTL, so they expire at the boundary without an explicit reset.
type Window struct {
	schedule cron.Schedule
	clock    clockwork.Clock
}

// NewWindow parses a standard 5-field cron expression (e.g. "0 0 * * *" for
// daily windows).
func NewWindow(cronExpr string, clock clockwork.Clock) (*Window, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse window cron expression: %w", err)
	}
	return &Window{schedule: schedule, clock: clock}, nil
}

// TTL returns the time until the next window boundary.
func (w *Window) TTL() time.Duration {
	now := w.clock.Now()
	return w.schedule.Next(now).Sub(now)
}
