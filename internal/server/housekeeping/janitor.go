// Package housekeeping runs periodic maintenance jobs of the server.
package housekeeping

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/moodjournal/internal/logging"
	"github.com/dmitrijs2005/moodjournal/internal/server/metrics"
	"github.com/robfig/cron/v3"
)

type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// SessionJanitor deletes expired sessions on a cron schedule.
type SessionJanitor struct {
	cron   *cron.Cron
	purger Purger
	logger logging.Logger
}

// NewSessionJanitor validates schedule (standard 5-field spec or a
// descriptor such as "@every 15m").
func NewSessionJanitor(schedule string, p Purger, l logging.Logger) (*SessionJanitor, error) {
	j := &SessionJanitor{
		cron:   cron.New(),
		purger: p,
		logger: l.With("module", "session_janitor"),
	}
	if _, err := j.cron.AddFunc(schedule, func() { j.Purge(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}
	return j, nil
}

// Purge runs one cleanup pass.
func (j *SessionJanitor) Purge(ctx context.Context) {
	n, err := j.purger.PurgeExpired(ctx)
	if err != nil {
		j.logger.Error(ctx, "session purge failed", "error", err)
		return
	}
	metrics.RecordSessionsPurged(n)
	if n > 0 {
		j.logger.Info(ctx, "expired sessions purged", "count", n)
	}
}

// Run starts the scheduler and blocks until ctx is done, then waits for a
// running job to finish.
func (j *SessionJanitor) Run(ctx context.Context) {
	j.logger.Info(ctx, "Starting session janitor")
	j.cron.Start()

	<-ctx.Done()

	j.logger.Info(ctx, "Stopping session janitor...")
	<-j.cron.Stop().Done()
}
