package worker

import (
	"context"
	"time"

	"github.com/rongwang/railway-server/internal/metrics"
	"github.com/rongwang/railway-server/internal/models"
	"github.com/rongwang/railway-server/internal/utils"
)

// DefaultExpiryInterval is how often the expiry job runs unless configured otherwise
const DefaultExpiryInterval = time.Hour

// TicketExpirer is the store operation the expiry job drives
type TicketExpirer interface {
	ExpireTickets(ctx context.Context, strategy models.ExpiryStrategy, now time.Time) (int64, error)
}

// ExpiryJob periodically invalidates tickets whose departure has passed.
// A failed run is logged and the job waits for the next tick.
type ExpiryJob struct {
	store      TicketExpirer
	strategy   models.ExpiryStrategy
	interval   time.Duration
	runOnStart bool
	now        func() time.Time
	metrics    *metrics.Metrics
	logger     *utils.Logger
}

func NewExpiryJob(
	store TicketExpirer,
	strategy models.ExpiryStrategy,
	interval time.Duration,
	runOnStart bool,
	m *metrics.Metrics,
	logger *utils.Logger,
) *ExpiryJob {
	if interval <= 0 {
		interval = DefaultExpiryInterval
	}
	if strategy == "" {
		strategy = models.ExpireAnyStop
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	return &ExpiryJob{
		store:      store,
		strategy:   strategy,
		interval:   interval,
		runOnStart: runOnStart,
		now:        time.Now,
		metrics:    m,
		logger:     logger,
	}
}

// Run blocks until ctx is cancelled, running the job once per interval
func (j *ExpiryJob) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("expiry job started", "interval", j.interval.String(), "strategy", string(j.strategy))

	if j.runOnStart {
		j.RunOnce(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("expiry job stopped")
			return nil
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single expiry pass and returns the number of tickets
// invalidated. Errors are logged, not returned.
func (j *ExpiryJob) RunOnce(ctx context.Context) int64 {
	now := j.now()

	expired, err := j.store.ExpireTickets(ctx, j.strategy, now)
	j.metrics.ExpiryRun(expired, err)
	if err != nil {
		j.logger.Error("error expiring tickets", "error", err, "strategy", string(j.strategy))
		return 0
	}

	if expired > 0 {
		j.logger.Info("expired tickets", "count", expired, "at", now.Format("15:04:05"))
	} else {
		j.logger.Debug("no tickets to expire")
	}
	return expired
}
