package reaper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/eskro/backend/internal/repo"
)

// Reaper deletes expired refresh-token records on a daily schedule. A failed
// run is logged and counted as zero purged, the schedule keeps going.
type Reaper struct {
	Repo *repo.GormRepo
	Log  *slog.Logger
	Hour int
}

// Run blocks until ctx is cancelled, then waits for an in-flight purge to
// finish. The delete itself is a single transactional statement, so stopping
// never leaves a half-deleted store.
func (r *Reaper) Run(ctx context.Context) error {
	c := cron.New()
	_, err := c.AddFunc(fmt.Sprintf("0 %d * * *", r.Hour), func() {
		r.purge(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule token cleanup: %w", err)
	}
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func (r *Reaper) purge(ctx context.Context) {
	count, err := r.Repo.PurgeExpiredRefreshTokens(ctx)
	if err != nil {
		r.Log.Warn("token cleanup failed", "error", err)
		return
	}
	r.Log.Info("token cleanup finished", "purged", count)
}
