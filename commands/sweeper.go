package commands

import (
	"context"
	"time"

	"cityguard/db"

	"github.com/apex/log"
)

// sweepSessions deletes expired API sessions now and then once per interval
// until ctx is done.
func sweepSessions(ctx context.Context, interval time.Duration) {
	log.WithField("interval", interval.String()).Info("session sweeper started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := sweepOnce(ctx); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("sweeping expired sessions")
		}

		select {
		case <-ctx.Done():
			log.Info("session sweeper stopping")
			return
		case <-ticker.C:
		}
	}
}

func sweepOnce(ctx context.Context) (int64, error) {
	n, err := db.DeleteExpiredSessions(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.WithField("count", n).Info("expired sessions removed")
	}
	return n, nil
}
