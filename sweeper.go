package main

import (
	"context"
	"time"
)

// runSessionSweeper removes idle sessions every SweepInterval until ctx is done.
func (app *App) runSessionSweeper(ctx context.Context) error {
	interval := app.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	logInfo("Session sweeper running every %v, idle timeout %v", interval, app.SessionTimeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := app.sweepSessions(ctx); err != nil && ctx.Err() == nil {
				logWarn("Session sweep failed: %v", err)
			}
		case <-ctx.Done():
			logInfo("Session sweeper stopped")
			return nil
		}
	}
}

// sweepSessions removes sessions and rate limiters idle longer than
// SessionTimeout and returns how many sessions were removed.
func (app *App) sweepSessions(ctx context.Context) (int, error) {
	removed, err := app.Machine.Sweep(ctx, app.SessionTimeout)
	if err != nil {
		return 0, err
	}
	live, err := app.Machine.Len(ctx)
	if err != nil {
		return removed, err
	}
	if app.Metrics != nil {
		app.Metrics.observeSweep(removed, live)
	}
	if n := app.pruneLimiters(time.Now(), app.SessionTimeout); n > 0 {
		logDebug("Dropped %d idle rate limiters", n)
	}
	if removed > 0 {
		logInfo("Session cleanup completed: removed %d idle sessions, %d live", removed, live)
	} else {
		logDebug("Session cleanup completed: nothing to remove, %d live", live)
	}
	return removed, nil
}
