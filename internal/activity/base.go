package activity

import (
	"context"
	"sync"
	"time"

	"go.temporal.io/sdk/activity"
)

// SafeLog performs context-safe logging that works in both activity and test
// contexts. In a Temporal activity context it uses the activity logger; in
// plain contexts (unit tests calling the activity directly) it is a no-op
// instead of panicking.
func SafeLog(ctx context.Context, msg string, keyvals ...any) {
	defer func() {
		if recover() != nil {
			// Not an activity context, ignore.
		}
	}()
	activity.GetLogger(ctx).Info(msg, keyvals...)
}

// SafeLogError logs at ERROR level with the same context safety as SafeLog.
func SafeLogError(ctx context.Context, msg string, keyvals ...any) {
	defer func() {
		if recover() != nil {
			// Not an activity context, ignore.
		}
	}()
	activity.GetLogger(ctx).Error(msg, keyvals...)
}

// RecordHeartbeat safely records activity heartbeat with details. A pipeline
// run can spend minutes in rate-limit backoff, so heartbeats keep Temporal
// from timing the activity out while it waits. Safe in non-activity contexts.
func RecordHeartbeat(ctx context.Context, details ...any) {
	defer func() {
		if recover() != nil {
			// Not an activity context, ignore.
		}
	}()
	activity.RecordHeartbeat(ctx, details...)
}

// heartbeatInterval stays well inside the workflow's heartbeat timeout so a
// run waiting out rate-limit backoff or a slow backend call is never killed
// between beats.
const heartbeatInterval = 10 * time.Second

// recordHeartbeats emits beat at a fixed cadence until the returned stop
// function is called or the context fires. stop is idempotent.
func recordHeartbeats(ctx context.Context, interval time.Duration, beat func()) (stop func()) {
	done := make(chan struct{})
	var once sync.Once

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				beat()
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
	}()

	return func() { once.Do(func() { close(done) }) }
}
