// Package background runs fire-and-forget tasks, mainly the persistence
// writes that follow every cart mutation. Tasks never block the request
// that scheduled them; a failed or panicking task only logs.
package background

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"
)

type Background struct {
	log logrus.FieldLogger
	wg  sync.WaitGroup
}

func New(log logrus.FieldLogger) *Background {
	return &Background{log: log}
}

// Add schedules task on its own goroutine. The context passed to the task is
// independent of any request context, so a completed request doesn't cancel
// its pending write.
func (b *Background) Add(task func(ctx context.Context)) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				b.log.WithFields(logrus.Fields{
					"panic": r,
					"trace": string(debug.Stack()),
				}).Error("background task panicked")
			}
		}()

		task(context.Background())
	}()
}

// Shutdown waits for in-flight tasks, giving pending persistence writes a
// chance to land before the process exits.
func (b *Background) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for background tasks: %w", ctx.Err())
	}
}
