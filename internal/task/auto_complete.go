// Package task holds background jobs that run next to the HTTP server.
package task

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jasonlvhit/gocron"

	"github.com/iliyamo/interview-scheduler/internal/model"
	"github.com/iliyamo/interview-scheduler/internal/service"
)

// AutoCompleteActor is recorded as the actor of sweeper status changes.
const AutoCompleteActor = "system:auto-complete"

// StaleLister finds interviews in a status that started before cutoff.
type StaleLister interface {
	ListStartedBefore(ctx context.Context, status model.Status, cutoff time.Time, limit int) ([]model.Interview, error)
}

// StatusUpdater applies a status change through the lifecycle rules.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, id string, next model.Status, actorID string) (model.Interview, error)
}

// AutoCompleter marks interviews nobody closed as completed once they
// started more than After ago.  It goes through the regular status update
// so the compare-and-set and the event apply as for a manual close.
type AutoCompleter struct {
	Lister    StaleLister
	Updater   StatusUpdater
	After     time.Duration
	BatchSize int
	Timeout   time.Duration
	Now       func() time.Time
}

// RunOnce sweeps one batch and reports how many interviews it completed.
func (t *AutoCompleter) RunOnce(ctx context.Context) (int, error) {
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	batch := t.BatchSize
	if batch <= 0 {
		batch = 50
	}
	cutoff := now().UTC().Add(-t.After)
	stale, err := t.Lister.ListStartedBefore(ctx, model.StatusUpcoming, cutoff, batch)
	if err != nil {
		return 0, err
	}
	done := 0
	for _, iv := range stale {
		_, err := t.Updater.UpdateStatus(ctx, iv.ID, model.StatusCompleted, AutoCompleteActor)
		if err != nil {
			var terr *service.InvalidTransitionError
			if errors.As(err, &terr) {
				// closed by someone else since the listing
				continue
			}
			log.Printf("auto-complete: interview %s: %v", iv.ID, err)
			continue
		}
		log.Printf("auto-complete: interview %s started %s marked completed", iv.ID, iv.Start().Format(time.RFC3339))
		done++
	}
	return done, nil
}

// run is the gocron job body.
func (t *AutoCompleter) run() {
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	n, err := t.RunOnce(ctx)
	if err != nil {
		log.Printf("auto-complete: sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("auto-complete: completed %d interview(s)", n)
	}
}

// Start schedules the sweep every everyMin minutes on its own scheduler
// and returns a function that stops it.
func (t *AutoCompleter) Start(everyMin uint64) (stop func(), err error) {
	if everyMin == 0 {
		everyMin = 10
	}
	s := gocron.NewScheduler()
	if err := s.Every(everyMin).Minutes().Do(t.run); err != nil {
		return nil, err
	}
	stopped := s.Start()
	return func() {
		s.Clear()
		close(stopped)
	}, nil
}
