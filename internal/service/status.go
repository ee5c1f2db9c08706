package service

import (
	"time"

	"github.com/iliyamo/interview-scheduler/internal/model"
)

// DeriveDisplayState maps the persisted status, the start time and now to
// the label shown to users.  It never writes anything back.
//
// A persisted completed, succeeded or failed status always displays as
// completed.  Otherwise the interview is upcoming before its start and
// live from then on.  With a positive window, an interview still upcoming
// once the window has elapsed displays as completed; a zero window keeps
// it live until someone marks it completed.
func DeriveDisplayState(iv model.Interview, now time.Time, window time.Duration) model.DisplayState {
	switch iv.Status {
	case model.StatusCompleted, model.StatusSucceeded, model.StatusFailed:
		return model.DisplayCompleted
	}
	nowMs := now.UnixMilli()
	if nowMs < iv.StartTime {
		return model.DisplayUpcoming
	}
	if window > 0 && nowMs >= iv.StartTime+window.Milliseconds() {
		return model.DisplayCompleted
	}
	return model.DisplayLive
}
