package service

import (
	"context"
	"errors"

	"github.com/iliyamo/interview-scheduler/internal/model"
	"github.com/iliyamo/interview-scheduler/internal/queue"
	"github.com/iliyamo/interview-scheduler/internal/repository"
)

// maxStatusAttempts bounds the compare-and-set retries of a status update.
const maxStatusAttempts = 3

// UpdateStatus moves an interview along upcoming → completed →
// {succeeded | failed}.  Re-applying the current status is accepted as a
// no-op, including repeating the same outcome; any other move is an
// *InvalidTransitionError.  The write is a compare-and-set on the status
// read, so concurrent updates cannot move the interview backwards.
func (s *Service) UpdateStatus(ctx context.Context, id string, next model.Status, actorID string) (model.Interview, error) {
	if !next.IsValid() {
		return model.Interview{}, invalid("status", "must be one of upcoming, completed, succeeded, failed")
	}
	iv, err := s.getInterview(ctx, id)
	if err != nil {
		return model.Interview{}, err
	}
	for attempt := 0; ; attempt++ {
		if iv.Status == next {
			return iv, nil
		}
		if !iv.Status.CanTransitionTo(next) {
			return model.Interview{}, &InvalidTransitionError{From: iv.Status, To: next}
		}
		at := s.Now()
		err := s.interviews.UpdateStatus(ctx, iv.ID, iv.Status, next, at)
		if err == nil {
			from := iv.Status
			iv.Status = next
			iv.UpdatedAt = at
			s.publish(ctx, queue.InterviewEvent{
				Type:        queue.EventStatusChanged,
				InterviewID: iv.ID,
				SessionRef:  iv.SessionRef,
				FromStatus:  from.String(),
				ToStatus:    next.String(),
				ActorID:     actorID,
			})
			return iv, nil
		}
		if !errors.Is(err, repository.ErrStatusChanged) || attempt+1 >= maxStatusAttempts {
			if errors.Is(err, repository.ErrInterviewNotFound) {
				return model.Interview{}, &NotFoundError{Entity: "interview", ID: id}
			}
			return model.Interview{}, err
		}
		if iv, err = s.getInterview(ctx, id); err != nil {
			return model.Interview{}, err
		}
	}
}

// UpdateOutcome records the pass/fail result of a completed interview.
func (s *Service) UpdateOutcome(ctx context.Context, id string, outcome model.Status, actorID string) (model.Interview, error) {
	if !outcome.IsOutcome() {
		return model.Interview{}, invalid("outcome", "must be succeeded or failed")
	}
	return s.UpdateStatus(ctx, id, outcome, actorID)
}

// EndSession closes the interview behind a realtime session.  Only an
// assigned interviewer may end it.  Ending a session whose interview is
// already completed or decided changes nothing.
func (s *Service) EndSession(ctx context.Context, ref, actorID string) (model.Interview, error) {
	iv, err := s.interviews.GetBySessionRef(ctx, ref)
	if err != nil {
		if errors.Is(err, repository.ErrInterviewNotFound) {
			return model.Interview{}, &NotFoundError{Entity: "session", ID: ref}
		}
		return model.Interview{}, err
	}
	if !iv.HasInterviewer(actorID) {
		return model.Interview{}, &AuthorizationError{Actor: actorID, Action: "end this session"}
	}
	if iv.Status != model.StatusUpcoming {
		return iv, nil
	}
	return s.UpdateStatus(ctx, iv.ID, model.StatusCompleted, actorID)
}

func (s *Service) getInterview(ctx context.Context, id string) (model.Interview, error) {
	iv, err := s.interviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrInterviewNotFound) {
			return model.Interview{}, &NotFoundError{Entity: "interview", ID: id}
		}
		return model.Interview{}, err
	}
	return iv, nil
}
