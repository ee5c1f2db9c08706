package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/iliyamo/interview-scheduler/internal/model"
	"github.com/iliyamo/interview-scheduler/internal/queue"
	"github.com/iliyamo/interview-scheduler/internal/repository"
	"github.com/iliyamo/interview-scheduler/internal/session"
)

// MaxTitleLength caps interview titles, counted in runes.
const MaxTitleLength = 200

// ScheduleInput is the submitted scheduling form.  SchedulerID is the
// acting interviewer and is not taken from the request body.
type ScheduleInput struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	StartTime      int64    `json:"start_time"` // epoch ms
	CandidateID    string   `json:"candidate_id"`
	InterviewerIDs []string `json:"interviewer_ids"`
	SchedulerID    string   `json:"-"`
}

// Validate checks the shape of the input against the clock.  Role and
// existence checks need the store and happen in CreateInterview.
func (in ScheduleInput) Validate(nowMs int64) error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.RuneLength(1, MaxTitleLength)),
		validation.Field(&in.StartTime, validation.Required,
			validation.Min(nowMs).Error("must not be in the past")),
		validation.Field(&in.CandidateID, validation.Required),
		validation.Field(&in.InterviewerIDs, validation.Required, validation.Each(validation.Required)),
	)
}

// normalize trims text fields and de-duplicates interviewer ids keeping
// first occurrence order.
func (in ScheduleInput) normalize() ScheduleInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.CandidateID = strings.TrimSpace(in.CandidateID)
	in.SchedulerID = strings.TrimSpace(in.SchedulerID)
	seen := make(map[string]bool, len(in.InterviewerIDs))
	ids := make([]string, 0, len(in.InterviewerIDs))
	for _, id := range in.InterviewerIDs {
		id = strings.TrimSpace(id)
		if id != "" && seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	in.InterviewerIDs = ids
	return in
}

// CreateInterview validates the input, provisions the realtime session
// and only then persists the interview.  A provisioning failure returns a
// *SessionProvisioningError and leaves nothing behind in the store.  A
// persistence failure after provisioning is returned with the session
// reference so the caller can clean the session up.
func (s *Service) CreateInterview(ctx context.Context, in ScheduleInput) (model.Interview, error) {
	now := s.Now()
	in = in.normalize()
	if err := fromValidation(in.Validate(now.UnixMilli())); err != nil {
		return model.Interview{}, err
	}
	if in.SchedulerID == "" {
		return model.Interview{}, invalid("scheduler_id", "cannot be blank")
	}
	if !contains(in.InterviewerIDs, in.SchedulerID) {
		return model.Interview{}, invalid("interviewer_ids", "must include the scheduling interviewer")
	}
	if contains(in.InterviewerIDs, in.CandidateID) {
		return model.Interview{}, invalid("interviewer_ids", "must not include the candidate")
	}
	if err := s.requireRole(ctx, "candidate_id", in.CandidateID, model.RoleCandidate); err != nil {
		return model.Interview{}, err
	}
	for _, id := range in.InterviewerIDs {
		if err := s.requireRole(ctx, "interviewer_ids", id, model.RoleInterviewer); err != nil {
			return model.Interview{}, err
		}
	}

	ref := uuid.NewString()
	members := make([]session.Member, 0, len(in.InterviewerIDs)+1)
	members = append(members, session.Member{UserID: in.CandidateID, Role: session.MemberParticipant})
	for _, id := range in.InterviewerIDs {
		members = append(members, session.Member{UserID: id, Role: session.MemberHost})
	}
	iv := model.Interview{
		ID:             uuid.NewString(),
		Title:          in.Title,
		Description:    in.Description,
		StartTime:      in.StartTime,
		Status:         model.StatusUpcoming,
		SessionRef:     ref,
		CandidateID:    in.CandidateID,
		InterviewerIDs: in.InterviewerIDs,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := s.sessions.Provision(ctx, session.Request{
		Ref:         ref,
		Title:       iv.Title,
		Description: iv.Description,
		StartsAt:    iv.Start(),
		CreatedBy:   in.SchedulerID,
		Members:     members,
	}); err != nil {
		return model.Interview{}, &SessionProvisioningError{SessionRef: ref, Err: err}
	}

	if err := s.interviews.Create(ctx, &iv); err != nil {
		return model.Interview{}, fmt.Errorf("persist interview for provisioned session %s: %w", ref, err)
	}

	s.publish(ctx, queue.InterviewEvent{
		Type:           queue.EventInterviewScheduled,
		InterviewID:    iv.ID,
		Title:          iv.Title,
		CandidateID:    iv.CandidateID,
		InterviewerIDs: iv.InterviewerIDs,
		SessionRef:     iv.SessionRef,
		StartTime:      iv.StartTime,
		ActorID:        in.SchedulerID,
	})
	return iv, nil
}

// requireRole loads id and checks its role.  Unknown ids are reported as
// validation failures of field since they came from the submitted form.
func (s *Service) requireRole(ctx context.Context, field, id string, role model.Role) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return invalid(field, fmt.Sprintf("unknown user %q", id))
		}
		return err
	}
	if u.Role != role {
		return invalid(field, fmt.Sprintf("user %q is not a %s", id, role))
	}
	return nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
