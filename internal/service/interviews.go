package service

import (
	"context"
	"time"

	"github.com/iliyamo/interview-scheduler/internal/model"
)

// InterviewView is an interview as shown on a dashboard card: the stored
// record plus its display state and the resolved candidate.
type InterviewView struct {
	model.Interview
	DisplayState model.DisplayState `json:"display_state"`
	Candidate    Identity           `json:"candidate"`
}

// Group is one non-empty dashboard bucket.
type Group struct {
	CategoryInfo
	Interviews []InterviewView `json:"interviews"`
}

// ListInterviews returns every interview.
func (s *Service) ListInterviews(ctx context.Context) ([]InterviewView, error) {
	ivs, err := s.interviews.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, ivs), nil
}

// ListMyInterviews returns the interviews userID takes part in, as the
// candidate or as an interviewer.
func (s *Service) ListMyInterviews(ctx context.Context, userID string) ([]InterviewView, error) {
	ivs, err := s.interviews.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, ivs), nil
}

// GetInterview returns one interview.  Interviewers may read any
// interview; other users only those they take part in.
func (s *Service) GetInterview(ctx context.Context, id, actorID string, actorRole model.Role) (InterviewView, error) {
	iv, err := s.getInterview(ctx, id)
	if err != nil {
		return InterviewView{}, err
	}
	if actorRole != model.RoleInterviewer && !iv.Involves(actorID) {
		return InterviewView{}, &AuthorizationError{Actor: actorID, Action: "view this interview"}
	}
	return s.views(ctx, []model.Interview{iv})[0], nil
}

// GroupedInterviews returns every interview bucketed for the dashboard, in
// Categories order with empty buckets left out.
func (s *Service) GroupedInterviews(ctx context.Context) ([]Group, error) {
	ivs, err := s.interviews.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	grouped := GroupInterviews(ivs, now, s.liveWindow)
	dir := s.directory(ctx)
	out := make([]Group, 0, len(grouped))
	for _, info := range Categories {
		list, ok := grouped[info.ID]
		if !ok {
			continue
		}
		out = append(out, Group{CategoryInfo: info, Interviews: s.viewsWith(dir, now, list)})
	}
	return out, nil
}

func (s *Service) views(ctx context.Context, ivs []model.Interview) []InterviewView {
	if len(ivs) == 0 {
		return []InterviewView{}
	}
	return s.viewsWith(s.directory(ctx), s.Now(), ivs)
}

func (s *Service) viewsWith(dir *Directory, now time.Time, ivs []model.Interview) []InterviewView {
	out := make([]InterviewView, 0, len(ivs))
	for _, iv := range ivs {
		out = append(out, InterviewView{
			Interview:    iv,
			DisplayState: DeriveDisplayState(iv, now, s.liveWindow),
			Candidate:    dir.ResolveAs(iv.CandidateID, model.RoleCandidate),
		})
	}
	return out
}
