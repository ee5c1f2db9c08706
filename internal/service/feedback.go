package service

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/iliyamo/interview-scheduler/internal/model"
	"github.com/iliyamo/interview-scheduler/internal/queue"
)

// CommentInput is a submitted piece of feedback.
type CommentInput struct {
	Content string `json:"content"`
	Rating  int    `json:"rating"`
}

// Validate checks content and rating bounds.  Content is expected to be
// trimmed already.
func (in CommentInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Content, validation.Required),
		validation.Field(&in.Rating, validation.Required,
			validation.Min(model.MinRating), validation.Max(model.MaxRating)),
	)
}

// AnnotatedComment is a comment with its author resolved for display.
type AnnotatedComment struct {
	model.Comment
	Interviewer Identity `json:"interviewer"`
}

// AddComment appends feedback from interviewerID.  The author must be
// assigned to the interview; an interviewer may leave several comments.
func (s *Service) AddComment(ctx context.Context, interviewID, interviewerID string, in CommentInput) (model.Comment, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := fromValidation(in.Validate()); err != nil {
		return model.Comment{}, err
	}
	iv, err := s.getInterview(ctx, interviewID)
	if err != nil {
		return model.Comment{}, err
	}
	if !iv.HasInterviewer(interviewerID) {
		return model.Comment{}, &AuthorizationError{Actor: interviewerID, Action: "comment on this interview"}
	}
	c := model.Comment{
		ID:            uuid.NewString(),
		InterviewID:   iv.ID,
		InterviewerID: interviewerID,
		Content:       in.Content,
		Rating:        in.Rating,
		CreatedAt:     s.Now(),
	}
	if err := s.comments.Create(ctx, &c); err != nil {
		return model.Comment{}, err
	}
	s.publish(ctx, queue.InterviewEvent{
		Type:        queue.EventCommentAdded,
		InterviewID: iv.ID,
		CommentID:   c.ID,
		Rating:      c.Rating,
		ActorID:     interviewerID,
	})
	return c, nil
}

// ListComments returns the feedback on an interview in insertion order, each
// with its author's identity.
func (s *Service) ListComments(ctx context.Context, interviewID string) ([]AnnotatedComment, error) {
	iv, err := s.getInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByInterview(ctx, iv.ID)
	if err != nil {
		return nil, err
	}
	dir := s.directory(ctx)
	out := make([]AnnotatedComment, 0, len(comments))
	for _, c := range comments {
		out = append(out, AnnotatedComment{
			Comment:     c,
			Interviewer: dir.ResolveAs(c.InterviewerID, model.RoleInterviewer),
		})
	}
	return out, nil
}
