package service

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/interview-scheduler/internal/model"
	"github.com/iliyamo/interview-scheduler/internal/queue"
	"github.com/iliyamo/interview-scheduler/internal/session"
)

// UserStore is the user persistence the service needs.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	UpdateProfile(ctx context.Context, id, displayName, avatarRef string) error
	GetByID(ctx context.Context, id string) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

// InterviewStore is the interview persistence the service needs.
type InterviewStore interface {
	Create(ctx context.Context, iv *model.Interview) error
	GetByID(ctx context.Context, id string) (model.Interview, error)
	GetBySessionRef(ctx context.Context, ref string) (model.Interview, error)
	List(ctx context.Context) ([]model.Interview, error)
	ListForUser(ctx context.Context, userID string) ([]model.Interview, error)
	UpdateStatus(ctx context.Context, id string, from, to model.Status, at time.Time) error
}

// CommentStore is the comment persistence the service needs.
type CommentStore interface {
	Create(ctx context.Context, c *model.Comment) error
	ListByInterview(ctx context.Context, interviewID string) ([]model.Comment, error)
}

// EventPublisher receives lifecycle events after they are persisted.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.InterviewEvent) error
}

const publishTimeout = 5 * time.Second

// Options tunes a Service.
type Options struct {
	// LiveWindow bounds how long an interview still marked upcoming
	// displays as live after its start.  Zero means unbounded.
	LiveWindow time.Duration
	// Now overrides the clock; nil uses time.Now.
	Now func() time.Time
}

// Service implements the interview lifecycle operations.  It holds no
// mutable state of its own and is safe for concurrent use.
type Service struct {
	users      UserStore
	interviews InterviewStore
	comments   CommentStore
	sessions   session.Provider
	events     EventPublisher

	liveWindow time.Duration
	now        func() time.Time
}

// New wires a Service.  events may be nil, in which case nothing is
// published.
func New(users UserStore, interviews InterviewStore, comments CommentStore,
	sessions session.Provider, events EventPublisher, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		users:      users,
		interviews: interviews,
		comments:   comments,
		sessions:   sessions,
		events:     events,
		liveWindow: opts.LiveWindow,
		now:        now,
	}
}

// Now returns the service clock in UTC.
func (s *Service) Now() time.Time { return s.now().UTC() }

// publish sends ev and only logs failures; the change it describes is
// already committed.
func (s *Service) publish(ctx context.Context, ev queue.InterviewEvent) {
	if s.events == nil {
		return
	}
	if ev.OccurredAt == "" {
		ev.OccurredAt = s.Now().Format(time.RFC3339)
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.events.Publish(pctx, ev); err != nil {
		log.Printf("service: publish %s for %s: %v", ev.Type, ev.InterviewID, err)
	}
}

// directory snapshots all users for display lookups.  A store failure
// degrades to an empty directory so every id resolves to a placeholder.
func (s *Service) directory(ctx context.Context) *Directory {
	users, err := s.users.List(ctx)
	if err != nil {
		log.Printf("service: load user directory: %v", err)
		return NewDirectory(nil)
	}
	return NewDirectory(users)
}
