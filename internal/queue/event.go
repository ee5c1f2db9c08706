// Package queue defines message payloads exchanged over the message broker.
package queue

// EventsQueue is the durable queue all interview events are published to.
const EventsQueue = "interview.events"

// Event types.
const (
	EventInterviewScheduled = "interview.scheduled"
	EventStatusChanged      = "interview.status_changed"
	EventCommentAdded       = "interview.comment_added"
)

// InterviewEvent is published after a lifecycle change has been
// persisted.  It carries enough for downstream consumers to log, notify
// or feed analytics without querying the primary database; fields not
// relevant to Type are left empty.
type InterviewEvent struct {
	Type           string   `json:"type"`
	InterviewID    string   `json:"interview_id"`
	Title          string   `json:"title,omitempty"`
	CandidateID    string   `json:"candidate_id,omitempty"`
	InterviewerIDs []string `json:"interviewer_ids,omitempty"`
	SessionRef     string   `json:"session_ref,omitempty"`
	StartTime      int64    `json:"start_time,omitempty"` // epoch ms
	FromStatus     string   `json:"from_status,omitempty"`
	ToStatus       string   `json:"to_status,omitempty"`
	ActorID        string   `json:"actor_id,omitempty"`
	CommentID      string   `json:"comment_id,omitempty"`
	Rating         int      `json:"rating,omitempty"`
	OccurredAt     string   `json:"occurred_at"` // RFC3339, UTC
}
