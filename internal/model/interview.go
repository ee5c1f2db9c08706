package model

import "time"

// Status is the persisted lifecycle status of an interview.  It only
// changes through an explicit status update; the read-time display
// state is derived separately and never written back.
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusCompleted Status = "completed"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// IsValid reports whether s is a known persisted status.
func (s Status) IsValid() bool {
	switch s {
	case StatusUpcoming, StatusCompleted, StatusSucceeded, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is allowed from s.
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// IsOutcome reports whether s is a pass/fail outcome.
func (s Status) IsOutcome() bool { return s.IsTerminal() }

func (s Status) String() string { return string(s) }

// transitions lists the forward edges of the status machine:
// upcoming → completed → {succeeded | failed}.
var transitions = map[Status][]Status{
	StatusUpcoming:  {StatusCompleted},
	StatusCompleted: {StatusSucceeded, StatusFailed},
}

// CanTransitionTo reports whether moving from s to next is a valid forward
// transition.  Re-applying the current status is not a transition and is
// reported as false; callers decide how to treat it.
func (s Status) CanTransitionTo(next Status) bool {
	for _, n := range transitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

// DisplayState is the lifecycle label computed at read time from the
// persisted status, the start time and the current time.
type DisplayState string

const (
	DisplayUpcoming  DisplayState = "upcoming"
	DisplayLive      DisplayState = "live"
	DisplayCompleted DisplayState = "completed"
)

// Interview represents a row in the `interviews` table together with its
// assigned interviewers from `interview_interviewers`.
//
// Fields:
//  ID             – store-assigned identifier (UUID), immutable.
//  Title          – required, non-empty.
//  Description    – free text.
//  StartTime      – absolute start instant in epoch milliseconds.
//  Status         – persisted lifecycle status.
//  SessionRef     – opaque realtime session identifier, immutable.
//  CandidateID    – the single candidate.
//  InterviewerIDs – non-empty set of interviewers; order carries no meaning.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last status change.
type Interview struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	StartTime      int64     `json:"start_time"`
	Status         Status    `json:"status"`
	SessionRef     string    `json:"session_ref"`
	CandidateID    string    `json:"candidate_id"`
	InterviewerIDs []string  `json:"interviewer_ids"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Start returns StartTime as a time.Time in UTC.
func (iv Interview) Start() time.Time {
	return time.UnixMilli(iv.StartTime).UTC()
}

// HasInterviewer reports whether userID is assigned as an interviewer.
func (iv Interview) HasInterviewer(userID string) bool {
	for _, id := range iv.InterviewerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Involves reports whether userID takes part in the interview either as
// the candidate or as one of the interviewers.
func (iv Interview) Involves(userID string) bool {
	return iv.CandidateID == userID || iv.HasInterviewer(userID)
}
