package model

import "time"

// Rating bounds for interviewer feedback.
const (
	MinRating = 1
	MaxRating = 5
)

// Comment is a single piece of interviewer feedback on an interview.
// Comments are immutable once created and belong exclusively to their
// interview; they are removed together with it.
//
// Fields:
//  ID            – store-assigned identifier (UUID).
//  InterviewID   – owning interview.
//  InterviewerID – author; must be assigned to the interview.
//  Content       – non-empty text.
//  Rating        – integer in [MinRating, MaxRating].
//  CreatedAt     – creation timestamp (millisecond precision).
type Comment struct {
	ID            string    `json:"id"`             // comments.id
	InterviewID   string    `json:"interview_id"`   // comments.interview_id
	InterviewerID string    `json:"interviewer_id"` // comments.interviewer_id
	Content       string    `json:"content"`        // comments.content
	Rating        int       `json:"rating"`         // comments.rating
	CreatedAt     time.Time `json:"created_at"`     // comments.created_at
}
