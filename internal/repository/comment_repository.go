package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/interview-scheduler/internal/model"
)

// CommentRepo manages persistence for interviewer feedback.  Comments
// are append-only and listed by the auto-increment seq column, so the
// order is insertion order even if the wall clock steps back.
type CommentRepo struct {
	db *sql.DB
}

// NewCommentRepo constructs a CommentRepo.
func NewCommentRepo(db *sql.DB) *CommentRepo {
	return &CommentRepo{db: db}
}

// Create appends a comment.  A comment on a missing interview fails with
// the driver's foreign key error.
func (r *CommentRepo) Create(ctx context.Context, c *model.Comment) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO comments (id, interview_id, interviewer_id, content, rating, created_at)
               VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		c.ID, c.InterviewID, c.InterviewerID, c.Content, c.Rating, c.CreatedAt.UnixMilli())
	if isDuplicateKey(err) {
		return ErrConflict
	}
	return err
}

// ListByInterview returns all comments of an interview in insertion order.
func (r *CommentRepo) ListByInterview(ctx context.Context, interviewID string) ([]model.Comment, error) {
	const q = `SELECT id, interview_id, interviewer_id, content, rating, created_at
               FROM comments
               WHERE interview_id = ?
               ORDER BY seq ASC`
	rows, err := r.db.QueryContext(ctx, q, interviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Comment
	for rows.Next() {
		var (
			c         model.Comment
			createdAt int64
		)
		if err := rows.Scan(&c.ID, &c.InterviewID, &c.InterviewerID, &c.Content, &c.Rating, &createdAt); err != nil {
			return nil, err
		}
		c.CreatedAt = time.UnixMilli(createdAt).UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}
