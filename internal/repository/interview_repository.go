// Package repository contains data access logic for interview records.
// An interview row lives in `interviews`; its interviewer set lives in
// `interview_interviewers`, one row per assigned interviewer.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/interview-scheduler/internal/model"
)

// InterviewRepo manages persistence for interviews.
type InterviewRepo struct {
	db *sql.DB
}

// NewInterviewRepo constructs an InterviewRepo with the given DB handle.
func NewInterviewRepo(db *sql.DB) *InterviewRepo {
	return &InterviewRepo{db: db}
}

const interviewColumns = `i.id, i.title, i.description, i.start_time, i.status, i.session_ref,
       i.candidate_id, i.created_at, i.updated_at`

// Create inserts the interview and its interviewer rows in a single
// transaction.  ID, SessionRef and the timestamps must already be set by
// the caller.  A reused id or session reference yields ErrConflict.
func (r *InterviewRepo) Create(ctx context.Context, iv *model.Interview) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	return r.CreateTx(ctx, tx, iv)
}

// CreateTx inserts the interview using the provided transaction.  The
// caller must commit or roll back.
func (r *InterviewRepo) CreateTx(ctx context.Context, tx *sql.Tx, iv *model.Interview) error {
	const q = `INSERT INTO interviews
               (id, title, description, start_time, status, session_ref, candidate_id, created_at, updated_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, q,
		iv.ID, iv.Title, iv.Description, iv.StartTime, string(iv.Status), iv.SessionRef,
		iv.CandidateID, iv.CreatedAt.UnixMilli(), iv.UpdatedAt.UnixMilli(),
	); err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	if len(iv.InterviewerIDs) == 0 {
		return nil
	}
	query := `INSERT INTO interview_interviewers (interview_id, user_id, position) VALUES `
	args := make([]any, 0, len(iv.InterviewerIDs)*3)
	for i, uid := range iv.InterviewerIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, iv.ID, uid, i)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// GetByID retrieves an interview by id.  It returns ErrInterviewNotFound
// when there is no matching row.
func (r *InterviewRepo) GetByID(ctx context.Context, id string) (model.Interview, error) {
	return r.getOne(ctx, "i.id = ?", id)
}

// GetBySessionRef retrieves the interview bound to a realtime session.
func (r *InterviewRepo) GetBySessionRef(ctx context.Context, ref string) (model.Interview, error) {
	return r.getOne(ctx, "i.session_ref = ?", ref)
}

func (r *InterviewRepo) getOne(ctx context.Context, where string, arg any) (model.Interview, error) {
	ivs, err := r.query(ctx, "SELECT "+interviewColumns+" FROM interviews i WHERE "+where+" LIMIT 1", arg)
	if err != nil {
		return model.Interview{}, err
	}
	if len(ivs) == 0 {
		return model.Interview{}, ErrInterviewNotFound
	}
	return ivs[0], nil
}

// List returns every interview ordered by start time ascending.
func (r *InterviewRepo) List(ctx context.Context) ([]model.Interview, error) {
	return r.query(ctx, "SELECT "+interviewColumns+" FROM interviews i ORDER BY i.start_time ASC, i.id ASC")
}

// ListForUser returns the interviews where userID is the candidate or one
// of the interviewers, ordered by start time ascending.
func (r *InterviewRepo) ListForUser(ctx context.Context, userID string) ([]model.Interview, error) {
	const q = `SELECT ` + interviewColumns + `
               FROM interviews i
               WHERE i.candidate_id = ?
                  OR EXISTS (SELECT 1 FROM interview_interviewers ii
                             WHERE ii.interview_id = i.id AND ii.user_id = ?)
               ORDER BY i.start_time ASC, i.id ASC`
	return r.query(ctx, q, userID, userID)
}

// ListStartedBefore returns interviews in the given status whose start
// time is strictly before cutoff.  The auto-complete sweeper uses it to
// find sessions nobody closed.
func (r *InterviewRepo) ListStartedBefore(ctx context.Context, status model.Status, cutoff time.Time, limit int) ([]model.Interview, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + interviewColumns + `
               FROM interviews i
               WHERE i.status = ? AND i.start_time < ?
               ORDER BY i.start_time ASC
               LIMIT ?`
	return r.query(ctx, q, string(status), cutoff.UnixMilli(), limit)
}

// UpdateStatus moves an interview from one status to another using a
// compare-and-set on the current value.  It returns ErrInterviewNotFound
// when the row is missing and ErrStatusChanged when the stored status is
// no longer `from`.
func (r *InterviewRepo) UpdateStatus(ctx context.Context, id string, from, to model.Status, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE interviews SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		string(to), at.UnixMilli(), id, string(from))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var one int
	if err := r.db.QueryRowContext(ctx, "SELECT 1 FROM interviews WHERE id = ? LIMIT 1", id).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInterviewNotFound
		}
		return err
	}
	return ErrStatusChanged
}

// Delete removes an interview; interviewer and comment rows follow via
// ON DELETE CASCADE.
func (r *InterviewRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM interviews WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrInterviewNotFound
	}
	return nil
}

// query runs an interview SELECT and attaches the interviewer sets.
func (r *InterviewRepo) query(ctx context.Context, q string, args ...any) ([]model.Interview, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}

	var result []model.Interview
	for rows.Next() {
		var (
			iv                   model.Interview
			status               string
			createdAt, updatedAt int64
		)
		if err := rows.Scan(
			&iv.ID, &iv.Title, &iv.Description, &iv.StartTime, &status, &iv.SessionRef,
			&iv.CandidateID, &createdAt, &updatedAt,
		); err != nil {
			_ = rows.Close()
			return nil, err
		}
		iv.Status = model.Status(status)
		iv.CreatedAt = time.UnixMilli(createdAt).UTC()
		iv.UpdatedAt = time.UnixMilli(updatedAt).UTC()
		result = append(result, iv)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	// release the connection before the second query; SQLite runs with
	// a single open connection
	_ = rows.Close()
	if err := r.attachInterviewers(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// interviewerChunk bounds the ids per IN list, well under the
// placeholder limits of SQLite and MySQL.
const interviewerChunk = 500

// attachInterviewers loads interviewer ids in chunks of interviewerChunk
// interviews and fills InterviewerIDs in assignment order.
func (r *InterviewRepo) attachInterviewers(ctx context.Context, ivs []model.Interview) error {
	index := make(map[string]int, len(ivs))
	for i := range ivs {
		index[ivs[i].ID] = i
	}
	for start := 0; start < len(ivs); start += interviewerChunk {
		end := min(start+interviewerChunk, len(ivs))
		if err := r.loadInterviewers(ctx, ivs, index, ivs[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *InterviewRepo) loadInterviewers(ctx context.Context, ivs []model.Interview, index map[string]int, chunk []model.Interview) error {
	args := make([]any, 0, len(chunk))
	for i := range chunk {
		args = append(args, chunk[i].ID)
	}
	q := `SELECT interview_id, user_id FROM interview_interviewers
          WHERE interview_id IN (?` + strings.Repeat(",?", len(chunk)-1) + `)
          ORDER BY interview_id, position`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var ivID, userID string
		if err := rows.Scan(&ivID, &userID); err != nil {
			return err
		}
		if i, ok := index[ivID]; ok {
			ivs[i].InterviewerIDs = append(ivs[i].InterviewerIDs, userID)
		}
	}
	return rows.Err()
}
