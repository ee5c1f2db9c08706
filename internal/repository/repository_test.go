package repository

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/interview-scheduler/internal/database"
	"github.com/iliyamo/interview-scheduler/internal/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db, database.SQLite))
	return db
}

func seedInterview(t *testing.T, repo *InterviewRepo, id, ref, candidate string, start int64, interviewers ...string) model.Interview {
	t.Helper()
	now := time.UnixMilli(1_700_000_000_000).UTC()
	iv := model.Interview{
		ID:             id,
		Title:          "Interview " + id,
		Description:    "desc",
		StartTime:      start,
		Status:         model.StatusUpcoming,
		SessionRef:     ref,
		CandidateID:    candidate,
		InterviewerIDs: interviewers,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, repo.Create(context.Background(), &iv))
	return iv
}

func TestUserRepoCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo(openTestDB(t))

	u := model.User{ID: "user_1", Role: model.RoleCandidate, DisplayName: "Ada Lovelace"}
	require.NoError(t, repo.Create(ctx, &u))
	assert.False(t, u.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleCandidate, got.Role)
	assert.Equal(t, "Ada Lovelace", got.DisplayName)

	assert.ErrorIs(t, repo.Create(ctx, &u), ErrConflict)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepoUpdateProfileKeepsRole(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo(openTestDB(t))

	u := model.User{ID: "user_1", Role: model.RoleInterviewer, DisplayName: "Old"}
	require.NoError(t, repo.Create(ctx, &u))

	require.NoError(t, repo.UpdateProfile(ctx, "user_1", "New Name", "https://img/1.png"))
	got, err := repo.GetByID(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.DisplayName)
	assert.Equal(t, "https://img/1.png", got.AvatarRef)
	assert.Equal(t, model.RoleInterviewer, got.Role)

	// unchanged values are still a success
	require.NoError(t, repo.UpdateProfile(ctx, "user_1", "New Name", "https://img/1.png"))

	assert.ErrorIs(t, repo.UpdateProfile(ctx, "ghost", "x", ""), ErrUserNotFound)
}

func TestUserRepoList(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo(openTestDB(t))
	for _, id := range []string{"b", "a", "c"} {
		u := model.User{ID: id, Role: model.RoleCandidate}
		require.NoError(t, repo.Create(ctx, &u))
	}
	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "a", users[0].ID)
	assert.Equal(t, "c", users[2].ID)
}

func TestInterviewRepoCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewInterviewRepo(openTestDB(t))
	seedInterview(t, repo, "iv1", "ref1", "cand", 1000, "int_b", "int_a")

	got, err := repo.GetByID(ctx, "iv1")
	require.NoError(t, err)
	assert.Equal(t, "Interview iv1", got.Title)
	assert.Equal(t, int64(1000), got.StartTime)
	assert.Equal(t, model.StatusUpcoming, got.Status)
	assert.Equal(t, []string{"int_b", "int_a"}, got.InterviewerIDs)

	bySession, err := repo.GetBySessionRef(ctx, "ref1")
	require.NoError(t, err)
	assert.Equal(t, "iv1", bySession.ID)

	_, err = repo.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, ErrInterviewNotFound)
	_, err = repo.GetBySessionRef(ctx, "nope")
	assert.ErrorIs(t, err, ErrInterviewNotFound)
}

func TestInterviewRepoRejectsReusedSessionRef(t *testing.T) {
	repo := NewInterviewRepo(openTestDB(t))
	seedInterview(t, repo, "iv1", "ref1", "cand", 1000, "int_a")

	dup := model.Interview{
		ID: "iv2", Title: "t", StartTime: 1, Status: model.StatusUpcoming,
		SessionRef: "ref1", CandidateID: "cand", InterviewerIDs: []string{"int_a"},
	}
	assert.ErrorIs(t, repo.Create(context.Background(), &dup), ErrConflict)

	_, err := repo.GetByID(context.Background(), "iv2")
	assert.ErrorIs(t, err, ErrInterviewNotFound)
}

func TestInterviewRepoListings(t *testing.T) {
	ctx := context.Background()
	repo := NewInterviewRepo(openTestDB(t))
	seedInterview(t, repo, "iv1", "r1", "cand1", 3000, "int_a")
	seedInterview(t, repo, "iv2", "r2", "cand2", 1000, "int_b")
	seedInterview(t, repo, "iv3", "r3", "cand1", 2000, "int_b", "int_a")

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"iv2", "iv3", "iv1"}, []string{all[0].ID, all[1].ID, all[2].ID})

	mine, err := repo.ListForUser(ctx, "int_a")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "iv3", mine[0].ID)
	assert.Equal(t, "iv1", mine[1].ID)

	cand, err := repo.ListForUser(ctx, "cand2")
	require.NoError(t, err)
	require.Len(t, cand, 1)
	assert.Equal(t, "iv2", cand[0].ID)

	none, err := repo.ListForUser(ctx, "stranger")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInterviewRepoUpdateStatusCompareAndSet(t *testing.T) {
	ctx := context.Background()
	repo := NewInterviewRepo(openTestDB(t))
	seedInterview(t, repo, "iv1", "r1", "cand", 1000, "int_a")
	at := time.UnixMilli(1_800_000_000_000).UTC()

	require.NoError(t, repo.UpdateStatus(ctx, "iv1", model.StatusUpcoming, model.StatusCompleted, at))
	got, err := repo.GetByID(ctx, "iv1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.Equal(t, at, got.UpdatedAt)

	// stale expectation
	err = repo.UpdateStatus(ctx, "iv1", model.StatusUpcoming, model.StatusCompleted, at)
	assert.ErrorIs(t, err, ErrStatusChanged)

	err = repo.UpdateStatus(ctx, "missing", model.StatusUpcoming, model.StatusCompleted, at)
	assert.ErrorIs(t, err, ErrInterviewNotFound)
}

func TestInterviewRepoListStartedBefore(t *testing.T) {
	ctx := context.Background()
	repo := NewInterviewRepo(openTestDB(t))
	seedInterview(t, repo, "old", "r1", "cand", 1000, "int_a")
	seedInterview(t, repo, "new", "r2", "cand", 5000, "int_a")
	seedInterview(t, repo, "done", "r3", "cand", 500, "int_a")
	require.NoError(t, repo.UpdateStatus(ctx, "done", model.StatusUpcoming, model.StatusCompleted, time.Now()))

	stale, err := repo.ListStartedBefore(ctx, model.StatusUpcoming, time.UnixMilli(2000), 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "old", stale[0].ID)
}

func TestInterviewRepoListSpansInterviewerChunks(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewInterviewRepo(db)

	total := 2*interviewerChunk + 7
	now := time.UnixMilli(1_700_000_000_000).UTC()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	for i := 0; i < total; i++ {
		iv := model.Interview{
			ID: fmt.Sprintf("iv%05d", i), Title: "bulk", StartTime: int64(i),
			Status: model.StatusUpcoming, SessionRef: fmt.Sprintf("ref%05d", i),
			CandidateID: "cand", InterviewerIDs: []string{fmt.Sprintf("int_%d", i%3), "int_lead"},
			CreatedAt: now, UpdatedAt: now,
		}
		require.NoError(t, repo.CreateTx(ctx, tx, &iv))
	}
	require.NoError(t, tx.Commit())

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, total)
	for i, iv := range all {
		require.Equal(t, []string{fmt.Sprintf("int_%d", i%3), "int_lead"}, iv.InterviewerIDs, iv.ID)
	}

	mine, err := repo.ListForUser(ctx, "int_lead")
	require.NoError(t, err)
	assert.Len(t, mine, total)
}

func TestCommentRepoOrderingAndCascade(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	ivRepo := NewInterviewRepo(db)
	repo := NewCommentRepo(db)
	seedInterview(t, ivRepo, "iv1", "r1", "cand", 1000, "int_a", "int_b")

	ts := time.UnixMilli(1_700_000_000_000).UTC()
	for i, id := range []string{"c1", "c2", "c3"} {
		c := model.Comment{
			ID: id, InterviewID: "iv1", InterviewerID: "int_a",
			Content: "note " + id, Rating: i + 1, CreatedAt: ts,
		}
		if id == "c1" {
			c.CreatedAt = ts.Add(time.Second)
		}
		require.NoError(t, repo.Create(ctx, &c))
	}

	list, err := repo.ListByInterview(ctx, "iv1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	// c1 carries a later clock reading than c2 and c3 but was written first
	assert.Equal(t, "c1", list[0].ID)
	assert.Equal(t, "c2", list[1].ID)
	assert.Equal(t, "c3", list[2].ID)
	assert.Equal(t, 1, list[0].Rating)
	assert.True(t, list[0].CreatedAt.After(list[1].CreatedAt))

	require.NoError(t, ivRepo.Delete(ctx, "iv1"))
	list, err = repo.ListByInterview(ctx, "iv1")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.ErrorIs(t, ivRepo.Delete(ctx, "iv1"), ErrInterviewNotFound)
}

func TestCommentRepoRejectsMissingInterview(t *testing.T) {
	repo := NewCommentRepo(openTestDB(t))
	c := model.Comment{ID: "c1", InterviewID: "ghost", InterviewerID: "x", Content: "hi", Rating: 3}
	assert.Error(t, repo.Create(context.Background(), &c))
}
