package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/interview-scheduler/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, role, display_name, avatar_ref, created_at"

// Create inserts a user synced from the identity provider.  It returns
// ErrConflict when the id is already present.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id, role, display_name, avatar_ref, created_at) VALUES (?,?,?,?,?)",
		u.ID, string(u.Role), u.DisplayName, u.AvatarRef, u.CreatedAt.UnixMilli())
	if isDuplicateKey(err) {
		return ErrConflict
	}
	return err
}

// UpdateProfile refreshes the presentation fields of an existing user.
// The role is never touched.
func (r *UserRepo) UpdateProfile(ctx context.Context, id, displayName, avatarRef string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET display_name=?, avatar_ref=? WHERE id=?",
		displayName, avatarRef, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	// MySQL reports 0 affected rows when the values are unchanged.
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", strings.TrimSpace(id))
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// List returns every user ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (model.User, error) {
	var (
		u         model.User
		role      string
		createdAt int64
	)
	if err := s.Scan(&u.ID, &role, &u.DisplayName, &u.AvatarRef, &createdAt); err != nil {
		return model.User{}, err
	}
	u.Role = model.Role(role)
	u.CreatedAt = time.UnixMilli(createdAt).UTC()
	return u, nil
}
