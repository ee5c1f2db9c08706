package model

import "time"

// Role is the participant role issued by the identity provider.  It is
// fixed when the user is first synced and decides which scheduling slots
// the user may fill.
type Role string

const (
	RoleCandidate   Role = "candidate"
	RoleInterviewer Role = "interviewer"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleCandidate, RoleInterviewer:
		return true
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }

// User represents a participant record as stored in the `users` table.
// The ID is the opaque identifier issued by the identity provider; it is
// never generated here.
//
// Fields:
//  ID          – external, stable identity key.
//  Role        – candidate or interviewer.
//  DisplayName – presentation name (may be empty).
//  AvatarRef   – presentation avatar URL or key (may be empty).
//  CreatedAt   – first sync timestamp.
type User struct {
	ID          string    `json:"id"`           // users.id
	Role        Role      `json:"role"`         // users.role
	DisplayName string    `json:"display_name"` // users.display_name
	AvatarRef   string    `json:"avatar_ref"`   // users.avatar_ref
	CreatedAt   time.Time `json:"created_at"`   // users.created_at
}
