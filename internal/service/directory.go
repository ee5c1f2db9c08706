package service

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/iliyamo/interview-scheduler/internal/model"
)

// Placeholder identities for ids the directory cannot resolve.
const (
	UnknownUserName        = "Unknown User"
	UnknownCandidateName   = "Unknown Candidate"
	UnknownInterviewerName = "Unknown Interviewer"

	// PlaceholderInitials is used for a known user without a display name.
	PlaceholderInitials = "?"
)

// Identity is the display form of a participant.
type Identity struct {
	UserID      string     `json:"user_id"`
	DisplayName string     `json:"display_name"`
	AvatarRef   string     `json:"avatar_ref"`
	Initials    string     `json:"initials"`
	Role        model.Role `json:"role,omitempty"`
	Known       bool       `json:"known"`
}

// Directory resolves user ids against a snapshot of users.  Lookups never
// fail; unknown ids resolve to a placeholder.
type Directory struct {
	byID map[string]model.User
}

// NewDirectory indexes users by id.
func NewDirectory(users []model.User) *Directory {
	d := &Directory{byID: make(map[string]model.User, len(users))}
	for _, u := range users {
		d.byID[u.ID] = u
	}
	return d
}

// Resolve looks id up in users.  It is a convenience for one-off lookups;
// build a Directory when resolving many ids against the same users.
func Resolve(users []model.User, id string) Identity {
	return NewDirectory(users).Resolve(id)
}

// Resolve returns the identity for id, or the generic placeholder.
func (d *Directory) Resolve(id string) Identity {
	return d.resolve(id, UnknownUserName)
}

// ResolveAs is Resolve with a placeholder naming the expected role, so an
// unknown candidate shows as "Unknown Candidate".
func (d *Directory) ResolveAs(id string, role model.Role) Identity {
	switch role {
	case model.RoleCandidate:
		return d.resolve(id, UnknownCandidateName)
	case model.RoleInterviewer:
		return d.resolve(id, UnknownInterviewerName)
	default:
		return d.resolve(id, UnknownUserName)
	}
}

func (d *Directory) resolve(id, placeholder string) Identity {
	if d != nil {
		if u, ok := d.byID[id]; ok {
			return Identity{
				UserID:      u.ID,
				DisplayName: u.DisplayName,
				AvatarRef:   u.AvatarRef,
				Initials:    Initials(u.DisplayName),
				Role:        u.Role,
				Known:       true,
			}
		}
	}
	return Identity{UserID: id, DisplayName: placeholder, Initials: Initials(placeholder)}
}

// Initials takes the first letter of the first two whitespace separated
// tokens of name, uppercased.  An empty name yields PlaceholderInitials.
func Initials(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return PlaceholderInitials
	}
	if len(fields) > 2 {
		fields = fields[:2]
	}
	var b strings.Builder
	for _, f := range fields {
		r, _ := utf8.DecodeRuneInString(f)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
