// Package session provisions the realtime video sessions interviews take
// place in.  The scheduler only stores the opaque session reference; the
// provider behind it is either a hosted video API or an in-process
// registry for development and tests.
package session

import (
	"context"
	"errors"
	"time"
)

// Member roles inside a provisioned session.
const (
	MemberHost        = "host"
	MemberParticipant = "call_member"
)

// Member is a participant added to the session when it is created.
type Member struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Request describes the session to create.  Ref is generated by the
// scheduler before any record is persisted.
type Request struct {
	Ref         string
	Title       string
	Description string
	StartsAt    time.Time
	CreatedBy   string
	Members     []Member
}

// Session is what the provider reports back.
type Session struct {
	Ref string `json:"ref"`
	// CID is the provider's own call identifier, e.g. "default:<ref>".
	CID string `json:"cid"`
}

// Provider materialises sessions.
type Provider interface {
	Provision(ctx context.Context, req Request) (Session, error)
}

// ErrEmptyRef is returned when a request carries no session reference.
var ErrEmptyRef = errors.New("session ref is empty")
