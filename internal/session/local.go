package session

import (
	"context"
	"fmt"
	"sync"
)

// LocalProvider keeps sessions in memory.  It is used when no hosted
// provider is configured.
type LocalProvider struct {
	mu       sync.Mutex
	sessions map[string]Request
}

// NewLocalProvider returns an empty registry.
func NewLocalProvider() *LocalProvider {
	return &LocalProvider{sessions: make(map[string]Request)}
}

// Provision registers req.Ref.  Reusing a reference is an error.
func (p *LocalProvider) Provision(ctx context.Context, req Request) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	if req.Ref == "" {
		return Session{}, ErrEmptyRef
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.sessions[req.Ref]; ok {
		return Session{}, fmt.Errorf("session %s already exists", req.Ref)
	}
	p.sessions[req.Ref] = req
	return Session{Ref: req.Ref, CID: "local:" + req.Ref}, nil
}
