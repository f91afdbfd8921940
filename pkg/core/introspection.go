package core

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Initialized    bool   `json:"initialized"`
	InitAttempts   int    `json:"init_attempts"`
	LastInitError  string `json:"last_init_error,omitempty"`
	ReadOnly       bool   `json:"read_only"`
	RepositoryType string `json:"repository_type"`
	Backend        any    `json:"backend,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	repoType := "unknown"
	var backend any
	if s.repo != nil {
		repoType = "repository"
		if comp, ok := s.repo.(introspection.Component); ok {
			repoType = comp.ComponentType()
		}
		if in, ok := s.repo.(introspection.Introspectable); ok {
			backend = in.State()
		}
	}

	var lastErr string
	if s.lastInitErr != nil {
		lastErr = s.lastInitErr.Error()
	}

	return StoreState{
		Initialized:    s.ready,
		InitAttempts:   s.initAttempts,
		LastInitError:  lastErr,
		ReadOnly:       s.readOnly,
		RepositoryType: repoType,
		Backend:        backend,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
