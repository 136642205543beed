package service

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/dragonpaw/ashbot/internal/domain"
	"github.com/dragonpaw/ashbot/internal/infra/storage"
)

// StateStore is the per-guild state cache the event handlers read and the
// reconciliation flow writes. Misses fall through to the repository once;
// Put publishes a fully built state as a single pointer swap, so a handler
// racing a reconfiguration sees either the old state or the new one, never
// a mix.
type StateStore struct {
	repo StateRepo

	mu    sync.RWMutex
	cache map[string]*domain.GuildState
}

func NewStateStore(repo StateRepo) *StateStore {
	return &StateStore{repo: repo, cache: map[string]*domain.GuildState{}}
}

func (s *StateStore) Get(ctx context.Context, guildID string) (*domain.GuildState, bool) {
	s.mu.RLock()
	st, ok := s.cache[guildID]
	s.mu.RUnlock()
	if ok {
		return st, true
	}

	loaded, err := s.repo.Get(ctx, guildID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("state load for guild %s: %v", guildID, err)
		}
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.cache[guildID]; ok {
		// Someone beat us to the fill.
		return st, true
	}
	s.cache[guildID] = &loaded
	return &loaded, true
}

// Put publishes the state in memory and persists it. The in-memory swap
// happens even when the DB write fails, so live handlers keep working off
// what was just reconciled; the caller decides what to do with the error.
func (s *StateStore) Put(ctx context.Context, st *domain.GuildState) error {
	s.mu.Lock()
	s.cache[st.ID] = st
	s.mu.Unlock()
	return s.repo.Put(ctx, *st)
}
