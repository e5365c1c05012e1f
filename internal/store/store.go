// Package store keeps games in memory and serializes round advances per
// game, which the engine requires for correctness.
package store

import (
	"errors"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/chainsim/beergame/internal/game"
)

var ErrGameNotFound = errors.New("game not found")

type entry struct {
	mu   sync.Mutex // serializes advances for this game
	game *game.Game
}

// Store is an in-memory registry of games keyed by their six-digit code.
type Store struct {
	mu    sync.RWMutex
	games map[string]*entry
	rnd   *rand.Rand
}

func New() *Store {
	return &Store{
		games: make(map[string]*entry),
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Create registers a fresh empty game under a new unique code.
func (s *Store) Create() *game.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID()
	g := game.NewGame(id)
	s.games[id] = &entry{game: g}
	return g
}

// newID draws six-digit codes until one is free. Uniqueness is checked
// against the ids currently held, not a separate tracking set. Caller must
// hold s.mu.
func (s *Store) newID() string {
	for {
		id := strconv.Itoa(100000 + s.rnd.Intn(900000))
		if _, taken := s.games[id]; !taken {
			return id
		}
	}
}

// Get returns the live game. The value is shared with concurrent advances,
// so any caller that may run beside one must read it through WithGame
// instead; Get is for single-writer contexts such as tests.
func (s *Store) Get(id string) (*game.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e := s.games[id]
	if e == nil {
		return nil, ErrGameNotFound
	}
	return e.game, nil
}

// IDs returns every stored game code, ordered.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.games))
	for id := range s.games {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Delete removes a game. Removing an unknown id is not an error.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
}

// WithGame runs fn while holding the game's own lock, so fn never overlaps
// an advance on the same game. Reads that can run beside an advance go
// through here too. Different games proceed concurrently.
func (s *Store) WithGame(id string, fn func(*game.Game) error) error {
	s.mu.RLock()
	e := s.games[id]
	s.mu.RUnlock()
	if e == nil {
		return ErrGameNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.game)
}
