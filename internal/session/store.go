package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/icedfool/rpi-ds-game/internal/game"
	"github.com/icedfool/rpi-ds-game/pkg/models"
)

// ErrNotFound is returned when no game exists for a player name
var ErrNotFound = errors.New("game not found")

// EventStart is the action name recorded when a game is (re)started
const EventStart = "start"

// Observer receives every state change after it has been applied.
// Observers are called with the player's entry locked, in the order the
// changes were applied, so they must not block or call back into the store.
type Observer interface {
	PlayerUpdated(ctx context.Context, event models.PlayerEvent) error
}

// entry owns one player record; mu serialises every mutation of it and
// the delivery of the resulting events
type entry struct {
	mu      sync.Mutex
	player  *models.PlayerState
	seq     int64
	retired bool // replaced by a later Start
}

// Store maps player names to their game state
type Store struct {
	engine *game.Engine

	entries   map[string]*entry
	entriesMu sync.RWMutex

	observers []Observer
	now       func() time.Time
}

// NewStore creates an empty store driven by engine
func NewStore(engine *game.Engine, observers ...Observer) *Store {
	if engine == nil {
		engine = game.NewEngine(nil)
	}
	return &Store{
		engine:    engine,
		entries:   make(map[string]*entry),
		observers: observers,
		now:       time.Now,
	}
}

// AddObserver registers an observer. Not safe to call while serving requests.
func (s *Store) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
}

// Start creates a new game for name, replacing any existing one.
// Sequence numbers continue across restarts of the same name.
func (s *Store) Start(ctx context.Context, name string, creditHours int) models.PlayerState {
	e := &entry{player: game.NewPlayer(name, creditHours)}
	e.mu.Lock()
	defer e.mu.Unlock()

	// lock order is entry.mu before entriesMu
	for {
		old, exists := s.lookup(name)
		if exists {
			old.mu.Lock()
			if old.retired {
				old.mu.Unlock()
				continue
			}
		}

		s.entriesMu.Lock()
		current, ok := s.entries[name]
		if ok != exists || current != old {
			s.entriesMu.Unlock()
			if exists {
				old.mu.Unlock()
			}
			continue
		}
		s.entries[name] = e
		s.entriesMu.Unlock()

		if exists {
			e.seq = old.seq
			old.retired = true
			defer old.mu.Unlock()
		}
		break
	}

	e.seq++
	snapshot := *e.player
	s.notify(ctx, s.newEvent(EventStart, e.seq, snapshot))
	return snapshot
}

// Act applies an action to the named player's game
func (s *Store) Act(ctx context.Context, name string, action game.Action) (models.PlayerState, error) {
	if !action.Valid() {
		return models.PlayerState{}, fmt.Errorf("%w: %s", game.ErrInvalidAction, action)
	}

	e, ok := s.lockEntry(name)
	if !ok {
		return models.PlayerState{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	defer e.mu.Unlock()

	if err := s.engine.Apply(e.player, action); err != nil {
		return models.PlayerState{}, err
	}

	e.seq++
	snapshot := *e.player
	s.notify(ctx, s.newEvent(action.String(), e.seq, snapshot))
	return snapshot, nil
}

// Status returns the current state of the named player's game
func (s *Store) Status(name string) (models.PlayerState, error) {
	e, ok := s.lockEntry(name)
	if !ok {
		return models.PlayerState{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	defer e.mu.Unlock()

	return *e.player, nil
}

// Has reports whether a game exists for name
func (s *Store) Has(name string) bool {
	_, ok := s.lookup(name)
	return ok
}

// Len returns the number of active games
func (s *Store) Len() int {
	s.entriesMu.RLock()
	defer s.entriesMu.RUnlock()
	return len(s.entries)
}

func (s *Store) lookup(name string) (*entry, bool) {
	s.entriesMu.RLock()
	defer s.entriesMu.RUnlock()
	e, ok := s.entries[name]
	return e, ok
}

// lockEntry returns the live entry for name with its mutex held
func (s *Store) lockEntry(name string) (*entry, bool) {
	for {
		e, ok := s.lookup(name)
		if !ok {
			return nil, false
		}

		e.mu.Lock()
		if !e.retired {
			return e, true
		}
		e.mu.Unlock()
	}
}

func (s *Store) newEvent(action string, seq int64, state models.PlayerState) models.PlayerEvent {
	return models.PlayerEvent{
		EventID:    uuid.New().String(),
		Player:     state.Name,
		Action:     action,
		Sequence:   seq,
		State:      state,
		OccurredAt: s.now().UTC(),
	}
}

// notify fans an event out to every observer. Failures are logged only.
func (s *Store) notify(ctx context.Context, event models.PlayerEvent) {
	for _, o := range s.observers {
		if err := o.PlayerUpdated(ctx, event); err != nil {
			fmt.Printf("⚠️  observer failed for %s (%s): %v\n", event.Player, event.Action, err)
		}
	}
}
