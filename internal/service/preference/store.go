package preference

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/liuwenjie/emomirror/backend/internal/model/emotion"
)

var ErrInvalidTheme = errors.New("invalid theme")

// Theme selects the UI color scheme. ThemeAuto follows the ambient signal.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

// State is the persisted subset of the store. Loading is deliberately
// excluded: it is transient and resets on every restart.
type State struct {
	Theme          Theme         `json:"theme"`
	CurrentEmotion emotion.Label `json:"currentEmotion"`
}

// Snapshot is the full observable state handed to subscribers and the API.
type Snapshot struct {
	Theme          Theme         `json:"theme"`
	EffectiveTheme Theme         `json:"effectiveTheme"`
	CurrentEmotion emotion.Label `json:"currentEmotion"`
	Loading        bool          `json:"isLoading"`
	LastError      string        `json:"lastError,omitempty"`
}

// Persister stores the whitelisted preference state. Best effort, same
// contract as the session persister.
type Persister interface {
	SavePreferences(ctx context.Context, state State) error
	LoadPreferences(ctx context.Context) (State, bool, error)
}

// AmbientSource reports the host environment's light/dark preference and
// pushes a value whenever it changes. ThemeAuto resolves against it.
type AmbientSource interface {
	Current() Theme
	Watch(ctx context.Context) <-chan Theme
}

// Store holds cross-cutting UI preferences, decoupled from session data so
// theme and loading updates do not touch session state.
type Store struct {
	mu        sync.RWMutex
	theme     Theme
	current   emotion.Label
	loading   bool
	ambient   Theme
	lastErr   string
	persister Persister
	source    AmbientSource
	subs      map[int]chan Snapshot
	nextSub   int
}

// NewStore creates a preference store with defaults (auto theme, neutral
// emotion). persister and source may be nil.
func NewStore(persister Persister, source AmbientSource) *Store {
	ambient := ThemeLight
	if source != nil {
		ambient = source.Current()
	}

	return &Store{
		theme:     ThemeAuto,
		current:   emotion.Neutral,
		ambient:   ambient,
		persister: persister,
		source:    source,
		subs:      make(map[int]chan Snapshot),
	}
}

// Restore loads persisted preferences at startup, keeping defaults when
// nothing usable is stored.
func (s *Store) Restore(ctx context.Context) {
	if s.persister == nil {
		return
	}

	state, ok, err := s.persister.LoadPreferences(ctx)
	if err != nil {
		log.Printf("[preference] restore failed, using defaults: %v", err)
		return
	}
	if !ok {
		return
	}

	s.mu.Lock()
	if validTheme(state.Theme) {
		s.theme = state.Theme
	}
	if state.CurrentEmotion != "" {
		s.current = state.CurrentEmotion
	}
	s.mu.Unlock()
}

// Run consumes ambient signal changes until ctx is canceled. With an auto
// theme each change re-derives the effective theme and notifies subscribers.
func (s *Store) Run(ctx context.Context) {
	if s.source == nil {
		return
	}

	changes := s.source.Watch(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case ambient, ok := <-changes:
			if !ok {
				return
			}
			s.mu.Lock()
			s.ambient = ambient
			notify := s.theme == ThemeAuto
			snap := s.snapshotLocked()
			s.mu.Unlock()
			if notify {
				s.broadcast(snap)
			}
		}
	}
}

// SetTheme replaces the theme. Only enum members are accepted.
func (s *Store) SetTheme(ctx context.Context, theme Theme) error {
	if !validTheme(theme) {
		return ErrInvalidTheme
	}

	s.mu.Lock()
	s.theme = theme
	s.persistLocked(ctx)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.broadcast(snap)
	return nil
}

// SetCurrentEmotion records the last known emotion label for ambient coloring.
func (s *Store) SetCurrentEmotion(ctx context.Context, label emotion.Label) {
	s.mu.Lock()
	s.current = label
	s.persistLocked(ctx)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.broadcast(snap)
}

// SetLoading flips the transient loading flag. Never persisted.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.broadcast(snap)
}

// Snapshot returns the current observable state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe delivers a snapshot on every state change until ctx is
// canceled. Slow consumers miss intermediate snapshots rather than
// blocking writers.
func (s *Store) Subscribe(ctx context.Context) <-chan Snapshot {
	ch := make(chan Snapshot, 4)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
		close(ch)
	}()

	return ch
}

func (s *Store) snapshotLocked() Snapshot {
	effective := s.theme
	if s.theme == ThemeAuto {
		effective = s.ambient
	}
	return Snapshot{
		Theme:          s.theme,
		EffectiveTheme: effective,
		CurrentEmotion: s.current,
		Loading:        s.loading,
		LastError:      s.lastErr,
	}
}

func (s *Store) persistLocked(ctx context.Context) {
	if s.persister == nil {
		return
	}

	state := State{Theme: s.theme, CurrentEmotion: s.current}
	if err := s.persister.SavePreferences(ctx, state); err != nil {
		log.Printf("[preference] persistence failed, continuing in memory: %v", err)
		s.lastErr = err.Error()
		return
	}
	s.lastErr = ""
}

func (s *Store) broadcast(snap Snapshot) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

func validTheme(t Theme) bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeAuto
}
