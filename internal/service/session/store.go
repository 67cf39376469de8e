package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/liuwenjie/emomirror/backend/internal/model/chat"
	"github.com/liuwenjie/emomirror/backend/internal/model/emotion"
)

var ErrNoActiveSession = errors.New("no active session")

// Trend classifies the recent direction of mean valence.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// Trend window size and the minimum mean-valence shift that counts as a move.
const (
	trendWindow    = 5
	trendThreshold = 0.1
)

// Persister is the write-through persistence hook behind the store. All
// calls are best effort: the store logs failures and keeps serving from
// memory, so implementations must tolerate being called on every mutation.
type Persister interface {
	SaveSession(ctx context.Context, sess chat.Session) error
	ClearSession(ctx context.Context) error
	LoadSession(ctx context.Context) (chat.Session, bool, error)
}

// Store is the single source of truth for the active session. At most one
// session is active at a time; starting a new one discards the previous
// session's state. All mutation goes through the store, which serializes
// concurrent modality callbacks behind one mutex.
type Store struct {
	mu        sync.RWMutex
	active    *chat.Session
	persister Persister
	lastErr   string

	now func() time.Time
}

// NewStore creates a session store. persister may be nil, in which case the
// store is memory-only.
func NewStore(persister Persister) *Store {
	return &Store{
		persister: persister,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Restore loads the persisted session, if any, on startup. A load failure
// leaves the store empty rather than failing startup.
func (s *Store) Restore(ctx context.Context) {
	if s.persister == nil {
		return
	}

	sess, ok, err := s.persister.LoadSession(ctx)
	if err != nil {
		log.Printf("[session] restore failed, starting empty: %v", err)
		return
	}
	if !ok {
		return
	}

	s.mu.Lock()
	s.active = &sess
	s.mu.Unlock()
	log.Printf("[session] restored session %s with %d records", sess.ID, len(sess.EmotionHistory))
}

// Start creates a fresh session, replacing any previous one. Prior session
// data is lost unless the persistence layer kept it.
func (s *Store) Start(ctx context.Context, advisorID string) chat.Session {
	sess := chat.Session{
		ID:             uuid.NewString(),
		AdvisorID:      advisorID,
		StartTime:      s.now(),
		EmotionHistory: make([]emotion.Record, 0, 16),
		ChatHistory:    make([]chat.Message, 0, 16),
	}

	s.mu.Lock()
	s.active = &sess
	s.persistLocked(ctx)
	s.mu.Unlock()

	return sess.Clone()
}

// End stamps the active session's end time. It is a no-op when no session
// is active and never creates one.
func (s *Store) End(ctx context.Context) (chat.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return chat.Session{}, false
	}

	end := s.now()
	s.active.EndTime = &end
	s.persistLocked(ctx)
	return s.active.Clone(), true
}

// Clear discards the active session and all of its history.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.active = nil
	if s.persister != nil {
		if err := s.persister.ClearSession(ctx); err != nil {
			log.Printf("[session] clear persistence failed: %v", err)
			s.lastErr = err.Error()
		}
	}
	s.mu.Unlock()
}

// AddEmotionAnalysis appends a record to the active session's history.
// The record's VAD and confidence are expected to be clamped already; the
// store does not re-validate bounds. Insertion order is call order.
func (s *Store) AddEmotionAnalysis(ctx context.Context, rec emotion.Record) (emotion.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return emotion.Record{}, ErrNoActiveSession
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}

	s.active.EmotionHistory = append(s.active.EmotionHistory, rec)
	s.persistLocked(ctx)
	return rec, nil
}

// AddChatMessage appends a message to the active session's chat history.
func (s *Store) AddChatMessage(ctx context.Context, msg chat.Message) (chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return chat.Message{}, ErrNoActiveSession
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now()
	}
	msg.SessionID = s.active.ID

	s.active.ChatHistory = append(s.active.ChatHistory, msg)
	s.persistLocked(ctx)
	return msg, nil
}

// Active returns a copy of the current session.
func (s *Store) Active() (chat.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.active == nil {
		return chat.Session{}, false
	}
	return s.active.Clone(), true
}

// LatestRecord returns the most recent emotion record, if any.
func (s *Store) LatestRecord() (emotion.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.active == nil || len(s.active.EmotionHistory) == 0 {
		return emotion.Record{}, false
	}
	return s.active.EmotionHistory[len(s.active.EmotionHistory)-1], true
}

// Duration reports elapsed session time: end-start for a finished session,
// now-start for a running one. ok is false when no session exists.
func (s *Store) Duration() (time.Duration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.active == nil {
		return 0, false
	}
	if s.active.EndTime != nil {
		return s.active.EndTime.Sub(s.active.StartTime), true
	}
	return s.now().Sub(s.active.StartTime), true
}

// Trend compares the mean valence of the most recent records against the
// window preceding them. Fewer than two records always reads as stable.
func (s *Store) Trend() Trend {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.active == nil {
		return TrendStable
	}

	history := s.active.EmotionHistory
	if len(history) < 2 {
		return TrendStable
	}

	recentStart := len(history) - trendWindow
	if recentStart < 1 {
		recentStart = len(history) / 2
	}
	prevStart := recentStart - trendWindow
	if prevStart < 0 {
		prevStart = 0
	}

	recent := meanValence(history[recentStart:])
	previous := meanValence(history[prevStart:recentStart])

	switch diff := recent - previous; {
	case diff > trendThreshold:
		return TrendImproving
	case diff < -trendThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// AverageValence is the mean valence over the whole history, 0 when empty.
func (s *Store) AverageValence() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.active == nil || len(s.active.EmotionHistory) == 0 {
		return 0
	}
	return meanValence(s.active.EmotionHistory)
}

// LastError exposes the most recent persistence failure for the
// presentation layer; empty when the last write succeeded.
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// persistLocked writes the active session through to storage. Callers hold
// the write lock. Failures downgrade to memory-only operation.
func (s *Store) persistLocked(ctx context.Context) {
	if s.persister == nil || s.active == nil {
		return
	}

	if err := s.persister.SaveSession(ctx, s.active.Clone()); err != nil {
		log.Printf("[session] persistence failed, continuing in memory: %v", err)
		s.lastErr = err.Error()
		return
	}
	s.lastErr = ""
}

func meanValence(records []emotion.Record) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += r.VAD.Valence
	}
	return sum / float64(len(records))
}
