package storage

import (
	"context"

	"github.com/liuwenjie/emomirror/backend/internal/model/chat"
	"github.com/liuwenjie/emomirror/backend/internal/service/preference"
)

// Namespaces and schema versions for the persisted state blobs. Bump a
// version when the shape of its payload changes; old payloads are then
// discarded on load instead of being trusted.
const (
	sessionNamespace     = "session"
	sessionSchemaVersion = 1

	preferenceNamespace     = "preferences"
	preferenceSchemaVersion = 1
)

// SessionPersister adapts Store to the session store's write-through hook.
type SessionPersister struct {
	store *Store
}

// NewSessionPersister wraps the storage for session state.
func NewSessionPersister(store *Store) *SessionPersister {
	return &SessionPersister{store: store}
}

func (p *SessionPersister) SaveSession(ctx context.Context, sess chat.Session) error {
	return p.store.Save(ctx, sessionNamespace, sessionSchemaVersion, sess)
}

func (p *SessionPersister) ClearSession(ctx context.Context) error {
	return p.store.Delete(ctx, sessionNamespace)
}

func (p *SessionPersister) LoadSession(ctx context.Context) (chat.Session, bool, error) {
	var sess chat.Session
	ok, err := p.store.Load(ctx, sessionNamespace, sessionSchemaVersion, &sess)
	if err != nil || !ok {
		return chat.Session{}, false, err
	}
	return sess, true, nil
}

// PreferencePersister adapts Store to the preference store's hook.
type PreferencePersister struct {
	store *Store
}

// NewPreferencePersister wraps the storage for preference state.
func NewPreferencePersister(store *Store) *PreferencePersister {
	return &PreferencePersister{store: store}
}

func (p *PreferencePersister) SavePreferences(ctx context.Context, state preference.State) error {
	return p.store.Save(ctx, preferenceNamespace, preferenceSchemaVersion, state)
}

func (p *PreferencePersister) LoadPreferences(ctx context.Context) (preference.State, bool, error) {
	var state preference.State
	ok, err := p.store.Load(ctx, preferenceNamespace, preferenceSchemaVersion, &state)
	if err != nil || !ok {
		return preference.State{}, false, err
	}
	return state, true, nil
}
