package preference_test

import (
	"context"
	"testing"
	"time"

	"github.com/liuwenjie/emomirror/backend/internal/model/emotion"
	"github.com/liuwenjie/emomirror/backend/internal/service/preference"
)

func TestDefaults(t *testing.T) {
	store := preference.NewStore(nil, nil)
	snap := store.Snapshot()

	if snap.Theme != preference.ThemeAuto {
		t.Fatalf("default theme: got %s", snap.Theme)
	}
	if snap.CurrentEmotion != emotion.Neutral {
		t.Fatalf("default emotion: got %s", snap.CurrentEmotion)
	}
	if snap.Loading {
		t.Fatal("loading must default to false")
	}
}

func TestSetThemeValidation(t *testing.T) {
	store := preference.NewStore(nil, nil)
	ctx := context.Background()

	if err := store.SetTheme(ctx, "sepia"); err == nil {
		t.Fatal("expected rejection of unknown theme")
	}
	if err := store.SetTheme(ctx, preference.ThemeDark); err != nil {
		t.Fatalf("SetTheme err: %v", err)
	}
	if got := store.Snapshot().Theme; got != preference.ThemeDark {
		t.Fatalf("theme not applied: %s", got)
	}
}

func TestAutoThemeFollowsAmbient(t *testing.T) {
	source := &fakeAmbient{current: preference.ThemeDark, changes: make(chan preference.Theme, 1)}
	store := preference.NewStore(nil, source)

	if got := store.Snapshot().EffectiveTheme; got != preference.ThemeDark {
		t.Fatalf("auto theme should resolve to ambient dark, got %s", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go store.Run(ctx)

	sub := store.Subscribe(ctx)
	source.changes <- preference.ThemeLight

	select {
	case snap := <-sub:
		if snap.EffectiveTheme != preference.ThemeLight {
			t.Fatalf("expected re-derived light theme, got %s", snap.EffectiveTheme)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ambient change notification")
	}
}

func TestExplicitThemeIgnoresAmbient(t *testing.T) {
	source := &fakeAmbient{current: preference.ThemeDark}
	store := preference.NewStore(nil, source)

	if err := store.SetTheme(context.Background(), preference.ThemeLight); err != nil {
		t.Fatalf("SetTheme err: %v", err)
	}
	if got := store.Snapshot().EffectiveTheme; got != preference.ThemeLight {
		t.Fatalf("explicit theme must win over ambient, got %s", got)
	}
}

func TestPersistRoundTripSkipsTransientFields(t *testing.T) {
	mem := &memoryPersister{}
	ctx := context.Background()

	store := preference.NewStore(mem, nil)
	if err := store.SetTheme(ctx, preference.ThemeDark); err != nil {
		t.Fatalf("SetTheme err: %v", err)
	}
	store.SetCurrentEmotion(ctx, emotion.Happy)
	store.SetLoading(true)

	reloaded := preference.NewStore(mem, nil)
	reloaded.Restore(ctx)
	snap := reloaded.Snapshot()

	if snap.Theme != preference.ThemeDark {
		t.Fatalf("theme did not round-trip: %s", snap.Theme)
	}
	if snap.CurrentEmotion != emotion.Happy {
		t.Fatalf("emotion did not round-trip: %s", snap.CurrentEmotion)
	}
	if snap.Loading {
		t.Fatal("loading is transient and must reset to false")
	}
}

func TestSubscriberNotifiedOnChange(t *testing.T) {
	store := preference.NewStore(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := store.Subscribe(ctx)
	store.SetCurrentEmotion(ctx, emotion.Excited)

	select {
	case snap := <-sub:
		if snap.CurrentEmotion != emotion.Excited {
			t.Fatalf("unexpected snapshot: %+v", snap)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
}

type fakeAmbient struct {
	current preference.Theme
	changes chan preference.Theme
}

func (f *fakeAmbient) Current() preference.Theme { return f.current }

func (f *fakeAmbient) Watch(ctx context.Context) <-chan preference.Theme {
	out := make(chan preference.Theme)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case theme, ok := <-f.changes:
				if !ok {
					return
				}
				select {
				case out <- theme:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

type memoryPersister struct {
	state *preference.State
}

func (m *memoryPersister) SavePreferences(_ context.Context, state preference.State) error {
	m.state = &state
	return nil
}

func (m *memoryPersister) LoadPreferences(context.Context) (preference.State, bool, error) {
	if m.state == nil {
		return preference.State{}, false, nil
	}
	return *m.state, true, nil
}
