package preference

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	preferenceService "github.com/liuwenjie/emomirror/backend/internal/service/preference"
)

func setupRouter() (*chi.Mux, *preferenceService.Store) {
	prefs := preferenceService.NewStore(nil, nil)
	handler := New(prefs)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, prefs
}

func putJSON(r http.Handler, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPut, "/preferences", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestGetPreferencesDefaults(t *testing.T) {
	r, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/preferences", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var snap preferenceService.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if snap.Theme != preferenceService.ThemeAuto {
		t.Fatalf("expected auto theme, got %q", snap.Theme)
	}
	if snap.Loading {
		t.Fatal("expected loading to default to false")
	}
}

func TestPutTheme(t *testing.T) {
	r, prefs := setupRouter()

	resp := putJSON(r, map[string]string{"theme": "dark"})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := prefs.Snapshot().Theme; got != preferenceService.ThemeDark {
		t.Fatalf("expected dark theme, got %q", got)
	}
}

func TestPutInvalidTheme(t *testing.T) {
	r, prefs := setupRouter()

	resp := putJSON(r, map[string]string{"theme": "sepia"})

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if got := prefs.Snapshot().Theme; got != preferenceService.ThemeAuto {
		t.Fatalf("invalid theme should not change state, got %q", got)
	}
}

func TestPutPartialUpdateKeepsOtherFields(t *testing.T) {
	r, prefs := setupRouter()

	if resp := putJSON(r, map[string]string{"theme": "light"}); resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	resp := putJSON(r, map[string]bool{"isLoading": true})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	snap := prefs.Snapshot()
	if snap.Theme != preferenceService.ThemeLight {
		t.Fatalf("partial update should keep theme, got %q", snap.Theme)
	}
	if !snap.Loading {
		t.Fatal("expected loading to be true")
	}
}

func TestPutReturnsUpdatedSnapshot(t *testing.T) {
	r, _ := setupRouter()

	resp := putJSON(r, map[string]string{"currentEmotion": "happy"})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var snap preferenceService.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if snap.CurrentEmotion != "happy" {
		t.Fatalf("expected updated emotion in response, got %q", snap.CurrentEmotion)
	}
}
