package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "auth.json")
	store, err := NewFileStore(path, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoginCorrectSecret(t *testing.T) {
	gate := NewGate("abc", nil, nil)

	if !gate.Login("abc", false) {
		t.Error("Login(correct) = false, want true")
	}
	if !gate.Authenticated() {
		t.Error("Authenticated() = false after successful login")
	}
}

func TestLoginWrongSecret(t *testing.T) {
	gate := NewGate("abc", nil, nil)

	if gate.Login("xyz", true) {
		t.Error("Login(wrong) = true, want false")
	}
	if gate.Authenticated() {
		t.Error("Authenticated() = true after failed login")
	}
}

func TestLoginRememberPersists(t *testing.T) {
	store := newTestStore(t)

	gate := NewGate("abc", store, nil)
	if !gate.Login("abc", true) {
		t.Fatal("Login() = false, want true")
	}

	// A fresh gate over the same store simulates a process restart.
	restarted := NewGate("abc", store, nil)
	if !restarted.Authenticated() {
		t.Error("Authenticated() = false after restart, want persisted true")
	}
}

func TestLoginWithoutRememberDoesNotPersist(t *testing.T) {
	store := newTestStore(t)

	gate := NewGate("abc", store, nil)
	if !gate.Login("abc", false) {
		t.Fatal("Login() = false, want true")
	}

	restarted := NewGate("abc", store, nil)
	if restarted.Authenticated() {
		t.Error("Authenticated() = true after restart without remember")
	}
}

func TestLogoutClearsPersistedState(t *testing.T) {
	store := newTestStore(t)

	gate := NewGate("abc", store, nil)
	gate.Login("abc", true)
	gate.Logout()

	if gate.Authenticated() {
		t.Error("Authenticated() = true after logout")
	}

	restarted := NewGate("abc", store, nil)
	if restarted.Authenticated() {
		t.Error("Authenticated() = true after logout and restart")
	}
}

func TestWatchResyncsExternalChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.json")

	store, err := NewFileStore(path, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	defer store.Close()

	gate := NewGate("abc", store, nil)
	ctx := context.Background()
	if err := gate.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer gate.Stop(ctx)

	// Another process writes the flag through its own store handle.
	other, err := NewFileStore(path, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	defer other.Close()

	if err := other.Set(StateKey, "true"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for !gate.Authenticated() {
		if time.Now().After(deadline) {
			t.Fatal("gate did not resync from external state change")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestMiddleware(t *testing.T) {
	gate := NewGate("abc", nil, nil)

	handler := Middleware(gate, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	gate.Login("abc", false)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
