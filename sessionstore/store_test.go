package sessionstore

import (
	"testing"
	"time"
)

type mockTimeProvider struct {
	currentTime time.Time
}

func (m *mockTimeProvider) Now() time.Time {
	return m.currentTime
}

func TestNewSessionAndGet(t *testing.T) {
	store := New(time.Hour)

	id := store.NewSession()
	if id == "" {
		t.Fatal("expected a session identifier")
	}

	state, ok := store.Get(id)
	if !ok || state == nil {
		t.Fatal("expected to retrieve the new session")
	}
	if state.Editors == nil || state.ArmedDeletes == nil {
		t.Error("session state maps must be initialized")
	}

	if _, ok := store.Get("no-such-session"); ok {
		t.Error("unknown identifiers must not resolve")
	}
}

func TestPerformCleanupExpiresIdleSessions(t *testing.T) {
	mock := &mockTimeProvider{currentTime: time.Now()}
	original := timeProvider
	timeProvider = mock
	defer func() { timeProvider = original }()

	store := New(30 * time.Minute)
	idle := store.NewSession()
	active := store.NewSession()

	// Let time pass, then touch only one session.
	mock.currentTime = mock.currentTime.Add(25 * time.Minute)
	if _, ok := store.Get(active); !ok {
		t.Fatal("active session disappeared early")
	}

	mock.currentTime = mock.currentTime.Add(10 * time.Minute)
	store.performCleanup()

	if _, ok := store.Get(idle); ok {
		t.Error("idle session should have been expired")
	}
	if _, ok := store.Get(active); !ok {
		t.Error("recently touched session should survive")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 live session, got %d", store.Len())
	}
}

func TestGetRefreshesIdleTimer(t *testing.T) {
	mock := &mockTimeProvider{currentTime: time.Now()}
	original := timeProvider
	timeProvider = mock
	defer func() { timeProvider = original }()

	store := New(10 * time.Minute)
	id := store.NewSession()

	for i := 0; i < 3; i++ {
		mock.currentTime = mock.currentTime.Add(8 * time.Minute)
		if _, ok := store.Get(id); !ok {
			t.Fatalf("session expired despite activity at step %d", i)
		}
		store.performCleanup()
	}

	if store.Len() != 1 {
		t.Errorf("expected the session to survive, got %d sessions", store.Len())
	}
}

func TestStopCleanupTerminates(t *testing.T) {
	store := New(time.Minute)
	store.StartCleanup(10 * time.Millisecond)
	store.StopCleanup()
}
