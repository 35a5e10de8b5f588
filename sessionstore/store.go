// Package sessionstore keeps per-browser-session console state. The UI
// restarts its control flow on every interaction, so everything that must
// survive between renders (open editors, armed delete confirmations, the
// last comparison result) lives here, keyed by a session identifier.
package sessionstore

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/karthikeyanvijay/snowflake-cortex-document-validation-app/docedit"
	"github.com/karthikeyanvijay/snowflake-cortex-document-validation-app/gateway"
)

type timeProviderInterface interface {
	Now() time.Time
}

type realTimeProvider struct{}

func (rtp *realTimeProvider) Now() time.Time {
	return time.Now()
}

var timeProvider timeProviderInterface = &realTimeProvider{}

// State is the typed per-session bag of durable-for-the-session values.
// Handlers lock it for the duration of one request; no state is shared
// between sessions.
type State struct {
	mu sync.Mutex

	Editors        map[string]*docedit.Editor
	ArmedDeletes   map[string]bool
	LastComparison *gateway.ComparisonResult

	lastSeen time.Time
}

func newState(now time.Time) *State {
	return &State{
		Editors:      make(map[string]*docedit.Editor),
		ArmedDeletes: make(map[string]bool),
		lastSeen:     now,
	}
}

func (s *State) Lock()   { s.mu.Lock() }
func (s *State) Unlock() { s.mu.Unlock() }

// Store maps session identifiers to their state and expires sessions that
// have been idle past the TTL.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*State

	ttl           time.Duration
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
}

func New(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*State),
		ttl:      ttl,
	}
}

// NewSession allocates a fresh session and returns its identifier.
func (st *Store) NewSession() string {
	id := uuid.NewString()
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[id] = newState(timeProvider.Now())
	return id
}

// Get returns the state for a session identifier, refreshing its idle
// timer. Unknown identifiers return false (expired or never issued).
func (st *Store) Get(id string) (*State, bool) {
	st.mu.RLock()
	state, exists := st.sessions[id]
	st.mu.RUnlock()
	if !exists {
		return nil, false
	}

	state.Lock()
	state.lastSeen = timeProvider.Now()
	state.Unlock()
	return state, true
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// StartCleanup runs a goroutine that periodically drops idle sessions.
func (st *Store) StartCleanup(cleanupInterval time.Duration) {
	st.stopCleanup = make(chan struct{})
	st.cleanupTicker = time.NewTicker(cleanupInterval)

	go func() {
		for {
			select {
			case <-st.cleanupTicker.C:
				st.performCleanup()
			case <-st.stopCleanup:
				st.cleanupTicker.Stop()
				return
			}
		}
	}()
}

func (st *Store) StopCleanup() {
	if st.stopCleanup != nil {
		close(st.stopCleanup)
	}
}

func (st *Store) performCleanup() {
	now := timeProvider.Now()
	st.mu.Lock()
	defer st.mu.Unlock()

	for id, state := range st.sessions {
		state.Lock()
		idle := now.Sub(state.lastSeen)
		state.Unlock()
		if idle > st.ttl {
			delete(st.sessions, id)
			log.Printf("Deleted session %s due to expiration", id)
		}
	}
}
