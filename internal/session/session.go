// ABOUTME: Token store and observable auth state for the client
// ABOUTME: Persists tokens, user and profile; pushes snapshots to subscribers

package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Rayanebsh/Pathwayfr/internal/model"
	"github.com/Rayanebsh/Pathwayfr/internal/storage"
)

// State is a snapshot of what the client knows about the current login
type State struct {
	LoggedIn bool
	User     *model.UserSummary
	Profile  *model.AcademicProfile
}

// Premium reports a logged-in premium account
func (s State) Premium() bool {
	return s.LoggedIn && s.User != nil && s.User.SubscriptionActive()
}

// Admin reports a logged-in admin account
func (s State) Admin() bool {
	return s.LoggedIn && s.User != nil && s.User.IsAdmin()
}

// HasProfile reports whether an academic profile is cached
func (s State) HasProfile() bool {
	return s.Profile != nil
}

// Store is the single owner of the persisted credentials. Every mutation
// publishes a fresh State to subscribers.
type Store struct {
	kv storage.Store

	mu     sync.Mutex
	subs   map[int]chan State
	nextID int
}

// New wraps a key/value store
func New(kv storage.Store) *Store {
	return &Store{
		kv:   kv,
		subs: make(map[int]chan State),
	}
}

// AccessToken returns the current access token, or "" when absent
func (s *Store) AccessToken() string {
	v, _ := s.kv.Get(storage.KeyAccessToken)
	return v
}

// RefreshToken returns the current refresh token, or "" when absent
func (s *Store) RefreshToken() string {
	v, _ := s.kv.Get(storage.KeyRefreshToken)
	return v
}

// SetTokens replaces the whole credential pair
func (s *Store) SetTokens(t model.Tokens) error {
	if err := s.kv.Set(storage.KeyAccessToken, t.AccessToken); err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}
	if t.RefreshToken == "" {
		if err := s.kv.Remove(storage.KeyRefreshToken); err != nil {
			return fmt.Errorf("failed to clear refresh token: %w", err)
		}
	} else if err := s.kv.Set(storage.KeyRefreshToken, t.RefreshToken); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	s.publish()
	return nil
}

// SetAccessToken stores a refreshed access token, keeping the refresh token
func (s *Store) SetAccessToken(token string) error {
	if err := s.kv.Set(storage.KeyAccessToken, token); err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}
	s.publish()
	return nil
}

// ClearTokens removes both tokens. Cached user and profile are kept.
func (s *Store) ClearTokens() error {
	if err := s.kv.Remove(storage.KeyAccessToken, storage.KeyRefreshToken); err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	s.publish()
	return nil
}

// SetUser caches the logged-in account
func (s *Store) SetUser(u model.UserSummary) error {
	if err := s.setJSON(storage.KeyUser, u); err != nil {
		return err
	}
	s.publish()
	return nil
}

// User returns the cached account
func (s *Store) User() (*model.UserSummary, bool) {
	var u model.UserSummary
	if !s.getJSON(storage.KeyUser, &u) {
		return nil, false
	}
	return &u, true
}

// SetProfile caches the academic profile
func (s *Store) SetProfile(p model.AcademicProfile) error {
	if err := s.setJSON(storage.KeyProfile, p); err != nil {
		return err
	}
	s.publish()
	return nil
}

// Profile returns the cached academic profile
func (s *Store) Profile() (*model.AcademicProfile, bool) {
	var p model.AcademicProfile
	if !s.getJSON(storage.KeyProfile, &p) {
		return nil, false
	}
	return &p, true
}

// Logout removes tokens, user and profile
func (s *Store) Logout() error {
	err := s.kv.Remove(storage.KeyAccessToken, storage.KeyRefreshToken, storage.KeyUser, storage.KeyProfile)
	s.publish()
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// State returns the current snapshot. A session counts as logged in only when
// both an access token and a cached user are present.
func (s *Store) State() State {
	st := State{}
	user, hasUser := s.User()
	if hasUser {
		st.User = user
	}
	st.LoggedIn = s.AccessToken() != "" && hasUser
	if p, ok := s.Profile(); ok {
		st.Profile = p
	}
	return st
}

// Subscribe returns a channel that receives the current state immediately and
// then after every mutation. Slow readers only ever see the latest snapshot.
// The returned function unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	ch <- s.State()
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			close(ch)
			s.mu.Unlock()
		})
	}
}

func (s *Store) publish() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.subs) == 0 {
		return
	}
	st := s.State()
	for _, ch := range s.subs {
		select {
		case ch <- st:
		default:
			// Replace the stale snapshot
			select {
			case <-ch:
			default:
			}
			ch <- st
		}
	}
	slog.Debug("Auth state published", "logged_in", st.LoggedIn, "subscribers", len(s.subs))
}

func (s *Store) setJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.kv.Set(key, string(data)); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

func (s *Store) getJSON(key string, v any) bool {
	raw, ok := s.kv.Get(key)
	if !ok || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		slog.Warn("Ignoring unreadable cached value", "key", key, "error", err)
		return false
	}
	return true
}
