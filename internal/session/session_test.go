// ABOUTME: Tests for the token store and auth state subscriptions
// ABOUTME: Covers persistence keys, logout, snapshots and claim decoding

package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rayanebsh/Pathwayfr/internal/model"
	"github.com/Rayanebsh/Pathwayfr/internal/storage"
)

func newStore() (*Store, *storage.Memory) {
	kv := storage.NewMemory()
	return New(kv), kv
}

func TestTokens(t *testing.T) {
	s, kv := newStore()

	assert.Empty(t, s.AccessToken())
	assert.Empty(t, s.RefreshToken())

	require.NoError(t, s.SetTokens(model.Tokens{AccessToken: "a1", RefreshToken: "r1"}))
	assert.Equal(t, "a1", s.AccessToken())
	assert.Equal(t, "r1", s.RefreshToken())

	v, ok := kv.Get(storage.KeyAccessToken)
	assert.True(t, ok)
	assert.Equal(t, "a1", v)

	require.NoError(t, s.SetAccessToken("a2"))
	assert.Equal(t, "a2", s.AccessToken())
	assert.Equal(t, "r1", s.RefreshToken())

	require.NoError(t, s.ClearTokens())
	assert.Empty(t, s.AccessToken())
	assert.Empty(t, s.RefreshToken())
}

func TestSetTokensOverwritesPriorSession(t *testing.T) {
	s, _ := newStore()
	require.NoError(t, s.SetTokens(model.Tokens{AccessToken: "a1", RefreshToken: "r1"}))
	require.NoError(t, s.SetTokens(model.Tokens{AccessToken: "a2"}))

	assert.Equal(t, "a2", s.AccessToken())
	assert.Empty(t, s.RefreshToken())
}

func TestStateRequiresTokenAndUser(t *testing.T) {
	s, _ := newStore()
	assert.False(t, s.State().LoggedIn)

	require.NoError(t, s.SetTokens(model.Tokens{AccessToken: "a", RefreshToken: "r"}))
	assert.False(t, s.State().LoggedIn, "token without user is not a login")

	require.NoError(t, s.SetUser(model.UserSummary{FirstName: "Lina", Subscription: "premium", Role: "admin"}))
	st := s.State()
	assert.True(t, st.LoggedIn)
	assert.True(t, st.Premium())
	assert.True(t, st.Admin())
	assert.False(t, st.HasProfile())

	require.NoError(t, s.ClearTokens())
	assert.False(t, s.State().LoggedIn)
	assert.False(t, s.State().Premium())
}

func TestLogoutRemovesAllKeys(t *testing.T) {
	s, kv := newStore()
	require.NoError(t, s.SetTokens(model.Tokens{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, s.SetUser(model.UserSummary{FirstName: "Lina"}))
	require.NoError(t, s.SetProfile(model.AcademicProfile{Specialty: "Informatique", StudyYear: "L2"}))

	require.NoError(t, s.Logout())

	for _, key := range []string{storage.KeyAccessToken, storage.KeyRefreshToken, storage.KeyUser, storage.KeyProfile} {
		_, ok := kv.Get(key)
		assert.False(t, ok, "key %s should be removed", key)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	s, _ := newStore()
	avg := 14.5
	tcf := 420
	require.NoError(t, s.SetProfile(model.AcademicProfile{
		BacAverage: &avg,
		BacType:    "mathematiques",
		TCFScore:   &tcf,
		Specialty:  "Informatique",
		StudyYear:  "L3",
		Acceptance: model.AcceptancePending,
	}))

	p, ok := s.Profile()
	require.True(t, ok)
	require.NotNil(t, p.BacAverage)
	assert.Equal(t, 14.5, *p.BacAverage)
	assert.Equal(t, 420, *p.TCFScore)
	assert.Equal(t, model.AcceptanceNo, p.Acceptance, "the cached profile keeps the backend's boolean")
}

func TestCorruptCachedUserIsIgnored(t *testing.T) {
	s, kv := newStore()
	kv.Set(storage.KeyUser, "{broken")

	_, ok := s.User()
	assert.False(t, ok)
}

func TestSubscribe(t *testing.T) {
	s, _ := newStore()
	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()

	initial := <-ch
	assert.False(t, initial.LoggedIn)

	require.NoError(t, s.SetUser(model.UserSummary{FirstName: "Lina"}))
	require.NoError(t, s.SetTokens(model.Tokens{AccessToken: "a", RefreshToken: "r"}))

	// Two mutations, one buffered slot: only the latest snapshot is kept
	latest := <-ch
	assert.True(t, latest.LoggedIn)

	select {
	case st := <-ch:
		t.Fatalf("unexpected extra snapshot %+v", st)
	default:
	}

	require.NoError(t, s.Logout())
	assert.False(t, (<-ch).LoggedIn)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	s, _ := newStore()
	ch, unsubscribe := s.Subscribe()
	<-ch

	unsubscribe()
	unsubscribe()

	_, open := <-ch
	assert.False(t, open)

	// Publishing after unsubscribe must not panic
	require.NoError(t, s.SetAccessToken("x"))
}

func TestClaims(t *testing.T) {
	s, _ := newStore()

	_, err := s.Claims()
	assert.ErrorIs(t, err, ErrNoAccessToken)

	exp := time.Now().Add(15 * time.Minute)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "42",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("any-secret"))
	require.NoError(t, err)
	require.NoError(t, s.SetTokens(model.Tokens{AccessToken: token}))

	claims, err := s.Claims()
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.False(t, claims.Expired(time.Now()))
	assert.True(t, claims.Expired(exp.Add(time.Minute)))

	left, ok := claims.ExpiresIn(time.Now())
	assert.True(t, ok)
	assert.InDelta(t, (15 * time.Minute).Seconds(), left.Seconds(), 5)
}

func TestParseClaimsRejectsGarbage(t *testing.T) {
	_, err := ParseClaims("not-a-jwt")
	assert.Error(t, err)
}
