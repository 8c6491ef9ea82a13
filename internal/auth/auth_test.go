// ABOUTME: Tests for the account flows
// ABOUTME: Runs the real client against an httptest backend

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rayanebsh/Pathwayfr/internal/client"
	"github.com/Rayanebsh/Pathwayfr/internal/model"
	"github.com/Rayanebsh/Pathwayfr/internal/session"
	"github.com/Rayanebsh/Pathwayfr/internal/storage"
)

type backend struct {
	profileComplete bool
	profileFails    bool
	withUser        bool
	requests        atomic.Int32
	logouts         atomic.Int32
	resetBody       atomic.Value
}

func (b *backend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		b.requests.Add(1)
		var in client.LoginRequest
		json.NewDecoder(r.Body).Decode(&in)
		if in.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Email ou mot de passe incorrect"})
			return
		}
		resp := model.LoginResponse{Tokens: model.Tokens{AccessToken: "acc", RefreshToken: "ref"}}
		if b.withUser {
			resp.User = &model.UserSummary{ID: 1, FirstName: "Amel", Email: in.Email}
		}
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.UserSummary{ID: 1, FirstName: "Amel", Email: "amel@example.com"})
	})
	mux.HandleFunc("GET /users/profile/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer acc" {
			t.Errorf("unexpected authorization %q", r.Header.Get("Authorization"))
		}
		if b.profileFails {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
			return
		}
		status := model.ProfileStatus{IsComplete: b.profileComplete}
		if b.profileComplete {
			status.ProfileData = &model.AcademicProfile{Specialty: "Informatique", StudyYear: "L2", Acceptance: model.AcceptanceYes}
		}
		json.NewEncoder(w).Encode(status)
	})
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		b.requests.Add(1)
		var in client.RegisterRequest
		json.NewDecoder(r.Body).Decode(&in)
		if in.Role != model.RoleUser {
			t.Errorf("expected role user, got %q", in.Role)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(model.MessageResponse{Message: "Utilisateur créé"})
	})
	mux.HandleFunc("POST /auth/forgot_password/sendmail", func(w http.ResponseWriter, r *http.Request) {
		b.requests.Add(1)
		json.NewEncoder(w).Encode(model.MessageResponse{Message: "ok"})
	})
	mux.HandleFunc("POST /auth/forgot-password/{token}", func(w http.ResponseWriter, r *http.Request) {
		b.requests.Add(1)
		var in client.ResetPasswordRequest
		json.NewDecoder(r.Body).Decode(&in)
		b.resetBody.Store(r.PathValue("token") + ":" + in.Password)
		json.NewEncoder(w).Encode(model.MessageResponse{})
	})
	mux.HandleFunc("POST /auth/change_password", func(w http.ResponseWriter, r *http.Request) {
		b.requests.Add(1)
		json.NewEncoder(w).Encode(model.MessageResponse{Message: "Mot de passe modifié avec succès"})
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		b.logouts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	return mux
}

func setup(t *testing.T, b *backend) (*Service, *session.Store) {
	t.Helper()
	server := httptest.NewServer(b.handler(t))
	t.Cleanup(server.Close)
	sess := session.New(storage.NewMemory())
	c := client.New(server.URL, client.WithSession(sess))
	return New(c, sess), sess
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected a validation error, got %v", err)
	return verr.Fields
}

func TestStrongPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Abcdef1!", true},
		{"abcdef1!", false},
		{"Abcdefg!", false},
		{"Abcdefg1", false},
		{"Ab1!", false},
		{"Éèàçù1A?", true},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, StrongPassword(tt.password))
		})
	}
}

func TestLogin_MissingFieldsSendsNothing(t *testing.T) {
	b := &backend{}
	svc, _ := setup(t, b)

	_, err := svc.Login(context.Background(), LoginInput{Email: "  "})
	fields := fieldErrors(t, err)
	assert.Equal(t, "L'email est requis", fields["email"])
	assert.Equal(t, "Le mot de passe est requis", fields["password"])
	assert.Zero(t, b.requests.Load())
}

func TestLogin_Destination(t *testing.T) {
	tests := []struct {
		name string
		b    *backend
		want Destination
	}{
		{"complete profile", &backend{profileComplete: true, withUser: true}, DestExplorer},
		{"incomplete profile", &backend{withUser: true}, DestProfileSetup},
		{"status failure", &backend{profileFails: true, withUser: true}, DestProfileSetup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, sess := setup(t, tt.b)
			res, err := svc.Login(context.Background(), LoginInput{Email: "amel@example.com", Password: "secret"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Next)
			assert.Equal(t, "acc", sess.AccessToken())
			assert.Equal(t, "ref", sess.RefreshToken())

			_, hasProfile := sess.Profile()
			assert.Equal(t, tt.want == DestExplorer, hasProfile)
		})
	}
}

func TestLogin_FetchesUserWhenMissing(t *testing.T) {
	svc, sess := setup(t, &backend{})
	res, err := svc.Login(context.Background(), LoginInput{Email: "amel@example.com", Password: "secret"})
	require.NoError(t, err)
	require.NotNil(t, res.User)
	assert.Equal(t, "Amel", res.User.FirstName)

	u, ok := sess.User()
	require.True(t, ok)
	assert.Equal(t, "amel@example.com", u.Email)
}

func TestLogin_BackendMessage(t *testing.T) {
	svc, sess := setup(t, &backend{})
	_, err := svc.Login(context.Background(), LoginInput{Email: "amel@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, "Email ou mot de passe incorrect", client.UserMessage(err))
	assert.Empty(t, sess.AccessToken())
}

func TestRegister_Validation(t *testing.T) {
	b := &backend{}
	svc, _ := setup(t, b)

	_, err := svc.Register(context.Background(), RegisterInput{Email: "pas-un-email", Password: "123"})
	fields := fieldErrors(t, err)
	assert.Equal(t, "Le prénom est requis", fields["first_name"])
	assert.Equal(t, "Le nom est requis", fields["last_name"])
	assert.Equal(t, "L'adresse email n'est pas valide", fields["email"])
	assert.Equal(t, "Le mot de passe doit contenir au moins 6 caractères", fields["password"])
	assert.Zero(t, b.requests.Load())

	msg, err := svc.Register(context.Background(), RegisterInput{
		FirstName: " Amel ", LastName: "Benali", Email: "amel@example.com", Password: "123456",
	})
	require.NoError(t, err)
	assert.Equal(t, "Utilisateur créé", msg)
	assert.EqualValues(t, 1, b.requests.Load())
}

func TestForgot(t *testing.T) {
	svc, _ := setup(t, &backend{})
	msg, err := svc.Forgot(context.Background(), ForgotInput{Email: "amel@example.com"})
	require.NoError(t, err)
	assert.Equal(t, MsgForgotSent, msg)
}

func TestReset(t *testing.T) {
	tests := []struct {
		name  string
		in    ResetInput
		field string
		want  string
	}{
		{"empty", ResetInput{Token: "t"}, "confirmation", MsgBothRequired},
		{"mismatch", ResetInput{Token: "t", Password: "Abcdef1!", Confirmation: "Abcdef1?"}, "confirmation", MsgPasswordsDiff},
		{"weak", ResetInput{Token: "t", Password: "abcdefgh", Confirmation: "abcdefgh"}, "password", MsgPasswordWeak},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &backend{}
			svc, _ := setup(t, b)
			_, err := svc.Reset(context.Background(), tt.in)
			assert.Equal(t, tt.want, fieldErrors(t, err)[tt.field])
			assert.Zero(t, b.requests.Load())
		})
	}

	b := &backend{}
	svc, _ := setup(t, b)
	msg, err := svc.Reset(context.Background(), ResetInput{Token: "abc", Password: "Abcdef1!", Confirmation: "Abcdef1!"})
	require.NoError(t, err)
	assert.Equal(t, MsgResetDone, msg)
	assert.Equal(t, "abc:Abcdef1!", b.resetBody.Load())
}

func TestChange(t *testing.T) {
	b := &backend{}
	svc, sess := setup(t, b)

	_, err := svc.Change(context.Background(), ChangeInput{Current: "same12", New: "same12"})
	assert.Contains(t, fieldErrors(t, err), "new_password")

	_, err = svc.Change(context.Background(), ChangeInput{Current: "old123", New: "new123"})
	assert.ErrorIs(t, err, client.ErrNoToken)

	sess.SetTokens(model.Tokens{AccessToken: "acc", RefreshToken: "ref"})
	msg, err := svc.Change(context.Background(), ChangeInput{Current: "old123", New: "new123"})
	require.NoError(t, err)
	assert.Equal(t, "Mot de passe modifié avec succès", msg)
}

func TestLogout_ClearsSessionEvenWhenBackendFails(t *testing.T) {
	b := &backend{}
	svc, sess := setup(t, b)
	sess.SetTokens(model.Tokens{AccessToken: "acc", RefreshToken: "ref"})
	sess.SetUser(model.UserSummary{ID: 1})

	require.NoError(t, svc.Logout(context.Background()))
	assert.EqualValues(t, 1, b.logouts.Load())
	assert.False(t, sess.State().LoggedIn)
	_, ok := sess.User()
	assert.False(t, ok)
}

func TestLogout_WithoutTokenSkipsBackend(t *testing.T) {
	b := &backend{}
	svc, _ := setup(t, b)
	require.NoError(t, svc.Logout(context.Background()))
	assert.Zero(t, b.logouts.Load())
}
