// ABOUTME: Tests for the dashboard view models
// ABOUTME: Admin loads and actions use a fake API; profile refresh runs against httptest

package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rayanebsh/Pathwayfr/internal/client"
	"github.com/Rayanebsh/Pathwayfr/internal/model"
	"github.com/Rayanebsh/Pathwayfr/internal/session"
	"github.com/Rayanebsh/Pathwayfr/internal/storage"
)

type fakeAdminAPI struct {
	usersErr   error
	statsErr   error
	actionErr  error
	statsDelay time.Duration

	mu    sync.Mutex
	calls []string
}

func (f *fakeAdminAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAdminAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAdminAPI) AdminUsers(ctx context.Context) ([]model.AdminUser, error) {
	f.record("users")
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	return []model.AdminUser{
		{ID: 1, FirstName: "Amel", LastName: "Benali", Email: "amel@example.com", CreatedAt: "2024-05-01"},
		{ID: 2, FirstName: "Yanis", LastName: "Kaci", Email: "yanis@example.com", Premium: true, CreatedAt: "2024-06-12"},
	}, nil
}

func (f *fakeAdminAPI) AdminStats(ctx context.Context) (*model.Stats, error) {
	f.record("stats")
	if f.statsDelay > 0 {
		time.Sleep(f.statsDelay)
	}
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return &model.Stats{TotalUsers: 1200, ConversionRate: 12.5}, nil
}

func (f *fakeAdminAPI) ExperienceSummaries(ctx context.Context) ([]model.ExperienceSummary, error) {
	f.record("experiences")
	return []model.ExperienceSummary{
		{ID: 10, FirstName: "Amel", IsValidated: model.ExperiencePending},
		{ID: 11, FirstName: "Yanis", IsValidated: model.ExperienceApproved},
	}, nil
}

func (f *fakeAdminAPI) action(name string) error {
	f.record(name)
	return f.actionErr
}

func (f *fakeAdminAPI) BanUser(ctx context.Context, id int) error   { return f.action("ban") }
func (f *fakeAdminAPI) UnbanUser(ctx context.Context, id int) error { return f.action("unban") }
func (f *fakeAdminAPI) DeleteUser(ctx context.Context, id int) error {
	return f.action("delete-user")
}
func (f *fakeAdminAPI) ApproveExperience(ctx context.Context, id int) error {
	return f.action("approve")
}
func (f *fakeAdminAPI) RejectExperience(ctx context.Context, id int) error {
	return f.action("reject")
}
func (f *fakeAdminAPI) DeleteExperience(ctx context.Context, id int) error {
	return f.action("delete-experience")
}

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

func loadedAdmin(t *testing.T, api *fakeAdminAPI, confirm Confirmer) *Admin {
	t.Helper()
	a := NewAdmin(api, staticToken("acc"), confirm)
	require.NoError(t, a.Load(context.Background()))
	return a
}

func TestAdminLoad_NoTokenSendsNothing(t *testing.T) {
	api := &fakeAdminAPI{}
	a := NewAdmin(api, staticToken(""), nil)

	err := a.Load(context.Background())
	assert.ErrorIs(t, err, client.ErrNoToken)
	assert.ErrorIs(t, a.Err(), client.ErrNoToken)
	assert.Empty(t, api.Calls())
}

func TestAdminLoad_SectionsFailIndependently(t *testing.T) {
	boom := &client.APIError{StatusCode: 500, Message: "Erreur serveur"}
	api := &fakeAdminAPI{statsErr: boom, statsDelay: 20 * time.Millisecond}
	a := NewAdmin(api, staticToken("acc"), nil)

	err := a.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	users := a.Users()
	assert.True(t, users.Loaded)
	assert.Len(t, users.Data, 2)

	stats := a.Stats()
	assert.False(t, stats.Loaded)
	assert.ErrorIs(t, stats.Err, boom)

	exps := a.Experiences()
	assert.True(t, exps.Loaded)
	assert.Len(t, exps.Data, 2)
	assert.ElementsMatch(t, []string{"users", "stats", "experiences"}, api.Calls())
}

func TestAdminActions_OptimisticUpdate(t *testing.T) {
	api := &fakeAdminAPI{}
	a := loadedAdmin(t, api, nil)
	ctx := context.Background()

	require.NoError(t, a.Ban(ctx, 1))
	assert.True(t, a.Users().Data[0].IsBanned)
	assert.False(t, a.Users().Data[1].IsBanned)

	require.NoError(t, a.Unban(ctx, 1))
	assert.False(t, a.Users().Data[0].IsBanned)

	require.NoError(t, a.Approve(ctx, 10))
	assert.Equal(t, model.ExperienceApproved, a.Experiences().Data[0].IsValidated)

	require.NoError(t, a.Reject(ctx, 11))
	assert.Equal(t, model.ExperienceRejected, a.Experiences().Data[1].IsValidated)

	assert.Equal(t, ModerationCounts{Approved: 1, Rejected: 1}, a.Counts())
	assert.Empty(t, a.Banner())
}

func TestAdminActions_FailureSetsBannerOnly(t *testing.T) {
	api := &fakeAdminAPI{}
	a := loadedAdmin(t, api, nil)
	api.actionErr = &client.APIError{StatusCode: 403, Message: "Accès non autorisé"}

	err := a.Ban(context.Background(), 2)
	require.Error(t, err)
	assert.Equal(t, "Accès non autorisé", a.Banner())
	assert.False(t, a.Users().Data[1].IsBanned)
	assert.Len(t, a.Users().Data, 2)

	a.DismissBanner()
	assert.Empty(t, a.Banner())
}

func TestAdminDelete_RequiresConfirmation(t *testing.T) {
	api := &fakeAdminAPI{}
	var prompts []string
	answer := false
	a := loadedAdmin(t, api, ConfirmFunc(func(p string) bool {
		prompts = append(prompts, p)
		return answer
	}))
	ctx := context.Background()

	done, err := a.DeleteUser(ctx, 1)
	require.NoError(t, err)
	assert.False(t, done)
	assert.NotContains(t, api.Calls(), "delete-user")
	assert.Len(t, a.Users().Data, 2)

	answer = true
	done, err = a.DeleteUser(ctx, 1)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Len(t, a.Users().Data, 1)

	done, err = a.DeleteExperience(ctx, 10)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Len(t, a.Experiences().Data, 1)

	assert.Equal(t, []string{PromptDeleteUser, PromptDeleteUser, PromptDeleteExperience}, prompts)
}

func TestAdminDelete_NilConfirmerDeclines(t *testing.T) {
	api := &fakeAdminAPI{}
	a := loadedAdmin(t, api, nil)
	done, err := a.DeleteExperience(context.Background(), 10)
	require.NoError(t, err)
	assert.False(t, done)
	assert.NotContains(t, api.Calls(), "delete-experience")
}

func TestAdminSearch(t *testing.T) {
	a := loadedAdmin(t, &fakeAdminAPI{}, nil)

	a.SetSearch("YANIS")
	users := a.FilteredUsers()
	require.Len(t, users, 1)
	assert.Equal(t, 2, users[0].ID)

	a.SetSearch("example.com")
	assert.Len(t, a.FilteredUsers(), 2)

	a.SetSearch("zzz")
	assert.Empty(t, a.FilteredUsers())
	assert.Equal(t, "Aucun utilisateur trouvé", a.EmptyUsersMessage())
}

func TestExportCSV(t *testing.T) {
	a := loadedAdmin(t, &fakeAdminAPI{}, nil)
	a.SetSearch("amel")

	var buf bytes.Buffer
	require.NoError(t, a.ExportCSV(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3, "export ignores the search filter")
	assert.Equal(t, "Prénom,Nom,Email,Banni,Premium,Date création", lines[0])
	assert.Equal(t, "Yanis,Kaci,yanis@example.com,false,true,2024-06-12", lines[2])

	err := WriteUsersCSV(&buf, nil)
	assert.ErrorIs(t, err, ErrNothingToExport)
	assert.Equal(t, "Aucune donnée à exporter", MsgNothingToExport)
}

func TestExportFilename(t *testing.T) {
	day := time.Date(2024, 9, 3, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, "pathwayfr-users-2024-09-03.csv", ExportFilename(day))
}

func TestStatRows(t *testing.T) {
	assert.Nil(t, StatRows(nil))
	rows := StatRows(&model.Stats{TotalUsers: 1200, ConversionRate: 12.5})
	assert.Equal(t, StatRow{"Utilisateurs", "1,200"}, rows[0])
	assert.Equal(t, StatRow{"Taux de conversion", "12.5 %"}, rows[9])
}

func TestRelTime(t *testing.T) {
	now := time.Date(2024, 5, 4, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "il y a 3 jours", Since("2024-05-01T10:00:00", now))
	assert.Equal(t, "il y a 1 heure", RelTime(now.Add(-90*time.Minute), now))
	assert.Equal(t, "dans 5 minutes", RelTime(now.Add(5*time.Minute+time.Second), now))
	assert.Equal(t, "pas une date", Since("pas une date", now))
}

func TestGrade(t *testing.T) {
	assert.Equal(t, "14,5/20", Grade(14.5))
	assert.Equal(t, "12/20", Grade(12))
}

func TestBuildCard(t *testing.T) {
	bac := 15.25
	tcf := 480
	e := model.PublicExperience{
		ID:                     7,
		ApplicationYear:        2023,
		CandidatureYear:        float64(3),
		StudyYearAtApplication: "terminale",
		LevelTCF:               &tcf,
		BacAverage:             &bac,
		IsValidated:            model.ExperienceApproved,
		Speciality:             &model.Speciality{Name: "Informatique"},
		Universities:           []model.University{{Name: "Université de Lille", City: "Lille"}, {Name: " "}},
		AverageEachYear:        map[string]float64{"L1": 12, "3AS": 14, "L1_redouble": 11, "X9": 3},
		UniversityAcceptedIn:   []string{"Lille", " ", ""},
		UniversityRejectedIn:   []string{"", "Paris 1"},
	}
	c := BuildCard(e)
	assert.Equal(t, "Informatique · Année d'étude : Terminale", c.Title)
	assert.Equal(t, "Accepté", c.Status)
	assert.Equal(t, "L3", c.CandidatureYear)
	assert.Equal(t, "15,25/20", c.BacAverage)
	assert.Equal(t, "480", c.TCF)
	assert.Equal(t, []Row{{"3AS", "14/20"}, {"L1", "12/20"}, {"L1 (redoublement)", "11/20"}}, c.Averages)
	assert.Equal(t, []float64{14, 12}, c.Trend)
	assert.Equal(t, []string{"Université de Lille (Lille)"}, c.Universities)
	assert.Equal(t, []string{"Lille"}, c.Accepted)
	assert.Equal(t, []string{"Paris 1"}, c.Rejected)
}

func TestBuildCard_CandidatureYearForms(t *testing.T) {
	for in, want := range map[any]string{
		"2":        "L2",
		"inconnue": "inconnue",
		float64(9): "9",
	} {
		assert.Equal(t, want, BuildCard(model.PublicExperience{CandidatureYear: in}).CandidatureYear)
	}
	assert.Equal(t, "", BuildCard(model.PublicExperience{}).CandidatureYear)
	assert.Equal(t, "Refusé", BuildCard(model.PublicExperience{}).Status)
}

func TestFilterCards(t *testing.T) {
	cards := []Card{{Title: "Informatique"}, {Title: "Droit", Universities: []string{"Université de Lille"}}}
	assert.Len(t, FilterCards(cards, ""), 2)
	assert.Len(t, FilterCards(cards, "lille"), 1)
}

func TestSimulatorAccess(t *testing.T) {
	user := &model.UserSummary{FirstName: "Amel"}
	profile := &model.AcademicProfile{Specialty: "Informatique"}

	assert.Equal(t, AccessLoginRequired, SimulatorAccess(session.State{}))
	assert.Equal(t, AccessProfileRequired, SimulatorAccess(session.State{LoggedIn: true, User: user}))
	assert.Nil(t, Recommendations(session.State{LoggedIn: true, User: user}))

	recs := Recommendations(session.State{LoggedIn: true, User: user, Profile: profile})
	require.Len(t, recs, 7)
	for i, r := range recs {
		assert.Equal(t, i+1, r.Rank)
		assert.Len(t, r.Reasons, 3)
	}
	assert.Equal(t, "Université Paris-Dauphine", recs[0].Name)
}

func TestMessaging(t *testing.T) {
	premium := &model.UserSummary{Subscription: model.SubscriptionPremium}
	assert.Equal(t, AccessLoginRequired, MessagingAccess(session.State{}))
	assert.Equal(t, AccessPremiumRequired, MessagingAccess(session.State{LoggedIn: true, User: &model.UserSummary{}}))
	assert.Equal(t, AccessGranted, MessagingAccess(session.State{LoggedIn: true, User: premium}))

	m := NewMessaging()
	m.now = func() time.Time { return time.Date(2024, 1, 1, 16, 5, 0, 0, time.UTC) }
	assert.Len(t, m.Conversations(), 3)
	assert.Len(t, m.Messages(), 4)

	assert.False(t, m.Send("   "))
	assert.Len(t, m.Messages(), 4)

	assert.True(t, m.Send("  Bonjour !  "))
	msgs := m.Messages()
	require.Len(t, msgs, 5)
	assert.Equal(t, Message{ID: 5, Author: OwnAuthor, Content: "Bonjour !", Timestamp: "16:05", Own: true}, msgs[4])
	assert.Equal(t, "Bonjour !", m.Selected().LastMessage)

	m.SetSearch("emma")
	convs := m.Conversations()
	require.Len(t, convs, 1)
	assert.Equal(t, 3, convs[0].ID)

	assert.True(t, m.Select(3))
	assert.Zero(t, m.Selected().Unread)
	assert.Len(t, m.Messages(), 1)
	assert.False(t, m.Select(42))
}

func TestLoadProfile(t *testing.T) {
	var profileCalls atomic.Int32
	fail := atomic.Bool{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/me":
			json.NewEncoder(w).Encode(model.UserSummary{FirstName: "Amel", LastName: "Benali", Email: "amel@example.com"})
		case "/users/profile/academic":
			profileCalls.Add(1)
			if fail.Load() {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"error": "indisponible"})
				return
			}
			avg := 13.5
			json.NewEncoder(w).Encode(model.AcademicProfile{
				BacAverage: &avg, BacType: "technique_mathematique",
				Specialty: "Informatique", StudyYear: "L2", Acceptance: model.AcceptancePending,
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	sess := session.New(storage.NewMemory())
	sess.SetTokens(model.Tokens{AccessToken: "acc", RefreshToken: "ref"})
	c := client.New(server.URL, client.WithSession(sess))

	view := LoadProfile(context.Background(), c, sess)
	require.NoError(t, view.Err)
	assert.Equal(t, "Amel Benali", view.User.FullName())
	rows := view.AcademicRows()
	assert.Equal(t, Row{"Moyenne du bac", "13,5/20"}, rows[0])
	assert.Equal(t, Row{"Type de bac", "Techniques mathématiques"}, rows[1])
	assert.Equal(t, Row{"Score TCF", "Non renseigné"}, rows[2])
	assert.Equal(t, Row{"Déjà accepté", "En cours"}, rows[5])

	cached, ok := sess.Profile()
	require.True(t, ok)
	assert.Equal(t, "Informatique", cached.Specialty)

	fail.Store(true)
	view = LoadProfile(context.Background(), c, sess)
	require.Error(t, view.Err)
	require.NotNil(t, view.Profile, "cached profile is kept when the refresh fails")
	assert.Equal(t, "L2", view.Profile.StudyYear)
	assert.EqualValues(t, 2, profileCalls.Load())

	ctrl := view.EditController(c)
	assert.Equal(t, "techniques_mathematiques", ctrl.State().BacType)
	assert.True(t, ctrl.State().HasBac)
}

func TestIdentityRows(t *testing.T) {
	v := ProfileView{User: &model.UserSummary{FirstName: "Sara", Role: model.RoleAdmin, Subscription: model.SubscriptionPremium}}
	rows := v.IdentityRows()
	assert.Equal(t, Row{"Abonnement", "Premium"}, rows[2])
	assert.Equal(t, Row{"Rôle", "Administrateur"}, rows[3])
	assert.Nil(t, ProfileView{}.IdentityRows())
}
