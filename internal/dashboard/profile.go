// ABOUTME: Profile page state: the cached user and academic profile, refreshed from the backend
// ABOUTME: Cached values are shown first and kept when a refresh fails

package dashboard

import (
	"context"
	"errors"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/Rayanebsh/Pathwayfr/internal/form"
	"github.com/Rayanebsh/Pathwayfr/internal/model"
	"github.com/Rayanebsh/Pathwayfr/internal/session"
)

// ProfileAPI is the subset of the client used by the profile page
type ProfileAPI interface {
	Me(ctx context.Context) (*model.UserSummary, error)
	AcademicProfile(ctx context.Context) (*model.AcademicProfile, error)
	UpdateAcademicProfile(ctx context.Context, p model.AcademicProfile) error
}

// ProfileView is what the profile page shows
type ProfileView struct {
	User    *model.UserSummary
	Profile *model.AcademicProfile
	// Err is set when the refresh failed; cached values may still be shown
	Err error
}

// Row is one labelled line of a detail panel
type Row struct {
	Label string
	Value string
}

// CachedProfile builds the view from the session alone, without requests
func CachedProfile(sess *session.Store) ProfileView {
	st := sess.State()
	return ProfileView{User: st.User, Profile: st.Profile}
}

// LoadProfile starts from the cached values and refreshes the user and the
// academic profile concurrently. Each refreshed value replaces its cached
// counterpart; a failed refresh leaves the cached one in place.
func LoadProfile(ctx context.Context, api ProfileAPI, sess *session.Store) ProfileView {
	view := CachedProfile(sess)

	var (
		user       *model.UserSummary
		profile    *model.AcademicProfile
		userErr    error
		profileErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		user, userErr = api.Me(ctx)
		return nil
	})
	g.Go(func() error {
		profile, profileErr = api.AcademicProfile(ctx)
		return nil
	})
	_ = g.Wait()

	if userErr == nil {
		view.User = user
	}
	if profileErr == nil {
		view.Profile = profile
		if err := sess.SetProfile(*profile); err != nil {
			profileErr = err
		}
	}
	view.Err = errors.Join(userErr, profileErr)
	return view
}

// IdentityRows lists the account details
func (v ProfileView) IdentityRows() []Row {
	if v.User == nil {
		return nil
	}
	subscription := "Gratuit"
	if v.User.SubscriptionActive() {
		subscription = "Premium"
	}
	rows := []Row{
		{"Nom", v.User.FullName()},
		{"Email", v.User.Email},
		{"Abonnement", subscription},
	}
	if v.User.IsAdmin() {
		rows = append(rows, Row{"Rôle", "Administrateur"})
	}
	return rows
}

// AcademicRows lists the academic profile, with "Non renseigné" for gaps
func (v ProfileView) AcademicRows() []Row {
	if v.Profile == nil {
		return nil
	}
	p := v.Profile
	const missing = "Non renseigné"
	bac, bacType, tcf := missing, missing, missing
	if p.BacAverage != nil {
		bac = Grade(*p.BacAverage)
	}
	if b, ok := model.LookupBacType(p.BacType); ok {
		bacType = b.Label
	}
	if p.TCFScore != nil {
		tcf = strconv.Itoa(*p.TCFScore)
	}
	or := func(s string) string {
		if s == "" {
			return missing
		}
		return s
	}
	return []Row{
		{"Moyenne du bac", bac},
		{"Type de bac", bacType},
		{"Score TCF", tcf},
		{"Spécialité", or(p.Specialty)},
		{"Année d'étude", or(p.StudyYear)},
		{"Déjà accepté", or(p.Acceptance.Label())},
	}
}

// EditController opens the profile wizard on the current values. Saving
// goes through PUT /users/profile/academic.
func (v ProfileView) EditController(api ProfileAPI) *form.Controller[form.Profile] {
	start := form.Profile{}
	if v.Profile != nil {
		start = form.ProfileFromAcademic(*v.Profile)
	}
	return form.NewProfileControllerFrom(start, api.UpdateAcademicProfile)
}
