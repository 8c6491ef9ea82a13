// ABOUTME: Admin dashboard state: users, statistics and experiences to moderate
// ABOUTME: Sections load concurrently and fail independently; actions update locally

package dashboard

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/Rayanebsh/Pathwayfr/internal/client"
	"github.com/Rayanebsh/Pathwayfr/internal/model"
)

// Confirmation prompts for destructive actions
const (
	PromptDeleteUser       = "Voulez-vous vraiment supprimer cet utilisateur ?"
	PromptDeleteExperience = "Voulez-vous vraiment supprimer cette expérience ?"
)

// CSVHeader is the first line of the user export
var CSVHeader = []string{"Prénom", "Nom", "Email", "Banni", "Premium", "Date création"}

// ErrNothingToExport is returned when the user list is empty
var ErrNothingToExport = errors.New("nothing to export")

// MsgNothingToExport is shown for ErrNothingToExport
const MsgNothingToExport = "Aucune donnée à exporter"

// AdminAPI is the subset of the client used by the admin dashboard
type AdminAPI interface {
	AdminUsers(ctx context.Context) ([]model.AdminUser, error)
	AdminStats(ctx context.Context) (*model.Stats, error)
	ExperienceSummaries(ctx context.Context) ([]model.ExperienceSummary, error)
	BanUser(ctx context.Context, id int) error
	UnbanUser(ctx context.Context, id int) error
	DeleteUser(ctx context.Context, id int) error
	ApproveExperience(ctx context.Context, id int) error
	RejectExperience(ctx context.Context, id int) error
	DeleteExperience(ctx context.Context, id int) error
}

// TokenSource reports the stored access token
type TokenSource interface {
	AccessToken() string
}

// Confirmer asks the operator before a destructive action
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(prompt string) bool

// Confirm calls f
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Section holds one independently loaded part of the dashboard
type Section[T any] struct {
	Data   T
	Err    error
	Loaded bool
}

// Admin is the admin dashboard. It is safe for concurrent use.
type Admin struct {
	api     AdminAPI
	tokens  TokenSource
	confirm Confirmer
	logger  *slog.Logger

	mu          sync.RWMutex
	err         error
	users       Section[[]model.AdminUser]
	stats       Section[*model.Stats]
	experiences Section[[]model.ExperienceSummary]
	banner      string
	search      string
}

// NewAdmin creates the dashboard. confirm may be nil, in which case every
// destructive action is declined.
func NewAdmin(api AdminAPI, tokens TokenSource, confirm Confirmer) *Admin {
	if confirm == nil {
		confirm = ConfirmFunc(func(string) bool { return false })
	}
	return &Admin{api: api, tokens: tokens, confirm: confirm, logger: slog.Default()}
}

// Load fetches the three sections concurrently. A failing section keeps its
// own error and never prevents the others from loading. The returned error
// joins every section error. Without a token nothing is requested.
func (a *Admin) Load(ctx context.Context) error {
	if a.tokens == nil || a.tokens.AccessToken() == "" {
		a.mu.Lock()
		a.err = client.ErrNoToken
		a.mu.Unlock()
		return client.ErrNoToken
	}

	var (
		users       Section[[]model.AdminUser]
		stats       Section[*model.Stats]
		experiences Section[[]model.ExperienceSummary]
	)
	start := time.Now()

	// No WithContext: one failure must not cancel the sibling loads
	var g errgroup.Group
	g.Go(func() error {
		users.Data, users.Err = a.api.AdminUsers(ctx)
		users.Loaded = users.Err == nil
		return nil
	})
	g.Go(func() error {
		stats.Data, stats.Err = a.api.AdminStats(ctx)
		stats.Loaded = stats.Err == nil
		return nil
	})
	g.Go(func() error {
		experiences.Data, experiences.Err = a.api.ExperienceSummaries(ctx)
		experiences.Loaded = experiences.Err == nil
		return nil
	})
	_ = g.Wait()

	a.mu.Lock()
	a.err = nil
	a.users = users
	a.stats = stats
	a.experiences = experiences
	a.mu.Unlock()

	a.logger.Debug("Admin dashboard loaded",
		"users", len(users.Data),
		"experiences", len(experiences.Data),
		"duration", time.Since(start))
	return errors.Join(users.Err, stats.Err, experiences.Err)
}

// Err is the dashboard-wide error, set when no token is stored
func (a *Admin) Err() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.err
}

// Users returns the user section
func (a *Admin) Users() Section[[]model.AdminUser] {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s := a.users
	s.Data = slices.Clone(s.Data)
	return s
}

// Stats returns the statistics section
func (a *Admin) Stats() Section[*model.Stats] {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stats
}

// Experiences returns the moderation section
func (a *Admin) Experiences() Section[[]model.ExperienceSummary] {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s := a.experiences
	s.Data = slices.Clone(s.Data)
	return s
}

// Banner is the last action failure, empty when none
func (a *Admin) Banner() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.banner
}

// DismissBanner clears the action failure
func (a *Admin) DismissBanner() {
	a.mu.Lock()
	a.banner = ""
	a.mu.Unlock()
}

// SetSearch sets the user filter
func (a *Admin) SetSearch(q string) {
	a.mu.Lock()
	a.search = q
	a.mu.Unlock()
}

// FilteredUsers returns the users whose first name, last name or email
// contains the search term, ignoring case
func (a *Admin) FilteredUsers() []model.AdminUser {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return FilterUsers(a.users.Data, a.search)
}

// FilterUsers applies the admin search to users
func FilterUsers(users []model.AdminUser, q string) []model.AdminUser {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]model.AdminUser, 0, len(users))
	for _, u := range users {
		if q == "" ||
			strings.Contains(strings.ToLower(u.FirstName), q) ||
			strings.Contains(strings.ToLower(u.LastName), q) ||
			strings.Contains(strings.ToLower(u.Email), q) {
			out = append(out, u)
		}
	}
	return out
}

// EmptyUsersMessage is shown when the filtered list is empty
func (a *Admin) EmptyUsersMessage() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if strings.TrimSpace(a.search) != "" {
		return "Aucun utilisateur trouvé"
	}
	return "Aucun utilisateur"
}

// Ban bans a user and marks it locally on success
func (a *Admin) Ban(ctx context.Context, id int) error {
	return a.act(ctx, "ban", id, a.api.BanUser, func() { a.setBanned(id, true) })
}

// Unban lifts a ban and marks it locally on success
func (a *Admin) Unban(ctx context.Context, id int) error {
	return a.act(ctx, "unban", id, a.api.UnbanUser, func() { a.setBanned(id, false) })
}

// Approve publishes an experience
func (a *Admin) Approve(ctx context.Context, id int) error {
	return a.act(ctx, "approve", id, a.api.ApproveExperience, func() { a.setStatus(id, model.ExperienceApproved) })
}

// Reject refuses an experience
func (a *Admin) Reject(ctx context.Context, id int) error {
	return a.act(ctx, "reject", id, a.api.RejectExperience, func() { a.setStatus(id, model.ExperienceRejected) })
}

// DeleteUser asks for confirmation, then deletes the user. It reports
// false when the operator declined; nothing is sent in that case.
func (a *Admin) DeleteUser(ctx context.Context, id int) (bool, error) {
	if !a.confirm.Confirm(PromptDeleteUser) {
		return false, nil
	}
	err := a.act(ctx, "delete-user", id, a.api.DeleteUser, func() {
		a.users.Data = slices.DeleteFunc(a.users.Data, func(u model.AdminUser) bool { return u.ID == id })
	})
	return err == nil, err
}

// DeleteExperience asks for confirmation, then deletes the experience
func (a *Admin) DeleteExperience(ctx context.Context, id int) (bool, error) {
	if !a.confirm.Confirm(PromptDeleteExperience) {
		return false, nil
	}
	err := a.act(ctx, "delete-experience", id, a.api.DeleteExperience, func() {
		a.experiences.Data = slices.DeleteFunc(a.experiences.Data, func(e model.ExperienceSummary) bool { return e.ID == id })
	})
	return err == nil, err
}

// act runs one moderation call. update runs under the lock after success;
// a failure only sets the banner.
func (a *Admin) act(ctx context.Context, name string, id int, call func(context.Context, int) error, update func()) error {
	if a.tokens == nil || a.tokens.AccessToken() == "" {
		a.fail(client.ErrNoToken)
		return client.ErrNoToken
	}
	if err := call(ctx, id); err != nil {
		a.logger.Warn("Admin action failed", "action", name, "id", id, "error", err)
		a.fail(err)
		return err
	}
	a.mu.Lock()
	update()
	a.mu.Unlock()
	a.logger.Info("Admin action applied", "action", name, "id", id)
	return nil
}

func (a *Admin) fail(err error) {
	a.mu.Lock()
	a.banner = client.UserMessage(err)
	a.mu.Unlock()
}

func (a *Admin) setBanned(id int, banned bool) {
	for i := range a.users.Data {
		if a.users.Data[i].ID == id {
			a.users.Data[i].IsBanned = banned
		}
	}
}

func (a *Admin) setStatus(id int, status string) {
	for i := range a.experiences.Data {
		if a.experiences.Data[i].ID == id {
			a.experiences.Data[i].IsValidated = status
		}
	}
}

// ModerationCounts tallies the loaded experiences per status
type ModerationCounts struct {
	Pending  int
	Approved int
	Rejected int
}

// Counts tallies the loaded experiences
func (a *Admin) Counts() ModerationCounts {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var c ModerationCounts
	for _, e := range a.experiences.Data {
		switch e.IsValidated {
		case model.ExperienceApproved:
			c.Approved++
		case model.ExperienceRejected:
			c.Rejected++
		default:
			c.Pending++
		}
	}
	return c
}

// StatRow is one labelled figure of the statistics panel
type StatRow struct {
	Label string
	Value string
}

// StatRows formats the statistics for display
func StatRows(s *model.Stats) []StatRow {
	if s == nil {
		return nil
	}
	n := func(v int) string { return humanize.Comma(int64(v)) }
	pct := func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) + " %" }
	return []StatRow{
		{"Utilisateurs", n(s.TotalUsers)},
		{"Utilisateurs actifs", n(s.ActiveUsers)},
		{"Premium", n(s.PremiumUsers)},
		{"Bannis", n(s.BannedUsers)},
		{"Nouveaux (30 jours)", n(s.NewUsersLast30Days)},
		{"Expériences", n(s.TotalExperiences)},
		{"En attente", n(s.PendingExperiences)},
		{"Approuvées", n(s.ApprovedExperiences)},
		{"Rejetées", n(s.RejectedExperiences)},
		{"Taux de conversion", pct(s.ConversionRate)},
		{"Taux d'approbation", pct(s.ApprovalRate)},
	}
}

// StatusLabel is the French label of a moderation state
func StatusLabel(status string) string {
	switch status {
	case model.ExperienceApproved:
		return "Approuvée"
	case model.ExperienceRejected:
		return "Rejetée"
	default:
		return "En attente"
	}
}

// ExportFilename is the CSV file name for a given day
func ExportFilename(day time.Time) string {
	return fmt.Sprintf("pathwayfr-users-%s.csv", day.Format(time.DateOnly))
}

// ExportCSV writes every loaded user, ignoring the search filter
func (a *Admin) ExportCSV(w io.Writer) error {
	return WriteUsersCSV(w, a.Users().Data)
}

// WriteUsersCSV writes users with the export header
func WriteUsersCSV(w io.Writer, users []model.AdminUser) error {
	if len(users) == 0 {
		return ErrNothingToExport
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, u := range users {
		record := []string{
			u.FirstName,
			u.LastName,
			u.Email,
			strconv.FormatBool(u.IsBanned),
			strconv.FormatBool(u.Premium),
			u.CreatedAt,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
