// ABOUTME: Page models of the TUI: explorer, simulator, messaging, admin and profile
// ABOUTME: Each page loads under the page context and ignores results of pages already left

package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rayanebsh/Pathwayfr/internal/client"
	core "github.com/Rayanebsh/Pathwayfr/internal/dashboard"
	"github.com/Rayanebsh/Pathwayfr/internal/form"
	"github.com/Rayanebsh/Pathwayfr/internal/model"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/dashboard"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/icons"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/styles"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/widgets"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/wizard"
)

type catalogAPI interface {
	Universities(ctx context.Context) ([]model.University, error)
	Specialities(ctx context.Context) ([]model.Speciality, error)
	Explorer(ctx context.Context) ([]model.PublicExperience, error)
}

// Explorer

func (a *App) loadExplorer() tea.Cmd {
	a.loading = true
	ctx, gen := a.ctx, a.gen
	return func() tea.Msg {
		exps, err := a.api.Explorer(ctx)
		return explorerLoadedMsg{gen: gen, cards: core.BuildCards(exps), err: err}
	}
}

func (a *App) visibleCards() []core.Card {
	return core.FilterCards(a.cards, a.search.Value())
}

func (a *App) updateExplorer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.searching {
		return a.updateSearch(msg, func() { a.explorerCursor = 0 })
	}
	switch msg.String() {
	case "up", "k":
		a.explorerCursor = max(a.explorerCursor-1, 0)
	case "down", "j":
		a.explorerCursor = min(a.explorerCursor+1, max(len(a.visibleCards())-1, 0))
	case "/":
		a.searching = true
		return a, a.search.Focus()
	case "r":
		return a, a.navigate(ScreenExplorer)
	case "c":
		if !a.state.LoggedIn {
			return a, a.navigate(ScreenLogin)
		}
	}
	return a, nil
}

// updateSearch feeds the search field; changed runs after every edit
func (a *App) updateSearch(msg tea.KeyMsg, changed func()) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.searching = false
		a.search.Blur()
		a.search.SetValue("")
		changed()
		return a, nil
	case "enter":
		a.searching = false
		a.search.Blur()
		return a, nil
	}
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	changed()
	return a, cmd
}

func (a *App) viewExplorer() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.Explorer.String() + " Explorer les expériences"))
	sb.WriteString("\n")
	if a.searching || a.search.Value() != "" {
		sb.WriteString(a.search.View())
		sb.WriteString("\n\n")
	}
	switch {
	case a.loading && a.cards == nil:
		sb.WriteString(styles.Help.Render("Chargement des expériences..."))
	case a.err != nil:
		sb.WriteString(widgets.StatusText(client.UserMessage(a.err), widgets.StatusCritical))
		sb.WriteString("\n")
		sb.WriteString(styles.Help.Render("r pour réessayer"))
	default:
		cards := a.visibleCards()
		if len(cards) > 0 {
			sb.WriteString(styles.Help.Render(fmt.Sprintf("%d expérience(s)", len(cards))))
			sb.WriteString("\n")
		}
		sb.WriteString(dashboard.Explorer(cards, a.explorerCursor, a.contentWidth()))
	}
	return sb.String()
}

// Simulator

func (a *App) updateSimulator(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	return a.updateGate(msg)
}

// updateGate offers the way out of an access gate
func (a *App) updateGate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "c":
		if !a.state.LoggedIn {
			return a, a.navigate(ScreenLogin)
		}
	case "p":
		if a.state.LoggedIn && !a.state.HasProfile() {
			a.profileEdit = false
			return a, a.navigate(ScreenProfileSetup)
		}
	case "esc":
		return a, a.navigate(ScreenExplorer)
	}
	return a, nil
}

// Share

func (a *App) loadCatalog() tea.Cmd {
	a.loading = true
	ctx, gen := a.ctx, a.gen
	return func() tea.Msg {
		catalog, err := wizard.LoadCatalog(ctx, a.api)
		return catalogLoadedMsg{gen: gen, catalog: catalog, err: err}
	}
}

func (a *App) handleCatalog(msg catalogLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != a.gen {
		return a, nil
	}
	a.loading = false
	if a.expired(msg.err) {
		return a, a.navigate(ScreenLogin)
	}
	if msg.err != nil {
		a.err = msg.err
		return a, nil
	}
	a.shareWizard = wizard.NewExperience(a.ctx, form.NewExperienceController(a.api), msg.catalog)
	a.shareWizard.SetWidth(a.contentWidth())
	a.shareWizard.SetTop(1)
	return a, a.shareWizard.Init()
}

func (a *App) viewShare() string {
	switch {
	case !a.state.LoggedIn:
		return dashboard.LoginGate("Connectez-vous pour partager votre expérience et aider les futurs étudiants.", a.contentWidth())
	case a.shareWizard != nil:
		return a.shareWizard.View()
	case a.err != nil:
		return widgets.StatusText(client.UserMessage(a.err), widgets.StatusCritical)
	default:
		return styles.Help.Render("Chargement des universités et spécialités...")
	}
}

// Profile wizard

func (a *App) startProfileWizard() tea.Cmd {
	ctrl := form.NewProfileController(a.api)
	if a.profileEdit {
		ctrl = a.profile.EditController(a.api)
	}
	a.profileWizard = wizard.NewProfile(a.ctx, ctrl)
	a.profileWizard.SetWidth(a.contentWidth())
	a.profileWizard.SetTop(1)
	return a.profileWizard.Init()
}

func (a *App) viewProfileWizard() string {
	if a.profileWizard == nil {
		return ""
	}
	return a.profileWizard.View()
}

// forwardToWizard hands msg to the page's wizard, if any
func (a *App) forwardToWizard(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case a.screen == ScreenShare && a.shareWizard != nil:
		_, cmd = a.shareWizard.Update(msg)
	case a.screen == ScreenProfileSetup && a.profileWizard != nil:
		_, cmd = a.profileWizard.Update(msg)
	}
	return cmd
}

func (a *App) ownsWizard(id int64) bool {
	return (a.shareWizard != nil && a.shareWizard.ID() == id) ||
		(a.profileWizard != nil && a.profileWizard.ID() == id)
}

// wizardExit is where a finished or cancelled wizard leads
func (a *App) wizardExit() Screen {
	if a.screen == ScreenProfileSetup && a.profileEdit {
		return ScreenProfile
	}
	return ScreenExplorer
}

func (a *App) handleWizardComplete(msg wizard.WizardCompleteMsg) (tea.Model, tea.Cmd) {
	if !a.ownsWizard(msg.ID) {
		return a, nil
	}
	a.refreshState()
	switch a.screen {
	case ScreenShare:
		a.notice = "Merci ! Votre expérience a été partagée."
	case ScreenProfileSetup:
		a.notice = "Profil enregistré"
		if !a.profileEdit {
			return a, a.navigate(ScreenSimulator)
		}
	}
	return a, a.navigate(a.wizardExit())
}

// Messaging

func (a *App) updateMessaging(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if core.MessagingAccess(a.state) != core.AccessGranted {
		return a.updateGate(msg)
	}
	if a.searching {
		return a.updateSearch(msg, func() {
			a.messaging.SetSearch(a.search.Value())
			a.messagingCursor = 0
		})
	}
	if a.composer.Focused() {
		switch msg.String() {
		case "esc":
			a.composer.Blur()
			return a, nil
		case "enter":
			if a.messaging.Send(a.composer.Value()) {
				a.composer.SetValue("")
			}
			return a, nil
		}
		var cmd tea.Cmd
		a.composer, cmd = a.composer.Update(msg)
		return a, cmd
	}

	convs := a.messaging.Conversations()
	switch msg.String() {
	case "up", "k":
		a.messagingCursor = max(a.messagingCursor-1, 0)
	case "down", "j":
		a.messagingCursor = min(a.messagingCursor+1, max(len(convs)-1, 0))
	case "i", "enter":
		return a, a.composer.Focus()
	case "/":
		a.searching = true
		return a, a.search.Focus()
	default:
		return a, nil
	}
	if a.messagingCursor < len(convs) {
		a.messaging.Select(convs[a.messagingCursor].ID)
	}
	return a, nil
}

func (a *App) viewMessaging() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.Messages.String() + " Messagerie"))
	sb.WriteString("\n")
	if a.searching || a.search.Value() != "" {
		sb.WriteString(a.search.View())
		sb.WriteString("\n")
	}
	sb.WriteString(dashboard.Messaging(a.state, a.messaging, a.composer.View(), a.contentWidth()))
	return sb.String()
}

// Admin

// keyConfirm approves exactly one destructive action after the operator
// pressed y
type keyConfirm struct {
	approved atomic.Bool
}

func (k *keyConfirm) Confirm(string) bool {
	return k.approved.Swap(false)
}

// pendingDelete is a deletion waiting for confirmation
type pendingDelete struct {
	prompt string
	run    func(ctx context.Context) (bool, error)
	done   string
}

func (a *App) loadAdmin() tea.Cmd {
	if !a.state.Admin() {
		return nil
	}
	a.admin = core.NewAdmin(a.api, a.sess, a.confirm)
	a.adminPanel = dashboard.New(a.admin, a.contentWidth(), a.contentHeight())
	return a.reloadAdmin()
}

func (a *App) reloadAdmin() tea.Cmd {
	a.loading = true
	admin, ctx, gen := a.admin, a.ctx, a.gen
	return func() tea.Msg {
		return adminLoadedMsg{gen: gen, err: admin.Load(ctx)}
	}
}

// adminAction runs call and reports done on success
func (a *App) adminAction(done string, call func(context.Context) error) tea.Cmd {
	ctx, gen := a.ctx, a.gen
	return func() tea.Msg {
		err := call(ctx)
		return adminActionMsg{gen: gen, action: done, err: err}
	}
}

func (a *App) updateAdmin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.admin == nil {
		if msg.String() == "esc" {
			return a, a.navigate(ScreenExplorer)
		}
		return a, nil
	}
	if a.pending != nil {
		return a.updateConfirm(msg)
	}
	if a.searching {
		return a.updateSearch(msg, func() {
			a.admin.SetSearch(a.search.Value())
			a.adminPanel.Move(0)
		})
	}

	panel := a.adminPanel
	switch msg.String() {
	case "tab":
		panel.NextTab()
	case "up", "k":
		panel.Move(-1)
	case "down", "j":
		panel.Move(1)
	case "r":
		return a, a.reloadAdmin()
	case "/":
		if panel.Tab() == dashboard.TabUsers {
			a.searching = true
			return a, a.search.Focus()
		}
	case "esc":
		a.admin.DismissBanner()
	case "e":
		return a, a.exportUsers()
	case "b":
		if u, ok := panel.SelectedUser(); ok {
			a.admin.DismissBanner()
			if u.IsBanned {
				return a, a.adminAction("Utilisateur débanni", func(ctx context.Context) error { return a.admin.Unban(ctx, u.ID) })
			}
			return a, a.adminAction("Utilisateur banni", func(ctx context.Context) error { return a.admin.Ban(ctx, u.ID) })
		}
	case "a":
		if e, ok := panel.SelectedExperience(); ok {
			a.admin.DismissBanner()
			return a, a.adminAction("Expérience approuvée", func(ctx context.Context) error { return a.admin.Approve(ctx, e.ID) })
		}
	case "x":
		if e, ok := panel.SelectedExperience(); ok {
			a.admin.DismissBanner()
			return a, a.adminAction("Expérience rejetée", func(ctx context.Context) error { return a.admin.Reject(ctx, e.ID) })
		}
	case "d":
		if u, ok := panel.SelectedUser(); ok {
			a.pending = &pendingDelete{
				prompt: core.PromptDeleteUser + " (" + u.FullName() + ")",
				run:    func(ctx context.Context) (bool, error) { return a.admin.DeleteUser(ctx, u.ID) },
				done:   "Utilisateur supprimé",
			}
		} else if e, ok := panel.SelectedExperience(); ok {
			a.pending = &pendingDelete{
				prompt: fmt.Sprintf("%s (#%d)", core.PromptDeleteExperience, e.ID),
				run:    func(ctx context.Context) (bool, error) { return a.admin.DeleteExperience(ctx, e.ID) },
				done:   "Expérience supprimée",
			}
		}
	}
	return a, nil
}

func (a *App) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := a.pending
	switch msg.String() {
	case "y", "Y", "o", "O":
		a.pending = nil
		a.confirm.approved.Store(true)
		return a, a.adminAction(p.done, func(ctx context.Context) error {
			_, err := p.run(ctx)
			return err
		})
	case "n", "N", "esc":
		a.pending = nil
	}
	return a, nil
}

// exportUsers writes every loaded user to a dated CSV in the working
// directory
func (a *App) exportUsers() tea.Cmd {
	admin, gen := a.admin, a.gen
	path := core.ExportFilename(time.Now())
	return func() tea.Msg {
		if len(admin.Users().Data) == 0 {
			return exportDoneMsg{gen: gen, err: core.ErrNothingToExport}
		}
		f, err := os.Create(path)
		if err != nil {
			return exportDoneMsg{gen: gen, err: err}
		}
		err = admin.ExportCSV(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if abs, aerr := filepath.Abs(path); aerr == nil {
			path = abs
		}
		return exportDoneMsg{gen: gen, path: path, err: err}
	}
}

func (a *App) viewAdmin() string {
	if a.adminPanel == nil {
		return dashboard.LoginGate("Accès réservé aux administrateurs.", a.contentWidth())
	}
	var sb strings.Builder
	if a.searching || a.search.Value() != "" {
		sb.WriteString(a.search.View())
		sb.WriteString("\n")
	}
	sb.WriteString(a.adminPanel.View())
	if a.pending != nil {
		sb.WriteString("\n\n")
		sb.WriteString(styles.ActivePanel.Render(icons.Warning.String() + " " + a.pending.prompt + "\n" +
			styles.Help.Render("y confirmer • n annuler")))
	}
	return sb.String()
}

// Profile

func (a *App) loadProfile() tea.Cmd {
	if !a.state.LoggedIn {
		return nil
	}
	a.loading = true
	ctx, gen, sess := a.ctx, a.gen, a.sess
	return func() tea.Msg {
		return profileLoadedMsg{gen: gen, view: core.LoadProfile(ctx, a.api, sess)}
	}
}

func (a *App) updateProfile(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "e":
		a.profileEdit = a.profile.Profile != nil
		return a, a.navigate(ScreenProfileSetup)
	case "r":
		return a, a.navigate(ScreenProfile)
	}
	return a, nil
}
