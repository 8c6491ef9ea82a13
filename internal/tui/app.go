// ABOUTME: Root bubbletea model for the TUI
// ABOUTME: Routes between pages, follows the session state and owns the frame

package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/Rayanebsh/Pathwayfr/internal/auth"
	"github.com/Rayanebsh/Pathwayfr/internal/client"
	core "github.com/Rayanebsh/Pathwayfr/internal/dashboard"
	"github.com/Rayanebsh/Pathwayfr/internal/form"
	"github.com/Rayanebsh/Pathwayfr/internal/navbar"
	"github.com/Rayanebsh/Pathwayfr/internal/session"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/dashboard"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/icons"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/styles"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/wizard"
)

// Screen represents the current page
type Screen int

const (
	ScreenExplorer Screen = iota
	ScreenSimulator
	ScreenShare
	ScreenMessaging
	ScreenAdmin
	ScreenProfile
	ScreenProfileSetup
	ScreenLogin
	ScreenRegister
)

// ScreenFor maps a navigation target to its page. Logout has no page.
func ScreenFor(t navbar.Target) (Screen, bool) {
	switch t {
	case navbar.Explorer:
		return ScreenExplorer, true
	case navbar.Simulator:
		return ScreenSimulator, true
	case navbar.Share:
		return ScreenShare, true
	case navbar.Messaging:
		return ScreenMessaging, true
	case navbar.Admin:
		return ScreenAdmin, true
	case navbar.Profile:
		return ScreenProfile, true
	case navbar.Login:
		return ScreenLogin, true
	case navbar.Register:
		return ScreenRegister, true
	default:
		return 0, false
	}
}

// target is the navbar entry a screen highlights
func (s Screen) target() navbar.Target {
	switch s {
	case ScreenSimulator:
		return navbar.Simulator
	case ScreenShare:
		return navbar.Share
	case ScreenMessaging:
		return navbar.Messaging
	case ScreenAdmin:
		return navbar.Admin
	case ScreenProfile, ScreenProfileSetup:
		return navbar.Profile
	case ScreenLogin:
		return navbar.Login
	case ScreenRegister:
		return navbar.Register
	default:
		return navbar.Explorer
	}
}

// API is the backend surface used by the TUI; *client.Client satisfies it
type API interface {
	auth.API
	core.AdminAPI
	core.ProfileAPI
	form.ProfileSaver
	form.ExperienceSharer
	catalogAPI
}

// Message types for async operations. Every page result carries the
// generation of the page that asked for it; results from a page the user
// already left are dropped.
type (
	stateMsg struct {
		state session.State
	}
	explorerLoadedMsg struct {
		gen   uint64
		cards []core.Card
		err   error
	}
	catalogLoadedMsg struct {
		gen     uint64
		catalog wizard.Catalog
		err     error
	}
	adminLoadedMsg struct {
		gen uint64
		err error
	}
	adminActionMsg struct {
		gen    uint64
		action string
		err    error
	}
	exportDoneMsg struct {
		gen  uint64
		path string
		err  error
	}
	profileLoadedMsg struct {
		gen  uint64
		view core.ProfileView
	}
	loginDoneMsg struct {
		gen uint64
		res *auth.LoginResult
		err error
	}
	registerDoneMsg struct {
		gen     uint64
		message string
		err     error
	}
	logoutDoneMsg struct{}
)

// App is the main TUI application model
type App struct {
	api    API
	auth   *auth.Service
	sess   *session.Store
	logger *slog.Logger

	screen Screen
	width  int
	height int

	state       session.State
	states      <-chan session.State
	unsubscribe func()

	// ctx is cancelled when the user leaves the page that created it
	ctx    context.Context
	cancel context.CancelFunc
	gen    uint64

	loading  bool
	err      error
	notice   string
	loadedAt time.Time

	search    textinput.Model
	searching bool

	// Explorer
	cards          []core.Card
	explorerCursor int

	// Admin
	admin      *core.Admin
	adminPanel *dashboard.Dashboard
	confirm    *keyConfirm
	pending    *pendingDelete

	// Profile
	profile     core.ProfileView
	profileEdit bool

	// Messaging
	messaging       *core.Messaging
	messagingCursor int
	composer        textinput.Model

	// Forms
	loginInput    auth.LoginInput
	loginForm     *huh.Form
	registerInput auth.RegisterInput
	registerForm  *huh.Form
	formErrors    form.FieldErrors
	shareWizard   *wizard.Wizard[form.Experience]
	profileWizard *wizard.Wizard[form.Profile]
}

// New creates the application on the explorer page
func New(api API, sess *session.Store) *App {
	search := textinput.New()
	search.Prompt = icons.Search.String() + " "
	search.Placeholder = "Rechercher"
	search.CharLimit = 80

	composer := textinput.New()
	composer.Prompt = "> "
	composer.Placeholder = "Écrire un message..."
	composer.CharLimit = 1000

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		api:       api,
		auth:      auth.New(api, sess),
		sess:      sess,
		logger:    slog.Default(),
		screen:    ScreenExplorer,
		width:     80,
		height:    24,
		ctx:       ctx,
		cancel:    cancel,
		search:    search,
		composer:  composer,
		confirm:   &keyConfirm{},
		messaging: core.NewMessaging(),
	}
	if sess != nil {
		a.state = sess.State()
	}
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.enter(a.screen)}
	if a.sess != nil {
		a.states, a.unsubscribe = a.sess.Subscribe()
		cmds = append(cmds, waitForState(a.states))
	}
	return tea.Batch(cmds...)
}

// waitForState delivers the next session snapshot; the app re-arms it after
// each one
func waitForState(ch <-chan session.State) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return nil
		}
		return stateMsg{state: st}
	}
}

// Start selects the first page before the program runs
func (a *App) Start(t navbar.Target) {
	if s, ok := ScreenFor(t); ok {
		a.screen = s
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.adminPanel != nil {
			a.adminPanel.SetSize(a.contentWidth(), a.contentHeight())
		}
		return a, a.forwardToWizard(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.shutdown()
			return a, tea.Quit
		}
		return a.handleKey(msg)

	case stateMsg:
		return a.handleState(msg.state)

	case logoutDoneMsg:
		a.refreshState()
		a.notice = auth.MsgLogoutDone
		return a, a.navigate(ScreenExplorer)

	case explorerLoadedMsg:
		if msg.gen != a.gen {
			return a, nil
		}
		a.loading = false
		if a.expired(msg.err) {
			return a, a.navigate(ScreenLogin)
		}
		a.err = msg.err
		a.cards = msg.cards
		a.loadedAt = time.Now()
		return a, nil

	case catalogLoadedMsg:
		return a.handleCatalog(msg)

	case adminLoadedMsg:
		if msg.gen != a.gen {
			return a, nil
		}
		a.loading = false
		a.loadedAt = time.Now()
		if a.expired(msg.err) {
			return a, a.navigate(ScreenLogin)
		}
		return a, nil

	case adminActionMsg:
		if msg.gen != a.gen {
			return a, nil
		}
		if a.expired(msg.err) {
			return a, a.navigate(ScreenLogin)
		}
		if msg.err == nil && msg.action != "" {
			a.notice = msg.action
		}
		return a, nil

	case exportDoneMsg:
		if msg.gen != a.gen {
			return a, nil
		}
		switch {
		case errors.Is(msg.err, core.ErrNothingToExport):
			a.notice = core.MsgNothingToExport
		case msg.err != nil:
			a.notice = "Échec de l'export"
			a.logger.Error("CSV export failed", "error", msg.err)
		default:
			a.notice = "Export enregistré : " + msg.path
		}
		return a, nil

	case profileLoadedMsg:
		if msg.gen != a.gen {
			return a, nil
		}
		a.loading = false
		if a.expired(msg.view.Err) {
			return a, a.navigate(ScreenLogin)
		}
		a.profile = msg.view
		a.loadedAt = time.Now()
		return a, nil

	case loginDoneMsg:
		return a.handleLogin(msg)

	case registerDoneMsg:
		return a.handleRegister(msg)

	case wizard.WizardCompleteMsg:
		return a.handleWizardComplete(msg)

	case wizard.WizardCancelledMsg:
		if a.ownsWizard(msg.ID) {
			return a, a.navigate(a.wizardExit())
		}
		return a, nil
	}

	// Everything else (mouse, wizard-internal and huh messages) goes to the
	// active form
	switch a.screen {
	case ScreenLogin, ScreenRegister:
		return a.updateAccountForm(msg)
	}
	return a, a.forwardToWizard(msg)
}

// handleState applies a new session snapshot and leaves pages the session
// no longer grants
func (a *App) handleState(st session.State) (tea.Model, tea.Cmd) {
	a.state = st
	next := waitForState(a.states)
	if s := a.guard(a.screen); s != a.screen {
		return a, tea.Batch(next, a.navigate(s))
	}
	return a, next
}

// expired reports a session expiry and prepares the login page for it
func (a *App) expired(err error) bool {
	if !errors.Is(err, client.ErrSessionExpired) {
		return false
	}
	a.notice = client.UserMessage(err)
	return true
}

// navigate leaves the current page and opens s
func (a *App) navigate(s Screen) tea.Cmd {
	a.screen = s
	return a.enter(s)
}

// enter resets per-page state, cancels the requests of the previous page
// and starts the loads of s
func (a *App) enter(s Screen) tea.Cmd {
	s = a.guard(s)
	a.screen = s
	if a.cancel != nil {
		a.cancel()
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())
	a.gen++
	a.err = nil
	a.loading = false
	a.searching = false
	a.search.Blur()
	a.search.SetValue("")
	a.composer.Blur()
	a.pending = nil
	a.formErrors = nil
	a.shareWizard = nil
	a.profileWizard = nil

	a.logger.Debug("Entering page", "screen", s.target(), "gen", a.gen)

	switch s {
	case ScreenExplorer:
		a.explorerCursor = 0
		return a.loadExplorer()
	case ScreenAdmin:
		return a.loadAdmin()
	case ScreenProfile:
		a.profile = core.CachedProfile(a.sess)
		return a.loadProfile()
	case ScreenProfileSetup:
		return a.startProfileWizard()
	case ScreenShare:
		if !a.state.LoggedIn {
			return nil
		}
		return a.loadCatalog()
	case ScreenLogin:
		return a.newLoginForm()
	case ScreenRegister:
		return a.newRegisterForm()
	}
	return nil
}

// guard redirects pages the session does not grant: account pages need a
// login, the admin page an admin account
func (a *App) guard(s Screen) Screen {
	switch s {
	case ScreenProfile, ScreenProfileSetup, ScreenAdmin:
		if !a.state.LoggedIn {
			return ScreenLogin
		}
		if s == ScreenAdmin && !a.state.Admin() {
			return ScreenExplorer
		}
	}
	return s
}

// shutdown cancels in-flight requests and drops the session subscription
func (a *App) shutdown() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

// capturing reports whether keys go to a text field rather than to the
// global shortcuts
func (a *App) capturing() bool {
	switch a.screen {
	case ScreenLogin:
		return a.loginForm != nil
	case ScreenRegister:
		return a.registerForm != nil
	case ScreenShare:
		return a.shareWizard != nil
	case ScreenProfileSetup:
		return a.profileWizard != nil
	}
	return a.searching || a.composer.Focused() || a.pending != nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !a.capturing() {
		key := msg.String()
		if key == "q" {
			a.shutdown()
			return a, tea.Quit
		}
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			return a, a.follow(int(key[0] - '1'))
		}
		if a.notice != "" && key == "esc" {
			a.notice = ""
			return a, nil
		}
	}

	switch a.screen {
	case ScreenExplorer:
		return a.updateExplorer(msg)
	case ScreenSimulator:
		return a.updateSimulator(msg)
	case ScreenMessaging:
		return a.updateMessaging(msg)
	case ScreenAdmin:
		return a.updateAdmin(msg)
	case ScreenProfile:
		return a.updateProfile(msg)
	case ScreenLogin, ScreenRegister:
		return a.updateAccountForm(msg)
	case ScreenShare:
		if !a.state.LoggedIn {
			return a.updateGate(msg)
		}
	}
	return a, a.forwardToWizard(msg)
}

// follow opens the i-th link of the navigation bar
func (a *App) follow(i int) tea.Cmd {
	links := navbar.Links(a.state)
	if i < 0 || i >= len(links) {
		return nil
	}
	if links[i].Target == navbar.Logout {
		return a.logout()
	}
	s, _ := ScreenFor(links[i].Target)
	return a.navigate(s)
}

func (a *App) logout() tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		if err := a.auth.Logout(ctx); err != nil {
			slog.Warn("Clearing session failed", "error", err)
		}
		return logoutDoneMsg{}
	}
}

// View implements tea.Model
func (a *App) View() string {
	var content string
	switch a.screen {
	case ScreenExplorer:
		content = a.viewExplorer()
	case ScreenSimulator:
		content = dashboard.Simulator(a.state, a.contentWidth())
	case ScreenShare:
		content = a.viewShare()
	case ScreenMessaging:
		content = a.viewMessaging()
	case ScreenAdmin:
		content = a.viewAdmin()
	case ScreenProfile:
		content = dashboard.Profile(a.profile, a.loading, a.contentWidth())
	case ScreenProfileSetup:
		content = a.viewProfileWizard()
	case ScreenLogin, ScreenRegister:
		content = a.viewAccountForm()
	}
	return a.wrapWithFrame(content)
}

// Layout constants
const (
	minTerminalWidth = 80
	framePadding     = 2
)

// frameWidth is the outer width; one column is kept free to avoid wrapping
// on terminals that wrap at the last cell
func (a *App) frameWidth() int {
	return max(a.width-1, minTerminalWidth)
}

func (a *App) contentWidth() int {
	return a.frameWidth() - framePadding
}

func (a *App) contentHeight() int {
	return max(a.height-4, 10)
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(lipgloss.NewStyle().PaddingLeft(1).Render(content))
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// renderHeader renders the navigation bar: numbered links on the left, the
// greeting on the right. Links shrink to their numbers when space runs out.
func (a *App) renderHeader() string {
	width := a.frameWidth()
	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)

	title := icons.App.String() + " PathwayFR"
	links := navbar.Links(a.state)
	active := a.screen.target()
	greeting := navbar.Greeting(a.state)
	if a.state.Premium() {
		greeting = icons.Crown.String() + " " + greeting
	}

	// "╭─ " + title + " " + links + " " + fill + " " + greeting + " ─╮"
	chrome := 3 + 1 + 1 + 3
	fits := func(linkText, right string) bool {
		used := chrome + lipgloss.Width(title) + lipgloss.Width(linkText)
		if right != "" {
			used += lipgloss.Width(right) + 1
		}
		return used <= width
	}

	full := func(l navbar.Link) string { return l.Label }
	short := func(l navbar.Link) string {
		if l.Target == active {
			return l.Label
		}
		return ""
	}
	render := func(label func(navbar.Link) string, styled bool) string {
		var parts []string
		for i, l := range links {
			text := fmt.Sprintf("%d", i+1)
			if lbl := label(l); lbl != "" {
				text += " " + lbl
			}
			if !styled {
				parts = append(parts, text)
				continue
			}
			if l.Target == active {
				parts = append(parts, styles.NavActive.Render(text))
			} else {
				parts = append(parts, styles.NavLink.Render(text))
			}
		}
		return strings.Join(parts, " ")
	}

	label := full
	switch {
	case fits(render(full, true), greeting):
	case fits(render(short, true), greeting):
		label = short
	case fits(render(full, true), ""):
		greeting = ""
	default:
		label = short
		greeting = ""
	}
	linkText := render(label, true)

	right := ""
	if greeting != "" {
		right = " " + greeting
	}
	fill := max(0, width-chrome-lipgloss.Width(title)-lipgloss.Width(linkText)-lipgloss.Width(right))
	header := "╭─ " + titleStyle.Render(title) + " " + linkText + " " +
		borderStyle.Render(strings.Repeat("─", fill)) + right + " ─╮"
	return borderStyle.Render(header)
}

// renderFooter renders the page shortcuts and the status on the right
func (a *App) renderFooter() string {
	width := a.frameWidth()
	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)

	status := a.statusText()
	statusStyle := styles.Help
	if a.notice != "" {
		statusStyle = styles.StatusWarning
	}

	shortcuts := a.shortcuts()
	// "╰─ " + shortcuts + " " + fill + " " + status + " ─╯"
	room := width - 6
	if status != "" {
		room -= lipgloss.Width(status) + 2
	}
	if lipgloss.Width(shortcuts) > room {
		shortcuts = truncateRunes(shortcuts, max(room, 0))
	}

	left := " " + styles.Help.Render(shortcuts) + " "
	right := ""
	if status != "" {
		right = " " + statusStyle.Render(status) + " "
	}
	fill := max(0, width-4-lipgloss.Width(left)-lipgloss.Width(right))
	return borderStyle.Render("╰─" + left + strings.Repeat("─", fill) + right + "─╯")
}

func (a *App) statusText() string {
	switch {
	case a.notice != "":
		return truncateRunes(a.notice, a.frameWidth()/2)
	case a.loading:
		return "Chargement..."
	case !a.loadedAt.IsZero():
		return "Actualisé " + core.RelTime(a.loadedAt, time.Now())
	}
	return ""
}

func (a *App) shortcuts() string {
	switch a.screen {
	case ScreenExplorer:
		return "1-9 pages • ↑/↓ parcourir • / rechercher • r actualiser • q quitter"
	case ScreenAdmin:
		if a.pending != nil {
			return "y confirmer • n annuler"
		}
		return "tab section • b bannir • a/x valider/rejeter • d supprimer • e export • / rechercher"
	case ScreenProfile:
		return "1-9 pages • e modifier • r actualiser • q quitter"
	case ScreenMessaging:
		return "↑/↓ conversation • i écrire • / rechercher • q quitter"
	case ScreenSimulator:
		return "1-9 pages • c connexion • p profil • q quitter"
	case ScreenLogin, ScreenRegister:
		return "tab champ suivant • enter valider • ctrl+n changer • esc retour"
	case ScreenShare, ScreenProfileSetup:
		return "enter continuer • ctrl+b retour • esc annuler"
	}
	return "q quitter"
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// Run starts the TUI on the start page and blocks until the user quits
func Run(ctx context.Context, api API, sess *session.Store, start navbar.Target) error {
	app := New(api, sess)
	app.Start(start)
	defer app.shutdown()

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
