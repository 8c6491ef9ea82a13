// ABOUTME: Login and registration pages built on huh forms
// ABOUTME: Submits through the auth service and routes by the login destination

package tui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/Rayanebsh/Pathwayfr/internal/auth"
	"github.com/Rayanebsh/Pathwayfr/internal/client"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/icons"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/styles"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/widgets"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/wizard"
)

func (a *App) newLoginForm() tea.Cmd {
	a.loginForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("prenom.nom@exemple.fr").
				Value(&a.loginInput.Email),
			huh.NewInput().
				Title("Mot de passe").
				EchoMode(huh.EchoModePassword).
				Value(&a.loginInput.Password),
		),
	).WithTheme(wizard.Theme()).WithShowHelp(false)
	return a.loginForm.Init()
}

func (a *App) newRegisterForm() tea.Cmd {
	a.registerForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Prénom").
				Value(&a.registerInput.FirstName),
			huh.NewInput().
				Title("Nom").
				Value(&a.registerInput.LastName),
			huh.NewInput().
				Title("Email").
				Value(&a.registerInput.Email),
			huh.NewInput().
				Title("Mot de passe").
				Description("6 caractères minimum").
				EchoMode(huh.EchoModePassword).
				Value(&a.registerInput.Password),
		),
	).WithTheme(wizard.Theme()).WithShowHelp(false)
	return a.registerForm.Init()
}

// updateAccountForm drives the login or registration form and submits it
// once completed
func (a *App) updateAccountForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			return a, a.navigate(ScreenExplorer)
		case "ctrl+n":
			if a.screen == ScreenLogin {
				return a, a.navigate(ScreenRegister)
			}
			return a, a.navigate(ScreenLogin)
		}
	}

	f := a.loginForm
	if a.screen == ScreenRegister {
		f = a.registerForm
	}
	if f == nil {
		return a, nil
	}

	m, cmd := f.Update(msg)
	if updated, ok := m.(*huh.Form); ok {
		f = updated
	}
	if a.screen == ScreenLogin {
		a.loginForm = f
	} else {
		a.registerForm = f
	}
	if f.State != huh.StateCompleted {
		return a, cmd
	}

	a.loading = true
	a.err = nil
	a.formErrors = nil
	ctx, gen := a.ctx, a.gen
	if a.screen == ScreenLogin {
		a.loginForm = nil
		in := a.loginInput
		return a, func() tea.Msg {
			res, err := a.auth.Login(ctx, in)
			return loginDoneMsg{gen: gen, res: res, err: err}
		}
	}
	a.registerForm = nil
	in := a.registerInput
	return a, func() tea.Msg {
		message, err := a.auth.Register(ctx, in)
		return registerDoneMsg{gen: gen, message: message, err: err}
	}
}

// formFailed records a submit error and reopens the form with the values
// already typed
func (a *App) formFailed(err error, reopen func() tea.Cmd) tea.Cmd {
	var verr *auth.ValidationError
	if errors.As(err, &verr) {
		a.formErrors = verr.Fields
	} else {
		a.err = err
	}
	return reopen()
}

func (a *App) handleLogin(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	if msg.gen != a.gen {
		return a, nil
	}
	a.loading = false
	if msg.err != nil {
		a.loginInput.Password = ""
		return a, a.formFailed(msg.err, a.newLoginForm)
	}

	a.loginInput = auth.LoginInput{}
	a.refreshState()
	if msg.res.User != nil && msg.res.User.FirstName != "" {
		a.notice = "Bienvenue, " + msg.res.User.FirstName
	}
	if msg.res.Next == auth.DestExplorer {
		return a, a.navigate(ScreenExplorer)
	}
	a.profileEdit = false
	return a, a.navigate(ScreenProfileSetup)
}

func (a *App) handleRegister(msg registerDoneMsg) (tea.Model, tea.Cmd) {
	if msg.gen != a.gen {
		return a, nil
	}
	a.loading = false
	if msg.err != nil {
		return a, a.formFailed(msg.err, a.newRegisterForm)
	}

	a.notice = msg.message
	if strings.TrimSpace(a.notice) == "" {
		a.notice = "Compte créé, vous pouvez vous connecter"
	}
	a.loginInput = auth.LoginInput{Email: a.registerInput.Email}
	a.registerInput = auth.RegisterInput{}
	return a, a.navigate(ScreenLogin)
}

// refreshState reads the session now rather than waiting for the next
// published snapshot
func (a *App) refreshState() {
	if a.sess != nil {
		a.state = a.sess.State()
	}
}

func (a *App) viewAccountForm() string {
	title := icons.Login.String() + " Connexion"
	f := a.loginForm
	pending := "Connexion en cours..."
	if a.screen == ScreenRegister {
		title = icons.Profile.String() + " Inscription"
		f = a.registerForm
		pending = "Création du compte..."
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render(title))
	sb.WriteString("\n")
	if len(a.formErrors) > 0 {
		sb.WriteString(wizard.RenderErrors(a.formErrors))
		sb.WriteString("\n\n")
	}
	if a.err != nil {
		sb.WriteString(widgets.StatusText(client.UserMessage(a.err), widgets.StatusCritical))
		sb.WriteString("\n\n")
	}
	switch {
	case a.loading:
		sb.WriteString(styles.StatusWarning.Render(pending))
	case f != nil:
		sb.WriteString(f.View())
	}
	sb.WriteString("\n")
	other := "ctrl+n créer un compte"
	if a.screen == ScreenRegister {
		other = "ctrl+n j'ai déjà un compte"
	}
	sb.WriteString(styles.Help.Render(other))
	return sb.String()
}
