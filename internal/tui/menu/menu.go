// ABOUTME: Start page menu and confirmation prompt for the command line
// ABOUTME: Lists the pages the session can open and asks before deletions

package menu

import (
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/huh"

	core "github.com/Rayanebsh/Pathwayfr/internal/dashboard"
	"github.com/Rayanebsh/Pathwayfr/internal/navbar"
	"github.com/Rayanebsh/Pathwayfr/internal/session"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/wizard"
)

// ErrProfileRequired is returned when the simulator is picked without an
// academic profile
var ErrProfileRequired = errors.New("the simulator needs an academic profile")

type option struct {
	label   string
	value   navbar.Target
	enabled bool
}

// Menu represents the start page selection menu
type Menu struct {
	options  []option
	selected navbar.Target
}

// New lists the pages st can open. Logout is not a page.
func New(st session.State) *Menu {
	m := &Menu{selected: navbar.Explorer}
	for _, l := range navbar.Links(st) {
		if l.Target == navbar.Logout {
			continue
		}
		enabled := true
		if l.Target == navbar.Simulator {
			enabled = core.SimulatorAccess(st) == core.AccessGranted
		}
		m.options = append(m.options, option{label: l.Label, value: l.Target, enabled: enabled})
	}
	return m
}

// Run displays the menu and returns the selected page
func (m *Menu) Run() (navbar.Target, error) {
	var options []huh.Option[navbar.Target]
	for _, opt := range m.options {
		label := opt.label
		if !opt.enabled {
			label += " (profil requis)"
		}
		options = append(options, huh.NewOption(label, opt.value))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[navbar.Target]().
				Title("Page de départ").
				Options(options...).
				Value(&m.selected),
		),
	).WithTheme(wizard.Theme())

	if err := form.Run(); err != nil {
		return "", err
	}
	return m.check()
}

func (m *Menu) check() (navbar.Target, error) {
	for _, opt := range m.options {
		if opt.value == m.selected && !opt.enabled {
			return "", ErrProfileRequired
		}
	}
	return m.selected, nil
}

// Prompt asks a yes/no question on the terminal before a destructive
// action. AssumeYes skips the question.
type Prompt struct {
	AssumeYes bool
	In        io.Reader
	Out       io.Writer
}

var _ core.Confirmer = Prompt{}

// Confirm implements core.Confirmer. A failed prompt counts as a refusal.
func (p Prompt) Confirm(question string) bool {
	if p.AssumeYes {
		return true
	}
	in, out := p.In, p.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stderr
	}

	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(question).
				Affirmative("Oui").
				Negative("Non").
				Value(&ok),
		),
	).WithTheme(wizard.Theme()).WithInput(in).WithOutput(out).Run()
	return err == nil && ok
}
