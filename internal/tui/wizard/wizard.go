// ABOUTME: Multi-step form wizard as a bubbletea model
// ABOUTME: Drives a form.Controller with one huh form or custom page per step and a progress box

package wizard

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/Rayanebsh/Pathwayfr/internal/client"
	"github.com/Rayanebsh/Pathwayfr/internal/form"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/icons"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/styles"
)

// WizardCompleteMsg is sent when the submit succeeded
type WizardCompleteMsg struct {
	ID int64
}

// WizardCancelledMsg is sent when the wizard is cancelled
type WizardCancelledMsg struct {
	ID int64
}

// submittedMsg carries the submit outcome back to the wizard that sent it
type submittedMsg struct {
	id  int64
	err error
}

var lastID atomic.Int64

// Page is the view of one step
type Page interface {
	Init() tea.Cmd
	Update(tea.Msg) (Page, tea.Cmd)
	View() string
	// Done reports that the user asked to continue
	Done() bool
}

// capturer is implemented by pages that sometimes need esc for themselves
type capturer interface {
	Capturing() bool
}

// PageFunc builds the page of a 1-based step over the controller's state
type PageFunc[S any] func(step int, state *S) Page

// Wizard runs a controller step by step. Each step's page writes straight
// into the controller's state; leaving a page runs the step validation.
type Wizard[S any] struct {
	id    int64
	title string
	ctx   context.Context
	ctrl  *form.Controller[S]
	pages PageFunc[S]
	page  Page
	width int
	// top is the screen row of the wizard's first line
	top int

	submitting bool
	done       bool
}

// New creates a wizard on the controller's current step. ctx bounds the
// submit request and is normally the owning screen's context.
func New[S any](ctx context.Context, title string, ctrl *form.Controller[S], pages PageFunc[S]) *Wizard[S] {
	w := &Wizard[S]{
		id:    lastID.Add(1),
		title: title,
		ctx:   ctx,
		ctrl:  ctrl,
		pages: pages,
		width: 80,
	}
	w.page = pages(ctrl.Step(), ctrl.State())
	return w
}

// ID identifies the wizard in the messages it sends
func (w *Wizard[S]) ID() int64 {
	return w.id
}

// Controller returns the driven controller
func (w *Wizard[S]) Controller() *form.Controller[S] {
	return w.ctrl
}

// Submitting reports whether a submit is in flight
func (w *Wizard[S]) Submitting() bool {
	return w.submitting
}

// Init implements tea.Model
func (w *Wizard[S]) Init() tea.Cmd {
	return w.page.Init()
}

// Update implements tea.Model
func (w *Wizard[S]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case submittedMsg:
		if msg.id != w.id {
			return w, nil
		}
		w.submitting = false
		w.ctrl.Complete(msg.err)
		if msg.err != nil {
			return w, nil
		}
		w.done = true
		id := w.id
		return w, func() tea.Msg { return WizardCompleteMsg{ID: id} }

	case tea.WindowSizeMsg:
		w.width = msg.Width
		var cmd tea.Cmd
		w.page, cmd = w.page.Update(msg)
		return w, cmd

	case tea.MouseMsg:
		msg.Y -= w.pageTop()
		var cmd tea.Cmd
		w.page, cmd = w.page.Update(msg)
		return w, cmd

	case tea.KeyMsg:
		if w.submitting || w.done {
			return w, nil
		}
		if w.ctrl.Phase() == form.Failed {
			return w.updateFailed(msg)
		}
		if c, ok := w.page.(capturer); ok && c.Capturing() {
			break
		}
		switch msg.String() {
		case "esc":
			id := w.id
			return w, func() tea.Msg { return WizardCancelledMsg{ID: id} }
		case "ctrl+b":
			if w.ctrl.Step() > 1 {
				w.ctrl.Previous()
				return w, w.rebuild()
			}
			return w, nil
		}
	}

	var cmd tea.Cmd
	w.page, cmd = w.page.Update(msg)
	if w.page.Done() {
		return w.advanceStep()
	}
	return w, cmd
}

func (w *Wizard[S]) updateFailed(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r", "enter":
		return w, w.submit()
	case "e":
		w.ctrl.Previous()
		return w, w.rebuild()
	case "esc":
		id := w.id
		return w, func() tea.Msg { return WizardCancelledMsg{ID: id} }
	}
	return w, nil
}

func (w *Wizard[S]) advanceStep() (tea.Model, tea.Cmd) {
	ready, err := w.ctrl.Advance()
	if err != nil {
		// Stay on the step; the page is rebuilt with the kept values and
		// the errors shown above it
		return w, w.rebuild()
	}
	if !ready {
		return w, w.rebuild()
	}
	return w, w.submit()
}

func (w *Wizard[S]) rebuild() tea.Cmd {
	w.page = w.pages(w.ctrl.Step(), w.ctrl.State())
	return w.page.Init()
}

// submit runs the controller's submit function on a snapshot so that the
// state is not shared with the request goroutine
func (w *Wizard[S]) submit() tea.Cmd {
	w.submitting = true
	ctx, id, state, send := w.ctx, w.id, w.ctrl.Snapshot(), w.ctrl.Submitter()
	return func() tea.Msg {
		return submittedMsg{id: id, err: send(ctx, state)}
	}
}

// SetTop records the screen row the wizard is drawn from, so that mouse
// positions can be made relative to the page
func (w *Wizard[S]) SetTop(row int) {
	w.top = row
}

// pageTop is the screen row of the page's first line
func (w *Wizard[S]) pageTop() int {
	top := w.top + lipgloss.Height(w.renderProgress()) + 1
	if errs := w.ctrl.Errors(); len(errs) > 0 {
		top += lipgloss.Height(RenderErrors(errs))
	}
	return top
}

// SetWidth sets the wizard width for proper rendering
func (w *Wizard[S]) SetWidth(width int) {
	w.width = width
}

// View implements tea.Model
func (w *Wizard[S]) View() string {
	var sb strings.Builder

	sb.WriteString(w.renderProgress())
	sb.WriteString("\n\n")

	switch {
	case w.submitting:
		sb.WriteString(styles.StatusWarning.Render("Envoi en cours..."))
	case w.ctrl.Phase() == form.Failed:
		sb.WriteString(styles.StatusCritical.Render(icons.Critical.String() + " " + client.UserMessage(w.ctrl.Err())))
		sb.WriteString("\n\n")
		sb.WriteString(styles.Help.Render("r réessayer • e modifier • esc annuler"))
	case w.done:
		sb.WriteString(styles.StatusOK.Render(icons.CheckOK.String() + " Enregistré"))
	default:
		if errs := w.ctrl.Errors(); len(errs) > 0 {
			sb.WriteString(RenderErrors(errs))
			sb.WriteString("\n")
		}
		sb.WriteString(w.page.View())
		sb.WriteString("\n")
		sb.WriteString(styles.Help.Render("enter continuer • ctrl+b étape précédente • esc annuler"))
	}
	return sb.String()
}

// RenderErrors lists field errors in a stable order
func RenderErrors(errs form.FieldErrors) string {
	var lines []string
	for _, k := range slices.Sorted(maps.Keys(errs)) {
		lines = append(lines, styles.ErrorText.Render("• "+errs[k]))
	}
	return strings.Join(lines, "\n")
}

// renderProgress renders the step progress indicator
func (w *Wizard[S]) renderProgress() string {
	width := max(w.width-1, 60)

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary)

	current := w.ctrl.Step()
	total := w.ctrl.Steps()

	var steps []string
	for i, name := range w.ctrl.Titles() {
		stepNum := i + 1
		var indicator string
		var nameStyle lipgloss.Style

		switch {
		case stepNum < current || w.done:
			indicator = lipgloss.NewStyle().Foreground(styles.Secondary).Render(icons.CheckOK.String())
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		case stepNum == current:
			indicator = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render("●")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
		default:
			indicator = lipgloss.NewStyle().Foreground(styles.Muted).Render("○")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		}
		steps = append(steps, fmt.Sprintf("%s %s", indicator, nameStyle.Render(name)))
	}
	stepsLine := strings.Join(steps, "    ")

	// "│  " + bar + " │" is 5 cells of chrome
	barWidth := width - 5
	filledWidth := (current * barWidth) / max(total, 1)
	emptyWidth := barWidth - filledWidth
	progressBar := lipgloss.NewStyle().Foreground(styles.Primary).Render(strings.Repeat("━", filledWidth)) +
		lipgloss.NewStyle().Foreground(styles.Surface).Render(strings.Repeat("─", emptyWidth))

	title := fmt.Sprintf("%s · Étape %d/%d", w.title, current, total)
	topFillWidth := max(0, width-5-lipgloss.Width(title))
	topBorder := "┌─ " + titleStyle.Render(title) + " " + strings.Repeat("─", topFillWidth) + "┐"

	stepsPadding := max(0, width-4-lipgloss.Width(stepsLine))
	stepsLinePadded := "│ " + stepsLine + strings.Repeat(" ", stepsPadding) + " │"

	progressLinePadded := "│  " + progressBar + " │"
	bottomBorder := "└" + strings.Repeat("─", width-2) + "┘"

	return borderStyle.Render(strings.Join([]string{
		topBorder,
		stepsLinePadded,
		progressLinePadded,
		bottomBorder,
	}, "\n"))
}

// formPage adapts a huh form to Page
type formPage struct {
	form *huh.Form
}

// FormPage wraps a huh form themed for the wizard
func FormPage(f *huh.Form) Page {
	return &formPage{form: f.WithTheme(Theme()).WithShowHelp(false)}
}

func (p *formPage) Init() tea.Cmd {
	return p.form.Init()
}

func (p *formPage) Update(msg tea.Msg) (Page, tea.Cmd) {
	m, cmd := p.form.Update(msg)
	if f, ok := m.(*huh.Form); ok {
		p.form = f
	}
	return p, cmd
}

func (p *formPage) View() string {
	return p.form.View()
}

func (p *formPage) Done() bool {
	return p.form.State == huh.StateCompleted
}

func checkAverage(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	_, err := form.ParseAverage(s)
	return err
}

func checkTCF(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	_, err := form.ParseTCF(s)
	return err
}
