// ABOUTME: Runs a form wizard inline on the terminal for one-shot commands
// ABOUTME: Also loads form answers from a YAML file for scripted use

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"gopkg.in/yaml.v3"

	"github.com/Rayanebsh/Pathwayfr/internal/form"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/wizard"
)

// errCancelled is returned when the user leaves a wizard
var errCancelled = fmt.Errorf("%w: cancelled", errUsage)

type wizardModel interface {
	tea.Model
	ID() int64
}

// wizardHost quits the program when its wizard finishes
type wizardHost struct {
	inner     wizardModel
	completed bool
}

func (h *wizardHost) Init() tea.Cmd {
	return h.inner.Init()
}

func (h *wizardHost) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case wizard.WizardCompleteMsg:
		if msg.ID == h.inner.ID() {
			h.completed = true
			return h, tea.Quit
		}
	case wizard.WizardCancelledMsg:
		if msg.ID == h.inner.ID() {
			return h, tea.Quit
		}
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return h, tea.Quit
		}
	}
	m, cmd := h.inner.Update(msg)
	if w, ok := m.(wizardModel); ok {
		h.inner = w
	}
	return h, cmd
}

func (h *wizardHost) View() string {
	if h.completed {
		return ""
	}
	return h.inner.View()
}

// runWizard blocks until the wizard is submitted or cancelled
func runWizard(ctx context.Context, w wizardModel) error {
	host := &wizardHost{inner: w}
	_, err := tea.NewProgram(host, tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return errCancelled
	}
	if err != nil {
		return err
	}
	if !host.completed {
		return errCancelled
	}
	return nil
}

// submit validates every step of ctrl at once and sends it
func submit[S any](ctx context.Context, ctrl *form.Controller[S]) error {
	if errs := ctrl.ValidateAll(); len(errs) > 0 {
		return errs
	}
	return ctrl.Submit(ctx)
}

// readYAML decodes path into v, rejecting unknown keys
func readYAML(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: failed to parse %s: %w", errUsage, path, err)
	}
	return nil
}
