// ABOUTME: Tests for the form wizard
// ABOUTME: Validates step flow, submit outcomes, progress rendering and the targets page

package wizard

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Rayanebsh/Pathwayfr/internal/client"
	"github.com/Rayanebsh/Pathwayfr/internal/form"
	"github.com/Rayanebsh/Pathwayfr/internal/model"
	"github.com/Rayanebsh/Pathwayfr/internal/picker"
)

type account struct {
	Name string
}

// stubPage completes on enter
type stubPage struct {
	step int
	done bool
}

func (p *stubPage) Init() tea.Cmd { return nil }
func (p *stubPage) View() string  { return "page" }
func (p *stubPage) Done() bool    { return p.done }

func (p *stubPage) Update(msg tea.Msg) (Page, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEnter {
		p.done = true
	}
	return p, nil
}

func newAccountWizard(submit form.SubmitFunc[account]) *Wizard[account] {
	ctrl := form.NewController(
		func() account { return account{} },
		[]form.Step[account]{
			{Title: "Nom", Validate: func(a *account) form.FieldErrors {
				if a.Name == "" {
					return form.FieldErrors{"name": "Le nom est requis"}
				}
				return nil
			}},
			{Title: "Confirmation"},
		},
		submit,
	)
	return New(context.Background(), "Compte", ctrl, func(step int, _ *account) Page {
		return &stubPage{step: step}
	})
}

func send(w *Wizard[account], msg tea.Msg) tea.Cmd {
	_, cmd := w.Update(msg)
	return cmd
}

func enter() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyEnter}
}

func TestWizardStaysOnInvalidStep(t *testing.T) {
	w := newAccountWizard(func(context.Context, account) error { return nil })

	send(w, enter())

	if w.ctrl.Step() != 1 {
		t.Fatalf("expected to stay on step 1, got %d", w.ctrl.Step())
	}
	if !strings.Contains(w.View(), "Le nom est requis") {
		t.Error("expected the field error in the view")
	}
	if w.page.Done() {
		t.Error("expected a fresh page after a failed validation")
	}
}

func TestWizardSubmitsAfterLastStep(t *testing.T) {
	var got account
	w := newAccountWizard(func(_ context.Context, a account) error {
		got = a
		return nil
	})
	w.ctrl.State().Name = "Amel"

	send(w, enter())
	if w.ctrl.Step() != 2 {
		t.Fatalf("expected step 2, got %d", w.ctrl.Step())
	}

	cmd := send(w, enter())
	if !w.Submitting() || cmd == nil {
		t.Fatal("expected a submit in flight")
	}
	if !strings.Contains(w.View(), "Envoi en cours") {
		t.Error("expected the pending notice")
	}

	done := send(w, cmd())
	if got.Name != "Amel" {
		t.Errorf("expected the snapshot to be submitted, got %+v", got)
	}
	msg, ok := done().(WizardCompleteMsg)
	if !ok || msg.ID != w.ID() {
		t.Fatalf("expected WizardCompleteMsg for this wizard, got %#v", msg)
	}
	if w.ctrl.Phase() != form.Submitted {
		t.Errorf("expected Submitted, got %s", w.ctrl.Phase())
	}
}

func TestWizardPreviousKeepsValues(t *testing.T) {
	w := newAccountWizard(func(context.Context, account) error { return nil })
	w.ctrl.State().Name = "Amel"
	send(w, enter())

	send(w, tea.KeyMsg{Type: tea.KeyCtrlB})

	if w.ctrl.Step() != 1 {
		t.Errorf("expected step 1, got %d", w.ctrl.Step())
	}
	if w.ctrl.State().Name != "Amel" {
		t.Error("expected values kept when going back")
	}
}

func TestWizardFailureCanBeRetried(t *testing.T) {
	calls := 0
	w := newAccountWizard(func(context.Context, account) error {
		calls++
		if calls == 1 {
			return &client.APIError{StatusCode: 500, Message: "Erreur serveur"}
		}
		return nil
	})
	w.ctrl.State().Name = "Amel"
	send(w, enter())
	cmd := send(w, enter())
	send(w, cmd())

	if w.ctrl.Phase() != form.Failed {
		t.Fatalf("expected Failed, got %s", w.ctrl.Phase())
	}
	if !strings.Contains(w.View(), "Erreur serveur") {
		t.Error("expected the backend message in the view")
	}
	if w.ctrl.State().Name != "Amel" {
		t.Error("expected the state kept after a failure")
	}

	retry := send(w, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	send(w, retry())
	if calls != 2 || w.ctrl.Phase() != form.Submitted {
		t.Errorf("expected a successful retry, calls=%d phase=%s", calls, w.ctrl.Phase())
	}
}

func TestWizardIgnoresOtherWizardsResults(t *testing.T) {
	w := newAccountWizard(func(context.Context, account) error { return nil })
	if cmd := send(w, submittedMsg{id: w.ID() + 100, err: errors.New("boom")}); cmd != nil {
		t.Error("expected no command for a foreign result")
	}
	if w.ctrl.Phase() != form.Editing {
		t.Errorf("expected Editing, got %s", w.ctrl.Phase())
	}
}

func TestWizardEscCancels(t *testing.T) {
	w := newAccountWizard(func(context.Context, account) error { return nil })
	cmd := send(w, tea.KeyMsg{Type: tea.KeyEsc})
	if msg, ok := cmd().(WizardCancelledMsg); !ok || msg.ID != w.ID() {
		t.Errorf("expected WizardCancelledMsg, got %#v", msg)
	}
}

func TestProgressBoxFitsWidth(t *testing.T) {
	for _, width := range []int{61, 80, 120} {
		w := newAccountWizard(func(context.Context, account) error { return nil })
		w.SetWidth(width)
		for i, line := range strings.Split(w.renderProgress(), "\n") {
			if got := lipgloss.Width(line); got != width-1 {
				t.Errorf("width %d: line %d is %d cells wide", width, i, got)
			}
		}
	}
}

func TestCheckAverageAndTCF(t *testing.T) {
	tests := []struct {
		check   func(string) error
		input   string
		wantErr bool
	}{
		{checkAverage, "", false},
		{checkAverage, "14,5", false},
		{checkAverage, "21", true},
		{checkAverage, "abc", true},
		{checkTCF, "", false},
		{checkTCF, "450", false},
		{checkTCF, "700", true},
	}
	for _, tc := range tests {
		if err := tc.check(tc.input); (err != nil) != tc.wantErr {
			t.Errorf("input %q: got err %v, wantErr %v", tc.input, err, tc.wantErr)
		}
	}
}

func TestCatalogFrom(t *testing.T) {
	c := CatalogFrom(
		[]model.University{{ID: 1, Name: "Université de Lille", City: "Lille"}, {ID: 2, Name: "Sciences Po"}},
		[]model.Speciality{{ID: 9, Name: "Informatique"}},
	)
	want := []picker.Option{{ID: 1, Label: "Université de Lille (Lille)"}, {ID: 2, Label: "Sciences Po"}}
	if !slices.Equal(c.Universities, want) {
		t.Errorf("unexpected universities %v", c.Universities)
	}
	if len(c.Specialities) != 1 || c.Specialities[0].Label != "Informatique" {
		t.Errorf("unexpected specialities %v", c.Specialities)
	}
}

func keys(p Page, names ...string) Page {
	for _, n := range names {
		var msg tea.KeyMsg
		switch n {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		case "j":
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
		}
		p, _ = p.Update(msg)
	}
	return p
}

func TestTargetsPageFillsExperience(t *testing.T) {
	e := form.NewExperience()
	e.SetStudyYear(model.StudyTerminale)
	e.SetCandidatureYear(1)
	catalog := Catalog{
		Universities: []picker.Option{{ID: 1, Label: "Lille"}, {ID: 2, Label: "Paris 1"}, {ID: 3, Label: "Lyon 2"}, {ID: 4, Label: "Nantes"}},
		Specialities: []picker.Option{{ID: 9, Label: "Informatique"}},
	}
	var p Page = NewTargetsPage(&e, catalog)

	// speciality, then three universities and a refused fourth (cap of 3)
	p = keys(p, "enter", "space", "esc", "tab",
		"enter", "space", "j", "space", "j", "space", "j", "space", "esc")
	if !slices.Equal(e.Specialities, []int{9}) {
		t.Errorf("expected speciality 9, got %v", e.Specialities)
	}
	if !slices.Equal(e.Universities, []int{1, 2, 3}) {
		t.Errorf("expected the first three universities, got %v", e.Universities)
	}

	// accept Lille, then refuse the first one offered, which cannot be Lille
	p = keys(p, "tab", "enter", "space", "esc", "tab", "enter", "space", "esc")
	if !slices.Equal(e.Outcomes.Accepted, []int{1}) || !slices.Equal(e.Outcomes.Rejected, []int{2}) {
		t.Errorf("unexpected outcomes %+v", e.Outcomes)
	}

	p = keys(p, "tab", "enter")
	if !p.Done() {
		t.Error("expected the continue button to finish the page")
	}
	if errs := form.ValidateTargets(&e); len(errs) > 0 {
		t.Errorf("expected a valid step, got %v", errs)
	}
}

func TestTargetsPageRemovingUniversityPrunesOutcomes(t *testing.T) {
	e := form.NewExperience()
	e.SetStudyYear(model.StudyL2)
	e.SetCandidatureYear(2)
	catalog := Catalog{Universities: []picker.Option{{ID: 1, Label: "Lille"}, {ID: 2, Label: "Paris 1"}}}
	var p Page = NewTargetsPage(&e, catalog)

	p = keys(p, "tab", "enter", "space", "j", "space", "esc",
		"tab", "enter", "space", "esc")
	if !slices.Equal(e.Outcomes.Accepted, []int{1}) {
		t.Fatalf("expected Lille accepted, got %v", e.Outcomes.Accepted)
	}

	// back to universities, then untick Lille
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	keys(p, "enter", "space", "esc")

	if !slices.Equal(e.Universities, []int{2}) {
		t.Errorf("expected Paris 1 only, got %v", e.Universities)
	}
	if len(e.Outcomes.Accepted) != 0 {
		t.Errorf("expected outcomes pruned, got %v", e.Outcomes.Accepted)
	}
}
