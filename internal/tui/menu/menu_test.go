// ABOUTME: Tests for the start page menu
// ABOUTME: Validates the listed pages and the simulator restriction

package menu

import (
	"errors"
	"testing"

	"github.com/Rayanebsh/Pathwayfr/internal/model"
	"github.com/Rayanebsh/Pathwayfr/internal/navbar"
	"github.com/Rayanebsh/Pathwayfr/internal/session"
)

func labels(m *Menu) []string {
	var out []string
	for _, o := range m.options {
		out = append(out, o.label)
	}
	return out
}

func TestMenuGuestOptions(t *testing.T) {
	m := New(session.State{})

	got := labels(m)
	want := []string{"Explorer", "Partager", "Connexion", "Inscription"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("option %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestMenuSkipsLogout(t *testing.T) {
	m := New(session.State{LoggedIn: true, User: &model.UserSummary{Role: model.RoleAdmin}})

	for _, o := range m.options {
		if o.value == navbar.Logout {
			t.Error("expected no logout entry")
		}
	}
	if m.options[len(m.options)-1].value != navbar.Profile {
		t.Errorf("expected the profile last, got %q", m.options[len(m.options)-1].value)
	}
}

func TestMenuSimulatorNeedsProfile(t *testing.T) {
	st := session.State{LoggedIn: true, User: &model.UserSummary{}}
	m := New(st)
	m.selected = navbar.Simulator

	if _, err := m.check(); !errors.Is(err, ErrProfileRequired) {
		t.Errorf("expected ErrProfileRequired, got %v", err)
	}

	st.Profile = &model.AcademicProfile{Specialty: "Informatique"}
	m = New(st)
	m.selected = navbar.Simulator
	if got, err := m.check(); err != nil || got != navbar.Simulator {
		t.Errorf("expected the simulator, got %q, %v", got, err)
	}
}

func TestPromptAssumeYes(t *testing.T) {
	if !(Prompt{AssumeYes: true}).Confirm("Supprimer ?") {
		t.Error("expected AssumeYes to confirm without asking")
	}
}
