// ABOUTME: Targets step of the share wizard: specialities, universities and outcomes
// ABOUTME: Accepted and rejected pickers only offer the chosen universities and never overlap

package wizard

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Rayanebsh/Pathwayfr/internal/form"
	"github.com/Rayanebsh/Pathwayfr/internal/picker"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/multiselect"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/styles"
)

// Focus slots of the targets page; the last one is the continue button
const (
	slotSpecialities = iota
	slotUniversities
	slotAccepted
	slotRejected
	slotContinue
)

// TargetsPage edits the multi-select fields of an experience
type TargetsPage struct {
	e       *form.Experience
	catalog Catalog
	fields  [4]multiselect.Model
	focus   int
	done    bool
}

// NewTargetsPage builds the page over e. Each picker writes its selection
// into e through its change hook.
func NewTargetsPage(e *form.Experience, catalog Catalog) *TargetsPage {
	p := &TargetsPage{e: e, catalog: catalog}

	specs := picker.New(catalog.Specialities)
	specs.OnSelectionChange = func(ids []int) { e.Specialities = ids }

	unis := e.UniversityPicker(catalog.Universities)
	unis.OnSelectionChange = e.SetUniversities

	accepted := e.Outcomes.AcceptedPicker(e.TargetOptions(catalog.Universities))
	accepted.OnSelectionChange = e.Outcomes.SetAccepted

	rejected := e.Outcomes.RejectedPicker(e.TargetOptions(catalog.Universities))
	rejected.OnSelectionChange = e.Outcomes.SetRejected

	p.fields = [4]multiselect.Model{
		multiselect.New("Spécialités visées", specs, e.Specialities),
		multiselect.New("Universités visées", unis, e.Universities),
		multiselect.New("Universités qui vous ont accepté", accepted, e.Outcomes.Accepted),
		multiselect.New("Universités qui vous ont refusé", rejected, e.Outcomes.Rejected),
	}
	p.fields[0].Focus()
	return p
}

// Init implements Page
func (p *TargetsPage) Init() tea.Cmd {
	return nil
}

// Done implements Page
func (p *TargetsPage) Done() bool {
	return p.done
}

// Capturing reports whether an open dropdown wants esc
func (p *TargetsPage) Capturing() bool {
	return p.focus < slotContinue && p.fields[p.focus].Capturing()
}

// Update implements Page
func (p *TargetsPage) Update(msg tea.Msg) (Page, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		for i := range p.fields {
			p.fields[i].SetWidth(min(msg.Width-4, 72))
		}
		return p, nil

	case tea.MouseMsg:
		p.placeFields()
		for i := range p.fields {
			p.fields[i], _ = p.fields[i].Update(msg)
		}
		return p, nil

	case tea.KeyMsg:
		if !p.Capturing() {
			switch msg.String() {
			case "tab", "down":
				p.setFocus(p.focus + 1)
				return p, nil
			case "shift+tab", "up":
				p.setFocus(p.focus - 1)
				return p, nil
			case "enter":
				if p.focus == slotContinue {
					p.done = true
					return p, nil
				}
			}
		}
		if p.focus == slotContinue {
			return p, nil
		}
		var cmd tea.Cmd
		p.fields[p.focus], cmd = p.fields[p.focus].Update(msg)
		p.sync()
		return p, cmd
	}
	return p, nil
}

func (p *TargetsPage) setFocus(slot int) {
	slot = min(max(slot, 0), slotContinue)
	for i := range p.fields {
		p.fields[i].Blur()
	}
	p.focus = slot
	if slot < slotContinue {
		p.fields[slot].Focus()
	}
}

// sync pushes the experience's selections back into every widget, since one
// picker's change can narrow another's choices
func (p *TargetsPage) sync() {
	targets := p.e.TargetOptions(p.catalog.Universities)

	p.fields[slotSpecialities].SetSelected(p.e.Specialities)
	p.fields[slotUniversities].SetSelected(p.e.Universities)

	p.fields[slotAccepted].SetOptions(targets)
	p.fields[slotAccepted].SetExcluded(p.e.Outcomes.Rejected)
	p.fields[slotAccepted].SetSelected(p.e.Outcomes.Accepted)

	p.fields[slotRejected].SetOptions(targets)
	p.fields[slotRejected].SetExcluded(p.e.Outcomes.Accepted)
	p.fields[slotRejected].SetSelected(p.e.Outcomes.Rejected)
}

// placeFields records each widget's first row relative to the page
func (p *TargetsPage) placeFields() {
	y := 2
	for i := range p.fields {
		p.fields[i].SetOrigin(0, y)
		y += lipgloss.Height(p.fields[i].View()) + 1
	}
}

// View implements Page
func (p *TargetsPage) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render("Étape 3 : Universités"))
	sb.WriteString("\n")
	for _, f := range p.fields {
		sb.WriteString(f.View())
		sb.WriteString("\n\n")
	}

	button := lipgloss.NewStyle().Foreground(styles.Muted).Background(styles.Surface).Padding(0, 2)
	if p.focus == slotContinue {
		button = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(styles.Primary).Padding(0, 2)
	}
	sb.WriteString(button.Render("Continuer"))
	sb.WriteString("\n")
	sb.WriteString(styles.Help.Render("tab champ suivant • enter ouvrir • espace cocher • / rechercher"))
	return sb.String()
}
