// ABOUTME: Terminal rendering of a multi-select picker with chips and a dropdown
// ABOUTME: Arrow keys move, space toggles, "/" searches, clicks outside close it

package multiselect

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Rayanebsh/Pathwayfr/internal/picker"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/icons"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/styles"
)

// MsgLimitReached is shown when a toggle is refused by the cap
const MsgLimitReached = "Limite atteinte"

// visibleRows caps the dropdown height
const visibleRows = 8

// Model renders one picker. The selection lives here; the picker computes
// new sets and reports them through its OnSelectionChange hook.
type Model struct {
	label    string
	picker   *picker.Picker
	selected []int
	search   textinput.Model

	cursor    int
	offset    int
	focused   bool
	searching bool
	notice    string

	// origin is where the dropdown is drawn, for click handling
	originX, originY int
	width            int
}

// New creates a closed multiselect over p
func New(label string, p *picker.Picker, selected []int) Model {
	ti := textinput.New()
	ti.Placeholder = "Rechercher..."
	ti.Prompt = icons.Search.String() + " "
	ti.CharLimit = 64
	return Model{
		label:    label,
		picker:   p,
		selected: slices.Clone(selected),
		search:   ti,
		width:    48,
	}
}

// Selected returns the current selection
func (m Model) Selected() []int {
	return slices.Clone(m.selected)
}

// SetSelected replaces the selection without notifying
func (m *Model) SetSelected(ids []int) {
	m.selected = slices.Clone(ids)
}

// SetExcluded hides ids from the candidates
func (m *Model) SetExcluded(ids []int) {
	m.picker.Excluded = slices.Clone(ids)
	m.clampCursor()
}

// SetOptions replaces the option list
func (m *Model) SetOptions(options []picker.Option) {
	m.picker.Options = options
	m.clampCursor()
}

// Picker exposes the underlying picker
func (m Model) Picker() *picker.Picker {
	return m.picker
}

// Focus marks the widget as the one receiving keys
func (m *Model) Focus() {
	m.focused = true
}

// Blur closes the dropdown and releases the keyboard
func (m *Model) Blur() {
	m.focused = false
	m.searching = false
	m.search.Blur()
	m.picker.Close()
}

// Focused reports whether the widget receives keys
func (m Model) Focused() bool {
	return m.focused
}

// IsOpen reports whether the dropdown is shown
func (m Model) IsOpen() bool {
	return m.picker.IsOpen()
}

// Capturing reports whether the widget wants every key, so that the parent
// does not treat tab or esc as navigation
func (m Model) Capturing() bool {
	return m.picker.IsOpen()
}

// SetOrigin records where the widget's first line is drawn
func (m *Model) SetOrigin(x, y int) {
	m.originX, m.originY = x, y
}

// SetWidth sets the rendering width
func (m *Model) SetWidth(w int) {
	m.width = max(w, 24)
}

// Update implements the key and mouse handling
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && m.picker.IsOpen() {
			m.picker.SetBounds(m.bounds())
			if m.picker.HandleClick(picker.Point{X: msg.X, Y: msg.Y}) {
				m.searching = false
				m.search.Blur()
			}
		}
		return m, nil

	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "up", "down":
		return m.updateKeys(msg)
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.picker.SetSearch(m.search.Value())
	m.clampCursor()
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	if !m.picker.IsOpen() {
		switch msg.String() {
		case "enter", " ", "down":
			m.open()
		case "backspace":
			if n := len(m.selected); n > 0 {
				m.selected, _ = m.picker.Remove(m.selected, m.selected[n-1])
			}
		}
		return m, nil
	}

	candidates := m.picker.Candidates()
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(candidates)-1 {
			m.cursor++
		}
	case " ", "enter", "x":
		if m.cursor < len(candidates) {
			m.toggle(candidates[m.cursor].ID)
		}
	case "/":
		m.searching = true
		cmd := m.search.Focus()
		return m, cmd
	case "esc":
		m.picker.Close()
	}
	m.scroll()
	return m, nil
}

func (m *Model) open() {
	m.picker.Open()
	m.search.SetValue("")
	m.cursor, m.offset = 0, 0
	m.notice = ""
}

func (m *Model) toggle(id int) {
	next, changed := m.picker.Toggle(m.selected, id)
	if !changed {
		m.notice = MsgLimitReached
		return
	}
	m.notice = ""
	m.selected = next
}

func (m *Model) clampCursor() {
	n := len(m.picker.Candidates())
	if m.cursor >= n {
		m.cursor = max(0, n-1)
	}
	m.scroll()
}

func (m *Model) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visibleRows {
		m.offset = m.cursor - visibleRows + 1
	}
}

// bounds covers the label, the chips line and the open dropdown
func (m Model) bounds() picker.Bounds {
	return picker.Bounds{
		X:      m.originX,
		Y:      m.originY,
		Width:  m.width,
		Height: lipgloss.Height(m.View()),
	}
}

// View renders the label, the chips and, when open, the dropdown
func (m Model) View() string {
	var sb strings.Builder

	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	if m.focused {
		labelStyle = lipgloss.NewStyle().Foreground(styles.Accent).Bold(true)
	}
	label := m.label
	if m.picker.Max > 0 {
		label = fmt.Sprintf("%s (%d/%d)", label, len(m.selected), m.picker.Max)
	}
	sb.WriteString(labelStyle.Render(label))
	sb.WriteString("\n")
	sb.WriteString(m.renderChips())

	if m.notice != "" {
		sb.WriteString("\n")
		sb.WriteString(styles.StatusWarning.Render(m.notice))
	}

	if m.picker.IsOpen() {
		sb.WriteString("\n")
		sb.WriteString(m.renderDropdown())
	}
	return sb.String()
}

func (m Model) renderChips() string {
	chips, more := m.picker.ChipsSummary(m.selected)
	if len(chips) == 0 {
		return lipgloss.NewStyle().Foreground(styles.Muted).Italic(true).Render("Aucune sélection")
	}
	parts := make([]string, 0, len(chips)+1)
	for _, c := range chips {
		parts = append(parts, styles.Chip.Render(c.Label))
	}
	if more > 0 {
		parts = append(parts, lipgloss.NewStyle().Foreground(styles.Muted).Render(fmt.Sprintf("+%d autres", more)))
	}
	return strings.Join(parts, " ")
}

func (m Model) renderDropdown() string {
	var lines []string
	if m.searching || m.search.Value() != "" {
		lines = append(lines, m.search.View())
	}

	if ph := m.picker.Placeholder(); ph != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(styles.Muted).Render(ph))
	} else {
		candidates := m.picker.Candidates()
		if len(candidates) == 0 {
			lines = append(lines, lipgloss.NewStyle().Foreground(styles.Muted).Render("Aucun résultat"))
		}
		end := min(m.offset+visibleRows, len(candidates))
		for i := m.offset; i < end; i++ {
			c := candidates[i]
			mark := "[ ]"
			if slices.Contains(m.selected, c.ID) {
				mark = "[" + icons.CheckOK.String() + "]"
			}
			line := fmt.Sprintf("%s %s", mark, c.Label)
			if i == m.cursor {
				line = styles.Selected.Render("> " + line)
			} else {
				line = "  " + line
			}
			lines = append(lines, line)
		}
		if len(candidates) > visibleRows {
			lines = append(lines, lipgloss.NewStyle().Foreground(styles.Muted).
				Render(fmt.Sprintf("%d/%d", m.cursor+1, len(candidates))))
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(styles.Primary).
		Width(m.width - 2).
		Render(strings.Join(lines, "\n"))
}
