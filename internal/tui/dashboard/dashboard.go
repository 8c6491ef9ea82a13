// ABOUTME: Admin dashboard panel: statistics blocks, user list and moderation queue
// ABOUTME: Renders the state held by the admin dashboard with a cursor per tab

package dashboard

import (
	"fmt"
	"strings"

	"github.com/Rayanebsh/Pathwayfr/internal/client"
	core "github.com/Rayanebsh/Pathwayfr/internal/dashboard"
	"github.com/Rayanebsh/Pathwayfr/internal/model"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/icons"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/styles"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/widgets"
)

// Tab is a section of the admin panel
type Tab int

const (
	TabStats Tab = iota
	TabUsers
	TabExperiences
)

var tabNames = []string{"Statistiques", "Utilisateurs", "Expériences"}

func (t Tab) String() string {
	if t < 0 || int(t) >= len(tabNames) {
		return ""
	}
	return tabNames[t]
}

// Dashboard displays the admin panel
type Dashboard struct {
	admin  *core.Admin
	tab    Tab
	cursor int
	width  int
	height int
}

// New creates the panel over admin
func New(admin *core.Admin, width, height int) *Dashboard {
	return &Dashboard{
		admin:  admin,
		tab:    TabStats,
		width:  width,
		height: height,
	}
}

// SetSize updates the panel dimensions
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// Tab returns the shown section
func (d *Dashboard) Tab() Tab {
	return d.tab
}

// NextTab cycles through the sections
func (d *Dashboard) NextTab() {
	d.tab = (d.tab + 1) % Tab(len(tabNames))
	d.cursor = 0
}

// Move shifts the cursor within the current list
func (d *Dashboard) Move(delta int) {
	n := d.rows()
	if n == 0 {
		d.cursor = 0
		return
	}
	d.cursor = min(max(d.cursor+delta, 0), n-1)
}

func (d *Dashboard) rows() int {
	switch d.tab {
	case TabUsers:
		return len(d.admin.FilteredUsers())
	case TabExperiences:
		return len(d.admin.Experiences().Data)
	default:
		return 0
	}
}

// SelectedUser returns the user under the cursor
func (d *Dashboard) SelectedUser() (model.AdminUser, bool) {
	users := d.admin.FilteredUsers()
	if d.tab != TabUsers || d.cursor >= len(users) {
		return model.AdminUser{}, false
	}
	return users[d.cursor], true
}

// SelectedExperience returns the experience under the cursor
func (d *Dashboard) SelectedExperience() (model.ExperienceSummary, bool) {
	exps := d.admin.Experiences().Data
	if d.tab != TabExperiences || d.cursor >= len(exps) {
		return model.ExperienceSummary{}, false
	}
	return exps[d.cursor], true
}

// View renders the panel
func (d *Dashboard) View() string {
	if err := d.admin.Err(); err != nil {
		return styles.Panel.Width(d.width).Render(styles.ErrorText.Render(client.UserMessage(err)))
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.Admin.String() + " Administration"))
	sb.WriteString("\n")
	sb.WriteString(d.renderTabs())
	sb.WriteString("\n\n")

	if banner := d.admin.Banner(); banner != "" {
		sb.WriteString(widgets.StatusText(banner, widgets.StatusCritical))
		sb.WriteString("\n\n")
	}

	switch d.tab {
	case TabUsers:
		sb.WriteString(d.renderUsers())
	case TabExperiences:
		sb.WriteString(d.renderExperiences())
	default:
		sb.WriteString(d.renderStats())
	}
	return sb.String()
}

func (d *Dashboard) renderTabs() string {
	var parts []string
	for i, name := range tabNames {
		if Tab(i) == d.tab {
			parts = append(parts, styles.NavActive.Render(name))
		} else {
			parts = append(parts, styles.NavLink.Render(name))
		}
	}
	return strings.Join(parts, " ")
}

func (d *Dashboard) renderStats() string {
	section := d.admin.Stats()
	if !section.Loaded {
		return styles.Help.Render("Chargement des statistiques...")
	}
	if section.Err != nil {
		return styles.ErrorText.Render(client.UserMessage(section.Err))
	}

	cfg := widgets.DefaultMetricBlockConfig()
	var blocks []string
	for _, row := range core.StatRows(section.Data) {
		blocks = append(blocks, widgets.MetricBlock(statIcon(row.Label), row.Label, row.Value, "", cfg))
	}

	counts := d.admin.Counts()
	summary := fmt.Sprintf("File de modération : %d en attente, %d approuvées, %d rejetées",
		counts.Pending, counts.Approved, counts.Rejected)

	return widgets.MetricGrid(blocks, cfg.Width, max(d.width, cfg.Width)) + "\n\n" + styles.Help.Render(summary)
}

func statIcon(label string) icons.Icon {
	switch {
	case strings.HasPrefix(label, "Taux"):
		return icons.Chart
	case strings.HasPrefix(label, "Premium"):
		return icons.Crown
	case strings.HasPrefix(label, "Expériences"), strings.HasPrefix(label, "En attente"),
		strings.HasPrefix(label, "Approuvées"), strings.HasPrefix(label, "Rejetées"):
		return icons.Share
	default:
		return icons.Users
	}
}

func (d *Dashboard) renderUsers() string {
	section := d.admin.Users()
	if !section.Loaded {
		return styles.Help.Render("Chargement des utilisateurs...")
	}
	if section.Err != nil {
		return styles.ErrorText.Render(client.UserMessage(section.Err))
	}
	users := d.admin.FilteredUsers()
	if len(users) == 0 {
		return styles.Help.Render(d.admin.EmptyUsersMessage())
	}

	var lines []string
	for _, i := range d.window(len(users)) {
		user := users[i]
		line := fmt.Sprintf("%-24s %-30s %s", truncate(user.FullName(), 24), truncate(user.Email, 30), widgets.UserBadge(user.IsBanned))
		if user.Premium {
			line += " " + widgets.PremiumBadge()
		}
		if created, ok := model.ParseTime(user.CreatedAt); ok {
			line += " " + styles.Help.Render(created.Format("02/01/2006"))
		}
		lines = append(lines, d.cursorLine(i, line))
	}
	return strings.Join(lines, "\n")
}

func (d *Dashboard) renderExperiences() string {
	section := d.admin.Experiences()
	if !section.Loaded {
		return styles.Help.Render("Chargement des expériences...")
	}
	if section.Err != nil {
		return styles.ErrorText.Render(client.UserMessage(section.Err))
	}
	if len(section.Data) == 0 {
		return styles.Help.Render("Aucune expérience à modérer")
	}

	var lines []string
	for _, i := range d.window(len(section.Data)) {
		e := section.Data[i]
		author := strings.TrimSpace(e.FirstName + " " + e.LastName)
		comment := strings.Join(strings.Fields(e.Comment), " ")
		line := fmt.Sprintf("#%-5d %-22s %s %s", e.ID, truncate(author, 22),
			statusBadge(e.IsValidated), styles.Help.Render(truncate(comment, max(d.width-50, 10))))
		lines = append(lines, d.cursorLine(i, line))
	}
	return strings.Join(lines, "\n")
}

func statusBadge(status string) string {
	label := core.StatusLabel(status)
	switch status {
	case model.ExperienceApproved:
		return widgets.Badge(label, widgets.StatusOK)
	case model.ExperienceRejected:
		return widgets.Badge(label, widgets.StatusCritical)
	default:
		return widgets.Badge(label, widgets.StatusWarning)
	}
}

// window returns the indexes of the visible rows around the cursor
func (d *Dashboard) window(n int) []int {
	visible := max(d.height-8, 5)
	start := 0
	if d.cursor >= visible {
		start = d.cursor - visible + 1
	}
	end := min(start+visible, n)
	idx := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		idx = append(idx, i)
	}
	return idx
}

func (d *Dashboard) cursorLine(i int, line string) string {
	if i == d.cursor {
		return styles.Selected.Render("▸ ") + line
	}
	return "  " + line
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
