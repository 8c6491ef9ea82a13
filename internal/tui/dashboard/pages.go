// ABOUTME: Renderers for the explorer, simulator, messaging and profile pages
// ABOUTME: Gated pages show the access message instead of their content

package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Rayanebsh/Pathwayfr/internal/client"
	core "github.com/Rayanebsh/Pathwayfr/internal/dashboard"
	"github.com/Rayanebsh/Pathwayfr/internal/session"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/icons"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/styles"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/widgets"
)

// Explorer renders the cards, the one under cursor expanded
func Explorer(cards []core.Card, cursor, width int) string {
	if len(cards) == 0 {
		return styles.Help.Render(core.EmptyExplorerMessage)
	}
	var blocks []string
	for i, c := range cards {
		if i == cursor {
			blocks = append(blocks, Card(c, width))
			continue
		}
		blocks = append(blocks, "  "+c.Title+" "+widgets.OutcomeBadge(c.Status))
	}
	return strings.Join(blocks, "\n")
}

// Card renders one experience in full
func Card(c core.Card, width int) string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(c.Title))
	sb.WriteString(" ")
	sb.WriteString(widgets.OutcomeBadge(c.Status))
	sb.WriteString("\n")

	meta := []string{"Candidature " + c.ApplicationYear}
	if c.CandidatureYear != "" {
		meta = append(meta, "Année visée : "+c.CandidatureYear)
	}
	if c.BacAverage != "" {
		meta = append(meta, "Bac : "+c.BacAverage)
	}
	if c.TCF != "" {
		meta = append(meta, "TCF : "+c.TCF)
	}
	sb.WriteString(styles.Subtitle.Render(strings.Join(meta, " · ")))
	sb.WriteString("\n")

	if len(c.Averages) > 0 {
		var parts []string
		for _, r := range c.Averages {
			parts = append(parts, fmt.Sprintf("%s %s", r.Label, styles.ValueStyle.Render(r.Value)))
		}
		sb.WriteString(strings.Join(parts, "  "))
		if len(c.Trend) > 1 {
			sb.WriteString("  ")
			sb.WriteString(widgets.GradeSparkline(c.Trend, styles.Accent))
		}
		sb.WriteString("\n")
	}
	if len(c.Universities) > 0 {
		sb.WriteString(icons.University.String() + " " + strings.Join(c.Universities, ", ") + "\n")
	}
	if len(c.Accepted) > 0 {
		sb.WriteString(styles.SuccessText.Render("Accepté : "+strings.Join(c.Accepted, ", ")) + "\n")
	}
	if len(c.Rejected) > 0 {
		sb.WriteString(styles.ErrorText.Render("Refusé : "+strings.Join(c.Rejected, ", ")) + "\n")
	}
	if c.Comment != "" {
		sb.WriteString(lipgloss.NewStyle().Italic(true).Width(max(width-6, 20)).Render("« " + c.Comment + " »"))
	}
	return styles.ActivePanel.Width(max(width-2, 20)).Render(strings.TrimRight(sb.String(), "\n"))
}

// Gate renders the explanation shown in place of a restricted page
func Gate(access core.Access, width int) string {
	hint := "Appuyez sur c pour vous connecter"
	switch access {
	case core.AccessProfileRequired:
		hint = "Appuyez sur p pour compléter votre profil"
	case core.AccessPremiumRequired:
		hint = ""
	}
	return gate(access.Message(), hint, width)
}

// LoginGate asks for a login with a page-specific message
func LoginGate(message string, width int) string {
	return gate(message, "Appuyez sur c pour vous connecter", width)
}

func gate(message, hint string, width int) string {
	body := icons.Lock.String() + " " + message
	if hint != "" {
		body += "\n\n" + styles.Help.Render(hint)
	}
	return styles.Panel.Width(max(width-2, 20)).Render(lipgloss.NewStyle().Width(max(width-6, 16)).Render(body))
}

// Simulator renders the recommendations, or the gate when access is refused
func Simulator(st session.State, width int) string {
	if access := core.SimulatorAccess(st); access != core.AccessGranted {
		return Gate(access, width)
	}
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.Simulator.String() + " Simulateur intelligent"))
	sb.WriteString("\n\n")
	for _, r := range core.Recommendations(st) {
		sb.WriteString(fmt.Sprintf("%s %s  %s\n",
			styles.KeyStyle.Render(fmt.Sprintf("#%d", r.Rank)),
			styles.ValueStyle.Render(r.Name),
			styles.Help.Render(r.Specialty+" · "+r.Location)))
		sb.WriteString("   " + widgets.ScoreBar("Compatibilité", r.Compatibility, 20) + "\n")
		sb.WriteString("   " + widgets.ScoreBar("Réussite", r.SuccessRate, 20) + "\n")
		sb.WriteString("   " + styles.Help.Render(strings.Join(r.Reasons, " • ")) + "\n\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Messaging renders the conversation list next to the open thread. composer
// is the rendered input line.
func Messaging(st session.State, m *core.Messaging, composer string, width int) string {
	if access := core.MessagingAccess(st); access != core.AccessGranted {
		return Gate(access, width)
	}

	listWidth := min(34, width/3)
	var list []string
	selected := m.Selected().ID
	for _, c := range m.Conversations() {
		title := truncate(c.Title, listWidth-4)
		if c.Unread > 0 {
			title += fmt.Sprintf(" (%d)", c.Unread)
		}
		line := title + "\n" + styles.Help.Render(truncate(c.LastMessage, listWidth-4)+" · "+c.LastActivity)
		if c.ID == selected {
			line = styles.Selected.Render("▸ ") + line
		} else {
			line = "  " + line
		}
		list = append(list, line)
	}
	if len(list) == 0 {
		list = append(list, styles.Help.Render("Aucune conversation"))
	}
	left := styles.Panel.Width(listWidth).Render(strings.Join(list, "\n\n"))

	threadWidth := max(width-listWidth-6, 20)
	var thread []string
	thread = append(thread, styles.Title.Render(m.Selected().Title))
	for _, msg := range m.Messages() {
		header := styles.KeyStyle.Render(msg.Author) + " " + styles.Help.Render(msg.Timestamp)
		style := styles.OtherMessage
		if msg.Own {
			style = styles.OwnMessage
		}
		thread = append(thread, header+"\n"+style.Width(threadWidth-4).Render(msg.Content))
	}
	thread = append(thread, composer)
	right := styles.Panel.Width(threadWidth).Render(strings.Join(thread, "\n\n"))

	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}

// Profile renders the account and academic panels
func Profile(v core.ProfileView, loading bool, width int) string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.Profile.String() + " Mon profil"))
	if v.User != nil && v.User.SubscriptionActive() {
		sb.WriteString(" " + widgets.PremiumBadge())
	}
	sb.WriteString("\n\n")
	if loading {
		sb.WriteString(styles.Help.Render("Actualisation..."))
		sb.WriteString("\n\n")
	}
	if v.Err != nil {
		sb.WriteString(widgets.StatusText(client.UserMessage(v.Err), widgets.StatusWarning))
		sb.WriteString("\n\n")
	}

	panelWidth := max(width/2-2, 30)
	identity := renderRows("Compte", v.IdentityRows(), panelWidth)
	academic := styles.Panel.Width(panelWidth).Render(
		styles.Subtitle.Render("Profil académique") + "\n" + styles.Help.Render("Aucun profil académique. Appuyez sur e pour le créer."))
	if rows := v.AcademicRows(); rows != nil {
		academic = renderRows("Profil académique", rows, panelWidth)
	}
	if width >= 2*panelWidth+4 {
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, identity, " ", academic))
	} else {
		sb.WriteString(identity + "\n" + academic)
	}
	return sb.String()
}

func renderRows(title string, rows []core.Row, width int) string {
	labelWidth := 0
	for _, r := range rows {
		labelWidth = max(labelWidth, lipgloss.Width(r.Label))
	}
	lines := []string{styles.Subtitle.Render(title)}
	for _, r := range rows {
		pad := strings.Repeat(" ", labelWidth-lipgloss.Width(r.Label))
		lines = append(lines, styles.KeyStyle.Render(r.Label)+pad+"  "+styles.ValueStyle.Render(r.Value))
	}
	return styles.Panel.Width(width).Render(strings.Join(lines, "\n"))
}
