// ABOUTME: Score bars for the simulator's compatibility and success rates
// ABOUTME: Color follows the score: green when high, amber when middling, red when low

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ScoreColor picks the bar color of a score out of 100
func ScoreColor(score float64) lipgloss.Color {
	switch {
	case score >= 80:
		return BadgeOKBg
	case score >= 60:
		return BadgeWarnBg
	default:
		return BadgeCritBg
	}
}

// CompactProgressBar renders a minimal progress bar for tight spaces
func CompactProgressBar(percent float64, width int, color lipgloss.Color) string {
	if width <= 0 {
		width = 10
	}
	percent = min(max(percent, 0), 100)

	filled := int(percent / 100.0 * float64(width))
	empty := width - filled

	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("▓", filled)) +
		lipgloss.NewStyle().Foreground(lipgloss.Color("#374151")).Render(strings.Repeat("░", empty))
}

// ScoreBar renders a labelled bar such as "Compatibilité ▓▓▓▓░ 95%"
func ScoreBar(label string, score, width int) string {
	color := ScoreColor(float64(score))
	return fmt.Sprintf("%-14s %s %s", label,
		CompactProgressBar(float64(score), width, color),
		lipgloss.NewStyle().Foreground(color).Bold(true).Render(fmt.Sprintf("%3d%%", score)))
}
