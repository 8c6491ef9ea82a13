// ABOUTME: Tests for the badge, bar, sparkline and metric block widgets
// ABOUTME: Checks text content and sizing rather than exact ANSI output

package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/Rayanebsh/Pathwayfr/internal/tui/icons"
)

func TestBadgesCarryLabels(t *testing.T) {
	assert.Contains(t, UserBadge(true), "Banni")
	assert.Contains(t, UserBadge(false), "Actif")
	assert.Contains(t, ExperienceBadge(false), "En attente")
	assert.Contains(t, OutcomeBadge("Refusé"), "Refusé")
	assert.Contains(t, StatusText("ok", StatusOK), "ok")
}

func TestScoreColor(t *testing.T) {
	assert.Equal(t, BadgeOKBg, ScoreColor(95))
	assert.Equal(t, BadgeWarnBg, ScoreColor(65))
	assert.Equal(t, BadgeCritBg, ScoreColor(10))
}

func TestCompactProgressBarWidth(t *testing.T) {
	for _, pct := range []float64{-5, 0, 42, 100, 150} {
		assert.Equal(t, 10, lipgloss.Width(CompactProgressBar(pct, 10, BadgeOKBg)), "percent %v", pct)
	}
	assert.Contains(t, ScoreBar("Compatibilité", 95, 10), "95%")
}

func TestGradeSparkline(t *testing.T) {
	assert.Equal(t, "", GradeSparkline(nil, ""))
	line := GradeSparkline([]float64{0, 10, 20, 25}, "")
	assert.Equal(t, "▁▄██", line)
}

func TestMetricBlockWidth(t *testing.T) {
	icons.SetNerdFonts(false)
	block := MetricBlock(icons.Users, "Utilisateurs", "1,200", "dont 40 premium", DefaultMetricBlockConfig())
	lines := strings.Split(block, "\n")
	assert.Len(t, lines, 4)
	for _, l := range lines {
		assert.Equal(t, 24, lipgloss.Width(l))
	}
	assert.Contains(t, block, "1,200")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "élè…", truncate("élèves", 4))
}
