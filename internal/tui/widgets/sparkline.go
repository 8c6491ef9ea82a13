// ABOUTME: Sparkline widget renders grade trends using block characters
// ABOUTME: Grades are scaled on the fixed 0-20 range so cards compare at a glance

package widgets

import (
	"github.com/charmbracelet/lipgloss"
)

// SparklineBlocks are the Unicode block characters for different heights
var SparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// GradeSparkline renders one block per grade, oldest first
func GradeSparkline(grades []float64, color lipgloss.Color) string {
	if len(grades) == 0 {
		return ""
	}
	result := make([]rune, len(grades))
	for i, g := range grades {
		result[i] = gradeToBlock(g)
	}

	style := lipgloss.NewStyle()
	if color != "" {
		style = style.Foreground(color)
	}
	return style.Render(string(result))
}

func gradeToBlock(g float64) rune {
	normalized := min(max(g/20, 0), 1)
	idx := int(normalized * float64(len(SparklineBlocks)-1))
	return SparklineBlocks[idx]
}
