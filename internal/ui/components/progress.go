package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/guru/internal/ui/theme"
)

// ProgressBar displays a horizontal bar for a score in [0, 1], with an
// optional marker at the pass threshold.
type ProgressBar struct {
	Label       string
	LabelWidth  int
	Percent     float64
	Mark        float64 // 0 hides the marker
	ShowPercent bool
	Width       int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// WithMark returns the bar with a threshold marker.
func (p ProgressBar) WithMark(mark float64) ProgressBar {
	p.Mark = mark
	return p
}

// WithLabelWidth pads the label so bars in a column line up.
func (p ProgressBar) WithLabelWidth(w int) ProgressBar {
	p.LabelWidth = w
	return p
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string
	p.Percent = max(0, min(p.Percent, 1))

	if p.Label != "" {
		label := p.Label
		if pad := p.LabelWidth - lipgloss.Width(label); pad > 0 {
			label += strings.Repeat(" ", pad)
		}
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6 // " 100%"
	}

	barWidth := p.Width - labelWidth - percentWidth
	if barWidth < 4 {
		barWidth = 4
	}

	filled := cells(p.Percent, barWidth)
	mark := -1
	if p.Mark > 0 {
		mark = min(cells(p.Mark, barWidth), barWidth-1)
	}

	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		switch {
		case i == mark:
			bar.WriteString(theme.ProgressMark.Render("│"))
		case i < filled:
			bar.WriteString(theme.ProgressFilled.Render(" "))
		default:
			bar.WriteString(theme.ProgressEmpty.Render(" "))
		}
	}
	result += bar.String()

	if p.ShowPercent {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %3d%%", int(p.Percent*100+0.5)))
	}

	return result
}

func cells(v float64, width int) int {
	n := int(float64(width) * v)
	if n > width {
		return width
	}
	if n < 0 {
		return 0
	}
	return n
}
