package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette drawn from rangoli powders
var (
	Primary   = lipgloss.Color("#E4572E") // Vermilion
	Secondary = lipgloss.Color("#F2A541") // Turmeric
	Accent    = lipgloss.Color("#D81E5B") // Kumkum
	Success   = lipgloss.Color("#3BB273") // Leaf
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // Rice flour
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)

// Stage states
var (
	Completed = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	Current = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	Available = lipgloss.NewStyle().
			Foreground(Text)

	Locked = lipgloss.NewStyle().
		Foreground(TextDim)

	Passed = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Failed = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)

	ProgressMark = lipgloss.NewStyle().
			Background(Accent)
)
