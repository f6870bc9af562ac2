package theme

import (
	"charm.land/lipgloss/v2"
)

// Palette: night sky over fresh snow.
var (
	Primary   = lipgloss.Color("#38BDF8") // Glacier blue
	Secondary = lipgloss.Color("#818CF8") // Dusk indigo
	Accent    = lipgloss.Color("#FACC15") // Ticket gold
	Success   = lipgloss.Color("#4ADE80") // Pine green
	Error     = lipgloss.Color("#F87171") // Red run
	Text      = lipgloss.Color("#F8FAFC") // Snow
	TextDim   = lipgloss.Color("#94A3B8") // Fog
	BgDark    = lipgloss.Color("#0B1120") // Night
	BgCard    = lipgloss.Color("#1E293B") // Slate
	Border    = lipgloss.Color("#334155")

	Gold   = lipgloss.Color("#EAB308")
	Silver = lipgloss.Color("#9CA3AF")
	Bronze = lipgloss.Color("#B45309")
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Label = lipgloss.NewStyle().
		Foreground(TextDim).
		Bold(true)
)

// Cards and status
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 2)

	HeroCard = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(Primary).
			Padding(0, 2)

	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	Status = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)
)
