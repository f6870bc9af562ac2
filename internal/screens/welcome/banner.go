package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skiquiz/internal/ui/theme"
)

const bannerArt = `
 ███████╗██╗  ██╗██╗     ██████╗ ██╗   ██╗██╗███████╗
 ██╔════╝██║ ██╔╝██║    ██╔═══██╗██║   ██║██║╚══███╔╝
 ███████╗█████╔╝ ██║    ██║   ██║██║   ██║██║  ███╔╝
 ╚════██║██╔═██╗ ██║    ██║▄▄ ██║██║   ██║██║ ███╔╝
 ███████║██║  ██╗██║    ╚██████╔╝╚██████╔╝██║███████╗
 ╚══════╝╚═╝  ╚═╝╚═╝     ╚══▀▀═╝  ╚═════╝ ╚═╝╚══════╝`

const bannerCompact = "S K I   Q U I Z"

// RenderBanner draws the title, falling back to spaced letters below 56
// columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 56 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
