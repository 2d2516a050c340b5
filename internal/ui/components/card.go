package components

import (
	"github.com/abhisek/guru/internal/ui/theme"
)

// ContentWidth returns the inner width used for report sections so every
// card lines up.
func ContentWidth(frameWidth int) int {
	// Leave room for the card border (2) and padding (2).
	w := frameWidth - 4
	if w > 72 {
		w = 72
	}
	if w < 30 {
		w = 30
	}
	return w
}

// Card wraps content in a rounded-border card with an optional title line.
func Card(title, content string, cw int) string {
	if title != "" {
		content = theme.Title.Render(title) + "\n" + content
	}
	return theme.Card.
		Width(cw + 4).
		Render(content)
}
