package theme

import "github.com/charmbracelet/lipgloss"

// Theme holds the colors and glyphs shared by the terminal views.
type Theme struct {
	FG      lipgloss.Color
	Muted   lipgloss.Color
	Accent  lipgloss.Color
	Active  lipgloss.Color
	Cursor  lipgloss.Color
	Playing lipgloss.Color

	Symbols Symbols
}

// Symbols are the runes the pattern grid and level meter are drawn with.
type Symbols struct {
	// Grid states (no cursor)
	StepEmpty    rune // · inactive step
	StepActive   rune // ● has hit
	StepPlayhead rune // ▶ step under the playhead

	// Grid states (with cursor)
	CursorEmpty    rune // ○ cursor on empty
	CursorActive   rune // ◉ cursor on active
	CursorPlayhead rune // ▷ cursor on playhead

	// Meter bar
	MeterOn  rune // ■ lit segment
	MeterOff rune // □ unlit segment
}

// Default returns the stock palette, warm and low contrast.
func Default() *Theme {
	return &Theme{
		FG:      lipgloss.Color("#e8ddc7"),
		Muted:   lipgloss.Color("#8a7d6b"),
		Accent:  lipgloss.Color("#d9a05b"),
		Active:  lipgloss.Color("#cf6a4c"),
		Cursor:  lipgloss.Color("#7fb4a2"),
		Playing: lipgloss.Color("#a3b86c"),

		Symbols: Symbols{
			StepEmpty:    '·',
			StepActive:   '●',
			StepPlayhead: '▶',

			CursorEmpty:    '○',
			CursorActive:   '◉',
			CursorPlayhead: '▷',

			MeterOn:  '■',
			MeterOff: '□',
		},
	}
}
