package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette. Green and red always mean price direction; amber flags high-impact news.
var (
	PrimaryColor = lipgloss.Color("#0EA5E9")
	AccentColor  = lipgloss.Color("#F59E0B")
	UpColor      = lipgloss.Color("#22C55E")
	DownColor    = lipgloss.Color("#F43F5E")

	BarColor         = lipgloss.Color("#1E293B")
	BorderColor      = lipgloss.Color("#334155")
	FocusBorderColor = PrimaryColor
	SelectionColor   = lipgloss.Color("#1E3A5F")

	TextColor          = lipgloss.Color("#F8FAFC")
	TextSecondaryColor = lipgloss.Color("#94A3B8")
	TextMutedColor     = lipgloss.Color("#64748B")
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func bold(c lipgloss.Color) lipgloss.Style {
	return fg(c).Bold(true)
}

func panel(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
}

var (
	PanelStyle        = panel(BorderColor)
	FocusedPanelStyle = panel(FocusBorderColor)

	TitleStyle       = bold(TextSecondaryColor).Padding(0, 1)
	HeaderStyle      = bold(TextSecondaryColor).Underline(true)
	RowStyle         = fg(TextColor)
	SelectedRowStyle = fg(TextColor).Background(SelectionColor)
	MutedStyle       = fg(TextMutedColor)

	PriceUpStyle   = fg(UpColor)
	PriceDownStyle = fg(DownColor)
	SectorStyle    = fg(TextSecondaryColor).Italic(true)
	DateStyle      = fg(TextMutedColor)

	NewsNormalStyle    = fg(TextColor)
	NewsImportantStyle = bold(AccentColor)
	PositiveStyle      = bold(UpColor)
	NegativeStyle      = bold(DownColor)

	ChartUpStyle    = fg(UpColor)
	ChartDownStyle  = fg(DownColor)
	ChartAxisStyle  = fg(TextMutedColor)
	ChartLabelStyle = fg(TextSecondaryColor)

	StatusBarStyle     = fg(TextSecondaryColor).Background(BarColor).Padding(0, 1)
	StatusBarKeyStyle  = bold(PrimaryColor)
	StatusBarDescStyle = fg(TextSecondaryColor)
	CrisisStyle        = bold(TextColor).Background(DownColor).Padding(0, 1)
)

// RenderTitle renders a panel title, highlighted when the panel has focus.
func RenderTitle(title string, focused bool) string {
	if focused {
		return TitleStyle.Foreground(FocusBorderColor).Render(title)
	}
	return TitleStyle.Render(title)
}

// Truncate shortens s to width runes, marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
