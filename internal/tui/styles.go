package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Accent    = lipgloss.Color("#22C55E")
	SlateDark = lipgloss.Color("#1F2937")
	DimGray   = lipgloss.Color("#6B7280")
	LightGray = lipgloss.Color("#9CA3AF")
	White     = lipgloss.Color("#F9FAFB")
	Red       = lipgloss.Color("#EF4444")
	PillBg    = lipgloss.Color("#374151")
	PillFg    = lipgloss.Color("#F9FAFB")
)

// Borders
var (
	ActiveBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Accent)

	InactiveBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DimGray)
)

// Text styles
var (
	BannerStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Accent)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	CursorStyle = lipgloss.NewStyle().
			Foreground(SlateDark).
			Background(Accent)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(DimGray).
			PaddingLeft(1)
)

// channelPill renders a broadcaster name in its own colours, falling back to
// the default pill colours when the API sends none.
func channelPill(name, primary, text string) string {
	bg := PillBg
	if primary != "" {
		bg = lipgloss.Color(primary)
	}
	fg := PillFg
	if text != "" {
		fg = lipgloss.Color(text)
	}
	return lipgloss.NewStyle().
		Background(bg).
		Foreground(fg).
		Padding(0, 1).
		Render(name)
}
