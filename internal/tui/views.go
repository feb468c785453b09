package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/riskibarqy/whereismatch/internal/domain/schedule"
	"github.com/riskibarqy/whereismatch/internal/domain/selection"
	"github.com/riskibarqy/whereismatch/internal/usecase"
)

const (
	panelWidth   = 26
	panelRows    = 8
	defaultWidth = 110
)

// View renders the current state
func (m Model) View() string {
	var b strings.Builder

	header := BannerStyle.Render(m.snapshot.Banner)
	if m.busy > 0 {
		header += " " + m.spinner.View()
	}
	b.WriteString(header)
	b.WriteString("\n\n")

	panels := make([]string, 0, len(m.panels))
	for i, panel := range m.panels {
		panels = append(panels, renderPanel(panel, m.orch.Set(panel.dim), i == m.focus))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panels...))
	b.WriteString("\n")

	b.WriteString(renderStatus(m.snapshot.Status))
	b.WriteString("\n\n")

	width := m.Width
	if width <= 0 {
		width = defaultWidth
	}
	b.WriteString(renderMatches(m.snapshot.Matches, m.loaded, width))
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

func renderPanel(panel *filterPanel, set *selection.Set, active bool) string {
	border := InactiveBorder
	if active {
		border = ActiveBorder
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("%s (%d)", panel.dim.Title(), len(set.SelectedIDs()))))
	b.WriteString("\n")
	if panel.searching() || panel.search.Value() != "" {
		b.WriteString(panel.search.View())
		b.WriteString("\n")
	}

	opts := panel.options(set)
	panel.clamp(len(opts))
	start := 0
	if panel.cursor >= panelRows {
		start = panel.cursor - panelRows + 1
	}
	end := min(start+panelRows, len(opts))
	for i := start; i < end; i++ {
		line := renderOption(opts[i])
		if active && i == panel.cursor {
			line = CursorStyle.Render(line)
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return border.Width(panelWidth).Render(b.String())
}

func renderOption(opt option) string {
	if opt.sentinel {
		return DimStyle.Render(opt.item.Name)
	}
	mark := "[ ]"
	if opt.selected {
		mark = "[x]"
	}
	return mark + " " + truncate(opt.item.Name, panelWidth-5)
}

func renderStatus(status string) string {
	if strings.HasPrefix(status, "Request failed") || status == usecase.ConfigurationStatus {
		return ErrorStyle.Render(status)
	}
	return SubtitleStyle.Render(status)
}

// renderMatches lays out one card per match. The empty message is shown only
// once a load has completed.
func renderMatches(matches []schedule.Match, loaded bool, width int) string {
	if len(matches) == 0 {
		if !loaded {
			return ""
		}
		return DimStyle.Render(usecase.EmptyMatchesMessage)
	}

	cards := make([]string, 0, len(matches))
	for _, match := range matches {
		cards = append(cards, renderMatch(match, width))
	}
	return strings.Join(cards, "\n")
}

func renderMatch(match schedule.Match, width int) string {
	var b strings.Builder
	if match.Time != "" {
		b.WriteString(AccentStyle.Render(match.Time))
		b.WriteString("  ")
	}
	b.WriteString(TitleStyle.Render(match.Title()))
	if name := match.CompetitionName(); name != "" {
		b.WriteString("\n")
		b.WriteString(SubtitleStyle.Render(name))
	}
	if len(match.Channels) > 0 {
		pills := make([]string, 0, len(match.Channels))
		for _, ch := range match.Channels {
			pills = append(pills, channelPill(ch.Name, ch.PrimaryColor, ch.TextColor))
		}
		b.WriteString("\n")
		b.WriteString(strings.Join(pills, " "))
	}
	return CardStyle.Width(max(width-2, 20)).Render(b.String())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 2 {
		return s
	}
	return string(r[:n-1]) + "…"
}
