package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/whereismatch/internal/domain/catalog"
	"github.com/riskibarqy/whereismatch/internal/domain/schedule"
	"github.com/riskibarqy/whereismatch/internal/infrastructure/selectionstore/memory"
	"github.com/riskibarqy/whereismatch/internal/platform/cache"
	"github.com/riskibarqy/whereismatch/internal/platform/params"
	"github.com/riskibarqy/whereismatch/internal/usecase"
)

type stubSource struct {
	mu      sync.Mutex
	matches []schedule.Match
	dates   []string
}

func (s *stubSource) ListSports(context.Context) ([]catalog.Item, error) {
	return []catalog.Item{{ID: 1, Name: "Football"}, {ID: 2, Name: "Tennis"}}, nil
}

func (s *stubSource) ListCountries(context.Context) ([]catalog.Item, error) {
	return []catalog.Item{{ID: 10, Name: "England"}, {ID: 11, Name: "Spain"}}, nil
}

func (s *stubSource) ListCompetitions(context.Context, params.Params) ([]catalog.Item, error) {
	return []catalog.Item{{ID: 8, Name: "Premier League"}}, nil
}

func (s *stubSource) ListBroadcasters(context.Context) ([]catalog.Item, error) {
	return nil, nil
}

func (s *stubSource) ListMatches(_ context.Context, query params.Params) ([]schedule.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, _ := query.Get("start_date")
	date, _ := value.(string)
	s.dates = append(s.dates, date)
	return s.matches, nil
}

func newTestModel(t *testing.T, src *stubSource) Model {
	t.Helper()

	qc, err := cache.NewQueryCache[[]schedule.Match](cache.DefaultQueryCacheCapacity, nil)
	require.NoError(t, err)
	orch, err := usecase.NewFilterOrchestrator(usecase.OrchestratorConfig{
		Source:  src,
		Store:   memory.NewStore(),
		Cursor:  schedule.NewDateCursor(time.UTC, "2024-03-10"),
		Matches: cache.NewCoalescer(qc, nil),
	})
	require.NoError(t, err)
	require.NoError(t, orch.Init(context.Background()))

	m := NewModel(context.Background(), orch)
	m.refresh()
	m.loaded = true
	return m
}

// press feeds a key and runs any resulting operation to completion.
func press(t *testing.T, m Model, msg tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		return m
	}
	if done, ok := cmd().(OpDoneMsg); ok {
		next, _ = m.Update(done)
		m = next.(Model)
	}
	return m
}

func space() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_ToggleSelectsUnderCursor(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, &stubSource{})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, catalog.DimensionCountries, m.panels[m.focus].dim)

	m = press(t, m, space())
	assert.Equal(t, []int64{10}, m.snapshot.Selections[catalog.DimensionCountries])

	m = press(t, m, runes("j"))
	m = press(t, m, space())
	assert.Equal(t, []int64{10, 11}, m.snapshot.Selections[catalog.DimensionCountries])

	m = press(t, m, runes("c"))
	assert.Empty(t, m.snapshot.Selections[catalog.DimensionCountries])
}

func TestModel_SearchCommitsSingleMatch(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, &stubSource{})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	next, _ := m.Update(runes("/"))
	m = next.(Model)
	require.True(t, m.panels[m.focus].searching())

	for _, r := range "eng" {
		next, _ = m.Update(runes(string(r)))
		m = next.(Model)
	}
	assert.Equal(t, "eng", m.panels[m.focus].search.Value())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []int64{10}, m.snapshot.Selections[catalog.DimensionCountries])
	assert.False(t, m.panels[m.focus].searching())

	// Committing again never deselects.
	next, _ = m.Update(runes("/"))
	m = next.(Model)
	for _, r := range "england" {
		next, _ = m.Update(runes(string(r)))
		m = next.(Model)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []int64{10}, m.snapshot.Selections[catalog.DimensionCountries])
}

func TestModel_SearchWithSeveralMatchesDoesNotCommit(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, &stubSource{})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	next, _ := m.Update(runes("/"))
	m = next.(Model)
	next, _ = m.Update(runes("n"))
	m = next.(Model)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.True(t, m.panels[m.focus].searching())
	assert.Empty(t, m.snapshot.Selections[catalog.DimensionCountries])
}

func TestModel_NoResultsSentinelIsNotSelectable(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, &stubSource{})
	m.focus = 3 // broadcasters, empty universe
	panel := m.panels[m.focus]

	opts := panel.options(m.orch.Set(panel.dim))
	require.Len(t, opts, 1)
	assert.True(t, opts[0].sentinel)
	assert.Equal(t, noResultsLabel, opts[0].item.Name)

	next, cmd := m.Update(space())
	assert.Nil(t, cmd)
	assert.Empty(t, next.(Model).snapshot.Selections[catalog.DimensionBroadcasters])
}

func TestModel_DateKeysShiftAndPrefetch(t *testing.T) {
	t.Parallel()

	src := &stubSource{}
	m := newTestModel(t, src)

	m = press(t, m, runes("]"))
	assert.Equal(t, "2024-03-11", m.snapshot.Date)
	assert.Equal(t, "Matches for Monday, Mar 11, 2024", m.snapshot.Banner)

	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		for _, d := range src.dates {
			if d == "2024-03-12" {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond, "next date is prefetched")

	m = press(t, m, runes("["))
	assert.Equal(t, "2024-03-10", m.snapshot.Date)
}

func TestModel_QuitUnsubscribes(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, &stubSource{})
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestRenderMatch(t *testing.T) {
	t.Parallel()

	out := renderMatch(schedule.Match{
		Time:        "16:30",
		HomeTeam:    &schedule.Team{Name: "Arsenal"},
		AwayTeam:    &schedule.Team{Name: "Chelsea"},
		Competition: &schedule.Competition{Name: "Premier League"},
		Channels:    []schedule.Channel{{Name: "Sky", PrimaryColor: "#0072C9", TextColor: "#FFFFFF"}, {Name: "TNT"}},
	}, 80)

	assert.Contains(t, out, "16:30")
	assert.Contains(t, out, "Arsenal vs Chelsea")
	assert.Contains(t, out, "Premier League")
	assert.Contains(t, out, "Sky")
	assert.Contains(t, out, "TNT")
}

func TestRenderMatches_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, renderMatches(nil, false, 80))
	assert.Contains(t, renderMatches(nil, true, 80), usecase.EmptyMatchesMessage)
}

func TestModel_View(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, &stubSource{matches: []schedule.Match{{HomeTeam: &schedule.Team{Name: "Arsenal"}}}})
	view := m.View()

	assert.Contains(t, view, "Matches for Sunday, Mar 10, 2024")
	assert.Contains(t, view, "Showing 1 match(es).")
	assert.Contains(t, view, "Arsenal")
	for _, dim := range catalog.Dimensions() {
		assert.True(t, strings.Contains(view, dim.Title()), dim)
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Premier…", truncate("Premier League", 8))
}
