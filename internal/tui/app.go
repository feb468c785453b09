package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/riskibarqy/whereismatch/internal/domain/catalog"
	"github.com/riskibarqy/whereismatch/internal/usecase"
)

// Model is the Bubble Tea model of the schedule browser. All state shown on
// screen is read back from the orchestrator snapshot; the model only keeps
// panel focus, cursors and search text.
type Model struct {
	ctx         context.Context
	orch        *usecase.FilterOrchestrator
	keys        KeyMap
	help        help.Model
	spinner     spinner.Model
	panels      []*filterPanel
	focus       int
	events      chan usecase.Event
	unsubscribe func()

	snapshot usecase.Snapshot
	loaded   bool
	busy     int

	Width  int
	Height int
}

// NewModel subscribes to orch and returns the initial model. ctx bounds every
// operation the model starts.
func NewModel(ctx context.Context, orch *usecase.FilterOrchestrator) Model {
	events := make(chan usecase.Event, 64)
	observer := channelObserver{ch: events}

	panels := make([]*filterPanel, 0, len(catalog.Dimensions()))
	for _, dim := range catalog.Dimensions() {
		panels = append(panels, newFilterPanel(dim))
	}

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = AccentStyle

	return Model{
		ctx:         ctx,
		orch:        orch,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		spinner:     sp,
		panels:      panels,
		events:      events,
		unsubscribe: orch.Subscribe(observer.OnEvent),
		snapshot:    orch.Snapshot(),
	}
}

// Init starts the initial load and the event listener
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		listenEventsCmd(m.events),
		m.spinner.Tick,
		runOpCmd(m.ctx, "init", m.orch.Init),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case EventMsg:
		if msg.Event.Kind == usecase.EventMatches {
			m.loaded = true
		}
		m.refresh()
		return m, listenEventsCmd(m.events)

	case OpDoneMsg:
		if m.busy > 0 {
			m.busy--
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	panel := m.panels[m.focus]
	set := m.orch.Set(panel.dim)

	if panel.searching() {
		switch {
		case key.Matches(msg, m.keys.Escape):
			panel.search.Blur()
			panel.search.SetValue("")
			panel.clamp(len(panel.options(set)))
			return m, nil
		case key.Matches(msg, m.keys.Commit):
			item, ok := set.SoleVisible(panel.search.Value())
			if !ok {
				return m, nil
			}
			panel.search.Blur()
			panel.search.SetValue("")
			return m.start("select", func(ctx context.Context) error {
				return m.orch.SelectIfAbsent(ctx, panel.dim, item.ID)
			})
		}
		var cmd tea.Cmd
		panel.search, cmd = panel.search.Update(msg)
		panel.cursor = 0
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.unsubscribe()
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextPanel):
		m.focus = (m.focus + 1) % len(m.panels)
	case key.Matches(msg, m.keys.PrevPanel):
		m.focus = (m.focus + len(m.panels) - 1) % len(m.panels)
	case key.Matches(msg, m.keys.Up):
		panel.move(-1, set)
	case key.Matches(msg, m.keys.Down):
		panel.move(1, set)
	case key.Matches(msg, m.keys.Search):
		return m, panel.search.Focus()
	case key.Matches(msg, m.keys.Toggle):
		opt := panel.current(set)
		if opt.sentinel {
			return m, nil
		}
		return m.start("toggle", func(ctx context.Context) error {
			return m.orch.Toggle(ctx, panel.dim, opt.item.ID)
		})
	case key.Matches(msg, m.keys.Clear):
		return m.start("clear", func(ctx context.Context) error {
			return m.orch.Clear(ctx, panel.dim)
		})
	case key.Matches(msg, m.keys.PrevDay):
		return m.start("shift", m.shiftDate(-1))
	case key.Matches(msg, m.keys.NextDay):
		return m.start("shift", m.shiftDate(1))
	case key.Matches(msg, m.keys.Today):
		return m.start("today", func(ctx context.Context) error {
			return m.orch.SetDate(ctx, m.orch.Cursor().Today())
		})
	}
	return m, nil
}

// shiftDate moves the cursor and then warms the next date in the same
// direction.
func (m Model) shiftDate(dir int) func(context.Context) error {
	return func(ctx context.Context) error {
		err := m.orch.ShiftDate(ctx, dir)
		m.orch.Prefetch(ctx, dir)
		return err
	}
}

func (m Model) start(name string, op func(context.Context) error) (tea.Model, tea.Cmd) {
	m.busy++
	return m, runOpCmd(m.ctx, name, op)
}

func (m *Model) refresh() {
	m.snapshot = m.orch.Snapshot()
	for _, panel := range m.panels {
		panel.clamp(len(panel.options(m.orch.Set(panel.dim))))
	}
}
