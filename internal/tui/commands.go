package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/riskibarqy/whereismatch/internal/usecase"
)

// Command factories for async operations

// runOpCmd runs op off the update loop and reports completion.
func runOpCmd(ctx context.Context, name string, op func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return OpDoneMsg{Op: name, Err: op(ctx)}
	}
}

// listenEventsCmd reads the next orchestrator event from ch
func listenEventsCmd(ch <-chan usecase.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return EventMsg{Event: event}
	}
}

// channelObserver forwards orchestrator events to a channel for Bubble Tea.
type channelObserver struct {
	ch chan<- usecase.Event
}

// OnEvent sends event to the channel (non-blocking if full). The model
// re-reads the snapshot on every message, so a dropped event loses nothing.
func (o channelObserver) OnEvent(event usecase.Event) {
	select {
	case o.ch <- event:
	default:
	}
}
