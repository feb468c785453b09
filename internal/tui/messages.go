package tui

import "github.com/riskibarqy/whereismatch/internal/usecase"

// Message types for the TUI

// EventMsg carries one orchestrator notification into the update loop.
type EventMsg struct {
	Event usecase.Event
}

// OpDoneMsg signals that a user-triggered operation finished. Failures are
// already reflected in the orchestrator status.
type OpDoneMsg struct {
	Op  string
	Err error
}
