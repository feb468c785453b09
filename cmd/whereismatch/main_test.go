package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/riskibarqy/whereismatch/internal/domain/schedule"
	"github.com/riskibarqy/whereismatch/internal/usecase"
)

func TestFormatMatchLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		match schedule.Match
		want  string
	}{
		{
			name: "full",
			match: schedule.Match{
				Time:        "16:30",
				HomeTeam:    &schedule.Team{Name: "Arsenal"},
				AwayTeam:    &schedule.Team{Name: "Chelsea"},
				Competition: &schedule.Competition{Name: "Premier League"},
				Channels:    []schedule.Channel{{Name: "Sky"}, {Name: "TNT"}},
			},
			want: "16:30  Arsenal vs Chelsea  (Premier League)  [Sky, TNT]",
		},
		{
			name:  "missing teams",
			match: schedule.Match{},
			want:  "TBD",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatMatchLine(tt.match))
		})
	}
}

func TestFormatList(t *testing.T) {
	t.Parallel()

	empty := formatList(usecase.Snapshot{Banner: "Matches for Sunday, Mar 10, 2024"})
	assert.Equal(t, "Matches for Sunday, Mar 10, 2024\n"+usecase.EmptyMatchesMessage+"\n", empty)

	full := formatList(usecase.Snapshot{
		Banner:  "Matches for Sunday, Mar 10, 2024",
		Status:  "Showing 1 match(es).",
		Matches: []schedule.Match{{HomeTeam: &schedule.Team{Name: "Arsenal"}}},
	})
	assert.Equal(t, "Matches for Sunday, Mar 10, 2024\nArsenal\nShowing 1 match(es).\n", full)
}
