package schedule

import (
	"slices"
	"strings"

	sonic "github.com/bytedance/sonic"
)

// Team is the subset of a participant the schedule renders.
type Team struct {
	Name string `json:"name"`
}

// Competition names the tournament a match belongs to.
type Competition struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

// Channel is one broadcaster listing for a match. Colours are CSS colour
// strings as served by the API and may be empty.
type Channel struct {
	Name         string `json:"name"`
	PrimaryColor string `json:"primary_color,omitempty"`
	TextColor    string `json:"text_color,omitempty"`
}

// Match is a fixture as returned by /matches. Only the fields used for
// rendering are decoded, but the element it was decoded from is kept and
// re-encoded unchanged, so views that emit JSON pass every upstream field
// through.
type Match struct {
	Date        string       `json:"date,omitempty"`
	Time        string       `json:"time,omitempty"`
	SportID     int64        `json:"sport_id,omitempty"`
	HomeTeam    *Team        `json:"home_team,omitempty"`
	AwayTeam    *Team        `json:"away_team,omitempty"`
	Competition *Competition `json:"competition,omitempty"`
	Channels    []Channel    `json:"channels,omitempty"`

	raw []byte
}

// matchFields has Match's fields without its JSON methods.
type matchFields Match

func (m *Match) UnmarshalJSON(data []byte) error {
	var fields matchFields
	if err := sonic.Unmarshal(data, &fields); err != nil {
		return err
	}
	*m = Match(fields)
	m.raw = append([]byte(nil), data...)
	return nil
}

// MarshalJSON emits the upstream element when m was decoded, and the
// rendered fields otherwise.
func (m Match) MarshalJSON() ([]byte, error) {
	if len(m.raw) > 0 {
		return append([]byte(nil), m.raw...), nil
	}
	return sonic.Marshal(matchFields(m))
}

// Title renders "Home vs Away". A missing home team shows as TBD and a
// missing away team is omitted.
func (m Match) Title() string {
	home := "TBD"
	if m.HomeTeam != nil && strings.TrimSpace(m.HomeTeam.Name) != "" {
		home = m.HomeTeam.Name
	}
	if m.AwayTeam == nil || strings.TrimSpace(m.AwayTeam.Name) == "" {
		return home
	}
	return home + " vs " + m.AwayTeam.Name
}

func (m Match) CompetitionName() string {
	if m.Competition == nil {
		return ""
	}
	return m.Competition.Name
}

// FilterQuery is the full filter state for one match lookup.
type FilterQuery struct {
	Date           string
	SportIDs       []int64
	CountryIDs     []int64
	CompetitionIDs []int64
	BroadcasterIDs []int64
}

// Normalized returns a copy whose id lists are sorted ascending without
// duplicates, so equal selections always produce equal keys.
func (q FilterQuery) Normalized() FilterQuery {
	return FilterQuery{
		Date:           q.Date,
		SportIDs:       sortedIDs(q.SportIDs),
		CountryIDs:     sortedIDs(q.CountryIDs),
		CompetitionIDs: sortedIDs(q.CompetitionIDs),
		BroadcasterIDs: sortedIDs(q.BroadcasterIDs),
	}
}

// WithDate returns q for another date.
func (q FilterQuery) WithDate(date string) FilterQuery {
	q.Date = date
	return q
}

func sortedIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
