package catalog

import (
	"strings"
)

// Item is one selectable filter option. Identity is ID; Name is display and
// search text only.
type Item struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Dimension names one of the four filter axes.
type Dimension string

const (
	DimensionSports       Dimension = "sports"
	DimensionCountries    Dimension = "countries"
	DimensionCompetitions Dimension = "competitions"
	DimensionBroadcasters Dimension = "broadcasters"
)

// Dimensions lists every axis in display order.
func Dimensions() []Dimension {
	return []Dimension{
		DimensionSports,
		DimensionCountries,
		DimensionCompetitions,
		DimensionBroadcasters,
	}
}

// StorageKey is the persisted-selection key for the dimension.
func (d Dimension) StorageKey() string {
	switch d {
	case DimensionSports:
		return "simplifiedSports"
	case DimensionCountries:
		return "simplifiedCountries"
	case DimensionCompetitions:
		return "simplifiedCompetitions"
	case DimensionBroadcasters:
		return "simplifiedBroadcasters"
	default:
		return ""
	}
}

// QueryParam is the request parameter carrying the dimension's ids.
func (d Dimension) QueryParam() string {
	switch d {
	case DimensionSports:
		return "sport_ids"
	case DimensionCountries:
		return "country_ids"
	case DimensionCompetitions:
		return "competition_ids"
	case DimensionBroadcasters:
		return "broadcaster_ids"
	default:
		return ""
	}
}

// Title is the panel heading used by views.
func (d Dimension) Title() string {
	if d == "" {
		return ""
	}
	return strings.ToUpper(string(d[:1])) + string(d[1:])
}

func (d Dimension) Valid() bool {
	return d.StorageKey() != ""
}

// ParseDimension accepts the dimension name in any case.
func ParseDimension(value string) (Dimension, bool) {
	d := Dimension(strings.ToLower(strings.TrimSpace(value)))
	return d, d.Valid()
}

// IDs returns the ids of items in order.
func IDs(items []Item) []int64 {
	out := make([]int64, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}
