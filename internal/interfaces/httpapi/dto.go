package httpapi

import (
	"github.com/riskibarqy/whereismatch/internal/domain/catalog"
	"github.com/riskibarqy/whereismatch/internal/domain/schedule"
	"github.com/riskibarqy/whereismatch/internal/domain/selection"
	"github.com/riskibarqy/whereismatch/internal/usecase"
)

type setDateRequest struct {
	Date  *string `json:"date"`
	Shift *int    `json:"shift" validate:"omitempty,oneof=-1 1"`
}

type toggleFilterRequest struct {
	ID int64 `json:"id" validate:"required,gt=0"`
}

type commitSearchRequest struct {
	Search string `json:"search" validate:"required,max=100"`
}

type stateDTO struct {
	Date       string             `json:"date"`
	Banner     string             `json:"banner"`
	Status     string             `json:"status"`
	Matches    []schedule.Match   `json:"matches"`
	Selections map[string][]int64 `json:"selections"`
}

type filterOptionDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

type filterDTO struct {
	Dimension string            `json:"dimension"`
	Title     string            `json:"title"`
	Options   []filterOptionDTO `json:"options"`
}

func snapshotToDTO(snap usecase.Snapshot) stateDTO {
	matches := snap.Matches
	if matches == nil {
		matches = []schedule.Match{}
	}
	selections := make(map[string][]int64, len(snap.Selections))
	for _, dim := range catalog.Dimensions() {
		ids := snap.Selections[dim]
		if ids == nil {
			ids = []int64{}
		}
		selections[string(dim)] = ids
	}

	return stateDTO{
		Date:       snap.Date,
		Banner:     snap.Banner,
		Status:     snap.Status,
		Matches:    matches,
		Selections: selections,
	}
}

func filterToDTO(set *selection.Set, search string) filterDTO {
	options := make([]filterOptionDTO, 0)
	for item := range set.VisibleItems(search) {
		options = append(options, filterOptionDTO{
			ID:       item.ID,
			Name:     item.Name,
			Selected: set.Selected(item.ID),
		})
	}

	return filterDTO{
		Dimension: string(set.Dimension()),
		Title:     set.Dimension().Title(),
		Options:   options,
	}
}
