package catalog

import (
	"context"

	"github.com/riskibarqy/whereismatch/internal/domain/schedule"
	"github.com/riskibarqy/whereismatch/internal/platform/params"
)

// Source exposes the remote catalog and schedule reads.
type Source interface {
	ListSports(ctx context.Context) ([]Item, error)
	ListCountries(ctx context.Context) ([]Item, error)
	ListCompetitions(ctx context.Context, query params.Params) ([]Item, error)
	ListBroadcasters(ctx context.Context) ([]Item, error)
	ListMatches(ctx context.Context, query params.Params) ([]schedule.Match, error)
}
