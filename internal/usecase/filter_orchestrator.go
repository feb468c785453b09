package usecase

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	crerr "github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/whereismatch/internal/domain/catalog"
	"github.com/riskibarqy/whereismatch/internal/domain/schedule"
	"github.com/riskibarqy/whereismatch/internal/domain/selection"
	"github.com/riskibarqy/whereismatch/internal/platform/cache"
	"github.com/riskibarqy/whereismatch/internal/platform/logging"
	"github.com/riskibarqy/whereismatch/internal/platform/params"
)

const (
	StatusLoadingFilters = "Loading filters..."
	StatusLoadingMatches = "Loading matches..."
	EmptyMatchesMessage  = "No matches found for these filters."
)

// EventKind identifies an outbound notification.
type EventKind string

const (
	EventSelection EventKind = "selection"
	EventDate      EventKind = "date"
	EventMatches   EventKind = "matches"
	EventStatus    EventKind = "status"
)

// Event is delivered to view subscribers. Only the fields relevant to Kind
// are set.
type Event struct {
	Kind      EventKind
	Dimension catalog.Dimension
	Selected  []int64
	Date      string
	Banner    string
	Matches   []schedule.Match
	Status    string
}

// Snapshot is the presentable state at one instant.
type Snapshot struct {
	Date       string
	Banner     string
	Status     string
	Matches    []schedule.Match
	Selections map[catalog.Dimension][]int64
}

type OrchestratorConfig struct {
	Source  catalog.Source
	Store   selection.Repository
	Cursor  *schedule.DateCursor
	Matches *cache.Coalescer[[]schedule.Match]
	// Prefetcher runs adjacent-date warmups. Nil runs them on a plain
	// goroutine.
	Prefetcher *Prefetcher
	WindowDays int
	// ConfigErr is set when the API client could not be built. Init then
	// reports it and loads nothing.
	ConfigErr error
	Logger    *logging.Logger
}

// FilterOrchestrator owns the four filter selections and the date cursor,
// keeps the competition list consistent with sport and country picks, and
// resolves match queries through the coalescing cache. Only the most recent
// match query may update the presented matches.
type FilterOrchestrator struct {
	source     catalog.Source
	store      selection.Repository
	cursor     *schedule.DateCursor
	matches    *cache.Coalescer[[]schedule.Match]
	prefetcher *Prefetcher
	windowDays int
	configErr  error
	logger     *logging.Logger
	sets       map[catalog.Dimension]*selection.Set

	// compGen numbers competition refreshes; only the newest may apply its
	// result. compMu serializes the check with SetItems.
	compGen atomic.Uint64
	compMu  sync.Mutex

	mu         sync.Mutex
	latestKey  string
	currentKey string
	current    []schedule.Match
	status     string

	listenersMu sync.Mutex
	listeners   map[int]func(Event)
	nextID      int
}

func NewFilterOrchestrator(cfg OrchestratorConfig) (*FilterOrchestrator, error) {
	if cfg.Cursor == nil {
		return nil, crerr.New("date cursor is required")
	}
	if cfg.Matches == nil {
		return nil, crerr.New("match coalescer is required")
	}
	if cfg.Store == nil {
		return nil, crerr.New("selection store is required")
	}
	if cfg.Source == nil && cfg.ConfigErr == nil {
		cfg.ConfigErr = crerr.Mark(crerr.New("api source is not configured"), ErrConfiguration)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	windowDays := cfg.WindowDays
	if windowDays < 1 {
		windowDays = 1
	}

	o := &FilterOrchestrator{
		source:     cfg.Source,
		store:      cfg.Store,
		cursor:     cfg.Cursor,
		matches:    cfg.Matches,
		prefetcher: cfg.Prefetcher,
		windowDays: windowDays,
		configErr:  cfg.ConfigErr,
		logger:     logger,
		sets:       make(map[catalog.Dimension]*selection.Set, 4),
		listeners:  make(map[int]func(Event)),
	}

	for _, dim := range catalog.Dimensions() {
		set := selection.NewSet(dim)
		set.Subscribe(func(change selection.Change) {
			o.emit(Event{Kind: EventSelection, Dimension: change.Dimension, Selected: change.Selected})
		})
		o.sets[dim] = set
	}

	o.cursor.SetWarmer(o)
	o.cursor.Subscribe(func(date string) {
		o.emit(Event{Kind: EventDate, Date: date, Banner: schedule.Banner(date, o.cursor.Location())})
	})

	return o, nil
}

// Set returns the selection for dim.
func (o *FilterOrchestrator) Set(dim catalog.Dimension) *selection.Set {
	return o.sets[dim]
}

func (o *FilterOrchestrator) Cursor() *schedule.DateCursor {
	return o.cursor
}

// Init loads the filter universes and then the matches for the current date.
// A configuration problem becomes the persistent status.
func (o *FilterOrchestrator) Init(ctx context.Context) error {
	ctx, span := startOperationSpan(ctx, "Init")
	defer span.End()

	if o.configErr != nil {
		o.setStatus(ConfigurationStatus)
		o.logger.WarnContext(ctx, "api not configured", "error", o.configErr)
		return o.configErr
	}

	if err := o.LoadFilters(ctx); err != nil {
		o.fail(ctx, "load filters failed", err)
		return err
	}
	return o.LoadMatches(ctx)
}

// LoadFilters fetches sports, countries and broadcasters concurrently, seeds
// the selections from the store and refreshes competitions.
func (o *FilterOrchestrator) LoadFilters(ctx context.Context) error {
	ctx, span := startLoadSpan(ctx, "LoadFilters")
	defer span.End()

	if err := o.ready(); err != nil {
		return err
	}
	o.setStatus(StatusLoadingFilters)

	var sports, countries, broadcasters []catalog.Item
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		items, err := o.source.ListSports(ctx)
		sports = items
		return err
	})
	p.Go(func(ctx context.Context) error {
		items, err := o.source.ListCountries(ctx)
		countries = items
		return err
	})
	p.Go(func(ctx context.Context) error {
		items, err := o.source.ListBroadcasters(ctx)
		broadcasters = items
		return err
	})
	if err := p.Wait(); err != nil {
		return err
	}

	storedSports := o.store.Load(ctx, catalog.DimensionSports)
	if len(storedSports) == 0 {
		storedSports = catalog.IDs(sports)
	}
	o.sets[catalog.DimensionSports].SetItems(sports, true, storedSports)
	o.sets[catalog.DimensionCountries].SetItems(countries, false, o.store.Load(ctx, catalog.DimensionCountries))
	o.sets[catalog.DimensionBroadcasters].SetItems(broadcasters, false, o.store.Load(ctx, catalog.DimensionBroadcasters))

	if _, err := o.loadCompetitions(ctx); err != nil {
		return err
	}
	o.setStatus("")
	return nil
}

// LoadCompetitions refetches the competitions available for the selected
// sports and countries and prunes stale competition picks. A response that
// arrives after a newer refresh started is dropped.
func (o *FilterOrchestrator) LoadCompetitions(ctx context.Context) error {
	_, err := o.loadCompetitions(ctx)
	return err
}

// loadCompetitions reports whether its result was applied.
func (o *FilterOrchestrator) loadCompetitions(ctx context.Context) (bool, error) {
	ctx, span := startLoadSpan(ctx, "LoadCompetitions")
	defer span.End()

	if err := o.ready(); err != nil {
		return false, err
	}

	gen := o.compGen.Add(1)
	query := params.New().
		Add(catalog.DimensionSports.QueryParam(), o.sets[catalog.DimensionSports].SelectedIDs()).
		Add(catalog.DimensionCountries.QueryParam(), o.sets[catalog.DimensionCountries].SelectedIDs())

	items, err := o.source.ListCompetitions(ctx, query)

	o.compMu.Lock()
	defer o.compMu.Unlock()
	if o.compGen.Load() != gen {
		o.logger.DebugContext(ctx, "discarding superseded competitions", "query", params.Encode(query))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	o.sets[catalog.DimensionCompetitions].SetItems(items, true, o.store.Load(ctx, catalog.DimensionCompetitions))
	return true, nil
}

// LoadMatches resolves the current query. A result that arrives after a newer
// query was requested is dropped; a failure keeps the previous matches and
// shows the error as status.
func (o *FilterOrchestrator) LoadMatches(ctx context.Context) error {
	if err := o.ready(); err != nil {
		return err
	}

	query := o.CurrentQuery()
	key := o.CacheKey(query)
	ctx, span := startLoadSpan(ctx, "LoadMatches", attribute.String("match.query_key", key))
	defer span.End()

	o.mu.Lock()
	o.latestKey = key
	o.status = StatusLoadingMatches
	o.mu.Unlock()
	o.emit(Event{Kind: EventStatus, Status: StatusLoadingMatches})

	matches, err := o.resolve(ctx, query)

	o.mu.Lock()
	if o.latestKey != key {
		o.mu.Unlock()
		o.logger.DebugContext(ctx, "discarding superseded match result", "key", key)
		return nil
	}
	if err != nil {
		o.status = StatusMessage(err)
		status := o.status
		o.mu.Unlock()
		o.logger.WarnContext(ctx, "load matches failed", "key", key, "error", err)
		o.emit(Event{Kind: EventStatus, Status: status})
		return err
	}
	o.current = slices.Clone(matches)
	o.currentKey = key
	o.status = MatchCountStatus(len(matches))
	current := slices.Clone(o.current)
	status := o.status
	o.mu.Unlock()

	o.emit(Event{Kind: EventMatches, Matches: current})
	o.emit(Event{Kind: EventStatus, Status: status})
	return nil
}

// Warm resolves the current filters for date without presenting the result.
func (o *FilterOrchestrator) Warm(ctx context.Context, date string) error {
	if err := o.ready(); err != nil {
		return err
	}
	_, err := o.resolve(ctx, o.CurrentQuery().WithDate(date))
	if err != nil {
		o.logger.DebugContext(ctx, "warm failed", "date", date, "error", err)
	}
	return err
}

// Prefetch warms the date dir days from the current one in the background.
// It never reports errors.
func (o *FilterOrchestrator) Prefetch(ctx context.Context, dir int) {
	if o.ready() != nil {
		return
	}
	job := o.cursor.PrefetchJob(dir)
	if o.prefetcher != nil {
		o.prefetcher.Submit(ctx, job)
		return
	}
	go job(ctx)
}

// Toggle flips id in dim, persists the selection and refreshes what depends
// on it.
func (o *FilterOrchestrator) Toggle(ctx context.Context, dim catalog.Dimension, id int64) error {
	set, err := o.set(dim)
	if err != nil {
		return err
	}
	ctx, span := startOperationSpan(ctx, "Toggle", dimensionAttr(dim), attribute.Int64("filter.id", id))
	defer span.End()

	set.Toggle(id)
	return o.afterSelectionChange(ctx, dim)
}

// SelectIfAbsent adds id to dim without ever removing it.
func (o *FilterOrchestrator) SelectIfAbsent(ctx context.Context, dim catalog.Dimension, id int64) error {
	set, err := o.set(dim)
	if err != nil {
		return err
	}
	ctx, span := startOperationSpan(ctx, "SelectIfAbsent", dimensionAttr(dim), attribute.Int64("filter.id", id))
	defer span.End()

	set.SelectIfAbsent(id)
	return o.afterSelectionChange(ctx, dim)
}

// Clear empties dim.
func (o *FilterOrchestrator) Clear(ctx context.Context, dim catalog.Dimension) error {
	set, err := o.set(dim)
	if err != nil {
		return err
	}
	ctx, span := startOperationSpan(ctx, "Clear", dimensionAttr(dim))
	defer span.End()

	set.Clear()
	return o.afterSelectionChange(ctx, dim)
}

// ShiftDate moves the cursor dir days and loads the matches for the new date.
func (o *FilterOrchestrator) ShiftDate(ctx context.Context, dir int) error {
	ctx, span := startOperationSpan(ctx, "ShiftDate", attribute.Int("date.shift", dir))
	defer span.End()

	o.cursor.Shift(dir)
	return o.LoadMatches(ctx)
}

// SetDate jumps to date, or today when date is invalid, and loads matches.
func (o *FilterOrchestrator) SetDate(ctx context.Context, date string) error {
	ctx, span := startOperationSpan(ctx, "SetDate", attribute.String("date.input", date))
	defer span.End()

	if applied, err := o.cursor.Set(date); err != nil {
		o.logger.InfoContext(ctx, "invalid date, using today", "input", date, "date", applied)
	}
	return o.LoadMatches(ctx)
}

// CurrentQuery captures the filter state with sorted ids.
func (o *FilterOrchestrator) CurrentQuery() schedule.FilterQuery {
	return schedule.FilterQuery{
		Date:           o.cursor.Date(),
		SportIDs:       o.sets[catalog.DimensionSports].SelectedIDs(),
		CountryIDs:     o.sets[catalog.DimensionCountries].SelectedIDs(),
		CompetitionIDs: o.sets[catalog.DimensionCompetitions].SelectedIDs(),
		BroadcasterIDs: o.sets[catalog.DimensionBroadcasters].SelectedIDs(),
	}.Normalized()
}

// CacheKey is the canonical cache key of q. Equal filter states always
// produce equal keys.
func (o *FilterOrchestrator) CacheKey(q schedule.FilterQuery) string {
	q = q.Normalized()
	return params.Encode(params.New().
		Add("date", q.Date).
		Add(catalog.DimensionSports.QueryParam(), q.SportIDs).
		Add(catalog.DimensionCountries.QueryParam(), q.CountryIDs).
		Add(catalog.DimensionCompetitions.QueryParam(), q.CompetitionIDs).
		Add(catalog.DimensionBroadcasters.QueryParam(), q.BroadcasterIDs))
}

// RequestParams builds the /matches query for q.
func (o *FilterOrchestrator) RequestParams(q schedule.FilterQuery) params.Params {
	q = q.Normalized()
	return params.New().
		Add("start_date", q.Date).
		Add("end_date", schedule.WindowEnd(q.Date, o.windowDays, o.cursor.Location())).
		Add(catalog.DimensionSports.QueryParam(), q.SportIDs).
		Add(catalog.DimensionCountries.QueryParam(), q.CountryIDs).
		Add(catalog.DimensionCompetitions.QueryParam(), q.CompetitionIDs).
		Add(catalog.DimensionBroadcasters.QueryParam(), q.BroadcasterIDs)
}

func (o *FilterOrchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	matches := slices.Clone(o.current)
	status := o.status
	o.mu.Unlock()

	selections := make(map[catalog.Dimension][]int64, len(o.sets))
	for dim, set := range o.sets {
		selections[dim] = set.SelectedIDs()
	}
	return Snapshot{
		Date:       o.cursor.Date(),
		Banner:     o.cursor.Banner(),
		Status:     status,
		Matches:    matches,
		Selections: selections,
	}
}

// Subscribe registers fn for outbound events and returns its cancel function.
// Events are delivered synchronously on the goroutine that caused them.
func (o *FilterOrchestrator) Subscribe(fn func(Event)) func() {
	if fn == nil {
		return func() {}
	}
	o.listenersMu.Lock()
	id := o.nextID
	o.nextID++
	o.listeners[id] = fn
	o.listenersMu.Unlock()

	return func() {
		o.listenersMu.Lock()
		delete(o.listeners, id)
		o.listenersMu.Unlock()
	}
}

// MatchCountStatus renders the status shown after a successful load.
func MatchCountStatus(n int) string {
	return fmt.Sprintf("Showing %d match(es).", n)
}

func (o *FilterOrchestrator) afterSelectionChange(ctx context.Context, dim catalog.Dimension) error {
	if err := o.store.Save(ctx, dim, o.sets[dim].SelectedIDs()); err != nil {
		o.logger.WarnContext(ctx, "persist selection failed", "dimension", dim, "error", err)
	}
	if err := o.ready(); err != nil {
		return err
	}

	switch dim {
	case catalog.DimensionSports, catalog.DimensionCountries:
		applied, err := o.loadCompetitions(ctx)
		if err != nil {
			o.fail(ctx, "reload competitions failed", err)
			return err
		}
		if !applied {
			// A newer refresh owns the follow-up match load.
			return nil
		}
	}
	return o.LoadMatches(ctx)
}

func (o *FilterOrchestrator) resolve(ctx context.Context, q schedule.FilterQuery) ([]schedule.Match, error) {
	return o.matches.Resolve(ctx, o.CacheKey(q), func(ctx context.Context) ([]schedule.Match, error) {
		return o.source.ListMatches(ctx, o.RequestParams(q))
	})
}

func (o *FilterOrchestrator) set(dim catalog.Dimension) (*selection.Set, error) {
	set, ok := o.sets[dim]
	if !ok {
		return nil, crerr.Mark(crerr.Newf("unknown dimension %q", dim), ErrInvalidInput)
	}
	return set, nil
}

func (o *FilterOrchestrator) ready() error {
	if o.configErr != nil {
		return o.configErr
	}
	return nil
}

func (o *FilterOrchestrator) fail(ctx context.Context, msg string, err error) {
	o.logger.WarnContext(ctx, msg, "error", err)
	o.setStatus(StatusMessage(err))
}

func (o *FilterOrchestrator) setStatus(status string) {
	o.mu.Lock()
	o.status = status
	o.mu.Unlock()
	o.emit(Event{Kind: EventStatus, Status: status})
}

func (o *FilterOrchestrator) emit(event Event) {
	o.listenersMu.Lock()
	listeners := make([]func(Event), 0, len(o.listeners))
	for id := 0; id < o.nextID; id++ {
		if fn, ok := o.listeners[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	o.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(event)
	}
}
