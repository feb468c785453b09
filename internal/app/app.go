package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/riskibarqy/whereismatch/external/footyapi"
	"github.com/riskibarqy/whereismatch/internal/config"
	"github.com/riskibarqy/whereismatch/internal/domain/catalog"
	"github.com/riskibarqy/whereismatch/internal/domain/schedule"
	"github.com/riskibarqy/whereismatch/internal/domain/selection"
	"github.com/riskibarqy/whereismatch/internal/infrastructure/selectionstore/bolt"
	"github.com/riskibarqy/whereismatch/internal/infrastructure/selectionstore/memory"
	"github.com/riskibarqy/whereismatch/internal/observability"
	"github.com/riskibarqy/whereismatch/internal/platform/cache"
	"github.com/riskibarqy/whereismatch/internal/platform/logging"
	"github.com/riskibarqy/whereismatch/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

// App owns every long-lived component of one browser session: the query
// cache, the pending-request table, the selection store and the optional
// observability exporters.
type App struct {
	Config       config.Config
	Logger       *logging.Logger
	Registry     *prometheus.Registry
	Metrics      *observability.Metrics
	Orchestrator *usecase.FilterOrchestrator
	Prefetcher   *usecase.Prefetcher

	closers []func(context.Context) error
}

// Options overrides pieces of the wiring, mainly for tests.
type Options struct {
	// InitialDate seeds the date cursor. Invalid or empty means today.
	InitialDate string
	// Store replaces the configured selection store.
	Store selection.Repository
}

func New(cfg config.Config, logger *logging.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	a := &App{Config: cfg, Logger: logger}

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init uptrace: %w", err)
	}
	a.onClose(shutdownTracing)
	if cfg.UptraceEnabled && strings.TrimSpace(cfg.UptraceDSN) != "" {
		logger = logger.WithMirror(observability.NewLogMirror(cfg.ServiceVersion))
		a.Logger = logger
	}

	stopProfiling, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		_ = a.Close(context.Background())
		return nil, fmt.Errorf("init pyroscope: %w", err)
	}
	a.onClose(func(context.Context) error { return stopProfiling() })

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.Metrics = observability.NewMetrics(a.Registry)

	if srv := observability.StartDebugServer(cfg.DebugAddr, a.Registry, logger); srv != nil {
		a.onClose(func(context.Context) error {
			return observability.StopDebugServer(srv, logger, shutdownTimeout)
		})
	}

	store := opts.Store
	if store == nil {
		store, err = a.openStore()
		if err != nil {
			_ = a.Close(context.Background())
			return nil, err
		}
	}

	source, configErr := newSource(cfg, logger, a.Metrics)

	queryCache, err := cache.NewQueryCache[[]schedule.Match](cfg.CacheCapacity, a.Metrics)
	if err != nil {
		_ = a.Close(context.Background())
		return nil, fmt.Errorf("build query cache: %w", err)
	}

	a.Prefetcher, err = usecase.NewPrefetcher(usecase.PrefetcherConfig{
		Workers:   cfg.PrefetchWorkers,
		PerSecond: cfg.PrefetchRate,
		Logger:    logger.Named("prefetch"),
		OnDrop:    a.Metrics.PrefetchDropped,
	})
	if err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}
	a.onClose(func(context.Context) error {
		a.Prefetcher.Close()
		return nil
	})

	a.Orchestrator, err = usecase.NewFilterOrchestrator(usecase.OrchestratorConfig{
		Source:     source,
		Store:      store,
		Cursor:     schedule.NewDateCursor(cfg.Location, opts.InitialDate),
		Matches:    cache.NewCoalescer(queryCache, a.Metrics),
		Prefetcher: a.Prefetcher,
		WindowDays: cfg.MatchWindowDays,
		ConfigErr:  configErr,
		Logger:     logger.Named("orchestrator"),
	})
	if err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}

	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close(ctx context.Context) error {
	var errs error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = crerr.CombineErrors(errs, err)
		}
	}
	a.closers = nil
	return errs
}

func (a *App) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

func (a *App) openStore() (selection.Repository, error) {
	if a.Config.SelectionStorePath == "" {
		a.Logger.Info("selection store in memory")
		return memory.NewStore(), nil
	}

	store, err := bolt.Open(a.Config.SelectionStorePath, a.Logger.Named("selectionstore"))
	if err != nil {
		return nil, fmt.Errorf("open selection store: %w", err)
	}
	a.onClose(func(context.Context) error { return store.Close() })
	return store, nil
}

// newSource builds the API client. A missing endpoint or key is not fatal for
// construction: it is returned as the configuration error the orchestrator
// surfaces as status.
func newSource(cfg config.Config, logger *logging.Logger, metrics *observability.Metrics) (catalog.Source, error) {
	if !cfg.APIConfigured() {
		return nil, crerr.Mark(crerr.New("API_URL and API_KEY are required"), usecase.ErrConfiguration)
	}

	client, err := footyapi.NewClient(footyapi.ClientConfig{
		BaseURL:        cfg.APIURL,
		APIKey:         cfg.APIKey,
		Timeout:        cfg.APITimeout,
		MaxRetries:     cfg.APIMaxRetries,
		Logger:         logger.Named("footyapi"),
		Recorder:       metrics,
		CircuitBreaker: cfg.APICircuit,
	})
	if err != nil {
		return nil, err
	}
	metrics.WatchCircuit(client.BreakerState)
	return client, nil
}

// NewLogger builds the process logger. With LOG_FILE set it appends JSON to
// that file, otherwise it writes to fallback. The returned close function
// flushes and closes the file.
func NewLogger(cfg config.Config, fallback io.Writer) (*logging.Logger, func() error, error) {
	if cfg.LogFile == "" {
		logger := logging.NewJSON(cfg.LogLevel, fallback)
		return logger, logger.Sync, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := logging.NewJSON(cfg.LogLevel, f)
	return logger, func() error {
		_ = logger.Sync()
		return f.Close()
	}, nil
}
