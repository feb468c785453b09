package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	sonic "github.com/bytedance/sonic"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/riskibarqy/whereismatch/internal/app"
	"github.com/riskibarqy/whereismatch/internal/config"
	"github.com/riskibarqy/whereismatch/internal/domain/schedule"
	"github.com/riskibarqy/whereismatch/internal/tui"
	"github.com/riskibarqy/whereismatch/internal/usecase"
)

var version = "dev"

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	dateFlag := flag.String("date", "", "Date to open in YYYY-MM-DD format (default today)")
	jsonFlag := flag.Bool("json", false, "Print matches as JSON (list only)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.Usage = printUsage
	flag.Parse()

	if *versionFlag {
		fmt.Println(version)
		return
	}

	command := "browse"
	if flag.NArg() > 0 {
		command = strings.ToLower(strings.TrimSpace(flag.Arg(0)))
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.ServiceVersion == "dev" {
		cfg.ServiceVersion = version
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch command {
	case "browse":
		err = runBrowse(ctx, cfg, *dateFlag)
	case "list":
		err = runList(ctx, cfg, *dateFlag, *jsonFlag, os.Stdout)
	case "serve":
		err = runServe(ctx, cfg, *dateFlag)
	default:
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runBrowse(ctx context.Context, cfg config.Config, date string) error {
	// The screen belongs to the UI; logs only go to LOG_FILE.
	logger, closeLogger, err := app.NewLogger(cfg, io.Discard)
	if err != nil {
		return err
	}
	defer func() { _ = closeLogger() }()

	a, err := app.New(cfg, logger, app.Options{InitialDate: date})
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer closeApp(a)

	program := tea.NewProgram(tui.NewModel(ctx, a.Orchestrator), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

// runList loads the persisted filters once and prints the matches for date.
func runList(ctx context.Context, cfg config.Config, date string, asJSON bool, out io.Writer) error {
	logger, closeLogger, err := app.NewLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = closeLogger() }()

	a, err := app.New(cfg, logger, app.Options{InitialDate: date})
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer closeApp(a)

	if err := a.Orchestrator.Init(ctx); err != nil {
		return fmt.Errorf("%s", usecase.StatusMessage(err))
	}
	snap := a.Orchestrator.Snapshot()

	if asJSON {
		payload, err := sonic.Marshal(snap.Matches)
		if err != nil {
			return fmt.Errorf("encode matches: %w", err)
		}
		_, err = fmt.Fprintln(out, string(payload))
		return err
	}

	_, err = io.WriteString(out, formatList(snap))
	return err
}

// runServe exposes the browser session over the local JSON API until ctx is
// cancelled.
func runServe(ctx context.Context, cfg config.Config, date string) error {
	logger, closeLogger, err := app.NewLogger(cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer func() { _ = closeLogger() }()

	a, err := app.New(cfg, logger, app.Options{InitialDate: date})
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer closeApp(a)

	// A missing configuration is already the session status; keep serving so
	// clients can read it.
	if err := a.Orchestrator.Init(ctx); err != nil {
		logger.Warn("initial load failed", "error", err)
	}

	srv, err := a.HTTPServer()
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("http server stopped")
	return nil
}

func formatList(snap usecase.Snapshot) string {
	var b strings.Builder
	b.WriteString(snap.Banner)
	b.WriteString("\n")
	if len(snap.Matches) == 0 {
		b.WriteString(usecase.EmptyMatchesMessage)
		b.WriteString("\n")
		return b.String()
	}
	for _, match := range snap.Matches {
		b.WriteString(formatMatchLine(match))
		b.WriteString("\n")
	}
	b.WriteString(snap.Status)
	b.WriteString("\n")
	return b.String()
}

func formatMatchLine(match schedule.Match) string {
	parts := make([]string, 0, 4)
	if match.Time != "" {
		parts = append(parts, match.Time)
	}
	parts = append(parts, match.Title())
	if name := match.CompetitionName(); name != "" {
		parts = append(parts, "("+name+")")
	}
	if len(match.Channels) > 0 {
		names := make([]string, 0, len(match.Channels))
		for _, ch := range match.Channels {
			names = append(names, ch.Name)
		}
		parts = append(parts, "["+strings.Join(names, ", ")+"]")
	}
	return strings.Join(parts, "  ")
}

func closeApp(a *app.App) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Close(ctx); err != nil {
		a.Logger.Error("shutdown failed", "error", err)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `whereismatch %s

Usage:
  whereismatch [flags]          open the schedule browser
  whereismatch [flags] list     print the matches for the saved filters
  whereismatch [flags] serve    serve the browser session as a local JSON API

Flags:
`, version)
	flag.PrintDefaults()
}
