package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/whereismatch/internal/platform/logging"
	"github.com/riskibarqy/whereismatch/internal/platform/resilience"
)

const defaultSelectionStorePath = "~/.local/share/whereismatch/selections.db"

// Config stores runtime configuration for the browser.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       logging.Level
	LogFile        string

	APIURL        string
	APIKey        string
	APITimeout    time.Duration
	APIMaxRetries int
	APICircuit    resilience.CircuitBreakerConfig

	CacheCapacity   int
	MatchWindowDays int
	PrefetchWorkers int
	PrefetchRate    float64

	// SelectionStorePath is empty when selections live in memory only.
	SelectionStorePath string
	Location           *time.Location

	DebugAddr string

	// HTTPAddr and CORSAllowedOrigins only apply to the serve command.
	HTTPAddr           string
	CORSAllowedOrigins []string

	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

// APIConfigured reports whether both the endpoint and the key are set.
func (c Config) APIConfigured() bool {
	return strings.TrimSpace(c.APIURL) != "" && strings.TrimSpace(c.APIKey) != ""
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	apiTimeout, err := time.ParseDuration(getEnv("API_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse API_TIMEOUT: %w", err)
	}
	if apiTimeout <= 0 {
		return Config{}, fmt.Errorf("API_TIMEOUT must be > 0")
	}
	apiMaxRetries, err := getEnvAsInt("API_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse API_MAX_RETRIES: %w", err)
	}
	if apiMaxRetries < 0 || apiMaxRetries > 5 {
		return Config{}, fmt.Errorf("API_MAX_RETRIES must be between 0 and 5")
	}

	circuitEnabled, err := strconv.ParseBool(getEnv("API_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse API_CIRCUIT_ENABLED: %w", err)
	}
	circuitFailureCount, err := getEnvAsInt("API_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse API_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	circuitOpenTimeout, err := time.ParseDuration(getEnv("API_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse API_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	circuitHalfOpenMaxReq, err := getEnvAsInt("API_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse API_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	apiCircuit := resilience.CircuitBreakerConfig{
		Enabled:          circuitEnabled,
		FailureThreshold: circuitFailureCount,
		OpenTimeout:      circuitOpenTimeout,
		HalfOpenMaxReq:   circuitHalfOpenMaxReq,
	}
	if err := apiCircuit.Validate(); err != nil {
		return Config{}, fmt.Errorf("API_CIRCUIT_*: %w", err)
	}

	cacheCapacity, err := getEnvAsInt("CACHE_CAPACITY", 24)
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_CAPACITY: %w", err)
	}
	if cacheCapacity < 1 {
		return Config{}, fmt.Errorf("CACHE_CAPACITY must be >= 1")
	}
	windowDays, err := getEnvAsInt("MATCH_WINDOW_DAYS", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse MATCH_WINDOW_DAYS: %w", err)
	}
	if windowDays < 1 {
		return Config{}, fmt.Errorf("MATCH_WINDOW_DAYS must be >= 1")
	}
	prefetchWorkers, err := getEnvAsInt("PREFETCH_WORKERS", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse PREFETCH_WORKERS: %w", err)
	}
	if prefetchWorkers < 1 {
		return Config{}, fmt.Errorf("PREFETCH_WORKERS must be >= 1")
	}
	prefetchRate, err := strconv.ParseFloat(getEnv("PREFETCH_RATE", "4"), 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse PREFETCH_RATE: %w", err)
	}
	if prefetchRate <= 0 {
		return Config{}, fmt.Errorf("PREFETCH_RATE must be > 0")
	}

	storePath, err := resolveStorePath()
	if err != nil {
		return Config{}, fmt.Errorf("resolve SELECTION_STORE_PATH: %w", err)
	}

	location := time.Local
	if tz := strings.TrimSpace(getEnv("TIMEZONE", "")); tz != "" {
		location, err = time.LoadLocation(tz)
		if err != nil {
			return Config{}, fmt.Errorf("parse TIMEZONE: %w", err)
		}
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	corsAllowedOrigins := splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"))
	if len(corsAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	serviceName := strings.TrimSpace(getEnv("APP_SERVICE_NAME", "whereismatch"))

	return Config{
		AppEnv:         appEnv,
		ServiceName:    serviceName,
		ServiceVersion: strings.TrimSpace(getEnv("APP_SERVICE_VERSION", "dev")),
		LogLevel:       logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		LogFile:        strings.TrimSpace(getEnv("LOG_FILE", "")),

		APIURL:        strings.TrimRight(strings.TrimSpace(getEnv("API_URL", "")), "/"),
		APIKey:        strings.TrimSpace(getEnv("API_KEY", "")),
		APITimeout:    apiTimeout,
		APIMaxRetries: apiMaxRetries,
		APICircuit:    apiCircuit,

		CacheCapacity:   cacheCapacity,
		MatchWindowDays: windowDays,
		PrefetchWorkers: prefetchWorkers,
		PrefetchRate:    prefetchRate,

		SelectionStorePath: storePath,
		Location:           location,
		DebugAddr:          strings.TrimSpace(getEnv("DEBUG_ADDR", "")),
		HTTPAddr:           strings.TrimSpace(getEnv("APP_HTTP_ADDR", "127.0.0.1:8080")),
		CORSAllowedOrigins: corsAllowedOrigins,

		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAppName:           strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", serviceName)),
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}, nil
}

// resolveStorePath distinguishes an unset variable (default file) from one
// set to empty (memory only).
func resolveStorePath() (string, error) {
	raw, ok := os.LookupEnv("SELECTION_STORE_PATH")
	if !ok {
		raw = defaultSelectionStorePath
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	return expandHome(raw)
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	for _, item := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			return strings.Trim(strings.TrimSpace(parts[1]), "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
