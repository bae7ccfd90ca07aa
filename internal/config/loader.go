package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"edenhttp/types"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type config struct {
	httpPort string

	schemaPath string
	apiTitle   string

	maxHeaderBytes int
	maxBodyBytes   int64
	readTimeout    time.Duration
	handlerTimeout time.Duration

	rateLimit float64
	rateBurst int

	metricsEnabled bool
	metricsPort    string

	pprofEnabled bool
	pprofPort    string

	logLevel  zerolog.Level
	logFormat string
}

func parse() (*config, error) {
	httpPort := getenv("HTTP_PORT", "8080")

	schemaPath := getenv("SCHEMA_PATH", types.DefaultSchemaPath)
	if !strings.HasPrefix(schemaPath, "/") {
		return nil, fmt.Errorf("SCHEMA_PATH must start with /")
	}
	apiTitle := getenv("API_TITLE", "edenhttp")

	maxHeaderBytes := parseMaxHeaderBytes()
	maxBodyBytes, err := getenvInt64("MAX_BODY_BYTES", 1<<20)
	if err != nil || maxBodyBytes < 0 {
		return nil, fmt.Errorf("invalid MAX_BODY_BYTES value")
	}

	readTimeout, err := getenvDuration("READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	handlerTimeout, err := getenvDuration("HANDLER_TIMEOUT", 0)
	if err != nil {
		return nil, err
	}

	rateLimit, rateBurst, err := parseRateLimit()
	if err != nil {
		return nil, err
	}

	metricsEnabled := getenvBool("METRICS_ENABLED", false)
	metricsPort := getenv("METRICS_PORT", "9090")

	pprofEnabled := getenvBool("PPROF_ENABLED", false)
	pprofPort := getenv("PPROF_PORT", "6060")

	logLevel, err := parseLogLevel()
	if err != nil {
		return nil, err
	}
	logFormat := strings.ToLower(getenv("LOG_FORMAT", "json"))
	if logFormat != "json" && logFormat != "console" {
		return nil, fmt.Errorf("invalid LOG_FORMAT value")
	}

	return &config{
		httpPort:       httpPort,
		schemaPath:     schemaPath,
		apiTitle:       apiTitle,
		maxHeaderBytes: maxHeaderBytes,
		maxBodyBytes:   maxBodyBytes,
		readTimeout:    readTimeout,
		handlerTimeout: handlerTimeout,
		rateLimit:      rateLimit,
		rateBurst:      rateBurst,
		metricsEnabled: metricsEnabled,
		metricsPort:    metricsPort,
		pprofEnabled:   pprofEnabled,
		pprofPort:      pprofPort,
		logLevel:       logLevel,
		logFormat:      logFormat,
	}, nil
}

func loadEnvFile() error {
	if _, err := os.Stat(".env"); err == nil {
		return godotenv.Load(".env")
	}
	return nil
}

func parseMaxHeaderBytes() int {
	raw := getenv("MAX_HEADER_BYTES", "65536")
	size, err := strconv.Atoi(raw)
	if err != nil || size < 4096 || size > 1048576 {
		log.Warn().Str("value", raw).Msg("invalid MAX_HEADER_BYTES, falling back to 4096")
		return 4096
	}
	return size
}

// parseRateLimit reads RATE_LIMIT (connections per second, 0 disables) and
// RATE_BURST. The burst defaults to the rounded-up rate.
func parseRateLimit() (float64, int, error) {
	raw := getenv("RATE_LIMIT", "0")
	limit, err := strconv.ParseFloat(raw, 64)
	if err != nil || limit < 0 {
		return 0, 0, fmt.Errorf("invalid RATE_LIMIT value")
	}
	if limit == 0 {
		return 0, 0, nil
	}

	defBurst := int(limit)
	if float64(defBurst) < limit {
		defBurst++
	}
	burst, err := strconv.Atoi(getenv("RATE_BURST", strconv.Itoa(defBurst)))
	if err != nil || burst < 1 {
		return 0, 0, fmt.Errorf("invalid RATE_BURST value")
	}
	return limit, burst, nil
}

func parseLogLevel() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(getenv("LOG_LEVEL", "info")))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid LOG_LEVEL value: %w", err)
	}
	return level, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val == "true"
}

func getenvInt64(key string, def int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return def, nil
	}
	return strconv.ParseInt(val, 10, 64)
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return def, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s value", key)
	}
	return d, nil
}
