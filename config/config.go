// Package config loads the settings shared by the task service and the board client.
//
// Values come from, in decreasing precedence: command-line flags bound with BindFlags,
// environment variables, a .env file in the working directory, and the defaults below.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"KanbanService/store"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds every setting of the application.
type Config struct {
	Port int

	DB store.Config

	// RateLimit is requests per second; RateBurst the limiter's burst size.
	RateLimit float64
	RateBurst int

	LogLevel  string
	LogFormat string

	// APIURL is the base URL of the task service used by the board client.
	APIURL     string
	APITimeout time.Duration

	// RefetchOnMove reloads the board after every successful status update.
	RefetchOnMove    bool
	MaxInflightMoves int
}

var defaults = map[string]any{
	"port":        3000,
	"db_driver":   store.DriverMySQL,
	"db_username": "",
	"db_password": "",
	"db_address":  "127.0.0.1:3306",
	"db_name":     "taskdb",
	"db_path":     "kanban.db",
	"rate_limit":  2.0,
	"rate_burst":  20,
	"log_level":   "info",
	"log_format":  "json",
	"api_url":     "http://localhost:3000",
	"api_timeout": 5 * time.Second,

	"refetch_on_move":    true,
	"max_inflight_moves": 4,
}

// New returns a viper instance reading the environment with the defaults applied.
// envFiles are loaded first with godotenv; a missing file is not an error.
func New(envFiles ...string) (*viper.Viper, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v, nil
}

// BindFlags lets flags override the matching settings. A flag named "api-url"
// overrides API_URL.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if _, known := defaults[key]; !known {
			return
		}
		if bindErr := v.BindPFlag(key, f); bindErr != nil && err == nil {
			err = bindErr
		}
	})
	return err
}

// Load reads the settings out of v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port: v.GetInt("port"),
		DB: store.Config{
			Driver:   v.GetString("db_driver"),
			User:     v.GetString("db_username"),
			Password: v.GetString("db_password"),
			Address:  v.GetString("db_address"),
			Name:     v.GetString("db_name"),
			Path:     v.GetString("db_path"),
		},
		RateLimit:  v.GetFloat64("rate_limit"),
		RateBurst:  v.GetInt("rate_burst"),
		LogLevel:   v.GetString("log_level"),
		LogFormat:  v.GetString("log_format"),
		APIURL:     strings.TrimRight(v.GetString("api_url"), "/"),
		APITimeout: v.GetDuration("api_timeout"),

		RefetchOnMove:    v.GetBool("refetch_on_move"),
		MaxInflightMoves: v.GetInt("max_inflight_moves"),
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	if cfg.DB.Driver != store.DriverMySQL && cfg.DB.Driver != store.DriverSQLite {
		return nil, fmt.Errorf("invalid DB_DRIVER %q: want %s or %s", cfg.DB.Driver, store.DriverMySQL, store.DriverSQLite)
	}
	if cfg.RateLimit <= 0 || cfg.RateBurst < 1 {
		return nil, fmt.Errorf("invalid rate limit %v/s with burst %d", cfg.RateLimit, cfg.RateBurst)
	}
	if cfg.APITimeout <= 0 {
		return nil, fmt.Errorf("invalid API_TIMEOUT %s", cfg.APITimeout)
	}
	if cfg.MaxInflightMoves < 1 {
		return nil, fmt.Errorf("invalid MAX_INFLIGHT_MOVES %d", cfg.MaxInflightMoves)
	}
	return cfg, nil
}

// NewLogger builds the logrus logger described by the LOG_LEVEL and LOG_FORMAT settings.
func (c *Config) NewLogger() (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	log.SetLevel(level)
	switch c.LogFormat {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: want json or text", c.LogFormat)
	}
	return log, nil
}
