// Command formi runs the BBQ Nation booking dialogue engine and its HTTP
// API.
package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/ku28/formi/internal/api"
	"github.com/ku28/formi/internal/catalog"
	"github.com/ku28/formi/internal/dialogue"
	"github.com/ku28/formi/internal/genai"
	"github.com/ku28/formi/internal/knowledge"
	"github.com/ku28/formi/internal/lockfile"
	"github.com/ku28/formi/internal/notify"
	"github.com/ku28/formi/internal/scheduler"
	"github.com/ku28/formi/internal/store"
	"github.com/ku28/formi/internal/util"
)

// Default configuration constants.
const (
	// DefaultAPIAddr is the default listen address.
	DefaultAPIAddr = ":8080"
)

// Config holds environment configuration.
type Config struct {
	APIAddr    string
	DBDriver   string
	DBDSN      string
	OpenAIKey  string
	TwilioSID  string
	SessionTTL string
}

func main() {
	config := loadEnvironmentConfig()
	initializeLogger()
	flags := parseCommandLineFlags(config)

	if *flags.dbDriver == "sqlite" {
		lock, err := lockfile.AcquireLock(filepath.Dir(*flags.dbDSN))
		if err != nil {
			slog.Error("Failed to lock state directory", "error", err)
			os.Exit(1)
		}
		defer lock.Release()
	}

	sessions, err := buildSessionStore(flags)
	if err != nil {
		slog.Error("Failed to initialize session store", "error", err)
		os.Exit(1)
	}
	defer sessions.Close()

	// Persistent stores have no in-process janitor; a cron job evicts their
	// idle sessions instead.
	if *flags.sessionTTL > 0 && *flags.dbDriver != "" && *flags.dbDriver != "memory" {
		sched := scheduler.NewScheduler()
		defer sched.Stop()
		if err := sched.AddJob("*/5 * * * *", scheduler.CleanupExpiredSessions(sessions, *flags.sessionTTL)); err != nil {
			slog.Error("Failed to schedule session cleanup", "error", err)
			os.Exit(1)
		}
		slog.Info("Scheduled session cleanup", "sessionTTL", *flags.sessionTTL)
	}

	base, err := knowledge.Load()
	if err != nil {
		slog.Error("Failed to load knowledge base", "error", err)
		os.Exit(1)
	}

	toolkit := knowledge.NewToolkit(base)
	templates := catalog.DefaultTemplates()
	cat, err := catalog.New(templates, toolkit)
	if err != nil {
		slog.Error("Failed to load template catalog", "error", err)
		os.Exit(1)
	}

	evaluator := dialogue.NewEvaluator(templates)
	executor := dialogue.NewExecutor(toolkit, evaluator)
	driver := dialogue.NewDriver(cat, executor, sessions, base, buildDriverOptions(config)...)

	server := api.NewServer(driver, base, sessions, api.WithAddr(*flags.apiAddr))
	slog.Info("Bootstrapping Formi", "addr", *flags.apiAddr, "dbDriver", *flags.dbDriver)
	if err := server.Run(); err != nil {
		slog.Error("Formi failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("Formi exited successfully")
}

// Flags holds command line flag values.
type Flags struct {
	apiAddr    *string
	dbDriver   *string
	dbDSN      *string
	sessionTTL *time.Duration
}

// initializeLogger sets up structured logging. DEBUG=true lowers the level
// to debug.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and
// an optional .env file.
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		APIAddr:    os.Getenv("API_ADDR"),
		DBDriver:   os.Getenv("DB_DRIVER"),
		DBDSN:      os.Getenv("DATABASE_URL"),
		OpenAIKey:  os.Getenv("OPENAI_API_KEY"),
		TwilioSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
		SessionTTL: os.Getenv("SESSION_TTL"),
	}
	if config.APIAddr == "" {
		config.APIAddr = DefaultAPIAddr
	}
	return config
}

// parseCommandLineFlags parses flags, using environment values as defaults.
func parseCommandLineFlags(config Config) Flags {
	defaultTTL := time.Duration(0)
	if config.SessionTTL != "" {
		if parsed, err := time.ParseDuration(config.SessionTTL); err == nil {
			defaultTTL = parsed
		} else {
			slog.Warn("Invalid SESSION_TTL, ignoring", "value", config.SessionTTL, "error", err)
		}
	}

	flags := Flags{
		apiAddr:    flag.String("addr", config.APIAddr, "API listen address"),
		dbDriver:   flag.String("db-driver", config.DBDriver, "session store driver: memory, sqlite or postgres"),
		dbDSN:      flag.String("db-dsn", config.DBDSN, "database DSN (file path for sqlite)"),
		sessionTTL: flag.Duration("session-ttl", defaultTTL, "evict sessions idle longer than this (0 disables)"),
	}
	flag.Parse()
	return flags
}

// buildSessionStore selects the configured store backend.
func buildSessionStore(flags Flags) (store.SessionStore, error) {
	switch *flags.dbDriver {
	case "postgres":
		return store.NewPostgresStore(store.WithDSN(*flags.dbDSN))
	case "sqlite":
		return store.NewSQLiteStore(store.WithDSN(*flags.dbDSN))
	default:
		return store.NewInMemoryStore(store.WithSessionTTL(*flags.sessionTTL)), nil
	}
}

// buildDriverOptions wires the optional GenAI classifier and Twilio
// notifier when their credentials are configured.
func buildDriverOptions(config Config) []dialogue.DriverOption {
	var opts []dialogue.DriverOption

	if config.OpenAIKey != "" {
		classifier, err := genai.NewClient(genai.WithAPIKey(config.OpenAIKey))
		if err != nil {
			slog.Warn("GenAI classifier unavailable, using keyword classifier", "error", err)
		} else {
			slog.Info("Using GenAI confirmation classifier")
			opts = append(opts, dialogue.WithClassifier(classifier))
		}
	}

	if config.TwilioSID != "" {
		sender, err := notify.NewTwilioSender()
		if err != nil {
			slog.Warn("Twilio notifier unavailable, logging bookings instead", "error", err)
		} else {
			slog.Info("Using Twilio booking notifier")
			opts = append(opts, dialogue.WithNotifier(sender))
		}
	}

	return opts
}
