package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/AltairPartners/AltairIVR/internal/api"
	"github.com/AltairPartners/AltairIVR/internal/flow"
	"github.com/AltairPartners/AltairIVR/internal/genai"
	"github.com/AltairPartners/AltairIVR/internal/hours"
	"github.com/AltairPartners/AltairIVR/internal/reminder"
	"github.com/AltairPartners/AltairIVR/internal/scheduler"
	"github.com/AltairPartners/AltairIVR/internal/store"
	"github.com/AltairPartners/AltairIVR/internal/twiliovoice"
	"github.com/AltairPartners/AltairIVR/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for AltairIVR state data
	DefaultStateDir = "/var/lib/altairivr"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "altairivr.db"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Ensure required directories exist
	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	slog.Info("Bootstrapping AltairIVR with configured modules")
	slog.Debug("Final configuration", "dsn_set", *flags.dbDSN != "", "api_addr", *flags.apiAddr,
		"admin_numbers", len(config.AdminNumbers), "openai_key_set", *flags.openaiKey != "")

	if err := run(config, flags); err != nil {
		slog.Error("AltairIVR failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("AltairIVR exited successfully")
}

// run builds every module from configuration and serves until interrupted.
func run(config Config, flags Flags) error {
	st, err := buildStore(flags)
	if err != nil {
		return err
	}
	defer st.Close()

	oracle, err := hours.NewOracle(buildHoursOptions(config)...)
	if err != nil {
		return err
	}

	// Twilio is optional: without credentials the service still answers
	// webhooks, it just cannot send SMS alerts or reminder calls.
	var sender twiliovoice.Sender
	if twilioClient, err := twiliovoice.NewClient(); err != nil {
		slog.Warn("Twilio client unavailable, notifications and reminders disabled", "error", err)
	} else {
		sender = twilioClient
	}
	notifier := twiliovoice.NewNotifier(sender, config.AdminNumbers)

	var responder flow.Responder
	if aiClient, err := genai.NewClient(buildGenAIOptions(flags)...); err != nil {
		slog.Warn("GenAI client unavailable, AI sub-flows will fall back to the menu", "error", err)
	} else {
		responder = aiClient
	}

	controller := flow.NewController(st, notifier, responder, oracle, buildFlowOptions(config)...)

	sched := scheduler.NewScheduler()
	defer sched.Stop()
	poller := reminder.NewPoller(st, sender, oracle, buildReminderOptions(config)...)
	if err := poller.Register(sched, *flags.reminderCron); err != nil {
		return err
	}

	server := api.NewServer(controller, st, oracle, buildAPIOptions(flags)...)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Run() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		slog.Info("Received shutdown signal", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), api.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(ctx)
	}
}

// Config holds environment configuration
type Config struct {
	DatabaseURL  string
	StateDir     string
	OpenAIKey    string
	APIAddr      string
	ReminderCron string
	BusinessName string
	Timezone     string
	AdminNumbers []string
	ConfirmSMS   bool
}

// Flags holds command line flag values
type Flags struct {
	stateDir     *string
	dbDSN        *string
	openaiKey    *string
	apiAddr      *string
	reminderCron *string
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		StateDir:     os.Getenv("ALTAIRIVR_STATE_DIR"),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		APIAddr:      os.Getenv("API_ADDR"),
		ReminderCron: os.Getenv("REMINDER_SCHEDULE"),
		BusinessName: os.Getenv("BUSINESS_NAME"),
		Timezone:     os.Getenv("BUSINESS_TIMEZONE"),
		AdminNumbers: util.SplitListEnv("ADMIN_PHONE_NUMBERS"),
		ConfirmSMS:   util.ParseBoolEnv("CUSTOMER_SMS_CONFIRMATION", false),
	}

	// Set default state directory if not specified
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No ALTAIRIVR_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"ALTAIRIVR_STATE_DIR", config.StateDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"API_ADDR", config.APIAddr,
		"REMINDER_SCHEDULE", config.ReminderCron,
		"ADMIN_PHONE_NUMBERS_COUNT", len(config.AdminNumbers))

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:     flag.String("state-dir", config.StateDir, "state directory for AltairIVR data (overrides $ALTAIRIVR_STATE_DIR)"),
		dbDSN:        flag.String("db-dsn", config.DatabaseURL, "database DSN for the appointment store (overrides $DATABASE_URL)"),
		openaiKey:    flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		apiAddr:      flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		reminderCron: flag.String("reminder-cron", config.ReminderCron, "cron schedule for the reminder poll (overrides $REMINDER_SCHEDULE)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"apiAddr", *flags.apiAddr,
		"reminderCron", *flags.reminderCron)

	// Update database DSN if not explicitly set but state directory is provided
	if *flags.dbDSN == config.DatabaseURL && config.DatabaseURL == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "new_state_dir", *flags.stateDir)
	}

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if store.DetectDSNType(*flags.dbDSN) == "sqlite" {
		stateDir := filepath.Dir(*flags.dbDSN)
		slog.Debug("Creating state directory for file-based database", "state_dir", stateDir)
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			slog.Error("Failed to create state directory", "error", err, "state_dir", stateDir)
			return err
		}
	}
	return nil
}

// buildStore selects a storage backend from the DSN.
func buildStore(flags Flags) (store.Store, error) {
	if *flags.dbDSN == "" {
		slog.Debug("No database DSN provided, using in-memory store")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store")
		return store.NewPostgresStore(store.WithPostgresDSN(*flags.dbDSN))
	}
	slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", *flags.dbDSN)
	return store.NewSQLiteStore(store.WithSQLiteDSN(*flags.dbDSN))
}

// buildHoursOptions constructs business-hours configuration options
func buildHoursOptions(config Config) []hours.Option {
	var opts []hours.Option
	if config.Timezone != "" {
		opts = append(opts, hours.WithTimezone(config.Timezone))
	}
	return opts
}

// buildGenAIOptions constructs GenAI configuration options
func buildGenAIOptions(flags Flags) []genai.Option {
	var opts []genai.Option
	if *flags.openaiKey != "" {
		opts = append(opts, genai.WithAPIKey(*flags.openaiKey))
	}
	return opts
}

// buildFlowOptions constructs flow controller configuration options
func buildFlowOptions(config Config) []flow.Option {
	var opts []flow.Option
	if config.BusinessName != "" {
		opts = append(opts, flow.WithBusinessName(config.BusinessName))
	}
	if config.ConfirmSMS {
		opts = append(opts, flow.WithCustomerConfirmation(true))
	}
	return opts
}

// buildReminderOptions constructs reminder poller configuration options
func buildReminderOptions(config Config) []reminder.Option {
	var opts []reminder.Option
	if config.BusinessName != "" {
		opts = append(opts, reminder.WithBusinessName(config.BusinessName))
	}
	return opts
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var opts []api.Option
	if *flags.apiAddr != "" {
		opts = append(opts, api.WithAddr(*flags.apiAddr))
	}
	return opts
}
