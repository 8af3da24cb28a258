// gridstat - electricity account integration service
//
// This is the main entry point for the gridstat service. It connects
// stored China Southern Power Grid accounts to the local registries,
// records usage history in InfluxDB, and exposes lifecycle and purge
// operations over HTTP and MQTT.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/nerrad567/gray-logic-gridstat/migrations"

	"github.com/nerrad567/gray-logic-gridstat/internal/api"
	"github.com/nerrad567/gray-logic-gridstat/internal/csg"
	"github.com/nerrad567/gray-logic-gridstat/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-gridstat/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-gridstat/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-gridstat/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-gridstat/internal/integration"
	"github.com/nerrad567/gray-logic-gridstat/internal/platform"
	"github.com/nerrad567/gray-logic-gridstat/internal/recorder"
	"github.com/nerrad567/gray-logic-gridstat/internal/sensor"
	"github.com/nerrad567/gray-logic-gridstat/internal/servicebridge"
	"github.com/nerrad567/gray-logic-gridstat/internal/worker"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// executorWorkers bounds concurrent remote-session calls.
const executorWorkers = 4

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting gridstat",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Registries and entry store
	store := platform.NewSQLiteEntryStore(db.DB)
	devices := platform.NewSQLiteDeviceRegistry(db.DB)
	entities := platform.NewSQLiteEntityRegistry(db.DB)

	// Service bus
	bus := platform.NewServiceBus()
	bus.SetLogger(log)

	// Connect to InfluxDB recorder (optional)
	var rec *recorder.Client
	if cfg.Recorder.Enabled {
		rec, err = recorder.Connect(cfg.Recorder)
		if err != nil {
			return fmt.Errorf("connecting recorder: %w", err)
		}
		defer func() {
			log.Info("closing recorder connection")
			if closeErr := rec.Close(); closeErr != nil {
				log.Error("error closing recorder", "error", closeErr)
			}
		}()
		rec.SetOnError(func(err error) {
			log.Error("recorder write error", "error", err)
		})
		if regErr := recorder.RegisterService(bus, rec); regErr != nil {
			return fmt.Errorf("registering recorder service: %w", regErr)
		}
		log.Info("recorder connected",
			"url", cfg.Recorder.URL,
			"org", cfg.Recorder.Org,
			"bucket", cfg.Recorder.Bucket,
		)
	} else {
		log.Info("recorder disabled")
	}

	// Worker executor for blocking remote-session calls
	exec := worker.NewExecutor(executorWorkers)
	defer exec.Close()

	// Sensor platform
	var writer sensor.ReadingWriter
	if rec != nil {
		writer = rec
	}
	forwarder := sensor.NewForwarder(devices, entities, writer, cfg.GetPollInterval())
	forwarder.SetLogger(log)
	defer forwarder.Close()

	// Lifecycle controller
	loader := csg.NewLoader(csg.Config{
		BaseURL: cfg.CSG.BaseURL,
		Timeout: cfg.GetCSGTimeout(),
	})
	controller := integration.NewController(store, devices, entities, bus, loader, forwarder, exec)
	controller.SetLogger(log)

	// Load every stored entry; expired sessions are reported but do not
	// stop the service, the entry just stays unloaded.
	if err := setupStoredEntries(ctx, store, controller, log); err != nil {
		return err
	}

	// Connect to MQTT broker and start the service bridge
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	bridge := servicebridge.New(mqttClient, bus, byte(cfg.MQTT.QoS))
	bridge.SetLogger(log)
	if err := bridge.Start(); err != nil {
		return fmt.Errorf("starting service bridge: %w", err)
	}
	defer func() {
		log.Info("stopping service bridge")
		if stopErr := bridge.Stop(); stopErr != nil {
			log.Error("error stopping service bridge", "error", stopErr)
		}
	}()

	// Start the admin API
	apiServer, err := api.New(api.Deps{
		Config:    cfg.API,
		Security:  cfg.Security,
		Logger:    log,
		Store:     store,
		Bus:       bus,
		Lifecycle: controller,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, rec); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("gridstat stopped")
	return nil
}

// setupStoredEntries loads every stored entry of the domain.
// Expired or unreachable entries are logged and skipped.
func setupStoredEntries(ctx context.Context, store platform.EntryStore, controller *integration.Controller, log *logging.Logger) error {
	entries, err := store.Entries(ctx, integration.DomainGridStat)
	if err != nil {
		return fmt.Errorf("listing stored entries: %w", err)
	}

	for _, entry := range entries {
		setupCtx, cancel := context.WithTimeout(ctx, time.Minute)
		err := controller.SetupEntry(setupCtx, entry.EntryID)
		cancel()
		if err != nil {
			log.Warn("entry not loaded at startup",
				"entry_id", entry.EntryID,
				"error", err,
			)
		}
	}
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GRIDSTAT_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRIDSTAT_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check
//   - rec: Recorder client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, rec *recorder.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if rec != nil {
		if err := rec.HealthCheck(ctx); err != nil {
			return fmt.Errorf("recorder: %w", err)
		}
	}

	return nil
}
