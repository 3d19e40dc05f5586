// Almacen Core - Warehouse Operation Coordinator
//
// This is the main entry point for the warehouse coordinator daemon. It
// ties the inventory ledger, the MQTT device bus, the operation
// coordinator and the operator HTTP API together and runs until it
// receives an interrupt.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/Humanoidear/PR2-Frontend-Backend/migrations"

	"github.com/Humanoidear/PR2-Frontend-Backend/internal/api"
	"github.com/Humanoidear/PR2-Frontend-Backend/internal/coordinator"
	"github.com/Humanoidear/PR2-Frontend-Backend/internal/infrastructure/config"
	"github.com/Humanoidear/PR2-Frontend-Backend/internal/infrastructure/database"
	"github.com/Humanoidear/PR2-Frontend-Backend/internal/infrastructure/logging"
	"github.com/Humanoidear/PR2-Frontend-Backend/internal/infrastructure/mqtt"
	"github.com/Humanoidear/PR2-Frontend-Backend/internal/infrastructure/telemetry"
	"github.com/Humanoidear/PR2-Frontend-Backend/internal/inventory"
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
	log.Info("starting Almacen Core",
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

	// Open the ledger database
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

	ledger := inventory.NewSQLiteRepository(db.DB)

	// Connect to the MQTT device bus
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
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Connect to InfluxDB (optional)
	var telemetryClient *telemetry.Client
	if cfg.InfluxDB.Enabled {
		telemetryClient, err = telemetry.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := telemetryClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		telemetryClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// The hub is shared: the API serves it and the coordinator broadcasts
	// state snapshots into it.
	hub := api.NewHub(cfg.WebSocket, log)

	// Build the coordinator
	coordOpts := []coordinator.Option{
		coordinator.WithLogger(log.With("component", "coordinator")),
		coordinator.WithStateHub(hub),
	}
	if telemetryClient != nil {
		coordOpts = append(coordOpts, coordinator.WithTelemetry(telemetryClient))
	}
	coord := coordinator.New(coordinator.Config{
		Slots:                   cfg.Warehouse.Slots,
		DefaultEntranceQuantity: cfg.Warehouse.DefaultEntranceQuantity,
		DefaultExitQuantity:     cfg.Warehouse.DefaultExitQuantity,
		AutomatedSite:           cfg.Warehouse.AutomatedSite,
		DefaultSite:             cfg.Warehouse.DefaultSite,
		OperationTimeout:        cfg.GetOperationTimeout(),
	}, ledger, mqttClient, coordOpts...)

	// Subscribe to device topics and start the watchdog
	if err := coord.BindGateway(ctx, mqttClient); err != nil {
		return fmt.Errorf("binding device gateway: %w", err)
	}
	go coord.Run(ctx)
	log.Info("coordinator started",
		"automated_site", cfg.Warehouse.AutomatedSite,
		"slots", cfg.Warehouse.Slots,
	)

	// Start the operator API
	server, err := api.New(api.Deps{
		Config:      cfg.API,
		WS:          cfg.WebSocket,
		Security:    cfg.Security,
		Logger:      log.With("component", "api"),
		Coordinator: coord,
		Ledger:      ledger,
		Gateway:     mqttClient,
		DefaultSite: cfg.Warehouse.DefaultSite,
		ExternalHub: hub,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, telemetryClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT
	// 4. Database

	log.Info("Almacen Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses ALMACEN_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("ALMACEN_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, telemetryClient *telemetry.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if telemetryClient != nil {
		if err := telemetryClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
