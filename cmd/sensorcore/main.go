// Sensor Core - sensor reading store and API
//
// This is the main entry point for the Sensor Core server. It connects to
// the reading store, serves the HTTP API and live reading stream, and
// optionally consumes readings from MQTT and mirrors them to InfluxDB.
//
// Batch loading of NDJSON files is handled by cmd/sensor-ingest.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/nerrad567/sensor-core/migrations"

	"github.com/nerrad567/sensor-core/internal/api"
	"github.com/nerrad567/sensor-core/internal/infrastructure/config"
	"github.com/nerrad567/sensor-core/internal/infrastructure/database"
	"github.com/nerrad567/sensor-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/sensor-core/internal/infrastructure/logging"
	"github.com/nerrad567/sensor-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/sensor-core/internal/ingest"
	"github.com/nerrad567/sensor-core/internal/sensor"
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

// startupHealthTimeout bounds the post-startup health check.
const startupHealthTimeout = 10 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting Sensor Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Connect to the reading store. A *database.ConnectionError here is fatal.
	dbCfg := database.ConfigFromSettings(cfg.Database)
	dbCfg.Logger = log.With("component", "database")
	db, err := database.Connect(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "driver", db.Dialect().Name, "path", db.Path())

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	store := sensor.NewStore(db)
	store.SetLogger(log.With("component", "sensor"))

	// Mirror committed readings to InfluxDB (optional)
	influxClient, err := connectInfluxDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	if influxClient != nil {
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		store.AddListener(sensor.ListenerFunc(func(id string, r sensor.Reading) {
			influxClient.WriteReading(id, r.Gas, r.Fire, r.Time)
		}))
	}

	// Live reading stream
	hub := api.NewHub(cfg.WebSocket, log.With("component", "websocket"))
	go hub.Run(ctx)
	store.AddListener(hub)

	// Live ingestion over MQTT (optional)
	mqttClient, subscriber, err := startMQTTIngest(cfg, store, log)
	if err != nil {
		return err
	}
	if mqttClient != nil {
		defer func() {
			log.Info("disconnecting from MQTT")
			if stopErr := subscriber.Stop(); stopErr != nil {
				log.Warn("error unsubscribing from sensor readings", "error", stopErr)
			}
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
	}

	deps := api.Deps{
		Config:      cfg.API,
		WS:          cfg.WebSocket,
		Logger:      log.With("component", "api"),
		Store:       store,
		DB:          db,
		MQTT:        mqttClient,
		ExternalHub: hub,
		Version:     version,
	}
	if subscriber != nil {
		deps.Subscriber = subscriber
	}
	server, err := api.New(deps)
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

	healthCtx, cancel := context.WithTimeout(ctx, startupHealthTimeout)
	err = healthCheck(healthCtx, db, mqttClient, influxClient)
	cancel()
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// API server, MQTT, InfluxDB, database.

	log.Info("Sensor Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SENSORCORE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SENSORCORE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// connectInfluxDB connects the InfluxDB mirror when enabled.
//
// Returns:
//   - *influxdb.Client: Connected client, or nil when disabled
//   - error: If the mirror is enabled but unreachable
func connectInfluxDB(ctx context.Context, cfg *config.Config, log *logging.Logger) (*influxdb.Client, error) {
	if !cfg.InfluxDB.Enabled {
		log.Info("InfluxDB mirror disabled")
		return nil, nil
	}

	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
	if err != nil {
		return nil, fmt.Errorf("connecting to InfluxDB: %w", err)
	}
	client.SetOnError(func(err error) {
		log.Error("InfluxDB write error", "error", err)
	})
	log.Info("InfluxDB connected",
		"url", cfg.InfluxDB.URL,
		"org", cfg.InfluxDB.Org,
		"bucket", cfg.InfluxDB.Bucket,
	)
	return client, nil
}

// startMQTTIngest connects to the broker and subscribes to sensor readings
// when MQTT is enabled.
//
// Returns:
//   - *mqtt.Client: Connected client, or nil when disabled
//   - *ingest.Subscriber: Running subscriber, or nil when disabled
//   - error: If MQTT is enabled but the broker or subscription fails
func startMQTTIngest(cfg *config.Config, store sensor.Ingester, log *logging.Logger) (*mqtt.Client, *ingest.Subscriber, error) {
	if !cfg.MQTT.Enabled {
		log.Info("MQTT ingestion disabled")
		return nil, nil, nil
	}

	client, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	mqttLog := log.With("component", "mqtt")
	client.SetLogger(mqttLog)
	client.SetOnConnect(func() {
		mqttLog.Info("MQTT reconnected")
	})
	client.SetOnDisconnect(func(err error) {
		mqttLog.Warn("MQTT disconnected", "error", err)
	})

	//nolint:gosec // QoS is validated to 0-2 by config.Validate
	subscriber := ingest.NewSubscriber(client, client.Topics(), store, byte(cfg.MQTT.QoS))
	subscriber.SetLogger(mqttLog)
	if err := subscriber.Start(); err != nil {
		client.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, nil, err
	}

	log.Info("MQTT ingestion started",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"topic", client.Topics().AllSensorReadings(),
	)
	return client, subscriber, nil
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
