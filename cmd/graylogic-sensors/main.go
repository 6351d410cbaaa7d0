// Gray Logic Sensors - sensor type registry and validation service
//
// This is the main entry point for the Gray Logic sensor service. It:
//   - Registers the built-in and configured sensor types
//   - Validates sensor registrations and updates arriving over MQTT
//   - Persists normalized sensors in SQLite
//   - Reports validation outcomes to Prometheus and InfluxDB
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/gray-logic-sensors/internal/diagnostics"
	"github.com/nerrad567/gray-logic-sensors/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-sensors/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-sensors/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-sensors/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-sensors/internal/infrastructure/metrics"
	"github.com/nerrad567/gray-logic-sensors/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-sensors/internal/ingest"
	"github.com/nerrad567/gray-logic-sensors/internal/sensor"
	"github.com/nerrad567/gray-logic-sensors/internal/sensortype"
	"github.com/nerrad567/gray-logic-sensors/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

const (
	// Default configuration file path
	defaultConfigPath = "configs/config.yaml"

	// healthInterval is how often infrastructure health and gauges are refreshed.
	healthInterval = 30 * time.Second
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
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
	log.Info("starting Gray Logic Sensors",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", configPath, "site", cfg.Site.ID)

	// Sensor types
	registry, err := buildRegistry(cfg.SensorTypes, log)
	if err != nil {
		return err
	}
	factory := sensortype.NewFactory(registry, sensortype.WithStrict(cfg.SensorTypes.Strict))

	// Database
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	applied, err := db.Migrate(ctx, migrations.FS)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database ready", "path", db.Path(), "migrations_applied", applied)

	// Metrics (optional)
	var m *metrics.Metrics
	var counters diagnostics.Counters
	if cfg.Metrics.Enabled {
		m = metrics.New(nil)
		m.SetTypes(registry.Len())
		counters = m
		go func() {
			if serveErr := m.Serve(ctx, cfg.Metrics); serveErr != nil {
				log.Error("metrics server stopped", "error", serveErr)
			}
		}()
		log.Info("metrics enabled", "listen", cfg.Metrics.Listen, "path", cfg.Metrics.Path)
	}

	// InfluxDB (optional)
	influxClient, err := influxdb.Connect(ctx, cfg.InfluxDB)
	var events diagnostics.EventWriter
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled")
	case err != nil:
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		events = influxClient
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	}

	// Sensor manager
	manager := sensor.NewManager(sensor.NewSQLiteRepository(db.DB), factory)
	manager.SetLogger(log.Component("sensor"))
	manager.SetObserver(diagnostics.New(counters, events))

	skipped, err := manager.RefreshCache(ctx)
	if err != nil {
		return fmt.Errorf("loading sensors: %w", err)
	}
	log.Info("sensor manager initialised", "sensors", manager.Count(), "skipped", skipped)

	// MQTT ingestion (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = startIngest(ctx, cfg.MQTT, manager, m, log)
		if err != nil {
			return err
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
	} else {
		log.Info("MQTT disabled")
	}

	log.Info("Gray Logic Sensors started")

	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()
	for {
		if m != nil {
			m.SetSensors(manager.Count())
		}
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return nil
		case <-ticker.C:
			if hcErr := healthCheck(ctx, db, mqttClient, influxClient); hcErr != nil {
				log.Warn("health check failed", "error", hcErr)
			}
		}
	}
}

// buildRegistry populates a registry from the built-in catalog and the
// optional catalog file.
func buildRegistry(cfg config.SensorTypesConfig, log *logging.Logger) (*sensortype.Registry, error) {
	registry := sensortype.NewRegistry()

	if cfg.Builtin {
		if err := sensortype.RegisterBuiltins(registry); err != nil {
			return nil, fmt.Errorf("registering built-in sensor types: %w", err)
		}
	}

	if cfg.CatalogFile != "" {
		decls, err := sensortype.LoadDeclarations(cfg.CatalogFile)
		if err != nil {
			return nil, fmt.Errorf("loading sensor type catalog: %w", err)
		}
		if err := sensortype.RegisterAll(registry, decls); err != nil {
			return nil, fmt.Errorf("registering sensor type catalog %s: %w", cfg.CatalogFile, err)
		}
		log.Info("sensor type catalog loaded", "path", cfg.CatalogFile, "types", len(decls))
	}

	log.Info("sensor type registry ready", "types", registry.Len(), "strict", cfg.Strict)
	return registry, nil
}

// startIngest connects to the broker and subscribes the ingest handler.
//
// Parameters:
//   - ctx: Bounds the connection attempt and scopes message handling
//   - cfg: MQTT section of config.yaml
//   - manager: Sensor manager receiving validated payloads
//   - m: Metrics sink, nil when metrics are disabled
//   - log: Logger instance
//
// Returns:
//   - *mqtt.Client: Connected client; the caller closes it
//   - error: Connection or subscription failure
func startIngest(ctx context.Context, cfg config.MQTTConfig, manager *sensor.Manager, m *metrics.Metrics, log *logging.Logger) (*mqtt.Client, error) {
	client, err := mqtt.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	client.SetLogger(log.Component("mqtt"))
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port),
		"client_id", cfg.Broker.ClientID,
	)

	// #nosec G115 -- config validation bounds qos to 0..2
	handler := ingest.New(client, manager, byte(cfg.QoS))
	handler.SetLogger(log.Component("ingest"))
	if m != nil {
		handler.SetCounter(m)
	}
	if err := handler.Start(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("starting ingest: %w", err)
	}
	return client, nil
}

// getConfigPath returns the configuration file path.
// Checks GRAYLOGIC_CONFIG environment variable first, then uses default.
func getConfigPath() string {
	if path := os.Getenv("GRAYLOGIC_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies the infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (nil if disabled)
//   - influxClient: InfluxDB client to check (nil if disabled)
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
