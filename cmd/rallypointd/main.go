// Rallypoint Core - group coordination service
//
// This is the main entry point for the Rallypoint Core application.
// Rallypoint coordinates people in groups: accounts and devices,
// organisations, groups, schedules, events, and live device locations.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/rallypoint-io/rallypoint-core/migrations"

	"github.com/rallypoint-io/rallypoint-core/internal/api"
	"github.com/rallypoint-io/rallypoint-core/internal/auth"
	"github.com/rallypoint-io/rallypoint-core/internal/device"
	"github.com/rallypoint-io/rallypoint-core/internal/graph"
	"github.com/rallypoint-io/rallypoint-core/internal/infrastructure/config"
	"github.com/rallypoint-io/rallypoint-core/internal/infrastructure/database"
	"github.com/rallypoint-io/rallypoint-core/internal/infrastructure/influxdb"
	"github.com/rallypoint-io/rallypoint-core/internal/infrastructure/logging"
	"github.com/rallypoint-io/rallypoint-core/internal/infrastructure/mqtt"
	"github.com/rallypoint-io/rallypoint-core/internal/org"
	"github.com/rallypoint-io/rallypoint-core/internal/telemetry"
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
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for
// testability. Returning an error allows main to handle exit codes
// consistently.
func run(ctx context.Context) error { //nolint:gocognit // wiring is linear but long
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Rallypoint Core",
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

	// Open database and run migrations
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

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Repositories
	users := auth.NewUserRepository(db.DB)
	deviceRepo := device.NewRepository(db.DB)
	orgRepo := org.NewOrganisationRepository(db.DB)

	// Seed the default organisation new signups join
	defaultOrgID, err := org.SeedDefaultOrganisation(ctx, orgRepo, log.Logger)
	if err != nil {
		return fmt.Errorf("seeding default organisation: %w", err)
	}

	// Identity services
	devices := device.NewService(deviceRepo, log.Logger)
	signer := auth.NewTokenSigner(cfg.Auth.JWTSecret)
	sessions := auth.NewSessionService(users, devices, signer, auth.SessionConfig{
		OperationTimeout:      cfg.GetOperationTimeout(),
		AllowPasswordless:     cfg.Auth.AllowPasswordlessLogin,
		DefaultOrganisationID: defaultOrgID,
	}, log.Logger)
	verifier := auth.NewVerifier(signer, users, deviceRepo)

	// Authorization graph
	g := graph.New(graph.Repositories{
		Users:         users,
		Devices:       deviceRepo,
		Organisations: orgRepo,
		Groups:        org.NewGroupRepository(db.DB),
		Schedules:     org.NewScheduleRepository(db.DB),
		Events:        org.NewEventRepository(db.DB),
		Tags:          org.NewTagRepository(db.DB),
		Capabilities:  org.NewCapabilityRepository(db.DB),
	}, cfg.GetOperationTimeout(), log.Logger)

	// Connect to InfluxDB (optional location history trail)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
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

	// API server
	deps := api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Logger:   log,
		Sessions: sessions,
		Verifier: verifier,
		Graph:    g,
		Devices:  devices,
		Version:  version,
	}
	if influxClient != nil {
		deps.Trail = influxClient
	}

	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// MQTT location ingest (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
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

		ingestOpts := telemetry.IngestorOptions{
			Subscriber:  mqttClient,
			Verifier:    verifier,
			Devices:     devices,
			Broadcaster: server.Hub(),
			Logger:      log.Logger,
		}
		if influxClient != nil {
			ingestOpts.Trail = influxClient
		}

		ingestor, ingestErr := telemetry.NewIngestor(ingestOpts)
		if ingestErr != nil {
			return fmt.Errorf("creating location ingestor: %w", ingestErr)
		}
		if startErr := ingestor.Start(); startErr != nil {
			return fmt.Errorf("starting location ingestor: %w", startErr)
		}
	} else {
		log.Info("MQTT disabled, location reports accepted over HTTP only")
	}

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. MQTT (if enabled)
	// 2. API server
	// 3. InfluxDB (if enabled)
	// 4. Database

	log.Info("Rallypoint Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses RALLYPOINT_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("RALLYPOINT_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies infrastructure connections. MQTT and InfluxDB
// are optional and skipped when nil.
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
