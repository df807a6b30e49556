package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-mysensors/internal/api"
	"github.com/nerrad567/gray-logic-mysensors/internal/domoticz"
	"github.com/nerrad567/gray-logic-mysensors/internal/gateway"
	"github.com/nerrad567/gray-logic-mysensors/internal/history"
	"github.com/nerrad567/gray-logic-mysensors/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-mysensors/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-mysensors/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-mysensors/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-mysensors/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-mysensors/internal/registry"
	"github.com/nerrad567/gray-logic-mysensors/internal/serialport"
	"github.com/nerrad567/gray-logic-mysensors/migrations"
)

func newRunCmd(configPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the gateway bridge until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath())
		},
	}
}

// run is the bridge lifecycle, separated from the command for testability.
//
// Parameters:
//   - ctx: Cancelled on shutdown signals
//   - configPath: YAML configuration file
//
// Returns:
//   - error: nil on clean shutdown, or error describing a startup failure
func run(ctx context.Context, configPath string) error {
	log := logging.Default()
	log.Info("starting mysgw",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"level", cfg.Logging.Level,
	)

	// Channel registry
	store := registry.NewStore(cfg.Registry.Path)
	reg, err := store.Load()
	if err != nil {
		return fmt.Errorf("loading registry: %w", err)
	}
	log.Info("registry loaded",
		"path", store.Path(),
		"channels", reg.Len(),
		"nodes", len(reg.Nodes()),
	)

	// Domoticz controller
	ctrl, err := domoticz.NewClient(cfg.Domoticz)
	if err != nil {
		return fmt.Errorf("creating domoticz client: %w", err)
	}
	if checkErr := ctrl.HealthCheck(ctx); checkErr != nil {
		// Not fatal: a later call reaches the controller once it is back.
		log.Warn("domoticz not reachable at startup", "url", cfg.Domoticz.URL, "error", checkErr)
	}

	health := map[string]api.HealthChecker{"domoticz": ctrl}
	var sinks []gateway.ReadingSink

	// MQTT (optional)
	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
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
			"prefix", mqttClient.Topics().Prefix(),
		)
		sinks = append(sinks, gateway.NewMQTTSink(mqttClient, mqttClient.Topics(), byte(cfg.MQTT.QoS))) //nolint:gosec // validated 0..2
		health["mqtt"] = mqttClient
	} else {
		log.Info("MQTT disabled")
	}

	// InfluxDB (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			stats := influxClient.Stats()
			log.Info("closing InfluxDB connection", "points_queued", stats.Queued, "write_errors", stats.Failed)
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
		sinks = append(sinks, gateway.NewInfluxSink(influxClient))
		health["influxdb"] = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	// Reading history (optional)
	var historyRepo *history.Repository
	if cfg.Database.Enabled {
		db, dbErr := database.Open(cfg.Database)
		if dbErr != nil {
			return fmt.Errorf("opening database: %w", dbErr)
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()

		applied, migrateErr := db.Migrate(ctx, migrations.FS)
		if migrateErr != nil {
			return fmt.Errorf("running migrations: %w", migrateErr)
		}
		log.Info("database ready", "path", db.Path(), "migrations_applied", applied)

		historyRepo = history.NewRepository(db.DB)
		sinks = append(sinks, gateway.NewHistorySink(historyRepo, cfg.Database.Retention))
		health["database"] = db
	} else {
		log.Info("reading history disabled")
	}

	// Metrics
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := gateway.NewMetrics(promRegistry)
	view := gateway.NewView()

	// Status API (optional)
	if cfg.API.Enabled {
		deps := api.Deps{
			Config:   cfg.API,
			Logger:   log,
			Channels: view,
			Metrics:  metrics,
			Gatherer: promRegistry,
			Health:   health,
			Version:  version,
		}
		if historyRepo != nil {
			deps.History = historyRepo
		}
		srv, apiErr := api.New(deps)
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := srv.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := srv.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	}

	// Serial gateway
	transport, err := serialport.Open(cfg.Gateway)
	if err != nil {
		return fmt.Errorf("opening serial gateway: %w", err)
	}
	defer func() {
		log.Info("closing serial port", "port", transport.Name())
		if closeErr := transport.Close(); closeErr != nil {
			log.Error("error closing serial port", "error", closeErr)
		}
	}()
	log.Info("serial gateway opened", "port", transport.Name(), "baud_rate", cfg.Gateway.BaudRate)

	gw, err := gateway.New(gateway.Options{
		Config:     cfg.Gateway,
		Transport:  transport,
		Controller: ctrl,
		Switches:   ctrl,
		Registry:   reg,
		Store:      store,
		Sinks:      sinks,
		View:       view,
		Logger:     log,
		Metrics:    metrics,
	})
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	if err := gw.Run(ctx); err != nil {
		return fmt.Errorf("running gateway: %w", err)
	}

	log.Info("mysgw stopped")
	return nil
}
