package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the MySensors gateway bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Gateway  GatewayConfig  `yaml:"gateway"`
	Domoticz DomoticzConfig `yaml:"domoticz"`
	Registry RegistryConfig `yaml:"registry"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	API      APIConfig      `yaml:"api"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GatewayConfig contains the serial link and polling loop settings.
type GatewayConfig struct {
	// Port is the serial device of the MySensors gateway (e.g. /dev/ttyUSB0).
	Port string `yaml:"port"`

	// BaudRate of the serial link. Default: 115200
	BaudRate int `yaml:"baud_rate"`

	// LoopInterval is the pause between loop iterations. Default: 300ms
	LoopInterval time.Duration `yaml:"loop_interval"`

	// PollInterval is the cadence of controller reconciliation. Default: 1s
	PollInterval time.Duration `yaml:"poll_interval"`

	// PersistInterval is the cadence of registry snapshots. Default: 60s
	PersistInterval time.Duration `yaml:"persist_interval"`

	// LocalTime makes I_TIME answers carry the local wall clock as epoch
	// seconds instead of true UTC epoch seconds.
	LocalTime bool `yaml:"local_time"`
}

// DomoticzConfig contains the controller HTTP API settings.
type DomoticzConfig struct {
	// URL is the controller base URL (e.g. http://127.0.0.1:8080).
	URL string `yaml:"url"`

	// HardwareID is the idx of the dummy hardware virtual sensors are created on.
	HardwareID int `yaml:"hardware_id"`

	// Timeout bounds every HTTP request. Default: 5s
	Timeout time.Duration `yaml:"timeout"`

	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// RegistryConfig contains the channel registry snapshot settings.
type RegistryConfig struct {
	Path string `yaml:"path"`
}

// DatabaseConfig contains SQLite settings for the reading history.
type DatabaseConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// Retention is how long history rows are kept. Zero keeps everything.
	Retention time.Duration `yaml:"retention"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled     bool                `yaml:"enabled"`
	Broker      MQTTBrokerConfig    `yaml:"broker"`
	Auth        MQTTAuthConfig      `yaml:"auth"`
	QoS         int                 `yaml:"qos"`
	Reconnect   MQTTReconnectConfig `yaml:"reconnect"`
	TopicPrefix string              `yaml:"topic_prefix"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// APIConfig contains the status HTTP server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: MYSGW_SECTION_KEY
// For example: MYSGW_GATEWAY_PORT, MYSGW_DOMOTICZ_URL
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with the defaults of a single-host installation:
// Domoticz on localhost, snapshot next to the binary, optional sinks off.
func Default() *Config {
	return &Config{
		Gateway: GatewayConfig{
			Port:            "/dev/ttyUSB0",
			BaudRate:        115200,                 //nolint:mnd // MySensors serial gateway default
			LoopInterval:    300 * time.Millisecond, //nolint:mnd // loop pacing
			PollInterval:    time.Second,
			PersistInterval: time.Minute,
		},
		Domoticz: DomoticzConfig{
			URL:        "http://127.0.0.1:8080",
			HardwareID: 1,
			Timeout:    5 * time.Second, //nolint:mnd // HTTP timeout
		},
		Registry: RegistryConfig{
			Path: "./MySensors_DB.txt",
		},
		Database: DatabaseConfig{
			Path:        "./data/history.db",
			WALMode:     true,
			BusyTimeout: 5,                   //nolint:mnd // seconds
			Retention:   30 * 24 * time.Hour, //nolint:mnd // 30 days
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883, //nolint:mnd // MQTT default port
				ClientID: "mysgw",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60, //nolint:mnd // seconds
			},
			TopicPrefix: "mysensors",
		},
		InfluxDB: InfluxDBConfig{
			URL:           "http://localhost:8086",
			Bucket:        "mysensors",
			BatchSize:     100, //nolint:mnd // points
			FlushInterval: 10,  //nolint:mnd // seconds
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8090, //nolint:mnd // clear of Domoticz's 8080
			Timeouts: APITimeoutConfig{
				Read:  10, //nolint:mnd // seconds
				Write: 10, //nolint:mnd // seconds
				Idle:  60, //nolint:mnd // seconds
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: MYSGW_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Gateway
	if v := os.Getenv("MYSGW_GATEWAY_PORT"); v != "" {
		cfg.Gateway.Port = v
	}
	if v := os.Getenv("MYSGW_GATEWAY_BAUD_RATE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Gateway.BaudRate = n
		}
	}

	// Domoticz
	if v := os.Getenv("MYSGW_DOMOTICZ_URL"); v != "" {
		cfg.Domoticz.URL = v
	}
	if v := os.Getenv("MYSGW_DOMOTICZ_HARDWARE_ID"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Domoticz.HardwareID = n
		}
	}
	if v := os.Getenv("MYSGW_DOMOTICZ_USERNAME"); v != "" {
		cfg.Domoticz.Username = v
	}
	if v := os.Getenv("MYSGW_DOMOTICZ_PASSWORD"); v != "" {
		cfg.Domoticz.Password = v
	}

	// Registry
	if v := os.Getenv("MYSGW_REGISTRY_PATH"); v != "" {
		cfg.Registry.Path = v
	}

	// Database
	if v := os.Getenv("MYSGW_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("MYSGW_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("MYSGW_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("MYSGW_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("MYSGW_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// API
	if v := os.Getenv("MYSGW_API_HOST"); v != "" {
		cfg.API.Host = v
	}
}

// Validate checks the configuration for errors.
//
// Sections of disabled optional sinks are not checked.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Gateway validation
	if c.Gateway.Port == "" {
		errs = append(errs, "gateway.port is required")
	}
	if c.Gateway.BaudRate <= 0 {
		errs = append(errs, "gateway.baud_rate must be positive")
	}
	if c.Gateway.LoopInterval <= 0 || c.Gateway.PollInterval <= 0 || c.Gateway.PersistInterval <= 0 {
		errs = append(errs, "gateway intervals must be positive")
	}

	// Domoticz validation
	if u, err := url.Parse(c.Domoticz.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "domoticz.url must be an absolute http(s) URL")
	}
	if c.Domoticz.HardwareID <= 0 {
		errs = append(errs, "domoticz.hardware_id must be positive")
	}

	// Registry validation
	if c.Registry.Path == "" {
		errs = append(errs, "registry.path is required")
	}

	// Database validation
	if c.Database.Enabled && c.Database.Path == "" {
		errs = append(errs, "database.path is required when history is enabled")
	}
	if c.Database.Retention < 0 {
		errs = append(errs, "database.retention must not be negative")
	}

	// MQTT validation
	if c.MQTT.Enabled {
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
		if c.MQTT.TopicPrefix == "" {
			errs = append(errs, "mqtt.topic_prefix is required")
		}
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, "influxdb.url and influxdb.bucket are required when enabled")
	}

	// API validation
	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
