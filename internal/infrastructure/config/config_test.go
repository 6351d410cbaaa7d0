package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
site:
  id: "test-site"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
sensor_types:
  builtin: true
  catalog_file: "configs/sensor-types.yaml"
  strict: true
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "test-site" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "test-site")
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if cfg.MQTT.Broker.ClientID != "test-client" {
		t.Errorf("MQTT.Broker.ClientID = %q, want %q", cfg.MQTT.Broker.ClientID, "test-client")
	}
	if !cfg.SensorTypes.Strict || cfg.SensorTypes.CatalogFile != "configs/sensor-types.yaml" {
		t.Errorf("SensorTypes = %+v", cfg.SensorTypes)
	}
	// Defaults survive for sections not in the file
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want default json", cfg.Logging.Format)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
site:
  id: ""
database:
  path: ""
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Load() expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "site.id") || !strings.Contains(err.Error(), "database.path") {
		t.Errorf("error should list every problem, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			modify: func(*Config) {},
		},
		{
			name:    "invalid qos",
			modify:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name:   "qos ignored when mqtt disabled",
			modify: func(c *Config) { c.MQTT.Enabled = false; c.MQTT.QoS = 3 },
		},
		{
			name:    "invalid mqtt port",
			modify:  func(c *Config) { c.MQTT.Broker.Port = 70000 },
			wantErr: "mqtt.broker.port",
		},
		{
			name:    "influxdb without url",
			modify:  func(c *Config) { c.InfluxDB.Enabled = true; c.InfluxDB.Bucket = "b" },
			wantErr: "influxdb.url",
		},
		{
			name:    "metrics path without slash",
			modify:  func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Path = "metrics" },
			wantErr: "metrics.path",
		},
		{
			name:    "no sensor type source",
			modify:  func(c *Config) { c.SensorTypes.Builtin = false },
			wantErr: "sensor_types",
		},
		{
			name: "catalog only",
			modify: func(c *Config) {
				c.SensorTypes.Builtin = false
				c.SensorTypes.CatalogFile = "types.yaml"
			},
		},
		{
			name:    "negative busy timeout",
			modify:  func(c *Config) { c.Database.BusyTimeout = -1 },
			wantErr: "busy_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("GRAYLOGIC_DATABASE_PATH", "/env/sensors.db")
	t.Setenv("GRAYLOGIC_MQTT_HOST", "broker.local")
	t.Setenv("GRAYLOGIC_MQTT_PASSWORD", "secret")
	t.Setenv("GRAYLOGIC_INFLUXDB_TOKEN", "token")
	t.Setenv("GRAYLOGIC_LOG_LEVEL", "debug")
	t.Setenv("GRAYLOGIC_SENSOR_TYPES_CATALOG", "/etc/types.yaml")
	t.Setenv("GRAYLOGIC_SENSOR_TYPES_STRICT", "true")

	cfg := defaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Database.Path != "/env/sensors.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.MQTT.Broker.Host != "broker.local" || cfg.MQTT.Auth.Password != "secret" {
		t.Errorf("MQTT = %+v", cfg.MQTT)
	}
	if cfg.InfluxDB.Token != "token" {
		t.Errorf("InfluxDB.Token = %q", cfg.InfluxDB.Token)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	if cfg.SensorTypes.CatalogFile != "/etc/types.yaml" || !cfg.SensorTypes.Strict {
		t.Errorf("SensorTypes = %+v", cfg.SensorTypes)
	}
}

func TestApplyEnvOverrides_InvalidBoolIgnored(t *testing.T) {
	t.Setenv("GRAYLOGIC_SENSOR_TYPES_STRICT", "sometimes")

	cfg := defaultConfig()
	applyEnvOverrides(cfg)

	if cfg.SensorTypes.Strict {
		t.Error("Strict enabled by an unparsable value")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if !cfg.SensorTypes.Builtin || cfg.SensorTypes.Strict {
		t.Errorf("SensorTypes = %+v, want builtin and permissive", cfg.SensorTypes)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics.Path = %q", cfg.Metrics.Path)
	}
	if cfg.InfluxDB.Enabled {
		t.Error("InfluxDB enabled by default")
	}
}
