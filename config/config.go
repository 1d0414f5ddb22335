// Package config loads the application configuration from defaults, an
// optional YAML or JSON file and BMS_ environment variables, in that order.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/bms/core/metrics"
	"github.com/kilianp07/bms/core/soc"
	"github.com/kilianp07/bms/core/thermal"
	"github.com/kilianp07/bms/infra/datalog"
	"github.com/kilianp07/bms/infra/mqtt"
)

// EnvPrefix prefixes every environment override. Nested keys are separated
// by a double underscore, e.g. BMS_PACK__NOMINAL_CAPACITY.
const EnvPrefix = "BMS_"

type Config struct {
	PackID     string           `json:"pack_id"`
	Pack       soc.Config       `json:"pack"`
	Thermal    thermal.Config   `json:"thermal"`
	Simulation SimulationConfig `json:"simulation"`
	Datalog    datalog.Config   `json:"datalog"`
	Logging    LoggingConfig    `json:"logging"`
	Metrics    metrics.Config   `json:"metrics"`
	MQTT       mqtt.Config      `json:"mqtt"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Pack:       soc.DefaultConfig(),
		Thermal:    thermal.DefaultConfig(),
		Simulation: DefaultSimulation(),
		Datalog:    datalog.Config{Enabled: true, Path: "battery_data.csv"},
		Logging:    LoggingConfig{Level: "info"},
		Metrics:    metrics.Config{PrometheusAddr: ":2112"},
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills the fields that have no static default.
func (c *Config) SetDefaults() {
	if c.PackID == "" {
		c.PackID = uuid.NewString()
	}
	if c.Pack.Correction == "" {
		c.Pack.Correction = soc.CorrectionLinear
	}
	c.Simulation.SetDefaults()
	c.Datalog.SetDefaults()
	c.Logging.SetDefaults()
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "bms-" + c.PackID
	}
	c.MQTT.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Pack.Validate(); err != nil {
		return fmt.Errorf("pack: %w", err)
	}
	if err := c.Thermal.Validate(); err != nil {
		return fmt.Errorf("thermal: %w", err)
	}
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if err := c.Datalog.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.MQTT.Validate(); err != nil {
		return err
	}
	return nil
}
