package thermal

import (
	"fmt"
	"math"
)

// Config holds the temperature thresholds in °C.
type Config struct {
	MaxTemperature float64 `json:"max_temperature"`
	MinTemperature float64 `json:"min_temperature"`
}

// DefaultConfig returns thresholds suited to Li-ion cells.
func DefaultConfig() Config {
	return Config{MaxTemperature: 40, MinTemperature: 10}
}

// Validate checks that the thresholds are finite and ordered.
func (c Config) Validate() error {
	if math.IsNaN(c.MaxTemperature) || math.IsNaN(c.MinTemperature) ||
		math.IsInf(c.MaxTemperature, 0) || math.IsInf(c.MinTemperature, 0) {
		return fmt.Errorf("temperature thresholds must be finite")
	}
	if c.MinTemperature >= c.MaxTemperature {
		return fmt.Errorf("min_temperature (%v) must be below max_temperature (%v)", c.MinTemperature, c.MaxTemperature)
	}
	return nil
}
