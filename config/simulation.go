package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/bms/simulator"
)

// SimulationConfig drives the simulated sensors and the run loop.
type SimulationConfig struct {
	// Cells is the number of cells monitored by the thermal controller.
	Cells                  int     `json:"cells"`
	InitialCellTemperature float64 `json:"initial_cell_temperature"`
	// CellStep bounds the per-pass random walk of every cell in °C.
	CellStep float64 `json:"cell_step"`
	// Cycles is the number of ticks to run; 0 runs until canceled.
	Cycles int `json:"cycles"`
	// IntervalMS paces the ticks; 0 runs them back to back.
	IntervalMS int `json:"interval_ms"`
	// DeltaTimeHours is the simulated time per tick.
	DeltaTimeHours     float64 `json:"delta_time_hours"`
	InitialVoltage     float64 `json:"initial_voltage"`
	InitialCurrent     float64 `json:"initial_current"`
	InitialTemperature float64 `json:"initial_temperature"`
	// Current is the constant simulated current, negative while discharging.
	Current           float64 `json:"current"`
	TemperatureJitter float64 `json:"temperature_jitter"`
	// Seed makes runs reproducible; 0 seeds from the clock.
	Seed uint64 `json:"seed"`
}

// DefaultSimulation returns one-minute ticks paced at one per second.
func DefaultSimulation() SimulationConfig {
	return SimulationConfig{
		Cells:                  5,
		InitialCellTemperature: 30,
		CellStep:               5,
		Cycles:                 10000,
		IntervalMS:             1000,
		DeltaTimeHours:         1.0 / 60.0,
		InitialVoltage:         4.2,
		InitialCurrent:         -5,
		InitialTemperature:     25,
		Current:                -5,
		TemperatureJitter:      0.5,
	}
}

// SetDefaults restores the cell count when it was cleared.
func (c *SimulationConfig) SetDefaults() {
	if c.Cells == 0 {
		c.Cells = DefaultSimulation().Cells
	}
}

// Validate checks counts and durations.
func (c SimulationConfig) Validate() error {
	if c.Cells < 1 {
		return fmt.Errorf("cells must be at least 1, got %d", c.Cells)
	}
	if c.Cycles < 0 {
		return fmt.Errorf("cycles must not be negative")
	}
	if c.IntervalMS < 0 {
		return fmt.Errorf("interval_ms must not be negative")
	}
	if c.DeltaTimeHours < 0 {
		return fmt.Errorf("delta_time_hours must not be negative")
	}
	if c.CellStep < 0 || c.TemperatureJitter < 0 {
		return fmt.Errorf("cell_step and temperature_jitter must not be negative")
	}
	return nil
}

// Interval returns the tick pacing.
func (c SimulationConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMS) * time.Millisecond
}

// Sensors returns the simulated sensor settings.
func (c SimulationConfig) Sensors() simulator.SensorConfig {
	return simulator.SensorConfig{
		Current:           c.Current,
		TemperatureJitter: c.TemperatureJitter,
		DeltaTime:         c.DeltaTimeHours,
	}
}
