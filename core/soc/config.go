package soc

import (
	"errors"
	"fmt"
	"math"
)

// Correction method names accepted by Config.Correction.
const (
	CorrectionLinear = "linear"
	CorrectionCurve  = "curve"
)

// Config holds the pack-level constants used by the estimator and its
// corrections. It is immutable once handed to a constructor.
type Config struct {
	// NominalCapacity is the rated capacity in Ah.
	NominalCapacity float64 `json:"nominal_capacity"`
	// InitialSoC is the SoC in percent at startup.
	InitialSoC float64 `json:"initial_soc"`
	MinSoC     float64 `json:"min_soc"`
	MaxSoC     float64 `json:"max_soc"`
	// TemperatureCoefficient is the compensation slope in %/°C.
	TemperatureCoefficient float64 `json:"temperature_coefficient"`
	ReferenceTemperature   float64 `json:"reference_temperature"`
	// VoltageOffset and VoltageSpan define the linear OCV placeholder.
	VoltageOffset float64 `json:"voltage_offset"`
	VoltageSpan   float64 `json:"voltage_span"`
	// Correction selects the Corrector: "linear" or "curve".
	Correction string `json:"correction"`
}

// DefaultConfig returns the reference constants for a 100 Ah pack.
func DefaultConfig() Config {
	return Config{
		NominalCapacity:        100,
		InitialSoC:             100,
		MinSoC:                 0,
		MaxSoC:                 100,
		TemperatureCoefficient: 0.05,
		ReferenceTemperature:   25,
		VoltageOffset:          3.0,
		VoltageSpan:            1.2,
		Correction:             CorrectionLinear,
	}
}

// Validate rejects configurations that would make the estimator degenerate.
func (c Config) Validate() error {
	if c.NominalCapacity <= 0 || math.IsInf(c.NominalCapacity, 0) || math.IsNaN(c.NominalCapacity) {
		return fmt.Errorf("nominal_capacity must be positive and finite, got %v", c.NominalCapacity)
	}
	if !(c.MinSoC < c.MaxSoC) {
		return fmt.Errorf("min_soc (%v) must be below max_soc (%v)", c.MinSoC, c.MaxSoC)
	}
	if c.VoltageSpan == 0 || math.IsNaN(c.VoltageSpan) {
		return errors.New("voltage_span must be non-zero")
	}
	for name, v := range map[string]float64{
		"initial_soc":             c.InitialSoC,
		"temperature_coefficient": c.TemperatureCoefficient,
		"reference_temperature":   c.ReferenceTemperature,
		"voltage_offset":          c.VoltageOffset,
	} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return fmt.Errorf("%s must be finite", name)
		}
	}
	switch c.Correction {
	case "", CorrectionLinear, CorrectionCurve:
	default:
		return fmt.Errorf("unknown correction %q", c.Correction)
	}
	return nil
}

// Clamp limits v to [MinSoC, MaxSoC].
func (c Config) Clamp(v float64) float64 {
	return clamp(v, c.MinSoC, c.MaxSoC)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
