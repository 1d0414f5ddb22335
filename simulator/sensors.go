package simulator

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kilianp07/bms/core/model"
	"github.com/kilianp07/bms/core/soc"
)

// SensorConfig parametrizes the simulated pack sensors.
type SensorConfig struct {
	Current           float64 // A, constant
	TemperatureJitter float64 // °C, half width of the uniform jitter
	DeltaTime         float64 // h per tick
}

// Sensors simulates the pack current, temperature and voltage.
type Sensors struct {
	cfg    SensorConfig
	jitter distuv.Uniform
}

// NewSensors creates sensors drawing their jitter from src.
func NewSensors(cfg SensorConfig, src rand.Source) *Sensors {
	return &Sensors{
		cfg:    cfg,
		jitter: distuv.Uniform{Min: -cfg.TemperatureJitter, Max: cfg.TemperatureJitter, Src: src},
	}
}

// Measure returns the measurement of the next tick. The temperature walks
// from the last battery temperature.
func (s *Sensors) Measure(b *model.Battery) soc.Measurement {
	temp := b.Temperature
	if s.cfg.TemperatureJitter > 0 {
		temp += s.jitter.Rand()
	}
	return soc.Measurement{
		Current:     s.cfg.Current,
		Temperature: temp,
		DeltaTime:   s.cfg.DeltaTime,
	}
}

// Voltage returns the open-circuit voltage for the tick SoC.
func (s *Sensors) Voltage(stateOfCharge float64) float64 {
	return soc.VoltageCurve(stateOfCharge)
}
