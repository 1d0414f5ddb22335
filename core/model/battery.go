package model

// Battery holds the latest measurements and the cached SoC of one pack.
type Battery struct {
	Voltage     float64 // terminal voltage in V
	Current     float64 // current in A, negative while discharging
	Temperature float64 // pack temperature in °C
	// SoC mirrors the estimator value in percent. It is refreshed after every
	// estimator mutation and must not be written independently of it.
	SoC float64
}

// NewBattery returns a Battery with the given measurements and initial SoC.
func NewBattery(voltage, current, temperature, initialSoC float64) *Battery {
	return &Battery{
		Voltage:     voltage,
		Current:     current,
		Temperature: temperature,
		SoC:         initialSoC,
	}
}

// Charging reports whether current is flowing into the pack.
func (b Battery) Charging() bool { return b.Current > 0 }
