package thermal

import (
	"errors"

	"github.com/kilianp07/bms/core/logger"
	"github.com/kilianp07/bms/core/model"
)

// Signals emitted to the actuation hardware.
const (
	SignalCooling     = "cooling activated"
	SignalHeating     = "heating activated"
	SignalDeactivated = "systems deactivated"
)

// Actuation describes one state transition of the controller.
type Actuation struct {
	From    model.ThermalState
	To      model.ThermalState
	Hottest float64
	Coldest float64
	// Pass is the monitoring pass that triggered the transition, starting at 1.
	Pass uint64
}

// Signal returns the actuation signal for the target state.
func (a Actuation) Signal() string {
	switch a.To {
	case model.ThermalCooling:
		return SignalCooling
	case model.ThermalHeating:
		return SignalHeating
	default:
		return SignalDeactivated
	}
}

// Actuator drives the cooling and heating hardware.
type Actuator interface {
	Actuate(a Actuation) error
}

// ActuatorFunc adapts a function to Actuator.
type ActuatorFunc func(Actuation) error

// Actuate calls f(a).
func (f ActuatorFunc) Actuate(a Actuation) error { return f(a) }

// NopActuator ignores all actuations.
type NopActuator struct{}

// Actuate does nothing.
func (NopActuator) Actuate(Actuation) error { return nil }

// Actuators forwards an actuation to every member and joins their errors.
type Actuators []Actuator

// Actuate calls every actuator, even after one fails.
func (as Actuators) Actuate(a Actuation) error {
	var errs []error
	for _, act := range as {
		if err := act.Actuate(a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogActuator writes every actuation signal to a logger.
type LogActuator struct {
	Log logger.Logger
}

// Actuate logs the signal.
func (l LogActuator) Actuate(a Actuation) error {
	l.Log.Infof("%s (%s -> %s, hottest %.2f°C, coldest %.2f°C)", a.Signal(), a.From, a.To, a.Hottest, a.Coldest)
	return nil
}

// BestEffort wraps an actuator whose failures are logged instead of blocking
// the transition, such as a telemetry notification.
type BestEffort struct {
	Actuator Actuator
	Log      logger.Logger
}

// Actuate forwards a and always returns nil.
func (b BestEffort) Actuate(a Actuation) error {
	if err := b.Actuator.Actuate(a); err != nil {
		b.Log.Warnf("actuation %q failed: %v", a.Signal(), err)
	}
	return nil
}
