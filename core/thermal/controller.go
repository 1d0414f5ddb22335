package thermal

import (
	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/bms/core/model"
)

// Decide returns the target state for the given cell temperatures. A cell
// above MaxTemperature requests cooling, which wins over a cell below
// MinTemperature requesting heating.
func Decide(temps []float64, cfg Config) model.ThermalState {
	if len(temps) == 0 {
		return model.ThermalIdle
	}
	if floats.Max(temps) > cfg.MaxTemperature {
		return model.ThermalCooling
	}
	if floats.Min(temps) < cfg.MinTemperature {
		return model.ThermalHeating
	}
	return model.ThermalIdle
}

// Controller is the thermal state machine. Its initial state is Idle and it
// has no terminal state.
type Controller struct {
	cfg      Config
	state    model.ThermalState
	actuator Actuator
	pass     uint64
}

// NewController returns an idle Controller. A nil actuator discards actuations.
func NewController(cfg Config, actuator Actuator) *Controller {
	if actuator == nil {
		actuator = NopActuator{}
	}
	return &Controller{cfg: cfg, actuator: actuator}
}

// State returns the current state.
func (c *Controller) State() model.ThermalState { return c.state }

// Monitor evaluates all cells once and actuates on a state change. It reports
// whether a transition happened. When the actuator fails the state is kept so
// the next pass retries the transition.
func (c *Controller) Monitor(cells *CellArray) (bool, error) {
	c.pass++
	temps := cells.Temperatures()
	target := Decide(temps, c.cfg)
	if target == c.state {
		return false, nil
	}
	a := Actuation{From: c.state, To: target, Pass: c.pass}
	if len(temps) > 0 {
		a.Hottest, a.Coldest = floats.Max(temps), floats.Min(temps)
	}
	if err := c.actuator.Actuate(a); err != nil {
		return false, err
	}
	c.state = target
	return true, nil
}
