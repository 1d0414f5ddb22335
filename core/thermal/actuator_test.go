package thermal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/bms/core/model"
	"github.com/kilianp07/bms/infra/logger"
)

func TestActuationSignal(t *testing.T) {
	assert.Equal(t, SignalCooling, Actuation{To: model.ThermalCooling}.Signal())
	assert.Equal(t, SignalHeating, Actuation{To: model.ThermalHeating}.Signal())
	assert.Equal(t, SignalDeactivated, Actuation{To: model.ThermalIdle}.Signal())
}

func TestActuatorsJoinErrors(t *testing.T) {
	calls := 0
	ok := ActuatorFunc(func(Actuation) error { calls++; return nil })
	fail := ActuatorFunc(func(Actuation) error { calls++; return errors.New("offline") })

	err := Actuators{fail, ok, LogActuator{Log: logger.NopLogger{}}}.Actuate(Actuation{To: model.ThermalCooling})
	assert.EqualError(t, err, "offline")
	assert.Equal(t, 2, calls)

	assert.NoError(t, BestEffort{Actuator: fail, Log: logger.NopLogger{}}.Actuate(Actuation{}))
}
