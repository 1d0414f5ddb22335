package events

import (
	"time"

	"github.com/kilianp07/bms/core/metrics"
)

// Event is implemented by every bus event.
type Event interface {
	OccurredAt() time.Time
}

// SoCTick is published after every estimation tick.
type SoCTick struct {
	Sample metrics.BatterySample
}

func (e SoCTick) OccurredAt() time.Time { return e.Sample.Time }

// CellTick is published after every monitoring pass.
type CellTick struct {
	Snapshot metrics.CellSnapshot
}

func (e CellTick) OccurredAt() time.Time { return e.Snapshot.Time }

// ThermalTransition is published when the controller changes state.
type ThermalTransition struct {
	Transition metrics.ThermalTransition
}

func (e ThermalTransition) OccurredAt() time.Time { return e.Transition.Time }
