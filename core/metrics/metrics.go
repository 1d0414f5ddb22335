package metrics

import (
	"time"

	"github.com/kilianp07/bms/core/model"
)

// BatterySample is the state of a pack after one estimation tick.
type BatterySample struct {
	PackID      string
	Tick        uint64
	Voltage     float64
	Current     float64
	Temperature float64
	SoC         float64
	// CoulombSoC and CompensatedSoC are the intermediate pipeline values.
	CoulombSoC     float64
	CompensatedSoC float64
	Time           time.Time
}

// MetricsSink records battery samples.
type MetricsSink interface {
	RecordBatterySample(s BatterySample) error
}

// ThermalTransition is one state change of the thermal controller.
type ThermalTransition struct {
	PackID  string
	From    model.ThermalState
	To      model.ThermalState
	Signal  string
	Hottest float64
	Coldest float64
	Time    time.Time
}

// ThermalRecorder records thermal transitions.
type ThermalRecorder interface {
	RecordThermalTransition(ev ThermalTransition) error
}

// CellSnapshot holds all cell temperatures after one monitoring pass.
type CellSnapshot struct {
	PackID string
	Tick   uint64
	Cells  []model.BatteryCell
	State  model.ThermalState
	// Hottest, Coldest and Mean summarize Cells in °C.
	Hottest float64
	Coldest float64
	Mean    float64
	Time    time.Time
}

// CellRecorder records cell temperature snapshots.
type CellRecorder interface {
	RecordCellTemperatures(s CellSnapshot) error
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) RecordBatterySample(BatterySample) error         { return nil }
func (NopSink) RecordThermalTransition(ThermalTransition) error { return nil }
func (NopSink) RecordCellTemperatures(CellSnapshot) error       { return nil }
