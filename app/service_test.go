package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/bms/config"
	"github.com/kilianp07/bms/core/factory"
	coremetrics "github.com/kilianp07/bms/core/metrics"
	"github.com/kilianp07/bms/core/model"
	"github.com/kilianp07/bms/core/soc"
	"github.com/kilianp07/bms/core/thermal"
)

type recordingSink struct {
	mu          sync.Mutex
	samples     []coremetrics.BatterySample
	transitions []coremetrics.ThermalTransition
	snapshots   []coremetrics.CellSnapshot
	closed      int
}

func (r *recordingSink) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
	return nil
}

func (r *recordingSink) RecordBatterySample(s coremetrics.BatterySample) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, s)
	return nil
}

func (r *recordingSink) RecordThermalTransition(ev coremetrics.ThermalTransition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, ev)
	return nil
}

func (r *recordingSink) RecordCellTemperatures(s coremetrics.CellSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, s)
	return nil
}

func testConfig(t *testing.T, cycles int) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.PackID = "test-pack"
	cfg.Simulation.Cycles = cycles
	cfg.Simulation.IntervalMS = 0
	cfg.Simulation.Seed = 1
	cfg.Datalog.Path = filepath.Join(t.TempDir(), "log.csv")
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return &cfg
}

func fixedClock() func() time.Time {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		ts = ts.Add(time.Minute)
		return ts
	}
}

func TestRunSoC(t *testing.T) {
	cfg := testConfig(t, 10)
	sink := &recordingSink{}
	svc, err := New(cfg, WithSink(sink), WithClock(fixedClock()))
	require.NoError(t, err)

	require.NoError(t, svc.RunSoC(context.Background()))
	require.NoError(t, svc.Close())

	est, mon := svc.Ticks()
	assert.Equal(t, uint64(10), est)
	assert.Zero(t, mon)

	require.Len(t, sink.samples, 10)
	assert.Empty(t, sink.snapshots)
	for i, s := range sink.samples {
		assert.Equal(t, uint64(i+1), s.Tick)
		assert.Equal(t, "test-pack", s.PackID)
		assert.Equal(t, -5.0, s.Current)
		assert.GreaterOrEqual(t, s.SoC, 0.0)
		assert.LessOrEqual(t, s.SoC, 100.0)
		assert.Equal(t, soc.VoltageCurve(s.CoulombSoC), s.Voltage)
	}
	b := svc.Battery()
	assert.Equal(t, sink.samples[9].SoC, b.SoC)

	data, err := os.ReadFile(cfg.Datalog.Path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 11)
	assert.Equal(t, "Timestamp,Voltage,Current,Temperature,SoC", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2024-01-01T00:01:00Z,"), lines[1])
}

func TestRunSoCMatchesPipeline(t *testing.T) {
	cfg := testConfig(t, 3)
	cfg.Simulation.TemperatureJitter = 0
	cfg.Datalog.Enabled = false
	svc, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, svc.RunSoC(context.Background()))
	require.NoError(t, svc.Close())

	b := model.NewBattery(4.2, -5, 25, cfg.Pack.InitialSoC)
	p := soc.NewPipeline(cfg.Pack, b)
	for i := 0; i < 3; i++ {
		p.Step(soc.Measurement{Current: -5, Temperature: 25, DeltaTime: 1.0 / 60}, soc.VoltageFunc(soc.VoltageCurve))
	}
	assert.InDelta(t, b.SoC, svc.Battery().SoC, 1e-9)
	assert.InDelta(t, b.Voltage, svc.Battery().Voltage, 1e-9)
}

func TestRunThermal(t *testing.T) {
	cfg := testConfig(t, 20)
	cfg.Datalog.Enabled = false
	sink := &recordingSink{}
	var actuations []thermal.Actuation
	svc, err := New(cfg, WithSink(sink), WithActuator(thermal.ActuatorFunc(func(a thermal.Actuation) error {
		actuations = append(actuations, a)
		return nil
	})))
	require.NoError(t, err)

	require.NoError(t, svc.RunThermal(context.Background()))
	require.NoError(t, svc.Close())

	est, mon := svc.Ticks()
	assert.Zero(t, est)
	assert.Equal(t, uint64(20), mon)
	assert.Empty(t, sink.samples)
	require.Len(t, sink.snapshots, 20)
	assert.Len(t, sink.snapshots[0].Cells, 5)
	for _, snap := range sink.snapshots {
		sum := 0.0
		for _, c := range snap.Cells {
			sum += c.Temperature
			assert.LessOrEqual(t, c.Temperature, snap.Hottest)
			assert.GreaterOrEqual(t, c.Temperature, snap.Coldest)
		}
		assert.InDelta(t, sum/float64(len(snap.Cells)), snap.Mean, 1e-9)
	}

	require.Len(t, sink.transitions, len(actuations))
	for i, a := range actuations {
		assert.Equal(t, a.From, sink.transitions[i].From)
		assert.Equal(t, a.To, sink.transitions[i].To)
		assert.Equal(t, a.Signal(), sink.transitions[i].Signal)
		assert.NotEqual(t, a.From, a.To)
	}
	assert.Equal(t, sink.snapshots[19].State, svc.ThermalState())
}

func TestRunThermalReachesCooling(t *testing.T) {
	cfg := testConfig(t, 1)
	cfg.Datalog.Enabled = false
	cfg.Simulation.InitialCellTemperature = 60
	cfg.Simulation.CellStep = 0
	svc, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, svc.RunThermal(context.Background()))
	require.NoError(t, svc.Close())
	assert.Equal(t, model.ThermalCooling, svc.ThermalState())
	for _, c := range svc.Cells() {
		assert.Equal(t, 60.0, c.Temperature)
	}
}

func TestRunUntilCanceled(t *testing.T) {
	cfg := testConfig(t, 0)
	cfg.Simulation.IntervalMS = 1
	cfg.Datalog.Enabled = false
	svc, err := New(cfg)
	require.NoError(t, err)
	defer func() { require.NoError(t, svc.Close()) }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, svc.Run(ctx))
	est, mon := svc.Ticks()
	assert.Positive(t, est)
	assert.Equal(t, est, mon)
}

func TestRunCanceledBeforeStart(t *testing.T) {
	cfg := testConfig(t, 5)
	cfg.Datalog.Enabled = false
	svc, err := New(cfg)
	require.NoError(t, err)
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, svc.Run(ctx))
	est, _ := svc.Ticks()
	assert.Zero(t, est)
}

func TestNewErrors(t *testing.T) {
	cfg := testConfig(t, 1)
	cfg.Datalog.Path = filepath.Join(t.TempDir(), "missing", "log.csv")
	sink := &recordingSink{}
	_, err := New(cfg, WithSink(sink))
	assert.Error(t, err)
	assert.Equal(t, 1, sink.closed)

	cfg = testConfig(t, 1)
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "missing"}}
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestCloseIdempotent(t *testing.T) {
	cfg := testConfig(t, 1)
	sink := &recordingSink{}
	svc, err := New(cfg, WithSink(sink))
	require.NoError(t, err)
	require.NoError(t, svc.Close())
	require.NoError(t, svc.Close())
	assert.Equal(t, 1, sink.closed)
}
