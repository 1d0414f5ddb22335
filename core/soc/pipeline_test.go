package soc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/bms/core/model"
)

// recordingCorrector captures what the pipeline hands to the correction step.
type recordingCorrector struct {
	voltage float64
	before  float64
	set     float64
}

func (r *recordingCorrector) Correct(voltage float64, est *Estimator) {
	r.voltage = voltage
	r.before = est.Get()
	est.Set(r.set)
}

func TestPipelineStepOrder(t *testing.T) {
	cfg := DefaultConfig()
	b := model.NewBattery(4.2, -5, 25, cfg.InitialSoC)
	rc := &recordingCorrector{set: 80}
	p := NewPipeline(cfg, b, WithCorrector(rc))

	var seenSoC float64
	res := p.Step(Measurement{Current: -5, Temperature: 35, DeltaTime: 1}, VoltageFunc(func(soc float64) float64 {
		seenSoC = soc
		return 4.0
	}))

	assert.InDelta(t, 95, seenSoC, 1e-9, "voltage source sees the Coulomb-counted SoC")
	assert.InDelta(t, 95, res.CoulombSoC, 1e-9)
	assert.InDelta(t, 95.5, res.CompensatedSoC, 1e-9)
	assert.Equal(t, 4.0, rc.voltage, "correction reads the injected voltage")
	assert.InDelta(t, 95, rc.before, 1e-9, "compensation is not written to the estimator")
	assert.Equal(t, 80.0, res.SoC)
	assert.Equal(t, 80.0, b.SoC)
	assert.Equal(t, 80.0, p.Estimator().Get())
	assert.Equal(t, 4.0, b.Voltage)
	assert.Equal(t, -5.0, b.Current)
	assert.Equal(t, 35.0, b.Temperature)
}

func TestPipelineCompensationClamped(t *testing.T) {
	cfg := DefaultConfig()
	b := model.NewBattery(4.2, 0, 45, cfg.InitialSoC)
	p := NewPipeline(cfg, b)
	res := p.Step(Measurement{Current: 0, Temperature: 45, DeltaTime: 1}, VoltageFunc(VoltageCurve))
	assert.Equal(t, 100.0, res.CompensatedSoC)
}

func TestPipelineLinearCorrectionIsAuthoritative(t *testing.T) {
	cfg := DefaultConfig()
	b := model.NewBattery(4.2, -5, 25, cfg.InitialSoC)
	p := NewPipeline(cfg, b)
	res := p.Step(Measurement{Current: -5, Temperature: 30, DeltaTime: 1.0 / 60}, VoltageFunc(VoltageCurve))

	wantVoltage := VoltageCurve(res.CoulombSoC)
	assert.InDelta(t, wantVoltage, b.Voltage, 1e-9)
	assert.InDelta(t, NewLinearOCV(cfg).SoC(wantVoltage), b.SoC, 1e-9)
}

func TestPipelineSyncsBatteryOnConstruction(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialSoC = 150
	b := model.NewBattery(4.2, 0, 25, cfg.InitialSoC)
	p := NewPipeline(cfg, b)
	assert.Equal(t, 100.0, b.SoC)
	assert.Same(t, b, p.Battery())
}

func TestPipelineBoundsOverManyTicks(t *testing.T) {
	cfg := DefaultConfig()
	b := model.NewBattery(4.2, -5, 25, cfg.InitialSoC)
	p := NewPipeline(cfg, b, WithCorrector(CurveOCV{Min: cfg.MinSoC, Max: cfg.MaxSoC}))
	for i := 0; i < 2000; i++ {
		res := p.Step(Measurement{Current: -50, Temperature: 10, DeltaTime: 1.0 / 60}, VoltageFunc(VoltageCurve))
		require.GreaterOrEqual(t, res.SoC, 0.0)
		require.LessOrEqual(t, res.SoC, 100.0)
		require.Equal(t, p.Estimator().Get(), b.SoC)
	}
	assert.Equal(t, 0.0, b.SoC)
}

func TestPipelineWithEstimator(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialSoC = 40
	e := NewEstimator(cfg)
	b := model.NewBattery(3.7, 0, 25, 100)
	NewPipeline(DefaultConfig(), b, WithEstimator(e))
	assert.Equal(t, 40.0, b.SoC)
}

func TestPipelineClampsWithEstimatorBounds(t *testing.T) {
	estCfg := DefaultConfig()
	estCfg.InitialSoC = 40
	pipeCfg := DefaultConfig()
	pipeCfg.MinSoC, pipeCfg.MaxSoC = 20, 30

	b := model.NewBattery(3.7, 0, 25, 0)
	p := NewPipeline(pipeCfg, b, WithEstimator(NewEstimator(estCfg)))
	res := p.Step(Measurement{Current: 0, Temperature: 25, DeltaTime: 1}, VoltageFunc(func(float64) float64 { return 3.6 }))
	assert.Equal(t, 40.0, res.CoulombSoC)
	assert.Equal(t, 40.0, res.CompensatedSoC)
}
