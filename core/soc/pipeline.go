package soc

import "github.com/kilianp07/bms/core/model"

// Measurement is the input of one estimation tick.
type Measurement struct {
	Current     float64 // A, negative while discharging
	Temperature float64 // °C
	DeltaTime   float64 // h elapsed since the previous tick
}

// VoltageSource supplies the pack voltage once the Coulomb-counted SoC of the
// tick is known. It is either a sensor read or a simulation.
type VoltageSource interface {
	Voltage(soc float64) float64
}

// VoltageFunc adapts a function to VoltageSource.
type VoltageFunc func(soc float64) float64

// Voltage calls f(soc).
func (f VoltageFunc) Voltage(soc float64) float64 { return f(soc) }

// Result reports the intermediate values of one tick.
type Result struct {
	CoulombSoC     float64 // after integration
	Voltage        float64 // injected voltage
	CompensatedSoC float64 // temperature compensated and clamped
	SoC            float64 // authoritative value after voltage correction
}

// Pipeline owns an Estimator and keeps a Battery in sync with it.
type Pipeline struct {
	cfg       Config
	est       *Estimator
	battery   *model.Battery
	corrector Corrector
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCorrector replaces the Corrector selected by the configuration.
func WithCorrector(c Corrector) Option {
	return func(p *Pipeline) { p.corrector = c }
}

// WithEstimator uses an existing estimator instead of a fresh one. Its SoC
// bounds also clamp the compensated value.
func WithEstimator(e *Estimator) Option {
	return func(p *Pipeline) { p.est = e }
}

// NewPipeline returns a Pipeline for battery. The battery SoC is synchronized
// with the estimator immediately.
func NewPipeline(cfg Config, battery *model.Battery, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: cfg, battery: battery}
	for _, o := range opts {
		o(p)
	}
	if p.est == nil {
		p.est = NewEstimator(cfg)
	}
	if p.corrector == nil {
		p.corrector = NewCorrector(cfg)
	}
	p.battery.SoC = p.est.Get()
	return p
}

// Step runs one estimation tick. The order is fixed: each step consumes the
// output of the previous one.
//
// The compensated SoC written to the battery in step 4 is overwritten by the
// voltage correction in step 6 and therefore never survives the tick.
func (p *Pipeline) Step(m Measurement, vs VoltageSource) Result {
	b := p.battery
	b.Current = m.Current
	b.Temperature = m.Temperature

	// 1-2: Coulomb counting.
	p.est.Update(m.Current, m.DeltaTime)
	b.SoC = p.est.Get()
	res := Result{CoulombSoC: b.SoC}

	// 3: voltage for the new SoC.
	b.Voltage = vs.Voltage(b.SoC)
	res.Voltage = b.Voltage

	// 4: temperature compensation.
	b.SoC = p.est.Clamp(p.cfg.Compensate(b.SoC, b.Temperature))
	res.CompensatedSoC = b.SoC

	// 5-6: voltage correction, authoritative.
	p.corrector.Correct(b.Voltage, p.est)
	b.SoC = p.est.Get()
	res.SoC = b.SoC
	return res
}

// Estimator returns the estimator owned by the pipeline.
func (p *Pipeline) Estimator() *Estimator { return p.est }

// Battery returns the battery kept in sync by the pipeline.
func (p *Pipeline) Battery() *model.Battery { return p.battery }
