package soc

// Corrector overwrites the estimator from a voltage reading. Implementations
// backed by a real OCV table replace LinearOCV wholesale.
type Corrector interface {
	Correct(voltage float64, est *Estimator)
}

// LinearOCV is a placeholder OCV mapping:
//
//	soc = (voltage - Offset) / Span * 100
//
// It does not model any chemistry or temperature dependency.
type LinearOCV struct {
	Offset   float64
	Span     float64
	Min, Max float64
}

// NewLinearOCV builds a LinearOCV from the pack configuration.
func NewLinearOCV(cfg Config) LinearOCV {
	return LinearOCV{Offset: cfg.VoltageOffset, Span: cfg.VoltageSpan, Min: cfg.MinSoC, Max: cfg.MaxSoC}
}

// SoC returns the clamped SoC for voltage.
func (l LinearOCV) SoC(voltage float64) float64 {
	return clamp((voltage-l.Offset)/l.Span*100, l.Min, l.Max)
}

// Correct sets the estimator to SoC(voltage).
func (l LinearOCV) Correct(voltage float64, est *Estimator) {
	est.Set(l.SoC(voltage))
}

// CurveOCV inverts VoltageCurve by linear interpolation between its
// breakpoints.
type CurveOCV struct {
	Min, Max float64
}

// SoC returns the clamped SoC for voltage.
func (c CurveOCV) SoC(voltage float64) float64 {
	if voltage <= curveVoltages[0] {
		return clamp(curveSoC[0], c.Min, c.Max)
	}
	last := len(curveVoltages) - 1
	for i := 1; i <= last; i++ {
		if voltage <= curveVoltages[i] {
			lo, hi := curveVoltages[i-1], curveVoltages[i]
			frac := (voltage - lo) / (hi - lo)
			return clamp(curveSoC[i-1]+frac*(curveSoC[i]-curveSoC[i-1]), c.Min, c.Max)
		}
	}
	return clamp(curveSoC[last], c.Min, c.Max)
}

// Correct sets the estimator to SoC(voltage).
func (c CurveOCV) Correct(voltage float64, est *Estimator) {
	est.Set(c.SoC(voltage))
}

// NewCorrector returns the Corrector selected by cfg.Correction.
func NewCorrector(cfg Config) Corrector {
	if cfg.Correction == CorrectionCurve {
		return CurveOCV{Min: cfg.MinSoC, Max: cfg.MaxSoC}
	}
	return NewLinearOCV(cfg)
}
