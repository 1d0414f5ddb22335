package soc

// Estimator tracks the SoC of one pack by Coulomb counting. It has a single
// owner and is not safe for concurrent use.
type Estimator struct {
	nominalCapacity float64
	min, max        float64
	current         float64
}

// NewEstimator returns an Estimator starting at cfg.InitialSoC, clamped to
// [cfg.MinSoC, cfg.MaxSoC].
func NewEstimator(cfg Config) *Estimator {
	return &Estimator{
		nominalCapacity: cfg.NominalCapacity,
		min:             cfg.MinSoC,
		max:             cfg.MaxSoC,
		current:         clamp(cfg.InitialSoC, cfg.MinSoC, cfg.MaxSoC),
	}
}

// Update integrates current (A) over deltaTime (h):
//
//	ΔSoC = current * deltaTime / capacity * 100
//
// and clamps the result.
func (e *Estimator) Update(current, deltaTime float64) {
	delta := current * deltaTime / e.nominalCapacity * 100
	e.current = clamp(e.current+delta, e.min, e.max)
}

// Set overwrites the SoC with the clamped value, discarding the integrated
// estimate.
func (e *Estimator) Set(value float64) {
	e.current = clamp(value, e.min, e.max)
}

// Clamp limits v to the bounds of the estimator.
func (e *Estimator) Clamp(v float64) float64 { return clamp(v, e.min, e.max) }

// Get returns the current SoC in percent.
func (e *Estimator) Get() float64 { return e.current }

// NominalCapacity returns the capacity in Ah the estimator was built with.
func (e *Estimator) NominalCapacity() float64 { return e.nominalCapacity }
