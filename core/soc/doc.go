// Package soc estimates the State-of-Charge of a battery pack.
//
// The Estimator integrates current over time (Coulomb counting). A Corrector
// overwrites the integrated value from the open-circuit voltage and
// Config.Compensate adjusts a value for temperature. Pipeline runs the three in
// a fixed order once per tick and keeps a model.Battery in sync with the
// estimator.
//
// None of the functions guard against NaN or infinite inputs, nor against a
// zero nominal capacity: such values propagate and the result is undefined.
// Configuration is validated by the config package before it reaches here.
package soc
