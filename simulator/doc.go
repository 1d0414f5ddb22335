// Package simulator provides the simulated measurements used when no pack
// hardware is attached: a constant discharge current, a jittered pack
// temperature, the OCV voltage for the estimated SoC and a bounded random
// walk of the cell temperatures.
//
// All randomness comes from seeded sources so runs can be reproduced.
package simulator
