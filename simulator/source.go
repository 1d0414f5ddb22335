package simulator

import (
	"math/rand/v2"
	"time"
)

// NewSource returns a PCG source for seed. A zero seed is replaced by the
// current time.
func NewSource(seed uint64) rand.Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}
