package simulator

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// CellWalk moves every cell temperature by a uniform step in [-Step, Step)
// on each pass.
type CellWalk struct {
	dist distuv.Uniform
}

// NewCellWalk creates a walk with the given step drawing from src.
func NewCellWalk(step float64, src rand.Source) *CellWalk {
	return &CellWalk{dist: distuv.Uniform{Min: -step, Max: step, Src: src}}
}

// Delta returns the change for one cell. The cell id does not influence the
// draw.
func (w *CellWalk) Delta(int) float64 {
	if w.dist.Max <= w.dist.Min {
		return 0
	}
	return w.dist.Rand()
}
