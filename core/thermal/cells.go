package thermal

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/bms/core/model"
)

// DeltaSource yields the temperature change of a cell for one tick.
type DeltaSource interface {
	Delta(cellID int) float64
}

// CellArray is a fixed-size, ordered set of cells with ids 1..N.
type CellArray struct {
	cells []model.BatteryCell
}

// NewCellArray creates n cells at the same initial temperature.
func NewCellArray(n int, initialTemperature float64) (*CellArray, error) {
	if n <= 0 {
		return nil, fmt.Errorf("cell count must be positive, got %d", n)
	}
	cells := make([]model.BatteryCell, n)
	for i := range cells {
		cells[i] = model.BatteryCell{ID: i + 1, Temperature: initialTemperature}
	}
	return &CellArray{cells: cells}, nil
}

// Len returns the number of cells.
func (a *CellArray) Len() int { return len(a.cells) }

// Cells returns a copy of the cells in id order.
func (a *CellArray) Cells() []model.BatteryCell {
	out := make([]model.BatteryCell, len(a.cells))
	copy(out, a.cells)
	return out
}

// Temperatures returns the cell temperatures in id order.
func (a *CellArray) Temperatures() []float64 {
	out := make([]float64, len(a.cells))
	for i, c := range a.cells {
		out[i] = c.Temperature
	}
	return out
}

// SetTemperatures replaces all temperatures with measured values.
func (a *CellArray) SetTemperatures(temps []float64) error {
	if len(temps) != len(a.cells) {
		return fmt.Errorf("got %d temperatures for %d cells", len(temps), len(a.cells))
	}
	for i, t := range temps {
		a.cells[i].Temperature = t
	}
	return nil
}

// SetTemperature updates a single cell.
func (a *CellArray) SetTemperature(id int, temp float64) error {
	if id < 1 || id > len(a.cells) {
		return fmt.Errorf("unknown cell %d", id)
	}
	a.cells[id-1].Temperature = temp
	return nil
}

// Apply adds the delta reported by src to every cell.
func (a *CellArray) Apply(src DeltaSource) {
	for i := range a.cells {
		a.cells[i].Temperature += src.Delta(a.cells[i].ID)
	}
}

// Extremes returns the highest and lowest cell temperature.
func (a *CellArray) Extremes() (hottest, coldest float64) {
	temps := a.Temperatures()
	return floats.Max(temps), floats.Min(temps)
}

// Mean returns the average cell temperature.
func (a *CellArray) Mean() float64 {
	return stat.Mean(a.Temperatures(), nil)
}
