package model

// BatteryCell is a single cell of the pack tracked by the thermal controller.
type BatteryCell struct {
	ID          int     // stable identity in 1..N
	Temperature float64 // °C
}
