package model

// ThermalState is the actuation state of the thermal management system.
type ThermalState int

const (
	// ThermalIdle means neither cooling nor heating is active. It is the zero value.
	ThermalIdle ThermalState = iota
	ThermalCooling
	ThermalHeating
)

// String returns a human-readable representation of the state.
func (s ThermalState) String() string {
	switch s {
	case ThermalIdle:
		return "idle"
	case ThermalCooling:
		return "cooling"
	case ThermalHeating:
		return "heating"
	default:
		return "unknown"
	}
}
