package soc

// Compensate adjusts soc linearly for the deviation of temperature from the
// reference temperature. The result is not clamped; it is a single delta and
// the caller decides where to clamp it.
func (c Config) Compensate(soc, temperature float64) float64 {
	return soc + c.TemperatureCoefficient*(temperature-c.ReferenceTemperature)
}
