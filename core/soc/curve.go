package soc

// Breakpoints of the piecewise OCV curve of a generic Li-ion cell.
var (
	curveSoC      = []float64{0, 25, 50, 75, 100}
	curveVoltages = []float64{3.0, 3.4, 3.7, 4.0, 4.2}
)

// VoltageCurve returns the open-circuit voltage for soc using a piecewise
// linear approximation. Values outside [0, 100] map to the empty voltage.
func VoltageCurve(soc float64) float64 {
	if !(soc >= curveSoC[0] && soc <= curveSoC[len(curveSoC)-1]) {
		return curveVoltages[0]
	}
	for i := 1; i < len(curveSoC); i++ {
		if soc <= curveSoC[i] {
			lo, hi := curveSoC[i-1], curveSoC[i]
			frac := (soc - lo) / (hi - lo)
			return curveVoltages[i-1] + frac*(curveVoltages[i]-curveVoltages[i-1])
		}
	}
	return curveVoltages[len(curveVoltages)-1]
}

// CurvePoint is one row of the OCV table.
type CurvePoint struct {
	SoC     float64
	Voltage float64
}

// CurveTable samples VoltageCurve every step percent from 0 to 100.
func CurveTable(step float64) []CurvePoint {
	if step <= 0 {
		step = 5
	}
	var out []CurvePoint
	for i := 0; ; i++ {
		s := float64(i) * step
		if s > 100-1e-9 {
			break
		}
		out = append(out, CurvePoint{SoC: s, Voltage: VoltageCurve(s)})
	}
	return append(out, CurvePoint{SoC: 100, Voltage: VoltageCurve(100)})
}
