package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/bms/core/metrics"
	"github.com/kilianp07/bms/core/model"
)

// PromSink exposes the pack state as Prometheus metrics.
type PromSink struct {
	soc         *prometheus.GaugeVec
	voltage     *prometheus.GaugeVec
	current     *prometheus.GaugeVec
	temperature *prometheus.GaugeVec
	cellTemp    *prometheus.GaugeVec
	cellMean    *prometheus.GaugeVec
	state       *prometheus.GaugeVec
	transitions *prometheus.CounterVec
	ticks       *prometheus.CounterVec
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The HTTP endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers the metrics on reg. A nil registerer
// defaults to the global one. Collectors that are already registered are
// reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		soc: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bms_soc_percent",
			Help: "Estimated state of charge",
		}, []string{"pack_id"}),
		voltage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bms_voltage_volts",
			Help: "Pack voltage",
		}, []string{"pack_id"}),
		current: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bms_current_amperes",
			Help: "Pack current, negative while discharging",
		}, []string{"pack_id"}),
		temperature: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bms_temperature_celsius",
			Help: "Pack temperature",
		}, []string{"pack_id"}),
		cellTemp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bms_cell_temperature_celsius",
			Help: "Cell temperature",
		}, []string{"pack_id", "cell"}),
		cellMean: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bms_cell_temperature_mean_celsius",
			Help: "Mean cell temperature",
		}, []string{"pack_id"}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bms_thermal_state",
			Help: "Thermal state, 1 for the active state",
		}, []string{"pack_id", "state"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bms_thermal_transitions_total",
			Help: "Thermal controller transitions by entered state",
		}, []string{"pack_id", "state"}),
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bms_estimation_ticks_total",
			Help: "Estimation ticks processed",
		}, []string{"pack_id"}),
	}
	var err error
	if s.soc, err = registerGauge(reg, s.soc); err != nil {
		return nil, err
	}
	if s.voltage, err = registerGauge(reg, s.voltage); err != nil {
		return nil, err
	}
	if s.current, err = registerGauge(reg, s.current); err != nil {
		return nil, err
	}
	if s.temperature, err = registerGauge(reg, s.temperature); err != nil {
		return nil, err
	}
	if s.cellTemp, err = registerGauge(reg, s.cellTemp); err != nil {
		return nil, err
	}
	if s.cellMean, err = registerGauge(reg, s.cellMean); err != nil {
		return nil, err
	}
	if s.state, err = registerGauge(reg, s.state); err != nil {
		return nil, err
	}
	if s.transitions, err = registerCounter(reg, s.transitions); err != nil {
		return nil, err
	}
	if s.ticks, err = registerCounter(reg, s.ticks); err != nil {
		return nil, err
	}
	return s, nil
}

func registerGauge(reg prometheus.Registerer, g *prometheus.GaugeVec) (*prometheus.GaugeVec, error) {
	if err := reg.Register(g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.GaugeVec), nil
		}
		return nil, err
	}
	return g, nil
}

func registerCounter(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec), nil
		}
		return nil, err
	}
	return c, nil
}

// RecordBatterySample updates the pack gauges.
func (s *PromSink) RecordBatterySample(b coremetrics.BatterySample) error {
	s.soc.WithLabelValues(b.PackID).Set(b.SoC)
	s.voltage.WithLabelValues(b.PackID).Set(b.Voltage)
	s.current.WithLabelValues(b.PackID).Set(b.Current)
	s.temperature.WithLabelValues(b.PackID).Set(b.Temperature)
	s.ticks.WithLabelValues(b.PackID).Inc()
	return nil
}

// RecordThermalTransition counts the transition and flips the state gauge.
func (s *PromSink) RecordThermalTransition(ev coremetrics.ThermalTransition) error {
	s.transitions.WithLabelValues(ev.PackID, ev.To.String()).Inc()
	s.setState(ev.PackID, ev.To)
	return nil
}

// RecordCellTemperatures updates the per-cell and mean gauges.
func (s *PromSink) RecordCellTemperatures(snap coremetrics.CellSnapshot) error {
	for _, c := range snap.Cells {
		s.cellTemp.WithLabelValues(snap.PackID, strconv.Itoa(c.ID)).Set(c.Temperature)
	}
	s.cellMean.WithLabelValues(snap.PackID).Set(snap.Mean)
	s.setState(snap.PackID, snap.State)
	return nil
}

func (s *PromSink) setState(pack string, active model.ThermalState) {
	for _, st := range []model.ThermalState{model.ThermalIdle, model.ThermalCooling, model.ThermalHeating} {
		v := 0.0
		if st == active {
			v = 1
		}
		s.state.WithLabelValues(pack, st.String()).Set(v)
	}
}
