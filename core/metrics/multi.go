package metrics

import "errors"

// MultiSink fans records out to several sinks. Every sink receives every
// record; errors are joined.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// Add appends a sink.
func (m *MultiSink) Add(s MetricsSink) { m.Sinks = append(m.Sinks, s) }

// RecordBatterySample forwards the sample to all sinks.
func (m *MultiSink) RecordBatterySample(s BatterySample) error {
	var errs []error
	for _, sink := range m.Sinks {
		if err := sink.RecordBatterySample(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordThermalTransition forwards the transition to sinks that support it.
func (m *MultiSink) RecordThermalTransition(ev ThermalTransition) error {
	var errs []error
	for _, sink := range m.Sinks {
		if rec, ok := sink.(ThermalRecorder); ok {
			if err := rec.RecordThermalTransition(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RecordCellTemperatures forwards the snapshot to sinks that support it.
func (m *MultiSink) RecordCellTemperatures(s CellSnapshot) error {
	var errs []error
	for _, sink := range m.Sinks {
		if rec, ok := sink.(CellRecorder); ok {
			if err := rec.RecordCellTemperatures(s); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink that implements io.Closer.
func (m *MultiSink) Close() error {
	var errs []error
	for _, sink := range m.Sinks {
		if err := CloseSink(sink); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
