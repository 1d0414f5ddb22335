// Package metrics defines the observability sinks fed by the estimation and
// thermal loops. Every sink records battery samples; sinks that also
// implement ThermalRecorder or CellRecorder receive thermal data. Sinks are
// built from configuration through NewMetricsSink, which combines several
// into a MultiSink.
package metrics
