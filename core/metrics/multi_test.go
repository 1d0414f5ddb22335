package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingSink struct {
	samples, transitions, snapshots int
	err                             error
}

func (c *countingSink) RecordBatterySample(BatterySample) error { c.samples++; return c.err }
func (c *countingSink) RecordThermalTransition(ThermalTransition) error {
	c.transitions++
	return c.err
}
func (c *countingSink) RecordCellTemperatures(CellSnapshot) error { c.snapshots++; return c.err }

type samplesOnly struct{ n int }

func (s *samplesOnly) RecordBatterySample(BatterySample) error { s.n++; return nil }

func TestMultiSinkForwards(t *testing.T) {
	full := &countingSink{}
	basic := &samplesOnly{}
	m := NewMultiSink(full)
	m.Add(basic)

	assert.NoError(t, m.RecordBatterySample(BatterySample{}))
	assert.NoError(t, m.RecordThermalTransition(ThermalTransition{}))
	assert.NoError(t, m.RecordCellTemperatures(CellSnapshot{}))

	assert.Equal(t, 1, full.samples)
	assert.Equal(t, 1, full.transitions)
	assert.Equal(t, 1, full.snapshots)
	assert.Equal(t, 1, basic.n)
}

func TestMultiSinkContinuesAfterError(t *testing.T) {
	failing := &countingSink{err: errors.New("down")}
	ok := &samplesOnly{}
	m := NewMultiSink(failing, ok)
	assert.EqualError(t, m.RecordBatterySample(BatterySample{}), "down")
	assert.Equal(t, 1, ok.n)
}

type closingSink struct {
	samplesOnly
	closed int
	err    error
}

func (c *closingSink) Close() error { c.closed++; return c.err }

func TestMultiSinkClose(t *testing.T) {
	a := &closingSink{}
	b := &closingSink{err: errors.New("busy")}
	m := NewMultiSink(a, &samplesOnly{}, b)

	assert.EqualError(t, m.Close(), "busy")
	assert.Equal(t, 1, a.closed)
	assert.Equal(t, 1, b.closed)
	assert.NoError(t, CloseSink(NopSink{}))
}
