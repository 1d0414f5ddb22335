package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/bms/core/events"
	coremetrics "github.com/kilianp07/bms/core/metrics"
	"github.com/kilianp07/bms/infra/logger"
	"github.com/kilianp07/bms/internal/eventbus"
)

// StartEventCollector subscribes to the bus and forwards events to sink
// until ctx is canceled or the bus is closed. The returned channel is closed
// once the collector has stopped.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[events.Event], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := forward(ev, sink); err != nil {
					log.Warnf("record %T from %s: %v", ev, ev.OccurredAt().Format(time.RFC3339), err)
				}
			}
		}
	}()
	return done
}

func forward(ev events.Event, sink coremetrics.MetricsSink) error {
	switch e := ev.(type) {
	case events.SoCTick:
		return sink.RecordBatterySample(e.Sample)
	case events.CellTick:
		if r, ok := sink.(coremetrics.CellRecorder); ok {
			return r.RecordCellTemperatures(e.Snapshot)
		}
	case events.ThermalTransition:
		if r, ok := sink.(coremetrics.ThermalRecorder); ok {
			return r.RecordThermalTransition(e.Transition)
		}
	}
	return nil
}
