package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/bms/config"
	"github.com/kilianp07/bms/core/events"
	coremetrics "github.com/kilianp07/bms/core/metrics"
	"github.com/kilianp07/bms/core/model"
	"github.com/kilianp07/bms/core/soc"
	"github.com/kilianp07/bms/core/thermal"
	"github.com/kilianp07/bms/infra/datalog"
	"github.com/kilianp07/bms/infra/logger"
	"github.com/kilianp07/bms/infra/metrics"
	"github.com/kilianp07/bms/infra/mqtt"
	"github.com/kilianp07/bms/internal/eventbus"
	"github.com/kilianp07/bms/simulator"
)

// busBuffer is the event buffer of the metrics collector.
const busBuffer = 256

// Service runs the SoC estimation and the thermal controller of one pack on
// simulated sensors.
type Service struct {
	cfg config.Config
	log logger.Logger

	pipeline *soc.Pipeline
	sensors  *simulator.Sensors

	cells      *thermal.CellArray
	walk       *simulator.CellWalk
	controller *thermal.Controller

	datalog   *datalog.CSVLogger
	publisher *mqtt.Publisher
	sink      coremetrics.MetricsSink
	bus       *eventbus.Bus[events.Event]
	collected <-chan struct{}

	now       func() time.Time
	socTicks  uint64
	passes    uint64
	promOnce  sync.Once
	closeOnce sync.Once
}

type options struct {
	now       func() time.Time
	sinks     []coremetrics.MetricsSink
	actuators []thermal.Actuator
}

// Option customizes a Service.
type Option func(*options)

// WithClock replaces time.Now for sample timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithSink adds a metrics sink next to the configured ones.
func WithSink(s coremetrics.MetricsSink) Option {
	return func(o *options) { o.sinks = append(o.sinks, s) }
}

// WithActuator adds an actuator to the thermal controller.
func WithActuator(a thermal.Actuator) Option {
	return func(o *options) { o.actuators = append(o.actuators, a) }
}

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	log := logger.New("service").With("pack_id", cfg.PackID)
	s := &Service{cfg: *cfg, log: log, now: o.now}

	sim := cfg.Simulation
	battery := model.NewBattery(sim.InitialVoltage, sim.InitialCurrent, sim.InitialTemperature, cfg.Pack.InitialSoC)
	s.pipeline = soc.NewPipeline(cfg.Pack, battery)
	s.sensors = simulator.NewSensors(sim.Sensors(), simulator.NewSource(sim.Seed))

	cells, err := thermal.NewCellArray(sim.Cells, sim.InitialCellTemperature)
	if err != nil {
		return nil, fmt.Errorf("cell array: %w", err)
	}
	s.cells = cells
	walkSeed := sim.Seed
	if walkSeed != 0 {
		walkSeed++
	}
	s.walk = simulator.NewCellWalk(sim.CellStep, simulator.NewSource(walkSeed))

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	sinks := coremetrics.NewMultiSink(sink)
	for _, extra := range o.sinks {
		sinks.Add(extra)
	}

	actuators := thermal.Actuators{thermal.LogActuator{Log: logger.New("thermal").With("pack_id", cfg.PackID)}}
	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewPublisher(cfg.MQTT, cfg.PackID)
		if err != nil {
			_ = sinks.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		s.publisher = pub
		sinks.Add(pub)
		actuators = append(actuators, thermal.BestEffort{Actuator: pub, Log: log})
	}
	actuators = append(actuators, o.actuators...)
	s.controller = thermal.NewController(cfg.Thermal, actuators)
	s.sink = sinks

	if cfg.Datalog.Enabled {
		dl, err := datalog.NewCSVLogger(cfg.Datalog.Path, cfg.Datalog.Truncate)
		if err != nil {
			s.closePublisher()
			_ = sinks.Close()
			return nil, err
		}
		s.datalog = dl
	}

	s.bus = eventbus.NewWithBuffer[events.Event](busBuffer)
	s.collected = metrics.StartEventCollector(context.Background(), s.bus, s.sink, logger.New("collector"))
	return s, nil
}

// RunSoC runs the estimation loop only.
func (s *Service) RunSoC(ctx context.Context) error {
	return s.loop(ctx, func() { s.stepSoC() })
}

// RunThermal runs the thermal controller loop only.
func (s *Service) RunThermal(ctx context.Context) error {
	return s.loop(ctx, func() { s.stepThermal() })
}

// Run runs both subsystems on every tick.
func (s *Service) Run(ctx context.Context) error {
	return s.loop(ctx, func() {
		s.stepSoC()
		s.stepThermal()
	})
}

// loop calls step for the configured number of cycles, or until ctx is
// canceled when Cycles is 0. Cancellation ends the run without error.
func (s *Service) loop(ctx context.Context, step func()) error {
	s.startPromServer(ctx)
	cycles := s.cfg.Simulation.Cycles
	interval := s.cfg.Simulation.Interval()
	var tick <-chan time.Time
	if interval > 0 {
		t := time.NewTicker(interval)
		defer t.Stop()
		tick = t.C
	}
	for n := 0; cycles == 0 || n < cycles; n++ {
		if ctx.Err() != nil {
			s.log.Infof("run canceled after %d cycles", n)
			return nil
		}
		step()
		if tick == nil || (cycles != 0 && n+1 == cycles) {
			continue
		}
		select {
		case <-ctx.Done():
			s.log.Infof("run canceled after %d cycles", n+1)
			return nil
		case <-tick:
		}
	}
	return nil
}

func (s *Service) startPromServer(ctx context.Context) {
	addr := s.cfg.Metrics.PrometheusAddr
	if !s.cfg.Metrics.HasSink("prometheus") || addr == "" {
		return
	}
	s.promOnce.Do(func() {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	})
}

func (s *Service) stepSoC() {
	s.socTicks++
	b := s.pipeline.Battery()
	m := s.sensors.Measure(b)
	res := s.pipeline.Step(m, s.sensors)
	now := s.now()

	if s.datalog != nil {
		if err := s.datalog.Log(now, b.Voltage, b.Current, b.Temperature, b.SoC); err != nil {
			s.log.Errorf("failed to log data: %v", err)
		}
	}
	s.log.Debugw("soc step", map[string]any{
		"tick":        s.socTicks,
		"charging":    b.Charging(),
		"soc_coulomb": res.CoulombSoC,
		"soc_temp":    res.CompensatedSoC,
	})
	s.log.Infof("Cycle %d: Voltage: %.2fV, Current: %.2fA, Temperature: %.2f°C, SoC: %.2f%%",
		s.socTicks, b.Voltage, b.Current, b.Temperature, b.SoC)

	s.bus.Publish(events.SoCTick{Sample: coremetrics.BatterySample{
		PackID:         s.cfg.PackID,
		Tick:           s.socTicks,
		Voltage:        b.Voltage,
		Current:        b.Current,
		Temperature:    b.Temperature,
		SoC:            res.SoC,
		CoulombSoC:     res.CoulombSoC,
		CompensatedSoC: res.CompensatedSoC,
		Time:           now,
	}})
}

func (s *Service) stepThermal() {
	s.passes++
	s.cells.Apply(s.walk)
	for _, c := range s.cells.Cells() {
		s.log.Debugf("Cell %d temperature updated to %.2f°C", c.ID, c.Temperature)
	}
	hottest, coldest := s.cells.Extremes()
	mean := s.cells.Mean()
	s.log.Debugw("cells updated", map[string]any{
		"pass":    s.passes,
		"hottest": hottest,
		"coldest": coldest,
		"mean":    mean,
	})

	prev := s.controller.State()
	changed, err := s.controller.Monitor(s.cells)
	if err != nil {
		s.log.Errorf("thermal actuation failed, retrying on next pass: %v", err)
	}
	now := s.now()
	if changed {
		to := s.controller.State()
		s.bus.Publish(events.ThermalTransition{Transition: coremetrics.ThermalTransition{
			PackID:  s.cfg.PackID,
			From:    prev,
			To:      to,
			Signal:  thermal.Actuation{To: to}.Signal(),
			Hottest: hottest,
			Coldest: coldest,
			Time:    now,
		}})
	}
	s.bus.Publish(events.CellTick{Snapshot: coremetrics.CellSnapshot{
		PackID:  s.cfg.PackID,
		Tick:    s.passes,
		Cells:   s.cells.Cells(),
		State:   s.controller.State(),
		Hottest: hottest,
		Coldest: coldest,
		Mean:    mean,
		Time:    now,
	}})
}

// Battery returns a copy of the current pack state.
func (s *Service) Battery() model.Battery { return *s.pipeline.Battery() }

// ThermalState returns the state of the thermal controller.
func (s *Service) ThermalState() model.ThermalState { return s.controller.State() }

// Cells returns the current cell temperatures.
func (s *Service) Cells() []model.BatteryCell { return s.cells.Cells() }

// Ticks returns the number of estimation ticks and monitoring passes run.
func (s *Service) Ticks() (estimation, monitoring uint64) { return s.socTicks, s.passes }

// Close flushes pending metrics and releases the data log, the metrics
// sinks and the MQTT connection. It is safe to call more than once.
func (s *Service) Close() error {
	var errs []error
	s.closeOnce.Do(func() {
		s.bus.Close()
		<-s.collected
		if n := s.bus.Dropped(); n > 0 {
			s.log.Warnf("%d metrics events dropped", n)
		}
		if s.datalog != nil {
			if err := s.datalog.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close data log: %w", err))
			}
		}
		if err := coremetrics.CloseSink(s.sink); err != nil {
			errs = append(errs, fmt.Errorf("close metrics sinks: %w", err))
		}
		s.closePublisher()
	})
	return errors.Join(errs...)
}

func (s *Service) closePublisher() {
	if s.publisher != nil {
		s.publisher.Disconnect()
	}
}
