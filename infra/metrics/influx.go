package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/bms/core/metrics"
	"github.com/kilianp07/bms/infra/logger"
)

// InfluxConfig holds the connection settings of an InfluxDB sink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes pack state to InfluxDB using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given endpoint. A trailing
// /api/v2/write is accepted and stripped.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings InfluxDB and returns a NopSink if the
// health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordBatterySample writes a battery_state point.
func (s *InfluxSink) RecordBatterySample(b coremetrics.BatterySample) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("battery_state").
		AddTag("pack_id", b.PackID).
		AddField("voltage", round3(b.Voltage)).
		AddField("current", round3(b.Current)).
		AddField("temperature", round3(b.Temperature)).
		AddField("soc", round3(b.SoC)).
		AddField("soc_coulomb", round3(b.CoulombSoC)).
		AddField("soc_compensated", round3(b.CompensatedSoC)).
		AddField("tick", int64(b.Tick)).
		SetTime(b.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordThermalTransition writes a thermal_transition point.
func (s *InfluxSink) RecordThermalTransition(ev coremetrics.ThermalTransition) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("thermal_transition").
		AddTag("pack_id", ev.PackID).
		AddTag("from", ev.From.String()).
		AddTag("to", ev.To.String()).
		AddField("signal", ev.Signal).
		AddField("hottest", round3(ev.Hottest)).
		AddField("coldest", round3(ev.Coldest)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordCellTemperatures writes one cell_temperature point per cell and a
// cell_summary point with the extremes and the mean.
func (s *InfluxSink) RecordCellTemperatures(snap coremetrics.CellSnapshot) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	points := make([]*write.Point, 0, len(snap.Cells)+1)
	for _, c := range snap.Cells {
		points = append(points, write.NewPointWithMeasurement("cell_temperature").
			AddTag("pack_id", snap.PackID).
			AddTag("cell", strconv.Itoa(c.ID)).
			AddTag("state", snap.State.String()).
			AddField("temperature", round3(c.Temperature)).
			SetTime(snap.Time))
	}
	points = append(points, write.NewPointWithMeasurement("cell_summary").
		AddTag("pack_id", snap.PackID).
		AddTag("state", snap.State.String()).
		AddField("hottest", round3(snap.Hottest)).
		AddField("coldest", round3(snap.Coldest)).
		AddField("mean", round3(snap.Mean)).
		SetTime(snap.Time))
	return s.writeAPI.WritePoint(ctx, points...)
}

// Close releases the client. Writes are blocking so nothing is pending.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
