package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	coremetrics "github.com/kilianp07/bms/core/metrics"
	"github.com/kilianp07/bms/core/thermal"
	"github.com/kilianp07/bms/infra/logger"
)

// Status payloads published retained on the status topic.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// StatePayload is published on <prefix>/<pack>/state after every tick.
type StatePayload struct {
	PackID      string  `json:"pack_id"`
	Tick        uint64  `json:"tick"`
	Voltage     float64 `json:"voltage"`
	Current     float64 `json:"current"`
	Temperature float64 `json:"temperature"`
	SoC         float64 `json:"soc"`
	Timestamp   int64   `json:"timestamp"`
}

// CommandPayload is published on <prefix>/<pack>/thermal/command when the
// thermal controller changes state.
type CommandPayload struct {
	CommandID string  `json:"command_id"`
	PackID    string  `json:"pack_id"`
	Signal    string  `json:"signal"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Hottest   float64 `json:"hottest"`
	Coldest   float64 `json:"coldest"`
	Pass      uint64  `json:"pass"`
	Timestamp int64   `json:"timestamp"`
}

// CellsPayload is published on <prefix>/<pack>/cells after every monitoring pass.
type CellsPayload struct {
	PackID       string          `json:"pack_id"`
	State        string          `json:"state"`
	Temperatures map[int]float64 `json:"temperatures"`
	Mean         float64         `json:"mean"`
	Timestamp    int64           `json:"timestamp"`
}

// Publisher sends pack telemetry and thermal actuation notifications to an
// MQTT broker. It only publishes and never subscribes.
type Publisher struct {
	cli            pahoClient
	cfg            Config
	packID         string
	logger         logger.Logger
	maxRetries     int
	backoff        time.Duration
	publishTimeout time.Duration
	now            func() time.Time
}

// NewPublisher connects to the broker. The will message marks the pack
// offline on <prefix>/<pack>/status; an online status is published retained
// on every connect.
func NewPublisher(cfg Config, packID string) (*Publisher, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt").With("pack_id", packID)
	p := &Publisher{
		cfg:            cfg,
		packID:         packID,
		logger:         log,
		maxRetries:     cfg.MaxRetries,
		backoff:        time.Duration(cfg.BackoffMS) * time.Millisecond,
		publishTimeout: time.Duration(cfg.PublishTimeoutMS) * time.Millisecond,
		now:            time.Now,
	}
	statusTopic := p.Topic("status")
	opts.SetWill(statusTopic, StatusOffline, cfg.qos("status"), true)
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
		if token := c.Publish(statusTopic, cfg.qos("status"), true, StatusOnline); token.WaitTimeout(p.publishTimeout) && token.Error() != nil {
			log.Errorf("status publish error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	token := c.Connect()
	if !token.WaitTimeout(time.Duration(cfg.ConnectTimeoutMS) * time.Millisecond) {
		return nil, fmt.Errorf("connect %s: timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, err)
	}
	p.cli = c
	return p, nil
}

// Topic returns <prefix>/<pack>/<suffix>.
func (p *Publisher) Topic(suffix string) string {
	return fmt.Sprintf("%s/%s/%s", p.cfg.TopicPrefix, p.packID, suffix)
}

// RecordBatterySample publishes the pack state.
func (p *Publisher) RecordBatterySample(s coremetrics.BatterySample) error {
	return p.publishJSON(p.Topic("state"), p.cfg.qos("state"), p.cfg.RetainState, StatePayload{
		PackID:      s.PackID,
		Tick:        s.Tick,
		Voltage:     s.Voltage,
		Current:     s.Current,
		Temperature: s.Temperature,
		SoC:         s.SoC,
		Timestamp:   s.Time.UnixMilli(),
	})
}

// RecordCellTemperatures publishes all cell temperatures.
func (p *Publisher) RecordCellTemperatures(snap coremetrics.CellSnapshot) error {
	temps := make(map[int]float64, len(snap.Cells))
	for _, c := range snap.Cells {
		temps[c.ID] = c.Temperature
	}
	return p.publishJSON(p.Topic("cells"), p.cfg.qos("cells"), false, CellsPayload{
		PackID:       snap.PackID,
		State:        snap.State.String(),
		Temperatures: temps,
		Mean:         snap.Mean,
		Timestamp:    snap.Time.UnixMilli(),
	})
}

// Actuate publishes the actuation as a thermal command notification.
func (p *Publisher) Actuate(a thermal.Actuation) error {
	cmd := CommandPayload{
		CommandID: uuid.NewString(),
		PackID:    p.packID,
		Signal:    a.Signal(),
		From:      a.From.String(),
		To:        a.To.String(),
		Hottest:   a.Hottest,
		Coldest:   a.Coldest,
		Pass:      a.Pass,
		Timestamp: p.now().UnixMilli(),
	}
	if err := p.publishJSON(p.Topic("thermal/command"), p.cfg.qos("command"), false, cmd); err != nil {
		return err
	}
	p.logger.Infof("sent thermal command %s (%s)", cmd.CommandID, cmd.Signal)
	return nil
}

// ErrPublishTimeout is returned when the broker does not acknowledge a
// publish within the configured timeout.
var ErrPublishTimeout = errors.New("publish timeout")

// publishJSON retries failed publishes with exponential backoff. A timeout
// is not retried: paho keeps the message queued while reconnecting.
func (p *Publisher) publishJSON(topic string, qos byte, retained bool, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", topic, err)
	}
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, qos, retained, payload)
		if !token.WaitTimeout(p.publishTimeout) {
			return fmt.Errorf("publish %s: %w after %s", topic, ErrPublishTimeout, p.publishTimeout)
		}
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("published %d bytes to %s", len(payload), topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d on %s failed: %v", attempt+1, topic, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	return fmt.Errorf("publish %s: %w", topic, publishErr)
}

// Disconnect publishes an offline status and closes the connection.
func (p *Publisher) Disconnect() {
	if p.cli == nil || !p.cli.IsConnected() {
		return
	}
	token := p.cli.Publish(p.Topic("status"), p.cfg.qos("status"), true, StatusOffline)
	token.WaitTimeout(time.Second)
	p.cli.Disconnect(250)
}
