package transport

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"codeberg.org/mutker/envstation/internal/errors"
	"codeberg.org/mutker/envstation/internal/logger"
	"codeberg.org/mutker/envstation/internal/telemetry"
)

const connectPoll = 200 * time.Millisecond

// MQTT is the persistent broker transport. One authenticated session per
// station, publishing CSV payloads on the channel topic. Failed connects
// surface immediately; reconnect decisions belong to the caller.
type MQTT struct {
	client    mqtt.Client
	cfg       Config
	topic     string
	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

var _ Client = (*MQTT)(nil)

func NewMQTT(cfg Config) (*MQTT, error) {
	if err := cfg.validateMQTT(); err != nil {
		return nil, err
	}

	t := &MQTT{
		cfg:    cfg,
		topic:  PublishTopic(cfg.ChannelID, cfg.WriteAPIKey),
		stopCh: make(chan struct{}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port))
	opts.SetClientID(cfg.Username)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.MQTTAPIKey)

	// Session settings. The client never retries on its own.
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)

	// Keepalive / timeouts
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	// Callbacks keep internal state accurate
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		t.setConnected(true)
		logger.Debug().
			Str("broker", cfg.Broker).
			Int("port", cfg.Port).
			Msg("Broker session established")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		t.setConnected(false)
		logger.Warn().Err(err).Msg("Broker session lost")
	})

	t.client = mqtt.NewClient(opts)

	return t, nil
}

func (t *MQTT) Name() string {
	return KindMQTT
}

// Connect establishes the broker session. Safe to call when already
// connected; respects ctx and Close.
func (t *MQTT) Connect(ctx context.Context) error {
	select {
	case <-t.stopCh:
		return errors.New(ErrClosed)
	default:
	}

	if t.IsConnected() {
		return nil
	}

	token := t.client.Connect()

	// Wait in a ctx/stop-aware loop
	for {
		if token.WaitTimeout(connectPoll) {
			if err := token.Error(); err != nil {
				return errors.Wrap(ErrConnectFailed, err)
			}
			// OnConnectHandler sets connected=true
			return nil
		}

		select {
		case <-ctx.Done():
			return errors.Wrap(ErrConnectFailed, ctx.Err())
		case <-t.stopCh:
			return errors.New(ErrClosed)
		default:
		}
	}
}

// Publish sends one record on the channel topic. A dropped session fails
// the publish; the caller decides whether to reconnect.
func (t *MQTT) Publish(ctx context.Context, rec *telemetry.Record) error {
	select {
	case <-ctx.Done():
		return errors.Wrap(ErrPublishFailed, ctx.Err())
	default:
	}

	if !t.IsConnected() {
		return errors.New(ErrNotConnected)
	}

	token := t.client.Publish(t.topic, 1, false, []byte(EncodeCSV(rec)))
	if !token.WaitTimeout(t.cfg.timeout()) {
		return errors.New(ErrPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return errors.Wrap(ErrPublishFailed, err)
	}

	logger.Debug().
		Str("station", rec.Station.ID).
		Str("channel", t.cfg.ChannelID).
		Msg("Record published to broker")

	return nil
}

// IsConnected returns whether the broker session is up
func (t *MQTT) IsConnected() bool {
	t.mu.RLock()
	connected := t.connected
	t.mu.RUnlock()

	return connected && t.client.IsConnected()
}

// Close tears down the session. Idempotent; Connect afterwards fails.
func (t *MQTT) Close() error {
	t.stopOnce.Do(func() { close(t.stopCh) })

	if t.client != nil {
		t.client.Disconnect(250)
	}
	t.setConnected(false)

	return nil
}

func (t *MQTT) setConnected(v bool) {
	t.mu.Lock()
	t.connected = v
	t.mu.Unlock()
}

// PublishTopic returns the channel publish topic for a write key
func PublishTopic(channelID, writeAPIKey string) string {
	return fmt.Sprintf("channels/%s/publish/%s", channelID, writeAPIKey)
}

// EncodeCSV serializes a record as the comma-separated payload line:
// field values in field order, then the station status field.
func EncodeCSV(rec *telemetry.Record) string {
	parts := make([]string, 0, len(rec.Readings)+1)
	for _, reading := range rec.Readings {
		parts = append(parts, strconv.FormatFloat(reading.Value, 'f', 2, 64))
	}
	parts = append(parts, rec.Station.StatusField())

	return strings.Join(parts, ",")
}
