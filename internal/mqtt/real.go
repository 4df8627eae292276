package mqtt

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sweeney/fan-pwm-control/internal/logic"
)

// ClientID identifies this process to the broker.
const ClientID = "fan-pwm-control"

// BacklogSize is the number of messages kept while the broker is unreachable.
const BacklogSize = 100

const publishTimeout = 5 * time.Second

// RealPublisher publishes to an actual MQTT broker. Connection happens in the
// background; messages published while disconnected are queued and replayed
// once the client connects.
type RealPublisher struct {
	client paho.Client
	logger *slog.Logger

	mu      sync.Mutex
	backlog *backlog

	// inflight tracks readings whose delivery is confirmed in the background.
	inflight sync.WaitGroup
}

// NewRealPublisher creates a publisher for the given broker and starts
// connecting. It does not wait for the connection to come up.
func NewRealPublisher(broker string, logger *slog.Logger) (*RealPublisher, error) {
	if broker == "" {
		return nil, errors.New("mqtt: empty broker address")
	}

	will, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "OFFLINE"})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	p := newPublisher(nil, logger)
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(will), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	p.client = paho.NewClient(opts)
	p.client.Connect()
	p.logger.Info("connecting", "broker", broker)
	return p, nil
}

func newPublisher(client paho.Client, logger *slog.Logger) *RealPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &RealPublisher{
		client:  client,
		logger:  logger.With("component", "mqtt"),
		backlog: newBacklog(BacklogSize),
	}
}

// Publish hands a reading for TopicState to the client and returns without
// waiting for delivery. A reading that times out or fails is queued for
// replay on the next connect.
func (p *RealPublisher) Publish(reading logic.Reading) error {
	payload, err := FormatPayload(reading)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	// QoS 0 (at-most-once), not retained
	msg := queuedMsg{topic: TopicState, payload: payload}
	if !p.client.IsConnectionOpen() {
		p.enqueue(msg)
		return nil
	}

	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		if err := wait(msg.topic, token); err != nil {
			p.logger.Warn("publish failed, queued for replay", "topic", msg.topic, "error", err)
			p.enqueue(msg)
		}
	}()
	return nil
}

// PublishSystem sends a system lifecycle event to TopicSystem.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	// QoS 1 (at-least-once) for lifecycle events
	return p.send(queuedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

// IsConnected reports whether the broker connection is currently up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close waits for in-flight readings, then disconnects from the broker.
// Queued messages are discarded.
func (p *RealPublisher) Close() error {
	p.inflight.Wait()

	p.mu.Lock()
	if n := p.backlog.len(); n > 0 {
		p.logger.Warn("discarding queued messages", "count", n)
	}
	p.backlog.drain()
	p.mu.Unlock()

	p.client.Disconnect(1000) // 1 second quiesce
	return nil
}

// Queued returns the number of messages waiting for a connection.
func (p *RealPublisher) Queued() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.backlog.len()
}

func (p *RealPublisher) send(msg queuedMsg) error {
	if !p.client.IsConnectionOpen() {
		p.enqueue(msg)
		return nil
	}
	if err := p.publish(msg); err != nil {
		p.enqueue(msg)
		return err
	}
	return nil
}

func (p *RealPublisher) publish(msg queuedMsg) error {
	return wait(msg.topic, p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload))
}

func wait(topic string, token paho.Token) error {
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (p *RealPublisher) enqueue(msg queuedMsg) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.backlog.push(msg) && p.backlog.dropped == 1 {
		p.logger.Warn("backlog full, dropping oldest", "capacity", BacklogSize)
	}
}

func (p *RealPublisher) onConnect(paho.Client) {
	p.mu.Lock()
	dropped := p.backlog.dropped
	queued := p.backlog.drain()
	p.mu.Unlock()

	p.logger.Info("connected", "replaying", len(queued), "dropped", dropped)
	for i, msg := range queued {
		if err := p.publish(msg); err != nil {
			p.logger.Warn("replay failed", "topic", msg.topic, "error", err)
			p.mu.Lock()
			for _, rest := range queued[i:] {
				p.backlog.push(rest)
			}
			p.mu.Unlock()
			return
		}
	}
}

func (p *RealPublisher) onConnectionLost(_ paho.Client, err error) {
	p.logger.Warn("connection lost", "error", err)
}
