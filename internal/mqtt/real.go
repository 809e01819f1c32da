package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/camera-snitch/internal/logic"
)

// eventBufferSize bounds the connection-event channel. Events beyond
// the buffer are dropped rather than blocking the paho client.
const eventBufferSize = 16

// qosAtLeastOnce is used for every publish: the broker must acknowledge
// receipt so the hub's retained topics converge on the last-known state.
const qosAtLeastOnce byte = 1

// Options configures the broker connection.
type Options struct {
	Host      string
	Port      int
	ClientID  string
	KeepAlive time.Duration
	// Throttle is the minimum interval between outbound publishes.
	Throttle time.Duration

	DeviceID   string
	DeviceName string
}

// RealPublisher publishes to an actual MQTT broker. It owns the single
// connection; callers invoke it strictly sequentially.
type RealPublisher struct {
	client    paho.Client
	discovery Discovery
	stateTop  string
	configTop string

	throttle    time.Duration
	lastPublish time.Time

	events chan Event
}

// NewRealPublisher connects to the broker and blocks until the
// connection is established or times out. A connection failure here is
// a fatal startup error for the daemon.
func NewRealPublisher(o Options) (*RealPublisher, error) {
	p := &RealPublisher{
		discovery: NewDiscovery(o.DeviceID, o.DeviceName),
		stateTop:  StateTopic(o.DeviceID),
		configTop: ConfigTopic(o.DeviceID),
		throttle:  o.Throttle,
		events:    make(chan Event, eventBufferSize),
	}

	opts := paho.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", o.Host, o.Port)).
		SetClientID(o.ClientID).
		SetKeepAlive(o.KeepAlive).
		SetAutoReconnect(true).
		SetConnectRetryInterval(5 * time.Second)

	opts.SetOnConnectHandler(func(paho.Client) {
		p.emit(Event{Kind: EventConnected, At: time.Now()})
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		p.emit(Event{Kind: EventConnectionLost, Detail: err.Error(), At: time.Now()})
	})
	opts.SetReconnectingHandler(func(paho.Client, *paho.ClientOptions) {
		p.emit(Event{Kind: EventReconnecting, At: time.Now()})
	})
	opts.SetDefaultPublishHandler(func(_ paho.Client, msg paho.Message) {
		p.emit(Event{
			Kind:   EventMessage,
			Topic:  msg.Topic(),
			Detail: fmt.Sprintf("%d bytes", len(msg.Payload())),
			At:     time.Now(),
		})
	})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// Events returns the connection-event stream. The caller drains it for
// logging; it never blocks the client.
func (p *RealPublisher) Events() <-chan Event {
	return p.events
}

// PublishDiscovery sends the retained discovery descriptor.
func (p *RealPublisher) PublishDiscovery() error {
	payload, err := FormatDiscovery(p.discovery)
	if err != nil {
		return fmt.Errorf("format discovery: %w", err)
	}
	if err := p.publish(p.configTop, payload); err != nil {
		return fmt.Errorf("publish discovery: %w", err)
	}
	return nil
}

// PublishState sends the retained ON/OFF state message.
func (p *RealPublisher) PublishState(state logic.State) error {
	if err := p.publish(p.stateTop, FormatState(state)); err != nil {
		return fmt.Errorf("publish state: %w", err)
	}
	return nil
}

// IsConnected reports whether the broker connection is currently up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // milliseconds
	return nil
}

// throttleWait returns how long a publish at now must be delayed to
// honour the minimum interval since the previous publish.
func throttleWait(last, now time.Time, throttle time.Duration) time.Duration {
	if throttle <= 0 {
		return 0
	}
	if wait := throttle - now.Sub(last); wait > 0 {
		return wait
	}
	return 0
}

// publish sends one retained QoS-1 message, pacing calls to the
// configured outbound throttle. Callers are sequential, so a plain
// sleep keeps the pacing correct without locks.
func (p *RealPublisher) publish(topic string, payload []byte) error {
	if wait := throttleWait(p.lastPublish, time.Now(), p.throttle); wait > 0 {
		time.Sleep(wait)
	}

	token := p.client.Publish(topic, qosAtLeastOnce, true, payload)
	p.lastPublish = time.Now()
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("timeout on %s", topic)
	}
	if err := token.Error(); err != nil {
		return err
	}
	return nil
}

// emit delivers a connection event without ever blocking.
func (p *RealPublisher) emit(ev Event) {
	select {
	case p.events <- ev:
	default:
	}
}
