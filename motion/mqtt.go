package motion

import (
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/phanxgames/panorama"
)

// DefaultTopic is the MQTT topic attitude samples are published on.
const DefaultTopic = "panorama/attitude"

// MQTTConfig configures an MQTTSource.
type MQTTConfig struct {
	Broker   string // e.g. "tcp://localhost:1883"
	ClientID string
	Topic    string // defaults to DefaultTopic
	QoS      byte
	Logger   *slog.Logger
}

// MQTTSource subscribes to a topic carrying JSON samples (see Wire).
type MQTTSource struct {
	cfg    MQTTConfig
	client mqtt.Client
	feed   feed
	logger *slog.Logger
}

// NewMQTTSource creates a source with its own client for cfg.Broker. The
// connection is made on Start.
func NewMQTTSource(cfg MQTTConfig) *MQTTSource {
	if cfg.ClientID == "" {
		cfg.ClientID = fmt.Sprintf("panorama-%d", time.Now().UnixNano())
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true)
	return NewMQTTSourceWithClient(mqtt.NewClient(opts), cfg)
}

// NewMQTTSourceWithClient creates a source on an existing client.
func NewMQTTSourceWithClient(client mqtt.Client, cfg MQTTConfig) *MQTTSource {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	return &MQTTSource{
		cfg:    cfg,
		client: client,
		logger: orDiscard(cfg.Logger).With("source", "mqtt", "topic", cfg.Topic),
	}
}

// Available reports whether a client is configured.
func (s *MQTTSource) Available() bool {
	return s.client != nil
}

// Start connects if needed and subscribes to the topic.
func (s *MQTTSource) Start(deliver func(panorama.AttitudeSample)) error {
	if err := s.feed.start(deliver); err != nil {
		return err
	}
	if !s.client.IsConnected() {
		if token := s.client.Connect(); token.Wait() && token.Error() != nil {
			_ = s.feed.stop()
			return fmt.Errorf("motion: mqtt connect %s: %w", s.cfg.Broker, token.Error())
		}
		s.logger.Info("connected", "broker", s.cfg.Broker)
	}
	token := s.client.Subscribe(s.cfg.Topic, s.cfg.QoS, s.onMessage)
	token.Wait()
	if token.Error() != nil {
		_ = s.feed.stop()
		return fmt.Errorf("motion: mqtt subscribe %s: %w", s.cfg.Topic, token.Error())
	}
	s.logger.Info("subscribed")
	return nil
}

// Stop unsubscribes and disconnects.
func (s *MQTTSource) Stop() error {
	if err := s.feed.stop(); err != nil {
		return err
	}
	token := s.client.Unsubscribe(s.cfg.Topic)
	token.Wait()
	s.client.Disconnect(250)
	if token.Error() != nil {
		return fmt.Errorf("motion: mqtt unsubscribe %s: %w", s.cfg.Topic, token.Error())
	}
	return nil
}

// Stats returns delivery counts.
func (s *MQTTSource) Stats() Stats {
	return s.feed.stats()
}

func (s *MQTTSource) onMessage(_ mqtt.Client, msg mqtt.Message) {
	sample, err := Decode(msg.Payload())
	if err != nil {
		s.feed.drop()
		s.logger.Debug("dropped payload", "err", err)
		return
	}
	s.feed.send(sample)
}

// Publish sends one sample on topic with client. It is the producer side
// of MQTTSource.
func Publish(client mqtt.Client, topic string, qos byte, sample panorama.AttitudeSample) error {
	payload, err := Encode(sample)
	if err != nil {
		return err
	}
	token := client.Publish(topic, qos, false, payload)
	token.Wait()
	return token.Error()
}
