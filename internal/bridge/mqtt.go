package bridge

import (
	"fmt"

	"healthmon/internal/metrics"
	"healthmon/pkg/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// MQTTBridge subscribes to the device vitals topic and feeds parsed
// readings into the queue.
type MQTTBridge struct {
	client mqtt.Client
	cfg    *config.MQTTConfig
	topic  string
	queue  *Queue
	logger *zap.Logger
}

// NewMQTTBridge connects to the broker and prepares the subscriber.
func NewMQTTBridge(cfg *config.MQTTConfig, topic string, queue *Queue, logger *zap.Logger) (*MQTTBridge, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &MQTTBridge{
		client: client,
		cfg:    cfg,
		topic:  topic,
		queue:  queue,
		logger: logger,
	}, nil
}

// Subscribe starts receiving device payloads.
func (b *MQTTBridge) Subscribe() error {
	token := b.client.Subscribe(b.topic, b.cfg.QoS, b.onMessage)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.topic, token.Error())
	}

	b.logger.Info("MQTT bridge subscribed",
		zap.String("broker", b.cfg.Broker),
		zap.String("topic", b.topic),
	)
	return nil
}

func (b *MQTTBridge) onMessage(_ mqtt.Client, msg mqtt.Message) {
	reading, err := ParseDevicePayload(msg.Payload())
	if err != nil {
		b.logger.Warn("ignoring malformed device payload",
			zap.String("topic", msg.Topic()),
			zap.Error(err),
		)
		return
	}

	metrics.ReadingsIngested.WithLabelValues("mqtt").Inc()
	b.queue.Enqueue(reading)
}

// Close disconnects from the broker.
func (b *MQTTBridge) Close() {
	b.client.Disconnect(250)
}
