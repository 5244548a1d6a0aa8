package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// MQTTPublisher publishes each message under <topicPrefix>/<source>.
type MQTTPublisher struct {
	client      mqtt.Client
	topicPrefix string
	logger      *slog.Logger
}

func NewMQTTPublisher(broker, topicPrefix string, logger *slog.Logger) (*MQTTPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID("smokesim-" + uuid.NewString()[:8])
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to mqtt broker %s: %w", broker, token.Error())
	}
	logger.Info("mqtt connected", "broker", broker, "topicPrefix", topicPrefix)

	return &MQTTPublisher{
		client:      client,
		topicPrefix: topicPrefix,
		logger:      logger,
	}, nil
}

func (p *MQTTPublisher) Publish(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling %s message: %w", msg.Source, err)
	}
	topic := p.topicPrefix + "/" + msg.Source
	token := p.client.Publish(topic, 0, false, payload)

	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			p.logger.Error("mqtt publish failed", "topic", topic, "error", err)
			return err
		}
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
