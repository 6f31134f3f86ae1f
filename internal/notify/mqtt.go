// Package notify publishes created alerts to the fleet MQTT bus so
// downstream dashboards can react without polling.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ukydev/fleet-maintenance/internal/models"
)

// Publisher publishes alert records to interested subscribers. Publication is
// a best-effort side effect: callers log failures and move on.
type Publisher interface {
	PublishAlert(alert models.Alert) error
}

// MQTTPublisher implements Publisher over an MQTT broker.
type MQTTPublisher struct {
	client mqtt.Client
	topic  string
}

// NewMQTTPublisher connects to the broker and returns a publisher for the
// given topic.
func NewMQTTPublisher(brokerURL, clientID, topic string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect error: %w", token.Error())
	}
	return &MQTTPublisher{client: client, topic: topic}, nil
}

// PublishAlert publishes the alert as JSON at QoS 0.
func (p *MQTTPublisher) PublishAlert(alert models.Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return err
	}
	token := p.client.Publish(p.topic, 0, false, payload)
	token.Wait()
	return token.Error()
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

// NopPublisher discards alerts. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishAlert(models.Alert) error { return nil }
