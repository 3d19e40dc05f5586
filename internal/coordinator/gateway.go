package coordinator

import (
	"context"
	"fmt"

	"github.com/Humanoidear/PR2-Frontend-Backend/internal/infrastructure/mqtt"
)

// Subscriber registers handlers for device bus topics.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// deviceQoS is used for inbound device telemetry: at-most-once is fine,
// every device republishes its state on change.
const deviceQoS byte = 0

// BindGateway subscribes the coordinator to every device topic it reacts
// to. ctx bounds the QR-triggered ledger lookups performed by handlers.
func (c *Coordinator) BindGateway(ctx context.Context, sub Subscriber) error {
	bindings := []struct {
		topic   string
		qos     byte
		handler mqtt.MessageHandler
	}{
		{c.topics.EmergencyStop(), 1, func(string, []byte) error {
			return c.HandleEmergencyStop()
		}},
		{c.topics.ConveyorStatus(1), deviceQoS, func(_ string, payload []byte) error {
			return c.HandleConveyorStatus(1, payload)
		}},
		{c.topics.ConveyorStatus(2), deviceQoS, func(_ string, payload []byte) error {
			return c.HandleConveyorStatus(2, payload)
		}},
		{c.topics.InfraredStatus(1), deviceQoS, func(_ string, payload []byte) error {
			return c.HandleInfraredStatus(1, payload)
		}},
		{c.topics.InfraredStatus(2), deviceQoS, func(_ string, payload []byte) error {
			return c.HandleInfraredStatus(2, payload)
		}},
		{c.topics.AGVStatus(), deviceQoS, func(_ string, payload []byte) error {
			return c.HandleAGVStatus(payload)
		}},
		{c.topics.QRScan(), 1, func(_ string, payload []byte) error {
			return c.HandleQRScan(ctx, payload)
		}},
	}

	for _, b := range bindings {
		if err := sub.Subscribe(b.topic, b.qos, b.handler); err != nil {
			return fmt.Errorf("subscribe %s: %w", b.topic, err)
		}
	}
	return nil
}
