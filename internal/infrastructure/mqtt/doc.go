// Package mqtt provides the MQTT transport for the warehouse device bus.
//
// It wraps eclipse/paho.mqtt.golang with:
//
//   - Connection management and automatic reconnection with backoff
//   - Client-side subscription tracking, restored after reconnect
//   - A connectivity flag consulted by every publish (no offline queueing)
//   - Last Will and retained status messages for offline detection
//   - Panic recovery around message handlers
//
// Topic construction lives in topics.go; all coordinator code builds
// topics through the Topics helpers rather than string literals.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topics := mqtt.Topics{}
//	err = client.Subscribe(topics.AGVStatus(), 1, func(topic string, payload []byte) error {
//	    return handleAGV(payload)
//	})
package mqtt
