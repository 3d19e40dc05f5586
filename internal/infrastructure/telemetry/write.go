package telemetry

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteDeviceStatus records a textual device status reading
// (e.g. conveyor belt state). Non-blocking; batched.
func (c *Client) WriteDeviceStatus(site, device, status string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_status",
		map[string]string{
			"site":   site,
			"device": device,
		},
		map[string]interface{}{
			"status": status,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteSensorReading records a numeric sensor reading
// (e.g. infrared presence value, AGV position). Non-blocking; batched.
func (c *Client) WriteSensorReading(site, device string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"sensor_readings",
		map[string]string{
			"site":   site,
			"device": device,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteOperationEvent records an operation lifecycle event
// (started, completed, timed_out, emergency_stop).
func (c *Client) WriteOperationEvent(site, kind, event string, position int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"operation_events",
		map[string]string{
			"site":  site,
			"kind":  kind,
			"event": event,
		},
		map[string]interface{}{
			"position": position,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
