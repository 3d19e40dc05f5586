package coordinator

import "encoding/json"

// stopCommand is the equipment stop envelope. The palletizer additionally
// needs the mode it was running in to wind down safely.
type stopCommand struct {
	Action string `json:"accion"`
	Mode   string `json:"modo,omitempty"`
}

// HandleEmergencyStop asserts the emergency flag, orders every piece of
// equipment to stop and abandons the operation in flight. Repeated signals
// are safe: the stops are re-issued and the state is unchanged.
func (c *Coordinator) HandleEmergencyStop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	site := c.cfg.DefaultSite
	mode := ""
	if op := c.state.CurrentOperation; op != nil {
		site = op.Site
		mode = string(op.Kind)
		c.publishOperationEventLocked(op, "emergency_stop")
	}

	c.state.EmergencyStop = true
	c.clearOperationLocked()

	plain, _ := json.Marshal(stopCommand{Action: "parar"})
	withMode, _ := json.Marshal(stopCommand{Action: "parar", Mode: mode})

	// Each stop is dispatched independently: one failing publish must not
	// keep the others from going out.
	stops := []struct {
		device  string
		topic   string
		payload []byte
	}{
		{"cinta1", c.topics.ConveyorCommand(1), plain},
		{"cinta2", c.topics.ConveyorCommand(2), plain},
		{"paletizador", c.topics.PalletizerCommand(), withMode},
		{"cobot", c.topics.CobotCommand(), plain},
	}
	for _, stop := range stops {
		if _, err := c.dispatch(site, stop.topic, stop.payload); err != nil {
			c.logger.Error("emergency stop dispatch failed",
				"device", stop.device,
				"topic", stop.topic,
				"error", err)
		}
	}

	c.logger.Warn("emergency stop asserted", "site", site)
	c.broadcastLocked()
	return nil
}

// ResetEmergency clears the emergency flag after an operator confirms the
// floor is safe. Nothing else is restored: equipment stays stopped until
// explicitly commanded again.
func (c *Coordinator) ResetEmergency() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.EmergencyStop {
		return
	}
	c.state.EmergencyStop = false
	c.logger.Info("emergency stop reset")
	c.broadcastLocked()
}
