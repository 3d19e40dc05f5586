package coordinator

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Publisher transmits payloads onto the device bus.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	IsConnected() bool
}

// SitePolicy decides which warehouses are wired to real automation.
// Directives for any other site are logged instead of transmitted, so a
// multi-site inventory can coexist with a single automated installation.
type SitePolicy struct {
	// AutomatedSite is the one site whose equipment receives real
	// directives. Comparison is exact and case-sensitive.
	AutomatedSite string
}

// DispatchReal reports whether directives for site reach real equipment.
func (p SitePolicy) DispatchReal(site string) bool {
	return site == p.AutomatedSite
}

// directivePayload is the equipment-facing command envelope. Firmware on
// the conveyor PLCs parses every field as text, so numeric values are
// serialized as strings.
type directivePayload struct {
	Action   string `json:"accion"`
	Quantity string `json:"cantidad"`
	Position string `json:"posicion"`
}

func encodeDirective(kind OperationKind, quantity, position int) ([]byte, error) {
	return json.Marshal(directivePayload{
		Action:   string(kind),
		Quantity: strconv.Itoa(quantity),
		Position: strconv.Itoa(position),
	})
}

// dispatch publishes payload on topic when the site is automated, and logs
// it otherwise. It returns whether the dispatch was simulated.
func (c *Coordinator) dispatch(site, topic string, payload []byte) (bool, error) {
	if !c.policy.DispatchReal(site) {
		c.logger.Info("simulated dispatch",
			"site", site,
			"topic", topic,
			"payload", string(payload))
		return true, nil
	}
	if err := c.gateway.Publish(topic, payload, directiveQoS, false); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrDispatchFailed, topic, err)
	}
	return false, nil
}

// directiveQoS is used for all equipment commands: at-least-once, since a
// lost directive stalls the physical operation.
const directiveQoS byte = 1
