package mqtt

import "fmt"

// Topic prefixes for the warehouse device bus.
//
// Inbound device telemetry arrives under almacen/estado/..., outbound
// directives are published under almacen/comando/..., and coordinator
// events under almacen/evento/....
const (
	// TopicPrefix is the base for all warehouse topics.
	TopicPrefix = "almacen"

	// TopicPrefixState is the base for inbound device telemetry.
	TopicPrefixState = "almacen/estado"

	// TopicPrefixCommand is the base for outbound device directives.
	TopicPrefixCommand = "almacen/comando"

	// TopicPrefixEvent is the base for coordinator-published events.
	TopicPrefixEvent = "almacen/evento"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "almacen/sistema"
)

// Topics provides builders for warehouse MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
//
//	topics := mqtt.Topics{}
//	topic := topics.Directive()
//	// Returns: "almacen/comando/directiva"
type Topics struct{}

// =============================================================================
// Inbound telemetry topics (subscribed by the coordinator)
// =============================================================================

// EmergencyStop returns the emergency-stop topic. Any message on it,
// regardless of payload, triggers the emergency handler.
//
// Topic: almacen/parada_emergencia
func (Topics) EmergencyStop() string {
	return fmt.Sprintf("%s/parada_emergencia", TopicPrefix)
}

// ConveyorStatus returns the status topic for a conveyor (raw text payload).
//
// Example: almacen/estado/cinta1
func (Topics) ConveyorStatus(n int) string {
	return fmt.Sprintf("%s/cinta%d", TopicPrefixState, n)
}

// InfraredStatus returns the status topic for an infrared presence sensor
// (integer string payload).
//
// Example: almacen/estado/infrarrojo1
func (Topics) InfraredStatus(n int) string {
	return fmt.Sprintf("%s/infrarrojo%d", TopicPrefixState, n)
}

// AGVStatus returns the AGV telemetry topic
// (JSON payload {"ubicacion":int,"estado":string}).
//
// Topic: almacen/estado/agv
func (Topics) AGVStatus() string {
	return fmt.Sprintf("%s/agv", TopicPrefixState)
}

// QRScan returns the QR scan notification topic.
//
// Topic: almacen/estado/qr
func (Topics) QRScan() string {
	return fmt.Sprintf("%s/qr", TopicPrefixState)
}

// =============================================================================
// Outbound directive topics (published by the coordinator)
// =============================================================================

// Directive returns the generic operation directive topic
// ({"accion","cantidad","posicion"}).
//
// Topic: almacen/comando/directiva
func (Topics) Directive() string {
	return fmt.Sprintf("%s/directiva", TopicPrefixCommand)
}

// ConveyorCommand returns the command topic for a conveyor.
//
// Example: almacen/comando/cinta1
func (Topics) ConveyorCommand(n int) string {
	return fmt.Sprintf("%s/cinta%d", TopicPrefixCommand, n)
}

// PalletizerCommand returns the palletizing cell command topic
// ({"accion","modo"}).
//
// Topic: almacen/comando/paletizador
func (Topics) PalletizerCommand() string {
	return fmt.Sprintf("%s/paletizador", TopicPrefixCommand)
}

// CobotCommand returns the cobot pickup command topic.
//
// Topic: almacen/comando/cobot
func (Topics) CobotCommand() string {
	return fmt.Sprintf("%s/cobot", TopicPrefixCommand)
}

// =============================================================================
// Coordinator event and system topics
// =============================================================================

// OperationEvent returns the topic for operation lifecycle notices
// (completed, timed out, aborted).
//
// Topic: almacen/evento/operacion
func (Topics) OperationEvent() string {
	return fmt.Sprintf("%s/operacion", TopicPrefixEvent)
}

// SystemStatus returns the coordinator status topic (retained, with LWT).
//
// Topic: almacen/sistema/estado
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/estado", TopicPrefixSystem)
}
