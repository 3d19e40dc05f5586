// Package coordinator owns the warehouse system state and drives every
// material-handling operation.
//
// A single Coordinator serializes operator requests, device reports and
// emergency transitions through one mutex, so at most one operation is
// in flight at any time. Entrances assign the lowest free storage slot
// and mark the inventory row as stored; exits vacate the recorded slot
// and remove the row. Equipment directives go out over the MQTT device
// bus for the automated site and are logged as simulated dispatches for
// every other site.
//
// An operation completes when the AGV reports arrival at its target
// position, or expires through the watchdog when that report never comes.
package coordinator
