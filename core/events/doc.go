// Package events defines the events published on the event bus by the
// estimation and thermal loops.
//
// Available event types:
//   - SoCTick: result of one estimation tick
//   - CellTick: cell temperatures after one monitoring pass
//   - ThermalTransition: controller state change
package events
