// Package notify carries unit status-change events from the core to
// whatever transport broadcasts them. Services return events; the edge
// layer decides to emit them, so the core stays free of transport
// dependencies.
package notify

import "time"

// EventType names a logical unit status-change event.
type EventType string

// Event names follow the external convention consumers already speak:
// a confirmed sale is announced as "unit-sold" even though the stored
// status is reserved.
const (
	EventUnitReserved EventType = "unit-reserved"
	EventUnitSold     EventType = "unit-sold"
	EventUnitReleased EventType = "unit-released"
)

// Event is one unit status change.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	UnitCode   string    `json:"unit_code"`
	OccurredAt time.Time `json:"occurred_at"`
}
