package cart

import (
	pkgerrors "github.com/drdonut/voicecart-backend/pkg/errors"
)

// EventType tags the closed set of order event variants.
type EventType string

const (
	EventAdd    EventType = "add"
	EventRemove EventType = "remove"
	EventModify EventType = "modify"
	EventClear  EventType = "clear"
)

// Event is one structured instruction derived from an utterance. Fields are
// optional per variant; Validate checks the combination before the event
// enters the state machine.
type Event struct {
	Type         EventType `json:"type" validate:"required,oneof=add remove modify clear"`
	ItemText     string    `json:"item_text,omitempty"`
	ModifierText string    `json:"modifier_text,omitempty"`
	Quantity     int       `json:"quantity,omitempty" validate:"gte=0"`

	// Modify-only fields.
	NewQuantity     *int   `json:"new_quantity,omitempty"`
	NewModifierText string `json:"new_modifier_text,omitempty"`
}

// Validate enforces the per-variant field rules.
func (e Event) Validate() error {
	switch e.Type {
	case EventAdd, EventRemove:
		if e.ItemText == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "missing item text").
				WithDetails(map[string]any{"type": string(e.Type)})
		}
	case EventModify:
		if e.NewQuantity == nil && e.NewModifierText == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "modify event needs a new quantity or new modifier text")
		}
		if e.NewQuantity != nil && *e.NewQuantity < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "new quantity must not be negative")
		}
	case EventClear:
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown event type").
			WithDetails(map[string]any{"type": string(e.Type)})
	}
	if e.Quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}
	return nil
}

// DiagnosticKind classifies why an event could not be fully applied.
type DiagnosticKind string

const (
	// DiagUnresolvedItem means no catalog entry cleared the confidence
	// threshold, so the event was dropped.
	DiagUnresolvedItem DiagnosticKind = "unresolved_item"
	// DiagUnknownTarget means a remove or modify referenced a line the cart
	// does not hold.
	DiagUnknownTarget DiagnosticKind = "unknown_target"
	// DiagInvalidEvent means the event payload itself was malformed.
	DiagInvalidEvent DiagnosticKind = "invalid_event"
)

// Diagnostic records a non-fatal note about an event the engine dropped or
// ignored. The cart stays valid either way.
type Diagnostic struct {
	Kind      DiagnosticKind `json:"kind"`
	EventType EventType      `json:"event_type"`
	Detail    string         `json:"detail"`
}
