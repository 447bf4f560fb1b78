package events

import (
	"encoding/json"
	"time"
)

// Gameplay actions emitted by the round controller.
const (
	ActionSolve = "solve"
	ActionHint  = "hint"
	ActionReset = "reset"
)

// Event is one gameplay log record. Fields carry action-specific context
// (category, word, attempts, points, hintStep...) and are flattened on the wire.
type Event struct {
	ID        string
	Action    string
	Player    string
	Timestamp time.Time
	Fields    map[string]any
}

// MarshalJSON flattens Fields next to the fixed keys: {"action","player","ts",...}.
// Fixed keys win over a Field of the same name.
func (e Event) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Fields)+4)
	for k, v := range e.Fields {
		out[k] = v
	}
	if e.ID != "" {
		out["id"] = e.ID
	}
	out["action"] = e.Action
	out["player"] = e.Player
	out["ts"] = e.Timestamp.UTC().Format(time.RFC3339Nano)
	return json.Marshal(out)
}
