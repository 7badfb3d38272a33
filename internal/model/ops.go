package model

import (
	"strings"
	"time"
)

// PolicyFiring is one timestamped evaluation of a decision policy node.
type PolicyFiring struct {
	Timestamp      time.Time `json:"timestamp"`
	Node           string    `json:"node"`
	GuardrailFired bool      `json:"guardrail_fired"`
}

// Incident is an operational issue ticket.
type Incident struct {
	ID       string    `json:"incident_id"`
	OpenedAt time.Time `json:"opened_at"`
	Severity string    `json:"severity"`
	Title    string    `json:"title"`
	Status   string    `json:"status"`
}

// Open reports whether the incident is still open. Status comparison is
// case-insensitive to tolerate hand-edited incident files.
func (i Incident) Open() bool {
	return strings.EqualFold(i.Status, "open")
}
