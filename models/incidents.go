package models

import (
	"time"

	"github.com/google/uuid"
)

// Incident severities recorded by the access gate.
const (
	SeverityInfo     = "info"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// SecurityIncident is a record of a denied or suspicious request. Recent
// incidents feed into the composite health status.
type SecurityIncident struct {
	ID        uuid.UUID `json:"id"`
	Severity  string    `json:"severity"`
	Source    string    `json:"source"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"createdAt"`
}

// IncidentCounts groups recent incidents by severity.
type IncidentCounts struct {
	Info     int `json:"info"`
	Error    int `json:"error"`
	Critical int `json:"critical"`
}
