package models

// Composite health statuses. Unhealthy dominates degraded dominates healthy.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// ComponentStatus is the outcome of a single health check.
type ComponentStatus struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// HealthReport is the response body of the health endpoint.
type HealthReport struct {
	Status       string                     `json:"status"`
	Version      string                     `json:"version"`
	Timestamp    string                     `json:"timestamp"`
	Uptime       string                     `json:"uptime"`
	ResponseTime string                     `json:"responseTime"`
	Components   map[string]ComponentStatus `json:"components"`
}
