package db

import (
	"fmt"
	"time"

	"github.com/campus-hub/campus-services/models"
	"github.com/google/uuid"
)

// RecordIncident stores a security incident for the health reporter.
func (c *CampusDB) RecordIncident(incident models.SecurityIncident) error {
	if incident.ID == uuid.Nil {
		incident.ID = uuid.New()
	}
	if incident.CreatedAt.IsZero() {
		incident.CreatedAt = time.Now().UTC()
	}

	_, err := c.DB.Exec(`
		INSERT INTO security_incidents (id, severity, source, detail, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		incident.ID, incident.Severity, incident.Source, incident.Detail, incident.CreatedAt)
	if err != nil {
		return fmt.Errorf("error recording incident: %w", err)
	}
	return nil
}

// CountRecentIncidents groups incidents newer than the window by severity.
func (c *CampusDB) CountRecentIncidents(window time.Duration) (models.IncidentCounts, error) {
	var counts models.IncidentCounts
	cutoff := time.Now().UTC().Add(-window)

	rows, err := c.DB.Query(`
		SELECT severity, COUNT(*) FROM security_incidents
		WHERE created_at >= $1 GROUP BY severity`, cutoff)
	if err != nil {
		return counts, fmt.Errorf("error counting incidents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var severity string
		var count int
		if err := rows.Scan(&severity, &count); err != nil {
			return counts, fmt.Errorf("error scanning incident counts: %w", err)
		}
		switch severity {
		case models.SeverityCritical:
			counts.Critical = count
		case models.SeverityError:
			counts.Error = count
		default:
			counts.Info += count
		}
	}
	return counts, nil
}
