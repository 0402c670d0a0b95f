package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/campus-hub/campus-services/models"
	"github.com/rs/zerolog"
)

// CheckHealth probes the database, validates required configuration and
// inspects the recent security incident log. The composite status is the
// worst of the three: a critical incident or unreachable database reads
// unhealthy, slow responses or error-level incidents read degraded.
func CheckHealth(ctx context.Context, svc *Service) models.HealthReport {
	start := time.Now()
	components := make(map[string]models.ComponentStatus, 3)

	probeTimeout := time.Duration(svc.Config.Health.ProbeTimeoutSeconds) * time.Second
	latencyThreshold := time.Duration(svc.Config.Health.LatencyThresholdMS) * time.Millisecond

	components["database"] = checkDatabase(ctx, svc, probeTimeout, latencyThreshold)
	components["config"] = checkConfig(svc)
	components["security"] = checkIncidents(svc)

	status := models.StatusHealthy
	for _, c := range components {
		status = worstOf(status, c.Status)
	}

	return models.HealthReport{
		Status:       status,
		Version:      svc.Version,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Uptime:       time.Since(svc.StartedAt).Round(time.Second).String(),
		ResponseTime: time.Since(start).Round(time.Millisecond).String(),
		Components:   components,
	}
}

func checkDatabase(ctx context.Context, svc *Service, timeout, threshold time.Duration) models.ComponentStatus {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	if err := svc.DB.Ping(probeCtx); err != nil {
		return models.ComponentStatus{
			Status: models.StatusUnhealthy,
			Detail: "database unreachable",
		}
	}
	latency := time.Since(start)
	if latency > threshold {
		return models.ComponentStatus{
			Status: models.StatusDegraded,
			Detail: fmt.Sprintf("database responded in %s", latency.Round(time.Millisecond)),
		}
	}
	return models.ComponentStatus{Status: models.StatusHealthy}
}

func checkConfig(svc *Service) models.ComponentStatus {
	if missing := svc.Config.MissingRequired(); len(missing) > 0 {
		return models.ComponentStatus{
			Status: models.StatusUnhealthy,
			Detail: fmt.Sprintf("missing required configuration: %v", missing),
		}
	}
	return models.ComponentStatus{Status: models.StatusHealthy}
}

func checkIncidents(svc *Service) models.ComponentStatus {
	window := time.Duration(svc.Config.Health.IncidentWindowMinutes) * time.Minute
	counts, err := svc.DB.CountRecentIncidents(window)
	if err != nil {
		// Can't read the incident log. Conservative but not alarming.
		return models.ComponentStatus{
			Status: models.StatusDegraded,
			Detail: "incident log unavailable",
		}
	}
	switch {
	case counts.Critical > 0:
		return models.ComponentStatus{
			Status: models.StatusUnhealthy,
			Detail: fmt.Sprintf("%d critical incidents in window", counts.Critical),
		}
	case counts.Error > 0:
		return models.ComponentStatus{
			Status: models.StatusDegraded,
			Detail: fmt.Sprintf("%d error incidents in window", counts.Error),
		}
	}
	return models.ComponentStatus{Status: models.StatusHealthy}
}

// worstOf returns the more severe of two statuses.
func worstOf(a, b string) string {
	rank := map[string]int{
		models.StatusHealthy:   0,
		models.StatusDegraded:  1,
		models.StatusUnhealthy: 2,
	}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

// GetHealthService handles `GET /health` and `HEAD /health`. HEAD carries
// the same composite verdict in the status code alone.
func GetHealthService(svc *Service, w http.ResponseWriter, r *http.Request) {
	report := CheckHealth(r.Context(), svc)

	status := http.StatusOK
	if report.Status == models.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	if report.Status != models.StatusHealthy {
		zerolog.Ctx(r.Context()).Warn().
			Str("status", report.Status).Msg("health check not healthy")
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(status)
		return
	}
	WriteResponse(w, status, report)
}
