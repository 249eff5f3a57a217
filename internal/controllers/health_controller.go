package controllers

import (
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"drinkaware/internal/services"
)

// HealthController answers liveness probes with uptime and per-account
// staleness, so a dead poll loop is visible from outside.
type HealthController struct {
	registry  services.RegistryServiceInterface
	startedAt time.Time
}

func NewHealthController(registry services.RegistryServiceInterface) *HealthController {
	return &HealthController{registry: registry, startedAt: time.Now()}
}

type accountHealth struct {
	ID          string `json:"id"`
	LastUpdated string `json:"lastUpdated"`
}

func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(c.startedAt)
	accounts := c.registry.List()
	perAccount := make([]accountHealth, 0, len(accounts))
	for _, acc := range accounts {
		h := accountHealth{ID: acc.ID, LastUpdated: "never"}
		if snap := acc.Snapshot(); snap != nil && !snap.UpdatedAt.IsZero() {
			h.LastUpdated = snap.UpdatedAt.Format(time.RFC3339)
		}
		perAccount = append(perAccount, h)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":         "ok",
		"uptime":         formatDuration(uptime),
		"uptime_seconds": int(uptime.Seconds()),
		"accounts":       perAccount,
	})
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	return fmt.Sprintf("%02d:%02d:%02d", h, m, d/time.Second)
}
