package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

var startTime = time.Now()

type HealthChecker struct {
	mu         sync.RWMutex
	lastRun    time.Time
	lastReturn float64
	runsCount  int
	errors     []string
}

type HealthStatus struct {
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
	LastRun    time.Time `json:"last_run"`
	LastReturn float64   `json:"last_return"`
	RunsCount  int       `json:"runs_count"`
	Uptime     string    `json:"uptime"`
	Errors     []string  `json:"errors,omitempty"`
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		errors: make([]string, 0),
	}
}

// RecordRun marks a completed rescaling run.
func (h *HealthChecker) RecordRun(totalReturn float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastRun = time.Now()
	h.lastReturn = totalReturn
	h.runsCount++
}

// RecordError appends a run error to the health report.
func (h *HealthChecker) RecordError(message string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, message)
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	if len(h.errors) > 0 {
		status = "unhealthy"
		w.WriteHeader(http.StatusInternalServerError)
	}

	health := HealthStatus{
		Status:     status,
		Timestamp:  time.Now(),
		LastRun:    h.lastRun,
		LastReturn: h.lastReturn,
		RunsCount:  h.runsCount,
		Uptime:     time.Since(startTime).String(),
		Errors:     h.errors,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}
