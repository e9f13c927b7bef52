package app

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/adred-codev/alpha-radar/internal/monitoring"
)

// handleHealth reports 200 only when the transport is connected and the
// store answers a ping. Details carry the counters an operator needs at
// a glance.
func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	transportUp := a.listener.Connected()
	storageUp := a.store.Healthy(checkCtx)

	healthy := transportUp && storageUp
	reasons := []string{}
	if !transportUp {
		reasons = append(reasons, "telegram transport not connected")
	}
	if !storageUp {
		reasons = append(reasons, "storage ping failed")
	}

	status := "healthy"
	statusCode := http.StatusOK
	if !healthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	a.stats.mu.RLock()
	memoryMB := a.stats.MemoryMB
	a.stats.mu.RUnlock()

	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]any{
		"status":  status,
		"healthy": healthy,
		"checks": map[string]any{
			"telegram": map[string]any{"healthy": transportUp},
			"storage":  map[string]any{"healthy": storageUp},
		},
		"details": map[string]any{
			"reasons":            reasons,
			"uptime_seconds":     time.Since(a.stats.StartTime).Seconds(),
			"messages_processed": atomic.LoadInt64(&a.stats.MessagesProcessed),
			"messages_filtered":  atomic.LoadInt64(&a.stats.MessagesFiltered),
			"mentions_inserted":  atomic.LoadInt64(&a.stats.MentionsInserted),
			"duplicates":         atomic.LoadInt64(&a.stats.MentionsDuplicate),
			"alerts_sent":        atomic.LoadInt64(&a.stats.AlertsSent),
			"goroutines":         runtime.NumGoroutine(),
			"memory_mb":          memoryMB,
		},
	})
}

// collectLoop samples process memory for health details and mirrors the
// transport state into the metrics gauge
func (a *App) collectLoop() {
	defer a.wg.Done()

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		a.logger.Error().Err(err).Msg("Failed to get process info")
		proc = nil
	}

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			monitoring.SetTelegramConnected(a.listener.Connected())

			if proc == nil {
				continue
			}
			memInfo, err := proc.MemoryInfo()
			if err != nil {
				continue
			}
			a.stats.mu.Lock()
			a.stats.MemoryMB = float64(memInfo.RSS) / 1024 / 1024
			a.stats.mu.Unlock()
		}
	}
}
