package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus metrics for the radar pipeline
var (
	// Ingress metrics
	messagesProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "radar_messages_processed_total",
		Help: "Total number of chat messages run through the detectors",
	})

	messagesFiltered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "radar_messages_filtered_total",
		Help: "Total number of chat messages dropped by ingress pre-filters",
	})

	mentionsRecorded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "radar_mentions_recorded_total",
		Help: "Total contract mentions by chain and insert outcome",
	}, []string{"chain", "outcome"})

	storageErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "radar_storage_errors_total",
		Help: "Total repository operations that failed",
	})

	// Trending metrics
	trendingCandidates = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "radar_trending_candidates",
		Help: "Trending candidates produced by the most recent scan",
	})

	cooldownEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "radar_cooldown_entries",
		Help: "Contracts currently held in the alert cooldown map",
	})

	scanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "radar_trending_scan_duration_seconds",
		Help:    "Duration of one trending scan including oracle lookups",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	// Alert metrics
	alertsEmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "radar_alerts_emitted_total",
		Help: "Total trending alerts admitted past the cooldown gate",
	})

	alertSendFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "radar_alert_send_failures_total",
		Help: "Total alert deliveries that failed",
	})

	// Retention metrics
	purgedMentions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "radar_purged_mentions_total",
		Help: "Total mention rows deleted by the retention loop",
	})

	// Transport metrics
	telegramConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "radar_telegram_connected",
		Help: "Telegram client status (1=connected, 0=disconnected)",
	})
)

func init() {
	prometheus.MustRegister(messagesProcessed)
	prometheus.MustRegister(messagesFiltered)
	prometheus.MustRegister(mentionsRecorded)
	prometheus.MustRegister(storageErrors)

	prometheus.MustRegister(trendingCandidates)
	prometheus.MustRegister(cooldownEntries)
	prometheus.MustRegister(scanDuration)

	prometheus.MustRegister(alertsEmitted)
	prometheus.MustRegister(alertSendFailures)

	prometheus.MustRegister(purgedMentions)
	prometheus.MustRegister(telegramConnected)
}

// RecordMessageProcessed increments the processed message counter
func RecordMessageProcessed() {
	messagesProcessed.Inc()
}

// RecordMessageFiltered increments the filtered message counter
func RecordMessageFiltered() {
	messagesFiltered.Inc()
}

// RecordMention tracks one repository record attempt by chain and outcome
func RecordMention(chain, outcome string) {
	mentionsRecorded.WithLabelValues(chain, outcome).Inc()
}

// RecordStorageError increments the repository failure counter
func RecordStorageError() {
	storageErrors.Inc()
}

// SetTrendingCandidates updates the candidate gauge after a scan
func SetTrendingCandidates(n int) {
	trendingCandidates.Set(float64(n))
}

// SetCooldownEntries updates the cooldown map size gauge
func SetCooldownEntries(n int) {
	cooldownEntries.Set(float64(n))
}

// ObserveScanDuration records the wall time of one trending scan
func ObserveScanDuration(d time.Duration) {
	scanDuration.Observe(d.Seconds())
}

// RecordAlertEmitted increments the emitted alert counter
func RecordAlertEmitted() {
	alertsEmitted.Inc()
}

// RecordAlertSendFailure increments the failed delivery counter
func RecordAlertSendFailure() {
	alertSendFailures.Inc()
}

// AddPurgedMentions adds the row count deleted by one retention pass
func AddPurgedMentions(n int64) {
	if n > 0 {
		purgedMentions.Add(float64(n))
	}
}

// SetTelegramConnected flips the transport status gauge
func SetTelegramConnected(up bool) {
	if up {
		telegramConnected.Set(1)
	} else {
		telegramConnected.Set(0)
	}
}

// Handler serves the Prometheus scrape endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}
