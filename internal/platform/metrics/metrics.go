package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "care_monitor"

// Metrics agrupa los contadores de ambos motores sobre un registry propio
// (no el global, para que los tests puedan crear varios).
type Metrics struct {
	registry *prometheus.Registry

	DosesMissed     prometheus.Counter
	DoseReminders   prometheus.Counter
	DosesTaken      prometheus.Counter
	EmergencySteps  *prometheus.CounterVec
	GatewayFailures *prometheus.CounterVec
	ActiveIncidents prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		DosesMissed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "doses_missed_total",
			Help:      "Doses transitioned to missed by the adherence scheduler",
		}),
		DoseReminders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dose_reminders_total",
			Help:      "Due-dose reminders fired",
		}),
		DosesTaken: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "doses_taken_total",
			Help:      "Doses marked as taken by the user",
		}),
		EmergencySteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emergency_steps_total",
			Help:      "Emergency orchestrator steps executed",
		}, []string{"step"}),
		GatewayFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_failures_total",
			Help:      "Best-effort platform calls that failed and were skipped",
		}, []string{"gateway"}),
		ActiveIncidents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "incidents_active",
			Help:      "1 while an emergency sequence is running",
		}),
	}

	reg.MustRegister(
		m.DosesMissed,
		m.DoseReminders,
		m.DosesTaken,
		m.EmergencySteps,
		m.GatewayFailures,
		m.ActiveIncidents,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Los helpers aceptan receptor nil para que los motores funcionen sin métricas.

func (m *Metrics) DoseMissed() {
	if m != nil {
		m.DosesMissed.Inc()
	}
}

func (m *Metrics) ReminderFired() {
	if m != nil {
		m.DoseReminders.Inc()
	}
}

func (m *Metrics) DoseTaken() {
	if m != nil {
		m.DosesTaken.Inc()
	}
}

func (m *Metrics) Step(step string) {
	if m != nil {
		m.EmergencySteps.WithLabelValues(step).Inc()
	}
}

func (m *Metrics) GatewayFailed(gateway string) {
	if m != nil {
		m.GatewayFailures.WithLabelValues(gateway).Inc()
	}
}

func (m *Metrics) SetActiveIncident(active bool) {
	if m == nil {
		return
	}
	if active {
		m.ActiveIncidents.Set(1)
		return
	}
	m.ActiveIncidents.Set(0)
}
