// Package metrics registra las métricas Prometheus del servicio.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "kenshin_"

// Resultados usados como label.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	billingComputations *prometheus.CounterVec
	billingWarnings     prometheus.Counter
	dlmsFactoryFailures *prometheus.CounterVec
	meterReadLatency    *prometheus.HistogramVec
	exportsTotal        *prometheus.CounterVec
)

func init() {
	billingComputations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "billing_computations_total",
			Help: "Cálculos de facturación por origen y resultado",
		},
		[]string{"source", "result"},
	)
	billingWarnings = prometheus.NewCounter(prometheus.CounterOpts{
		Name: metricPrefix + "billing_warnings_total",
		Help: "Advertencias emitidas por el cálculo de facturación",
	})
	dlmsFactoryFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "dlms_factory_failures_total",
			Help: "Fallos al construir sesiones DLMS por motivo",
		},
		[]string{"reason"},
	)
	meterReadLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    metricPrefix + "meter_read_latency_seconds",
			Help:    "Duración de una lectura DLMS completa",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"},
	)
	exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "exports_total",
			Help: "Exportaciones generadas por formato",
		},
		[]string{"format"},
	)
}

// Register registra las métricas en el registerer indicado (una sola vez por proceso).
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(
			billingComputations,
			billingWarnings,
			dlmsFactoryFailures,
			meterReadLatency,
			exportsTotal,
		)
	})
}

// BillingComputed cuenta un cálculo de facturación.
func BillingComputed(source, result string, warnings int) {
	billingComputations.WithLabelValues(source, result).Inc()
	if warnings > 0 {
		billingWarnings.Add(float64(warnings))
	}
}

// DLMSFactoryFailure cuenta un fallo de construcción de sesión.
func DLMSFactoryFailure(reason string) {
	dlmsFactoryFailures.WithLabelValues(reason).Inc()
}

// ObserveMeterRead registra la duración de una lectura.
func ObserveMeterRead(start time.Time, result string) {
	meterReadLatency.WithLabelValues(result).Observe(time.Since(start).Seconds())
}

// ExportGenerated cuenta una exportación.
func ExportGenerated(format string) {
	exportsTotal.WithLabelValues(format).Inc()
}
