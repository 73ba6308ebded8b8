package observability

import (
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"
)

// InstrumentDB registers the OpenTelemetry GORM plugin so that every query
// becomes a child span of the request that issued it. Metrics are left to
// the Prometheus collectors.
func InstrumentDB(db *gorm.DB) error {
	return db.Use(tracing.NewPlugin(tracing.WithoutMetrics()))
}
