package audit

import "github.com/sirupsen/logrus"

// Sink receives security/audit events. Emission is fire-and-forget: a sink
// must never return control-flow errors into the calling operation.
type Sink interface {
	Emit(event string, fields map[string]interface{})
}

// Event names emitted by the core.
const (
	EventScheduleUpserted    = "schedule.upserted"
	EventScheduleDeactivated = "schedule.deactivated"
	EventAutopayEnabled      = "autopay.enabled"
	EventAutopayDisabled     = "autopay.disabled"
	EventLeaseStatusChanged  = "lease.status_changed"
)

// LogSink writes audit events to the application log.
type LogSink struct {
	log *logrus.Logger
}

// NewLogSink creates a log-backed audit sink.
func NewLogSink(log *logrus.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Emit(event string, fields map[string]interface{}) {
	entry := s.log.WithField("audit_event", event)
	if fields != nil {
		entry = entry.WithFields(logrus.Fields(fields))
	}
	entry.Info("audit event")
}

// NopSink discards events (used by tests).
type NopSink struct{}

func (NopSink) Emit(string, map[string]interface{}) {}
