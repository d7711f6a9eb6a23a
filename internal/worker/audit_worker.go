package worker

import (
	"github.com/spec-kit/lead-lens/internal/events"
	"github.com/spec-kit/lead-lens/internal/service"
)

// StartAuditWorker subscribes the audit recorder to contact write events.
func StartAuditWorker(dispatcher events.Dispatcher, recorder *service.AuditRecorder) {
	if dispatcher == nil || recorder == nil {
		return
	}
	recorder.RegisterHandlers(dispatcher)
}
