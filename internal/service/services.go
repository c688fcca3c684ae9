package service

import (
	"github.com/matricare/go-carelink/internal/adapter"
	"github.com/matricare/go-carelink/internal/config"
	"github.com/matricare/go-carelink/internal/logger"
	"github.com/matricare/go-carelink/internal/store"
)

// ClientServices groups the client's application services.
type ClientServices struct {
	Queue     QueueService
	Patients  PatientService
	Chat      ChatService
	Documents DocumentService
	Approvals ApprovalService
}

// NewClientServices wires all services over the shared storages and backend
// adapter.
func NewClientServices(storages *store.ClientStorages, backend adapter.BackendAdapter, cfg config.ClientSync, log *logger.Logger) *ClientServices {
	queueSvc := NewQueueService(storages.Queue, backend, cfg.MaxItemRetries, log)

	return &ClientServices{
		Queue:     queueSvc,
		Patients:  NewPatientService(backend, queueSvc, log),
		Chat:      NewChatService(backend, queueSvc, log),
		Documents: NewDocumentService(backend, queueSvc, log),
		Approvals: NewApprovalService(backend, log),
	}
}
