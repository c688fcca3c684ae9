package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/matricare/go-carelink/internal/adapter"
	"github.com/matricare/go-carelink/internal/logger"
	"github.com/matricare/go-carelink/models"
)

type documentService struct {
	adapter adapter.BackendAdapter
	queue   QueueService
	logger  *logger.Logger
}

func NewDocumentService(backend adapter.BackendAdapter, queue QueueService, log *logger.Logger) DocumentService {
	return &documentService{adapter: backend, queue: queue, logger: log}
}

func (d *documentService) Upload(ctx context.Context, doc models.DocumentUpload) (SubmitResult, error) {
	if doc.PatientID == "" {
		return SubmitResult{}, errors.New("document upload requires a patient id")
	}

	op, err := models.NewPendingOperation(models.KindDocumentUpload, doc)
	if err != nil {
		return SubmitResult{}, err
	}

	record, err := d.adapter.UploadDocument(ctx, op)
	if err == nil {
		return SubmitResult{Operation: op, Document: &record}, nil
	}
	if !errors.Is(err, adapter.ErrBackendUnreachable) {
		return SubmitResult{}, err
	}

	d.logger.Info().
		Str("operation_id", op.ID).
		Str("file_name", doc.FileName).
		Msg("backend unreachable, queueing document upload")

	if qErr := d.queue.EnqueueOperation(ctx, op); qErr != nil {
		return SubmitResult{}, fmt.Errorf("queue document after delivery failure: %w", errors.Join(qErr, err))
	}
	return SubmitResult{Operation: op, Queued: true}, nil
}

func (d *documentService) Documents(ctx context.Context, filter DocumentFilter) ([]models.DocumentRecord, error) {
	records, err := d.adapter.ListDocuments(ctx, filter.PatientID)
	if err != nil {
		return nil, err
	}

	if filter.Status == "" {
		return records, nil
	}

	filtered := records[:0:0]
	for _, record := range records {
		if record.Status == filter.Status {
			filtered = append(filtered, record)
		}
	}
	return filtered, nil
}
