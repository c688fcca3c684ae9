// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Matricare Health

package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/matricare/go-carelink/internal/adapter"
	"github.com/matricare/go-carelink/internal/logger"
	"github.com/matricare/go-carelink/internal/store"
	"github.com/matricare/go-carelink/models"
)

type offlineQueueService struct {
	queue          store.QueueRepository
	adapter        adapter.BackendAdapter
	maxItemRetries int
	logger         *logger.Logger

	mu       sync.Mutex
	flushing bool
}

// NewQueueService builds the offline queue over the durable repository and
// the backend adapter. maxItemRetries bounds per-item replays; zero or
// negative falls back to 10.
func NewQueueService(queue store.QueueRepository, backend adapter.BackendAdapter, maxItemRetries int, log *logger.Logger) QueueService {
	if maxItemRetries <= 0 {
		maxItemRetries = 10
	}
	return &offlineQueueService{
		queue:          queue,
		adapter:        backend,
		maxItemRetries: maxItemRetries,
		logger:         log,
	}
}

func (s *offlineQueueService) Enqueue(ctx context.Context, kind models.OperationKind, payload any) (models.PendingOperation, error) {
	op, err := models.NewPendingOperation(kind, payload)
	if err != nil {
		return models.PendingOperation{}, err
	}

	if err = s.EnqueueOperation(ctx, op); err != nil {
		return models.PendingOperation{}, err
	}
	return op, nil
}

func (s *offlineQueueService) EnqueueOperation(ctx context.Context, op models.PendingOperation) error {
	if !op.Kind.Valid() {
		return fmt.Errorf("unknown operation kind %q", op.Kind)
	}

	if err := s.queue.Add(ctx, op); err != nil {
		return fmt.Errorf("enqueue %s: %w", op.Kind, err)
	}

	s.logger.Info().
		Str("operation_id", op.ID).
		Str("kind", string(op.Kind)).
		Msg("operation queued for later delivery")
	return nil
}

// Flush is safe to call concurrently with itself: the in-progress flag is
// held for the whole cycle, and a second caller coalesces into the running
// flush by returning immediately.
func (s *offlineQueueService) Flush(ctx context.Context) (models.SyncResult, error) {
	s.mu.Lock()
	if s.flushing {
		s.mu.Unlock()
		s.logger.Debug().Msg("flush already in progress, coalescing")
		return models.SyncResult{}, nil
	}
	s.flushing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.flushing = false
		s.mu.Unlock()
	}()

	return s.flush(ctx)
}

func (s *offlineQueueService) flush(ctx context.Context) (models.SyncResult, error) {
	var result models.SyncResult

	req := models.SyncBatchRequest{}
	groups := []struct {
		kind models.OperationKind
		dst  *[]models.PendingOperation
	}{
		{models.KindFormSubmission, &req.Forms},
		{models.KindChatMessage, &req.Chats},
		{models.KindDocumentUpload, &req.Documents},
	}

	for _, g := range groups {
		ops, err := s.queue.ListPending(ctx, g.kind)
		if err != nil {
			return result, fmt.Errorf("list pending %s: %w", g.kind, err)
		}
		for _, op := range ops {
			if op.RetryCount > s.maxItemRetries {
				result.Skipped++
				continue
			}
			*g.dst = append(*g.dst, op)
		}
	}

	result.Submitted = req.Size()
	if result.Submitted == 0 {
		return result, nil
	}

	resp, err := s.adapter.SyncBatch(ctx, req)
	if err != nil {
		// The whole batch stays queued untouched for the next
		// connectivity event.
		return result, fmt.Errorf("sync batch: %w", err)
	}

	verdicts := make(map[string]models.SyncItemResult, len(resp.Results))
	for _, r := range resp.Results {
		verdicts[r.ID] = r
	}

	for _, op := range collectOps(req) {
		verdict, ok := verdicts[op.ID]
		if !ok {
			// The backend did not acknowledge this item either way;
			// leave it queued as-is for the next flush.
			s.logger.Warn().
				Str("operation_id", op.ID).
				Msg("sync batch response missing verdict for submitted operation")
			continue
		}

		if verdict.Accepted {
			if err := s.queue.Remove(ctx, op.ID); err != nil {
				return result, fmt.Errorf("remove acknowledged operation %s: %w", op.ID, err)
			}
			result.Accepted++
			continue
		}

		if err := s.queue.BumpRetry(ctx, op.ID); err != nil {
			return result, fmt.Errorf("bump retry for operation %s: %w", op.ID, err)
		}
		result.Rejected++
		s.logger.Warn().
			Str("operation_id", op.ID).
			Str("kind", string(op.Kind)).
			Str("reason", verdict.Error).
			Msg("backend rejected queued operation")
	}

	s.logger.Info().
		Int("submitted", result.Submitted).
		Int("accepted", result.Accepted).
		Int("rejected", result.Rejected).
		Int("skipped", result.Skipped).
		Msg("flush cycle completed")

	return result, nil
}

func (s *offlineQueueService) Pending(ctx context.Context) (int, error) {
	return s.queue.CountPending(ctx)
}

func (s *offlineQueueService) Stuck(ctx context.Context) ([]models.PendingOperation, error) {
	ops, err := s.queue.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list queued operations: %w", err)
	}

	var stuck []models.PendingOperation
	for _, op := range ops {
		if op.RetryCount > s.maxItemRetries {
			stuck = append(stuck, op)
		}
	}
	return stuck, nil
}

func collectOps(req models.SyncBatchRequest) []models.PendingOperation {
	ops := make([]models.PendingOperation, 0, req.Size())
	ops = append(ops, req.Forms...)
	ops = append(ops, req.Chats...)
	ops = append(ops, req.Documents...)
	return ops
}
