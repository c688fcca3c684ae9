package service

import (
	"context"

	"github.com/matricare/go-carelink/internal/adapter"
	"github.com/matricare/go-carelink/internal/logger"
	"github.com/matricare/go-carelink/models"
)

type approvalService struct {
	adapter adapter.BackendAdapter
	logger  *logger.Logger
}

func NewApprovalService(backend adapter.BackendAdapter, log *logger.Logger) ApprovalService {
	return &approvalService{adapter: backend, logger: log}
}

func (a *approvalService) Approvals(ctx context.Context, filter ApprovalFilter) ([]models.ApprovalRequest, error) {
	requests, err := a.adapter.ListApprovals(ctx)
	if err != nil {
		return nil, err
	}

	filtered := requests[:0:0]
	for _, req := range requests {
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		if filter.Role != "" && req.Requested != filter.Role {
			continue
		}
		filtered = append(filtered, req)
	}
	return filtered, nil
}

// Resolve is deliberately a direct call with no offline fallback: an admin
// decision taken against a stale applicant list must fail loudly, not
// replay silently later.
func (a *approvalService) Resolve(ctx context.Context, requestID string, approve bool) error {
	err := a.adapter.ResolveApproval(ctx, requestID, approve)
	if err != nil {
		a.logger.Warn().
			Err(err).
			Str("request_id", requestID).
			Bool("approve", approve).
			Msg("approval decision failed")
		return err
	}

	a.logger.Info().
		Str("request_id", requestID).
		Bool("approve", approve).
		Msg("approval decision recorded")
	return nil
}
