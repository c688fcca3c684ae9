package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/matricare/go-carelink/internal/adapter"
	"github.com/matricare/go-carelink/internal/logger"
	"github.com/matricare/go-carelink/models"
)

type patientService struct {
	adapter adapter.BackendAdapter
	queue   QueueService
	logger  *logger.Logger
}

func NewPatientService(backend adapter.BackendAdapter, queue QueueService, log *logger.Logger) PatientService {
	return &patientService{adapter: backend, queue: queue, logger: log}
}

func (p *patientService) RegisterPatient(ctx context.Context, form models.FormSubmission) (SubmitResult, error) {
	form.FormType = "registration"
	return p.submitForm(ctx, form)
}

func (p *patientService) RecordAssessment(ctx context.Context, form models.FormSubmission) (SubmitResult, error) {
	form.FormType = "assessment"
	if form.PatientID == "" {
		return SubmitResult{}, errors.New("assessment requires a patient id")
	}
	return p.submitForm(ctx, form)
}

// submitForm tries a direct delivery and downgrades to the offline queue
// only when the backend is unreachable at the transport level. Validation
// failures and server-side errors, both proof the device is online,
// surface unchanged and are never queued.
func (p *patientService) submitForm(ctx context.Context, form models.FormSubmission) (SubmitResult, error) {
	op, err := models.NewPendingOperation(models.KindFormSubmission, form)
	if err != nil {
		return SubmitResult{}, err
	}

	err = p.adapter.SubmitForm(ctx, op)
	if err == nil {
		return SubmitResult{Operation: op}, nil
	}
	if !errors.Is(err, adapter.ErrBackendUnreachable) {
		return SubmitResult{}, err
	}

	p.logger.Info().
		Str("operation_id", op.ID).
		Str("form_type", form.FormType).
		Msg("backend unreachable, queueing form submission")

	if qErr := p.queue.EnqueueOperation(ctx, op); qErr != nil {
		return SubmitResult{}, fmt.Errorf("queue form after delivery failure: %w", errors.Join(qErr, err))
	}
	return SubmitResult{Operation: op, Queued: true}, nil
}

func (p *patientService) Patients(ctx context.Context, filter PatientFilter) ([]models.Patient, error) {
	patients, err := p.adapter.ListPatients(ctx)
	if err != nil {
		return nil, err
	}

	filtered := patients[:0:0]
	for _, patient := range patients {
		if filter.Risk != "" && patient.Risk != filter.Risk {
			continue
		}
		if filter.AssignedWorker != "" && patient.AssignedWorker != filter.AssignedWorker {
			continue
		}
		filtered = append(filtered, patient)
	}

	sortPatients(filtered, filter.SortBy)
	return filtered, nil
}

// riskRank orders risk levels for sorting, highest risk first.
var riskRank = map[models.RiskLevel]int{
	models.RiskHigh:     0,
	models.RiskModerate: 1,
	models.RiskLow:      2,
}

func sortPatients(patients []models.Patient, sortBy string) {
	switch sortBy {
	case "name":
		sort.SliceStable(patients, func(i, j int) bool {
			return strings.ToLower(patients[i].Name) < strings.ToLower(patients[j].Name)
		})
	case "risk":
		sort.SliceStable(patients, func(i, j int) bool {
			return riskRank[patients[i].Risk] < riskRank[patients[j].Risk]
		})
	case "registered_at":
		sort.SliceStable(patients, func(i, j int) bool {
			return patients[i].RegisteredAt.After(patients[j].RegisteredAt)
		})
	}
}
