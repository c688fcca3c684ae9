package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/matricare/go-carelink/internal/adapter"
	"github.com/matricare/go-carelink/internal/logger"
	"github.com/matricare/go-carelink/internal/mock"
	"github.com/matricare/go-carelink/internal/service"
	"github.com/matricare/go-carelink/models"
)

func TestPatientService_RegisterPatientDirect(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mock.NewMockBackendAdapter(ctrl)
	queue := mock.NewMockQueueService(ctrl)

	var sent models.PendingOperation
	backend.EXPECT().
		SubmitForm(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, op models.PendingOperation) error {
			sent = op
			return nil
		})

	svc := service.NewPatientService(backend, queue, logger.Nop())

	result, err := svc.RegisterPatient(context.Background(), models.FormSubmission{
		Fields:     map[string]string{"name": "Asha Devi", "village": "Rampur"},
		RecordedBy: "worker-1",
	})

	require.NoError(t, err)
	assert.False(t, result.Queued)
	assert.Equal(t, sent, result.Operation)
	assert.Equal(t, models.KindFormSubmission, sent.Kind)

	decoded, err := models.DecodePayload(sent.Kind, sent.Payload)
	require.NoError(t, err)
	form, ok := decoded.(models.FormSubmission)
	require.True(t, ok)
	assert.Equal(t, "registration", form.FormType)
}

func TestPatientService_RegisterPatientQueuesWhenUnreachable(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mock.NewMockBackendAdapter(ctrl)
	queue := mock.NewMockQueueService(ctrl)

	var attempted models.PendingOperation
	backend.EXPECT().
		SubmitForm(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, op models.PendingOperation) error {
			attempted = op
			return adapter.ErrBackendUnreachable
		})

	var queued models.PendingOperation
	queue.EXPECT().
		EnqueueOperation(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, op models.PendingOperation) error {
			queued = op
			return nil
		})

	svc := service.NewPatientService(backend, queue, logger.Nop())

	result, err := svc.RegisterPatient(context.Background(), models.FormSubmission{
		Fields:     map[string]string{"name": "Meena"},
		RecordedBy: "worker-1",
	})

	require.NoError(t, err)
	assert.True(t, result.Queued)
	// The queued operation is the very one the direct attempt carried,
	// ID included, so the backend can deduplicate on replay.
	assert.Equal(t, attempted, queued)
	assert.Equal(t, attempted, result.Operation)
}

func TestPatientService_ServerErrorSurfacesWithoutQueueing(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mock.NewMockBackendAdapter(ctrl)
	queue := mock.NewMockQueueService(ctrl)

	// A 5xx that exhausted the retry budget still proves the backend was
	// reached. The caller must see the failure; nothing goes to the queue.
	backend.EXPECT().
		SubmitForm(gomock.Any(), gomock.Any()).
		Return(adapter.ErrServerUnavailable)

	svc := service.NewPatientService(backend, queue, logger.Nop())

	result, err := svc.RegisterPatient(context.Background(), models.FormSubmission{
		Fields:     map[string]string{"name": "Meena"},
		RecordedBy: "worker-1",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, adapter.ErrServerUnavailable)
	assert.False(t, result.Queued)
}

func TestPatientService_ValidationFailureIsNotQueued(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mock.NewMockBackendAdapter(ctrl)
	queue := mock.NewMockQueueService(ctrl)

	backend.EXPECT().
		SubmitForm(gomock.Any(), gomock.Any()).
		Return(adapter.ErrValidation)

	svc := service.NewPatientService(backend, queue, logger.Nop())

	_, err := svc.RegisterPatient(context.Background(), models.FormSubmission{RecordedBy: "worker-1"})

	require.Error(t, err)
	assert.ErrorIs(t, err, adapter.ErrValidation)
}

func TestPatientService_RecordAssessmentRequiresPatient(t *testing.T) {
	ctrl := gomock.NewController(t)

	svc := service.NewPatientService(mock.NewMockBackendAdapter(ctrl), mock.NewMockQueueService(ctrl), logger.Nop())

	_, err := svc.RecordAssessment(context.Background(), models.FormSubmission{RecordedBy: "doctor-1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "patient id")
}

func TestPatientService_PatientsFilterAndSort(t *testing.T) {
	now := time.Now()
	all := []models.Patient{
		{ID: "p-1", Name: "Meena", Risk: models.RiskLow, AssignedWorker: "w-1", RegisteredAt: now.Add(-48 * time.Hour)},
		{ID: "p-2", Name: "asha", Risk: models.RiskHigh, AssignedWorker: "w-1", RegisteredAt: now.Add(-24 * time.Hour)},
		{ID: "p-3", Name: "Lata", Risk: models.RiskModerate, AssignedWorker: "w-2", RegisteredAt: now},
	}

	tests := []struct {
		name    string
		filter  service.PatientFilter
		wantIDs []string
	}{
		{
			name:    "no filter keeps backend order",
			filter:  service.PatientFilter{},
			wantIDs: []string{"p-1", "p-2", "p-3"},
		},
		{
			name:    "filter by worker",
			filter:  service.PatientFilter{AssignedWorker: "w-1"},
			wantIDs: []string{"p-1", "p-2"},
		},
		{
			name:    "filter by risk",
			filter:  service.PatientFilter{Risk: models.RiskHigh},
			wantIDs: []string{"p-2"},
		},
		{
			name:    "sort by name is case-insensitive",
			filter:  service.PatientFilter{SortBy: "name"},
			wantIDs: []string{"p-2", "p-3", "p-1"},
		},
		{
			name:    "sort by risk puts high first",
			filter:  service.PatientFilter{SortBy: "risk"},
			wantIDs: []string{"p-2", "p-3", "p-1"},
		},
		{
			name:    "sort by registration puts newest first",
			filter:  service.PatientFilter{SortBy: "registered_at"},
			wantIDs: []string{"p-3", "p-2", "p-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			backend := mock.NewMockBackendAdapter(ctrl)
			backend.EXPECT().ListPatients(gomock.Any()).Return(all, nil)

			svc := service.NewPatientService(backend, mock.NewMockQueueService(ctrl), logger.Nop())

			got, err := svc.Patients(context.Background(), tt.filter)
			require.NoError(t, err)

			ids := make([]string, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}
