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

func TestChatService_SendDirectReturnsReply(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mock.NewMockBackendAdapter(ctrl)
	queue := mock.NewMockQueueService(ctrl)

	reply := models.ChatReply{ConversationID: "conv-1", Text: "Mild cramping is common.", CreatedAt: time.Now()}
	backend.EXPECT().
		SendChatMessage(gomock.Any(), gomock.Any()).
		Return(reply, nil)

	svc := service.NewChatService(backend, queue, logger.Nop())

	result, err := svc.Send(context.Background(), models.ChatMessage{
		ConversationID: "conv-1",
		Text:           "is this cramping normal?",
		SenderID:       "user-1",
	})

	require.NoError(t, err)
	assert.False(t, result.Queued)
	require.NotNil(t, result.Reply)
	assert.Equal(t, reply, *result.Reply)
}

func TestChatService_SendQueuesWhenUnreachable(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mock.NewMockBackendAdapter(ctrl)
	queue := mock.NewMockQueueService(ctrl)

	backend.EXPECT().
		SendChatMessage(gomock.Any(), gomock.Any()).
		Return(models.ChatReply{}, adapter.ErrBackendUnreachable)
	queue.EXPECT().
		EnqueueOperation(gomock.Any(), gomock.Any()).
		Return(nil)

	svc := service.NewChatService(backend, queue, logger.Nop())

	result, err := svc.Send(context.Background(), models.ChatMessage{ConversationID: "conv-1", Text: "hello", SenderID: "user-1"})

	require.NoError(t, err)
	assert.True(t, result.Queued)
	// A queued message has no reply yet.
	assert.Nil(t, result.Reply)
}

func TestChatService_ServerErrorSurfacesWithoutQueueing(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mock.NewMockBackendAdapter(ctrl)
	queue := mock.NewMockQueueService(ctrl)

	backend.EXPECT().
		SendChatMessage(gomock.Any(), gomock.Any()).
		Return(models.ChatReply{}, adapter.ErrServerUnavailable)

	svc := service.NewChatService(backend, queue, logger.Nop())

	result, err := svc.Send(context.Background(), models.ChatMessage{ConversationID: "conv-1", Text: "hello", SenderID: "user-1"})

	require.Error(t, err)
	assert.ErrorIs(t, err, adapter.ErrServerUnavailable)
	assert.False(t, result.Queued)
}

func TestChatService_ValidationFailureSurfaces(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mock.NewMockBackendAdapter(ctrl)
	queue := mock.NewMockQueueService(ctrl)

	backend.EXPECT().
		SendChatMessage(gomock.Any(), gomock.Any()).
		Return(models.ChatReply{}, adapter.ErrValidation)

	svc := service.NewChatService(backend, queue, logger.Nop())

	_, err := svc.Send(context.Background(), models.ChatMessage{ConversationID: "conv-1", SenderID: "user-1"})

	require.Error(t, err)
	assert.ErrorIs(t, err, adapter.ErrValidation)
}
