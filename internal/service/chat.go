package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/matricare/go-carelink/internal/adapter"
	"github.com/matricare/go-carelink/internal/logger"
	"github.com/matricare/go-carelink/models"
)

type chatService struct {
	adapter adapter.BackendAdapter
	queue   QueueService
	logger  *logger.Logger
}

func NewChatService(backend adapter.BackendAdapter, queue QueueService, log *logger.Logger) ChatService {
	return &chatService{adapter: backend, queue: queue, logger: log}
}

// Send delivers a chat message directly when possible. A queued message
// yields no assistant reply; the answer arrives after replay through
// whatever channel the caller polls.
func (c *chatService) Send(ctx context.Context, msg models.ChatMessage) (SubmitResult, error) {
	op, err := models.NewPendingOperation(models.KindChatMessage, msg)
	if err != nil {
		return SubmitResult{}, err
	}

	reply, err := c.adapter.SendChatMessage(ctx, op)
	if err == nil {
		return SubmitResult{Operation: op, Reply: &reply}, nil
	}
	if !errors.Is(err, adapter.ErrBackendUnreachable) {
		return SubmitResult{}, err
	}

	c.logger.Info().
		Str("operation_id", op.ID).
		Str("conversation_id", msg.ConversationID).
		Msg("backend unreachable, queueing chat message")

	if qErr := c.queue.EnqueueOperation(ctx, op); qErr != nil {
		return SubmitResult{}, fmt.Errorf("queue chat message after delivery failure: %w", errors.Join(qErr, err))
	}
	return SubmitResult{Operation: op, Queued: true}, nil
}
