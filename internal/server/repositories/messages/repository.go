package messages

import (
	"context"
	"time"

	"github.com/dmitrijs2005/messagely/internal/models"
	"github.com/google/uuid"
)

// Repository persists messages and answers the per-user mailbox queries.
type Repository interface {
	Create(ctx context.Context, msg *models.Message) (*models.Message, error)
	Get(ctx context.Context, id uuid.UUID) (*models.MessageDetail, error)
	MarkRead(ctx context.Context, id uuid.UUID, at time.Time) (*models.ReadReceipt, error)
	ListSentBy(ctx context.Context, username string) ([]models.SentMessage, error)
	ListReceivedBy(ctx context.Context, username string) ([]models.ReceivedMessage, error)
}
