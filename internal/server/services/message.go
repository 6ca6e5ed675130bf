package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/dbx"
	"github.com/dmitrijs2005/messagely/internal/models"
	"github.com/dmitrijs2005/messagely/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// MessageService is the message ledger: it stores messages, loads them with
// participant details and records read receipts. It does not check who is
// calling; that is the Guard's job.
type MessageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	newID       func() (uuid.UUID, error)
	now         func() time.Time
}

// NewMessageService constructs a MessageService. Message ids are UUIDv7 so
// they sort in creation order.
func NewMessageService(db *sql.DB, m repomanager.RepositoryManager) *MessageService {
	return &MessageService{
		db:          db,
		repomanager: m,
		newID:       uuid.NewV7,
		now:         time.Now,
	}
}

// Create stores a message from one user to another. A blank body yields
// common.ErrorValidation; an unknown sender or recipient yields
// common.ErrorNotFound.
func (s *MessageService) Create(ctx context.Context, from, to, body string) (*models.Message, error) {
	if common.IsBlank(body) {
		return nil, fmt.Errorf("%w: message body is empty", common.ErrorValidation)
	}
	if common.IsBlank(to) {
		return nil, fmt.Errorf("%w: recipient is empty", common.ErrorValidation)
	}

	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	msg := &models.Message{
		ID:           id,
		FromUsername: from,
		ToUsername:   to,
		Body:         body,
		SentAt:       s.now().UTC(),
	}

	m, err := s.repomanager.Messages(s.db).Create(ctx, msg)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating message: %w", err)
	}
	return m, nil
}

// Get loads a message with both participants' display info.
func (s *MessageService) Get(ctx context.Context, id uuid.UUID) (*models.MessageDetail, error) {
	m, err := s.repomanager.Messages(s.db).Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error loading message: %w", err)
	}
	return m, nil
}

// MarkRead records that the message was read. The first call sets read_at;
// later calls return the original receipt unchanged.
func (s *MessageService) MarkRead(ctx context.Context, id uuid.UUID) (*models.ReadReceipt, error) {
	var receipt *models.ReadReceipt

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		receipt, err = s.repomanager.Messages(tx).MarkRead(ctx, id, s.now().UTC())
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error marking message read: %w", err)
	}
	return receipt, nil
}
