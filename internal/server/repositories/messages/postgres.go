package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/dbx"
	"github.com/dmitrijs2005/messagely/internal/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create stores msg. If either participant does not exist nothing is stored
// and common.ErrorNotFound is returned.
func (r *PostgresRepository) Create(ctx context.Context, msg *models.Message) (*models.Message, error) {
	query :=
		`INSERT INTO messages (id, from_username, to_username, body, sent_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING sent_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		msg.ID, msg.FromUsername, msg.ToUsername, msg.Body, msg.SentAt).Scan(&msg.SentAt)

	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return msg, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*models.MessageDetail, error) {
	query :=
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        f.username, f.first_name, f.last_name, f.phone,
		        t.username, t.first_name, t.last_name, t.phone
		 FROM messages AS m
		 JOIN users AS f ON f.username = m.from_username
		 JOIN users AS t ON t.username = m.to_username
		 WHERE m.id = $1
		 `

	d := &models.MessageDetail{}
	var readAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.Body, &d.SentAt, &readAt,
		&d.FromUser.Username, &d.FromUser.FirstName, &d.FromUser.LastName, &d.FromUser.Phone,
		&d.ToUser.Username, &d.ToUser.FirstName, &d.ToUser.LastName, &d.ToUser.Phone)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	d.ReadAt = nullTimePtr(readAt)

	return d, nil
}

// MarkRead sets read_at to at unless it is already set, and returns the
// stored receipt either way. Callers that need the two statements to see the
// same row run it inside dbx.WithTx.
func (r *PostgresRepository) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) (*models.ReadReceipt, error) {
	update :=
		`UPDATE messages SET read_at = $2
		 WHERE id = $1 AND read_at IS NULL
		 RETURNING id, read_at
		 `

	rr := &models.ReadReceipt{}
	err := r.db.QueryRowContext(ctx, update, id, at).Scan(&rr.ID, &rr.ReadAt)
	if err == nil {
		return rr, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("db error: %w", err)
	}

	// Either the message is missing or it was read before.
	existing :=
		`SELECT id, read_at FROM messages
		 WHERE id = $1
		 `

	var readAt sql.NullTime
	err = r.db.QueryRowContext(ctx, existing, id).Scan(&rr.ID, &readAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if !readAt.Valid {
		return nil, fmt.Errorf("db error: message %s still unread after update", id)
	}
	rr.ReadAt = readAt.Time

	return rr, nil
}

// ListSentBy returns the messages username sent, oldest first, each with the
// recipient's display fields.
func (r *PostgresRepository) ListSentBy(ctx context.Context, username string) ([]models.SentMessage, error) {
	query :=
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        u.username, u.first_name, u.last_name, u.phone
		 FROM messages AS m
		 JOIN users AS u ON u.username = m.to_username
		 WHERE m.from_username = $1
		 ORDER BY m.sent_at, m.id
		 `

	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.SentMessage, 0)
	for rows.Next() {
		var m models.SentMessage
		var readAt sql.NullTime
		if err := rows.Scan(&m.ID, &m.Body, &m.SentAt, &readAt,
			&m.ToUser.Username, &m.ToUser.FirstName, &m.ToUser.LastName, &m.ToUser.Phone); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		m.ReadAt = nullTimePtr(readAt)
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// ListReceivedBy returns the messages sent to username, oldest first, each
// with the sender's display fields.
func (r *PostgresRepository) ListReceivedBy(ctx context.Context, username string) ([]models.ReceivedMessage, error) {
	query :=
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        u.username, u.first_name, u.last_name, u.phone
		 FROM messages AS m
		 JOIN users AS u ON u.username = m.from_username
		 WHERE m.to_username = $1
		 ORDER BY m.sent_at, m.id
		 `

	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.ReceivedMessage, 0)
	for rows.Next() {
		var m models.ReceivedMessage
		var readAt sql.NullTime
		if err := rows.Scan(&m.ID, &m.Body, &m.SentAt, &readAt,
			&m.FromUser.Username, &m.FromUser.FirstName, &m.FromUser.LastName, &m.FromUser.Phone); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		m.ReadAt = nullTimePtr(readAt)
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
