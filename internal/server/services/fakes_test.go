package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/dbx"
	"github.com/dmitrijs2005/messagely/internal/models"
	messagesrepo "github.com/dmitrijs2005/messagely/internal/server/repositories/messages"
	usersrepo "github.com/dmitrijs2005/messagely/internal/server/repositories/users"
	"github.com/google/uuid"
)

// --- helpers ---

var errBoom = errors.New("boom")

var fixedNow = time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// fakeUsersRepo keeps users in a map so tests can observe writes.
type fakeUsersRepo struct {
	users map[string]*models.User

	createErr error
	getErr    error
	existsErr error
	updateErr error
	listErr   error

	lastLoginSet map[string]time.Time
}

func newFakeUsersRepo(users ...*models.User) *fakeUsersRepo {
	f := &fakeUsersRepo{users: map[string]*models.User{}, lastLoginSet: map[string]time.Time{}}
	for _, u := range users {
		f.users[u.Username] = u
	}
	return f
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.users[u.Username]; ok {
		return nil, common.ErrorConflict
	}
	cp := *u
	f.users[u.Username] = &cp
	return u, nil
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) Exists(ctx context.Context, username string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.users[username]
	return ok, nil
}

func (f *fakeUsersRepo) UpdateLastLogin(ctx context.Context, username string, at time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	u, ok := f.users[username]
	if !ok {
		return common.ErrorNotFound
	}
	u.LastLoginAt = at
	f.lastLoginSet[username] = at
	return nil
}

func (f *fakeUsersRepo) List(ctx context.Context) ([]models.UserSummary, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.UserSummary, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u.Summary())
	}
	return out, nil
}

type fakeMessagesRepo struct {
	createOut *models.Message
	createErr error
	created   *models.Message

	getOut *models.MessageDetail
	getErr error

	markOut *models.ReadReceipt
	markErr error
	markAt  time.Time

	sent     []models.SentMessage
	received []models.ReceivedMessage
	listErr  error
}

func (f *fakeMessagesRepo) Create(ctx context.Context, m *models.Message) (*models.Message, error) {
	f.created = m
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return m, nil
}

func (f *fakeMessagesRepo) Get(ctx context.Context, id uuid.UUID) (*models.MessageDetail, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeMessagesRepo) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) (*models.ReadReceipt, error) {
	f.markAt = at
	if f.markErr != nil {
		return nil, f.markErr
	}
	return f.markOut, nil
}

func (f *fakeMessagesRepo) ListSentBy(ctx context.Context, username string) ([]models.SentMessage, error) {
	return f.sent, f.listErr
}

func (f *fakeMessagesRepo) ListReceivedBy(ctx context.Context, username string) ([]models.ReceivedMessage, error) {
	return f.received, f.listErr
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	m *fakeMessagesRepo
}

func (rm *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (rm *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return rm.u }
func (rm *fakeRepoManager) Messages(db dbx.DBTX) messagesrepo.Repository { return rm.m }

// fakeHasher "hashes" by prefixing, so tests stay fast and deterministic.
type fakeHasher struct {
	hashErr    error
	compareErr error
}

func (h *fakeHasher) Hash(pw string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + pw, nil
}

func (h *fakeHasher) Compare(hash, pw string) (bool, error) {
	if h.compareErr != nil {
		return false, h.compareErr
	}
	return hash == "hashed:"+pw, nil
}

type fakeTokens struct {
	issueErr error
	verify   map[string]string
	verErr   error
}

func (f *fakeTokens) Issue(username string) (string, error) {
	if f.issueErr != nil {
		return "", f.issueErr
	}
	return "token-for-" + username, nil
}

func (f *fakeTokens) Verify(token string) (string, error) {
	if f.verErr != nil {
		return "", f.verErr
	}
	u, ok := f.verify[token]
	if !ok {
		return "", common.ErrInvalidToken
	}
	return u, nil
}
