package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/messagely/internal/api"
	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/logging"
	"github.com/dmitrijs2005/messagely/internal/models"
	"github.com/dmitrijs2005/messagely/internal/server/auth"
	"github.com/dmitrijs2005/messagely/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "httpapi_test_secret"
	testIssuer = "messagely"
)

var (
	sentAt = time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)

	aliceSummary = models.UserSummary{Username: "alice", FirstName: "Alice", LastName: "A", Phone: "1"}
	bobSummary   = models.UserSummary{Username: "bob", FirstName: "Bob", LastName: "B", Phone: "2"}

	// alice → bob
	testMsgID = uuid.MustParse("0190a8f2-0000-7000-8000-0000000000aa")
)

type fakeUsers struct {
	loginErr    error
	registerErr error
	registered  *models.Registration

	all    []models.UserSummary
	allErr error

	users map[string]*models.User

	sent     []models.SentMessage
	received []models.ReceivedMessage

	lastCtx context.Context
}

func (f *fakeUsers) Login(ctx context.Context, username, password string) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return "token-" + username, nil
}

func (f *fakeUsers) RegisterAndLogin(ctx context.Context, reg models.Registration) (string, error) {
	f.registered = &reg
	if f.registerErr != nil {
		return "", f.registerErr
	}
	return "token-" + reg.Username, nil
}

func (f *fakeUsers) All(ctx context.Context) ([]models.UserSummary, error) {
	f.lastCtx = ctx
	return f.all, f.allErr
}

func (f *fakeUsers) Get(ctx context.Context, username string) (*models.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsers) MessagesFrom(ctx context.Context, username string) ([]models.SentMessage, error) {
	if _, ok := f.users[username]; !ok {
		return nil, common.ErrorNotFound
	}
	return f.sent, nil
}

func (f *fakeUsers) MessagesTo(ctx context.Context, username string) ([]models.ReceivedMessage, error) {
	if _, ok := f.users[username]; !ok {
		return nil, common.ErrorNotFound
	}
	return f.received, nil
}

type fakeMessages struct {
	created   *models.Message
	createErr error

	detail *models.MessageDetail
	getErr error

	markCalls int
	markErr   error
}

func (f *fakeMessages) Create(ctx context.Context, from, to, body string) (*models.Message, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = &models.Message{ID: testMsgID, FromUsername: from, ToUsername: to, Body: body, SentAt: sentAt}
	return f.created, nil
}

func (f *fakeMessages) Get(ctx context.Context, id uuid.UUID) (*models.MessageDetail, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.detail == nil || f.detail.ID != id {
		return nil, common.ErrorNotFound
	}
	return f.detail, nil
}

func (f *fakeMessages) MarkRead(ctx context.Context, id uuid.UUID) (*models.ReadReceipt, error) {
	f.markCalls++
	if f.markErr != nil {
		return nil, f.markErr
	}
	return &models.ReadReceipt{ID: id, ReadAt: sentAt.Add(time.Minute)}, nil
}

type testEnv struct {
	srv      *Server
	users    *fakeUsers
	messages *fakeMessages
	tokens   *auth.TokenIssuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewTokenIssuer([]byte(testSecret), testIssuer, time.Hour)
	require.NoError(t, err)

	us := &fakeUsers{
		all:      []models.UserSummary{aliceSummary, bobSummary},
		received: []models.ReceivedMessage{},
		users: map[string]*models.User{
			"alice": {Username: "alice", PasswordHash: "$2a$secret", FirstName: "Alice", LastName: "A", Phone: "1", JoinAt: sentAt, LastLoginAt: sentAt},
			"bob":   {Username: "bob", PasswordHash: "$2a$secret", FirstName: "Bob", LastName: "B", Phone: "2", JoinAt: sentAt, LastLoginAt: sentAt},
		},
	}
	ms := &fakeMessages{
		detail: &models.MessageDetail{ID: testMsgID, Body: "hi bob", SentAt: sentAt, FromUser: aliceSummary, ToUser: bobSummary},
	}

	srv := NewServer(Options{RequestTimeout: 5 * time.Second, ShutdownTimeout: time.Second},
		logging.Discard(), us, ms, services.NewGuard(tokens))

	return &testEnv{srv: srv, users: us, messages: ms, tokens: tokens}
}

func (e *testEnv) token(t *testing.T, username string) string {
	t.Helper()
	tok, err := e.tokens.Issue(username)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}

	resp := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(resp, req)
	return resp
}

func (e *testEnv) doWithHeader(t *testing.T, method, path, key, value string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(key, value)

	resp := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(resp, req)
	return resp
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out), resp.Body.String())
	return out
}

func mustError(t *testing.T, resp *httptest.ResponseRecorder, status int) api.ErrorBody {
	t.Helper()
	require.Equal(t, status, resp.Code, resp.Body.String())
	out := decode[api.ErrorResponse](t, resp)
	require.Equal(t, status, out.Error.Status)
	require.NotEmpty(t, out.Error.Message)
	return out.Error
}
