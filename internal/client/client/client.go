package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/messagely/internal/api"
	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/models"
	"github.com/google/uuid"
)

// Client is the API surface the CLI needs.
type Client interface {
	Register(ctx context.Context, req api.RegisterRequest) error
	Login(ctx context.Context, username, password string) error
	Logout()
	LoggedIn() bool

	Users(ctx context.Context) ([]models.UserSummary, error)
	User(ctx context.Context, username string) (*models.User, error)
	Inbox(ctx context.Context, username string) ([]models.ReceivedMessage, error)
	Outbox(ctx context.Context, username string) ([]models.SentMessage, error)
	Send(ctx context.Context, to, body string) (*models.Message, error)
	Message(ctx context.Context, id uuid.UUID) (*models.MessageDetail, error)
	MarkRead(ctx context.Context, id uuid.UUID) (*models.ReadReceipt, error)
}

type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Register(ctx context.Context, req api.RegisterRequest) error {
	var out api.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &out, false); err != nil {
		return err
	}
	c.setToken(out.Token)
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) error {
	var out api.TokenResponse
	req := api.LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &out, false); err != nil {
		return err
	}
	c.setToken(out.Token)
	return nil
}

func (c *HTTPClient) Logout() {
	c.setToken("")
}

func (c *HTTPClient) LoggedIn() bool {
	return c.getToken() != ""
}

func (c *HTTPClient) Users(ctx context.Context) ([]models.UserSummary, error) {
	var out api.UsersResponse
	if err := c.do(ctx, http.MethodGet, "/users", nil, &out, true); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (c *HTTPClient) User(ctx context.Context, username string) (*models.User, error) {
	var out api.UserResponse
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(username), nil, &out, true); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *HTTPClient) Inbox(ctx context.Context, username string) ([]models.ReceivedMessage, error) {
	var out api.ReceivedMessagesResponse
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(username)+"/to", nil, &out, true); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (c *HTTPClient) Outbox(ctx context.Context, username string) ([]models.SentMessage, error) {
	var out api.SentMessagesResponse
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(username)+"/from", nil, &out, true); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (c *HTTPClient) Send(ctx context.Context, to, body string) (*models.Message, error) {
	var out api.CreatedMessageResponse
	req := api.SendMessageRequest{ToUsername: to, Body: body}
	if err := c.do(ctx, http.MethodPost, "/messages", req, &out, true); err != nil {
		return nil, err
	}
	return out.Message, nil
}

func (c *HTTPClient) Message(ctx context.Context, id uuid.UUID) (*models.MessageDetail, error) {
	var out api.MessageDetailResponse
	if err := c.do(ctx, http.MethodGet, "/messages/"+id.String(), nil, &out, true); err != nil {
		return nil, err
	}
	return out.Message, nil
}

func (c *HTTPClient) MarkRead(ctx context.Context, id uuid.UUID) (*models.ReadReceipt, error) {
	var out api.ReadReceiptResponse
	if err := c.do(ctx, http.MethodPost, "/messages/"+id.String()+"/read", nil, &out, true); err != nil {
		return nil, err
	}
	return out.Message, nil
}

// --- helpers below ---

func (c *HTTPClient) setToken(t string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = t
}

func (c *HTTPClient) getToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do sends one JSON request and decodes a 2xx body into out.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any, authed bool) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())

	if authed {
		token := c.getToken()
		if token == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var envelope api.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || envelope.Error.Message == "" {
		return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return &APIError{Status: resp.StatusCode, Message: envelope.Error.Message}
}
