// Package httpapi serves the public JSON API over gin.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/messagely/internal/logging"
	"github.com/dmitrijs2005/messagely/internal/models"
	"github.com/google/uuid"
)

// Users is the account and directory side of the API.
type Users interface {
	Login(ctx context.Context, username, password string) (string, error)
	RegisterAndLogin(ctx context.Context, reg models.Registration) (string, error)
	All(ctx context.Context) ([]models.UserSummary, error)
	Get(ctx context.Context, username string) (*models.User, error)
	MessagesFrom(ctx context.Context, username string) ([]models.SentMessage, error)
	MessagesTo(ctx context.Context, username string) ([]models.ReceivedMessage, error)
}

// Messages is the message ledger side of the API.
type Messages interface {
	Create(ctx context.Context, from, to, body string) (*models.Message, error)
	Get(ctx context.Context, id uuid.UUID) (*models.MessageDetail, error)
	MarkRead(ctx context.Context, id uuid.UUID) (*models.ReadReceipt, error)
}

// Authorizer answers who is calling and what they may do.
type Authorizer interface {
	Authenticate(token string) (string, error)
	RequireUser(caller, username string) error
	RequireParticipant(caller string, m *models.MessageDetail) error
	RequireRecipient(caller string, m *models.MessageDetail) error
}

// Options tunes the HTTP server.
type Options struct {
	Address         string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	opts     Options
	logger   logging.Logger
	users    Users
	messages Messages
	guard    Authorizer
	handler  http.Handler
}

func NewServer(opts Options, l logging.Logger, us Users, ms Messages, guard Authorizer) *Server {
	s := &Server{
		opts:     opts,
		logger:   l.With("module", "http_server"),
		users:    us,
		messages: ms,
		guard:    guard,
	}
	s.handler = s.routes()
	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully within ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Address, err)
	}
	return s.serve(ctx, listen)
}

func (s *Server) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-stopped
}
