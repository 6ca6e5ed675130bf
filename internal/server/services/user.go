// Package services contains server-side business logic. This file implements
// UserService: the credential store (registration, password checks, login
// timestamps) and the user directory (listing users and their mailboxes).
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/models"
	"github.com/dmitrijs2005/messagely/internal/server/repositories/repomanager"
)

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

// TokenIssuer mints access tokens for a username.
type TokenIssuer interface {
	Issue(username string) (string, error)
}

// UserService provides account and directory operations:
//   - Register / Authenticate / UpdateLoginTimestamp: the credential store
//   - Login / RegisterAndLogin: the above plus a freshly issued token
//   - All / Get / MessagesFrom / MessagesTo: the user directory
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	tokens      TokenIssuer
	now         func() time.Time
}

// NewUserService constructs a UserService.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher PasswordHasher, tokens TokenIssuer) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		now:         time.Now,
	}
}

// Register hashes the password and stores a new account. join_at and
// last_login_at both start at the current time. A taken username yields
// common.ErrorConflict; a blank field yields common.ErrorValidation.
func (s *UserService) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	if err := validateRegistration(reg); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &models.User{
		Username:     reg.Username,
		PasswordHash: hash,
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		Phone:        reg.Phone,
		JoinAt:       now,
		LastLoginAt:  now,
	}

	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Authenticate reports whether password matches the stored hash for
// username. An unknown username yields common.ErrorNotFound.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, err
		}
		return false, fmt.Errorf("error loading user: %w", err)
	}

	ok, err := s.hasher.Compare(user.PasswordHash, password)
	if err != nil {
		return false, fmt.Errorf("error checking password: %w", err)
	}
	return ok, nil
}

// UpdateLoginTimestamp sets the user's last_login_at to now.
func (s *UserService) UpdateLoginTimestamp(ctx context.Context, username string) error {
	err := s.repomanager.Users(s.db).UpdateLastLogin(ctx, username, s.now().UTC())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("error updating last login: %w", err)
	}
	return nil
}

// Login checks credentials, records the login and returns an access token.
// Unknown users and wrong passwords both yield common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	ok, err := s.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", err
	}
	if !ok {
		return "", common.ErrorUnauthorized
	}

	if err := s.UpdateLoginTimestamp(ctx, username); err != nil {
		return "", err
	}
	return s.issue(username)
}

// RegisterAndLogin registers a new account and returns an access token for it.
func (s *UserService) RegisterAndLogin(ctx context.Context, reg models.Registration) (string, error) {
	u, err := s.Register(ctx, reg)
	if err != nil {
		return "", err
	}
	return s.issue(u.Username)
}

// All lists every user ordered by username.
func (s *UserService) All(ctx context.Context) ([]models.UserSummary, error) {
	users, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return users, nil
}

// Get returns the full record for username.
func (s *UserService) Get(ctx context.Context, username string) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return u, nil
}

// MessagesFrom lists messages sent by username, oldest first.
func (s *UserService) MessagesFrom(ctx context.Context, username string) ([]models.SentMessage, error) {
	if err := s.mustExist(ctx, username); err != nil {
		return nil, err
	}
	msgs, err := s.repomanager.Messages(s.db).ListSentBy(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("error listing sent messages: %w", err)
	}
	return msgs, nil
}

// MessagesTo lists messages received by username, oldest first.
func (s *UserService) MessagesTo(ctx context.Context, username string) ([]models.ReceivedMessage, error) {
	if err := s.mustExist(ctx, username); err != nil {
		return nil, err
	}
	msgs, err := s.repomanager.Messages(s.db).ListReceivedBy(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("error listing received messages: %w", err)
	}
	return msgs, nil
}

// --- helpers below ---

func (s *UserService) issue(username string) (string, error) {
	token, err := s.tokens.Issue(username)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return token, nil
}

func (s *UserService) mustExist(ctx context.Context, username string) error {
	ok, err := s.repomanager.Users(s.db).Exists(ctx, username)
	if err != nil {
		return fmt.Errorf("error checking user: %w", err)
	}
	if !ok {
		return common.ErrorNotFound
	}
	return nil
}

func validateRegistration(reg models.Registration) error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"username", reg.Username},
		{"password", reg.Password},
		{"first_name", reg.FirstName},
		{"last_name", reg.LastName},
		{"phone", reg.Phone},
	} {
		if common.IsBlank(f.value) {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", common.ErrorValidation, missing)
	}
	return nil
}
