package services

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/models"
)

// TokenVerifier resolves an access token to the username it was issued to.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Guard answers the per-request authorization questions. Every failure wraps
// common.ErrorUnauthorized (no usable identity) or common.ErrorForbidden
// (identity known but not allowed).
type Guard struct {
	tokens TokenVerifier
}

func NewGuard(tokens TokenVerifier) *Guard {
	return &Guard{tokens: tokens}
}

// Authenticate verifies token and returns the caller's username.
func (g *Guard) Authenticate(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("%w: missing token", common.ErrorUnauthorized)
	}
	username, err := g.tokens.Verify(token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}
	return username, nil
}

// RequireUser allows only the user named in the request path.
func (g *Guard) RequireUser(caller, username string) error {
	if caller != username {
		return fmt.Errorf("%w: only %s may do this", common.ErrorForbidden, username)
	}
	return nil
}

// RequireParticipant allows the sender or the recipient of m.
func (g *Guard) RequireParticipant(caller string, m *models.MessageDetail) error {
	if !m.IsParticipant(caller) {
		return fmt.Errorf("%w: cannot read this message", common.ErrorForbidden)
	}
	return nil
}

// RequireRecipient allows only the recipient of m.
func (g *Guard) RequireRecipient(caller string, m *models.MessageDetail) error {
	if !m.IsRecipient(caller) {
		return fmt.Errorf("%w: cannot set this message to read", common.ErrorForbidden)
	}
	return nil
}
