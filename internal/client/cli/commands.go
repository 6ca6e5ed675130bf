package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/messagely/internal/api"
	"github.com/dmitrijs2005/messagely/internal/client/client"
	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/google/uuid"
)

const timeLayout = "2006-01-02 15:04"

// Register prompts for the account fields and creates the account. On
// success the session is logged in as the new user.
func (a *App) Register(ctx context.Context) error {
	var req api.RegisterRequest
	var err error

	if req.Username, err = GetSimpleText(a.reader, "Enter username", a.out); err != nil {
		return err
	}
	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	req.Password = string(password)

	if req.FirstName, err = GetSimpleText(a.reader, "Enter first name", a.out); err != nil {
		return err
	}
	if req.LastName, err = GetSimpleText(a.reader, "Enter last name", a.out); err != nil {
		return err
	}
	if req.Phone, err = GetSimpleText(a.reader, "Enter phone", a.out); err != nil {
		return err
	}

	if err := a.client.Register(ctx, req); err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return fmt.Errorf("username %q is taken", req.Username)
		}
		return err
	}

	a.userName = req.Username
	printf(a.out, "Welcome, %s!\n", req.Username)
	return nil
}

// Login prompts for credentials and starts a session.
func (a *App) Login(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.client.Login(ctx, userName, string(password)); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return errors.New("invalid username or password")
		}
		return err
	}

	a.userName = userName
	printf(a.out, "Logged in as %s\n", userName)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.client.Logout()
	a.userName = ""
	printf(a.out, "Logged out\n")
	return nil
}

// Profile prints the logged-in user's own account record.
func (a *App) Profile(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	u, err := a.client.User(ctx, a.userName)
	if err != nil {
		return err
	}
	printf(a.out, "Username:   %s\n", u.Username)
	printf(a.out, "Name:       %s %s\n", u.FirstName, u.LastName)
	printf(a.out, "Phone:      %s\n", u.Phone)
	printf(a.out, "Joined:     %s\n", u.JoinAt.Local().Format(timeLayout))
	if !u.LastLoginAt.IsZero() {
		printf(a.out, "Last login: %s\n", u.LastLoginAt.Local().Format(timeLayout))
	}
	return nil
}

func (a *App) Users(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	users, err := a.client.Users(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		printf(a.out, "%-16s %s %s  %s\n", u.Username, u.FirstName, u.LastName, u.Phone)
	}
	return nil
}

func (a *App) Inbox(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	msgs, err := a.client.Inbox(ctx, a.userName)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		printf(a.out, "Inbox is empty\n")
		return nil
	}
	for _, m := range msgs {
		printf(a.out, "%s %s  from %-12s %s\n", m.ID, readMark(m.ReadAt), m.FromUser.Username, preview(m.Body))
	}
	return nil
}

func (a *App) Outbox(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	msgs, err := a.client.Outbox(ctx, a.userName)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		printf(a.out, "Outbox is empty\n")
		return nil
	}
	for _, m := range msgs {
		printf(a.out, "%s %s  to   %-12s %s\n", m.ID, readMark(m.ReadAt), m.ToUser.Username, preview(m.Body))
	}
	return nil
}

// Send prompts for a recipient and a multi-line body.
func (a *App) Send(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	to, err := GetSimpleText(a.reader, "To (username)", a.out)
	if err != nil {
		return err
	}
	body, err := GetMultiline(a.reader, "Message", a.out)
	if err != nil {
		return err
	}
	if common.IsBlank(body) {
		return errors.New("message is empty, not sent")
	}

	m, err := a.client.Send(ctx, to, body)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("no such user %q", to)
		}
		return err
	}
	printf(a.out, "Sent %s\n", m.ID)
	return nil
}

// Show prints one message in full.
func (a *App) Show(ctx context.Context, args []string) error {
	id, err := a.messageArg("show", args)
	if err != nil {
		return err
	}
	m, err := a.client.Message(ctx, id)
	if err != nil {
		return err
	}

	printf(a.out, "From: %s %s (%s)\n", m.FromUser.FirstName, m.FromUser.LastName, m.FromUser.Username)
	printf(a.out, "To:   %s %s (%s)\n", m.ToUser.FirstName, m.ToUser.LastName, m.ToUser.Username)
	printf(a.out, "Sent: %s\n", m.SentAt.Local().Format(timeLayout))
	if m.ReadAt != nil {
		printf(a.out, "Read: %s\n", m.ReadAt.Local().Format(timeLayout))
	}
	printf(a.out, "\n%s\n", m.Body)
	return nil
}

// Read marks a received message as read.
func (a *App) Read(ctx context.Context, args []string) error {
	id, err := a.messageArg("read", args)
	if err != nil {
		return err
	}
	rr, err := a.client.MarkRead(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorForbidden) {
			return errors.New("only the recipient can mark a message read")
		}
		return err
	}
	printf(a.out, "Marked read at %s\n", rr.ReadAt.Local().Format(timeLayout))
	return nil
}

// --- helpers below ---

func (a *App) requireLogin() error {
	if !a.isLoggedIn() {
		return client.ErrNotLoggedIn
	}
	return nil
}

func (a *App) messageArg(cmd string, args []string) (uuid.UUID, error) {
	if err := a.requireLogin(); err != nil {
		return uuid.Nil, err
	}
	if len(args) != 1 {
		return uuid.Nil, fmt.Errorf("usage: %s <id>", cmd)
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid message id %q", args[0])
	}
	return id, nil
}

func readMark(readAt *time.Time) string {
	if readAt == nil {
		return "*"
	}
	return " "
}

func preview(body string) string {
	line, _, _ := strings.Cut(body, "\n")
	const maxPreview = 40
	if r := []rune(line); len(r) > maxPreview {
		return string(r[:maxPreview-1]) + "…"
	}
	return line
}
