package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	status() string
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Profile(ctx context.Context) error
	Users(ctx context.Context) error
	Inbox(ctx context.Context) error
	Outbox(ctx context.Context) error
	Send(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	Read(ctx context.Context, args []string) error
}

// runREPL reads one command per line from reader and dispatches it to a.
// Command errors are printed and the loop continues. The loop exits on EOF
// or when the user types "exit" or "quit".
//
//	Not logged in:  help, register, login, exit
//	Logged in:      help, profile, users, inbox, outbox, send, show <id>, read <id>, logout, exit
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader, w io.Writer) {
	for {
		printf(w, "msg %s> ", a.status())

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			printf(w, "\n")
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printf(w, "Available commands: users, inbox, outbox, send, show <id>, read <id>, logout, exit\n")
			} else {
				printf(w, "Available commands: register, login, exit\n")
			}

		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "profile":
			cmdErr = a.Profile(ctx)
		case "users":
			cmdErr = a.Users(ctx)
		case "inbox":
			cmdErr = a.Inbox(ctx)
		case "outbox":
			cmdErr = a.Outbox(ctx)
		case "send":
			cmdErr = a.Send(ctx)
		case "show":
			cmdErr = a.Show(ctx, args)
		case "read":
			cmdErr = a.Read(ctx, args)

		case "exit", "quit":
			printf(w, "Bye!\n")
			return

		default:
			printf(w, "Unknown command: %s\n", cmd)
		}

		if cmdErr != nil {
			printf(w, "Error: %v\n", cmdErr)
		}
	}
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
