// Package cli provides the interactive Messagely command-line client.
//
// It wires configuration and the HTTP API client into a small REPL:
//   - register / login / logout
//   - profile / users: your account, everyone else
//   - inbox / outbox: your received and sent messages
//   - send: write a message
//   - show <id> / read <id>: open a message, mark it read
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
