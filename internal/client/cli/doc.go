// Package cli provides the interactive userkeeper command-line client.
//
// It wires configuration, the REST client and an interactive prompt. Typical
// flow: check the server health endpoint, then read commands until the user
// exits.
//
// Commands:
//   - register / login / logout
//   - me / passwd (require login)
//   - list [page] [size] / show <id> / update <id> / delete <id>
//
// Passwords are read without echo. The prompt is started via App.Run(ctx),
// which blocks until the user exits. See runREPL for the dispatch loop.
package cli
