package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Refresh(ctx context.Context) error
	VerifyText(ctx context.Context, args []string) error
	VerifyLink(ctx context.Context, args []string) error
	VerifyImage(ctx context.Context, args []string) error
	VerifyVideo(ctx context.Context, args []string) error
	History(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
}

// runREPL starts a simple read–eval–print loop for the VerifyNow CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a' with the remaining tokens as arguments.
// Unknown commands are reported back to the user. The loop exits on EOF,
// when ctx is done, or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current session status (from statusFn):
//
//	Not logged in:
//	  - help          : show available commands
//	  - login         : sign in with a Google ID token
//	  - exit | quit   : leave the program
//
//	Logged in:
//	  - help          : show available commands
//	  - text [content]: verify a piece of text (prompts when omitted)
//	  - link [url]    : verify a link
//	  - image [path]  : verify an image file
//	  - video [url]   : video verification (not supported yet)
//	  - history [n]   : list the last n verifications
//	  - show <n>      : show entry n of the last history listing
//	  - whoami        : show the session owner
//	  - refresh       : re-validate the session
//	  - logout        : log out
//	  - exit | quit   : leave the program
//
// Any errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("vn %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: text, link, image, video, history, show <n>, whoami, refresh, logout, exit")
			} else {
				printlnFn("Available commands: login, whoami, refresh, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "text":
			_ = a.VerifyText(ctx, args)

		case "link":
			_ = a.VerifyLink(ctx, args)

		case "image":
			_ = a.VerifyImage(ctx, args)

		case "video":
			_ = a.VerifyVideo(ctx, args)

		case "history":
			_ = a.History(ctx, args)

		case "show":
			if len(args) == 0 {
				printlnFn("Usage: show <n>")
				continue
			}
			_ = a.Show(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
