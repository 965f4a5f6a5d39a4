package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/verifynow/internal/client/client"
	"github.com/dmitrijs2005/verifynow/internal/client/config"
	"github.com/dmitrijs2005/verifynow/internal/client/models"
	"github.com/dmitrijs2005/verifynow/internal/client/services"
	"github.com/dmitrijs2005/verifynow/internal/logging"
)

// App is the interactive client: the session, the verifier and the history
// service wired to a line reader and an output writer.
type App struct {
	config   *config.Config
	db       *sql.DB
	log      logging.Logger
	session  *services.SessionManager
	verifier *services.Verifier
	history  *services.HistoryService
	reader   *bufio.Reader
	out      io.Writer
	now      func() time.Time

	mu          sync.Mutex
	lastHistory []models.HistoryRecord
	label       string
}

// NewApp opens the local store at c.DBPath and wires the services against the
// backend at c.BackendURL. Logs go to stderr; command output to stdout.
func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	log := logging.New(os.Stderr, c.LogLevel)

	db, err := client.InitDatabase(ctx, c.DBPath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DBPath, "error", err)
		return nil, err
	}

	api := client.NewHTTPClient(c.BackendURL, c.RequestTimeout, log)
	return newApp(c, db, api, log, bufio.NewReader(os.Stdin), os.Stdout), nil
}

func newApp(c *config.Config, db *sql.DB, api client.Client, log logging.Logger, reader *bufio.Reader, out io.Writer) *App {
	a := &App{config: c, db: db, log: log, reader: reader, out: out, now: time.Now}

	notify := services.NotifierFunc(func(title, description string) {
		fmt.Fprintf(a.out, "%s: %s\n", title, description)
	})
	a.session = services.NewSessionManager(api, db, log, notify)
	a.verifier = services.NewVerifier(api, a.session, log)
	a.history = services.NewHistoryService(api, a.session, log)

	a.updateLabel()
	a.session.Subscribe(a.updateLabel)
	return a
}

// Run restores the persisted session, starts the session watcher and blocks
// in the REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.db.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, "Welcome to VerifyNow. Type 'help' for the list of commands.")

	select {
	case <-a.session.Initialize(ctx):
	case <-ctx.Done():
		return
	}
	a.printSessionStatus()

	go a.StartSessionWatcher(ctx, a.config.SessionCheckInterval)

	runREPL(ctx, a, a.statusLabel, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

// updateLabel recomputes the prompt label; it runs on every session change.
func (a *App) updateLabel() {
	snap := a.session.Snapshot()
	label := "(guest)"
	switch {
	case snap.Loading:
		label = "(checking session)"
	case snap.IsAuthenticated():
		label = "(" + snap.User.Email + ")"
	}

	a.mu.Lock()
	a.label = label
	a.mu.Unlock()
}

func (a *App) statusLabel() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.label
}

func (a *App) printSessionStatus() {
	snap := a.session.Snapshot()
	if snap.IsAuthenticated() {
		fmt.Fprintf(a.out, "Signed in as %s <%s>\n", snap.User.Name, snap.User.Email)
		return
	}
	fmt.Fprintln(a.out, "You are not logged in. Type 'login' to sign in.")
}

// StartSessionWatcher re-validates an authenticated session every interval.
// A rejected or expired token ends the session. A non-positive interval
// disables the watcher.
func (a *App) StartSessionWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !a.session.IsAuthenticated() {
				continue
			}
			a.session.Refresh(ctx)
			if !a.session.IsAuthenticated() {
				fmt.Fprintln(a.out, "Your session has ended. Type 'login' to sign in again.")
			}

		case <-ctx.Done():
			return
		}
	}
}
