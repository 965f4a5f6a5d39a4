package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/verifynow/internal/client/client"
	"github.com/dmitrijs2005/verifynow/internal/client/display"
	"github.com/dmitrijs2005/verifynow/internal/client/models"
	"github.com/dmitrijs2005/verifynow/internal/client/services"
	"github.com/dmitrijs2005/verifynow/internal/common"
	"github.com/dmitrijs2005/verifynow/internal/filex"
)

var errNoHistory = errors.New("no history listing")

// Login asks for a Google ID token without echo and exchanges it for a
// session.
func (a *App) Login(ctx context.Context) error {
	if a.session.IsAuthenticated() {
		fmt.Fprintln(a.out, "Already logged in. Use 'logout' first to switch accounts.")
		return nil
	}

	idToken, err := GetSecret("Google ID token", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error reading token:", err)
		return err
	}
	defer common.WipeByteArray(idToken)

	if len(idToken) == 0 {
		fmt.Fprintln(a.out, "Login cancelled.")
		return nil
	}

	if err := a.session.LoginWithGoogle(ctx, strings.TrimSpace(string(idToken))); err != nil {
		fmt.Fprintln(a.out, client.MessageOf(err))
		return err
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		fmt.Fprintln(a.out, "Logout failed:", err)
		return err
	}
	a.mu.Lock()
	a.lastHistory = nil
	a.mu.Unlock()
	return nil
}

// WhoAmI prints the session owner and, for JWT sessions, the token expiry.
func (a *App) WhoAmI(ctx context.Context) error {
	snap := a.session.Snapshot()
	if snap.Loading {
		fmt.Fprintln(a.out, "Checking session...")
		return nil
	}
	if !snap.IsAuthenticated() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}

	fmt.Fprintf(a.out, "Name:  %s\nEmail: %s\n", snap.User.Name, snap.User.Email)
	if !snap.ExpiresAt.IsZero() {
		fmt.Fprintf(a.out, "Token expires: %s\n", snap.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	a.session.Refresh(ctx)
	a.printSessionStatus()
	return nil
}

// VerifyText verifies args joined by spaces, or pasted text when args is empty.
func (a *App) VerifyText(ctx context.Context, args []string) error {
	text := strings.Join(args, " ")
	if text == "" {
		var err error
		text, err = GetMultiline(a.reader, "Paste the text to verify", a.out)
		if err != nil {
			return err
		}
	}
	return a.verify(ctx, models.KindText, text)
}

func (a *App) VerifyLink(ctx context.Context, args []string) error {
	link := strings.Join(args, "")
	if link == "" {
		var err error
		link, err = GetSimpleText(a.reader, "Link to verify", a.out)
		if err != nil {
			return err
		}
	}
	return a.verify(ctx, models.KindLink, link)
}

func (a *App) VerifyVideo(ctx context.Context, args []string) error {
	return a.verify(ctx, models.KindVideo, strings.Join(args, " "))
}

// VerifyImage loads the image at the given path and verifies it.
func (a *App) VerifyImage(ctx context.Context, args []string) error {
	path := strings.Join(args, " ")
	if path == "" {
		var err error
		path, err = GetSimpleText(a.reader, "Path to the image file", a.out)
		if err != nil {
			return err
		}
	}

	img, err := filex.ReadImage(path)
	if err != nil {
		fmt.Fprintln(a.out, "Cannot use this file:", err)
		return err
	}

	sub, err := models.NewImageSubmission(img)
	if err != nil {
		fmt.Fprintln(a.out, err)
		return err
	}
	return a.run(ctx, sub)
}

func (a *App) verify(ctx context.Context, kind models.Kind, payload string) error {
	sub, err := models.NewSubmission(kind, payload)
	if err != nil {
		fmt.Fprintln(a.out, "Nothing to verify.")
		return err
	}
	return a.run(ctx, sub)
}

func (a *App) run(ctx context.Context, sub *models.Submission) error {
	fmt.Fprintln(a.out, "Analyzing...")
	l := a.verifier.Submit(ctx, sub)

	o, err := l.Wait(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Stopped waiting for the result.")
		return err
	}
	return a.present(ctx, o)
}

func (a *App) present(ctx context.Context, o services.Outcome) error {
	switch {
	case o.Unsupported:
		fmt.Fprintln(a.out, o.Message)
		return nil

	case o.Err != nil:
		fmt.Fprintln(a.out, o.Message)
		if o.RedirectToLogin {
			fmt.Fprintln(a.out, "Type 'login' to sign in.")
		} else if client.IsUnauthorized(o.Err) {
			a.session.Refresh(ctx)
			if !a.session.IsAuthenticated() {
				fmt.Fprintln(a.out, client.MessageOf(client.ErrTokenRejected))
			}
		}
		return o.Err

	case o.Result != nil:
		return display.RenderResult(a.out, *o.Result, o.Historical)
	}
	return nil
}

// History lists the last n verifications (50 by default) and remembers
// the listing for Show.
func (a *App) History(ctx context.Context, args []string) error {
	limit := client.DefaultHistoryLimit
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			fmt.Fprintln(a.out, "Usage: history [n]")
			return fmt.Errorf("invalid limit %q", args[0])
		}
		limit = n
	}

	recs, err := a.history.List(ctx, limit)
	if err != nil {
		fmt.Fprintln(a.out, client.MessageOf(err))
		if errors.Is(err, client.ErrUnauthenticated) {
			fmt.Fprintln(a.out, "Type 'login' to sign in.")
			return err
		}
		_ = display.RenderHistory(a.out, nil, a.now())
		return err
	}

	a.mu.Lock()
	a.lastHistory = recs
	a.mu.Unlock()

	return display.RenderHistory(a.out, recs, a.now())
}

// Show replays entry n of the last history listing without a request.
func (a *App) Show(ctx context.Context, args []string) error {
	a.mu.Lock()
	recs := a.lastHistory
	a.mu.Unlock()

	if recs == nil {
		fmt.Fprintln(a.out, "Run 'history' first.")
		return errNoHistory
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(recs) {
		fmt.Fprintf(a.out, "Pick an entry between 1 and %d.\n", len(recs))
		return fmt.Errorf("invalid entry %q", args[0])
	}

	o, _ := a.verifier.Replay(recs[n-1].Result()).Outcome()
	return a.present(ctx, o)
}
