// Package cli provides the interactive VerifyNow command-line client.
//
// It wires configuration, the local session store, the verification backend
// client and the application services into a REPL. On start the persisted
// session is restored and re-validated; a background watcher keeps
// re-validating it while the user is signed in.
//
// Key features:
//   - Login with a Google ID token / Logout / WhoAmI
//   - Verify text, links and images (video is recognised but not supported)
//   - List past verifications and re-open a saved analysis
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartSessionWatcher, and runREPL for details.
package cli
