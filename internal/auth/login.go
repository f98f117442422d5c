// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd007-auth R3 (browser callback handshake).
package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/petar-djukic/inflight/pkg/types"
)

// DefaultLoginTimeout bounds the interactive wait for the browser
// callback. This is the only explicit timeout in the whole bridge.
const DefaultLoginTimeout = 5 * time.Minute

// callbackPath is the single path the ephemeral listener serves.
const callbackPath = "/callback"

// ErrLoginTimeout is returned when the browser callback never arrives.
var ErrLoginTimeout = errors.New("login timed out waiting for browser callback")

// confirmationPage is shown in the browser after a successful callback.
const confirmationPage = `<!DOCTYPE html>
<html>
<head><title>inflight</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 4rem;">
<h1>Logged in</h1>
<p>You can close this tab and return to your terminal.</p>
</body>
</html>`

// LoginConfig configures the interactive login flow.
type LoginConfig struct {
	AuthURL     string                 // Login page of the share service (required)
	Timeout     time.Duration          // Defaults to DefaultLoginTimeout
	OpenBrowser func(url string) error // Defaults to the OS launcher
}

// Login runs the browser handshake: start an ephemeral loopback listener
// on an OS-assigned port, open the login page pointing back at it, wait
// for the single expected callback, persist the credentials, and tear the
// listener down. Failing to open a browser is tolerated; the URL is in the
// returned error path only if the callback never arrives.
//
// Implements: prd007-auth R3.1-R3.6.
func Login(ctx context.Context, store *Store, cfg LoginConfig) (*types.AuthData, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultLoginTimeout
	}
	openBrowser := cfg.OpenBrowser
	if openBrowser == nil {
		openBrowser = OpenBrowser
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("starting callback listener: %w", err)
	}

	state := uuid.NewString()
	resultCh := make(chan *types.AuthData, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		apiKey, userID := q.Get("apiKey"), q.Get("userId")
		if apiKey == "" || userID == "" {
			http.Error(w, "missing credentials", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, confirmationPage)

		data := &types.AuthData{
			APIKey:             apiKey,
			UserID:             userID,
			Email:              q.Get("email"),
			Name:               q.Get("name"),
			DefaultWorkspaceID: q.Get("workspaceId"),
			CreatedAt:          time.Now().UTC(),
		}
		select {
		case resultCh <- data:
		default: // A second callback; only the first one counts.
		}
	})
	mux.HandleFunc("/", http.NotFound)

	srv := &http.Server{Handler: mux}
	go srv.Serve(ln)
	defer srv.Close()

	callbackURL := fmt.Sprintf("http://%s%s", ln.Addr().String(), callbackPath)
	loginURL := fmt.Sprintf("%s?callback=%s&state=%s",
		cfg.AuthURL, url.QueryEscape(callbackURL), url.QueryEscape(state))

	// Opening the browser is a convenience, not a requirement; the user
	// can paste the URL by hand.
	_ = openBrowser(loginURL)

	select {
	case data := <-resultCh:
		if err := store.Save(data); err != nil {
			return nil, err
		}
		return data, nil
	case <-time.After(cfg.Timeout):
		return nil, fmt.Errorf("%w (visit %s manually)", ErrLoginTimeout, loginURL)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
