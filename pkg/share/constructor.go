// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd001-share-pipeline R5;
//
//	docs/ARCHITECTURE § Bridge Interface.
package share

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/petar-djukic/inflight/internal/auth"
	internalshare "github.com/petar-djukic/inflight/internal/share"
	"github.com/petar-djukic/inflight/internal/transfer"
	"github.com/petar-djukic/inflight/pkg/types"
)

// New validates the config and returns a ready-to-use Client. It performs
// no network traffic; the service is first contacted by an operation.
func New(cfg Config) (Client, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	applyDefaults(&cfg)

	var store *auth.Store
	if cfg.CredentialsPath != "" {
		store = auth.NewStoreAt(cfg.CredentialsPath)
	} else {
		var err error
		store, err = auth.NewStore()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	a := &bridgeAdapter{store: store, authURL: cfg.AuthURL, baseURL: cfg.BaseURL}
	a.runner = internalshare.NewRunner(internalshare.Deps{
		BaseURL:      cfg.BaseURL,
		AuthStore:    store,
		MaxDiffBytes: cfg.MaxDiffBytes,
		Progress:     cfg.Progress,
		Login:        a.Login,
	})
	return a, nil
}

// bridgeAdapter adapts internal/share.Runner to the public Client
// interface.
type bridgeAdapter struct {
	runner  *internalshare.Runner
	store   *auth.Store
	authURL string
	baseURL string
}

func (a *bridgeAdapter) Share(ctx context.Context, opts ShareOptions) (*types.ShareResult, error) {
	return a.runner.Share(ctx, internalshare.ShareRequest{
		Directory:         opts.Directory,
		WorkspaceID:       opts.WorkspaceID,
		ExistingProjectID: opts.ExistingProjectID,
		GitURL:            opts.GitURL,
		BaseBranch:        opts.BaseBranch,
		UseStaticAnalysis: opts.UseStaticAnalysis,
	})
}

func (a *bridgeAdapter) Analyze(ctx context.Context, opts AnalyzeOptions) (*types.DependencyAnalysisResult, error) {
	return a.runner.Analyze(ctx, internalshare.AnalyzeRequest{
		ProjectPath:  opts.ProjectPath,
		ChangedFiles: opts.ChangedFiles,
		BaseBranch:   opts.BaseBranch,
	})
}

func (a *bridgeAdapter) Login(ctx context.Context) (*types.AuthData, error) {
	return auth.Login(ctx, a.store, auth.LoginConfig{AuthURL: a.authURL})
}

func (a *bridgeAdapter) Logout() error {
	return a.store.Delete()
}

func (a *bridgeAdapter) Health(ctx context.Context) error {
	return transfer.NewClient(transfer.Config{BaseURL: a.baseURL}).Health(ctx)
}

func (a *bridgeAdapter) Status() (*types.AuthData, error) {
	creds, err := a.store.Load()
	if errors.Is(err, auth.ErrNoCredentials) {
		return nil, ErrNotLoggedIn
	}
	return creds, err
}

// validateConfig checks that required fields are present.
func validateConfig(cfg Config) error {
	if cfg.BaseURL == "" {
		return fmt.Errorf("BaseURL is required")
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return fmt.Errorf("BaseURL %q is not a valid URL", cfg.BaseURL)
	}
	return nil
}

// applyDefaults fills in zero-value fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.AuthURL == "" {
		cfg.AuthURL = cfg.BaseURL + "/login"
	}
}
