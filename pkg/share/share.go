// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package share defines the public interface for inflight, a local bridge
// that packages a project's working state and shares it with the inflight
// service for remote analysis.
// Implements: prd001-share-pipeline R1, R6;
//
//	docs/ARCHITECTURE § Bridge Interface.
package share

import (
	"context"
	"errors"

	"github.com/petar-djukic/inflight/pkg/types"
)

// Error types for the bridge API.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrNotLoggedIn   = errors.New("not logged in")
)

// Config configures a bridge Client.
type Config struct {
	BaseURL string // Share service endpoint (required)
	AuthURL string // Login page; defaults to BaseURL + "/login"

	// MaxDiffBytes caps the git diff carried in a share payload. Zero
	// uses the built-in default.
	MaxDiffBytes int

	// CredentialsPath overrides the credential file location. Empty uses
	// ~/.inflight/auth.json.
	CredentialsPath string

	// Progress receives ordered progress events for share operations.
	// Nil discards them. The caller must drain the channel while a share
	// is running; events are delivered in order and never dropped.
	Progress chan<- types.ProgressEvent
}

// ShareOptions parameterizes a single share operation.
type ShareOptions struct {
	Directory         string // Project root (required)
	WorkspaceID       string // Empty uses the account default
	ExistingProjectID string // Update an existing project instead of creating one
	GitURL            string
	BaseBranch        string // Diff baseline override
	UseStaticAnalysis bool   // Share only the dependency closure of UI changes
}

// AnalyzeOptions parameterizes a dependency analysis.
type AnalyzeOptions struct {
	ProjectPath  string   // Project root (required)
	ChangedFiles []string // Explicit entry points; empty means use git
	BaseBranch   string
}

// Client is the bridge's operation surface.
//
// Implements: prd001-share-pipeline R1.1-R1.6.
type Client interface {
	// Share packages the project and uploads it for remote analysis,
	// relaying streamed progress until the service reports completion.
	Share(ctx context.Context, opts ShareOptions) (*types.ShareResult, error)

	// Analyze resolves the dependency closure of the project's changed
	// files without uploading anything.
	Analyze(ctx context.Context, opts AnalyzeOptions) (*types.DependencyAnalysisResult, error)

	// Login runs the interactive browser handshake and persists the
	// resulting credentials.
	Login(ctx context.Context) (*types.AuthData, error)

	// Logout removes stored credentials. Removing nothing is not an error.
	Logout() error

	// Status returns the stored credentials, or ErrNotLoggedIn.
	Status() (*types.AuthData, error)

	// Health probes the share service.
	Health(ctx context.Context) error
}
