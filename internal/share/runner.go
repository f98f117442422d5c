// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package share implements the share orchestrator, wiring git extraction,
// dependency analysis, payload assembly, and the transfer protocol into
// the two operations the bridge exposes: share and analyze.
// Implements: prd001-share-pipeline R2, R3;
//
//	docs/ARCHITECTURE § Share Orchestrator, Lifecycle.
package share

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/petar-djukic/inflight/internal/auth"
	"github.com/petar-djukic/inflight/internal/gitinfo"
	"github.com/petar-djukic/inflight/internal/payload"
	"github.com/petar-djukic/inflight/internal/resolver"
	"github.com/petar-djukic/inflight/internal/transfer"
	"github.com/petar-djukic/inflight/pkg/types"
)

// ErrNotADirectory is returned when the share target does not exist.
var ErrNotADirectory = errors.New("directory not found")

// ErrNotARepo is returned when the share target has no usable git
// repository or base branch; a share needs a diff to describe itself.
var ErrNotARepo = errors.New("no git repository with a determinable base branch")

// ErrNothingToShare is returned when assembly produced an empty file map.
var ErrNothingToShare = errors.New("nothing to share")

// Uploader abstracts the transfer client so the orchestrator is testable.
type Uploader interface {
	Health(ctx context.Context) error
	Share(ctx context.Context, req transfer.ShareRequest, onProgress transfer.ProgressFunc) (*types.ShareResult, error)
	ShareChunked(ctx context.Context, req transfer.ShareRequest, chunks []types.FileMap, onProgress transfer.ProgressFunc) (*types.ShareResult, error)
}

// Deps holds injected dependencies for the runner.
type Deps struct {
	BaseURL      string
	AuthStore    *auth.Store
	MaxDiffBytes int

	// NewUploader builds a transfer client for an API key. Tests inject
	// fakes here; nil uses the real transfer client.
	NewUploader func(apiKey string) Uploader

	// Login performs the interactive browser handshake. Nil disables
	// re-authentication; missing credentials then fail immediately.
	Login func(ctx context.Context) (*types.AuthData, error)

	// Progress receives ordered progress events. Nil discards them. The
	// consumer must drain the channel; events are never reordered or
	// batched.
	Progress chan<- types.ProgressEvent
}

// Runner orchestrates share operations.
type Runner struct {
	deps Deps
}

// NewRunner creates a Runner with the given dependencies.
func NewRunner(deps Deps) *Runner {
	if deps.NewUploader == nil {
		baseURL := deps.BaseURL
		deps.NewUploader = func(apiKey string) Uploader {
			return transfer.NewClient(transfer.Config{BaseURL: baseURL, APIKey: apiKey})
		}
	}
	return &Runner{deps: deps}
}

// ShareRequest is the caller-facing share operation input.
type ShareRequest struct {
	Directory         string // Project root; required
	WorkspaceID       string
	ExistingProjectID string
	GitURL            string
	BaseBranch        string // Base branch override for the diff
	UseStaticAnalysis bool   // Select files via dependency resolution
}

// AnalyzeRequest is the caller-facing dependency-analysis operation input.
type AnalyzeRequest struct {
	ProjectPath  string
	ChangedFiles []string // Explicit entry paths; empty means use git
	BaseBranch   string
}

// Share executes the full pipeline: probe, credentials, git changes, file
// selection, assembly, transfer, stream relay.
//
// Implements: prd001-share-pipeline R2.1-R2.7.
func (r *Runner) Share(ctx context.Context, req ShareRequest) (*types.ShareResult, error) {
	opID := uuid.NewString()
	emit := func(pct int, step string) {
		if r.deps.Progress != nil {
			r.deps.Progress <- types.ProgressEvent{OperationID: opID, Percentage: pct, Step: step}
		}
	}

	info, err := os.Stat(req.Directory)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, req.Directory)
	}

	emit(2, "Checking share service")
	if err := r.deps.NewUploader("").Health(ctx); err != nil {
		return nil, err
	}

	creds, err := r.credentials(ctx)
	if err != nil {
		return nil, err
	}

	emit(4, "Collecting git changes")
	gitRes, err := gitinfo.Changes(req.Directory, gitinfo.Options{
		BaseOverride: req.BaseBranch,
		MaxDiffBytes: r.deps.MaxDiffBytes,
	})
	if err != nil {
		return nil, err
	}
	if gitRes == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotARepo, req.Directory)
	}

	emit(6, "Selecting files")
	files, err := r.selectFiles(ctx, req, gitRes.Files)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNothingToShare
	}

	workspaceID := req.WorkspaceID
	if workspaceID == "" {
		workspaceID = creds.DefaultWorkspaceID
	}
	treq := transfer.ShareRequest{
		Files:             files,
		GitDiff:           gitRes.Info,
		UserID:            creds.UserID,
		WorkspaceID:       workspaceID,
		ExistingProjectID: req.ExistingProjectID,
		GitURL:            req.GitURL,
	}

	result, err := r.transferWithReauth(ctx, creds.APIKey, treq, emit)
	if err != nil {
		return nil, err
	}

	emit(100, "Share complete")
	return result, nil
}

// selectFiles assembles the payload, either the full tree or the resolved
// dependency closure of the UI-relevant changes.
func (r *Runner) selectFiles(ctx context.Context, req ShareRequest, changed []types.ChangedFile) (types.FileMap, error) {
	if req.UseStaticAnalysis {
		if entries := entryPoints(changed); len(entries) > 0 {
			res := resolver.New(req.Directory, resolver.LoadAliases(req.Directory))
			deps := res.Resolve(ctx, entries)
			files, _, err := payload.AssembleFiles(req.Directory, deps.LocalFiles)
			return files, err
		}
		// Nothing UI-relevant changed; static selection would be empty,
		// so fall back to the full tree.
	}
	files, _, err := payload.AssembleAll(req.Directory)
	return files, err
}

// transferWithReauth runs the transfer, retrying exactly once behind an
// interactive re-login when the service rejects the stored key.
func (r *Runner) transferWithReauth(ctx context.Context, apiKey string, treq transfer.ShareRequest, emit func(int, string)) (*types.ShareResult, error) {
	result, err := r.transfer(ctx, apiKey, treq, emit)
	if !errors.Is(err, transfer.ErrUnauthorized) || r.deps.Login == nil {
		return result, err
	}

	emit(8, "Credentials rejected; re-authenticating")
	creds, loginErr := r.deps.Login(ctx)
	if loginErr != nil {
		return nil, fmt.Errorf("re-authentication failed: %w", loginErr)
	}
	treq.UserID = creds.UserID
	return r.transfer(ctx, creds.APIKey, treq, emit)
}

// transfer picks the single-shot or chunked path by payload size.
func (r *Runner) transfer(ctx context.Context, apiKey string, treq transfer.ShareRequest, emit func(int, string)) (*types.ShareResult, error) {
	up := r.deps.NewUploader(apiKey)
	onProgress := transfer.ProgressFunc(emit)

	if payload.NeedsChunking(treq.Files) {
		chunks := payload.SplitChunks(treq.Files, payload.MaxChunkBytes)
		emit(transfer.UploadRangeLow, fmt.Sprintf("Uploading %d chunks", len(chunks)))
		treq.Files = nil // Metadata only; content travels per chunk.
		return up.ShareChunked(ctx, treq, chunks, onProgress)
	}

	emit(transfer.UploadRangeLow, "Uploading payload")
	return up.Share(ctx, treq, onProgress)
}

// credentials loads stored credentials, running the interactive login
// exactly once when none exist.
func (r *Runner) credentials(ctx context.Context) (*types.AuthData, error) {
	creds, err := r.deps.AuthStore.Load()
	if err == nil {
		return creds, nil
	}
	if !errors.Is(err, auth.ErrNoCredentials) || r.deps.Login == nil {
		return nil, err
	}
	return r.deps.Login(ctx)
}

// Analyze runs dependency analysis without sharing anything. Local
// recoverable conditions (no repository, no changes) degrade to an empty
// result; this operation is advisory.
//
// Implements: prd003-dependency-analysis R1.1-R1.4.
func (r *Runner) Analyze(ctx context.Context, req AnalyzeRequest) (*types.DependencyAnalysisResult, error) {
	start := time.Now()

	info, err := os.Stat(req.ProjectPath)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, req.ProjectPath)
	}

	var changed []types.ChangedFile
	if len(req.ChangedFiles) > 0 {
		for _, path := range req.ChangedFiles {
			changed = append(changed, types.ChangedFile{
				Path:         path,
				ChangeType:   types.ChangeModified,
				IsUIRelevant: gitinfo.IsUIRelevant(path),
			})
		}
	} else {
		gitRes, err := gitinfo.Changes(req.ProjectPath, gitinfo.Options{BaseOverride: req.BaseBranch})
		if err != nil {
			return nil, err
		}
		if gitRes != nil {
			changed = gitRes.Files
		}
	}

	aliases := resolver.LoadAliases(req.ProjectPath)
	res := resolver.New(req.ProjectPath, aliases)
	entries := entryPoints(changed)
	deps := res.Resolve(ctx, entries)

	return &types.DependencyAnalysisResult{
		ChangedFiles: changed,
		Dependencies: *deps,
		Metadata: types.AnalysisMetadata{
			ProjectRoot:    req.ProjectPath,
			EntryPoints:    entries,
			AnalysisTimeMs: time.Since(start).Milliseconds(),
			PathAliases:    aliases,
		},
	}, nil
}

// entryPoints filters the changed set down to resolver seeds: UI-relevant
// files that still exist.
func entryPoints(changed []types.ChangedFile) []string {
	var entries []string
	for _, f := range changed {
		if f.IsUIRelevant && f.ChangeType != types.ChangeDeleted {
			entries = append(entries, f.Path)
		}
	}
	return entries
}
