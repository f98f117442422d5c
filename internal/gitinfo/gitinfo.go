// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package gitinfo extracts branch, merge-base, and diff information from a
// project repository. It answers one question for the share pipeline: what
// changed on this branch relative to its base, and which of those changes
// look UI-relevant.
// Implements: prd002-git-extraction R1, R2, R3;
//
//	docs/ARCHITECTURE § Git Change Extractor.
package gitinfo

import (
	"errors"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/petar-djukic/inflight/pkg/types"
)

// DefaultMaxDiffBytes is the raw-diff byte budget before truncation.
const DefaultMaxDiffBytes = 1 << 20

// truncationMarker is appended when the raw diff is cut at the budget.
const truncationMarker = "\n... [diff truncated]"

// ErrNoRepo is returned internally when the directory is not a git
// repository; Changes converts it to a nil result.
var ErrNoRepo = errors.New("not a git repository")

// Options configures change extraction.
type Options struct {
	BaseOverride string // Explicit base branch; empty means auto-detect
	MaxDiffBytes int    // Raw diff byte budget; 0 means DefaultMaxDiffBytes
}

// Result pairs the diff info with per-file change records.
type Result struct {
	Info  *types.GitDiffInfo
	Files []types.ChangedFile
}

// Changes computes the branch diff for the repository at root. It returns
// (nil, nil) when root is not a git repository or no base branch can be
// determined; both are ordinary local conditions, not errors.
//
// The diff uses triple-dot semantics: changes on HEAD since it diverged
// from the base (merge-base to HEAD), undisturbed by unrelated commits on
// the base. When HEAD sits on the base branch itself, the worktree is
// diffed against HEAD instead so uncommitted work is still shareable.
//
// Implements: prd002-git-extraction R1.1-R1.6, R2.1-R2.4.
func Changes(root string, opts Options) (*Result, error) {
	if opts.MaxDiffBytes <= 0 {
		opts.MaxDiffBytes = DefaultMaxDiffBytes
	}

	repo, err := gogit.PlainOpenWithOptions(root, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, nil // Not a repository.
	}

	head, err := repo.Head()
	if err != nil {
		return nil, nil // Empty repository; nothing to diff.
	}
	currentBranch := head.Name().Short()

	baseName, baseHash, ok := resolveBase(repo, opts.BaseOverride)
	if !ok {
		return nil, nil // Cannot determine base.
	}

	if currentBranch == baseName {
		return worktreeChanges(repo, head, baseName, currentBranch, opts.MaxDiffBytes)
	}

	headCommit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("reading HEAD commit: %w", err)
	}
	baseCommit, err := repo.CommitObject(baseHash)
	if err != nil {
		return nil, fmt.Errorf("reading base commit: %w", err)
	}

	mergeBase := baseCommit
	if bases, err := headCommit.MergeBase(baseCommit); err == nil && len(bases) > 0 {
		mergeBase = bases[0]
	}

	info := &types.GitDiffInfo{
		BaseBranch:    baseName,
		CurrentBranch: currentBranch,
		MergeBase:     mergeBase.Hash.String(),
	}

	// Zero commits ahead of base: an empty (but present) diff, which stays
	// distinguishable from the nil "no base branch" result.
	if mergeBase.Hash == head.Hash() {
		return &Result{Info: info}, nil
	}

	patch, err := mergeBase.Patch(headCommit)
	if err != nil {
		return nil, fmt.Errorf("computing diff %s...%s: %w", baseName, currentBranch, err)
	}

	info.Diff, info.IsTruncated, info.TotalBytes = truncate(patch.String(), opts.MaxDiffBytes)
	info.DiffStat = strings.TrimRight(patch.Stats().String(), "\n")

	return &Result{Info: info, Files: changedFiles(patch)}, nil
}

// resolveBase picks the diff baseline: explicit override, then local main,
// then local master, then the branch origin/HEAD points at.
func resolveBase(repo *gogit.Repository, override string) (string, plumbing.Hash, bool) {
	candidates := []string{"main", "master"}
	if override != "" {
		candidates = []string{override}
	}

	for _, name := range candidates {
		if ref, err := repo.Reference(plumbing.NewBranchReferenceName(name), true); err == nil {
			return name, ref.Hash(), true
		}
	}
	if override != "" {
		return "", plumbing.ZeroHash, false
	}

	// origin/HEAD is a symbolic ref naming the remote's default branch.
	originHead, err := repo.Reference(plumbing.ReferenceName("refs/remotes/origin/HEAD"), false)
	if err != nil || originHead.Type() != plumbing.SymbolicReference {
		return "", plumbing.ZeroHash, false
	}
	target := originHead.Target()
	resolved, err := repo.Reference(target, true)
	if err != nil {
		return "", plumbing.ZeroHash, false
	}
	name := strings.TrimPrefix(target.Short(), "origin/")
	return name, resolved.Hash(), true
}

// changedFiles converts a patch's file pairs into ChangedFile records.
func changedFiles(patch *object.Patch) []types.ChangedFile {
	var files []types.ChangedFile
	for _, fp := range patch.FilePatches() {
		from, to := fp.Files()

		var path string
		var change types.ChangeType
		switch {
		case from == nil && to != nil:
			path, change = to.Path(), types.ChangeAdded
		case from != nil && to == nil:
			path, change = from.Path(), types.ChangeDeleted
		case from != nil && to != nil:
			path, change = to.Path(), types.ChangeModified
		default:
			continue
		}

		files = append(files, types.ChangedFile{
			Path:         path,
			ChangeType:   change,
			IsUIRelevant: IsUIRelevant(path),
		})
	}
	return files
}

// uiDirs are path segments that mark component or router files.
var uiDirs = map[string]bool{
	"components": true,
	"app":        true,
	"pages":      true,
	"layouts":    true,
	"views":      true,
}

// uiExts are extensions that mark rendered-output files.
var uiExts = map[string]bool{
	".tsx":    true,
	".jsx":    true,
	".css":    true,
	".scss":   true,
	".sass":   true,
	".less":   true,
	".vue":    true,
	".svelte": true,
}

// IsUIRelevant reports whether a path suggests the file affects rendered
// output: a component/router directory, a .tsx/.jsx source, or a stylesheet.
func IsUIRelevant(path string) bool {
	slash := strings.ToLower(strings.ReplaceAll(path, "\\", "/"))

	if dot := strings.LastIndex(slash, "."); dot >= 0 {
		if uiExts[slash[dot:]] {
			return true
		}
	}
	for _, seg := range strings.Split(slash, "/") {
		if uiDirs[seg] {
			return true
		}
	}
	return false
}

// truncate cuts diff at the byte budget, appending a marker. The original
// size is always reported so callers can tell how much was dropped.
func truncate(diff string, maxBytes int) (out string, truncated bool, totalBytes int) {
	totalBytes = len(diff)
	if totalBytes <= maxBytes {
		return diff, false, totalBytes
	}
	return diff[:maxBytes] + truncationMarker, true, totalBytes
}
