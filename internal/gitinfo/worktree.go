// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd002-git-extraction R4 (uncommitted-work fallback).
package gitinfo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/petar-djukic/inflight/internal/classify"
	"github.com/petar-djukic/inflight/pkg/types"
)

// worktreeChanges diffs the working tree against HEAD. go-git exposes no
// patch API for worktree-vs-commit, so the unified text is rendered from
// line-mode diffmatchpatch output per file.
func worktreeChanges(repo *gogit.Repository, head *plumbing.Reference, baseName, currentBranch string, maxDiffBytes int) (*Result, error) {
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("getting status: %w", err)
	}

	headCommit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("reading HEAD commit: %w", err)
	}
	tree, err := headCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("reading HEAD tree: %w", err)
	}

	info := &types.GitDiffInfo{
		BaseBranch:    baseName,
		CurrentBranch: currentBranch,
	}

	paths := make([]string, 0, len(status))
	for path := range status {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var diff, stat strings.Builder
	var files []types.ChangedFile
	totalAdd, totalDel := 0, 0

	for _, path := range paths {
		st := status[path]
		change, ok := worktreeChangeType(st)
		if !ok {
			continue
		}

		oldContent := ""
		if change != types.ChangeAdded {
			if f, err := tree.File(path); err == nil {
				if c, err := f.Contents(); err == nil {
					oldContent = c
				}
			}
		}
		newContent := ""
		if change != types.ChangeDeleted {
			data, err := os.ReadFile(filepath.Join(wt.Filesystem.Root(), path))
			if err != nil {
				continue // Deleted between status and read; skip.
			}
			if classify.IsBinary(path, data) {
				continue
			}
			newContent = string(data)
		}

		body, add, del := renderFileDiff(oldContent, newContent)
		if add == 0 && del == 0 {
			continue
		}
		writeFileHeader(&diff, path, change)
		diff.WriteString(body)

		fmt.Fprintf(&stat, " %s | %d insertions(+), %d deletions(-)\n", path, add, del)
		totalAdd += add
		totalDel += del
		files = append(files, types.ChangedFile{
			Path:         path,
			ChangeType:   change,
			IsUIRelevant: IsUIRelevant(path),
		})
	}

	if len(files) == 0 {
		return &Result{Info: info}, nil
	}

	fmt.Fprintf(&stat, " %d files changed, %d insertions(+), %d deletions(-)", len(files), totalAdd, totalDel)

	info.Diff, info.IsTruncated, info.TotalBytes = truncate(diff.String(), maxDiffBytes)
	info.DiffStat = stat.String()

	return &Result{Info: info, Files: files}, nil
}

// worktreeChangeType maps a git status entry to a change type. Unmodified
// entries report no change.
func worktreeChangeType(st *gogit.FileStatus) (types.ChangeType, bool) {
	code := st.Worktree
	if code == gogit.Unmodified {
		code = st.Staging
	}
	switch code {
	case gogit.Untracked, gogit.Added:
		return types.ChangeAdded, true
	case gogit.Deleted:
		return types.ChangeDeleted, true
	case gogit.Modified, gogit.Renamed, gogit.Copied, gogit.UpdatedButUnmerged:
		return types.ChangeModified, true
	default:
		return "", false
	}
}

// writeFileHeader emits the per-file diff header, using /dev/null for the
// missing side of adds and deletes.
func writeFileHeader(sb *strings.Builder, path string, change types.ChangeType) {
	fmt.Fprintf(sb, "diff --git a/%s b/%s\n", path, path)
	switch change {
	case types.ChangeAdded:
		fmt.Fprintf(sb, "--- /dev/null\n+++ b/%s\n", path)
	case types.ChangeDeleted:
		fmt.Fprintf(sb, "--- a/%s\n+++ /dev/null\n", path)
	default:
		fmt.Fprintf(sb, "--- a/%s\n+++ b/%s\n", path, path)
	}
}

// renderFileDiff produces +/-/context lines for one file using line-mode
// diffmatchpatch, returning the rendered body and the line counts.
func renderFileDiff(oldContent, newContent string) (body string, added, deleted int) {
	dmp := diffmatchpatch.New()
	c1, c2, lines := dmp.DiffLinesToChars(oldContent, newContent)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(c1, c2, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		}
		for _, line := range splitDiffLines(d.Text) {
			sb.WriteString(prefix)
			sb.WriteString(line)
			sb.WriteByte('\n')
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				added++
			case diffmatchpatch.DiffDelete:
				deleted++
			}
		}
	}
	return sb.String(), added, deleted
}

// splitDiffLines splits diff text into lines, dropping a trailing empty
// element from the final newline.
func splitDiffLines(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
