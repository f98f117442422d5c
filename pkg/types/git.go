// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd002-git-extraction R1 (diff info record).
package types

// GitDiffInfo describes the changes on the current branch relative to its
// base. Diff is empty only when there are truly no changes since the merge
// base; a repository with no determinable base yields no GitDiffInfo at all,
// which keeps "no changes" and "no base" distinguishable.
type GitDiffInfo struct {
	Diff          string `json:"diff"`                  // Raw unified diff (possibly truncated)
	DiffStat      string `json:"diffStat"`              // --stat style summary, never truncated
	BaseBranch    string `json:"baseBranch"`            // Resolved base branch name
	CurrentBranch string `json:"currentBranch"`         // Branch HEAD points at
	MergeBase     string `json:"mergeBase,omitempty"`   // Merge-base commit hash
	IsTruncated   bool   `json:"isTruncated,omitempty"` // Diff was cut at the byte budget
	TotalBytes    int    `json:"totalBytes,omitempty"`  // Pre-truncation diff size
}
