// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package gitinfo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/inflight/pkg/types"
)

func TestChanges_NotARepo(t *testing.T) {
	res, err := Changes(t.TempDir(), Options{})
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestChanges_NoDeterminableBase(t *testing.T) {
	// A repo whose only branch is neither main nor master and has no
	// origin/HEAD cannot yield a baseline.
	dir := initTestRepo(t)
	checkoutBranch(t, dir, "trunk", true)
	deleteBranch(t, dir, "master")

	res, err := Changes(dir, Options{})
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestChanges_FeatureBranchDiff(t *testing.T) {
	dir := initTestRepo(t)
	checkoutBranch(t, dir, "feature", true)
	addFileAndCommit(t, dir, "components/Button.tsx", "export const Button = () => null;\n", "add button")
	addFileAndCommit(t, dir, "notes.md", "# notes\n", "add notes")

	res, err := Changes(dir, Options{})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, "master", res.Info.BaseBranch)
	assert.Equal(t, "feature", res.Info.CurrentBranch)
	assert.NotEmpty(t, res.Info.MergeBase)
	assert.Contains(t, res.Info.Diff, "Button.tsx")
	assert.NotEmpty(t, res.Info.DiffStat)
	assert.False(t, res.Info.IsTruncated)

	require.Len(t, res.Files, 2)
	byPath := map[string]types.ChangedFile{}
	for _, f := range res.Files {
		byPath[f.Path] = f
	}
	assert.Equal(t, types.ChangeAdded, byPath["components/Button.tsx"].ChangeType)
	assert.True(t, byPath["components/Button.tsx"].IsUIRelevant)
	assert.False(t, byPath["notes.md"].IsUIRelevant)
}

func TestChanges_ZeroCommitsAhead(t *testing.T) {
	dir := initTestRepo(t)
	checkoutBranch(t, dir, "feature", true)

	res, err := Changes(dir, Options{})
	require.NoError(t, err)
	require.NotNil(t, res)

	// Present but empty: "no changes" is distinguishable from "no base".
	assert.Empty(t, res.Info.Diff)
	assert.Empty(t, res.Files)
	assert.Equal(t, "feature", res.Info.CurrentBranch)
}

func TestChanges_BaseOverride(t *testing.T) {
	dir := initTestRepo(t)
	checkoutBranch(t, dir, "develop", true)
	checkoutBranch(t, dir, "feature", true)
	addFileAndCommit(t, dir, "app/page.tsx", "export default function Page() { return null; }\n", "add page")

	res, err := Changes(dir, Options{BaseOverride: "develop"})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "develop", res.Info.BaseBranch)

	_, err = Changes(dir, Options{BaseOverride: "no-such-branch"})
	require.NoError(t, err)
}

func TestChanges_UnrelatedBaseCommitsExcluded(t *testing.T) {
	// Triple-dot semantics: commits landing on the base after divergence
	// must not appear in the feature diff.
	dir := initTestRepo(t)
	checkoutBranch(t, dir, "feature", true)
	addFileAndCommit(t, dir, "feature.ts", "export {};\n", "feature work")

	checkoutBranch(t, dir, "master", false)
	addFileAndCommit(t, dir, "upstream.ts", "export {};\n", "upstream work")
	checkoutBranch(t, dir, "feature", false)

	res, err := Changes(dir, Options{})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Contains(t, res.Info.Diff, "feature.ts")
	assert.NotContains(t, res.Info.Diff, "upstream.ts")
}

func TestChanges_WorktreeFallback(t *testing.T) {
	// On the base branch itself, uncommitted work is diffed against HEAD.
	dir := initTestRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() { println(1) }\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "styles.css"), []byte("body { margin: 0; }\n"), 0o644))

	res, err := Changes(dir, Options{})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Contains(t, res.Info.Diff, "+++ b/main.go")
	assert.Contains(t, res.Info.Diff, "--- /dev/null")
	assert.Contains(t, res.Info.DiffStat, "styles.css")

	byPath := map[string]types.ChangedFile{}
	for _, f := range res.Files {
		byPath[f.Path] = f
	}
	assert.Equal(t, types.ChangeModified, byPath["main.go"].ChangeType)
	assert.Equal(t, types.ChangeAdded, byPath["styles.css"].ChangeType)
	assert.True(t, byPath["styles.css"].IsUIRelevant)
}

func TestChanges_WorktreeClean(t *testing.T) {
	dir := initTestRepo(t)

	res, err := Changes(dir, Options{})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Empty(t, res.Info.Diff)
	assert.Empty(t, res.Files)
}

func TestChanges_Truncation(t *testing.T) {
	dir := initTestRepo(t)
	checkoutBranch(t, dir, "feature", true)
	addFileAndCommit(t, dir, "big.txt", strings.Repeat("line of text\n", 500), "big file")

	res, err := Changes(dir, Options{MaxDiffBytes: 100})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.True(t, res.Info.IsTruncated)
	assert.True(t, strings.HasSuffix(res.Info.Diff, truncationMarker))
	assert.Greater(t, res.Info.TotalBytes, 100)
	// The stat summary is never truncated.
	assert.Contains(t, res.Info.DiffStat, "big.txt")
}

func TestIsUIRelevant(t *testing.T) {
	tests := []struct {
		path     string
		relevant bool
	}{
		{"components/Button.tsx", true},
		{"src/components/nav/Menu.ts", true},
		{"app/dashboard/page.tsx", true},
		{"pages/index.jsx", true},
		{"styles/global.css", true},
		{"theme.scss", true},
		{"lib/utils.ts", false},
		{"server/api.go", false},
		{"README.md", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.relevant, IsUIRelevant(tt.path))
		})
	}
}

// initTestRepo creates a repository with one commit on master.
func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	r, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	wt, err := r.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644))

	_, err = wt.Add("main.go")
	require.NoError(t, err)

	_, err = wt.Commit("initial commit", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@test.com", When: time.Now()},
	})
	require.NoError(t, err)

	return dir
}

// addFileAndCommit writes a file (creating parent directories) and commits it.
func addFileAndCommit(t *testing.T, dir, name, content, msg string) {
	t.Helper()

	r, err := gogit.PlainOpen(dir)
	require.NoError(t, err)

	wt, err := r.Worktree()
	require.NoError(t, err)

	full := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))

	_, err = wt.Add(name)
	require.NoError(t, err)

	_, err = wt.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@test.com", When: time.Now()},
	})
	require.NoError(t, err)
}

// checkoutBranch switches to a branch, optionally creating it.
func checkoutBranch(t *testing.T, dir, name string, create bool) {
	t.Helper()

	r, err := gogit.PlainOpen(dir)
	require.NoError(t, err)
	wt, err := r.Worktree()
	require.NoError(t, err)

	require.NoError(t, wt.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Create: create,
	}))
}

// deleteBranch removes a local branch ref.
func deleteBranch(t *testing.T, dir, name string) {
	t.Helper()

	r, err := gogit.PlainOpen(dir)
	require.NoError(t, err)
	require.NoError(t, r.Storer.RemoveReference(plumbing.NewBranchReferenceName(name)))
}
