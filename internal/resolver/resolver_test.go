// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package resolver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/inflight/pkg/types"
)

// setupProject writes a file tree under a temp dir and returns the root.
func setupProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		full := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return dir
}

func TestResolve_EmptyEntryPoints(t *testing.T) {
	r := New(t.TempDir(), nil)
	deps := r.Resolve(context.Background(), nil)

	assert.Empty(t, deps.LocalFiles)
	assert.Empty(t, deps.NpmPackages)
	assert.Empty(t, deps.WorkspacePackages)
}

func TestResolve_RelativeImports(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"src/page.tsx":              `import { Button } from "./components/Button";` + "\n",
		"src/components/Button.tsx": `import { helper } from "../lib/utils";` + "\nexport const Button = () => null;\n",
		"src/lib/utils.ts":          `export const helper = () => 1;` + "\n",
	})

	r := New(dir, nil)
	deps := r.Resolve(context.Background(), []string{"src/page.tsx"})

	assert.Equal(t, []string{
		"src/components/Button.tsx",
		"src/lib/utils.ts",
		"src/page.tsx",
	}, deps.LocalFiles)
}

func TestResolve_EntryPointsAlwaysIncluded(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"src/broken.tsx": "not even remotely valid {{{",
		"styles/app.css": "body {}\n",
	})

	r := New(dir, nil)
	deps := r.Resolve(context.Background(), []string{"src/broken.tsx", "styles/app.css"})

	// Unparseable and non-walkable entries still appear in the closure.
	assert.Contains(t, deps.LocalFiles, "src/broken.tsx")
	assert.Contains(t, deps.LocalFiles, "styles/app.css")
}

func TestResolve_Aliases(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"tsconfig.json": `{
  // path aliases for the app
  "compilerOptions": {
    "baseUrl": ".",
    "paths": {
      "@/*": ["./src/*"],
    },
  },
}`,
		"src/page.tsx":     `import { helper } from "@/lib/utils";` + "\n",
		"src/lib/utils.ts": `export const helper = () => 1;` + "\n",
	})

	r := New(dir, LoadAliases(dir))
	deps := r.Resolve(context.Background(), []string{"src/page.tsx"})

	assert.Contains(t, deps.LocalFiles, "src/lib/utils.ts")
	assert.Empty(t, deps.NpmPackages)
}

func TestResolve_BarePackages(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"src/page.tsx": `import React from "react";
import { format } from "date-fns/format";
import { useState } from "react";
const clsx = require("clsx");
`,
	})

	r := New(dir, nil)
	deps := r.Resolve(context.Background(), []string{"src/page.tsx"})

	require.Len(t, deps.NpmPackages, 3)
	byName := map[string]types.NpmPackage{}
	for _, p := range deps.NpmPackages {
		byName[p.Name] = p
	}
	assert.Equal(t, []string{"default"}, byName["react"].Specifiers)
	assert.Equal(t, []string{"format"}, byName["date-fns"].Specifiers)
	assert.Equal(t, []string{"default"}, byName["clsx"].Specifiers)
}

func TestResolve_ScopedPackages(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"app/src/page.tsx": `import { Dialog } from "@radix-ui/react-dialog";
import { Card } from "@acme/ui";
import { Chart } from "@acme/ui/charts";
`,
		"packages/ui/index.ts": "export const Card = 1;\n",
	})
	root := filepath.Join(dir, "app")

	r := New(root, nil)
	deps := r.Resolve(context.Background(), []string{"src/page.tsx"})

	// @acme/ui found under ../packages/ui: workspace, deduplicated by
	// name with both import paths recorded.
	require.Len(t, deps.WorkspacePackages, 1)
	ws := deps.WorkspacePackages[0]
	assert.Equal(t, "@acme/ui", ws.Name)
	assert.Equal(t, filepath.Join(dir, "packages", "ui"), ws.ResolvedPath)
	assert.ElementsMatch(t, []string{"@acme/ui", "@acme/ui/charts"}, ws.ImportedFiles)

	// @radix-ui has no workspace location: external, keyed by the full
	// scoped name.
	require.Len(t, deps.NpmPackages, 1)
	assert.Equal(t, "@radix-ui/react-dialog", deps.NpmPackages[0].Name)
	assert.Equal(t, []string{"default"}, deps.NpmPackages[0].Specifiers)
}

func TestResolve_CircularImports(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"a.ts": `import { b } from "./b";` + "\nexport const a = 1;\n",
		"b.ts": `import { a } from "./a";` + "\nexport const b = 2;\n",
	})

	r := New(dir, nil)
	deps := r.Resolve(context.Background(), []string{"a.ts"})

	assert.Equal(t, []string{"a.ts", "b.ts"}, deps.LocalFiles)
}

func TestResolve_UnresolvedRelativeTreatedAsExternal(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"page.tsx": `import { gone } from "./does-not-exist";` + "\n",
	})

	r := New(dir, nil)
	deps := r.Resolve(context.Background(), []string{"page.tsx"})

	require.Len(t, deps.NpmPackages, 1)
	assert.Equal(t, "./does-not-exist", deps.NpmPackages[0].Name)
}

func TestResolve_ReexportsAndDynamicImports(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"index.ts":  `export { widget } from "./widget";` + "\n" + `const lazy = import("./lazy");` + "\n",
		"widget.ts": "export const widget = 1;\n",
		"lazy.ts":   "export default 2;\n",
	})

	r := New(dir, nil)
	deps := r.Resolve(context.Background(), []string{"index.ts"})

	assert.Contains(t, deps.LocalFiles, "widget.ts")
	assert.Contains(t, deps.LocalFiles, "lazy.ts")
}

func TestResolve_DirectoryIndexConvention(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"page.tsx":      `import { nav } from "./nav";` + "\n",
		"nav/index.tsx": `export const nav = 1;` + "\n",
	})

	r := New(dir, nil)
	deps := r.Resolve(context.Background(), []string{"page.tsx"})

	assert.Contains(t, deps.LocalFiles, "nav/index.tsx")
}

func TestLoadAliases_MissingConfig(t *testing.T) {
	assert.Empty(t, LoadAliases(t.TempDir()))
}

func TestLoadAliases_CommentInsideString(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"tsconfig.json": `{
  "compilerOptions": {
    "paths": {
      "http-alias/*": ["./src/http//x/*"]
    }
  }
}`,
	})

	aliases := LoadAliases(dir)
	// A "//" inside a string value must survive comment stripping.
	assert.Equal(t, "src/http/x/*", aliases["http-alias/*"])
}
