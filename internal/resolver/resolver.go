// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package resolver computes the transitive closure of local files, npm
// packages, and workspace packages reachable from a set of changed entry
// points. It is a single static-analysis pass over the import graph; the
// output is advisory input to payload selection, so individual resolution
// failures degrade to "external" instead of erroring.
// Implements: prd003-dependency-analysis R2, R3, R5;
//
//	docs/ARCHITECTURE § Dependency Resolver.
package resolver

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/petar-djukic/inflight/pkg/types"
)

// Resolver walks import graphs under one project root.
type Resolver struct {
	root     string
	strategy Strategy
}

// New creates a resolver for the project root using the given path aliases
// and the default filesystem strategy.
func New(root string, aliases map[string]string) *Resolver {
	return &Resolver{root: root, strategy: newFSStrategy(root, aliases)}
}

// NewWithStrategy creates a resolver with a custom resolution strategy.
func NewWithStrategy(root string, strategy Strategy) *Resolver {
	return &Resolver{root: root, strategy: strategy}
}

// pass is the mutable state of one Resolve invocation. It is owned by that
// invocation alone, so concurrent resolutions of different projects cannot
// interfere.
type pass struct {
	visited   map[string]bool
	local     map[string]bool
	npm       map[string]map[string]bool
	workspace map[string]*workspaceEntry
	queue     []string
}

type workspaceEntry struct {
	path     string
	imported map[string]bool
}

// Resolve computes the dependency closure seeded at entryPoints (repo-
// relative paths). Entry points always appear in the returned LocalFiles,
// even when they cannot be parsed. An empty entry set short-circuits to an
// empty result: with nothing UI-relevant changed there is nothing to trace.
//
// Implements: prd003-dependency-analysis R2.1-R2.6, R5.1-R5.4.
func (r *Resolver) Resolve(ctx context.Context, entryPoints []string) *types.Dependencies {
	deps := &types.Dependencies{
		LocalFiles:        []string{},
		NpmPackages:       []types.NpmPackage{},
		WorkspacePackages: []types.WorkspacePackage{},
	}
	if len(entryPoints) == 0 {
		return deps
	}

	p := &pass{
		visited:   make(map[string]bool),
		local:     make(map[string]bool),
		npm:       make(map[string]map[string]bool),
		workspace: make(map[string]*workspaceEntry),
	}

	for _, entry := range entryPoints {
		rel := filepath.ToSlash(filepath.Clean(entry))
		p.local[rel] = true
		p.queue = append(p.queue, rel)
	}

	for len(p.queue) > 0 {
		if ctx.Err() != nil {
			break // Return whatever resolved so far.
		}
		file := p.queue[0]
		p.queue = p.queue[1:]
		if p.visited[file] {
			continue
		}
		p.visited[file] = true

		r.walkFile(ctx, p, file)
	}

	return p.collect(deps)
}

// walkFile extracts and classifies the imports of one already-closured
// file. Unreadable or unparseable files stay in the closure as leaves.
func (r *Resolver) walkFile(ctx context.Context, p *pass, file string) {
	ext := filepath.Ext(file)
	if !Walkable(ext) {
		return
	}
	data, err := os.ReadFile(filepath.Join(r.root, file))
	if err != nil {
		return
	}

	fromDir := filepath.Dir(file)
	for _, imp := range extractImports(ctx, data, ext) {
		p.record(r.classify(imp, fromDir), imp)
	}
}

// classify routes one import specifier through the bucket precedence:
// configured alias, scoped package, bare package, relative path.
func (r *Resolver) classify(imp, fromDir string) Outcome {
	switch {
	case r.strategy.MatchesAlias(imp):
		return r.strategy.ResolveAliased(imp)
	case strings.HasPrefix(imp, "@"):
		return r.strategy.ResolveScoped(imp)
	case !strings.HasPrefix(imp, ".") && !strings.HasPrefix(imp, "/"):
		return r.strategy.ResolveBare(imp)
	default:
		return r.strategy.ResolveRelative(imp, fromDir)
	}
}

// record folds one resolution outcome into the pass state. Unresolved
// imports are recorded as external: resolution legitimately fails for
// dynamically-constructed or environment-specific paths.
func (p *pass) record(oc Outcome, imp string) {
	switch oc.Kind {
	case LocalFile:
		if !p.local[oc.Path] {
			p.local[oc.Path] = true
			p.queue = append(p.queue, oc.Path)
		}
	case WorkspacePackage:
		entry := p.workspace[oc.Package]
		if entry == nil {
			entry = &workspaceEntry{path: oc.Path, imported: make(map[string]bool)}
			p.workspace[oc.Package] = entry
		}
		entry.imported[oc.Specifier] = true
	case ExternalPackage:
		p.addNpm(oc.Package, oc.Specifier)
	case Unresolved:
		p.addNpm(imp, "default")
	}
}

func (p *pass) addNpm(name, specifier string) {
	if p.npm[name] == nil {
		p.npm[name] = make(map[string]bool)
	}
	p.npm[name][specifier] = true
}

// collect renders the pass state into the sorted, deduplicated result form.
func (p *pass) collect(deps *types.Dependencies) *types.Dependencies {
	for file := range p.local {
		deps.LocalFiles = append(deps.LocalFiles, file)
	}
	sort.Strings(deps.LocalFiles)

	for name, specs := range p.npm {
		deps.NpmPackages = append(deps.NpmPackages, types.NpmPackage{
			Name:       name,
			Specifiers: sortedKeys(specs),
		})
	}
	sort.Slice(deps.NpmPackages, func(i, j int) bool {
		return deps.NpmPackages[i].Name < deps.NpmPackages[j].Name
	})

	for name, entry := range p.workspace {
		deps.WorkspacePackages = append(deps.WorkspacePackages, types.WorkspacePackage{
			Name:          name,
			ResolvedPath:  entry.path,
			ImportedFiles: sortedKeys(entry.imported),
		})
	}
	sort.Slice(deps.WorkspacePackages, func(i, j int) bool {
		return deps.WorkspacePackages[i].Name < deps.WorkspacePackages[j].Name
	})

	return deps
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
