// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd003-dependency-analysis R3 (resolution strategy).
package resolver

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// OutcomeKind classifies where an import specifier resolved to.
type OutcomeKind int

const (
	// Unresolved means no local file or package location was found.
	Unresolved OutcomeKind = iota
	// LocalFile is a source file inside the project root.
	LocalFile
	// ExternalPackage is a registry (npm) dependency.
	ExternalPackage
	// WorkspacePackage is a monorepo-internal package found on disk.
	WorkspacePackage
)

// Outcome is the result of resolving one import specifier.
type Outcome struct {
	Kind      OutcomeKind
	Path      string // LocalFile: repo-relative file; WorkspacePackage: on-disk dir
	Package   string // Package name for external/workspace outcomes
	Specifier string // Sub-path imported from the package, or "default"
}

// Strategy resolves import specifiers by kind. Each method mirrors one
// bucket of the classification precedence, so the underlying engine can be
// swapped without changing the resolver's walk.
type Strategy interface {
	// MatchesAlias reports whether a configured path alias applies.
	MatchesAlias(imp string) bool
	// ResolveAliased rewrites an alias-matched import to a local path.
	ResolveAliased(imp string) Outcome
	// ResolveScoped resolves an @scope/name import against known
	// workspace locations, falling back to an external package.
	ResolveScoped(imp string) Outcome
	// ResolveBare records a bare specifier as an external package.
	ResolveBare(imp string) Outcome
	// ResolveRelative resolves ./ and ../ imports against the importing
	// file's directory.
	ResolveRelative(imp, fromDir string) Outcome
}

// sourceExts are the extension conventions tried when an import omits one.
var sourceExts = []string{".ts", ".tsx", ".js", ".jsx"}

// fsStrategy resolves against the real filesystem under a project root.
type fsStrategy struct {
	root     string
	patterns []aliasPattern // Sorted longest-prefix-first
}

// aliasPattern is one compilerOptions.paths entry with the wildcard split
// off: "@/*" -> prefix "@/", target "./src/".
type aliasPattern struct {
	prefix   string
	target   string
	wildcard bool
}

// newFSStrategy builds the default strategy from the project root and the
// alias map loaded from the TS/JS config.
func newFSStrategy(root string, aliases map[string]string) *fsStrategy {
	s := &fsStrategy{root: root}
	for pattern, target := range aliases {
		p := aliasPattern{prefix: pattern, target: target}
		if strings.HasSuffix(pattern, "*") {
			p.wildcard = true
			p.prefix = strings.TrimSuffix(pattern, "*")
			p.target = strings.TrimSuffix(target, "*")
		}
		s.patterns = append(s.patterns, p)
	}
	// Longest prefix wins so "@/components/*" beats "@/*".
	sort.Slice(s.patterns, func(i, j int) bool {
		return len(s.patterns[i].prefix) > len(s.patterns[j].prefix)
	})
	return s
}

func (s *fsStrategy) MatchesAlias(imp string) bool {
	return s.matchAlias(imp) != nil
}

func (s *fsStrategy) matchAlias(imp string) *aliasPattern {
	for i := range s.patterns {
		p := &s.patterns[i]
		if p.wildcard && strings.HasPrefix(imp, p.prefix) {
			return p
		}
		if !p.wildcard && imp == p.prefix {
			return p
		}
	}
	return nil
}

func (s *fsStrategy) ResolveAliased(imp string) Outcome {
	p := s.matchAlias(imp)
	if p == nil {
		return Outcome{Kind: Unresolved}
	}
	rewritten := p.target
	if p.wildcard {
		rewritten += strings.TrimPrefix(imp, p.prefix)
	}
	if rel, ok := s.resolveFile(filepath.Join(s.root, rewritten)); ok {
		return Outcome{Kind: LocalFile, Path: rel}
	}
	return Outcome{Kind: Unresolved}
}

func (s *fsStrategy) ResolveScoped(imp string) Outcome {
	parts := strings.SplitN(imp, "/", 3)
	if len(parts) < 2 {
		return s.ResolveBare(imp)
	}
	pkgName := parts[0] + "/" + parts[1]
	dirName := parts[1]

	// Workspace packages live in packages/ directories at the project
	// root or one or two levels above it (sibling monorepo layouts).
	candidates := []string{
		filepath.Join(s.root, "packages", dirName),
		filepath.Join(s.root, "..", "packages", dirName),
		filepath.Join(s.root, "..", "..", "packages", dirName),
	}
	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return Outcome{
				Kind:      WorkspacePackage,
				Package:   pkgName,
				Path:      filepath.Clean(dir),
				Specifier: imp,
			}
		}
	}

	specifier := "default"
	if len(parts) == 3 {
		specifier = parts[2]
	}
	return Outcome{Kind: ExternalPackage, Package: pkgName, Specifier: specifier}
}

func (s *fsStrategy) ResolveBare(imp string) Outcome {
	name, rest, found := strings.Cut(imp, "/")
	specifier := "default"
	if found && rest != "" {
		specifier = rest
	}
	return Outcome{Kind: ExternalPackage, Package: name, Specifier: specifier}
}

func (s *fsStrategy) ResolveRelative(imp, fromDir string) Outcome {
	if rel, ok := s.resolveFile(filepath.Join(s.root, fromDir, imp)); ok {
		return Outcome{Kind: LocalFile, Path: rel}
	}
	return Outcome{Kind: Unresolved}
}

// resolveFile tries the extension and directory-index conventions against
// an absolute candidate path, returning the repo-relative slash path.
func (s *fsStrategy) resolveFile(abs string) (string, bool) {
	try := func(p string) (string, bool) {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			return "", false
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil || strings.HasPrefix(rel, "..") {
			return "", false
		}
		return filepath.ToSlash(rel), true
	}

	if rel, ok := try(abs); ok {
		return rel, true
	}
	for _, ext := range sourceExts {
		if rel, ok := try(abs + ext); ok {
			return rel, true
		}
	}
	for _, ext := range sourceExts {
		if rel, ok := try(filepath.Join(abs, "index"+ext)); ok {
			return rel, true
		}
	}
	return "", false
}
