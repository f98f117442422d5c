// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd003-dependency-analysis R1 (result types).
package types

// NpmPackage is an external registry package referenced by the dependency
// closure. Specifiers accumulates the distinct sub-paths imported from the
// package ("default" when the bare name was imported).
type NpmPackage struct {
	Name       string   `json:"name"`
	Specifiers []string `json:"specifiers"`
}

// WorkspacePackage is an internally-owned package in the same multi-package
// repository, located on disk rather than in a registry. ResolvedPath is
// empty when the package directory could not be found.
type WorkspacePackage struct {
	Name          string   `json:"name"`
	ResolvedPath  string   `json:"resolvedPath,omitempty"`
	ImportedFiles []string `json:"importedFiles"`
}

// Dependencies is the three-bucket output of a resolution pass.
// LocalFiles is sorted, deduplicated, and always a superset of the entry
// points; package lists are deduplicated by name with specifier sets merged.
type Dependencies struct {
	LocalFiles        []string           `json:"localFiles"`
	NpmPackages       []NpmPackage       `json:"npmPackages"`
	WorkspacePackages []WorkspacePackage `json:"workspacePackages"`
}

// AnalysisMetadata records how a resolution pass was seeded and configured.
type AnalysisMetadata struct {
	ProjectRoot    string            `json:"projectRoot"`
	EntryPoints    []string          `json:"entryPoints"`
	AnalysisTimeMs int64             `json:"analysisTimeMs"`
	PathAliases    map[string]string `json:"pathAliases,omitempty"`
}

// DependencyAnalysisResult is the full output of the dependency-analysis
// operation: the changed files that seeded it, the resolved closure, and
// the pass metadata.
type DependencyAnalysisResult struct {
	ChangedFiles []ChangedFile    `json:"changedFiles"`
	Dependencies Dependencies     `json:"dependencies"`
	Metadata     AnalysisMetadata `json:"metadata"`
}
