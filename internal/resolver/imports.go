// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd003-dependency-analysis R2 (import extraction).
package resolver

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// langByExt maps walkable source extensions to their tree-sitter grammar.
var langByExt = map[string]*sitter.Language{
	".ts":  typescript.GetLanguage(),
	".tsx": tsx.GetLanguage(),
	".js":  javascript.GetLanguage(),
	".jsx": javascript.GetLanguage(),
	".mjs": javascript.GetLanguage(),
	".cjs": javascript.GetLanguage(),
}

// importQueries are run independently so a pattern an individual grammar
// rejects does not disable the others.
var importQueries = []string{
	// import x from "y"; import "y";
	`(import_statement source: (string) @source)`,
	// export { x } from "y"; export * from "y";
	`(export_statement source: (string) @source)`,
	// require("y")
	`(call_expression function: (identifier) @fn arguments: (arguments (string) @source))`,
	// import("y")
	`(call_expression function: (import) arguments: (arguments (string) @source))`,
}

// Walkable reports whether the resolver can extract imports from files
// with this extension.
func Walkable(ext string) bool {
	_, ok := langByExt[ext]
	return ok
}

// extractImports parses one source file and returns its import specifiers
// in document order, deduplicated. Parse failures yield nil; the caller
// treats the file as a leaf of the graph.
func extractImports(ctx context.Context, data []byte, ext string) []string {
	lang, ok := langByExt[ext]
	if !ok {
		return nil
	}
	root, err := sitter.ParseCtx(ctx, data, lang)
	if err != nil || root == nil {
		return nil
	}

	seen := make(map[string]bool)
	var imports []string

	for _, pattern := range importQueries {
		for _, spec := range runImportQuery(pattern, lang, root, data) {
			if spec == "" || seen[spec] {
				continue
			}
			seen[spec] = true
			imports = append(imports, spec)
		}
	}
	return imports
}

// runImportQuery executes one query and returns the cleaned @source
// captures. For require() matches, the @fn capture gates on the callee
// actually being require.
func runImportQuery(pattern string, lang *sitter.Language, root *sitter.Node, content []byte) []string {
	q, err := sitter.NewQuery([]byte(pattern), lang)
	if err != nil {
		return nil
	}

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, root)

	var specs []string
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}

		var fn, source string
		for _, c := range m.Captures {
			switch q.CaptureNameForId(c.Index) {
			case "fn":
				fn = c.Node.Content(content)
			case "source":
				source = c.Node.Content(content)
			}
		}
		if fn != "" && fn != "require" {
			continue
		}
		if spec := cleanSpecifier(source); spec != "" {
			specs = append(specs, spec)
		}
	}
	return specs
}

// cleanSpecifier strips quotes from a captured string node. Template
// strings with interpolation are dynamically constructed and skipped.
func cleanSpecifier(raw string) string {
	spec := strings.Trim(raw, "\"'`")
	if strings.Contains(spec, "${") {
		return ""
	}
	return spec
}
