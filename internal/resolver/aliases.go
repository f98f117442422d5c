// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd003-dependency-analysis R4 (path alias loading).
package resolver

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// tsConfig is the slice of tsconfig.json the resolver cares about.
type tsConfig struct {
	CompilerOptions struct {
		BaseURL string              `json:"baseUrl"`
		Paths   map[string][]string `json:"paths"`
	} `json:"compilerOptions"`
}

// trailingComma matches a comma directly before a closing brace or bracket,
// which tsconfig files routinely carry.
var trailingComma = regexp.MustCompile(`,\s*([}\]])`)

// LoadAliases reads compilerOptions.paths from tsconfig.json (or
// jsconfig.json) at the project root. Each alias pattern maps to its first
// target, prefixed with baseUrl. Missing or unparseable configs yield an
// empty map; alias support is an optimization, never a failure.
func LoadAliases(root string) map[string]string {
	aliases := make(map[string]string)

	var raw []byte
	for _, name := range []string{"tsconfig.json", "jsconfig.json"} {
		if data, err := os.ReadFile(filepath.Join(root, name)); err == nil {
			raw = data
			break
		}
	}
	if raw == nil {
		return aliases
	}

	var cfg tsConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		// tsconfig is JSONC in practice; strip line comments and
		// trailing commas, then retry.
		cleaned := trailingComma.ReplaceAll(stripLineComments(raw), []byte("$1"))
		if err := json.Unmarshal(cleaned, &cfg); err != nil {
			return aliases
		}
	}

	base := cfg.CompilerOptions.BaseURL
	if base == "" {
		base = "."
	}
	for pattern, targets := range cfg.CompilerOptions.Paths {
		if len(targets) == 0 {
			continue
		}
		target := targets[0]
		if !strings.HasPrefix(target, ".") && !filepath.IsAbs(target) {
			target = "./" + target
		}
		aliases[pattern] = filepath.ToSlash(filepath.Join(base, target))
	}
	return aliases
}

// stripLineComments removes // comments outside string literals.
func stripLineComments(data []byte) []byte {
	out := make([]byte, 0, len(data))
	inString := false
	for i := 0; i < len(data); i++ {
		b := data[i]
		switch {
		case inString:
			if b == '\\' && i+1 < len(data) {
				out = append(out, b, data[i+1])
				i++
				continue
			}
			if b == '"' {
				inString = false
			}
			out = append(out, b)
		case b == '"':
			inString = true
			out = append(out, b)
		case b == '/' && i+1 < len(data) && data[i+1] == '/':
			for i < len(data) && data[i] != '\n' {
				i++
			}
			if i < len(data) {
				out = append(out, '\n')
			}
		default:
			out = append(out, b)
		}
	}
	return out
}
