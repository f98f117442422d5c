// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package classify decides whether a file belongs in a share payload and
// whether its content is binary. Exclusion is path-pattern based; binary
// detection is an extension allow-list plus a content sniff.
// Implements: prd004-file-selection R1, R2;
//
//	docs/ARCHITECTURE § File Classifier.
package classify

import (
	"path/filepath"
	"strings"
)

// sniffLimit bounds how much of a file the content sniff examines.
const sniffLimit = 8 * 1024

// nonPrintableRatio is the fraction of non-printable, non-whitespace bytes
// above which a sampled buffer is considered binary.
const nonPrintableRatio = 0.10

// excludedDirs are path segments that never contribute payload files:
// VCS metadata, dependency trees, build and cache output, coverage.
var excludedDirs = map[string]bool{
	".git":          true,
	".svn":          true,
	".hg":           true,
	"node_modules":  true,
	"dist":          true,
	"build":         true,
	"out":           true,
	".next":         true,
	".turbo":        true,
	".cache":        true,
	".parcel-cache": true,
	".vercel":       true,
	"coverage":      true,
	".nyc_output":   true,
	".idea":         true,
	".vscode":       true,
	"__pycache__":   true,
}

// excludedFiles are exact basenames excluded regardless of location:
// lockfiles and OS/editor cruft.
var excludedFiles = map[string]bool{
	"package-lock.json": true,
	"yarn.lock":         true,
	"pnpm-lock.yaml":    true,
	"bun.lockb":         true,
	".DS_Store":         true,
	"Thumbs.db":         true,
	"desktop.ini":       true,
	"npm-debug.log":     true,
	"yarn-error.log":    true,
}

// essentialFiles are config basenames a minimal UI build needs. They bypass
// directory and lockfile exclusion (never the env-file exclusion) and are
// force-included by the assembler's specific-selection mode.
var essentialFiles = map[string]bool{
	"package.json":       true,
	"tsconfig.json":      true,
	"jsconfig.json":      true,
	"next.config.js":     true,
	"next.config.mjs":    true,
	"next.config.ts":     true,
	"vite.config.js":     true,
	"vite.config.ts":     true,
	"tailwind.config.js": true,
	"tailwind.config.ts": true,
	"postcss.config.js":  true,
	"postcss.config.mjs": true,
	".eslintrc":          true,
	".eslintrc.json":     true,
	".eslintrc.js":       true,
	".prettierrc":        true,
	".prettierrc.json":   true,
	"components.json":    true,
}

// binaryExts is the extension allow-list for binary content: images, fonts,
// audio/video, archives, documents, and known binary artifacts.
var binaryExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
	".ico": true, ".bmp": true, ".avif": true, ".tiff": true,
	".woff": true, ".woff2": true, ".ttf": true, ".otf": true, ".eot": true,
	".mp3": true, ".mp4": true, ".wav": true, ".ogg": true, ".webm": true,
	".mov": true, ".avi": true, ".flac": true,
	".zip": true, ".gz": true, ".tar": true, ".rar": true, ".7z": true,
	".bz2": true, ".xz": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".bin": true,
	".wasm": true, ".node": true, ".lockb": true,
}

// Classification is the outcome of classifying one file.
type Classification struct {
	Binary   bool // Content must be base64-encoded
	Excluded bool // File must not appear in any payload
}

// Classify applies both the exclusion rules and binary detection to a file.
// Data may be a prefix of the file; only the first 8 KiB are sniffed.
func Classify(path string, data []byte) Classification {
	return Classification{
		Binary:   IsBinary(path, data),
		Excluded: Excluded(path),
	}
}

// Excluded reports whether the path must be filtered out of payloads.
// Env files are a hard security exclusion with no override; essential
// config files bypass every other pattern.
func Excluded(path string) bool {
	base := filepath.Base(path)

	if IsEnvFile(path) {
		return true
	}
	if essentialFiles[base] {
		return false
	}
	if excludedFiles[base] {
		return true
	}

	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if excludedDirs[seg] {
			return true
		}
	}
	return false
}

// IsEnvFile reports whether the basename matches the environment-file
// pattern: starts with ".env" or contains ".env." anywhere. These files
// routinely hold secrets and are never shareable.
func IsEnvFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".env") || strings.Contains(base, ".env.")
}

// IsBinary reports whether the file's content must be base64-encoded.
// Extension membership decides first; text-extension files are sniffed.
func IsBinary(path string, data []byte) bool {
	if binaryExts[strings.ToLower(filepath.Ext(path))] {
		return true
	}
	return sniffBinary(data)
}

// sniffBinary scans up to the first 8 KiB. A null byte is decisive; beyond
// that, more than 10% non-printable, non-whitespace bytes means binary.
// Bytes >= 0x80 are not counted against the ratio so multi-byte UTF-8
// text is not misclassified.
func sniffBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	sample := data
	if len(sample) > sniffLimit {
		sample = sample[:sniffLimit]
	}

	nonPrintable := 0
	for _, b := range sample {
		if b == 0 {
			return true
		}
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' && b != '\f' {
			nonPrintable++
		} else if b == 0x7f {
			nonPrintable++
		}
	}
	return float64(nonPrintable) > float64(len(sample))*nonPrintableRatio
}

// Essential reports whether the basename is on the always-include config
// allow-list used by specific-selection assembly.
func Essential(path string) bool {
	return essentialFiles[filepath.Base(path)]
}

// EssentialFiles returns the allow-list of config basenames the assembler
// force-includes in specific-selection mode.
func EssentialFiles() []string {
	names := make([]string, 0, len(essentialFiles))
	for name := range essentialFiles {
		names = append(names, name)
	}
	return names
}
