// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package payload reads a selected file set into an in-memory file map and
// splits oversized maps into size-bounded upload chunks.
// Implements: prd004-file-selection R3, R4;
//
//	docs/ARCHITECTURE § Payload Assembler.
package payload

import (
	"encoding/base64"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/petar-djukic/inflight/internal/classify"
	"github.com/petar-djukic/inflight/pkg/types"
)

const (
	// MaxSingleShotBytes is the aggregate payload size above which the
	// chunked transfer path is used instead of a single POST.
	MaxSingleShotBytes = 3_500_000

	// MaxChunkBytes bounds a single chunk's aggregate size, reflecting
	// the remote endpoint's request-size ceiling.
	MaxChunkBytes = 3_000_000
)

// Stats counts what happened during assembly.
type Stats struct {
	FilesIncluded int
	FilesExcluded int
	FilesMissing  int // Referenced by selection but absent on disk
	FilesFailed   int // Present but unreadable
	TotalBytes    int // Post-encoding aggregate
}

// AssembleAll walks the full tree from root, applying the classifier's
// exclusion and binary rules to every regular file.
func AssembleAll(root string) (types.FileMap, *Stats, error) {
	files := make(types.FileMap)
	stats := &Stats{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Unreadable subtree; keep walking.
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if classify.Excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if classify.Excluded(rel) {
			stats.FilesExcluded++
			return nil
		}

		addFile(files, stats, root, rel)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walking %s: %w", root, err)
	}

	stats.TotalBytes = files.TotalSize()
	return files, stats, nil
}

// AssembleFiles reads only the given repo-relative paths, plus the
// essential config files present on disk, so the resolver's entry-driven
// closure still yields a buildable project even when configuration is not
// import-reachable. Missing files are counted and skipped: the selection
// may reference files deleted between analysis and read.
func AssembleFiles(root string, paths []string) (types.FileMap, *Stats, error) {
	files := make(types.FileMap)
	stats := &Stats{}

	selection := append([]string{}, paths...)
	for _, name := range classify.EssentialFiles() {
		if _, err := os.Stat(filepath.Join(root, name)); err == nil {
			selection = append(selection, name)
		}
	}

	for _, rel := range selection {
		rel = filepath.ToSlash(filepath.Clean(rel))
		if _, ok := files[rel]; ok {
			continue
		}
		if classify.Excluded(rel) {
			stats.FilesExcluded++
			continue
		}
		if _, err := os.Stat(filepath.Join(root, rel)); err != nil {
			stats.FilesMissing++
			continue
		}
		addFile(files, stats, root, rel)
	}

	stats.TotalBytes = files.TotalSize()
	return files, stats, nil
}

// addFile reads one file into the map, base64-encoding binary content.
// Read failures are counted, not fatal.
func addFile(files types.FileMap, stats *Stats, root, rel string) {
	data, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		stats.FilesFailed++
		return
	}

	if classify.IsBinary(rel, data) {
		files[rel] = types.FileEntry{
			Content: base64.StdEncoding.EncodeToString(data),
			Binary:  true,
		}
	} else {
		files[rel] = types.FileEntry{Content: string(data)}
	}
	stats.FilesIncluded++
}

// NeedsChunking reports whether the map exceeds the single-shot ceiling.
func NeedsChunking(files types.FileMap) bool {
	return files.TotalSize() > MaxSingleShotBytes
}
