// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types defines the shared data model for the inflight share
// pipeline: changed files, file maps, git diff info, and analysis results.
// Implements: prd001-share-pipeline R1 (data model);
//
//	docs/ARCHITECTURE § Data Model.
package types

import (
	"encoding/json"
	"fmt"
)

// ChangeType identifies how a file changed relative to the base branch.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeDeleted  ChangeType = "deleted"
)

// ChangedFile is one file record parsed from the diff against the base
// branch. Immutable once created; consumed as resolver input.
type ChangedFile struct {
	Path         string     `json:"path"`         // Repo-relative path
	ChangeType   ChangeType `json:"changeType"`   // added, modified, or deleted
	IsUIRelevant bool       `json:"isUIRelevant"` // Path suggests rendered output
}

// FileEntry is one payload entry in a FileMap. Text entries hold UTF-8
// content and marshal as a bare JSON string; binary entries hold base64
// content and marshal as {"content": ..., "encoding": "base64"}.
type FileEntry struct {
	Content string // UTF-8 text, or base64 when Binary
	Binary  bool
}

// binaryEntry is the wire form of a binary FileEntry.
type binaryEntry struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// Size returns the post-encoding byte length of the entry's content.
// This is the length the server's request-size ceiling sees.
func (e FileEntry) Size() int {
	return len(e.Content)
}

// MarshalJSON encodes text entries as a plain string and binary entries
// as an object with an explicit encoding tag.
func (e FileEntry) MarshalJSON() ([]byte, error) {
	if e.Binary {
		return json.Marshal(binaryEntry{Content: e.Content, Encoding: "base64"})
	}
	return json.Marshal(e.Content)
}

// UnmarshalJSON accepts either wire form.
func (e *FileEntry) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		e.Content = s
		e.Binary = false
		return nil
	}

	var b binaryEntry
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("file entry is neither string nor binary object: %w", err)
	}
	if b.Encoding != "base64" {
		return fmt.Errorf("unsupported file entry encoding %q", b.Encoding)
	}
	e.Content = b.Content
	e.Binary = true
	return nil
}

// FileMap maps repo-relative paths to their payload entries. Every key has
// survived exclusion filtering; the map is built once per share operation
// and only ever partitioned (never mutated) afterwards.
type FileMap map[string]FileEntry

// TotalSize returns the aggregate post-encoding byte size of all entries.
func (m FileMap) TotalSize() int {
	total := 0
	for _, e := range m {
		total += e.Size()
	}
	return total
}
