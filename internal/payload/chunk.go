// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd005-chunked-transfer R1 (chunk splitting).
package payload

import (
	"sort"

	"github.com/petar-djukic/inflight/pkg/types"
)

// SplitChunks partitions a file map into chunks whose aggregate size stays
// within maxBytes, except that a single file exceeding the limit occupies a
// chunk of its own. Files are bin-packed greedily in ascending size order;
// the server reassembles by key, so cross-chunk ordering carries no meaning.
func SplitChunks(files types.FileMap, maxBytes int) []types.FileMap {
	if len(files) == 0 {
		return nil
	}
	if maxBytes <= 0 {
		maxBytes = MaxChunkBytes
	}

	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Slice(paths, func(i, j int) bool {
		si, sj := files[paths[i]].Size(), files[paths[j]].Size()
		if si != sj {
			return si < sj
		}
		return paths[i] < paths[j]
	})

	var chunks []types.FileMap
	current := make(types.FileMap)
	currentSize := 0

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, current)
			current = make(types.FileMap)
			currentSize = 0
		}
	}

	for _, path := range paths {
		entry := files[path]
		size := entry.Size()

		// An individually oversized file gets a dedicated chunk.
		if size > maxBytes {
			flush()
			chunks = append(chunks, types.FileMap{path: entry})
			continue
		}
		if currentSize+size > maxBytes {
			flush()
		}
		current[path] = entry
		currentSize += size
	}
	flush()

	return chunks
}
