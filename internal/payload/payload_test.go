// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package payload

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/inflight/pkg/types"
)

func writeTree(t *testing.T, files map[string][]byte) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		full := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, content, 0o644))
	}
	return dir
}

func TestAssembleAll(t *testing.T) {
	dir := writeTree(t, map[string][]byte{
		"src/page.tsx":            []byte("export default 1;\n"),
		"package.json":            []byte("{}\n"),
		".env":                    []byte("SECRET=1\n"),
		".env.production":         []byte("SECRET=2\n"),
		"secrets/.env":            []byte("SECRET=3\n"),
		"node_modules/x/index.js": []byte("module.exports = 1;\n"),
		"package-lock.json":       []byte("{}\n"),
		"public/logo.png":         {0x89, 'P', 'N', 'G', 0x00, 0x01},
	})

	files, stats, err := AssembleAll(dir)
	require.NoError(t, err)

	assert.Contains(t, files, "src/page.tsx")
	assert.Contains(t, files, "package.json")
	assert.Contains(t, files, "public/logo.png")

	// Env files are excluded in every mode; lockfiles and node_modules
	// never make it in.
	assert.NotContains(t, files, ".env")
	assert.NotContains(t, files, ".env.production")
	assert.NotContains(t, files, "secrets/.env")
	assert.NotContains(t, files, "package-lock.json")
	assert.NotContains(t, files, "node_modules/x/index.js")

	png := files["public/logo.png"]
	assert.True(t, png.Binary)
	decoded, err := base64.StdEncoding.DecodeString(png.Content)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G', 0x00, 0x01}, decoded)

	assert.Equal(t, 3, stats.FilesIncluded)
	assert.Equal(t, files.TotalSize(), stats.TotalBytes)
}

func TestAssembleFiles(t *testing.T) {
	dir := writeTree(t, map[string][]byte{
		"src/page.tsx":     []byte("export default 1;\n"),
		"src/lib/utils.ts": []byte("export const x = 1;\n"),
		"package.json":     []byte("{}\n"),
		"tsconfig.json":    []byte("{}\n"),
		".env.local":       []byte("SECRET=1\n"),
	})

	files, stats, err := AssembleFiles(dir, []string{
		"src/page.tsx",
		"src/lib/utils.ts",
		"src/deleted-since-analysis.ts",
		".env.local",
	})
	require.NoError(t, err)

	assert.Contains(t, files, "src/page.tsx")
	assert.Contains(t, files, "src/lib/utils.ts")

	// Essential configs ride along even though the selection never named
	// them.
	assert.Contains(t, files, "package.json")
	assert.Contains(t, files, "tsconfig.json")

	// Env exclusion holds even for an explicit selection.
	assert.NotContains(t, files, ".env.local")

	assert.Equal(t, 1, stats.FilesMissing)
	assert.Equal(t, 1, stats.FilesExcluded)
}

func TestSplitChunks_Partition(t *testing.T) {
	files := make(types.FileMap)
	for i := 0; i < 20; i++ {
		files[fmt.Sprintf("file-%02d.txt", i)] = types.FileEntry{
			Content: strings.Repeat("x", 10+i*7),
		}
	}

	const maxBytes = 100
	chunks := SplitChunks(files, maxBytes)
	require.NotEmpty(t, chunks)

	// No file omitted or duplicated across chunks.
	seen := map[string]int{}
	for _, chunk := range chunks {
		for path, entry := range chunk {
			seen[path]++
			assert.Equal(t, files[path], entry)
		}
	}
	assert.Len(t, seen, len(files))
	for path, count := range seen {
		assert.Equal(t, 1, count, "file %s appears %d times", path, count)
	}

	// Every chunk within the limit unless it holds one oversized file.
	for i, chunk := range chunks {
		if chunk.TotalSize() > maxBytes {
			assert.Len(t, chunk, 1, "oversized chunk %d must hold exactly one file", i)
		}
	}
}

func TestSplitChunks_OversizedFileAlone(t *testing.T) {
	files := types.FileMap{
		"small.txt": {Content: "tiny"},
		"huge.bin":  {Content: strings.Repeat("y", 500), Binary: true},
	}

	chunks := SplitChunks(files, 100)
	require.Len(t, chunks, 2)

	var oversized types.FileMap
	for _, c := range chunks {
		if _, ok := c["huge.bin"]; ok {
			oversized = c
		}
	}
	require.NotNil(t, oversized)
	assert.Len(t, oversized, 1)
}

func TestSplitChunks_Empty(t *testing.T) {
	assert.Nil(t, SplitChunks(types.FileMap{}, 100))
}

func TestNeedsChunking(t *testing.T) {
	small := types.FileMap{"a.txt": {Content: "hello"}}
	assert.False(t, NeedsChunking(small))

	big := types.FileMap{"b.txt": {Content: strings.Repeat("z", MaxSingleShotBytes+1)}}
	assert.True(t, NeedsChunking(big))
}
