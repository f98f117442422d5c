// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package auth manages the local credential file and the browser-based
// login handshake. The credential file is the only long-lived state the
// bridge keeps: written wholesale on (re)authentication, deleted wholesale
// on logout.
// Implements: prd007-auth R1, R2;
//
//	docs/ARCHITECTURE § Authentication.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/petar-djukic/inflight/pkg/types"
)

// ErrNoCredentials is returned when no credential file exists.
var ErrNoCredentials = errors.New("not logged in")

// Store reads and writes the credential file.
type Store struct {
	path string
}

// NewStore locates the per-user credential file (~/.inflight/auth.json).
func NewStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("locating home directory: %w", err)
	}
	return &Store{path: filepath.Join(home, ".inflight", "auth.json")}, nil
}

// NewStoreAt creates a store over an explicit file path.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// Path returns the credential file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the stored credentials. Returns ErrNoCredentials when the
// file does not exist.
func (s *Store) Load() (*types.AuthData, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoCredentials
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	var auth types.AuthData
	if err := json.Unmarshal(data, &auth); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}
	if auth.APIKey == "" {
		return nil, ErrNoCredentials
	}
	return &auth, nil
}

// Save writes the credentials wholesale with owner-only permissions.
func (s *Store) Save(auth *types.AuthData) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating credential directory: %w", err)
	}
	data, err := json.MarshalIndent(auth, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	return nil
}

// Delete removes the credential file. Deleting absent credentials is not
// an error.
func (s *Store) Delete() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing credentials: %w", err)
	}
	return nil
}
