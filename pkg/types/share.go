// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd001-share-pipeline R4 (results), R5 (progress events).
package types

import "time"

// ShareResult is the terminal payload of a successful share: the URLs and
// identifiers the remote service assigned to the generated prototype.
type ShareResult struct {
	InflightURL string `json:"inflightUrl"`
	VersionID   string `json:"versionId,omitempty"`
	ProjectID   string `json:"projectId,omitempty"`
	SandboxID   string `json:"sandboxId,omitempty"`
	SandboxURL  string `json:"sandboxUrl,omitempty"`
	PreviewURL  string `json:"previewUrl,omitempty"`
	NgrokURL    string `json:"ngrokUrl,omitempty"`
	DiffSummary string `json:"diffSummary,omitempty"`
}

// ProgressEvent is one step of a share operation's progress stream.
// Events are emitted strictly in order and percentages are monotonic
// across the local and remote phases of a single operation.
type ProgressEvent struct {
	OperationID string `json:"operationId"` // Correlates events of one share
	Percentage  int    `json:"percentage"`  // 0-100 overall
	Step        string `json:"step"`        // Human-readable step description
}

// AuthData is the sole long-lived local state: the credentials obtained
// from the browser login handshake. Replaced wholesale on reauthentication,
// deleted wholesale on logout.
type AuthData struct {
	APIKey             string    `json:"apiKey"`
	UserID             string    `json:"userId"`
	Email              string    `json:"email,omitempty"`
	Name               string    `json:"name,omitempty"`
	DefaultWorkspaceID string    `json:"defaultWorkspaceId,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}
