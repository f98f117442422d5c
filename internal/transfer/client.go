// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package transfer implements the HTTP client side of the Inflight share
// protocol: a health probe, the single-shot share call, and the chunked
// init/upload/finalize exchange, with progress relayed from the server's
// event stream.
// Implements: prd005-chunked-transfer R2, R3, R4;
//
//	docs/ARCHITECTURE § Transfer Protocol.
package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/petar-djukic/inflight/pkg/types"
)

// Progress ranges reserved per phase of a share operation. Local
// preparation owns 0-10; chunk uploads own 10-40; the remote analysis
// stream is remapped into 45-100.
const (
	UploadRangeLow  = 10
	UploadRangeHigh = 40
	AnalysisLow     = 45
	AnalysisHigh    = 100
)

// ErrUnreachable indicates the share service could not be contacted.
var ErrUnreachable = errors.New("share service unreachable")

// ErrUnauthorized indicates the service rejected our credentials.
var ErrUnauthorized = errors.New("authentication rejected")

// ErrTransfer wraps any non-success HTTP status during init, upload, or
// finalize. The server's error body is preserved verbatim.
var ErrTransfer = errors.New("transfer failed")

// ProgressFunc receives overall-percentage progress updates, strictly in
// event order.
type ProgressFunc func(percentage int, step string)

// Config configures the transfer client.
type Config struct {
	BaseURL    string       // Share service base URL (required)
	APIKey     string       // Bearer token
	HTTPClient *http.Client // Optional; defaults to a client with no timeout
}

// Client talks to the remote share service. Calls rely on the transport's
// default behavior for timeouts; a share is a single-shot operation and may
// legitimately wait on a slow remote build.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// NewClient creates a transfer client.
func NewClient(cfg Config) *Client {
	httpc := cfg.HTTPClient
	if httpc == nil {
		httpc = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpc:   httpc,
	}
}

// ShareRequest is the body of the single-shot share call and the metadata
// carried by the chunked init call.
type ShareRequest struct {
	Files             types.FileMap      `json:"files,omitempty"`
	GitDiff           *types.GitDiffInfo `json:"gitDiff,omitempty"`
	UserID            string             `json:"userId"`
	WorkspaceID       string             `json:"workspaceId,omitempty"`
	ExistingProjectID string             `json:"existingProjectId,omitempty"`
	GitURL            string             `json:"gitUrl,omitempty"`
}

// Health probes GET /health. Any transport failure or non-2xx status means
// the service is unreachable.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: health returned %s", ErrUnreachable, resp.Status)
	}
	return nil
}

// Share performs the single-shot POST /share exchange. The response is an
// event stream; remote percentages are remapped into the analysis range.
func (c *Client) Share(ctx context.Context, req ShareRequest, onProgress ProgressFunc) (*types.ShareResult, error) {
	resp, err := c.postJSON(ctx, "/share", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if onProgress != nil {
		onProgress(UploadRangeHigh, "Payload uploaded")
	}
	return consumeEventStream(resp.Body, onProgress, AnalysisLow, AnalysisHigh)
}

// chunkInitRequest announces the upcoming upload.
type chunkInitRequest struct {
	TotalChunks int                `json:"totalChunks"`
	TotalFiles  int                `json:"totalFiles"`
	TotalBytes  int                `json:"totalBytes"`
	GitDiff     *types.GitDiffInfo `json:"gitDiff,omitempty"`
	UserID      string             `json:"userId"`
	WorkspaceID string             `json:"workspaceId,omitempty"`
}

// chunkInitResponse carries the server-assigned session identifiers.
type chunkInitResponse struct {
	SessionID string `json:"sessionId"`
	SandboxID string `json:"sandboxId"`
}

// chunkUploadRequest carries one chunk of the file map.
type chunkUploadRequest struct {
	Files       types.FileMap `json:"files"`
	ChunkIndex  int           `json:"chunkIndex"`
	TotalChunks int           `json:"totalChunks"`
}

// chunkFinalizeRequest signals all chunks sent and requests analysis.
type chunkFinalizeRequest struct {
	WorkspaceID       string `json:"workspaceId,omitempty"`
	ExistingProjectID string `json:"existingProjectId,omitempty"`
	GitURL            string `json:"gitUrl,omitempty"`
}

// ShareChunked drives the chunked exchange: init, then each chunk strictly
// in index order, then finalize, whose response is the same event stream as
// the single-shot path. Any failed step is fatal for the whole share; no
// session resume is assumed of the remote contract.
//
// Implements: prd005-chunked-transfer R2.1-R2.5, R3.1-R3.3.
func (c *Client) ShareChunked(ctx context.Context, req ShareRequest, chunks []types.FileMap, onProgress ProgressFunc) (*types.ShareResult, error) {
	totalFiles := 0
	totalBytes := 0
	for _, chunk := range chunks {
		totalFiles += len(chunk)
		totalBytes += chunk.TotalSize()
	}

	initResp, err := c.postJSON(ctx, "/share/chunked/init", chunkInitRequest{
		TotalChunks: len(chunks),
		TotalFiles:  totalFiles,
		TotalBytes:  totalBytes,
		GitDiff:     req.GitDiff,
		UserID:      req.UserID,
		WorkspaceID: req.WorkspaceID,
	})
	if err != nil {
		return nil, fmt.Errorf("chunked init: %w", err)
	}
	var session chunkInitResponse
	decodeErr := json.NewDecoder(initResp.Body).Decode(&session)
	initResp.Body.Close()
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: decoding init response: %v", ErrTransfer, decodeErr)
	}
	if session.SessionID == "" {
		return nil, fmt.Errorf("%w: init returned no session id", ErrTransfer)
	}

	// Sequential uploads bound peak memory and preserve the index order
	// server-side reassembly may rely on.
	for i, chunk := range chunks {
		resp, err := c.postJSON(ctx, fmt.Sprintf("/share/chunked/%s/upload", session.SessionID), chunkUploadRequest{
			Files:       chunk,
			ChunkIndex:  i,
			TotalChunks: len(chunks),
		})
		if err != nil {
			return nil, fmt.Errorf("uploading chunk %d of %d: %w", i+1, len(chunks), err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if onProgress != nil {
			pct := remapRange((i+1)*100/len(chunks), UploadRangeLow, UploadRangeHigh)
			onProgress(pct, fmt.Sprintf("Uploaded chunk %d of %d", i+1, len(chunks)))
		}
	}

	finalResp, err := c.postJSON(ctx, fmt.Sprintf("/share/chunked/%s/finalize", session.SessionID), chunkFinalizeRequest{
		WorkspaceID:       req.WorkspaceID,
		ExistingProjectID: req.ExistingProjectID,
		GitURL:            req.GitURL,
	})
	if err != nil {
		return nil, fmt.Errorf("chunked finalize: %w", err)
	}
	defer finalResp.Body.Close()

	if onProgress != nil {
		onProgress(AnalysisLow, "Starting remote analysis")
	}

	result, err := consumeEventStream(finalResp.Body, onProgress, AnalysisLow, AnalysisHigh)
	if err != nil {
		return nil, err
	}
	if result.SandboxID == "" {
		result.SandboxID = session.SandboxID
	}
	return result, nil
}

// postJSON sends a JSON body with bearer auth. Transport failures map to
// ErrUnreachable, 401 to ErrUnauthorized, and any other non-2xx status to
// ErrTransfer carrying the server's body verbatim. The caller owns the
// response body on success.
func (c *Client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		serverMsg, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s: %s", ErrTransfer, resp.Status, strings.TrimSpace(string(serverMsg)))
	}
	return resp, nil
}
