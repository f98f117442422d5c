// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd006-progress-relay R1, R2, R3;
//
//	docs/ARCHITECTURE § Streaming Progress Relay.
package transfer

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/petar-djukic/inflight/pkg/types"
)

// ErrRemote wraps an explicit error event from the remote analysis
// pipeline. Distinct from ErrStreamEnded: the server told us to fail.
var ErrRemote = errors.New("remote analysis failed")

// ErrStreamEnded is returned when the event stream closes before a
// terminal complete event. A dropped connection is not a silent success.
var ErrStreamEnded = errors.New("stream ended without completion")

// event is one parsed server-sent event.
type event struct {
	name string // "event:" field; empty for unlabeled events
	data string // Concatenated "data:" lines
}

// eventScanner incrementally parses a text/event-stream body. Reads are
// buffered, so event boundaries need not align with network read
// boundaries.
type eventScanner struct {
	r *bufio.Reader
}

func newEventScanner(r io.Reader) *eventScanner {
	return &eventScanner{r: bufio.NewReader(r)}
}

// next returns the next blank-line-delimited event. io.EOF signals a clean
// end of stream; a pending partial event at EOF is delivered first.
func (s *eventScanner) next() (*event, error) {
	ev := &event{}
	var dataLines []string
	sawField := false

	for {
		line, err := s.r.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")

		if line == "" && err == nil {
			if sawField {
				ev.data = strings.Join(dataLines, "\n")
				return ev, nil
			}
			continue // Leading blank line; keep scanning.
		}

		if line != "" && !strings.HasPrefix(line, ":") {
			field, value, _ := strings.Cut(line, ":")
			value = strings.TrimPrefix(value, " ")
			switch field {
			case "event":
				ev.name = value
				sawField = true
			case "data":
				dataLines = append(dataLines, value)
				sawField = true
			}
		}

		if err != nil {
			if sawField {
				ev.data = strings.Join(dataLines, "\n")
				return ev, nil
			}
			return nil, err
		}
	}
}

// progressPayload is the body of a progress event.
type progressPayload struct {
	Percentage int    `json:"percentage"`
	Step       string `json:"step"`
}

// errorPayload is the body of an error event.
type errorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// consumeEventStream drains one SSE body until a terminal event, remapping
// server-side percentages (0-100) into the [low, high] slice of overall
// progress so the caller's progress bar stays monotonic across phases.
//
// Malformed JSON on a data line is swallowed and the event skipped. An
// explicit error event is different: it parsed (or didn't) into an order
// to fail, and that failure propagates rather than being eaten by the same
// guard that tolerates junk lines.
func consumeEventStream(body io.Reader, onProgress ProgressFunc, low, high int) (*types.ShareResult, error) {
	sc := newEventScanner(body)

	for {
		ev, err := sc.next()
		if err != nil {
			if err == io.EOF {
				return nil, ErrStreamEnded
			}
			return nil, fmt.Errorf("%w: %v", ErrStreamEnded, err)
		}

		switch ev.name {
		case "error":
			msg := strings.TrimSpace(ev.data)
			var ep errorPayload
			if json.Unmarshal([]byte(ev.data), &ep) == nil {
				if ep.Error != "" {
					msg = ep.Error
				} else if ep.Message != "" {
					msg = ep.Message
				}
			}
			return nil, fmt.Errorf("%w: %s", ErrRemote, msg)

		case "complete":
			var res types.ShareResult
			if err := json.Unmarshal([]byte(ev.data), &res); err != nil {
				continue // Malformed terminal payload; keep reading.
			}
			return &res, nil

		case "progress", "":
			var pp progressPayload
			if err := json.Unmarshal([]byte(ev.data), &pp); err != nil {
				continue
			}
			// Unlabeled events count as progress only when they carry
			// a step field (older server versions omit the label).
			if ev.name == "" && pp.Step == "" {
				continue
			}
			if onProgress != nil {
				onProgress(remapRange(pp.Percentage, low, high), pp.Step)
			}
		}
	}
}

// remapRange maps a 0-100 percentage into [low, high].
func remapRange(pct, low, high int) int {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return low + (high-low)*pct/100
}
