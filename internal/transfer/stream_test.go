// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package transfer

import (
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type progressRecord struct {
	pct  int
	step string
}

func TestConsumeEventStream_ProgressThenComplete(t *testing.T) {
	stream := "event: progress\n" +
		"data: {\"percentage\":50,\"step\":\"x\"}\n" +
		"\n" +
		"event: complete\n" +
		"data: {\"inflightUrl\":\"https://x\"}\n" +
		"\n"

	var got []progressRecord
	res, err := consumeEventStream(strings.NewReader(stream), func(pct int, step string) {
		got = append(got, progressRecord{pct, step})
	}, 0, 100)

	require.NoError(t, err)
	assert.Equal(t, "https://x", res.InflightURL)
	require.Len(t, got, 1)
	assert.Equal(t, progressRecord{50, "x"}, got[0])
}

func TestConsumeEventStream_EndsWithoutComplete(t *testing.T) {
	stream := "event: progress\n" +
		"data: {\"percentage\":10,\"step\":\"starting\"}\n" +
		"\n"

	_, err := consumeEventStream(strings.NewReader(stream), nil, 0, 100)
	assert.ErrorIs(t, err, ErrStreamEnded)
}

func TestConsumeEventStream_ErrorEventPropagates(t *testing.T) {
	stream := "event: error\n" +
		"data: {\"error\":\"sandbox exploded\"}\n" +
		"\n"

	_, err := consumeEventStream(strings.NewReader(stream), nil, 0, 100)
	require.ErrorIs(t, err, ErrRemote)
	assert.Contains(t, err.Error(), "sandbox exploded")
}

func TestConsumeEventStream_MalformedErrorEventStillFails(t *testing.T) {
	// An error event whose payload is junk is still an order to fail,
	// not a line to skip.
	stream := "event: error\n" +
		"data: not json at all\n" +
		"\n"

	_, err := consumeEventStream(strings.NewReader(stream), nil, 0, 100)
	assert.ErrorIs(t, err, ErrRemote)
}

func TestConsumeEventStream_MalformedProgressSkipped(t *testing.T) {
	stream := "event: progress\n" +
		"data: {broken json\n" +
		"\n" +
		"event: progress\n" +
		"data: {\"percentage\":80,\"step\":\"ok\"}\n" +
		"\n" +
		"event: complete\n" +
		"data: {\"inflightUrl\":\"https://y\"}\n" +
		"\n"

	var got []progressRecord
	res, err := consumeEventStream(strings.NewReader(stream), func(pct int, step string) {
		got = append(got, progressRecord{pct, step})
	}, 0, 100)

	require.NoError(t, err)
	assert.Equal(t, "https://y", res.InflightURL)
	require.Len(t, got, 1)
	assert.Equal(t, 80, got[0].pct)
}

func TestConsumeEventStream_UnlabeledEvents(t *testing.T) {
	// Older servers emit unlabeled events; they count as progress only
	// when a step field is present.
	stream := "data: {\"percentage\":25,\"step\":\"building\"}\n" +
		"\n" +
		"data: {\"percentage\":30}\n" +
		"\n" +
		"event: complete\n" +
		"data: {\"inflightUrl\":\"https://z\"}\n" +
		"\n"

	var got []progressRecord
	_, err := consumeEventStream(strings.NewReader(stream), func(pct int, step string) {
		got = append(got, progressRecord{pct, step})
	}, 0, 100)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "building", got[0].step)
}

func TestConsumeEventStream_FragmentedReads(t *testing.T) {
	// One byte per read: event boundaries never align with read
	// boundaries and parsing must still hold.
	stream := "event: progress\n" +
		"data: {\"percentage\":50,\"step\":\"x\"}\n" +
		"\n" +
		"event: complete\n" +
		"data: {\"inflightUrl\":\"https://x\"}\n" +
		"\n"

	var got []progressRecord
	res, err := consumeEventStream(iotest.OneByteReader(strings.NewReader(stream)), func(pct int, step string) {
		got = append(got, progressRecord{pct, step})
	}, 0, 100)

	require.NoError(t, err)
	assert.Equal(t, "https://x", res.InflightURL)
	assert.Len(t, got, 1)
}

func TestConsumeEventStream_Remap(t *testing.T) {
	stream := "event: progress\n" +
		"data: {\"percentage\":0,\"step\":\"a\"}\n" +
		"\n" +
		"event: progress\n" +
		"data: {\"percentage\":50,\"step\":\"b\"}\n" +
		"\n" +
		"event: progress\n" +
		"data: {\"percentage\":100,\"step\":\"c\"}\n" +
		"\n" +
		"event: complete\n" +
		"data: {}\n" +
		"\n"

	var got []progressRecord
	_, err := consumeEventStream(strings.NewReader(stream), func(pct int, step string) {
		got = append(got, progressRecord{pct, step})
	}, 45, 100)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 45, got[0].pct)
	assert.Equal(t, 72, got[1].pct)
	assert.Equal(t, 100, got[2].pct)

	// Monotonic within the reserved range.
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i].pct, got[i-1].pct)
	}
}

func TestRemapRange_Clamps(t *testing.T) {
	assert.Equal(t, 10, remapRange(-5, 10, 40))
	assert.Equal(t, 40, remapRange(250, 10, 40))
	assert.Equal(t, 25, remapRange(50, 10, 40))
}
