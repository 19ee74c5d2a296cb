// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dataLine(v any) string {
	b, _ := json.Marshal(v)
	return DataPrefix + string(b) + "\n\n"
}

func contentBody(parts ...string) string {
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(dataLine(map[string]string{"content": p, "type": TypeChunk}))
	}
	sb.WriteString(dataLine(map[string]string{"type": TypeEnd}))
	return sb.String()
}

// =============================================================================
// CONSUME TESTS
// =============================================================================

func TestConsume_HiThere(t *testing.T) {
	body := "data: {\"content\":\"Hi\"}\n" +
		"data: {\"content\":\" there\"}\n" +
		"data: {\"type\":\"end\"}\n"

	var seen []string
	res, err := Consume(context.Background(), strings.NewReader(body), "", func(delta, acc string) {
		seen = append(seen, acc)
	})
	require.NoError(t, err)
	assert.Equal(t, "Hi there", res.Text)
	assert.Equal(t, StateFinalized, res.State)
	assert.Equal(t, []string{"Hi", "Hi there"}, seen)
}

func TestConsume_ConcatenatesInArrivalOrder(t *testing.T) {
	cases := [][]string{
		{"a"},
		{"The", " quick", " brown", " fox"},
		{"日本", "語", "🙂", "\n", "line"},
		{"data: ", "{\"nested\":true}"},
	}
	for _, parts := range cases {
		body := contentBody(parts...)
		// One byte per read forces every line across chunk boundaries.
		res, err := Consume(context.Background(), iotest.OneByteReader(strings.NewReader(body)), "", nil)
		require.NoError(t, err)
		assert.Equal(t, strings.Join(parts, ""), res.Text)
		assert.Equal(t, StateFinalized, res.State)
	}
}

func TestConsume_SkipsMalformedFrame(t *testing.T) {
	body := "data: {\"content\":\"one\"}\n" +
		"data: {not json}\n" +
		"data: {\"content\":\" two\"}\n" +
		"data: {\"type\":\"end\"}\n"

	res, err := Consume(context.Background(), strings.NewReader(body), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "one two", res.Text)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 4, res.Frames)
}

func TestConsume_IgnoresNonDataLines(t *testing.T) {
	body := ": keep-alive\n" +
		"event: message\n" +
		"data:{\"content\":\"no space\"}\n" +
		"data: {\"content\":\"\",\"type\":\"chunk\"}\n" +
		"data: {\"content\":\"kept\"}\r\n" +
		"data: {\"type\":\"end\"}\r\n"

	res, err := Consume(context.Background(), strings.NewReader(body), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "kept", res.Text)
}

func TestConsume_ErrorFrame(t *testing.T) {
	body := dataLine(map[string]string{"content": "partial"}) +
		dataLine(map[string]string{"error": "rate limited", "type": TypeError}) +
		dataLine(map[string]string{"content": "never"})

	res, err := Consume(context.Background(), strings.NewReader(body), "", nil)
	require.Error(t, err)

	var fe *FrameError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "rate limited", err.Error())
	assert.Equal(t, StateErrored, res.State)
	assert.Equal(t, "partial", res.Text)
}

func TestConsume_StopsAtEnd(t *testing.T) {
	body := contentBody("done") + dataLine(map[string]string{"content": " extra"})
	res, err := Consume(context.Background(), strings.NewReader(body), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "done", res.Text)
}

func TestConsume_EOFWithoutEndFinalizes(t *testing.T) {
	body := "data: {\"content\":\"cut\"}\ndata: {\"content\":\" off\"}"
	res, err := Consume(context.Background(), strings.NewReader(body), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "cut off", res.Text)
	assert.Equal(t, StateFinalized, res.State)
}

func TestConsume_ReadErrorKeepsPartial(t *testing.T) {
	r := io.MultiReader(
		strings.NewReader("data: {\"content\":\"half\"}\n"),
		iotest.ErrReader(errors.New("connection reset")),
	)
	res, err := Consume(context.Background(), r, "", nil)

	var se *StreamError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "half", se.Partial)
	assert.Equal(t, "half", res.Text)
	assert.Equal(t, "connection reset", err.Error())
}

func TestConsume_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Consume(ctx, strings.NewReader(contentBody("x")), "", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConsume_Latin1Charset(t *testing.T) {
	// "café" with é encoded as 0xE9 in ISO-8859-1.
	body := "data: {\"content\":\"caf\xe9\"}\ndata: {\"type\":\"end\"}\n"
	res, err := Consume(context.Background(), strings.NewReader(body), "iso-8859-1", nil)
	require.NoError(t, err)
	assert.Equal(t, "café", res.Text)
}

// =============================================================================
// FRAME TESTS
// =============================================================================

func TestParseFrame_Precedence(t *testing.T) {
	tests := []struct {
		payload string
		want    FrameKind
	}{
		{`{"content":"x","type":"chunk"}`, FrameContent},
		{`{"type":"end","content":"x"}`, FrameEnd},
		{`{"error":"bad","content":"x"}`, FrameErrorKind},
		{`{"type":"chunk","content":""}`, FrameIgnored},
		{`{}`, FrameIgnored},
		{`42`, FrameMalformed},
		{`{"content":`, FrameMalformed},
	}
	for _, tc := range tests {
		got := ParseFrame(tc.payload)
		assert.Equal(t, tc.want, got.Kind, "payload %s", tc.payload)
	}
}

// =============================================================================
// MACHINE TESTS
// =============================================================================

func TestMachine_Transitions(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, StateIdle, m.State())

	_, err := m.Apply(Frame{Kind: FrameContent, Content: "x"})
	var ite *InvalidTransitionError
	require.ErrorAs(t, err, &ite, "frames are rejected before Open")

	tr, err := m.Open()
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingFirstByte, tr.To)

	tr, _ = m.Apply(Frame{Kind: FrameMalformed})
	assert.Equal(t, EffectSkip, tr.Effect)
	assert.Equal(t, StateAwaitingFirstByte, tr.To, "skip leaves the state unchanged")

	tr, _ = m.Apply(Frame{Kind: FrameContent, Content: "a"})
	assert.Equal(t, StateAccumulating, tr.To)
	assert.Equal(t, "a", tr.Delta)

	tr, _ = m.Apply(Frame{Kind: FrameEnd})
	assert.Equal(t, EffectFinalize, tr.Effect)
	assert.Equal(t, StateFinalized, m.State())

	_, err = m.Apply(Frame{Kind: FrameContent, Content: "late"})
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, "a", m.Text())
}

func TestMachine_FailAfterTerminal(t *testing.T) {
	m := NewMachine()
	m.Open()
	m.Apply(Frame{Kind: FrameErrorKind, Error: "x"})
	assert.Equal(t, StateErrored, m.State())

	_, err := m.Fail(errors.New("late"))
	assert.Error(t, err)
	assert.Equal(t, "x", m.Err().Error())
}

func TestDecoder_DiscardsOversizeLine(t *testing.T) {
	huge := DataPrefix + strings.Repeat("x", MaxLineSize+10) + "\n"
	body := huge + "data: {\"content\":\"ok\"}\n"
	res, err := Consume(context.Background(), strings.NewReader(body), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Text)
	assert.Equal(t, 1, res.Skipped)
}
