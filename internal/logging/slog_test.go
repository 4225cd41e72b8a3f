package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newBufLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newBufLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg")
	log.Info(ctx, "inf")
	log.Warn(ctx, "wrn")
	log.Error(ctx, "err")

	out := buf.String()
	require.Contains(t, out, "level=DEBUG")
	require.Contains(t, out, "level=INFO")
	require.Contains(t, out, "level=WARN")
	require.Contains(t, out, "level=ERROR")
}

func TestSlogLogger_WithAddsAttrs(t *testing.T) {
	log, buf := newBufLogger(t)

	child := log.With("user", "abc")
	child.Info(context.Background(), "hello", "n", 3)

	out := buf.String()
	require.Contains(t, out, "user=abc")
	require.Contains(t, out, "n=3")
}

func TestNewDefault_LevelParsing(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error", "bogus", ""} {
		require.NotNil(t, NewDefault(lvl), "level %q", lvl)
	}
}

func TestSlogLogger_PairsFormatted(t *testing.T) {
	log, buf := newBufLogger(t)
	log.Info(context.Background(), "saved", "count", 2)
	require.True(t, strings.Contains(buf.String(), "msg=saved"))
}
