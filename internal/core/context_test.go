package core

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHelpers(t *testing.T) {
	fallback := slog.Default()
	assert.Same(t, fallback, LoggerFromContext(context.Background(), fallback))
	_, ok := ClientFromContext(context.Background())
	assert.False(t, ok)

	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := ContextWithLogger(context.Background(), l)
	ctx = ContextWithClient(ctx, ClientInfo{IP: "10.1.2.3", UserAgent: "curl/8"})

	assert.Same(t, l, LoggerFromContext(ctx, fallback))
	client, ok := ClientFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "10.1.2.3", client.IP)
}

func TestImporter_LogsThroughContextLogger(t *testing.T) {
	var buf bytes.Buffer
	reqLogger := slog.New(slog.NewTextHandler(&buf, nil)).With("request_id", "req-7")

	ctx := ContextWithLogger(context.Background(), reqLogger)
	ctx = ContextWithClient(ctx, ClientInfo{IP: "10.1.2.3", UserAgent: "curl/8"})

	_, err := NewImporter(newMemStore(), ImporterConfig{}).Import(ctx, strings.NewReader(sampleCSV(2)))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `msg="import started"`)
	assert.Contains(t, out, "client_ip=10.1.2.3")
	assert.Contains(t, out, `msg="import completed"`)
	assert.Contains(t, out, "request_id=req-7")
}
