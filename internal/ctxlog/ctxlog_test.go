package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	t.Run("falls back to default logger", func(t *testing.T) {
		require.Same(t, slog.Default(), FromContext(context.Background()))
	})

	t.Run("returns embedded logger with attributes", func(t *testing.T) {
		// --- Arrange ---
		buf := &bytes.Buffer{}
		logger := slog.New(slog.NewTextHandler(buf, nil))
		ctx := With(WithLogger(context.Background(), logger), "node", "metric")

		// --- Act ---
		FromContext(ctx).Info("hello")

		// --- Assert ---
		assert.Contains(t, buf.String(), "node=metric")
		assert.Contains(t, buf.String(), "msg=hello")
	})
}
