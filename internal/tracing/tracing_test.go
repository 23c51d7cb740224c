package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Exporter: ExporterNone})
	require.NoError(t, err)

	_, span := p.Tracer().Start(context.Background(), "configure")
	span.End()

	assert.False(t, span.SpanContext().IsValid())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestStdoutProviderExportsSpans(t *testing.T) {
	// --- Arrange ---
	buf := &bytes.Buffer{}
	p, err := NewProvider(context.Background(), Config{Exporter: ExporterStdout, Writer: buf})
	require.NoError(t, err)

	// --- Act ---
	_, span := p.Tracer().Start(context.Background(), "selx.configure")
	span.End()
	require.NoError(t, p.Shutdown(context.Background()))

	// --- Assert ---
	assert.Contains(t, buf.String(), "selx.configure")
}

func TestUnsupportedExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Exporter: "carrier-pigeon"})
	assert.ErrorContains(t, err, "unsupported exporter type")
}

func TestNilProviderTracer(t *testing.T) {
	var p *Provider
	assert.NotNil(t, p.Tracer())
	assert.NoError(t, p.Shutdown(context.Background()))
}
