package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/superelastix/internal/network"
	"github.com/vk/superelastix/internal/raster"
)

const smoothingBlueprint = `
component "in" {
  NameOfClass    = "ImageSource"
  Dimensionality = 2
  PixelType      = "float"
}

component "smooth" {
  NameOfClass = "BoxSmoothingFilter"
  Radius      = 1
}

component "out" {
  NameOfClass = "ImageSink"
}

connection "in" "smooth" {}
connection "smooth" "out" {}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewConfig(t *testing.T) {
	t.Run("defaults are filled in", func(t *testing.T) {
		cfg, err := NewConfig(Config{ConfigPaths: []string{"a.hcl"}})
		require.NoError(t, err)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, "none", cfg.TraceExporter)
	})

	cases := map[string]struct {
		cfg  Config
		want string
	}{
		"no configuration": {Config{}, "at least one blueprint"},
		"bad level":        {Config{ConfigPaths: []string{"a"}, LogLevel: "loud"}, "invalid log-level"},
		"bad format":       {Config{ConfigPaths: []string{"a"}, LogFormat: "xml"}, "invalid log-format"},
		"bad exporter":     {Config{ConfigPaths: []string{"a"}, TraceExporter: "zipkin"}, "invalid trace exporter"},
		"empty input path": {Config{ConfigPaths: []string{"a"}, Inputs: map[string]string{"in": ""}}, "name and path are required"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewConfig(tc.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestRunSmoothsImage(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	conf := writeFile(t, dir, "smooth.hcl", smoothingBlueprint)
	input := filepath.Join(dir, "input.yaml")
	im := raster.New(raster.Float, 3, 3)
	im.Pixels[4] = 9
	require.NoError(t, raster.WriteFile(input, im))

	cfg, err := NewConfig(Config{
		ConfigPaths:     []string{conf},
		Inputs:          map[string]string{"in": input},
		Outputs:         map[string]string{"out": filepath.Join(dir, "output.yaml")},
		GraphOut:        filepath.Join(dir, "blueprint.dot"),
		MetricsTextfile: filepath.Join(dir, "selx.prom"),
		LogFile:         filepath.Join(dir, "selx.log"),
	})
	require.NoError(t, err)
	a, logs := SetupAppTest(t, cfg)

	// --- Act ---
	err = a.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	out, err := raster.ReadFile(filepath.Join(dir, "output.yaml"))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, out.Pixels[4], 1e-9)
	assert.InDelta(t, 9.0/4, out.Pixels[0], 1e-9)

	dot, err := os.ReadFile(filepath.Join(dir, "blueprint.dot"))
	require.NoError(t, err)
	assert.Contains(t, string(dot), `"in" -> "smooth"`)

	prom, err := os.ReadFile(filepath.Join(dir, "selx.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), "selx_executions_total")

	logFile, err := os.ReadFile(filepath.Join(dir, "selx.log"))
	require.NoError(t, err)
	assert.Contains(t, string(logFile), "Output written.")
	assert.Contains(t, logs.String(), "run_id=")
}

func TestRunRejectsUnknownInput(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	conf := writeFile(t, dir, "smooth.hcl", smoothingBlueprint)
	cfg, err := NewConfig(Config{
		ConfigPaths: []string{conf},
		Inputs:      map[string]string{"smooth": filepath.Join(dir, "input.yaml")},
	})
	require.NoError(t, err)
	a, _ := SetupAppTest(t, cfg)

	// --- Act ---
	err = a.Run(context.Background())

	// --- Assert ---
	require.ErrorIs(t, err, network.ErrUsage)
}

func TestRunRequiresEverySource(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	conf := writeFile(t, dir, "smooth.hcl", smoothingBlueprint)
	cfg, err := NewConfig(Config{ConfigPaths: []string{conf}})
	require.NoError(t, err)
	a, _ := SetupAppTest(t, cfg)

	// --- Act ---
	err = a.Run(context.Background())

	// --- Assert ---
	require.ErrorIs(t, err, network.ErrUsage)
	assert.Contains(t, err.Error(), "Source component 'in' has no input")
}

func TestRunOptimizationBlueprint(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	conf := writeFile(t, dir, "optimize.yaml", `
Component:
  - Name: metric
    NameOfClass: SSDMetric3rdParty
    Target: 5
  - Name: optimizer
    HasAcceptingInterface: MetricDerivativeInterface
Connection:
  - Out: metric
    In: optimizer
`)
	cfg, err := NewConfig(Config{ConfigPaths: []string{conf}})
	require.NoError(t, err)
	a, logs := SetupAppTest(t, cfg)

	// --- Act ---
	err = a.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "Optimization finished.")
	assert.Contains(t, logs.String(), "component=optimizer")
}
