package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_InvalidBlueprint(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	invalidHCL := `
		component "metric" {
			NameOfClass = "SSDMetric3rdParty"
		// Missing closing brace here
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	err := os.WriteFile(filePath, []byte(invalidHCL), 0600)
	require.NoError(t, err, "failed to set up test file")

	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(context.Background(), out, []string{filePath})

	// --- Assert ---
	require.Error(t, runErr, "run() should fail on a malformed blueprint")
	require.Contains(t, runErr.Error(), "failed to parse HCL file")
}

func TestRun_Success(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	blueprint := `
component "metric" {
  NameOfClass = "SSDMetric3rdParty"
  Target      = 1
}

component "optimizer" {
  NameOfClass = "GDOptimizer3rdParty"
}

connection "metric" "optimizer" {}
`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "optimize.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(blueprint), 0600))
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, []string{"--conf", filePath, "--graphout", filepath.Join(tempDir, "bp.dot")})

	// --- Assert ---
	require.NoError(t, err)
	require.Contains(t, out.String(), "Optimization finished.")
	require.FileExists(t, filepath.Join(tempDir, "bp.dot"))
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}
