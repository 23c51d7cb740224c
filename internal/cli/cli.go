package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vk/superelastix/internal/app"
	"github.com/vk/superelastix/internal/tracing"
)

// EnvPrefix prefixes every environment variable the CLI reads.
const EnvPrefix = "SELX"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var cfg *app.Config
	cmd := &cobra.Command{
		Use:   "selx [flags] [BLUEPRINT...]",
		Short: "Assemble and run a component network from a blueprint.",
		Long: `selx selects one component for every node of a blueprint by matching the
node's criteria against the registered component variants, connects the
selected components and executes the resulting network.

Blueprints are .hcl, .yaml, .yml or .json files (or directories of them).
Several blueprints are merged in order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, positional []string) error {
			paths := append(v.GetStringSlice("conf"), positional...)
			if len(paths) == 0 {
				slog.Debug("No blueprint provided, printing usage and exiting.")
				return cmd.Help()
			}

			inputs, err := assignments("in", v.GetStringSlice("in"))
			if err != nil {
				return err
			}
			outputs, err := assignments("out", v.GetStringSlice("out"))
			if err != nil {
				return err
			}

			cfg, err = app.NewConfig(app.Config{
				ConfigPaths:     paths,
				Inputs:          inputs,
				Outputs:         outputs,
				GraphOut:        v.GetString("graphout"),
				LogFormat:       strings.ToLower(v.GetString("log-format")),
				LogLevel:        strings.ToLower(v.GetString("log-level")),
				LogFile:         v.GetString("logfile"),
				MetricsTextfile: v.GetString("metrics-textfile"),
				TraceExporter:   strings.ToLower(v.GetString("trace")),
				OTLPEndpoint:    v.GetString("otlp-endpoint"),
			})
			return err
		},
	}
	cmd.SetArgs(args)
	cmd.SetOut(output)
	cmd.SetErr(output)

	flags := cmd.Flags()
	flags.StringArrayP("conf", "c", nil, "Blueprint file or directory. Repeat to merge several.")
	flags.StringArray("in", nil, "Input file for a Source component, as name=path. Repeatable.")
	flags.StringArray("out", nil, "Output file for a Sink component, as name=path. Repeatable.")
	flags.String("graphout", "", "Write the loaded blueprint as a graphviz file.")
	flags.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flags.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.String("logfile", "", "Also append log output to this file.")
	flags.String("metrics-textfile", "", "Write Prometheus metrics to this file after the run.")
	flags.String("trace", tracing.ExporterNone, "Trace exporter. Options: 'none', 'stdout', 'otlp'.")
	flags.String("otlp-endpoint", "", "OTLP collector address for --trace=otlp (default localhost:4317).")
	if err := v.BindPFlags(flags); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if err := cmd.Execute(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if cfg == nil {
		// Help was requested or no blueprint was given.
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return cfg, false, nil
}

// assignments parses repeated name=path values.
func assignments(flag string, values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, raw := range values {
		name, path, ok := strings.Cut(raw, "=")
		if !ok || name == "" || path == "" {
			return nil, fmt.Errorf("invalid --%s %q: expected name=path", flag, raw)
		}
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("invalid --%s: '%s' given twice", flag, name)
		}
		out[name] = path
	}
	return out, nil
}
