package component

import "context"

// Updater is the handle provided under the UpdateInterface tag. Updatable
// components run in pipeline order when the network executes.
type Updater interface {
	BeforeUpdate(ctx context.Context) error
	Update(ctx context.Context) error
}

// FileReader turns a file into the data a Source expects.
type FileReader interface {
	ReadFile(path string) (any, error)
}

// FileWriter persists the data a Sink produces.
type FileWriter interface {
	WriteFile(path string, data any) error
}

// Source is the handle provided under the SourceInterface tag. It is the
// entry point for external data.
type Source interface {
	SetInput(data any) error
	FileReader() FileReader
}

// Sink is the handle provided under the SinkInterface tag. It is the exit
// point for results.
type Sink interface {
	// InitializedOutput returns an empty output object of the type the sink
	// will produce, usable before the network runs.
	InitializedOutput() any
	Output() (any, error)
	FileWriter() FileWriter
}
