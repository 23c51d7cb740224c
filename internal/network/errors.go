package network

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/superelastix/internal/dag"
)

var (
	// ErrConfiguration means the blueprint and registry cannot produce a
	// valid network.
	ErrConfiguration = errors.New("configuration error")
	// ErrUsage means the builder, network or filter was driven incorrectly.
	ErrUsage = errors.New("usage error")
	// ErrInternal means the engine reached a state its own checks rule out.
	ErrInternal = errors.New("internal consistency error")
	// ErrExecution means the network could not be executed.
	ErrExecution = errors.New("execution error")
	// ErrCycle means the updatable components depend on each other in a
	// loop. It is always reported together with ErrExecution.
	ErrCycle = dag.ErrCycle
)

// Stages reported by ConfigurationError.
const (
	StageNode        = "node"
	StageConnection  = "connection"
	StageHandshake   = "handshake"
	StageAmbiguity   = "ambiguity"
	StageConnections = "connections"
)

// Residual describes a component left with more than one candidate.
type Residual struct {
	Component  string
	Candidates int
	Classes    []string
}

func (r Residual) String() string {
	return fmt.Sprintf("%s (%d candidates: %s)", r.Component, r.Candidates, strings.Join(r.Classes, ", "))
}

// ConfigurationError explains why selection failed.
type ConfigurationError struct {
	Stage      string
	Component  string
	Upstream   string
	Downstream string
	Criterion  string
	Residual   []Residual
	Err        error
}

func (e *ConfigurationError) Error() string {
	var msg string
	switch e.Stage {
	case StageNode:
		if e.Err != nil {
			return fmt.Sprintf("invalid criterion %s for component '%s': %v", e.Criterion, e.Component, e.Err)
		}
		msg = fmt.Sprintf("too many criteria for component '%s': no candidate satisfies %s", e.Component, e.Criterion)
	case StageConnection:
		msg = fmt.Sprintf("too many criteria for connection '%s' -> '%s': no candidate of '%s' satisfies them", e.Upstream, e.Downstream, e.Component)
	case StageHandshake:
		msg = fmt.Sprintf("no candidate of '%s' is compatible with connection '%s' -> '%s'", e.Component, e.Upstream, e.Downstream)
	case StageAmbiguity:
		parts := make([]string, 0, len(e.Residual))
		for _, r := range e.Residual {
			parts = append(parts, r.String())
		}
		msg = "components are not uniquely selected: " + strings.Join(parts, "; ")
	case StageConnections:
		msg = fmt.Sprintf("component '%s' has unsatisfied accepting interfaces", e.Component)
	default:
		msg = "configuration failed"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes ErrConfiguration and the underlying cause.
func (e *ConfigurationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrConfiguration, e.Err}
	}
	return []error{ErrConfiguration}
}
