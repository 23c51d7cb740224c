package criteria

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Reserved keys evaluated by the selection engine before a component's own
// predicate is consulted.
const (
	NameOfClass                  = "NameOfClass"
	NameOfInterface              = "NameOfInterface"
	Dimensionality               = "Dimensionality"
	PixelType                    = "PixelType"
	InternalComputationValueType = "InternalComputationValueType"
	HasAcceptingInterface        = "HasAcceptingInterface"
	HasProvidingInterface        = "HasProvidingInterface"
	Version                      = "Version"
)

// Names of the interfaces with special meaning to the network.
const (
	SourceInterface = "SourceInterface"
	SinkInterface   = "SinkInterface"
	UpdateInterface = "UpdateInterface"
)

// Criterion is a single key with its ordered list of values.
type Criterion struct {
	Key    string
	Values []string
}

func (c Criterion) String() string {
	return fmt.Sprintf("%s: [%s]", c.Key, strings.Join(c.Values, ", "))
}

// Map holds the criteria of a blueprint component or connection.
type Map map[string][]string

// Clone returns a deep copy of m. A nil map clones to an empty map.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = slices.Clone(v)
	}
	return out
}

// Equal reports whether both maps hold the same keys with the same ordered values.
func (m Map) Equal(other Map) bool {
	if len(m) != len(other) {
		return false
	}
	for k, v := range m {
		ov, ok := other[k]
		if !ok || !slices.Equal(v, ov) {
			return false
		}
	}
	return true
}

// Keys returns the keys of m in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Criteria returns the entries of m as criteria, ordered by key.
func (m Map) Criteria() []Criterion {
	out := make([]Criterion, 0, len(m))
	for _, k := range m.Keys() {
		out = append(out, Criterion{Key: k, Values: slices.Clone(m[k])})
	}
	return out
}

// InterfaceCriteria is the single-valued form of connection criteria used to
// match interface properties.
type InterfaceCriteria map[string]string

// Flatten converts connection criteria to interface criteria. Only the first
// value of each list is kept and keys with no values are dropped, so a
// connection can never ask an interface to match more than one value per key.
func Flatten(m Map) InterfaceCriteria {
	out := make(InterfaceCriteria, len(m))
	for k, v := range m {
		if len(v) == 0 {
			continue
		}
		out[k] = v[0]
	}
	return out
}
