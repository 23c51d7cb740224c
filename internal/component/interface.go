package component

import (
	"sort"
	"strings"

	"github.com/vk/superelastix/internal/criteria"
)

// Interface is a tagged capability of a component. Two interfaces are the
// same capability when their name and properties are equal.
type Interface struct {
	Name       string
	Properties criteria.Properties
}

// NewInterface builds an interface tag from a name and optional key/value
// property pairs.
func NewInterface(name string, kv ...string) Interface {
	props := make(criteria.Properties, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		props[kv[i]] = kv[i+1]
	}
	return Interface{Name: name, Properties: props}
}

// property looks a key up, treating NameOfInterface as the interface name.
func (i Interface) property(key string) (string, bool) {
	if key == criteria.NameOfInterface {
		return i.Name, true
	}
	v, ok := i.Properties[key]
	return v, ok
}

// MeetsCriteria reports whether every key of ic is a property of i with an
// equal value. Empty criteria are met by every interface.
func (i Interface) MeetsCriteria(ic criteria.InterfaceCriteria) bool {
	for k, want := range ic {
		got, ok := i.property(k)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Equal reports whether a and b describe the same capability.
func (i Interface) Equal(other Interface) bool {
	if i.Name != other.Name || len(i.Properties) != len(other.Properties) {
		return false
	}
	for k, v := range i.Properties {
		if ov, ok := other.Properties[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

func (i Interface) String() string {
	if len(i.Properties) == 0 {
		return i.Name
	}
	keys := make([]string, 0, len(i.Properties))
	for k := range i.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+i.Properties[k])
	}
	return i.Name + "<" + strings.Join(parts, ",") + ">"
}

// InterfaceStatus is the outcome of checking whether one component can
// accept a connection from another.
type InterfaceStatus int

const (
	// Success means exactly one accepting interface can bind.
	Success InterfaceStatus = iota
	// Multiple means more than one accepting interface can bind.
	Multiple
	// NoAccepter means no accepting interface meets the connection criteria.
	NoAccepter
	// NoProvider means accepting interfaces meet the criteria but the other
	// side provides none of them.
	NoProvider
)

func (s InterfaceStatus) String() string {
	switch s {
	case Success:
		return "success"
	case Multiple:
		return "multiple"
	case NoAccepter:
		return "noaccepter"
	case NoProvider:
		return "noprovider"
	}
	return "invalid"
}

// Compatible reports whether the status allows the pair to be connected.
func (s InterfaceStatus) Compatible() bool {
	return s == Success || s == Multiple
}
