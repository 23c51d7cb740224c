package criteria

import "fmt"

// Status is the outcome of evaluating one criterion against one candidate.
type Status int

const (
	// Unknown means the candidate does not recognise the criterion. The
	// candidate is kept.
	Unknown Status = iota
	Satisfied
	Failed
)

func (s Status) String() string {
	switch s {
	case Satisfied:
		return "satisfied"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Properties are the static template properties of a component variant,
// for example Dimensionality=2 and PixelType=float.
type Properties map[string]string

// CheckTemplateProperties evaluates a criterion against a variant's template
// properties. A key the variant does not declare is Unknown. A declared key
// needs exactly one value; anything else is an error.
func CheckTemplateProperties(props Properties, c Criterion) (Status, error) {
	declared, ok := props[c.Key]
	if !ok {
		return Unknown, nil
	}
	if len(c.Values) != 1 {
		return Failed, fmt.Errorf("template property %q accepts exactly one value, got %d", c.Key, len(c.Values))
	}
	if c.Values[0] == declared {
		return Satisfied, nil
	}
	return Failed, nil
}
