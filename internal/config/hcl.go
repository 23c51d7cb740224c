package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/superelastix/internal/criteria"
)

// hclFile is the top-level structure of an HCL blueprint file.
type hclFile struct {
	Include     []string         `hcl:"include,optional"`
	Components  []*hclComponent  `hcl:"component,block"`
	Connections []*hclConnection `hcl:"connection,block"`
}

type hclComponent struct {
	Name     string    `hcl:"name,label"`
	Body     hcl.Body  `hcl:",remain"`
	DefRange hcl.Range `hcl:",def_range"`
}

type hclConnection struct {
	Out      string    `hcl:"out,label"`
	In       string    `hcl:"in,label"`
	Body     hcl.Body  `hcl:",remain"`
	DefRange hcl.Range `hcl:",def_range"`
}

type hclParser struct{}

func (hclParser) Parse(path string, data []byte) (*Document, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	doc := &Document{Includes: root.Include}
	seen := make(map[string]*hclComponent)
	for _, c := range root.Components {
		if prev, ok := seen[c.Name]; ok {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, hcl.Diagnostics{duplicate("component", c.Name, prev.DefRange, c.DefRange)})
		}
		seen[c.Name] = c
		m, diags := criteriaFromBody(c.Body)
		if diags.HasErrors() {
			return nil, fmt.Errorf("component '%s' in %s: %w", c.Name, path, diags)
		}
		doc.Components = append(doc.Components, Component{Name: c.Name, Criteria: m})
	}
	for _, c := range root.Connections {
		m, diags := criteriaFromBody(c.Body)
		if diags.HasErrors() {
			return nil, fmt.Errorf("connection '%s' -> '%s' in %s: %w", c.Out, c.In, path, diags)
		}
		doc.Connections = append(doc.Connections, Connection{Upstream: c.Out, Downstream: c.In, Criteria: m})
	}
	return doc, nil
}

func duplicate(kind, name string, first, second hcl.Range) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  fmt.Sprintf("Duplicate %s %q", kind, name),
		Detail:   fmt.Sprintf("A %s named %q was already declared at %s.", kind, name, first),
		Subject:  second.Ptr(),
	}
}

// criteriaFromBody reads every attribute of a block as a criterion. A
// scalar becomes a single value, a list or tuple one value per element.
func criteriaFromBody(body hcl.Body) (criteria.Map, hcl.Diagnostics) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	m := make(criteria.Map, len(attrs))
	for name, attr := range attrs {
		v, valDiags := attr.Expr.Value(nil)
		diags = append(diags, valDiags...)
		if valDiags.HasErrors() {
			continue
		}
		values, err := criterionValues(v)
		if err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid criterion value",
				Detail:   fmt.Sprintf("Criterion %q: %s.", name, err),
				Subject:  attr.Expr.Range().Ptr(),
			})
			continue
		}
		m[name] = values
	}
	return m, diags
}

func criterionValues(v cty.Value) ([]string, error) {
	if v.IsNull() || !v.IsWhollyKnown() {
		return nil, fmt.Errorf("value must be known and not null")
	}
	t := v.Type()
	if !(t.IsListType() || t.IsTupleType() || t.IsSetType()) {
		s, err := scalar(v)
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	}
	out := make([]string, 0, v.LengthInt())
	for it := v.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		s, err := scalar(ev)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func scalar(v cty.Value) (string, error) {
	if v.IsNull() {
		return "", fmt.Errorf("null element")
	}
	if !v.Type().IsPrimitiveType() {
		return "", fmt.Errorf("unsupported value of type %s", v.Type().FriendlyName())
	}
	s, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", err
	}
	return s.AsString(), nil
}
