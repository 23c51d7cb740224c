package component

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/vk/superelastix/internal/criteria"
)

// Evaluate decides whether c meets a criterion. Reserved keys are handled
// here; template properties are checked next; everything else is left to
// the component's own MeetsCriterion.
func Evaluate(c Component, crit criteria.Criterion) (criteria.Status, error) {
	switch crit.Key {
	case criteria.NameOfClass:
		if len(crit.Values) != 1 {
			return criteria.Failed, fmt.Errorf("%s accepts exactly one value, got %d", crit.Key, len(crit.Values))
		}
		return statusOf(crit.Values[0] == c.ClassName()), nil
	case criteria.HasAcceptingInterface:
		return statusOf(hasAll(c.AcceptingInterfaces(), crit.Values)), nil
	case criteria.HasProvidingInterface:
		return statusOf(hasAll(c.ProvidingInterfaces(), crit.Values)), nil
	case criteria.Version:
		return meetsVersion(c.Version(), crit.Values)
	}

	status, err := criteria.CheckTemplateProperties(c.TemplateProperties(), crit)
	if err != nil || status != criteria.Unknown {
		return status, err
	}
	return c.MeetsCriterion(crit)
}

func statusOf(ok bool) criteria.Status {
	if ok {
		return criteria.Satisfied
	}
	return criteria.Failed
}

func hasAll(ifaces []Interface, names []string) bool {
	for _, name := range names {
		found := false
		for _, i := range ifaces {
			if i.Name == name {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// meetsVersion requires the component version to satisfy every constraint.
func meetsVersion(raw string, constraints []string) (criteria.Status, error) {
	cs := make([]*semver.Constraints, 0, len(constraints))
	for _, s := range constraints {
		c, err := semver.NewConstraint(s)
		if err != nil {
			return criteria.Failed, fmt.Errorf("invalid version constraint %q: %w", s, err)
		}
		cs = append(cs, c)
	}
	if raw == "" {
		return criteria.Failed, nil
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return criteria.Failed, fmt.Errorf("component version %q: %w", raw, err)
	}
	for _, c := range cs {
		if !c.Check(v) {
			return criteria.Failed, nil
		}
	}
	return criteria.Satisfied, nil
}
