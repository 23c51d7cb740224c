package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/vk/superelastix/internal/component"
	"github.com/vk/superelastix/internal/ctxlog"
)

// ValidateRegistry performs a strict parity check between what each variant
// declares and what a probe instance reports.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	if len(r.variants) == 0 {
		logger.Warn("Registry has no component variants; every selection will fail.")
	}

	for _, v := range r.variants {
		key := v.Key()
		c := v.New("registry-probe")
		if c == nil {
			errs = append(errs, fmt.Sprintf("variant '%s': constructor returned nil", key))
			continue
		}

		if c.ClassName() != v.ClassName {
			errs = append(errs, fmt.Sprintf("variant '%s': instance reports class '%s'", key, c.ClassName()))
		}

		got := c.TemplateProperties()
		if len(got) != len(v.TemplateProperties) {
			errs = append(errs, fmt.Sprintf("variant '%s': instance reports %d template properties, declared %d", key, len(got), len(v.TemplateProperties)))
		}
		for k, want := range v.TemplateProperties {
			if got[k] != want {
				errs = append(errs, fmt.Sprintf("variant '%s': template property '%s' is '%s' on the instance", key, k, got[k]))
			}
		}

		if c.Version() != v.Version {
			errs = append(errs, fmt.Sprintf("variant '%s': instance reports version '%s', declared '%s'", key, c.Version(), v.Version))
		} else if v.Version != "" {
			if _, err := semver.NewVersion(v.Version); err != nil {
				errs = append(errs, fmt.Sprintf("variant '%s': invalid version '%s': %v", key, v.Version, err))
			}
		}

		errs = append(errs, duplicateInterfaces(key, "accepting", c.AcceptingInterfaces())...)
		errs = append(errs, duplicateInterfaces(key, "providing", c.ProvidingInterfaces())...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	logger.Debug("Registry validation passed.", "variants", len(r.variants))
	return nil
}

func duplicateInterfaces(key, role string, ifaces []component.Interface) []string {
	var errs []string
	for i := range ifaces {
		for j := i + 1; j < len(ifaces); j++ {
			if ifaces[i].Equal(ifaces[j]) {
				errs = append(errs, fmt.Sprintf("variant '%s': %s interface %s declared twice", key, role, ifaces[i]))
			}
		}
	}
	return errs
}
