package blueprint

import (
	"slices"

	"github.com/vk/superelastix/internal/criteria"
)

// Compose merges other into b. Components and connections missing from b are
// added; existing ones gain the criteria keys they lack. A key present on
// both sides with different values is a conflict: b is left unchanged and
// Compose returns false.
func (b *Blueprint) Compose(other *Blueprint) bool {
	work := b.Clone()

	for _, name := range other.ComponentNames() {
		theirs, _ := other.GetComponent(name)
		mine, err := work.GetComponent(name)
		if err != nil {
			work.SetComponent(name, theirs)
			continue
		}
		merged, ok := mergeCriteria(mine, theirs)
		if !ok {
			return false
		}
		work.SetComponent(name, merged)
	}

	for _, c := range other.Connections() {
		mine, err := work.GetConnection(c.Upstream, c.Downstream)
		if err != nil {
			work.SetConnection(c.Upstream, c.Downstream, c.Criteria)
			continue
		}
		merged, ok := mergeCriteria(mine, c.Criteria)
		if !ok {
			return false
		}
		work.SetConnection(c.Upstream, c.Downstream, merged)
	}

	*b = *work
	return true
}

func mergeCriteria(mine, theirs criteria.Map) (criteria.Map, bool) {
	out := mine.Clone()
	for k, v := range theirs {
		existing, ok := out[k]
		if !ok {
			out[k] = slices.Clone(v)
			continue
		}
		if !slices.Equal(existing, v) {
			return nil, false
		}
	}
	return out, true
}
