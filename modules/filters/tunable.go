package filters

import (
	"fmt"
	"strconv"

	"github.com/vk/superelastix/internal/criteria"
)

// nonNegativeInt applies a single-valued integer setting.
func nonNegativeInt(c criteria.Criterion, dst *int) (criteria.Status, error) {
	if len(c.Values) != 1 {
		return criteria.Failed, fmt.Errorf("%s accepts exactly one value, got %d", c.Key, len(c.Values))
	}
	v, err := strconv.Atoi(c.Values[0])
	if err != nil || v < 0 {
		return criteria.Failed, fmt.Errorf("%s must be a non-negative integer, got %q", c.Key, c.Values[0])
	}
	*dst = v
	return criteria.Satisfied, nil
}

// neighbourhood calls fn with every offset in [-r, r]^dim.
func neighbourhood(dim, r int, fn func(offset []int)) {
	offset := make([]int, dim)
	for i := range offset {
		offset[i] = -r
	}
	for {
		fn(offset)
		axis := 0
		for axis < dim {
			offset[axis]++
			if offset[axis] <= r {
				break
			}
			offset[axis] = -r
			axis++
		}
		if axis == dim {
			return
		}
	}
}
