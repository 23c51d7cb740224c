package examples

import (
	"fmt"
	"strconv"

	"github.com/vk/superelastix/internal/criteria"
)

// MetricValue is the handle behind MetricValueInterface.
type MetricValue interface {
	Value(x float64) float64
}

// MetricDerivative is the handle behind MetricDerivativeInterface.
type MetricDerivative interface {
	Derivative(x float64) float64
}

// Optimizer is the handle behind OptimizerUpdateInterface.
type Optimizer interface {
	Position() float64
	Iterations() int
}

// Transform is the handle behind TransformedImageInterface.
type Transform interface {
	Transform(x float64) float64
}

func floatSetting(c criteria.Criterion, dst *float64) (criteria.Status, error) {
	if len(c.Values) != 1 {
		return criteria.Failed, fmt.Errorf("%s accepts exactly one value, got %d", c.Key, len(c.Values))
	}
	v, err := strconv.ParseFloat(c.Values[0], 64)
	if err != nil {
		return criteria.Failed, fmt.Errorf("%s must be a number, got %q", c.Key, c.Values[0])
	}
	*dst = v
	return criteria.Satisfied, nil
}

func intSetting(c criteria.Criterion, dst *int) (criteria.Status, error) {
	if len(c.Values) != 1 {
		return criteria.Failed, fmt.Errorf("%s accepts exactly one value, got %d", c.Key, len(c.Values))
	}
	v, err := strconv.Atoi(c.Values[0])
	if err != nil || v < 1 {
		return criteria.Failed, fmt.Errorf("%s must be a positive integer, got %q", c.Key, c.Values[0])
	}
	*dst = v
	return criteria.Satisfied, nil
}
