package examples

import (
	"context"
	"errors"
	"math"

	"github.com/vk/superelastix/internal/component"
	"github.com/vk/superelastix/internal/criteria"
	"github.com/vk/superelastix/internal/ctxlog"
)

// Settings of the gradient descent optimisers.
const (
	LearningRateKey       = "LearningRate"
	NumberOfIterationsKey = "NumberOfIterations"
	InitialPositionKey    = "InitialPosition"
)

const finiteDifferenceStep = 1e-6

// descent is the loop shared by both optimisers.
type descent struct {
	learningRate float64
	iterations   int
	initial      float64

	position float64
	done     int
}

func newDescent() descent {
	return descent{learningRate: 0.1, iterations: 100}
}

func (d *descent) meetsCriterion(c criteria.Criterion) (criteria.Status, error) {
	switch c.Key {
	case LearningRateKey:
		return floatSetting(c, &d.learningRate)
	case NumberOfIterationsKey:
		return intSetting(c, &d.iterations)
	case InitialPositionKey:
		return floatSetting(c, &d.initial)
	default:
		return criteria.Unknown, nil
	}
}

func (d *descent) reset() {
	d.position, d.done = d.initial, 0
}

func (d *descent) run(ctx context.Context, gradient func(x float64) float64) error {
	for d.done < d.iterations {
		if err := ctx.Err(); err != nil {
			return err
		}
		g := gradient(d.position)
		if math.IsNaN(g) || math.IsInf(g, 0) {
			return errors.New("gradient is not finite")
		}
		d.position -= d.learningRate * g
		d.done++
	}
	return nil
}

func (d *descent) Position() float64 { return d.position }
func (d *descent) Iterations() int   { return d.done }

// GDOptimizer3rdParty needs a metric that provides both value and derivative.
type GDOptimizer3rdParty struct {
	*component.Base
	descent
	value      MetricValue
	derivative MetricDerivative
}

func NewGDOptimizer3rdParty(name string) *GDOptimizer3rdParty {
	o := &GDOptimizer3rdParty{
		Base:    component.NewBase(name, GDOptimizer3rdPartyClass, nil),
		descent: newDescent(),
	}
	o.SetVersion(Version3rdParty)
	component.Accept(o.Base, component.NewInterface(MetricValueInterface), func(m MetricValue) error {
		o.value = m
		return nil
	})
	component.Accept(o.Base, component.NewInterface(MetricDerivativeInterface), func(m MetricDerivative) error {
		o.derivative = m
		return nil
	})
	o.Provides(component.NewInterface(OptimizerUpdateInterface), Optimizer(o))
	o.Provides(component.NewInterface(criteria.UpdateInterface), component.Updater(o))
	return o
}

func (o *GDOptimizer3rdParty) MeetsCriterion(c criteria.Criterion) (criteria.Status, error) {
	return o.meetsCriterion(c)
}

func (o *GDOptimizer3rdParty) BeforeUpdate(context.Context) error {
	o.reset()
	return nil
}

func (o *GDOptimizer3rdParty) Update(ctx context.Context) error {
	if err := o.run(ctx, o.derivative.Derivative); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("Optimization finished.", "component", o.Name(), "position", o.position, "value", o.value.Value(o.position))
	return nil
}

// GDOptimizer4thParty needs only a metric value and estimates the
// derivative by central differences.
type GDOptimizer4thParty struct {
	*component.Base
	descent
	value MetricValue
}

func NewGDOptimizer4thParty(name string) *GDOptimizer4thParty {
	o := &GDOptimizer4thParty{
		Base:    component.NewBase(name, GDOptimizer4thPartyClass, nil),
		descent: newDescent(),
	}
	o.SetVersion(Version4thParty)
	component.Accept(o.Base, component.NewInterface(MetricValueInterface), func(m MetricValue) error {
		o.value = m
		return nil
	})
	o.Provides(component.NewInterface(OptimizerUpdateInterface), Optimizer(o))
	o.Provides(component.NewInterface(ConflictinUpdateInterface), Optimizer(o))
	o.Provides(component.NewInterface(criteria.UpdateInterface), component.Updater(o))
	return o
}

func (o *GDOptimizer4thParty) MeetsCriterion(c criteria.Criterion) (criteria.Status, error) {
	return o.meetsCriterion(c)
}

func (o *GDOptimizer4thParty) BeforeUpdate(context.Context) error {
	o.reset()
	return nil
}

func (o *GDOptimizer4thParty) Update(ctx context.Context) error {
	gradient := func(x float64) float64 {
		h := finiteDifferenceStep
		return (o.value.Value(x+h) - o.value.Value(x-h)) / (2 * h)
	}
	if err := o.run(ctx, gradient); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("Optimization finished.", "component", o.Name(), "position", o.position, "value", o.value.Value(o.position))
	return nil
}
