package padfsm

import (
	"fmt"
	"math"
)

// DistKind selects the parametric family a Dist samples from
type DistKind int

const (
	// DistNone is an unset distribution; as a repeat limit it means unlimited
	DistNone DistKind = iota
	DistUniform
	DistNormal
	DistLogNormal
	DistBinomial
	DistGeometric
	DistPareto
	DistPoisson
	DistWeibull
	DistGamma
	DistBeta
)

var distNames = []string{
	"None", "Uniform", "Normal", "LogNormal", "Binomial", "Geometric",
	"Pareto", "Poisson", "Weibull", "Gamma", "Beta",
}

func (k DistKind) String() string {
	if k < 0 || int(k) >= len(distNames) {
		return fmt.Sprintf("DistKind(%d)", int(k))
	}
	return distNames[k]
}

// Dist describes how the engine samples a delay, size or count.
// Start is added to every sample and Max caps it when non-zero.
type Dist struct {
	Kind   DistKind
	Param1 float64
	Param2 float64
	Start  float64
	Max    float64
}

// Fixed returns a distribution that always yields v
func Fixed(v float64) Dist {
	return Dist{Kind: DistUniform, Param1: v, Param2: v}
}

// Range returns a uniform distribution over [lo, hi]
func Range(lo, hi float64) Dist {
	return Dist{Kind: DistUniform, Param1: lo, Param2: hi}
}

// IsFixed reports whether every sample of d is the same value
func (d Dist) IsFixed() bool {
	return d.Kind == DistUniform && d.Param1 == d.Param2
}

// IsSet reports whether d was given a kind
func (d Dist) IsSet() bool {
	return d.Kind != DistNone
}

func (d Dist) validate() error {
	if d.Kind < 0 || int(d.Kind) >= len(distNames) {
		return fmt.Errorf("unknown distribution kind %d", int(d.Kind))
	}
	for _, v := range []float64{d.Param1, d.Param2, d.Start, d.Max} {
		if math.IsNaN(v) {
			return fmt.Errorf("%s distribution has NaN parameter", d.Kind)
		}
	}
	if d.Kind != DistUniform {
		return nil
	}
	if d.Param1 < 0 {
		return fmt.Errorf("uniform distribution has negative bound %g", d.Param1)
	}
	if d.Param1 > d.Param2 {
		return fmt.Errorf("uniform distribution bounds reversed: [%g, %g]", d.Param1, d.Param2)
	}
	return nil
}
