package cfr

import "math"

// Variant selects which of the four CFR regret/strategy weighting rules a
// Solver uses. The four flavors differ only in two scalar weight functions,
// so they are modeled as a closed enumeration rather than runtime
// polymorphism — the hot recursive path never makes an indirect call to pick
// a weighting rule.
type Variant int

const (
	Vanilla Variant = iota
	Linear
	CFRPlus
	DCFR
)

func (v Variant) String() string {
	switch v {
	case Vanilla:
		return "vanilla"
	case Linear:
		return "linear"
	case CFRPlus:
		return "cfr+"
	case DCFR:
		return "dcfr"
	default:
		return "unknown"
	}
}

// ClampsRegret reports whether the variant floors regrets at 0 on every
// write, which in turn requires InfoSetTable reads to take the entry lock.
func (v Variant) ClampsRegret() bool {
	return v == CFRPlus
}

// DCFRParams holds the three exponents that shape Discounted CFR's weighting.
// The zero value is invalid; use DefaultDCFRParams.
type DCFRParams struct {
	Alpha float64
	Beta  float64
	Gamma float64
}

// DefaultDCFRParams returns the parameters recommended by the DCFR paper and
// used when a Solver is constructed without overriding them.
func DefaultDCFRParams() DCFRParams {
	return DCFRParams{Alpha: 1.5, Beta: 0, Gamma: 2}
}

// weights bundles the two weighting functions a single CFR iteration needs:
// regretWeight(t, instantaneousRegret) for the regret delta of one action,
// and strategyWeight(t) for the cumulative-strategy delta shared by all
// actions at a node.
type weights struct {
	variant Variant
	dcfr    DCFRParams
}

func newWeights(v Variant, dcfr DCFRParams) weights {
	return weights{variant: v, dcfr: dcfr}
}

// regretWeight returns w_R(t) for an instantaneous regret value r. Vanilla
// and CFR+ ignore r; DCFR picks between its alpha and beta discount
// depending on r's sign.
func (w weights) regretWeight(t int, r float64) float64 {
	switch w.variant {
	case Vanilla, CFRPlus:
		return 1
	case Linear:
		return float64(t)
	case DCFR:
		tf := float64(t)
		if r > 0 {
			ta := math.Pow(tf, w.dcfr.Alpha)
			return ta / (ta + 1)
		}
		tb := math.Pow(tf, w.dcfr.Beta)
		return tb / (tb + 1)
	default:
		return 1
	}
}

// strategyWeight returns w_S(t).
func (w weights) strategyWeight(t int) float64 {
	switch w.variant {
	case Vanilla:
		return 1
	case Linear, CFRPlus:
		return float64(t)
	case DCFR:
		tf := float64(t)
		return math.Pow(tf/(tf+1), w.dcfr.Gamma)
	default:
		return 1
	}
}
