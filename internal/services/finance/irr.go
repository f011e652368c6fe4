package finance

import "math"

// IRR solver tuning. Rates outside [irrFloor, irrCeil] are clamped rather
// than allowed to diverge.
const (
	irrGuess         = 0.10
	irrFloor         = -0.99
	irrCeil          = 10.0
	irrTolerance     = 1e-4
	irrMaxIterations = 100
)

// NPV discounts a cash-flow series at the given rate. cashFlows[0] is the
// time-zero flow (typically the negative initial investment) and is not
// discounted.
func NPV(rate float64, cashFlows []float64) float64 {
	npv := 0.0
	for t, cf := range cashFlows {
		npv += cf / math.Pow(1+rate, float64(t))
	}
	return npv
}

// npvDerivative is the analytic derivative of NPV with respect to the rate.
func npvDerivative(rate float64, cashFlows []float64) float64 {
	d := 0.0
	for t, cf := range cashFlows {
		if t == 0 {
			continue
		}
		d -= float64(t) * cf / math.Pow(1+rate, float64(t+1))
	}
	return d
}

// IRR finds the rate at which NPV(rate, cashFlows) = 0 by Newton-Raphson
// from a 10% starting guess. Iterative numerical edge cases (near-zero
// derivative, extreme rates) clamp to a best estimate instead of failing;
// after irrMaxIterations the current estimate is returned.
func IRR(cashFlows []float64) float64 {
	if len(cashFlows) < 2 {
		return 0
	}

	rate := irrGuess
	for i := 0; i < irrMaxIterations; i++ {
		npv := NPV(rate, cashFlows)
		if math.Abs(npv) < irrTolerance {
			return rate
		}

		deriv := npvDerivative(rate, cashFlows)
		if math.Abs(deriv) < 1e-12 {
			return rate
		}

		next := rate - npv/deriv
		if next < irrFloor {
			next = irrFloor
		} else if next > irrCeil {
			next = irrCeil
		}

		if math.Abs(next-rate) < irrTolerance*1e-2 {
			return next
		}
		rate = next
	}

	return rate
}

// IRRWithExit appends a terminal value to the final period before solving.
// cashFlows[0] is the time-zero investment (negative).
func IRRWithExit(cashFlows []float64, exitValue float64) float64 {
	if len(cashFlows) < 2 {
		return 0
	}
	flows := make([]float64, len(cashFlows))
	copy(flows, cashFlows)
	flows[len(flows)-1] += exitValue
	return IRR(flows)
}
