// Package finance provides the pure numeric primitives underlying the
// underwriting engine: amortization math, operating-expense aggregation,
// break-even occupancy, and the NPV/IRR solvers.
//
// These functions are fail-fast: invalid arguments are caller bugs and are
// reported as errors immediately rather than tolerated.
package finance

import (
	"fmt"
	"math"

	"underwriter/internal/models"
)

// Pmt returns the fixed monthly payment that fully amortizes pv over nper
// months at the given fractional annual rate. A zero rate degenerates to
// straight-line pv/nper.
func Pmt(annualRate float64, nper int, pv float64) (float64, error) {
	if pv < 0 {
		return 0, fmt.Errorf("pmt: negative principal %v", pv)
	}
	if nper <= 0 {
		return 0, fmt.Errorf("pmt: non-positive term %d", nper)
	}
	if annualRate < 0 {
		return 0, fmt.Errorf("pmt: negative rate %v", annualRate)
	}

	if annualRate == 0 {
		return pv / float64(nper), nil
	}

	r := annualRate / 12
	factor := math.Pow(1+r, float64(nper))
	return pv * r * factor / (factor - 1), nil
}

// RemainingPrincipal returns the loan balance after paymentsMade monthly
// payments using the closed form
//
//	B = PV(1+r)^k - PMT * ((1+r)^k - 1) / r
//
// (straight-line when r = 0). Interest-only loans return the principal
// unchanged. The result is clamped to zero to absorb final-payment rounding.
func RemainingPrincipal(spec models.LoanSpec, paymentsMade int) (float64, error) {
	if spec.TermMonths <= 0 {
		return 0, fmt.Errorf("remaining principal: non-positive term %d", spec.TermMonths)
	}
	if paymentsMade < 0 {
		return 0, fmt.Errorf("remaining principal: negative payments made %d", paymentsMade)
	}
	if paymentsMade > spec.TermMonths {
		return 0, fmt.Errorf("remaining principal: %d payments exceeds %d-month term", paymentsMade, spec.TermMonths)
	}
	if spec.Principal < 0 {
		return 0, fmt.Errorf("remaining principal: negative principal %v", spec.Principal)
	}

	if spec.InterestOnly {
		return spec.Principal, nil
	}

	if spec.AnnualRate == 0 {
		pmt := spec.Principal / float64(spec.TermMonths)
		return math.Max(0, spec.Principal-pmt*float64(paymentsMade)), nil
	}

	pmt, err := Pmt(spec.AnnualRate, spec.TermMonths, spec.Principal)
	if err != nil {
		return 0, err
	}

	r := spec.AnnualRate / 12
	factor := math.Pow(1+r, float64(paymentsMade))
	balance := spec.Principal*factor - pmt*(factor-1)/r
	return math.Max(0, balance), nil
}

// TotalMonthlyDebtService sums a new-loan payment with optional subject-to
// and hybrid seller-financing payments.
func TotalMonthlyDebtService(newLoanPayment, subjectToPayment, hybridPayment float64) (float64, error) {
	if newLoanPayment < 0 || subjectToPayment < 0 || hybridPayment < 0 {
		return 0, fmt.Errorf("debt service: negative payment component (%v, %v, %v)",
			newLoanPayment, subjectToPayment, hybridPayment)
	}
	return newLoanPayment + subjectToPayment + hybridPayment, nil
}

// FixedMonthlyOps sums the fixed dollar expense line items.
func FixedMonthlyOps(ops models.OperatingInputs) (float64, error) {
	items := []float64{
		ops.MonthlyTaxes, ops.MonthlyInsurance, ops.MonthlyHOA,
		ops.MonthlyUtilities, ops.MonthlyMaintenance, ops.MonthlyOther,
	}
	total := 0.0
	for _, v := range items {
		if v < 0 {
			return 0, fmt.Errorf("fixed ops: negative line item %v", v)
		}
		total += v
	}
	return total, nil
}

// VariableExpensePct sums the variable expense percentages. Each individual
// percentage must be within [0,1]; the combined total is not bounded.
func VariableExpensePct(ops models.OperatingInputs) (float64, error) {
	pcts := []float64{ops.ManagementPct, ops.RepairsPct, ops.CapExPct, ops.OpExPct}
	total := 0.0
	for _, p := range pcts {
		if p < 0 || p > 1 {
			return 0, fmt.Errorf("variable ops: percentage %v outside [0,1]", p)
		}
		total += p
	}
	return total, nil
}

// VariableExpenseAmount converts the variable percentages to dollars against
// a gross monthly income base.
func VariableExpenseAmount(ops models.OperatingInputs, grossMonthlyIncome float64) (float64, error) {
	if grossMonthlyIncome < 0 {
		return 0, fmt.Errorf("variable ops: negative income base %v", grossMonthlyIncome)
	}
	pct, err := VariableExpensePct(ops)
	if err != nil {
		return 0, err
	}
	return grossMonthlyIncome * pct, nil
}

// BreakEvenOccupancy returns the occupancy fraction at which revenue covers
// the monthly obligations, clamped to [0,1]. revenueAtFull is gross monthly
// revenue at 100% occupancy and must be positive. When includeVariable is
// set, variable expenses at full occupancy count toward the obligations.
func BreakEvenOccupancy(fixedMonthly, debtService float64, ops models.OperatingInputs, revenueAtFull float64, includeVariable bool) (float64, error) {
	if revenueAtFull <= 0 {
		return 0, fmt.Errorf("break-even occupancy: non-positive revenue %v", revenueAtFull)
	}
	if fixedMonthly < 0 || debtService < 0 {
		return 0, fmt.Errorf("break-even occupancy: negative obligations (%v, %v)", fixedMonthly, debtService)
	}

	obligations := fixedMonthly + debtService
	if includeVariable {
		variable, err := VariableExpenseAmount(ops, revenueAtFull)
		if err != nil {
			return 0, err
		}
		obligations += variable
	}

	occupancy := obligations / revenueAtFull
	return math.Min(1, math.Max(0, occupancy)), nil
}
