// Package underwrite composes the finance primitives and the cash-flow
// projector into per-deal metrics.
//
// The metric methods are queried reactively from live form state that may be
// transiently invalid, so non-positive denominators yield zero rather than an
// error; fail-fast validation belongs to the primitives underneath.
package underwrite

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"underwriter/internal/models"
	"underwriter/internal/services/finance"
	"underwriter/internal/services/projection"
)

// Calculator computes underwriting metrics for a single deal. It holds no
// state beyond the deal itself; construct one per call site.
type Calculator struct {
	Deal *models.DealState
}

// NewCalculator creates a calculator for the given deal.
func NewCalculator(deal *models.DealState) *Calculator {
	return &Calculator{Deal: deal}
}

// MonthlyGrossIncome is the income model's gross figure before vacancy.
func (c *Calculator) MonthlyGrossIncome() float64 {
	if c.Deal.Income == nil {
		return 0
	}
	return c.Deal.Income.MonthlyGrossIncome()
}

// MonthlyIncome is gross income less vacancy.
func (c *Calculator) MonthlyIncome() float64 {
	return c.MonthlyGrossIncome() * (1 - c.Deal.VacancyRate)
}

// AnnualIncome is twelve months of post-vacancy income.
func (c *Calculator) AnnualIncome() float64 {
	return c.MonthlyIncome() * 12
}

// FixedMonthlyOps sums the fixed expense line items; zero while the form
// holds out-of-range values.
func (c *Calculator) FixedMonthlyOps() float64 {
	fixed, err := finance.FixedMonthlyOps(c.Deal.Operating)
	if err != nil {
		return 0
	}
	return fixed
}

// VariableMonthlyOps converts the variable percentages to dollars against
// post-vacancy monthly income.
func (c *Calculator) VariableMonthlyOps() float64 {
	variable, err := finance.VariableExpenseAmount(c.Deal.Operating, c.MonthlyIncome())
	if err != nil {
		return 0
	}
	return variable
}

// MonthlyDebtService sums the new-loan payment with any subject-to and
// hybrid seller-financing payments.
func (c *Calculator) MonthlyDebtService() float64 {
	newPayment := 0.0
	if c.Deal.NewLoan.Principal > 0 && c.Deal.NewLoan.TermMonths > 0 {
		io := projection.IOMonths(c.Deal.NewLoan.InterestOnly, c.Deal.NewLoan.IOPeriodMonths, c.Deal.NewLoan.TermMonths)
		if io >= c.Deal.NewLoan.TermMonths {
			newPayment = c.Deal.NewLoan.Principal * c.Deal.NewLoan.AnnualRate / 12
		} else if p, err := finance.Pmt(c.Deal.NewLoan.AnnualRate, c.Deal.NewLoan.TermMonths-io, c.Deal.NewLoan.Principal); err == nil {
			if io > 0 {
				// while interest-only the carried payment is interest on the
				// full balance
				newPayment = c.Deal.NewLoan.Principal * c.Deal.NewLoan.AnnualRate / 12
			} else {
				newPayment = p
			}
		}
	}

	total, err := finance.TotalMonthlyDebtService(newPayment, c.Deal.SubjectToMonthlyPayment, c.Deal.HybridMonthlyPayment)
	if err != nil {
		return 0
	}
	return total
}

// MonthlyNOI is income less fixed and variable operating expenses.
func (c *Calculator) MonthlyNOI() float64 {
	return c.MonthlyIncome() - c.FixedMonthlyOps() - c.VariableMonthlyOps()
}

// AnnualNOI is twelve months of NOI.
func (c *Calculator) AnnualNOI() float64 {
	return c.MonthlyNOI() * 12
}

// MonthlyCashFlow is NOI less debt service.
func (c *Calculator) MonthlyCashFlow() float64 {
	return c.MonthlyNOI() - c.MonthlyDebtService()
}

// AnnualCashFlow is twelve months of cash flow.
func (c *Calculator) AnnualCashFlow() float64 {
	return c.MonthlyCashFlow() * 12
}

// CapRate is annual NOI over purchase price, as a percentage. Zero while the
// purchase price is unset.
func (c *Calculator) CapRate() float64 {
	if c.Deal.PurchasePrice <= 0 {
		return 0
	}
	return c.AnnualNOI() / c.Deal.PurchasePrice * 100
}

// CashOnCashReturn is annual cash flow over total cash invested, as a
// percentage.
func (c *Calculator) CashOnCashReturn() float64 {
	invested := c.Deal.TotalCashInvested()
	if invested <= 0 {
		return 0
	}
	return c.AnnualCashFlow() / invested * 100
}

// DSCR is monthly NOI over monthly debt service.
func (c *Calculator) DSCR() float64 {
	debt := c.MonthlyDebtService()
	if debt <= 0 {
		return 0
	}
	return c.MonthlyNOI() / debt
}

// ReturnOnEquity is annual cash flow over current equity, as a percentage.
func (c *Calculator) ReturnOnEquity() float64 {
	equity := c.Equity()
	if equity <= 0 {
		return 0
	}
	return c.AnnualCashFlow() / equity * 100
}

// LoanToValue is the loan amount over purchase price, as a percentage.
func (c *Calculator) LoanToValue() float64 {
	if c.Deal.PurchasePrice <= 0 {
		return 0
	}
	return c.Deal.NewLoan.Principal / c.Deal.PurchasePrice * 100
}

// Equity is purchase price less the loan amount at acquisition.
func (c *Calculator) Equity() float64 {
	return c.Deal.PurchasePrice - c.Deal.NewLoan.Principal
}

// EquityPercent is equity over purchase price, as a percentage.
func (c *Calculator) EquityPercent() float64 {
	if c.Deal.PurchasePrice <= 0 {
		return 0
	}
	return c.Equity() / c.Deal.PurchasePrice * 100
}

// BreakEvenOccupancy is the occupancy fraction covering fixed expenses,
// variable expenses at full occupancy, and debt service.
func (c *Calculator) BreakEvenOccupancy() float64 {
	revenue := c.MonthlyGrossIncome()
	if revenue <= 0 {
		return 0
	}
	occ, err := finance.BreakEvenOccupancy(c.FixedMonthlyOps(), c.MonthlyDebtService(), c.Deal.Operating, revenue, true)
	if err != nil {
		return 0
	}
	return occ
}

// Validate checks the deal for live form feedback; it reports problems in a
// structured result instead of failing.
func (c *Calculator) Validate() models.ValidationResult {
	var errs []string

	if c.Deal.PurchasePrice <= 0 {
		errs = append(errs, "purchase price must be greater than zero")
	}
	if c.Deal.NewLoan.Principal < 0 {
		errs = append(errs, "loan amount cannot be negative")
	}
	ratePct := c.Deal.NewLoan.AnnualRate * 100
	if ratePct < 0 || ratePct > 100 {
		errs = append(errs, fmt.Sprintf("interest rate %.2f%% outside 0-100%%", ratePct))
	}
	termYears := float64(c.Deal.NewLoan.TermMonths) / 12
	if c.Deal.NewLoan.Principal > 0 && (termYears < 1 || termYears > 50) {
		errs = append(errs, fmt.Sprintf("amortization term %.1f years outside 1-50", termYears))
	}

	return models.ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// --- year-specific metrics ---
//
// These recompute single-year figures from closed forms rather than reusing
// the full projector, keeping reactive UI queries cheap. They agree with the
// projector for all valid inputs.

// PropertyValueAtYear compounds the purchase price to the given projection
// year and adds capital-improvement value dated at or before it.
func (c *Calculator) PropertyValueAtYear(year int) float64 {
	if year < 1 {
		return 0
	}
	return projection.ProjectPropertyValue(c.Deal.PurchasePrice, c.Deal.AppreciationRate, year, c.Deal.CapitalEvents)
}

// LoanBalanceAtYear is the new-loan balance at the end of the given year.
func (c *Calculator) LoanBalanceAtYear(year int) float64 {
	if year < 1 {
		return c.Deal.NewLoan.Principal
	}
	loan := c.Deal.NewLoan
	months := year * 12
	if months >= loan.TermMonths {
		months = loan.TermMonths
	}

	io := projection.IOMonths(loan.InterestOnly, loan.IOPeriodMonths, loan.TermMonths)
	if months <= io {
		return loan.Principal
	}

	// Balance amortizes over the post-IO phase only.
	spec := models.LoanSpec{
		Principal:  loan.Principal,
		AnnualRate: loan.AnnualRate,
		TermMonths: loan.TermMonths - io,
	}
	balance, err := finance.RemainingPrincipal(spec, months-io)
	if err != nil {
		return 0
	}
	return balance
}

// EquityAtYear is projected property value less the loan balance.
func (c *Calculator) EquityAtYear(year int) float64 {
	return c.PropertyValueAtYear(year) - c.LoanBalanceAtYear(year)
}

// CashFlowAtYear is the year's cash flow after capital events, using the
// same growth compounding and month-level debt service as the projector.
func (c *Calculator) CashFlowAtYear(year int) float64 {
	if year < 1 {
		return 0
	}

	gross := projection.ProjectMonthlyRent(c.MonthlyGrossIncome(), c.Deal.RentGrowthRate, year)
	income := gross * 12 * (1 - c.Deal.VacancyRate)

	// Variable expenses grow from their year-1 dollar baseline at the
	// expense growth rate, matching the projector's baselines.
	fixed := projection.ProjectExpense(c.FixedMonthlyOps()*12, c.Deal.ExpenseGrowthRate, year)
	variable := projection.ProjectExpense(c.VariableMonthlyOps()*12, c.Deal.ExpenseGrowthRate, year)
	noi := income - fixed - variable

	events := 0.0
	for _, e := range c.Deal.CapitalEvents {
		if e.Year == year {
			events += e.Amount
		}
	}

	return noi - c.annualDebtServiceAtYear(year) - events
}

// ROEAtYear is the year's cash flow over that year's equity, as a percentage.
func (c *Calculator) ROEAtYear(year int) float64 {
	equity := c.EquityAtYear(year)
	if equity <= 0 {
		return 0
	}
	return c.CashFlowAtYear(year) / equity * 100
}

// annualDebtServiceAtYear sums the twelve new-loan payments of the given
// year plus any seller-financing payments, walking the year from the
// closed-form starting balance.
func (c *Calculator) annualDebtServiceAtYear(year int) float64 {
	seller := (c.Deal.SubjectToMonthlyPayment + c.Deal.HybridMonthlyPayment) * 12

	loan := c.Deal.NewLoan
	if loan.Principal <= 0 || loan.TermMonths <= 0 {
		return seller
	}

	io := projection.IOMonths(loan.InterestOnly, loan.IOPeriodMonths, loan.TermMonths)
	monthlyRate := loan.AnnualRate / 12

	amortPayment := 0.0
	if io < loan.TermMonths {
		p, err := finance.Pmt(loan.AnnualRate, loan.TermMonths-io, loan.Principal)
		if err != nil {
			return seller
		}
		amortPayment = p
	}

	balance := c.LoanBalanceAtYear(year - 1)
	total := 0.0
	for m := 1; m <= 12; m++ {
		monthIndex := (year-1)*12 + m
		if balance <= 0 {
			break
		}
		interest := balance * monthlyRate
		if monthIndex <= io {
			total += interest
			continue
		}
		principal := amortPayment - interest
		if principal > balance {
			principal = balance
		}
		if principal < 0 {
			principal = 0
		}
		balance -= principal
		total += interest + principal
	}

	return total + seller
}

// zScore maps a confidence level to its two-sided normal critical value.
// Levels outside (0, 1) fall back to 95%.
func zScore(confidence float64) float64 {
	if confidence <= 0 || confidence >= 1 {
		confidence = 0.95
	}
	normal := distuv.Normal{Mu: 0, Sigma: 1}
	return normal.Quantile(0.5 + confidence/2)
}

// confidenceInterval builds a symmetric interval around estimate from
// fractional income and expense uncertainties combined in quadrature.
func confidenceInterval(estimate, incomeUnc, expenseUnc, confidence float64) models.ConfidenceInterval {
	combined := math.Sqrt(incomeUnc*incomeUnc + expenseUnc*expenseUnc)
	margin := math.Abs(estimate) * combined * zScore(confidence)
	return models.ConfidenceInterval{
		Estimate:   estimate,
		Low:        estimate - margin,
		High:       estimate + margin,
		Confidence: confidence,
	}
}

// CashOnCashWithConfidence wraps the CoC point estimate in an uncertainty
// interval.
func (c *Calculator) CashOnCashWithConfidence(incomeUnc, expenseUnc, confidence float64) models.ConfidenceInterval {
	return confidenceInterval(c.CashOnCashReturn(), incomeUnc, expenseUnc, confidence)
}

// NOIWithConfidence wraps the monthly NOI point estimate in an uncertainty
// interval.
func (c *Calculator) NOIWithConfidence(incomeUnc, expenseUnc, confidence float64) models.ConfidenceInterval {
	return confidenceInterval(c.MonthlyNOI(), incomeUnc, expenseUnc, confidence)
}

// CapRateWithConfidence wraps the cap-rate point estimate in an uncertainty
// interval.
func (c *Calculator) CapRateWithConfidence(incomeUnc, expenseUnc, confidence float64) models.ConfidenceInterval {
	return confidenceInterval(c.CapRate(), incomeUnc, expenseUnc, confidence)
}
