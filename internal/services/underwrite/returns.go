package underwrite

import (
	"fmt"

	"underwriter/internal/models"
	"underwriter/internal/services/finance"
	"underwriter/internal/services/projection"
)

// ProjectionParams maps the deal onto the projector's parameter set over the
// given hold period. Income is reduced to a single rent figure; variable
// expense percentages become year-1 dollar baselines that grow with the
// expense growth rate.
func (c *Calculator) ProjectionParams(holdYears int) models.CashFlowProjectionParams {
	ops := c.Deal.Operating
	base := c.MonthlyIncome() * 12 // post-vacancy year-1 income

	return models.CashFlowProjectionParams{
		PurchasePrice:      c.Deal.PurchasePrice,
		CurrentValue:       c.Deal.CurrentValue,
		InitialMonthlyRent: c.MonthlyGrossIncome(),
		VacancyRate:        c.Deal.VacancyRate,

		AnnualTaxes:       ops.MonthlyTaxes * 12,
		AnnualInsurance:   ops.MonthlyInsurance * 12,
		AnnualMaintenance: ops.MonthlyMaintenance*12 + ops.RepairsPct*base,
		AnnualManagement:  ops.ManagementPct * base,
		AnnualCapEx:       ops.CapExPct * base,
		AnnualOther:       (ops.MonthlyHOA+ops.MonthlyUtilities+ops.MonthlyOther)*12 + ops.OpExPct*base,

		LoanAmount:     c.Deal.NewLoan.Principal,
		InterestRate:   c.Deal.NewLoan.AnnualRate,
		TermMonths:     c.Deal.NewLoan.TermMonths,
		InterestOnly:   c.Deal.NewLoan.InterestOnly,
		IOPeriodMonths: c.Deal.NewLoan.IOPeriodMonths,

		RentGrowthRate:    c.Deal.RentGrowthRate,
		ExpenseGrowthRate: c.Deal.ExpenseGrowthRate,
		AppreciationRate:  c.Deal.AppreciationRate,

		CapitalEvents: c.Deal.CapitalEvents,

		ProjectionYears:   holdYears,
		InitialInvestment: c.Deal.TotalCashInvested(),
	}
}

// Analyze computes the comprehensive metric set for the deal, including the
// new loan's amortization schedule.
func (c *Calculator) Analyze() *models.DealAnalysis {
	return &models.DealAnalysis{
		MonthlyIncome:      c.MonthlyIncome(),
		AnnualIncome:       c.AnnualIncome(),
		FixedMonthlyOps:    c.FixedMonthlyOps(),
		VariableMonthlyOps: c.VariableMonthlyOps(),
		MonthlyDebtService: c.MonthlyDebtService(),
		MonthlyCashFlow:    c.MonthlyCashFlow(),
		AnnualCashFlow:     c.AnnualCashFlow(),
		BreakEvenOccupancy: c.BreakEvenOccupancy(),

		MonthlyNOI: c.MonthlyNOI(),
		AnnualNOI:  c.AnnualNOI(),
		CapRate:    c.CapRate(),

		CashOnCashReturn: c.CashOnCashReturn(),
		DSCR:             c.DSCR(),
		ReturnOnEquity:   c.ReturnOnEquity(),
		LoanToValue:      c.LoanToValue(),

		LoanAmount:    c.Deal.NewLoan.Principal,
		CashInvested:  c.Deal.TotalCashInvested(),
		Equity:        c.Equity(),
		EquityPercent: c.EquityPercent(),

		Schedule: c.AmortizationSchedule(),
	}
}

// AmortizationSchedule walks the new loan month by month for its full term.
// Interest-only months carry the balance unchanged.
func (c *Calculator) AmortizationSchedule() []models.LoanPaydownEntry {
	loan := c.Deal.NewLoan
	if loan.Principal <= 0 || loan.TermMonths <= 0 {
		return nil
	}

	io := projection.IOMonths(loan.InterestOnly, loan.IOPeriodMonths, loan.TermMonths)
	monthlyRate := loan.AnnualRate / 12

	amortPayment := 0.0
	if io < loan.TermMonths {
		p, err := finance.Pmt(loan.AnnualRate, loan.TermMonths-io, loan.Principal)
		if err != nil {
			return nil
		}
		amortPayment = p
	}

	schedule := make([]models.LoanPaydownEntry, 0, loan.TermMonths)
	balance := loan.Principal
	for m := 1; m <= loan.TermMonths && balance > 0; m++ {
		interest := balance * monthlyRate
		var principal, payment float64
		if m <= io {
			payment = interest
		} else {
			payment = amortPayment
			principal = payment - interest
			if principal > balance {
				principal = balance
				payment = principal + interest
			}
			if principal < 0 {
				principal = 0
				payment = interest
			}
		}
		balance -= principal

		schedule = append(schedule, models.LoanPaydownEntry{
			Year:      (m-1)/12 + 1,
			Month:     (m-1)%12 + 1,
			Payment:   payment,
			Principal: principal,
			Interest:  interest,
			Balance:   balance,
		})
	}
	return schedule
}

// MOIC builds the multiple-on-invested-capital breakdown over a hold period,
// modeling an exit sale net of selling costs and the remaining loan.
func (c *Calculator) MOIC(holdYears int, sellingCostPct float64) (*models.MOICBreakdown, error) {
	params := c.ProjectionParams(holdYears)
	result, err := projection.Generate(&params)
	if err != nil {
		return nil, fmt.Errorf("moic: %w", err)
	}

	final := result.Years[len(result.Years)-1]
	sellingCosts := final.PropertyValue * sellingCostPct
	exitProceeds := final.PropertyValue - sellingCosts - final.LoanBalance

	invested := c.Deal.TotalCashInvested()
	totalReturn := result.Summary.TotalCashFlow + exitProceeds

	multiple := 0.0
	if invested > 0 {
		multiple = totalReturn / invested
	}

	return &models.MOICBreakdown{
		HoldYears:    holdYears,
		CashInvested: invested,

		TotalCashFlow:    result.Summary.TotalCashFlow,
		PrincipalPaydown: result.Summary.TotalPrincipalPaydown,
		Appreciation:     result.Summary.TotalAppreciation,

		FinalPropertyValue:   final.PropertyValue,
		SellingCosts:         sellingCosts,
		RemainingLoanBalance: final.LoanBalance,
		ExitProceeds:         exitProceeds,

		TotalReturn:    totalReturn,
		EquityMultiple: multiple,
	}, nil
}

// IRR computes the levered and unlevered IRR breakdown over a hold period.
// The unlevered side reruns the projection debt-free with the full purchase
// price as the investment rather than stripping debt service analytically.
func (c *Calculator) IRR(holdYears int, sellingCostPct float64) (*models.IRRBreakdown, error) {
	params := c.ProjectionParams(holdYears)
	levered, err := projection.Generate(&params)
	if err != nil {
		return nil, fmt.Errorf("irr: %w", err)
	}

	finalLev := levered.Years[len(levered.Years)-1]
	exitProceeds := finalLev.PropertyValue*(1-sellingCostPct) - finalLev.LoanBalance

	leveredInvestment := c.Deal.TotalCashInvested()
	leveredFlows := make([]float64, 0, holdYears+1)
	leveredFlows = append(leveredFlows, -leveredInvestment)
	for _, y := range levered.Years {
		leveredFlows = append(leveredFlows, y.CashFlowAfterCapEx)
	}

	unleveredParams := params
	unleveredParams.LoanAmount = 0
	unleveredParams.InterestRate = 0
	unleveredParams.TermMonths = 0
	unleveredParams.InterestOnly = false
	unleveredParams.IOPeriodMonths = 0
	unleveredParams.InitialInvestment = c.Deal.PurchasePrice

	unlevered, err := projection.Generate(&unleveredParams)
	if err != nil {
		return nil, fmt.Errorf("irr (unlevered): %w", err)
	}

	finalUnlev := unlevered.Years[len(unlevered.Years)-1]
	unleveredExit := finalUnlev.PropertyValue * (1 - sellingCostPct)

	unleveredFlows := make([]float64, 0, holdYears+1)
	unleveredFlows = append(unleveredFlows, -c.Deal.PurchasePrice)
	for _, y := range unlevered.Years {
		unleveredFlows = append(unleveredFlows, y.CashFlowAfterCapEx)
	}

	return &models.IRRBreakdown{
		HoldYears: holdYears,

		LeveredIRR:        finance.IRRWithExit(leveredFlows, exitProceeds),
		LeveredCashFlows:  leveredFlows,
		LeveredInvestment: leveredInvestment,
		ExitProceeds:      exitProceeds,

		UnleveredIRR:        finance.IRRWithExit(unleveredFlows, unleveredExit),
		UnleveredCashFlows:  unleveredFlows,
		UnleveredInvestment: c.Deal.PurchasePrice,
		UnleveredExit:       unleveredExit,
	}, nil
}
