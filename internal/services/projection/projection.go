// Package projection builds year-by-year cash-flow projections for a deal,
// amortizing the loan month-by-month and layering in scheduled capital
// events.
package projection

import (
	"fmt"
	"math"

	"underwriter/internal/models"
	"underwriter/internal/services/finance"
)

// Validate rejects parameter sets the generator cannot project.
func Validate(p *models.CashFlowProjectionParams) error {
	if p.ProjectionYears < 1 {
		return fmt.Errorf("projection: years must be >= 1, got %d", p.ProjectionYears)
	}
	if p.InitialMonthlyRent < 0 {
		return fmt.Errorf("projection: negative initial rent %v", p.InitialMonthlyRent)
	}
	if p.VacancyRate < 0 || p.VacancyRate > 1 {
		return fmt.Errorf("projection: vacancy rate %v outside [0,1]", p.VacancyRate)
	}
	if p.LoanAmount < 0 {
		return fmt.Errorf("projection: negative loan amount %v", p.LoanAmount)
	}
	if p.LoanAmount > 0 && p.TermMonths <= 0 {
		return fmt.Errorf("projection: loan of %v requires a positive term", p.LoanAmount)
	}
	if p.InterestRate < 0 {
		return fmt.Errorf("projection: negative interest rate %v", p.InterestRate)
	}
	for _, e := range p.CapitalEvents {
		if e.Amount < 0 {
			return fmt.Errorf("projection: capital event %q has negative amount %v", e.Type, e.Amount)
		}
	}
	return nil
}

// IOMonths normalizes the interest-only window of a loan: zero unless the
// interest-only flag is set; the full term when the flag is set without a
// period, or when the period exceeds the term.
func IOMonths(interestOnly bool, ioPeriodMonths, termMonths int) int {
	if !interestOnly {
		return 0
	}
	if ioPeriodMonths <= 0 || ioPeriodMonths > termMonths {
		return termMonths
	}
	return ioPeriodMonths
}

// AmortizingPayment returns the fixed payment for the post-interest-only
// phase of the loan: the full principal amortized over the months remaining
// after the IO window. A fully interest-only loan has no amortizing phase
// and returns 0.
func AmortizingPayment(p *models.CashFlowProjectionParams) (float64, error) {
	if p.LoanAmount == 0 {
		return 0, nil
	}
	io := IOMonths(p.InterestOnly, p.IOPeriodMonths, p.TermMonths)
	if io >= p.TermMonths {
		return 0, nil
	}
	return finance.Pmt(p.InterestRate, p.TermMonths-io, p.LoanAmount)
}

// ProjectMonthlyRent compounds the initial rent by the growth rate; year 1 is
// the initial rent exactly.
func ProjectMonthlyRent(initialRent, growthRate float64, year int) float64 {
	return initialRent * math.Pow(1+growthRate, float64(year-1))
}

// ProjectExpense compounds an annual expense baseline by the growth rate;
// year 1 is the baseline exactly.
func ProjectExpense(baseline, growthRate float64, year int) float64 {
	return baseline * math.Pow(1+growthRate, float64(year-1))
}

// ProjectPropertyValue compounds the purchase price by the appreciation rate
// and adds the value contributions of capital improvements dated at or
// before the year; year 1 is the purchase price plus year-1 improvements.
func ProjectPropertyValue(purchasePrice, appreciationRate float64, year int, events []models.CapitalEvent) float64 {
	value := purchasePrice * math.Pow(1+appreciationRate, float64(year-1))
	for _, e := range events {
		if e.Year <= year {
			value += e.ValueAdd()
		}
	}
	return value
}

// Generate produces the full projection for the parameter set. Capital
// events dated beyond the projection horizon are ignored.
func Generate(p *models.CashFlowProjectionParams) (*models.CashFlowProjectionResults, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}

	amortPayment, err := AmortizingPayment(p)
	if err != nil {
		return nil, err
	}
	ioMonths := IOMonths(p.InterestOnly, p.IOPeriodMonths, p.TermMonths)
	monthlyRate := p.InterestRate / 12

	years := make([]models.YearlyProjection, 0, p.ProjectionYears)
	schedule := make([]models.LoanPaydownEntry, 0, p.ProjectionYears*12)

	balance := p.LoanAmount
	cumulative := 0.0
	monthIndex := 0

	for year := 1; year <= p.ProjectionYears; year++ {
		monthlyRent := ProjectMonthlyRent(p.InitialMonthlyRent, p.RentGrowthRate, year)
		otherIncome := ProjectMonthlyRent(p.OtherMonthlyIncome, p.RentGrowthRate, year)
		annualRent := monthlyRent * 12
		grossIncome := (annualRent + otherIncome*12) * (1 - p.VacancyRate)

		expenses := models.ExpenseBreakdown{
			Taxes:       ProjectExpense(p.AnnualTaxes, p.ExpenseGrowthRate, year),
			Insurance:   ProjectExpense(p.AnnualInsurance, p.ExpenseGrowthRate, year),
			Maintenance: ProjectExpense(p.AnnualMaintenance, p.ExpenseGrowthRate, year),
			Management:  ProjectExpense(p.AnnualManagement, p.ExpenseGrowthRate, year),
			CapEx:       ProjectExpense(p.AnnualCapEx, p.ExpenseGrowthRate, year),
			Other:       ProjectExpense(p.AnnualOther, p.ExpenseGrowthRate, year),
		}
		totalExpenses := expenses.Total()
		noi := grossIncome - totalExpenses

		// Amortize the 12 months of this year, continuing from the prior
		// year's ending balance.
		var principalPaid, interestPaid, debtService float64
		for m := 1; m <= 12; m++ {
			monthIndex++
			if balance <= 0 {
				break
			}

			interest := balance * monthlyRate
			var principal, payment float64
			if monthIndex <= ioMonths {
				principal = 0
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
			principalPaid += principal
			interestPaid += interest
			debtService += payment

			schedule = append(schedule, models.LoanPaydownEntry{
				Year:      year,
				Month:     m,
				Payment:   payment,
				Principal: principal,
				Interest:  interest,
				Balance:   balance,
			})
		}

		propertyValue := ProjectPropertyValue(p.PurchasePrice, p.AppreciationRate, year, p.CapitalEvents)
		equity := propertyValue - balance

		var yearEvents []models.CapitalEvent
		eventTotal := 0.0
		for _, e := range p.CapitalEvents {
			if e.Year == year {
				yearEvents = append(yearEvents, e)
				eventTotal += e.Amount
			}
		}

		cfBefore := noi - debtService
		cfAfter := cfBefore - eventTotal
		cumulative += cfAfter

		coc := 0.0
		if p.InitialInvestment > 0 {
			coc = cfAfter / p.InitialInvestment * 100
		}

		years = append(years, models.YearlyProjection{
			Year:                year,
			MonthlyRent:         monthlyRent,
			AnnualRent:          annualRent,
			GrossIncome:         grossIncome,
			Expenses:            expenses,
			TotalExpenses:       totalExpenses,
			NOI:                 noi,
			LoanBalance:         balance,
			PrincipalPaid:       principalPaid,
			InterestPaid:        interestPaid,
			DebtService:         debtService,
			PropertyValue:       propertyValue,
			Equity:              equity,
			CapitalEvents:       yearEvents,
			CapitalEventTotal:   eventTotal,
			CashFlowBeforeCapEx: cfBefore,
			CashFlowAfterCapEx:  cfAfter,
			CumulativeCashFlow:  cumulative,
			CashOnCashReturn:    coc,
		})
	}

	summary := models.ProjectionSummary{
		TotalCashFlow:         cumulative,
		TotalPrincipalPaydown: p.LoanAmount - balance,
		TotalAppreciation:     p.PurchasePrice * (math.Pow(1+p.AppreciationRate, float64(p.ProjectionYears-1)) - 1),
	}
	summary.TotalReturn = summary.TotalCashFlow + summary.TotalPrincipalPaydown + summary.TotalAppreciation

	return &models.CashFlowProjectionResults{
		Years:    years,
		Schedule: schedule,
		Summary:  summary,
	}, nil
}
