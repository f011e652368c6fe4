package models

// DealAnalysis is the comprehensive per-deal metric set returned by the
// underwrite facade. Every figure is a raw number; formatting is a caller
// concern.
type DealAnalysis struct {
	// Income & expenses
	MonthlyIncome       float64 `json:"monthly_income"` // after vacancy
	AnnualIncome        float64 `json:"annual_income"`
	FixedMonthlyOps     float64 `json:"fixed_monthly_ops"`
	VariableMonthlyOps  float64 `json:"variable_monthly_ops"`
	MonthlyDebtService  float64 `json:"monthly_debt_service"`
	MonthlyCashFlow     float64 `json:"monthly_cash_flow"`
	AnnualCashFlow      float64 `json:"annual_cash_flow"`
	BreakEvenOccupancy  float64 `json:"break_even_occupancy"` // fraction 0..1

	// NOI & cap rate
	MonthlyNOI float64 `json:"monthly_noi"`
	AnnualNOI  float64 `json:"annual_noi"`
	CapRate    float64 `json:"cap_rate"` // percent

	// Return metrics (percent where noted)
	CashOnCashReturn float64 `json:"cash_on_cash_return"` // percent
	DSCR             float64 `json:"dscr"`
	ReturnOnEquity   float64 `json:"return_on_equity"` // percent
	LoanToValue      float64 `json:"loan_to_value"`    // percent

	// Equity position
	LoanAmount    float64 `json:"loan_amount"`
	CashInvested  float64 `json:"cash_invested"`
	Equity        float64 `json:"equity"`
	EquityPercent float64 `json:"equity_percent"` // percent of purchase price

	Schedule []LoanPaydownEntry `json:"schedule,omitempty"`
}

// MOICBreakdown carries the full multiple-on-invested-capital build-up so a
// reviewer can audit every component of the multiple.
type MOICBreakdown struct {
	HoldYears    int     `json:"hold_years"`
	CashInvested float64 `json:"cash_invested"`

	TotalCashFlow    float64 `json:"total_cash_flow"`
	PrincipalPaydown float64 `json:"principal_paydown"`
	Appreciation     float64 `json:"appreciation"`

	FinalPropertyValue   float64 `json:"final_property_value"`
	SellingCosts         float64 `json:"selling_costs"`
	RemainingLoanBalance float64 `json:"remaining_loan_balance"`
	ExitProceeds         float64 `json:"exit_proceeds"` // final value - selling costs - remaining loan

	TotalReturn    float64 `json:"total_return"` // cash flows + exit proceeds
	EquityMultiple float64 `json:"equity_multiple"`
}

// IRRBreakdown carries levered and unlevered IRR with the cash flows each
// was solved over.
type IRRBreakdown struct {
	HoldYears int `json:"hold_years"`

	LeveredIRR        float64   `json:"levered_irr"` // fractional
	LeveredCashFlows  []float64 `json:"levered_cash_flows"`
	LeveredInvestment float64   `json:"levered_investment"`
	ExitProceeds      float64   `json:"exit_proceeds"`

	UnleveredIRR        float64   `json:"unlevered_irr"` // fractional
	UnleveredCashFlows  []float64 `json:"unlevered_cash_flows"`
	UnleveredInvestment float64   `json:"unlevered_investment"`
	UnleveredExit       float64   `json:"unlevered_exit"`
}

// ConfidenceInterval is a symmetric interval around a point estimate.
type ConfidenceInterval struct {
	Estimate   float64 `json:"estimate"`
	Low        float64 `json:"low"`
	High       float64 `json:"high"`
	Confidence float64 `json:"confidence"` // e.g. 0.95
}
