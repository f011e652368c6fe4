package models

// CapitalEvent is a one-off cash outlay scheduled for a projection year.
// Flagged capital improvements additionally add value to the property,
// scaled by ValueAddPercentage.
type CapitalEvent struct {
	ID          string  `json:"id,omitempty"`
	Year        int     `json:"year"` // 1-based projection year
	Type        string  `json:"type"` // e.g. "roof", "hvac", "renovation"
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`

	IsCapitalImprovement bool    `json:"is_capital_improvement"`
	ValueAddPercentage   float64 `json:"value_add_percentage,omitempty"` // 0 on an improvement means dollar-for-dollar
}

// ValueAdd returns the property-value contribution of the event. Plain cash
// costs contribute nothing; improvements contribute Amount scaled by the
// value-add percentage.
func (e CapitalEvent) ValueAdd() float64 {
	if !e.IsCapitalImprovement {
		return 0
	}
	pct := e.ValueAddPercentage
	if pct == 0 {
		pct = 1.0
	}
	return e.Amount * pct
}

// CashFlowProjectionParams is a complete deal description consumed by the
// projection generator. Growth rates are annual fractions and may be zero or
// negative; ProjectionYears must be at least 1.
type CashFlowProjectionParams struct {
	PurchasePrice      float64 `json:"purchase_price"`
	CurrentValue       float64 `json:"current_value"`
	InitialMonthlyRent float64 `json:"initial_monthly_rent"`
	OtherMonthlyIncome float64 `json:"other_monthly_income"`
	VacancyRate        float64 `json:"vacancy_rate"` // fraction 0..1

	// Year-1 annual expense baselines, grown by ExpenseGrowthRate thereafter
	AnnualTaxes       float64 `json:"annual_taxes"`
	AnnualInsurance   float64 `json:"annual_insurance"`
	AnnualMaintenance float64 `json:"annual_maintenance"`
	AnnualManagement  float64 `json:"annual_management"`
	AnnualCapEx       float64 `json:"annual_capex"`
	AnnualOther       float64 `json:"annual_other"`

	// Loan terms
	LoanAmount     float64 `json:"loan_amount"`
	InterestRate   float64 `json:"interest_rate"` // fractional annual
	TermMonths     int     `json:"term_months"`
	InterestOnly   bool    `json:"interest_only"`
	IOPeriodMonths int     `json:"io_period_months"`

	// Growth assumptions (annual, fractional; negative allowed)
	RentGrowthRate    float64 `json:"rent_growth_rate"`
	ExpenseGrowthRate float64 `json:"expense_growth_rate"`
	AppreciationRate  float64 `json:"appreciation_rate"`

	CapitalEvents []CapitalEvent `json:"capital_events,omitempty"`

	ProjectionYears   int     `json:"projection_years"`
	InitialInvestment float64 `json:"initial_investment"`
}

// ExpenseBreakdown itemizes a single year's projected operating expenses.
type ExpenseBreakdown struct {
	Taxes       float64 `json:"taxes"`
	Insurance   float64 `json:"insurance"`
	Maintenance float64 `json:"maintenance"`
	Management  float64 `json:"management"`
	CapEx       float64 `json:"capex"`
	Other       float64 `json:"other"`
}

// Total sums the itemized expense lines.
func (e ExpenseBreakdown) Total() float64 {
	return e.Taxes + e.Insurance + e.Maintenance + e.Management + e.CapEx + e.Other
}

// YearlyProjection is one projected year. Equity always equals
// PropertyValue - LoanBalance, and CumulativeCashFlow at year N equals the
// sum of CashFlowAfterCapEx over years 1..N.
type YearlyProjection struct {
	Year int `json:"year"`

	MonthlyRent float64 `json:"monthly_rent"`
	AnnualRent  float64 `json:"annual_rent"`
	GrossIncome float64 `json:"gross_income"` // after vacancy

	Expenses      ExpenseBreakdown `json:"expenses"`
	TotalExpenses float64          `json:"total_expenses"`
	NOI           float64          `json:"noi"`

	LoanBalance   float64 `json:"loan_balance"` // at year end
	PrincipalPaid float64 `json:"principal_paid"`
	InterestPaid  float64 `json:"interest_paid"`
	DebtService   float64 `json:"debt_service"`

	PropertyValue float64 `json:"property_value"`
	Equity        float64 `json:"equity"`

	CapitalEvents     []CapitalEvent `json:"capital_events,omitempty"`
	CapitalEventTotal float64        `json:"capital_event_total"`

	CashFlowBeforeCapEx float64 `json:"cash_flow_before_capex"`
	CashFlowAfterCapEx  float64 `json:"cash_flow_after_capex"`
	CumulativeCashFlow  float64 `json:"cumulative_cash_flow"`
	CashOnCashReturn    float64 `json:"cash_on_cash_return"` // percent
}

// LoanPaydownEntry is one month of the amortization schedule.
type LoanPaydownEntry struct {
	Year      int     `json:"year"`
	Month     int     `json:"month"` // 1..12 within the year
	Payment   float64 `json:"payment"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Balance   float64 `json:"balance"`
}

// ProjectionSummary accumulates returns across the full horizon. Appreciation
// counts market appreciation only, not capital-improvement value adds.
type ProjectionSummary struct {
	TotalCashFlow         float64 `json:"total_cash_flow"`
	TotalPrincipalPaydown float64 `json:"total_principal_paydown"`
	TotalAppreciation     float64 `json:"total_appreciation"`
	TotalReturn           float64 `json:"total_return"`
}

// CashFlowProjectionResults is the projector's complete output.
type CashFlowProjectionResults struct {
	Years    []YearlyProjection `json:"years"`
	Schedule []LoanPaydownEntry `json:"schedule"`
	Summary  ProjectionSummary  `json:"summary"`
}
