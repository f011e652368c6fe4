package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Average days per month used to annualize nightly-rate income models.
const avgDaysPerMonth = 30.44

// PropertyType discriminates the income model attached to a deal.
type PropertyType string

const (
	PropertySingleFamily    PropertyType = "sfr"
	PropertyMultiFamily     PropertyType = "multi"
	PropertyShortTermRental PropertyType = "str"
	PropertyArbitrage       PropertyType = "arbitrage"
)

// IncomeModel is the income variant selected by a deal's property type.
// Each variant knows how to reduce itself to gross monthly income; the
// engine never sees variant-specific fields outside this method.
type IncomeModel interface {
	MonthlyGrossIncome() float64
	propertyType() PropertyType
}

// SingleFamilyIncome models a single long-term rental unit.
type SingleFamilyIncome struct {
	MonthlyRent        float64 `json:"monthly_rent"`
	OtherMonthlyIncome float64 `json:"other_monthly_income"` // laundry, storage, pet rent
}

func (i SingleFamilyIncome) MonthlyGrossIncome() float64 {
	return i.MonthlyRent + i.OtherMonthlyIncome
}

func (i SingleFamilyIncome) propertyType() PropertyType { return PropertySingleFamily }

// MultiFamilyIncome models a multi-unit property with a per-unit average rent.
type MultiFamilyIncome struct {
	Units              int     `json:"units"`
	AverageRentPerUnit float64 `json:"average_rent_per_unit"`
	OtherMonthlyIncome float64 `json:"other_monthly_income"`
}

func (i MultiFamilyIncome) MonthlyGrossIncome() float64 {
	return float64(i.Units)*i.AverageRentPerUnit + i.OtherMonthlyIncome
}

func (i MultiFamilyIncome) propertyType() PropertyType { return PropertyMultiFamily }

// ShortTermRentalIncome models nightly-rate income net of platform fees.
type ShortTermRentalIncome struct {
	NightlyRate        float64 `json:"nightly_rate"`
	OccupancyRate      float64 `json:"occupancy_rate"`   // fraction of nights booked, 0..1
	PlatformFeePct     float64 `json:"platform_fee_pct"` // fraction of revenue, 0..1
	CleaningFeeIncome  float64 `json:"cleaning_fee_income"`
	OtherMonthlyIncome float64 `json:"other_monthly_income"`
}

func (i ShortTermRentalIncome) MonthlyGrossIncome() float64 {
	nightly := i.NightlyRate * i.OccupancyRate * avgDaysPerMonth
	return nightly*(1-i.PlatformFeePct) + i.CleaningFeeIncome + i.OtherMonthlyIncome
}

func (i ShortTermRentalIncome) propertyType() PropertyType { return PropertyShortTermRental }

// ArbitrageIncome models a rental-arbitrage operation where the operator
// subleases a leased property; the master lease cost lives in operating inputs.
type ArbitrageIncome struct {
	NightlyRate        float64 `json:"nightly_rate"`
	OccupancyRate      float64 `json:"occupancy_rate"`
	PlatformFeePct     float64 `json:"platform_fee_pct"`
	OtherMonthlyIncome float64 `json:"other_monthly_income"`
}

func (i ArbitrageIncome) MonthlyGrossIncome() float64 {
	nightly := i.NightlyRate * i.OccupancyRate * avgDaysPerMonth
	return nightly*(1-i.PlatformFeePct) + i.OtherMonthlyIncome
}

func (i ArbitrageIncome) propertyType() PropertyType { return PropertyArbitrage }

// LoanSpec describes a fixed-rate amortizing (or interest-only) loan.
// Immutable input to the amortization functions.
type LoanSpec struct {
	Principal      float64 `json:"principal"`
	AnnualRate     float64 `json:"annual_rate"` // fractional, e.g. 0.065
	TermMonths     int     `json:"term_months"`
	InterestOnly   bool    `json:"interest_only"`
	IOPeriodMonths int     `json:"io_period_months"` // 0 with InterestOnly set means IO for the full term
}

// OperatingInputs holds fixed monthly expense line items and variable
// expense percentages applied against gross income.
type OperatingInputs struct {
	// Fixed monthly dollar amounts
	MonthlyTaxes       float64 `json:"monthly_taxes"`
	MonthlyInsurance   float64 `json:"monthly_insurance"`
	MonthlyHOA         float64 `json:"monthly_hoa"`
	MonthlyUtilities   float64 `json:"monthly_utilities"`
	MonthlyMaintenance float64 `json:"monthly_maintenance"`
	MonthlyOther       float64 `json:"monthly_other"`

	// Variable percentages of gross income, each 0..1
	ManagementPct float64 `json:"management_pct"`
	RepairsPct    float64 `json:"repairs_pct"`
	CapExPct      float64 `json:"capex_pct"`
	OpExPct       float64 `json:"opex_pct"`
}

// DealState is the complete description of a deal as entered by a user.
// It is the input to the underwrite calculation facade.
type DealState struct {
	PurchasePrice float64 `json:"purchase_price"`
	CurrentValue  float64 `json:"current_value"`
	VacancyRate   float64 `json:"vacancy_rate"` // fraction 0..1

	Income    IncomeModel     `json:"-"`
	Operating OperatingInputs `json:"operating"`

	// Financing
	NewLoan                 LoanSpec `json:"new_loan"`
	SubjectToMonthlyPayment float64  `json:"subject_to_monthly_payment"`
	HybridMonthlyPayment    float64  `json:"hybrid_monthly_payment"`

	// Cash into the deal
	DownPayment  float64 `json:"down_payment"`
	ClosingCosts float64 `json:"closing_costs"`
	RehabCosts   float64 `json:"rehab_costs"`

	// Growth assumptions (annual, fractional)
	RentGrowthRate    float64 `json:"rent_growth_rate"`
	ExpenseGrowthRate float64 `json:"expense_growth_rate"`
	AppreciationRate  float64 `json:"appreciation_rate"`

	CapitalEvents []CapitalEvent `json:"capital_events,omitempty"`
}

// TotalCashInvested is the denominator for cash-on-cash style ratios.
func (d *DealState) TotalCashInvested() float64 {
	return d.DownPayment + d.ClosingCosts + d.RehabCosts
}

// dealStateJSON is the wire shape of DealState: the income variant is carried
// under a key matching the property type discriminant.
type dealStateJSON struct {
	PropertyType PropertyType `json:"property_type"`

	SFR       *SingleFamilyIncome    `json:"sfr,omitempty"`
	Multi     *MultiFamilyIncome     `json:"multi,omitempty"`
	STR       *ShortTermRentalIncome `json:"str,omitempty"`
	Arbitrage *ArbitrageIncome       `json:"arbitrage,omitempty"`

	PurchasePrice float64 `json:"purchase_price"`
	CurrentValue  float64 `json:"current_value"`
	VacancyRate   float64 `json:"vacancy_rate"`

	Operating OperatingInputs `json:"operating"`

	NewLoan                 LoanSpec `json:"new_loan"`
	SubjectToMonthlyPayment float64  `json:"subject_to_monthly_payment"`
	HybridMonthlyPayment    float64  `json:"hybrid_monthly_payment"`

	DownPayment  float64 `json:"down_payment"`
	ClosingCosts float64 `json:"closing_costs"`
	RehabCosts   float64 `json:"rehab_costs"`

	RentGrowthRate    float64 `json:"rent_growth_rate"`
	ExpenseGrowthRate float64 `json:"expense_growth_rate"`
	AppreciationRate  float64 `json:"appreciation_rate"`

	CapitalEvents []CapitalEvent `json:"capital_events,omitempty"`
}

// MarshalJSON writes the deal with its income variant under the key named by
// the property type.
func (d DealState) MarshalJSON() ([]byte, error) {
	out := dealStateJSON{
		PurchasePrice:           d.PurchasePrice,
		CurrentValue:            d.CurrentValue,
		VacancyRate:             d.VacancyRate,
		Operating:               d.Operating,
		NewLoan:                 d.NewLoan,
		SubjectToMonthlyPayment: d.SubjectToMonthlyPayment,
		HybridMonthlyPayment:    d.HybridMonthlyPayment,
		DownPayment:             d.DownPayment,
		ClosingCosts:            d.ClosingCosts,
		RehabCosts:              d.RehabCosts,
		RentGrowthRate:          d.RentGrowthRate,
		ExpenseGrowthRate:       d.ExpenseGrowthRate,
		AppreciationRate:        d.AppreciationRate,
		CapitalEvents:           d.CapitalEvents,
	}

	switch inc := d.Income.(type) {
	case SingleFamilyIncome:
		out.PropertyType = PropertySingleFamily
		out.SFR = &inc
	case MultiFamilyIncome:
		out.PropertyType = PropertyMultiFamily
		out.Multi = &inc
	case ShortTermRentalIncome:
		out.PropertyType = PropertyShortTermRental
		out.STR = &inc
	case ArbitrageIncome:
		out.PropertyType = PropertyArbitrage
		out.Arbitrage = &inc
	case nil:
		// income left unset is legal while a form is mid-edit
	default:
		return nil, fmt.Errorf("unknown income model %T", d.Income)
	}

	return json.Marshal(out)
}

// UnmarshalJSON selects the income variant matching the property type and
// rejects payloads carrying a variant block that contradicts it. Unknown
// fields are rejected; callers wrapping the decode in a Decoder with
// DisallowUnknownFields would otherwise lose that strictness here, because
// the re-decode below starts a fresh Decoder.
func (d *DealState) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var in dealStateJSON
	if err := dec.Decode(&in); err != nil {
		return err
	}

	d.PurchasePrice = in.PurchasePrice
	d.CurrentValue = in.CurrentValue
	d.VacancyRate = in.VacancyRate
	d.Operating = in.Operating
	d.NewLoan = in.NewLoan
	d.SubjectToMonthlyPayment = in.SubjectToMonthlyPayment
	d.HybridMonthlyPayment = in.HybridMonthlyPayment
	d.DownPayment = in.DownPayment
	d.ClosingCosts = in.ClosingCosts
	d.RehabCosts = in.RehabCosts
	d.RentGrowthRate = in.RentGrowthRate
	d.ExpenseGrowthRate = in.ExpenseGrowthRate
	d.AppreciationRate = in.AppreciationRate
	d.CapitalEvents = in.CapitalEvents

	switch in.PropertyType {
	case PropertySingleFamily:
		if in.SFR == nil {
			return fmt.Errorf("property_type %q requires an %q income block", in.PropertyType, in.PropertyType)
		}
		d.Income = *in.SFR
	case PropertyMultiFamily:
		if in.Multi == nil {
			return fmt.Errorf("property_type %q requires a %q income block", in.PropertyType, in.PropertyType)
		}
		d.Income = *in.Multi
	case PropertyShortTermRental:
		if in.STR == nil {
			return fmt.Errorf("property_type %q requires an %q income block", in.PropertyType, in.PropertyType)
		}
		d.Income = *in.STR
	case PropertyArbitrage:
		if in.Arbitrage == nil {
			return fmt.Errorf("property_type %q requires an %q income block", in.PropertyType, in.PropertyType)
		}
		d.Income = *in.Arbitrage
	case "":
		d.Income = nil
	default:
		return fmt.Errorf("unknown property_type %q", in.PropertyType)
	}

	return nil
}

// ValidationResult is a structured validation outcome used for live form
// feedback; it never carries a Go error.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}
