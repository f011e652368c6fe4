package models

import (
	"fmt"
	"sort"
)

// DistributionType tags a Distribution variant.
type DistributionType string

const (
	DistUniform    DistributionType = "uniform"
	DistNormal     DistributionType = "normal"
	DistTriangular DistributionType = "triangular"
	DistLognormal  DistributionType = "lognormal"
)

// Distribution is a tagged probability distribution for one uncertain
// parameter. Only the fields of the tagged variant are read.
type Distribution struct {
	Type DistributionType `json:"type"`

	// uniform / triangular
	Min  float64 `json:"min,omitempty"`
	Max  float64 `json:"max,omitempty"`
	Mode float64 `json:"mode,omitempty"` // triangular only

	// normal
	Mean   float64 `json:"mean,omitempty"`
	StdDev float64 `json:"std_dev,omitempty"`

	// lognormal
	Mu    float64 `json:"mu,omitempty"`
	Sigma float64 `json:"sigma,omitempty"`
}

// Validate checks the variant's parameter constraints.
func (d Distribution) Validate() error {
	switch d.Type {
	case DistUniform:
		if d.Max < d.Min {
			return fmt.Errorf("uniform distribution: max %v < min %v", d.Max, d.Min)
		}
	case DistNormal:
		if d.StdDev < 0 {
			return fmt.Errorf("normal distribution: negative std dev %v", d.StdDev)
		}
	case DistTriangular:
		if d.Max < d.Min || d.Mode < d.Min || d.Mode > d.Max {
			return fmt.Errorf("triangular distribution: need min <= mode <= max, got %v/%v/%v", d.Min, d.Mode, d.Max)
		}
	case DistLognormal:
		if d.Sigma < 0 {
			return fmt.Errorf("lognormal distribution: negative sigma %v", d.Sigma)
		}
	default:
		return fmt.Errorf("unknown distribution type %q", d.Type)
	}
	return nil
}

// MonteCarloInputs maps uncertain deal parameters to their distributions.
// A nil entry means the point estimate from the base params is used.
type MonteCarloInputs struct {
	RentGrowth    *Distribution `json:"rent_growth,omitempty"`
	ExpenseGrowth *Distribution `json:"expense_growth,omitempty"`
	Appreciation  *Distribution `json:"appreciation,omitempty"`
	InitialRent   *Distribution `json:"initial_rent,omitempty"`
	VacancyRate   *Distribution `json:"vacancy_rate,omitempty"`
	InterestRate  *Distribution `json:"interest_rate,omitempty"`
}

// TrialResult records one simulation trial.
type TrialResult struct {
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"` // percent per year
	IRR              float64 `json:"irr"`               // fractional
	FinalEquity      float64 `json:"final_equity"`
	TotalCashFlow    float64 `json:"total_cash_flow"`
}

// StatsBlock holds descriptive statistics for one metric across all trials.
// Percentile25 <= Median <= Percentile75 holds for any input.
type StatsBlock struct {
	Mean         float64 `json:"mean"`
	Median       float64 `json:"median"`
	StdDev       float64 `json:"std_dev"`
	Percentile10 float64 `json:"percentile_10"`
	Percentile25 float64 `json:"percentile_25"`
	Percentile75 float64 `json:"percentile_75"`
	Percentile90 float64 `json:"percentile_90"`
	CI95Low      float64 `json:"ci_95_low"`
	CI95High     float64 `json:"ci_95_high"`
	WorstCase    float64 `json:"worst_case"`
	BestCase     float64 `json:"best_case"`
}

// RiskMetrics summarizes downside outcomes.
type RiskMetrics struct {
	ProbabilityOfLoss float64 `json:"probability_of_loss"` // fraction of trials with total return <= 0
	ValueAtRisk5      float64 `json:"value_at_risk_5"`     // 5th-percentile total return
}

// HistogramBin is one bin of the total-return histogram; [Low, High).
type HistogramBin struct {
	Low       float64 `json:"low"`
	High      float64 `json:"high"`
	Frequency int     `json:"frequency"`
}

// Histogram covers every trial: frequencies sum to the simulation count.
type Histogram struct {
	Bins []HistogramBin `json:"bins"`
}

// MonteCarloResults is the aggregated outcome of a simulation run.
type MonteCarloResults struct {
	SimulationCount int           `json:"simulation_count"`
	Seed            uint64        `json:"seed"`
	Trials          []TrialResult `json:"trials"`

	TotalReturn      StatsBlock `json:"total_return"`
	AnnualizedReturn StatsBlock `json:"annualized_return"`
	IRR              StatsBlock `json:"irr"`

	ProbabilityOfPositiveReturn float64     `json:"probability_of_positive_return"`
	Risk                        RiskMetrics `json:"risk"`
	Histogram                   Histogram   `json:"histogram"`

	ExecutionMillis int64 `json:"execution_millis"`
}

// ProbabilityOfTarget returns the fraction of trials whose total return met
// or exceeded the threshold.
func (r *MonteCarloResults) ProbabilityOfTarget(threshold float64) float64 {
	if len(r.Trials) == 0 {
		return 0
	}
	returns := make([]float64, len(r.Trials))
	for i, t := range r.Trials {
		returns[i] = t.TotalReturn
	}
	sort.Float64s(returns)
	// first index meeting the threshold
	idx := sort.SearchFloat64s(returns, threshold)
	return float64(len(returns)-idx) / float64(len(returns))
}
