package montecarlo

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"underwriter/internal/models"
)

// statsBlock computes the descriptive statistics for one metric. The 95%
// confidence interval is the empirical 2.5/97.5 percentile band.
func statsBlock(values []float64) models.StatsBlock {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	// stat.StdDev divides by n-1 and returns NaN for a single sample.
	stddev := 0.0
	if len(sorted) > 1 {
		stddev = stat.StdDev(sorted, nil)
	}

	return models.StatsBlock{
		Mean:         stat.Mean(sorted, nil),
		Median:       stat.Quantile(0.5, stat.Empirical, sorted, nil),
		StdDev:       stddev,
		Percentile10: stat.Quantile(0.10, stat.Empirical, sorted, nil),
		Percentile25: stat.Quantile(0.25, stat.Empirical, sorted, nil),
		Percentile75: stat.Quantile(0.75, stat.Empirical, sorted, nil),
		Percentile90: stat.Quantile(0.90, stat.Empirical, sorted, nil),
		CI95Low:      stat.Quantile(0.025, stat.Empirical, sorted, nil),
		CI95High:     stat.Quantile(0.975, stat.Empirical, sorted, nil),
		WorstCase:    sorted[0],
		BestCase:     sorted[len(sorted)-1],
	}
}

// histogram bins the values into count bins spanning [min, max]. Every value
// lands in a bin, so the frequencies sum to len(values).
func histogram(values []float64, count int) models.Histogram {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	lo := sorted[0]
	hi := sorted[len(sorted)-1]
	if lo == hi {
		// Degenerate distribution: widen to a unit band around the value.
		lo -= 0.5
		hi += 0.5
	}

	dividers := make([]float64, count+1)
	floats.Span(dividers, lo, hi)
	// Half-open bins would drop the maximum; nudge the top divider past it.
	dividers[count] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)

	bins := make([]models.HistogramBin, count)
	for i := range bins {
		bins[i] = models.HistogramBin{
			Low:       dividers[i],
			High:      dividers[i+1],
			Frequency: int(math.Round(counts[i])),
		}
	}
	return models.Histogram{Bins: bins}
}

// aggregate reduces the per-trial results to summary statistics, risk
// metrics, and the total-return histogram.
func aggregate(trials []models.TrialResult, bins int) *models.MonteCarloResults {
	n := len(trials)
	totalReturns := make([]float64, n)
	annualized := make([]float64, n)
	irrs := make([]float64, n)
	positive := 0
	for i, t := range trials {
		totalReturns[i] = t.TotalReturn
		annualized[i] = t.AnnualizedReturn
		irrs[i] = t.IRR
		if t.TotalReturn > 0 {
			positive++
		}
	}

	sortedReturns := make([]float64, n)
	copy(sortedReturns, totalReturns)
	sort.Float64s(sortedReturns)

	return &models.MonteCarloResults{
		SimulationCount:             n,
		Trials:                      trials,
		TotalReturn:                 statsBlock(totalReturns),
		AnnualizedReturn:            statsBlock(annualized),
		IRR:                         statsBlock(irrs),
		ProbabilityOfPositiveReturn: float64(positive) / float64(n),
		Risk: models.RiskMetrics{
			ProbabilityOfLoss: float64(n-positive) / float64(n),
			ValueAtRisk5:      stat.Quantile(0.05, stat.Empirical, sortedReturns, nil),
		},
		Histogram: histogram(totalReturns, bins),
	}
}
