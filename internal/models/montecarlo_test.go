package models

import "testing"

func TestDistributionValidate(t *testing.T) {
	tests := []struct {
		name    string
		dist    Distribution
		wantErr bool
	}{
		{"uniform ok", Distribution{Type: DistUniform, Min: 0, Max: 1}, false},
		{"uniform inverted", Distribution{Type: DistUniform, Min: 1, Max: 0}, true},
		{"uniform point mass", Distribution{Type: DistUniform, Min: 0.5, Max: 0.5}, false},
		{"normal ok", Distribution{Type: DistNormal, Mean: 0.03, StdDev: 0.01}, false},
		{"normal negative sigma", Distribution{Type: DistNormal, StdDev: -0.01}, true},
		{"triangular ok", Distribution{Type: DistTriangular, Min: 1, Mode: 2, Max: 3}, false},
		{"triangular mode below min", Distribution{Type: DistTriangular, Min: 1, Mode: 0, Max: 3}, true},
		{"triangular mode above max", Distribution{Type: DistTriangular, Min: 1, Mode: 4, Max: 3}, true},
		{"lognormal ok", Distribution{Type: DistLognormal, Mu: 0, Sigma: 0.25}, false},
		{"lognormal negative sigma", Distribution{Type: DistLognormal, Sigma: -1}, true},
		{"unknown type", Distribution{Type: "beta"}, true},
		{"empty type", Distribution{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.dist.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProbabilityOfTarget(t *testing.T) {
	results := MonteCarloResults{
		Trials: []TrialResult{
			{TotalReturn: -500},
			{TotalReturn: 0},
			{TotalReturn: 1000},
			{TotalReturn: 2500},
			{TotalReturn: 4000},
		},
	}

	tests := []struct {
		name      string
		threshold float64
		expected  float64
	}{
		{"below the worst trial", -1000, 1.0},
		{"at a trial value counts it", 1000, 0.6},
		{"between trials", 1500, 0.4},
		{"above the best trial", 5000, 0.0},
		{"zero threshold", 0, 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := results.ProbabilityOfTarget(tt.threshold); got != tt.expected {
				t.Errorf("ProbabilityOfTarget(%v) = %v, want %v", tt.threshold, got, tt.expected)
			}
		})
	}

	t.Run("no trials", func(t *testing.T) {
		empty := MonteCarloResults{}
		if got := empty.ProbabilityOfTarget(0); got != 0 {
			t.Errorf("ProbabilityOfTarget() = %v, want 0", got)
		}
	})
}
