package underwrite

import (
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"underwriter/internal/config"
	"underwriter/internal/models"
	"underwriter/internal/testutil"
)

func newServer(t *testing.T) *testutil.TestServer {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DefaultSimulations = 200
	cfg.MaxSimulations = 1000
	cfg.MaxProjectionYears = 30
	Initialize(cfg)

	r := chi.NewRouter()
	RegisterRoutes(r)

	ts := testutil.NewTestServer(t, r)
	t.Cleanup(ts.Close)
	return ts
}

func sampleDeal() map[string]any {
	return map[string]any{
		"property_type": "sfr",
		"sfr":           map[string]any{"monthly_rent": 2000},
		"purchase_price": 200000,
		"vacancy_rate":   0.05,
		"operating": map[string]any{
			"monthly_taxes":       250,
			"monthly_insurance":   100,
			"monthly_maintenance": 150,
			"management_pct":      0.08,
		},
		"new_loan": map[string]any{
			"principal":   160000,
			"annual_rate": 0.065,
			"term_months": 360,
		},
		"down_payment":  40000,
		"closing_costs": 4000,

		"rent_growth_rate":    0.03,
		"expense_growth_rate": 0.02,
		"appreciation_rate":   0.03,
	}
}

func sampleParams() map[string]any {
	return map[string]any{
		"purchase_price":       200000,
		"initial_monthly_rent": 2000,
		"vacancy_rate":         0.05,
		"annual_taxes":         3000,
		"annual_insurance":     1200,
		"annual_maintenance":   1800,
		"loan_amount":          160000,
		"interest_rate":        0.065,
		"term_months":          360,
		"rent_growth_rate":     0.03,
		"expense_growth_rate":  0.02,
		"appreciation_rate":    0.03,
		"projection_years":     10,
		"initial_investment":   40000,
	}
}

func TestValidateEndpoint(t *testing.T) {
	ts := newServer(t)

	t.Run("valid deal", func(t *testing.T) {
		resp := ts.POSTJSON("/underwrite/validate", sampleDeal())
		var result models.ValidationResult
		testutil.DecodeJSON(t, resp, &result)
		if !result.IsValid {
			t.Errorf("IsValid = false, errors: %v", result.Errors)
		}
	})

	t.Run("invalid deal reports problems", func(t *testing.T) {
		deal := sampleDeal()
		deal["purchase_price"] = 0
		resp := ts.POSTJSON("/underwrite/validate", deal)
		var result models.ValidationResult
		testutil.DecodeJSON(t, resp, &result)
		if result.IsValid || len(result.Errors) == 0 {
			t.Errorf("expected a structured failure, got %+v", result)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		resp := ts.POST("/underwrite/validate", "application/json", strings.NewReader("{not json"))
		testutil.AssertResponse(t, resp).Status(400).ContentTypeJSON().Contains("error")
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		deal := sampleDeal()
		deal["down_paymment"] = 40000
		resp := ts.POSTJSON("/underwrite/validate", deal)
		testutil.AssertResponse(t, resp).Status(400).Contains("down_paymment")
	})
}

func TestAnalyzeEndpoint(t *testing.T) {
	ts := newServer(t)

	resp := ts.POSTJSON("/underwrite/analyze", sampleDeal())
	testutil.AssertResponse(t, resp).StatusOK().ContentTypeJSON()

	resp = ts.POSTJSON("/underwrite/analyze", sampleDeal())
	var analysis models.DealAnalysis
	testutil.DecodeJSON(t, resp, &analysis)

	if analysis.MonthlyIncome != 1900 {
		t.Errorf("MonthlyIncome = %v, want 1900", analysis.MonthlyIncome)
	}
	if analysis.LoanToValue != 80 {
		t.Errorf("LoanToValue = %v, want 80", analysis.LoanToValue)
	}
	if len(analysis.Schedule) != 360 {
		t.Errorf("got %d schedule entries, want 360", len(analysis.Schedule))
	}
}

func TestReturnsEndpoints(t *testing.T) {
	ts := newServer(t)

	t.Run("moic", func(t *testing.T) {
		resp := ts.POSTJSON("/underwrite/returns/moic", map[string]any{
			"deal":             sampleDeal(),
			"hold_years":       10,
			"selling_cost_pct": 0.06,
		})
		var breakdown models.MOICBreakdown
		testutil.DecodeJSON(t, resp, &breakdown)
		if breakdown.HoldYears != 10 {
			t.Errorf("HoldYears = %d, want 10", breakdown.HoldYears)
		}
		if breakdown.CashInvested != 44000 {
			t.Errorf("CashInvested = %v, want 44000", breakdown.CashInvested)
		}
		if breakdown.EquityMultiple <= 0 {
			t.Errorf("EquityMultiple = %v, want > 0", breakdown.EquityMultiple)
		}
	})

	t.Run("irr", func(t *testing.T) {
		resp := ts.POSTJSON("/underwrite/returns/irr", map[string]any{
			"deal":             sampleDeal(),
			"hold_years":       10,
			"selling_cost_pct": 0.06,
		})
		var breakdown models.IRRBreakdown
		testutil.DecodeJSON(t, resp, &breakdown)
		if len(breakdown.LeveredCashFlows) != 11 {
			t.Errorf("got %d levered flows, want 11", len(breakdown.LeveredCashFlows))
		}
		if breakdown.UnleveredInvestment != 200000 {
			t.Errorf("UnleveredInvestment = %v, want 200000", breakdown.UnleveredInvestment)
		}
	})

	t.Run("bad hold period", func(t *testing.T) {
		resp := ts.POSTJSON("/underwrite/returns/irr", map[string]any{
			"deal":       sampleDeal(),
			"hold_years": 0,
		})
		testutil.AssertResponse(t, resp).Status(400).Contains("hold_years")
	})

	t.Run("selling cost out of range", func(t *testing.T) {
		resp := ts.POSTJSON("/underwrite/returns/moic", map[string]any{
			"deal":             sampleDeal(),
			"hold_years":       5,
			"selling_cost_pct": 1.5,
		})
		testutil.AssertResponse(t, resp).Status(400).Contains("selling_cost_pct")
	})
}

func TestProjectionEndpoint(t *testing.T) {
	ts := newServer(t)

	t.Run("full projection", func(t *testing.T) {
		resp := ts.POSTJSON("/underwrite/projection", sampleParams())
		var results models.CashFlowProjectionResults
		testutil.DecodeJSON(t, resp, &results)
		if len(results.Years) != 10 {
			t.Errorf("got %d years, want 10", len(results.Years))
		}
	})

	t.Run("capital events receive ids", func(t *testing.T) {
		params := sampleParams()
		params["capital_events"] = []map[string]any{
			{"year": 3, "type": "roof", "amount": 12000},
		}
		resp := ts.POSTJSON("/underwrite/projection", params)
		var results models.CashFlowProjectionResults
		testutil.DecodeJSON(t, resp, &results)
		events := results.Years[2].CapitalEvents
		if len(events) != 1 || events[0].ID == "" {
			t.Errorf("expected the event to carry a generated id, got %+v", events)
		}
	})

	t.Run("horizon above the configured maximum", func(t *testing.T) {
		params := sampleParams()
		params["projection_years"] = 31
		resp := ts.POSTJSON("/underwrite/projection", params)
		testutil.AssertResponse(t, resp).Status(400).Contains("projection_years")
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		resp := ts.POST("/underwrite/projection", "application/json",
			strings.NewReader(`{"purchase_price": 100000, "porchase_price": 1}`))
		testutil.AssertResponse(t, resp).Status(400)
	})

	t.Run("unprojectable params", func(t *testing.T) {
		params := sampleParams()
		params["vacancy_rate"] = 2.0
		resp := ts.POSTJSON("/underwrite/projection", params)
		testutil.AssertResponse(t, resp).Status(422)
	})
}

func TestMonteCarloEndpoint(t *testing.T) {
	ts := newServer(t)

	t.Run("run with defaults", func(t *testing.T) {
		resp := ts.POSTJSON("/underwrite/montecarlo", map[string]any{
			"base": sampleParams(),
			"seed": 42,
		})
		var results models.MonteCarloResults
		testutil.DecodeJSON(t, resp, &results)
		if results.SimulationCount != 200 {
			t.Errorf("SimulationCount = %d, want configured default 200", results.SimulationCount)
		}
		if results.Seed != 42 {
			t.Errorf("Seed = %d, want 42", results.Seed)
		}
	})

	t.Run("same seed reproduces the run", func(t *testing.T) {
		body := map[string]any{"base": sampleParams(), "seed": 7, "simulations": 100}

		var first, second models.MonteCarloResults
		testutil.DecodeJSON(t, ts.POSTJSON("/underwrite/montecarlo", body), &first)
		testutil.DecodeJSON(t, ts.POSTJSON("/underwrite/montecarlo", body), &second)

		if first.TotalReturn.Mean != second.TotalReturn.Mean {
			t.Errorf("means differ across identical seeds: %v vs %v",
				first.TotalReturn.Mean, second.TotalReturn.Mean)
		}
	})

	t.Run("single trial serializes cleanly", func(t *testing.T) {
		resp := ts.POSTJSON("/underwrite/montecarlo", map[string]any{
			"base":        sampleParams(),
			"simulations": 1,
			"seed":        3,
		})
		// One sample has an undefined sample deviation; the engine must
		// report 0 so the JSON body stays well-formed.
		testutil.AssertResponse(t, resp).StatusOK().ContentTypeJSON().
			Contains(`"simulation_count":1`).NotContains("NaN")
	})

	t.Run("simulation count above the cap", func(t *testing.T) {
		resp := ts.POSTJSON("/underwrite/montecarlo", map[string]any{
			"base":        sampleParams(),
			"simulations": 5000,
		})
		testutil.AssertResponse(t, resp).Status(400).Contains("simulations")
	})

	t.Run("defaults endpoint derives distributions", func(t *testing.T) {
		resp := ts.POSTJSON("/underwrite/montecarlo/defaults", sampleParams())
		var inputs models.MonteCarloInputs
		testutil.DecodeJSON(t, resp, &inputs)
		if inputs.RentGrowth == nil || inputs.RentGrowth.Mean != 0.03 {
			t.Errorf("RentGrowth = %+v, want mean 0.03", inputs.RentGrowth)
		}
		if inputs.InitialRent == nil || inputs.InitialRent.Mode != 2000 {
			t.Errorf("InitialRent = %+v, want mode 2000", inputs.InitialRent)
		}
	})
}
