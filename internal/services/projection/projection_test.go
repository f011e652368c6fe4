package projection

import (
	"math"
	"testing"

	"underwriter/internal/models"
)

// baseParams returns a representative rental deal used across tests.
func baseParams() *models.CashFlowProjectionParams {
	return &models.CashFlowProjectionParams{
		PurchasePrice:      200000,
		InitialMonthlyRent: 2000,
		VacancyRate:        0.05,

		AnnualTaxes:       3000,
		AnnualInsurance:   1200,
		AnnualMaintenance: 1800,
		AnnualManagement:  1920,
		AnnualCapEx:       1200,
		AnnualOther:       600,

		LoanAmount:   160000,
		InterestRate: 0.065,
		TermMonths:   360,

		RentGrowthRate:    0.03,
		ExpenseGrowthRate: 0.02,
		AppreciationRate:  0.03,

		ProjectionYears:   10,
		InitialInvestment: 40000,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.CashFlowProjectionParams)
		wantErr bool
	}{
		{"valid baseline", func(p *models.CashFlowProjectionParams) {}, false},
		{"zero years", func(p *models.CashFlowProjectionParams) { p.ProjectionYears = 0 }, true},
		{"negative rent", func(p *models.CashFlowProjectionParams) { p.InitialMonthlyRent = -1 }, true},
		{"vacancy above 1", func(p *models.CashFlowProjectionParams) { p.VacancyRate = 1.5 }, true},
		{"negative loan", func(p *models.CashFlowProjectionParams) { p.LoanAmount = -1 }, true},
		{"loan without term", func(p *models.CashFlowProjectionParams) { p.TermMonths = 0 }, true},
		{"negative rate", func(p *models.CashFlowProjectionParams) { p.InterestRate = -0.01 }, true},
		{"negative event amount", func(p *models.CashFlowProjectionParams) {
			p.CapitalEvents = []models.CapitalEvent{{Year: 2, Amount: -500}}
		}, true},
		{"no loan no term is fine", func(p *models.CashFlowProjectionParams) {
			p.LoanAmount = 0
			p.TermMonths = 0
		}, false},
		{"negative growth is fine", func(p *models.CashFlowProjectionParams) {
			p.RentGrowthRate = -0.02
			p.AppreciationRate = -0.05
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseParams()
			tt.mutate(p)
			err := Validate(p)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIOMonths(t *testing.T) {
	tests := []struct {
		name         string
		interestOnly bool
		period       int
		term         int
		expected     int
	}{
		{"not interest-only", false, 60, 360, 0},
		{"explicit window", true, 60, 360, 60},
		{"no period means full term", true, 0, 360, 360},
		{"period beyond term caps at term", true, 400, 360, 360},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IOMonths(tt.interestOnly, tt.period, tt.term); got != tt.expected {
				t.Errorf("IOMonths() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestProjectMonthlyRent(t *testing.T) {
	t.Run("year 1 has no growth", func(t *testing.T) {
		if got := ProjectMonthlyRent(2000, 0.03, 1); got != 2000 {
			t.Errorf("ProjectMonthlyRent(year 1) = %v, want 2000", got)
		}
	})

	t.Run("year 5 compounds four times", func(t *testing.T) {
		got := ProjectMonthlyRent(2000, 0.03, 5)
		want := 2000 * math.Pow(1.03, 4) // 2251.02
		if math.Abs(got-want) > 0.5 {
			t.Errorf("ProjectMonthlyRent(year 5) = %.2f, want %.2f", got, want)
		}
	})
}

func TestGenerate(t *testing.T) {
	results, err := Generate(baseParams())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	t.Run("produces one entry per year", func(t *testing.T) {
		if len(results.Years) != 10 {
			t.Fatalf("got %d years, want 10", len(results.Years))
		}
		for i, y := range results.Years {
			if y.Year != i+1 {
				t.Errorf("Years[%d].Year = %d, want %d", i, y.Year, i+1)
			}
		}
	})

	t.Run("year 1 uses initial values unchanged", func(t *testing.T) {
		y1 := results.Years[0]
		if y1.MonthlyRent != 2000 {
			t.Errorf("year 1 rent = %v, want 2000", y1.MonthlyRent)
		}
		if math.Abs(y1.Expenses.Taxes-3000) > 1e-9 {
			t.Errorf("year 1 taxes = %v, want 3000", y1.Expenses.Taxes)
		}
	})

	t.Run("rent compounds from year 2", func(t *testing.T) {
		y5 := results.Years[4]
		want := 2000 * math.Pow(1.03, 4)
		if math.Abs(y5.MonthlyRent-want) > 0.5 {
			t.Errorf("year 5 rent = %.2f, want %.2f", y5.MonthlyRent, want)
		}
	})

	t.Run("equity identity holds every year", func(t *testing.T) {
		for _, y := range results.Years {
			if math.Abs(y.Equity-(y.PropertyValue-y.LoanBalance)) > 0.01 {
				t.Errorf("year %d equity = %.2f, property - loan = %.2f",
					y.Year, y.Equity, y.PropertyValue-y.LoanBalance)
			}
		}
	})

	t.Run("cumulative cash flow is a running sum", func(t *testing.T) {
		sum := 0.0
		for _, y := range results.Years {
			sum += y.CashFlowAfterCapEx
			if math.Abs(y.CumulativeCashFlow-sum) > 0.01 {
				t.Errorf("year %d cumulative = %.2f, want %.2f", y.Year, y.CumulativeCashFlow, sum)
			}
		}
	})

	t.Run("loan balance declines monotonically", func(t *testing.T) {
		prev := baseParams().LoanAmount
		for _, y := range results.Years {
			if y.LoanBalance > prev+0.01 {
				t.Errorf("year %d balance %.2f above prior %.2f", y.Year, y.LoanBalance, prev)
			}
			prev = y.LoanBalance
		}
	})

	t.Run("schedule has twelve entries per year", func(t *testing.T) {
		if len(results.Schedule) != 120 {
			t.Fatalf("got %d schedule entries, want 120", len(results.Schedule))
		}
		if results.Schedule[0].Year != 1 || results.Schedule[0].Month != 1 {
			t.Errorf("first entry = year %d month %d, want 1/1",
				results.Schedule[0].Year, results.Schedule[0].Month)
		}
		last := results.Schedule[119]
		if last.Year != 10 || last.Month != 12 {
			t.Errorf("last entry = year %d month %d, want 10/12", last.Year, last.Month)
		}
	})

	t.Run("schedule payments split into interest and principal", func(t *testing.T) {
		for _, e := range results.Schedule {
			if math.Abs(e.Payment-(e.Principal+e.Interest)) > 0.01 {
				t.Errorf("year %d month %d: payment %.4f != principal %.4f + interest %.4f",
					e.Year, e.Month, e.Payment, e.Principal, e.Interest)
			}
		}
	})

	t.Run("summary totals are consistent", func(t *testing.T) {
		s := results.Summary
		finalYear := results.Years[len(results.Years)-1]
		if math.Abs(s.TotalCashFlow-finalYear.CumulativeCashFlow) > 0.01 {
			t.Errorf("TotalCashFlow = %.2f, final cumulative = %.2f",
				s.TotalCashFlow, finalYear.CumulativeCashFlow)
		}
		wantPaydown := baseParams().LoanAmount - finalYear.LoanBalance
		if math.Abs(s.TotalPrincipalPaydown-wantPaydown) > 0.01 {
			t.Errorf("TotalPrincipalPaydown = %.2f, want %.2f", s.TotalPrincipalPaydown, wantPaydown)
		}
		wantReturn := s.TotalCashFlow + s.TotalPrincipalPaydown + s.TotalAppreciation
		if math.Abs(s.TotalReturn-wantReturn) > 0.01 {
			t.Errorf("TotalReturn = %.2f, want %.2f", s.TotalReturn, wantReturn)
		}
	})

	t.Run("cash on cash uses the initial investment", func(t *testing.T) {
		y1 := results.Years[0]
		want := y1.CashFlowAfterCapEx / 40000 * 100
		if math.Abs(y1.CashOnCashReturn-want) > 1e-9 {
			t.Errorf("year 1 CoC = %v, want %v", y1.CashOnCashReturn, want)
		}
	})
}

func TestGenerateCapitalEvents(t *testing.T) {
	t.Run("event reduces that year's cash flow by its amount", func(t *testing.T) {
		without, err := Generate(baseParams())
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		p := baseParams()
		p.CapitalEvents = []models.CapitalEvent{
			{Year: 3, Type: "roof", Amount: 12000},
		}
		with, err := Generate(p)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		diff := without.Years[2].CashFlowAfterCapEx - with.Years[2].CashFlowAfterCapEx
		if math.Abs(diff-12000) > 0.01 {
			t.Errorf("year 3 cash-flow impact = %.2f, want 12000", diff)
		}
		if with.Years[2].CashFlowBeforeCapEx != without.Years[2].CashFlowBeforeCapEx {
			t.Error("cash flow before capex should be unaffected by the event")
		}
	})

	t.Run("improvement adds value from its year onward", func(t *testing.T) {
		p := baseParams()
		p.CapitalEvents = []models.CapitalEvent{
			{Year: 3, Type: "renovation", Amount: 20000, IsCapitalImprovement: true, ValueAddPercentage: 1.5},
		}
		with, err := Generate(p)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		without, _ := Generate(baseParams())

		if got := with.Years[1].PropertyValue - without.Years[1].PropertyValue; got != 0 {
			t.Errorf("year 2 value lifted by %.2f before the improvement", got)
		}
		for year := 3; year <= 10; year++ {
			got := with.Years[year-1].PropertyValue - without.Years[year-1].PropertyValue
			if math.Abs(got-30000) > 0.01 {
				t.Errorf("year %d value add = %.2f, want 30000", year, got)
			}
		}
	})

	t.Run("plain cost adds no value", func(t *testing.T) {
		p := baseParams()
		p.CapitalEvents = []models.CapitalEvent{
			{Year: 2, Type: "hvac", Amount: 8000},
		}
		with, _ := Generate(p)
		without, _ := Generate(baseParams())
		if with.Years[9].PropertyValue != without.Years[9].PropertyValue {
			t.Error("non-improvement event changed the property value")
		}
	})

	t.Run("events beyond the horizon are ignored", func(t *testing.T) {
		p := baseParams()
		p.CapitalEvents = []models.CapitalEvent{
			{Year: 15, Type: "roof", Amount: 12000},
		}
		with, err := Generate(p)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		without, _ := Generate(baseParams())
		if with.Summary.TotalCashFlow != without.Summary.TotalCashFlow {
			t.Error("out-of-horizon event affected the projection")
		}
	})
}

func TestGenerateInterestOnly(t *testing.T) {
	t.Run("no principal during the IO window", func(t *testing.T) {
		p := baseParams()
		p.InterestOnly = true
		p.IOPeriodMonths = 24

		results, err := Generate(p)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		if results.Years[0].PrincipalPaid != 0 || results.Years[1].PrincipalPaid != 0 {
			t.Errorf("principal paid during IO window: year1=%v year2=%v",
				results.Years[0].PrincipalPaid, results.Years[1].PrincipalPaid)
		}
		if results.Years[1].LoanBalance != p.LoanAmount {
			t.Errorf("balance after IO window = %.2f, want %.2f",
				results.Years[1].LoanBalance, p.LoanAmount)
		}
		if results.Years[2].PrincipalPaid <= 0 {
			t.Error("expected principal paydown once amortization starts")
		}
	})

	t.Run("IO payments equal interest on the full balance", func(t *testing.T) {
		p := baseParams()
		p.InterestOnly = true
		p.IOPeriodMonths = 12

		results, err := Generate(p)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		wantMonthly := p.LoanAmount * p.InterestRate / 12
		for _, e := range results.Schedule[:12] {
			if math.Abs(e.Payment-wantMonthly) > 0.01 {
				t.Errorf("IO month %d payment = %.2f, want %.2f", e.Month, e.Payment, wantMonthly)
			}
		}
	})

	t.Run("flag without period never amortizes", func(t *testing.T) {
		p := baseParams()
		p.InterestOnly = true
		p.IOPeriodMonths = 0

		results, err := Generate(p)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		final := results.Years[len(results.Years)-1]
		if final.LoanBalance != p.LoanAmount {
			t.Errorf("final balance = %.2f, want untouched %.2f", final.LoanBalance, p.LoanAmount)
		}
	})
}

func TestGenerateShortLoan(t *testing.T) {
	// A loan shorter than the horizon: the schedule stops once the balance
	// reaches zero and later years carry no debt service.
	p := baseParams()
	p.LoanAmount = 50000
	p.InterestRate = 0.05
	p.TermMonths = 60
	p.ProjectionYears = 8

	results, err := Generate(p)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// Final-payment rounding may add one near-zero cleanup entry.
	if len(results.Schedule) < 60 || len(results.Schedule) > 61 {
		t.Errorf("got %d schedule entries, want 60 or 61", len(results.Schedule))
	}
	for year := 6; year <= 8; year++ {
		y := results.Years[year-1]
		if y.DebtService > 0.01 || y.LoanBalance > 0.01 {
			t.Errorf("year %d: debt service %.2f balance %.2f after payoff", year, y.DebtService, y.LoanBalance)
		}
	}
	if math.Abs(results.Summary.TotalPrincipalPaydown-50000) > 0.01 {
		t.Errorf("TotalPrincipalPaydown = %.2f, want 50000", results.Summary.TotalPrincipalPaydown)
	}
}

func TestGenerateNoLoan(t *testing.T) {
	p := baseParams()
	p.LoanAmount = 0
	p.TermMonths = 0

	results, err := Generate(p)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(results.Schedule) != 0 {
		t.Errorf("got %d schedule entries for an all-cash deal, want 0", len(results.Schedule))
	}
	y1 := results.Years[0]
	if math.Abs(y1.CashFlowBeforeCapEx-y1.NOI) > 1e-9 {
		t.Errorf("all-cash cash flow = %.2f, want NOI %.2f", y1.CashFlowBeforeCapEx, y1.NOI)
	}
}

func BenchmarkGenerate(b *testing.B) {
	p := baseParams()
	p.ProjectionYears = 30
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Generate(p); err != nil {
			b.Fatal(err)
		}
	}
}
