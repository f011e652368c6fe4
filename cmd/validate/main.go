// Package main provides a CLI tool for smoke-testing a running underwriting
// server's endpoints.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type endpoint struct {
	path     string
	method   string
	body     string
	contains []string
}

// sampleDeal is a complete financed single-family deal; every calculation
// endpoint accepts it.
const sampleDeal = `{
	"property_type": "sfr",
	"sfr": {"monthly_rent": 2000},
	"purchase_price": 200000,
	"vacancy_rate": 0.05,
	"operating": {
		"monthly_taxes": 250,
		"monthly_insurance": 100,
		"monthly_maintenance": 150,
		"management_pct": 0.08
	},
	"new_loan": {"principal": 160000, "annual_rate": 0.065, "term_months": 360},
	"down_payment": 40000,
	"closing_costs": 4000,
	"rent_growth_rate": 0.03,
	"expense_growth_rate": 0.02,
	"appreciation_rate": 0.03
}`

const sampleParams = `{
	"purchase_price": 200000,
	"initial_monthly_rent": 2000,
	"vacancy_rate": 0.05,
	"annual_taxes": 3000,
	"annual_insurance": 1200,
	"annual_maintenance": 1800,
	"loan_amount": 160000,
	"interest_rate": 0.065,
	"term_months": 360,
	"rent_growth_rate": 0.03,
	"expense_growth_rate": 0.02,
	"appreciation_rate": 0.03,
	"projection_years": 10,
	"initial_investment": 40000
}`

var endpoints = []endpoint{
	{path: "/api/health", method: "GET", contains: []string{`"status":"ok"`}},

	{path: "/underwrite/validate", method: "POST", body: sampleDeal, contains: []string{`"is_valid":true`}},
	{path: "/underwrite/analyze", method: "POST", body: sampleDeal, contains: []string{"monthly_noi", "cap_rate", "dscr"}},
	{path: "/underwrite/returns/moic", method: "POST",
		body:     `{"deal": ` + sampleDeal + `, "hold_years": 10, "selling_cost_pct": 0.06}`,
		contains: []string{"equity_multiple", "exit_proceeds"}},
	{path: "/underwrite/returns/irr", method: "POST",
		body:     `{"deal": ` + sampleDeal + `, "hold_years": 10, "selling_cost_pct": 0.06}`,
		contains: []string{"levered_irr", "unlevered_irr"}},

	{path: "/underwrite/projection", method: "POST", body: sampleParams, contains: []string{"cumulative_cash_flow"}},
	{path: "/underwrite/montecarlo", method: "POST",
		body:     `{"base": ` + sampleParams + `, "simulations": 200, "seed": 42}`,
		contains: []string{"probability_of_positive_return", "histogram"}},
	{path: "/underwrite/montecarlo/defaults", method: "POST", body: sampleParams, contains: []string{"rent_growth"}},
}

type result struct {
	endpoint endpoint
	status   int
	duration time.Duration
	err      error
	body     string
}

func main() {
	url := flag.String("url", "http://localhost:8080", "Base URL of the server to validate")
	verbose := flag.Bool("v", false, "Verbose output")
	timeout := flag.Int("timeout", 10, "Request timeout in seconds")
	flag.Parse()

	client := &http.Client{
		Timeout: time.Duration(*timeout) * time.Second,
	}

	fmt.Printf("Validating server at %s\n", *url)
	fmt.Printf("Testing %d endpoints...\n\n", len(endpoints))

	var passed, failed int

	for _, ep := range endpoints {
		r := validateEndpoint(client, *url, ep)

		if r.err != nil {
			failed++
			fmt.Printf("FAIL %s %s\n", ep.method, ep.path)
			fmt.Printf("     Error: %v\n", r.err)
		} else if r.status != http.StatusOK {
			failed++
			fmt.Printf("FAIL %s %s\n", ep.method, ep.path)
			fmt.Printf("     Status: %d (expected 200)\n", r.status)
		} else {
			passed++
			if *verbose {
				fmt.Printf("PASS %s %s (%v)\n", ep.method, ep.path, r.duration)
			}
		}
	}

	fmt.Printf("\n========================================\n")
	fmt.Printf("Results: %d passed, %d failed\n", passed, failed)

	if failed > 0 {
		os.Exit(1)
	}
}

func validateEndpoint(client *http.Client, baseURL string, ep endpoint) result {
	start := time.Now()

	var reqBody io.Reader
	if ep.body != "" {
		reqBody = strings.NewReader(ep.body)
	}
	req, err := http.NewRequest(ep.method, baseURL+ep.path, reqBody)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("failed to create request: %w", err)}
	}
	if ep.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("failed to read body: %w", err)}
	}

	duration := time.Since(start)

	r := result{
		endpoint: ep,
		status:   resp.StatusCode,
		duration: duration,
		body:     string(body),
	}

	ct := resp.Header.Get("Content-Type")
	if !strings.Contains(ct, "application/json") {
		r.err = fmt.Errorf("wrong content type: got %q, expected JSON", ct)
		return r
	}

	var js interface{}
	if err := json.Unmarshal(body, &js); err != nil {
		r.err = fmt.Errorf("invalid JSON: %w", err)
		return r
	}

	for _, needle := range ep.contains {
		if !strings.Contains(string(body), needle) {
			r.err = fmt.Errorf("missing expected content: %q", needle)
			return r
		}
	}

	return r
}
