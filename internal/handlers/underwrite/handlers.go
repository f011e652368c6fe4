// Package underwrite exposes the calculation engine over a thin JSON
// surface. Handlers hold no state beyond the loaded configuration; every
// request carries its full deal description.
package underwrite

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"underwriter/internal/config"
	"underwriter/internal/models"
	"underwriter/internal/services/montecarlo"
	"underwriter/internal/services/projection"
	"underwriter/internal/services/underwrite"
)

var cfg *config.Config

// Initialize wires the handler package to the loaded configuration.
func Initialize(c *config.Config) {
	cfg = c
}

// RegisterRoutes mounts the underwriting endpoints on the router.
func RegisterRoutes(r chi.Router) {
	r.Post("/underwrite/validate", handleValidate)
	r.Post("/underwrite/analyze", handleAnalyze)
	r.Post("/underwrite/returns/irr", handleIRR)
	r.Post("/underwrite/returns/moic", handleMOIC)
	r.Post("/underwrite/projection", handleProjection)
	r.Post("/underwrite/montecarlo", handleMonteCarlo)
	r.Post("/underwrite/montecarlo/defaults", handleMonteCarloDefaults)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decode(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}

func handleValidate(w http.ResponseWriter, r *http.Request) {
	var deal models.DealState
	if err := decode(r, &deal); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, underwrite.NewCalculator(&deal).Validate())
}

func handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var deal models.DealState
	if err := decode(r, &deal); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, underwrite.NewCalculator(&deal).Analyze())
}

// returnsRequest carries a deal plus hold-period terms for IRR/MOIC.
type returnsRequest struct {
	Deal           models.DealState `json:"deal"`
	HoldYears      int              `json:"hold_years"`
	SellingCostPct float64          `json:"selling_cost_pct"`
}

func (req *returnsRequest) validate() error {
	if req.HoldYears < 1 {
		return errors.New("hold_years must be at least 1")
	}
	if req.SellingCostPct < 0 || req.SellingCostPct > 1 {
		return errors.New("selling_cost_pct must be within [0,1]")
	}
	return nil
}

func handleIRR(w http.ResponseWriter, r *http.Request) {
	var req returnsRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	breakdown, err := underwrite.NewCalculator(&req.Deal).IRR(req.HoldYears, req.SellingCostPct)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

func handleMOIC(w http.ResponseWriter, r *http.Request) {
	var req returnsRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	breakdown, err := underwrite.NewCalculator(&req.Deal).MOIC(req.HoldYears, req.SellingCostPct)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

func handleProjection(w http.ResponseWriter, r *http.Request) {
	var params models.CashFlowProjectionParams
	if err := decode(r, &params); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if cfg != nil && params.ProjectionYears > cfg.MaxProjectionYears {
		writeError(w, http.StatusBadRequest,
			errors.New("projection_years exceeds the configured maximum"))
		return
	}

	// Events created through the API get stable IDs so clients can
	// reference them in later edits.
	for i := range params.CapitalEvents {
		if params.CapitalEvents[i].ID == "" {
			params.CapitalEvents[i].ID = uuid.New().String()
		}
	}

	result, err := projection.Generate(&params)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// monteCarloRequest carries base params plus optional distribution overrides
// and run controls.
type monteCarloRequest struct {
	Base        models.CashFlowProjectionParams `json:"base"`
	Inputs      *models.MonteCarloInputs        `json:"inputs,omitempty"`
	Simulations int                             `json:"simulations,omitempty"`
	Seed        uint64                          `json:"seed,omitempty"`
}

func handleMonteCarlo(w http.ResponseWriter, r *http.Request) {
	var req monteCarloRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	inputs := montecarlo.DefaultInputs(&req.Base)
	if req.Inputs != nil {
		inputs = *req.Inputs
	}

	sim := montecarlo.New(req.Base, inputs)
	sim.Seed = req.Seed
	if req.Simulations > 0 {
		sim.Simulations = req.Simulations
	} else if cfg != nil {
		sim.Simulations = cfg.DefaultSimulations
	}
	if cfg != nil && sim.Simulations > cfg.MaxSimulations {
		writeError(w, http.StatusBadRequest,
			errors.New("simulations exceeds the configured maximum"))
		return
	}

	results, err := sim.Run()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func handleMonteCarloDefaults(w http.ResponseWriter, r *http.Request) {
	var base models.CashFlowProjectionParams
	if err := decode(r, &base); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, montecarlo.DefaultInputs(&base))
}
