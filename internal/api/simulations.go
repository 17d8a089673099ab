package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Underwriter/internal/cache"
	"github.com/MikeSquared-Agency/Underwriter/internal/hermes"
	"github.com/MikeSquared-Agency/Underwriter/internal/loan"
	"github.com/MikeSquared-Agency/Underwriter/internal/present"
	"github.com/MikeSquared-Agency/Underwriter/internal/simulation"
)

type SimulationsHandler struct {
	engines   *EngineSource
	presenter *present.Presenter
	cache     cache.ReportCache
	hermes    hermes.Client
	logger    *slog.Logger
}

func NewSimulationsHandler(engines *EngineSource, p *present.Presenter, c cache.ReportCache, h hermes.Client, logger *slog.Logger) *SimulationsHandler {
	return &SimulationsHandler{engines: engines, presenter: p, cache: c, hermes: h, logger: logger}
}

type SimulationRequest struct {
	Profile    loan.ApplicantProfile `json:"profile"`
	Loan       loan.Request          `json:"loan"`
	CallerRole string                `json:"caller_role,omitempty"`
}

type SimulationResponse struct {
	SimulationID string           `json:"simulation_id"`
	Cached       bool             `json:"cached"`
	Report       map[string]any   `json:"report"`
	Messages     present.Messages `json:"messages"`
}

func (h *SimulationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { SimulationDuration.Observe(time.Since(start).Seconds()) }()

	var req SimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	role := req.CallerRole
	if strings.TrimSpace(role) == "" {
		role = r.Header.Get(CallerRoleHeader)
	}

	simID := uuid.New().String()
	engine := h.engines.Get()

	report, cached, err := h.evaluate(r, engine, req.Profile, req.Loan, role)
	if err != nil {
		h.recordRejection(simID, err)
		if writeValidationError(w, err) {
			return
		}
		h.logger.Error("simulation failed", "simulation_id", simID, "error", err)
		writeError(w, http.StatusInternalServerError, "simulation failed")
		return
	}

	SimulationsTotal.WithLabelValues(report.Decision.Level.String(), string(report.Verdict.Outcome)).Inc()
	h.publishEvaluated(simID, report)

	writeJSON(w, http.StatusOK, SimulationResponse{
		SimulationID: simID,
		Cached:       cached,
		Report:       report.Document(),
		Messages:     h.presenter.Render(report, h.presenter.Match(languagePreference(r))),
	})
}

// evaluate consults the cache around the engine. Cache errors degrade to a
// plain evaluation.
func (h *SimulationsHandler) evaluate(r *http.Request, engine *simulation.Engine, profile loan.ApplicantProfile, req loan.Request, role string) (simulation.Report, bool, error) {
	if h.cache == nil {
		report, err := engine.Evaluate(profile, req, role)
		return report, false, err
	}

	key, err := cache.Key(engine.Policy(), profile, req, role)
	if err != nil {
		return simulation.Report{}, false, err
	}
	if hit, ok, err := h.cache.Get(r.Context(), key); err != nil {
		h.logger.Warn("report cache unavailable", "error", err)
		CacheLookupsTotal.WithLabelValues("error").Inc()
	} else if ok {
		CacheLookupsTotal.WithLabelValues("hit").Inc()
		return *hit, true, nil
	} else {
		CacheLookupsTotal.WithLabelValues("miss").Inc()
	}

	report, err := engine.Evaluate(profile, req, role)
	if err != nil {
		return simulation.Report{}, false, err
	}
	if err := h.cache.Set(r.Context(), key, report); err != nil {
		h.logger.Warn("report cache write failed", "error", err)
	}
	return report, false, nil
}

func (h *SimulationsHandler) recordRejection(simID string, err error) {
	fes := loan.FieldErrors(err)
	if len(fes) == 0 {
		return
	}
	kinds := map[string]bool{}
	fields := make([]string, 0, len(fes))
	for _, fe := range fes {
		kinds[errorKind(fe)] = true
		fields = append(fields, fe.Field)
	}
	for kind := range kinds {
		ValidationFailuresTotal.WithLabelValues(kind).Inc()
	}

	if h.hermes == nil {
		return
	}
	evt := hermes.SimulationRejectedEvent{SimulationID: simID, Fields: fields, Timestamp: time.Now().UTC()}
	if err := h.hermes.Publish(hermes.SubjectSimulationRejected(simID), evt); err != nil {
		h.logger.Warn("failed to publish rejection", "simulation_id", simID, "error", err)
	}
}

func (h *SimulationsHandler) publishEvaluated(simID string, r simulation.Report) {
	if h.hermes == nil {
		return
	}
	evt := hermes.SimulationEvaluatedEvent{
		SimulationID:   simID,
		PolicyVersion:  r.PolicyVersion,
		ProductType:    string(r.Request.ProductType),
		Amount:         r.Request.Amount.String(),
		TotalScore:     r.Score.TotalScore,
		Grade:          r.Score.Grade,
		Ratio:          r.Current.Ratio,
		StressedRatio:  r.Stressed.Ratio,
		AuthorityLevel: r.Decision.Level.String(),
		Rule:           r.Decision.Rule,
		Outcome:        string(r.Verdict.Outcome),
		CallerRole:     string(r.Verdict.CallerRole),
		RiskNote:       string(r.RiskNote),
		Timestamp:      time.Now().UTC(),
	}
	if err := h.hermes.Publish(hermes.SubjectSimulationEvaluated(simID), evt); err != nil {
		h.logger.Warn("failed to publish evaluation", "simulation_id", simID, "error", err)
	}
}

// languagePreference prefers ?lang= over Accept-Language.
func languagePreference(r *http.Request) string {
	if lang := strings.TrimSpace(r.URL.Query().Get("lang")); lang != "" {
		return lang
	}
	return r.Header.Get("Accept-Language")
}
