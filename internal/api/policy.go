package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/Underwriter/internal/store"
)

type PolicyHandler struct {
	engines *EngineSource
	store   store.PolicyStore
}

func NewPolicyHandler(engines *EngineSource, s store.PolicyStore) *PolicyHandler {
	return &PolicyHandler{engines: engines, store: s}
}

// Active returns the policy the engine currently evaluates against.
func (h *PolicyHandler) Active(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engines.Get().Policy())
}

// Versions lists the registry. Without a registry only the loaded policy exists.
func (h *PolicyHandler) Versions(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		p := h.engines.Get().Policy()
		writeJSON(w, http.StatusOK, []store.PolicyRecord{{Version: p.Version, Policy: p, Active: true}})
		return
	}
	recs, err := h.store.ListPolicies(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recs == nil {
		recs = []*store.PolicyRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}
