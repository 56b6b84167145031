package server

import (
	"log/slog"
	"net/http"

	"github.com/comodofi/perps/app"
	"github.com/comodofi/perps/market"
)

// indexHandler serves index registry and pricing endpoints.
type indexHandler struct {
	core   *app.App
	logger *slog.Logger
}

type listIndicesResponse struct {
	Indices []market.Index `json:"indices"`
}

// GET /api/indices
func (h *indexHandler) listIndices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, listIndicesResponse{Indices: h.core.ListIndices()})
}

// POST /api/indices
func (h *indexHandler) registerIndex(w http.ResponseWriter, r *http.Request) {
	var idx market.Index
	if err := decodeJSON(r, &idx); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.core.RegisterIndex(r.Context(), idx); err != nil {
		h.logger.Warn("register index rejected",
			slog.String("symbol", idx.Symbol),
			slog.String("error", err.Error()),
		)
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, idx)
}

// GET /api/indices/{symbol}/series
func (h *indexHandler) getSeries(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")

	s, err := h.core.Series(r.Context(), symbol)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"symbol": symbol, "series": s})
}

// GET /api/indices/{symbol}/mark
func (h *indexHandler) getMark(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")

	mark, err := h.core.Mark(r.Context(), symbol)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"symbol": symbol, "mark": mark})
}

// GET /api/indices/{symbol}/funding
func (h *indexHandler) getFunding(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")

	est, err := h.core.FundingEstimate(r.Context(), symbol)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"symbol": symbol, "funding_pct": est})
}
