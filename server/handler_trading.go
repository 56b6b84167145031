package server

import (
	"log/slog"
	"net/http"

	"github.com/comodofi/perps/app"
	"github.com/comodofi/perps/journal"
	"github.com/comodofi/perps/market"
	"github.com/comodofi/perps/risk"
)

// tradeHandler serves order, position, and activity endpoints. The caller's
// session rides in the X-Session-ID header; placing the first order without
// one creates a session and returns its ID in the same header.
type tradeHandler struct {
	core   *app.App
	logger *slog.Logger
}

type placeOrderRequest struct {
	Symbol   string  `json:"symbol"`
	Side     string  `json:"side"`
	Notional float64 `json:"notional"`
	Leverage int     `json:"leverage"`
}

type placeOrderResponse struct {
	SessionID string           `json:"session_id"`
	Position  market.Position  `json:"position"`
	Priced    risk.PricedOrder `json:"priced"`
	Balance   float64          `json:"balance"`
}

// POST /api/orders
func (h *tradeHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	side, err := market.ParseSide(req.Side)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := h.core.Sessions.GetOrCreate(r.Header.Get(sessionHeader))

	pos, priced, err := h.core.PlaceOrder(r.Context(), sess.ID, risk.Order{
		Symbol:   req.Symbol,
		Side:     side,
		Notional: req.Notional,
		Leverage: req.Leverage,
	})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	h.logger.Info("position opened",
		slog.String("session", sess.ID),
		slog.String("symbol", pos.Symbol),
		slog.String("side", string(side)),
		slog.Float64("notional", pos.Notional),
		slog.Int("leverage", pos.Leverage),
	)

	w.Header().Set(sessionHeader, sess.ID)
	writeJSON(w, http.StatusCreated, placeOrderResponse{
		SessionID: sess.ID,
		Position:  pos,
		Priced:    priced,
		Balance:   h.core.Balance(sess.ID),
	})
}

type listPositionsResponse struct {
	Positions []app.PositionView `json:"positions"`
	Balance   float64            `json:"balance"`
}

// GET /api/positions
func (h *tradeHandler) listPositions(w http.ResponseWriter, r *http.Request) {
	sid := r.Header.Get(sessionHeader)

	views, err := h.core.Positions(r.Context(), sid)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if views == nil {
		views = []app.PositionView{}
	}

	writeJSON(w, http.StatusOK, listPositionsResponse{
		Positions: views,
		Balance:   h.core.Balance(sid),
	})
}

// DELETE /api/positions/{id}
func (h *tradeHandler) closePosition(w http.ResponseWriter, r *http.Request) {
	sid := r.Header.Get(sessionHeader)
	positionID := r.PathValue("id")

	pnl, err := h.core.ClosePosition(r.Context(), sid, positionID)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	h.logger.Info("position closed",
		slog.String("session", sid),
		slog.String("position", positionID),
		slog.Float64("pnl", pnl),
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"pnl":     pnl,
		"balance": h.core.Balance(sid),
	})
}

// POST /api/session/reset
func (h *tradeHandler) resetSession(w http.ResponseWriter, r *http.Request) {
	sid := r.Header.Get(sessionHeader)

	if err := h.core.ResetSession(sid); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"balance": h.core.Balance(sid),
	})
}

// GET /api/activity
func (h *tradeHandler) getActivity(w http.ResponseWriter, r *http.Request) {
	recs, err := h.core.ActivityLog(r.Header.Get(sessionHeader))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if recs == nil {
		recs = []journal.Record{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"activity": recs})
}

// GET /api/activity/export
func (h *tradeHandler) exportActivity(w http.ResponseWriter, r *http.Request) {
	recs, err := h.core.ActivityLog(r.Header.Get(sessionHeader))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="activity.csv"`)
	if err := journal.WriteCSV(w, recs); err != nil {
		h.logger.Error("export activity failed", slog.String("error", err.Error()))
	}
}
