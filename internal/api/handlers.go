package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"pharmadash/internal/dashboard"
	"pharmadash/internal/provider"
	"pharmadash/internal/score"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	svc     *dashboard.Service
	hub     *Hub
	timeout time.Duration
	log     *slog.Logger
}

// NewHandler creates a new Handler. timeout bounds each request's upstream work.
func NewHandler(svc *dashboard.Service, hub *Hub, timeout time.Duration, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Handler{svc: svc, hub: hub, timeout: timeout, log: log}
}

// PriceRow is one company's latest quote and its move from the previous trend point.
type PriceRow struct {
	Company   string          `json:"company"`
	Symbol    string          `json:"symbol"`
	Price     float64         `json:"price"`
	Change    float64         `json:"change"`
	ChangePct float64         `json:"change_pct"`
	Source    provider.Source `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
}

type pricesResponse struct {
	Timestamp time.Time  `json:"timestamp"`
	Prices    []PriceRow `json:"prices"`
}

type streamMessage struct {
	Type string         `json:"type"`
	Data pricesResponse `json:"data"`
}

// EncodeRound renders a poll round as a stream message. The rows match GET /prices.
func (h *Handler) EncodeRound(round dashboard.Prices) ([]byte, error) {
	return json.Marshal(streamMessage{Type: "prices", Data: h.priceRows(round)})
}

// priceRows lists the round in table order.
func (h *Handler) priceRows(round dashboard.Prices) pricesResponse {
	companies := h.svc.Companies()
	rows := make([]PriceRow, 0, len(companies))
	for _, c := range companies {
		q, ok := round.Quotes[c.Name]
		if !ok {
			continue
		}
		m := round.Moves[c.Name]
		rows = append(rows, PriceRow{
			Company:   c.Name,
			Symbol:    c.Symbol,
			Price:     q.Price,
			Change:    m.Change,
			ChangePct: m.ChangePct,
			Source:    q.Source,
			Timestamp: q.Timestamp,
		})
	}
	return pricesResponse{Timestamp: round.Timestamp, Prices: rows}
}

func (h *Handler) ctx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}

// HealthCheck handles GET /healthz
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetPrices handles GET /api/v1/prices
func (h *Handler) GetPrices(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	round := h.svc.Latest(ctx)
	respondJSON(w, http.StatusOK, h.priceRows(round))
}

// GetMarketCaps handles GET /api/v1/market-caps
func (h *Handler) GetMarketCaps(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	respondJSON(w, http.StatusOK, map[string]any{"market_caps": h.svc.MarketCaps(ctx)})
}

// GetMetrics handles GET /api/v1/metrics
func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	ov, err := h.svc.MarketMetrics(ctx)
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ov)
}

// GetScores handles GET /api/v1/scores?points=N
func (h *Handler) GetScores(w http.ResponseWriter, r *http.Request) {
	points, ok := pointsParam(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()

	results, err := h.svc.Scores(ctx, points)
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"points": score.ClampPoints(points), "scores": results})
}

// GetTrends handles GET /api/v1/trends?points=N
func (h *Handler) GetTrends(w http.ResponseWriter, r *http.Request) {
	points, ok := pointsParam(w, r)
	if !ok {
		return
	}
	points = score.ClampPoints(points)
	respondJSON(w, http.StatusOK, map[string]any{"points": points, "trends": h.svc.Trends(points)})
}

// GetNews handles GET /api/v1/news
func (h *Handler) GetNews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	d, err := h.svc.News(ctx)
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

// GetTrials handles GET /api/v1/trials
func (h *Handler) GetTrials(w http.ResponseWriter, r *http.Request) {
	list := h.svc.Trials()
	respondJSON(w, http.StatusOK, map[string]any{"total": len(list), "trials": list})
}

// Refresh handles POST /api/v1/refresh. With ?poll=true a new round is polled right away.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.svc.Refresh()
	if poll, _ := strconv.ParseBool(r.URL.Query().Get("poll")); poll {
		ctx, cancel := h.ctx(r)
		defer cancel()
		round := h.svc.Poll(ctx)
		if h.hub != nil {
			if b, err := h.EncodeRound(round); err == nil {
				h.hub.Broadcast(b)
			}
		}
		respondJSON(w, http.StatusOK, h.priceRows(round))
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "refreshed"})
}

// Stream handles GET /api/v1/stream. The latest round is sent on connect.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, http.StatusNotFound, "streaming disabled")
		return
	}
	ctx, cancel := h.ctx(r)
	initial, err := h.EncodeRound(h.svc.Latest(ctx))
	cancel()
	if err != nil {
		initial = nil
	}
	h.hub.Serve(w, r, initial)
}

// exportHeader names the CSV columns of GET /api/v1/export.
var exportHeader = []string{"company", "timestamp", "price", "change", "percent_change", "market_cap_billion_usd", "data_source"}

// Export handles GET /api/v1/export?points=N and streams the trend history as CSV.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	points, ok := pointsParam(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	rows := h.svc.Export(ctx, points)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="pharma_companies_%s.csv"`, time.Now().UTC().Format("20060102_150405")))
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write(exportHeader)
	for _, row := range rows {
		_ = cw.Write([]string{
			row.Company,
			row.Timestamp.Format(time.RFC3339),
			formatFloat(row.Price),
			formatFloat(row.Change),
			formatFloat(row.PercentChange),
			formatFloat(row.MarketCapBillions),
			row.Source.String(),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.log.Warn("export write failed", "request_id", RequestID(r.Context()), "error", err)
	}
}

// GetSources handles GET /api/v1/sources
func (h *Handler) GetSources(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"sources": h.svc.Sources()})
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func (h *Handler) upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Warn("request failed", "path", r.URL.Path, "request_id", RequestID(r.Context()), "error", err)
	respondError(w, http.StatusBadGateway, err.Error())
}

// pointsParam parses ?points; absent means 0 (the default window).
func pointsParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	v := r.URL.Query().Get("points")
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		respondError(w, http.StatusBadRequest, "points must be a positive integer")
		return 0, false
	}
	return n, true
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
