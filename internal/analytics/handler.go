package analytics

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/logger"
)

// Handler exposes the aggregated search statistics.
type Handler struct {
	aggregator *Aggregator
	logger     *slog.Logger
}

func NewHandler(aggregator *Aggregator) *Handler {
	return &Handler{
		aggregator: aggregator,
		logger:     slog.Default().With("component", "analytics-handler"),
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/analytics", h.Stats)
}

// Stats handles GET /api/v1/analytics?top=. top limits both query rankings
// and defaults to 10.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	top := topQueryCount
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxTopQueries {
			h.writeError(w, http.StatusBadRequest, fmt.Sprintf("top must be an integer between 1 and %d", maxTopQueries))
			return
		}
		top = n
	}
	stats := h.aggregator.StatsTop(top)
	logger.FromContext(r.Context()).Debug("analytics served",
		"total_searches", stats.TotalSearches,
		"top", top,
	)
	w.Header().Set("Cache-Control", "no-store")
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
