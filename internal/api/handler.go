package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"agriinsight/internal/dataset"
	"agriinsight/internal/domain"
	"agriinsight/internal/insight"
	"agriinsight/internal/weather"
)

const (
	defaultSeriesDays  = 365
	defaultCompareDays = 30
	defaultCompared    = 3
	maxDays            = 3650
)

// Handler serves the application routes.
type Handler struct {
	svc Service
}

// NewHandler creates a handler over svc.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the API under /api.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/ask", h.Ask)
		r.Get("/records", h.Records)
		r.Post("/insight", h.Insight)
		r.Get("/states", h.States)
		r.Get("/rainfall/compare", h.CompareRainfall)
		r.Get("/rainfall/{name}", h.Rainfall)
		r.Get("/rainfall/{name}/latest", h.LatestRainfall)
	})
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

// Ask answers a free-form question.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	q := strings.TrimSpace(req.Question)
	if q == "" {
		writeError(w, http.StatusBadRequest, "Type a question first.")
		return
	}
	writeJSON(w, http.StatusOK, askResponse{Answer: h.svc.Ask(r.Context(), q)})
}

type recordsResponse struct {
	Total    int             `json:"total"`
	Filtered int             `json:"filtered"`
	States   []string        `json:"states"`
	Crops    []string        `json:"crops"`
	Columns  []string        `json:"columns"`
	Rows     []domain.Record `json:"rows"`
}

// Records returns dataset rows, optionally filtered by ?state= and ?crop=
// (repeatable or comma separated) and capped by ?limit=.
func (h *Handler) Records(w http.ResponseWriter, r *http.Request) {
	limit := -1
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	all := h.svc.Records(r.Context())
	filtered := dataset.Apply(all, queryFilter(r))
	page := filtered
	if limit >= 0 {
		page = dataset.Head(filtered, limit)
	}
	rows := page.Rows
	if rows == nil {
		rows = []domain.Record{}
	}
	writeJSON(w, http.StatusOK, recordsResponse{
		Total:    all.Len(),
		Filtered: filtered.Len(),
		States:   dataset.Distinct(all, "state"),
		Crops:    dataset.Distinct(all, "commodity"),
		Columns:  page.Columns,
		Rows:     rows,
	})
}

type insightRequest struct {
	Question string   `json:"question"`
	States   []string `json:"states"`
	Crops    []string `json:"crops"`
}

type insightResponse struct {
	Intent string `json:"intent"`
	Answer string `json:"answer"`
}

// Insight runs the deterministic interpreter over the filtered dataset.
func (h *Handler) Insight(w http.ResponseWriter, r *http.Request) {
	var req insightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	q := strings.TrimSpace(req.Question)
	if q == "" {
		writeError(w, http.StatusBadRequest, "Enter a question.")
		return
	}
	table := dataset.Apply(h.svc.Records(r.Context()), dataset.Filter{States: req.States, Crops: req.Crops})
	writeJSON(w, http.StatusOK, insightResponse{
		Intent: string(insight.Classify(q)),
		Answer: h.svc.Insight(q, table),
	})
}

// States lists the supported rainfall locations.
func (h *Handler) States(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.States())
}

// Rainfall returns the daily series for ?days= (default 365).
func (h *Handler) Rainfall(w http.ResponseWriter, r *http.Request) {
	days, ok := parseDays(w, r, defaultSeriesDays)
	if !ok {
		return
	}
	series, err := h.svc.Rainfall(r.Context(), chi.URLParam(r, "name"), days)
	if err != nil {
		writeFetchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// LatestRainfall returns the newest reading of the 7-day series.
func (h *Handler) LatestRainfall(w http.ResponseWriter, r *http.Request) {
	reading, err := h.svc.LatestRainfall(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeFetchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

// CompareRainfall averages ?states= (default: the first three supported)
// over ?days= (default 30). Per-location failures stay in their row.
func (h *Handler) CompareRainfall(w http.ResponseWriter, r *http.Request) {
	days, ok := parseDays(w, r, defaultCompareDays)
	if !ok {
		return
	}
	names := splitValues(r.URL.Query()["states"])
	if len(names) == 0 {
		names = h.svc.States()
		if len(names) > defaultCompared {
			names = names[:defaultCompared]
		}
	}
	writeJSON(w, http.StatusOK, h.svc.CompareRainfall(r.Context(), names, days))
}

func parseDays(w http.ResponseWriter, r *http.Request, def int) (int, bool) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return def, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 || days > maxDays {
		writeError(w, http.StatusBadRequest, "days must be an integer between 1 and 3650")
		return 0, false
	}
	return days, true
}

func writeFetchError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch {
	case weather.IsKind(err, weather.KindUnsupported), weather.IsKind(err, weather.KindNoData):
		status = http.StatusNotFound
	}
	writeError(w, status, err.Error())
}

func queryFilter(r *http.Request) dataset.Filter {
	q := r.URL.Query()
	return dataset.Filter{
		States: splitValues(q["state"]),
		Crops:  splitValues(q["crop"]),
	}
}

func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
