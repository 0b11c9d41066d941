package server

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/stridelog/stridelog/internal/rollup"
	"github.com/stridelog/stridelog/internal/timeline"
	"github.com/stridelog/stridelog/internal/xerrors"
	"github.com/stridelog/stridelog/internal/xhttp"
	"github.com/stridelog/stridelog/internal/xslog"
	"github.com/stridelog/stridelog/internal/xsync"
)

// defaultRangeDays is the window served when the request names no range:
// the trailing 30 days ending today.
const defaultRangeDays = 30

type Handler struct {
	sync      xsync.SyncService
	sessionID string

	// cachePing probes the cache backend for the health endpoint; nil
	// when the backend has nothing to probe.
	cachePing func(ctx context.Context) error

	now func() time.Time
}

func NewHandler(syncService xsync.SyncService, sessionID string, cachePing func(ctx context.Context) error) *Handler {
	return &Handler{
		sync:      syncService,
		sessionID: sessionID,
		cachePing: cachePing,
		now:       time.Now,
	}
}

func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/days", h.HandleDays)
	mux.HandleFunc("POST /api/v1/cache/refresh", h.HandleRefresh)
	mux.HandleFunc("GET /healthz", h.HandleHealth)
	return mux
}

type daysResponse struct {
	Start timeline.DateKey `json:"start"`
	End   timeline.DateKey `json:"end"`
	Days  []rollup.DayRow  `json:"days"`
}

func (h *Handler) HandleDays(w http.ResponseWriter, r *http.Request) {
	start, end, err := h.parseRange(r.URL.Query())
	if err != nil {
		xerrors.WriteError(r.Context(), w, err)
		return
	}

	rows, err := h.sync.Days(r.Context(), h.sessionID, start, end)
	if err != nil {
		xerrors.WriteError(r.Context(), w, err)
		return
	}

	xhttp.WriteOK(w, daysResponse{Start: start, End: end, Days: rows})
}

type refreshResponse struct {
	Status string `json:"status"`
}

func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.sync.Refresh(r.Context(), h.sessionID); err != nil {
		xerrors.WriteError(r.Context(), w, err)
		return
	}
	xhttp.WriteAccepted(w, refreshResponse{Status: "refreshing"})
}

type healthResponse struct {
	Status string `json:"status"`
	Cache  string `json:"cache"`
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Cache: "ok"}
	if h.cachePing != nil {
		if err := h.cachePing(r.Context()); err != nil {
			xslog.FromContext(r.Context()).ErrorContext(r.Context(), "health check failed", xslog.Error(err))
			xhttp.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Cache: "unreachable"})
			return
		}
	}
	xhttp.WriteOK(w, resp)
}

func (h *Handler) parseRange(query url.Values) (timeline.DateKey, timeline.DateKey, error) {
	end := timeline.NewDateKey(h.now())
	start := timeline.NewDateKey(h.now().AddDate(0, 0, -(defaultRangeDays - 1)))

	if s := query.Get("start"); s != "" {
		parsed, err := timeline.ParseDateKey(s)
		if err != nil {
			return "", "", xerrors.BadRequest(
				xerrors.WithMessage("invalid start date, expected YYYY-MM-DD"),
				xerrors.WithCause(err),
			)
		}
		start = parsed
	}
	if s := query.Get("end"); s != "" {
		parsed, err := timeline.ParseDateKey(s)
		if err != nil {
			return "", "", xerrors.BadRequest(
				xerrors.WithMessage("invalid end date, expected YYYY-MM-DD"),
				xerrors.WithCause(err),
			)
		}
		end = parsed
	}

	if end.Before(start) {
		return "", "", xerrors.BadRequest(xerrors.WithMessage("end date precedes start date"))
	}
	return start, end, nil
}
