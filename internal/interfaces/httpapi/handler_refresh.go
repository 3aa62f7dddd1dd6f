package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/prediction-league/internal/usecase"
)

func (h *Handler) RefreshSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshSeason")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	activeOnly := false
	if raw := strings.TrimSpace(r.URL.Query().Get("active_only")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: active_only must be a boolean", usecase.ErrInvalidInput))
			return
		}
		activeOnly = v
	}

	if err := h.competitionService.RefreshSeason(ctx, seasonID, activeOnly); err != nil {
		h.logger.WarnContext(ctx, "season refresh failed", "season_id", seasonID, "active_only", activeOnly, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"season_id":   seasonID,
		"active_only": activeOnly,
	})
}

func (h *Handler) RefreshAllSeasons(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshAllSeasons")
	defer span.End()

	h.runRefresh(ctx, w, "full", h.refreshJobs.SyncAllSeasons)
}

func (h *Handler) RefreshAllActive(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshAllActive")
	defer span.End()

	h.runRefresh(ctx, w, "active", h.refreshJobs.SyncAllActive)
}

// runRefresh reports the summary even when some seasons failed.
func (h *Handler) runRefresh(ctx context.Context, w http.ResponseWriter, kind string, run func(context.Context) (usecase.SyncSummary, error)) {
	if h.refreshJobs == nil {
		writeError(ctx, w, fmt.Errorf("%w: refresh jobs are not configured", usecase.ErrDependencyUnavailable))
		return
	}

	summary, err := run(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "bulk refresh finished with errors",
			"kind", kind,
			"season_count", summary.SeasonCount,
			"failed_count", summary.FailedCount,
			"error", err,
		)
		if summary.SeasonCount == 0 || summary.SuccessCount == 0 {
			writeError(ctx, w, err)
			return
		}
	}
	writeSuccess(ctx, w, http.StatusOK, summary)
}
