package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/prediction-league/internal/usecase"
)

type predictionItemRequest struct {
	MatchID   string `json:"match_id" validate:"required"`
	HomeGoals int    `json:"home_goals" validate:"gte=0"`
	AwayGoals int    `json:"away_goals" validate:"gte=0"`
	DoubleUp  bool   `json:"double_up"`
}

type savePredictionsRequest struct {
	Items []predictionItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (h *Handler) SavePredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SavePredictions")
	defer span.End()

	userID, err := pathInt64(r, "userID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req savePredictionsRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	items := make([]usecase.PredictionItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, usecase.PredictionItem{
			MatchID:   strings.TrimSpace(item.MatchID),
			HomeGoals: item.HomeGoals,
			AwayGoals: item.AwayGoals,
			DoubleUp:  item.DoubleUp,
		})
	}

	result, err := h.predictionService.SavePredictions(ctx, usecase.SavePredictionsInput{
		UserID: userID,
		Items:  items,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "save predictions failed", "user_id", userID, "items", len(items), "error", err)
		writeError(ctx, w, err)
		return
	}

	dropped := result.Dropped
	if dropped == nil {
		dropped = []string{}
	}
	writeSuccess(ctx, w, http.StatusOK, savePredictionsDTO{
		Saved:   predictionsToDTO(result.Saved),
		Dropped: dropped,
	})
}

func (h *Handler) UserRoundPredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UserRoundPredictions")
	defer span.End()

	userID, err := pathInt64(r, "userID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	orderNumber, err := pathInt(r, "orderNumber")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.predictionService.UserRoundPredictions(ctx, userID, strings.TrimSpace(r.PathValue("seasonID")), orderNumber)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, predictionsToDTO(items))
}

func (h *Handler) SeasonResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SeasonResults")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	items, err := h.predictionService.SeasonResults(ctx, seasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "season results failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, resultsToDTO(items))
}

func (h *Handler) RoundResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RoundResults")
	defer span.End()

	orderNumber, err := pathInt(r, "orderNumber")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	items, err := h.predictionService.RoundResults(ctx, seasonID, orderNumber)
	if err != nil {
		h.logger.WarnContext(ctx, "round results failed", "season_id", seasonID, "order_number", orderNumber, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, resultsToDTO(items))
}
