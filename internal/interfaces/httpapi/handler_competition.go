package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/prediction-league/internal/usecase"
)

type addCompetitionRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	ExternalID int64  `json:"external_id" validate:"required,gt=0"`
}

type addSeasonRequest struct {
	Year   string `json:"year" validate:"required,max=20"`
	Active bool   `json:"active"`
}

type updateSeasonRequest struct {
	Year   *string `json:"year" validate:"omitempty,min=1,max=20"`
	Active *bool   `json:"active"`
}

func (h *Handler) ListCompetitions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCompetitions")
	defer span.End()

	items, err := h.competitionService.ListCompetitions(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list competitions failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]competitionDTO, 0, len(items))
	for _, item := range items {
		out = append(out, competitionToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) AddCompetition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddCompetition")
	defer span.End()

	var req addCompetitionRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.competitionService.AddCompetition(ctx, usecase.AddCompetitionInput{
		Name:       req.Name,
		ExternalID: req.ExternalID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "add competition failed", "external_id", req.ExternalID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, competitionToDTO(item))
}

func (h *Handler) GetCompetition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCompetition")
	defer span.End()

	competitionID := strings.TrimSpace(r.PathValue("competitionID"))
	item, err := h.competitionService.GetCompetition(ctx, competitionID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, competitionToDTO(item))
}

func (h *Handler) ListSeasons(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSeasons")
	defer span.End()

	competitionID := strings.TrimSpace(r.PathValue("competitionID"))
	items, err := h.competitionService.ListSeasons(ctx, competitionID)
	if err != nil {
		h.logger.WarnContext(ctx, "list seasons failed", "competition_id", competitionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]seasonDTO, 0, len(items))
	for _, item := range items {
		out = append(out, seasonToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) AddSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddSeason")
	defer span.End()

	var req addSeasonRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	competitionID := strings.TrimSpace(r.PathValue("competitionID"))
	item, err := h.competitionService.AddSeason(ctx, usecase.AddSeasonInput{
		CompetitionID: competitionID,
		Year:          req.Year,
		Active:        req.Active,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "add season failed", "competition_id", competitionID, "year", req.Year, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, seasonToDTO(item))
}

func (h *Handler) GetActiveSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetActiveSeason")
	defer span.End()

	item, err := h.competitionService.GetActiveSeason(ctx, strings.TrimSpace(r.PathValue("competitionID")))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, seasonToDTO(item))
}

func (h *Handler) GetSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSeason")
	defer span.End()

	item, err := h.competitionService.GetSeason(ctx, strings.TrimSpace(r.PathValue("seasonID")))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, seasonToDTO(item))
}

func (h *Handler) UpdateSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateSeason")
	defer span.End()

	var req updateSeasonRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if req.Year == nil && req.Active == nil {
		writeError(ctx, w, fmt.Errorf("%w: nothing to update", usecase.ErrInvalidInput))
		return
	}

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	item, err := h.competitionService.UpdateSeason(ctx, usecase.UpdateSeasonInput{
		SeasonID: seasonID,
		Year:     req.Year,
		Active:   req.Active,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update season failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, seasonToDTO(item))
}

func (h *Handler) UpcomingRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpcomingRound")
	defer span.End()

	item, err := h.competitionService.UpcomingRound(ctx, strings.TrimSpace(r.PathValue("competitionID")))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, roundToDTO(item))
}

func (h *Handler) RoundFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RoundFixtures")
	defer span.End()

	orderNumber, err := pathInt(r, "orderNumber")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	competitionID := strings.TrimSpace(r.PathValue("competitionID"))
	items, err := h.competitionService.RoundFixtures(ctx, competitionID, orderNumber)
	if err != nil {
		h.logger.WarnContext(ctx, "list round fixtures failed", "competition_id", competitionID, "order_number", orderNumber, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]fixtureDTO, 0, len(items))
	for _, item := range items {
		out = append(out, fixtureToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}
