package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/prediction-league/internal/domain/user"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

type saveUserRequest struct {
	Name     string `json:"name" validate:"max=200"`
	Language string `json:"language" validate:"omitempty,max=8"`
}

type updateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	Timezone *string `json:"timezone" validate:"omitempty,min=1,max=64"`
	Language *string `json:"language" validate:"omitempty,min=2,max=8"`
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUser")
	defer span.End()

	userID, err := pathInt64(r, "userID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.userService.GetUser(ctx, userID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, userToDTO(item))
}

func (h *Handler) SaveUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SaveUser")
	defer span.End()

	userID, err := pathInt64(r, "userID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req saveUserRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.userService.SaveUser(ctx, usecase.SaveUserInput{
		ID:       userID,
		Name:     req.Name,
		Language: req.Language,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "save user failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, userToDTO(item))
}

// UpdateUser applies the given fields in order: name, timezone, language.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateUser")
	defer span.End()

	userID, err := pathInt64(r, "userID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req updateUserRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if req.Name == nil && req.Timezone == nil && req.Language == nil {
		writeError(ctx, w, fmt.Errorf("%w: nothing to update", usecase.ErrInvalidInput))
		return
	}

	var item user.User
	if req.Name != nil {
		if item, err = h.userService.UpdateUsername(ctx, userID, strings.TrimSpace(*req.Name)); err != nil {
			writeError(ctx, w, err)
			return
		}
	}
	if req.Timezone != nil {
		if item, err = h.userService.UpdateTimezone(ctx, userID, strings.TrimSpace(*req.Timezone)); err != nil {
			writeError(ctx, w, err)
			return
		}
	}
	if req.Language != nil {
		if item, err = h.userService.UpdateLanguage(ctx, userID, strings.TrimSpace(*req.Language)); err != nil {
			writeError(ctx, w, err)
			return
		}
	}
	writeSuccess(ctx, w, http.StatusOK, userToDTO(item))
}

func (h *Handler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeactivateUser")
	defer span.End()

	userID, err := pathInt64(r, "userID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.userService.Deactivate(ctx, userID); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"user_id": userID, "active": false})
}

func (h *Handler) ToggleCompetition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ToggleCompetition")
	defer span.End()

	userID, err := pathInt64(r, "userID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	competitionID := strings.TrimSpace(r.PathValue("competitionID"))

	subscribed, err := h.userService.ToggleCompetition(ctx, userID, competitionID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"user_id":        userID,
		"competition_id": competitionID,
		"subscribed":     subscribed,
	})
}
