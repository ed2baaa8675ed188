package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mentorhive/achievements-backend/internal/model"
	"github.com/mentorhive/achievements-backend/internal/service"
)

type AchievementHandler struct {
	svc service.AchievementService
}

func NewAchievementHandler(svc service.AchievementService) *AchievementHandler {
	return &AchievementHandler{svc: svc}
}

type ProgressResponse struct {
	UserID        string  `json:"userId"`
	AchievementID string  `json:"achievementId"`
	Progress      int     `json:"progress"`
	Unlocked      bool    `json:"unlocked"`
	UnlockedAt    *string `json:"unlockedAt,omitempty"`
}

func toProgressResponse(ua *model.UserAchievement) ProgressResponse {
	resp := ProgressResponse{
		UserID:        ua.UserUID,
		AchievementID: ua.AchievementID,
		Progress:      ua.Progress,
		Unlocked:      ua.Unlocked(),
	}
	if ua.UnlockedAt != nil {
		ts := ua.UnlockedAt.Format(time.RFC3339)
		resp.UnlockedAt = &ts
	}
	return resp
}

// GetOverview handles GET /api/achievements?userId=.
func (h *AchievementHandler) GetOverview(c echo.Context) error {
	userID := c.QueryParam("userId")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_argument", "userId is required"))
	}
	return h.overview(c, userID)
}

// GetMyOverview handles GET /api/me/achievements with the uid from the
// verified token.
func (h *AchievementHandler) GetMyOverview(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	return h.overview(c, uid)
}

func (h *AchievementHandler) overview(c echo.Context, userID string) error {
	ov, err := h.svc.Overview(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidArgument) {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_argument", "userId is required"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch achievements"))
	}
	return c.JSON(http.StatusOK, ov)
}

type UnlockRequest struct {
	UserID        string `json:"userId"`
	AchievementID string `json:"achievementId"`
}

// Unlock handles POST /api/achievements: the strict claim path.
func (h *AchievementHandler) Unlock(c echo.Context) error {
	var req UnlockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_argument", "invalid json"))
	}
	if req.UserID == "" || req.AchievementID == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_argument", "userId and achievementId are required"))
	}
	ua, err := h.svc.Unlock(c.Request().Context(), req.UserID, req.AchievementID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyUnlocked):
			return c.JSON(http.StatusBadRequest, NewErrorResponse("already_unlocked", "achievement is already unlocked"))
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "achievement not found"))
		case errors.Is(err, service.ErrInvalidArgument):
			return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_argument", "userId and achievementId are required"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to unlock achievement"))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "achievement unlocked",
		"progress": toProgressResponse(ua),
	})
}

type SetProgressRequest struct {
	UserID        string `json:"userId"`
	AchievementID string `json:"achievementId"`
	Progress      *int   `json:"progress"`
}

// SetProgress handles PUT /api/achievements: the tolerant progress-sync path.
func (h *AchievementHandler) SetProgress(c echo.Context) error {
	var req SetProgressRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_argument", "invalid json"))
	}
	if req.UserID == "" || req.AchievementID == "" || req.Progress == nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_argument", "userId, achievementId and progress are required"))
	}
	ua, err := h.svc.SetProgress(c.Request().Context(), req.UserID, req.AchievementID, *req.Progress)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "achievement not found"))
		case errors.Is(err, service.ErrInvalidArgument):
			return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_argument", "userId and achievementId are required"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to update progress"))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "progress updated",
		"progress": toProgressResponse(ua),
	})
}

// Reset handles DELETE /api/achievements?userId=&achievementId=.
func (h *AchievementHandler) Reset(c echo.Context) error {
	userID := c.QueryParam("userId")
	achievementID := c.QueryParam("achievementId")
	if userID == "" || achievementID == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_argument", "userId and achievementId are required"))
	}
	if err := h.svc.Reset(c.Request().Context(), userID, achievementID); err != nil {
		if errors.Is(err, service.ErrInvalidArgument) {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_argument", "userId and achievementId are required"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to reset progress"))
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "progress reset"})
}
