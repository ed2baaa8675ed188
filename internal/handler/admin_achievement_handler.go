package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mentorhive/achievements-backend/internal/model"
	"github.com/mentorhive/achievements-backend/internal/service"
)

type AdminAchievementHandler struct {
	svc service.CatalogService
}

func NewAdminAchievementHandler(svc service.CatalogService) *AdminAchievementHandler {
	return &AdminAchievementHandler{svc: svc}
}

type AchievementResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Points      uint   `json:"points"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toAchievementResponse(a *model.Achievement) AchievementResponse {
	return AchievementResponse{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Category:    a.Category,
		Points:      a.Points,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   a.UpdatedAt.Format(time.RFC3339),
	}
}

type AchievementDefinitionRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Points      uint   `json:"points"`
}

func (h *AdminAchievementHandler) List(c echo.Context) error {
	list, err := h.svc.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch achievements"))
	}
	resp := make([]AchievementResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toAchievementResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"achievements": resp})
}

func (h *AdminAchievementHandler) Create(c echo.Context) error {
	var req AchievementDefinitionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_argument", "invalid json"))
	}
	a, err := h.svc.Create(c.Request().Context(), req.ID, req.Title, req.Description, req.Category, req.Points)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_argument", err.Error()))
	}
	return c.JSON(http.StatusCreated, toAchievementResponse(a))
}

func (h *AdminAchievementHandler) Update(c echo.Context) error {
	var req AchievementDefinitionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_argument", "invalid json"))
	}
	a, err := h.svc.Update(c.Request().Context(), c.Param("id"), req.Title, req.Description, req.Category, req.Points)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "achievement not found"))
		}
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_argument", err.Error()))
	}
	return c.JSON(http.StatusOK, toAchievementResponse(a))
}

func (h *AdminAchievementHandler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "achievement not found"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to delete achievement"))
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "achievement deleted"})
}
