package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/statustrack/backend/internal/model"
	"github.com/statustrack/backend/internal/pagination"
	"github.com/statustrack/backend/internal/service"
)

type StatusHandler struct {
	svc *service.StatusService
}

func NewStatusHandler(svc *service.StatusService) *StatusHandler {
	return &StatusHandler{svc: svc}
}

// List godoc
// @Summary List statuses
// @Description Paginated listing of the caller's statuses (all statuses for admins), newest first. Filterable by state.
// @Tags statuses
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Param state query string false "Filter by state" Enums(open, in_progress, closed)
// @Success 200 {object} model.StatusListResponse
// @Router /api/statuses [get]
func (h *StatusHandler) List(c *gin.Context) {
	params := pagination.Parse(c.Query("page"), c.Query("size"), pagination.DefaultSize, pagination.MaxSize)

	statuses, meta, err := h.svc.List(c.Request.Context(), GetClaims(c), c.Query("state"), params)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.StatusListResponse{Items: statuses, Meta: meta})
}

// Create godoc
// @Summary Create status
// @Description Create a status owned by the current user.
// @Tags statuses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.CreateStatusRequest true "Title, description, state"
// @Success 201 {object} model.Status
// @Failure 400 {object} model.ErrorResponse
// @Failure 422 {object} model.ErrorResponse
// @Router /api/statuses [post]
func (h *StatusHandler) Create(c *gin.Context) {
	var req model.CreateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request"})
		return
	}

	status, err := h.svc.Create(c.Request.Context(), GetClaims(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, status)
}

// Get godoc
// @Summary Get status
// @Tags statuses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Status ID"
// @Success 200 {object} model.Status
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/statuses/{id} [get]
func (h *StatusHandler) Get(c *gin.Context) {
	statusID, ok := pathID(c)
	if !ok {
		return
	}

	status, err := h.svc.Get(c.Request.Context(), GetClaims(c), statusID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Update godoc
// @Summary Update status
// @Description Partial update of title, description, or state.
// @Tags statuses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Status ID"
// @Param request body model.UpdateStatusRequest true "Fields to change"
// @Success 200 {object} model.Status
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 422 {object} model.ErrorResponse
// @Router /api/statuses/{id} [patch]
func (h *StatusHandler) Update(c *gin.Context) {
	statusID, ok := pathID(c)
	if !ok {
		return
	}

	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request"})
		return
	}

	status, err := h.svc.Update(c.Request.Context(), GetClaims(c), statusID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Delete godoc
// @Summary Delete status
// @Tags statuses
// @Security BearerAuth
// @Param id path int true "Status ID"
// @Success 204
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/statuses/{id} [delete]
func (h *StatusHandler) Delete(c *gin.Context) {
	statusID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), GetClaims(c), statusID); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
