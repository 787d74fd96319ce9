package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/centuriocontact-dev/matching-interim-api/internal/dto"
	"github.com/centuriocontact-dev/matching-interim-api/internal/middleware"
	"github.com/centuriocontact-dev/matching-interim-api/internal/services"
)

type CandidatHandler struct {
	*BaseHandler
	candidatService services.CandidatService
}

func NewCandidatHandler(base *BaseHandler, candidatService services.CandidatService) *CandidatHandler {
	return &CandidatHandler{
		BaseHandler:     base,
		candidatService: candidatService,
	}
}

func (h *CandidatHandler) RegisterRoutes(api *gin.RouterGroup) {
	candidats := api.Group("/candidats")
	candidats.Use(middleware.AuthMiddleware())
	{
		candidats.POST("", h.Create)
		candidats.GET("", h.List)
		candidats.GET("/:id", h.Get)
	}
}

// POST /api/v1/candidats
func (h *CandidatHandler) Create(c *gin.Context) {
	var input dto.CreateCandidatInput
	if !h.BindAndValidateJSON(c, &input) {
		return
	}

	candidat, err := h.candidatService.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, candidat)
}

// GET /api/v1/candidats/:id
func (h *CandidatHandler) Get(c *gin.Context) {
	candidat, err := h.candidatService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, candidat)
}

// GET /api/v1/candidats
func (h *CandidatHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	candidats, total, err := h.candidatService.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":     total,
		"candidats": candidats,
	})
}
