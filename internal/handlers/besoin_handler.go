package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/centuriocontact-dev/matching-interim-api/internal/dto"
	"github.com/centuriocontact-dev/matching-interim-api/internal/middleware"
	"github.com/centuriocontact-dev/matching-interim-api/internal/models"
	"github.com/centuriocontact-dev/matching-interim-api/internal/services"
)

type BesoinHandler struct {
	*BaseHandler
	besoinService services.BesoinService
}

func NewBesoinHandler(base *BaseHandler, besoinService services.BesoinService) *BesoinHandler {
	return &BesoinHandler{
		BaseHandler:   base,
		besoinService: besoinService,
	}
}

func (h *BesoinHandler) RegisterRoutes(api *gin.RouterGroup) {
	besoins := api.Group("/besoins")
	besoins.Use(middleware.AuthMiddleware())
	{
		besoins.POST("", h.Create)
		besoins.GET("", h.List)
		besoins.GET("/:id", h.Get)
		besoins.PATCH("/:id/statut", h.UpdateStatut)
	}
}

// POST /api/v1/besoins
func (h *BesoinHandler) Create(c *gin.Context) {
	clientID, ok := h.ClientID(c)
	if !ok {
		return
	}

	var input dto.CreateBesoinInput
	if !h.BindAndValidateJSON(c, &input) {
		return
	}

	besoin, err := h.besoinService.Create(c.Request.Context(), clientID, input)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, besoin)
}

// GET /api/v1/besoins/:id
func (h *BesoinHandler) Get(c *gin.Context) {
	clientID, ok := h.ClientID(c)
	if !ok {
		return
	}

	besoin, err := h.besoinService.Get(c.Request.Context(), clientID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, besoin)
}

// GET /api/v1/besoins
func (h *BesoinHandler) List(c *gin.Context) {
	clientID, ok := h.ClientID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	besoins, total, err := h.besoinService.List(c.Request.Context(), clientID, limit, offset)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":   total,
		"besoins": besoins,
	})
}

// PATCH /api/v1/besoins/:id/statut
func (h *BesoinHandler) UpdateStatut(c *gin.Context) {
	clientID, ok := h.ClientID(c)
	if !ok {
		return
	}

	var input dto.UpdateBesoinStatutInput
	if !h.BindAndValidateJSON(c, &input) {
		return
	}

	err := h.besoinService.UpdateStatut(c.Request.Context(), clientID, c.Param("id"), models.BesoinStatut(input.Statut))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statut": input.Statut})
}
