package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/centuriocontact-dev/matching-interim-api/internal/dto"
	"github.com/centuriocontact-dev/matching-interim-api/internal/middleware"
	"github.com/centuriocontact-dev/matching-interim-api/internal/repositories"
	"github.com/centuriocontact-dev/matching-interim-api/internal/services"
	"github.com/centuriocontact-dev/matching-interim-api/pkg/apperrors"
)

type MatchingHandler struct {
	*BaseHandler
	matchingService services.MatchingService
}

func NewMatchingHandler(base *BaseHandler, matchingService services.MatchingService) *MatchingHandler {
	return &MatchingHandler{
		BaseHandler:     base,
		matchingService: matchingService,
	}
}

func (h *MatchingHandler) RegisterRoutes(api *gin.RouterGroup) {
	matchings := api.Group("/matchings")
	matchings.Use(middleware.AuthMiddleware())
	{
		matchings.POST("/run", h.Run)
		matchings.GET("/run/progress", h.Progress)
		matchings.GET("/besoin/:besoinId", h.ListByBesoin)
		matchings.PUT("/:id/vue", h.MarkViewed)
	}
}

// Run triggers a matching run: one besoin when besoin_id is set, every
// open besoin of the caller's client otherwise. The run is synchronous;
// the response is its summary.
//
// POST /api/v1/matchings/run
func (h *MatchingHandler) Run(c *gin.Context) {
	clientID, ok := h.ClientID(c)
	if !ok {
		return
	}

	var req dto.RunRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	summary, err := h.matchingService.RunMatching(c.Request.Context(), clientID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Progress reports the state of the current (or last) run.
//
// GET /api/v1/matchings/run/progress
func (h *MatchingHandler) Progress(c *gin.Context) {
	c.JSON(http.StatusOK, h.matchingService.Progress())
}

// ListByBesoin returns the persisted shortlist of one besoin, ordered
// by rank. Supports ?limit= and ?min_score=.
//
// GET /api/v1/matchings/besoin/:besoinId
func (h *MatchingHandler) ListByBesoin(c *gin.Context) {
	clientID, ok := h.ClientID(c)
	if !ok {
		return
	}

	besoinID := c.Param("besoinId")
	if besoinID == "" {
		apperrors.HandleError(c, apperrors.NewBadRequestError("besoinId is required"))
		return
	}

	query := repositories.MatchingQuery{}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			apperrors.HandleError(c, apperrors.NewBadRequestError("limit must be a positive integer"))
			return
		}
		query.Limit = limit
	}
	if raw := c.Query("min_score"); raw != "" {
		minScore, err := strconv.ParseFloat(raw, 64)
		if err != nil || minScore < 0 || minScore > 100 {
			apperrors.HandleError(c, apperrors.NewBadRequestError("min_score must be between 0 and 100"))
			return
		}
		query.MinScore = &minScore
	}

	matchings, err := h.matchingService.ListMatchings(c.Request.Context(), clientID, besoinID, query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"besoin_id": besoinID,
		"total":     len(matchings),
		"matchings": matchings,
	})
}

// MarkViewed flags a matching as consulted.
//
// PUT /api/v1/matchings/:id/vue
func (h *MatchingHandler) MarkViewed(c *gin.Context) {
	clientID, ok := h.ClientID(c)
	if !ok {
		return
	}

	matchingID := c.Param("id")
	if err := h.matchingService.MarkViewed(c.Request.Context(), clientID, matchingID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": matchingID, "vue": true})
}
