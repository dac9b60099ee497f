package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/luct/reporting/internal/app/models/dto"
	"github.com/luct/reporting/internal/app/services"
	"github.com/luct/reporting/internal/middleware"
)

// SearchController serves free-text search over reports, courses and users
type SearchController struct {
	searchService *services.SearchService
	logger        zerolog.Logger
}

// NewSearchController creates a new SearchController
func NewSearchController(searchService *services.SearchService, logger zerolog.Logger) *SearchController {
	return &SearchController{
		searchService: searchService,
		logger:        logger,
	}
}

// Search godoc
// @Summary Search
// @Description Report results are limited to the reports the caller may see
// @Tags search
// @Produce json
// @Security BearerAuth
// @Param type query string false "reports, courses or users" default(reports)
// @Param q query string false "Search text"
// @Success 200 {object} dto.APIResponse{data=dto.SearchResult}
// @Router /search [get]
func (c *SearchController) Search(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	result, err := c.searchService.Search(ctx.Request.Context(), actor, ctx.Query("type"), ctx.Query("q"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: result})
}
