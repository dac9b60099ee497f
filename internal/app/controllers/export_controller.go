package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/luct/reporting/internal/app/export"
	"github.com/luct/reporting/internal/app/services"
	"github.com/luct/reporting/internal/middleware"
)

// ExportController streams report spreadsheets
type ExportController struct {
	exportService *services.ExportService
	logger        zerolog.Logger
}

// NewExportController creates a new ExportController
func NewExportController(exportService *services.ExportService, logger zerolog.Logger) *ExportController {
	return &ExportController{
		exportService: exportService,
		logger:        logger,
	}
}

// ExportReports godoc
// @Summary Export reports to Excel
// @Description Exports the reports visible to the caller
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file
// @Router /export/reports [get]
func (c *ExportController) ExportReports(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	data, filename, err := c.exportService.ExportReports(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Debug().Int64("userID", actor.ID).Str("file", filename).Int("bytes", len(data)).Msg("Reports exported")
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, export.ContentType, data)
}
