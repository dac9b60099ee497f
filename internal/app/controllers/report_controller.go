package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/luct/reporting/internal/app/models/dto"
	"github.com/luct/reporting/internal/app/services"
	"github.com/luct/reporting/internal/middleware"
)

// ReportController exposes the lecture report workflow
type ReportController struct {
	reportService *services.ReportService
	logger        zerolog.Logger
}

// NewReportController creates a new ReportController
func NewReportController(reportService *services.ReportService, logger zerolog.Logger) *ReportController {
	return &ReportController{
		reportService: reportService,
		logger:        logger,
	}
}

// ListReports godoc
// @Summary List lecture reports
// @Description Lecturers see their own reports, students those of their classes, principal lecturers those of their faculty and program leaders all
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.ReportDetails}
// @Router /reports [get]
func (c *ReportController) ListReports(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	reports, err := c.reportService.ListReports(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: reports})
}

// SubmitReport godoc
// @Summary Submit a lecture report
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubmitReportRequest true "Report"
// @Success 201 {object} dto.APIResponse{data=models.ReportDetails}
// @Failure 400 {object} dto.APIResponse "Validation failed"
// @Failure 403 {object} dto.APIResponse "Only Lecturers can submit reports"
// @Failure 404 {object} dto.APIResponse "Class not found"
// @Router /reports [post]
func (c *ReportController) SubmitReport(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	var req dto.SubmitReportRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	report, err := c.reportService.SubmitReport(ctx.Request.Context(), actor, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: report})
}

// GetReport godoc
// @Summary Get a lecture report
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Success 200 {object} dto.APIResponse{data=models.ReportDetails}
// @Failure 404 {object} dto.APIResponse "Report not found"
// @Router /reports/{id} [get]
func (c *ReportController) GetReport(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}

	report, err := c.reportService.GetReport(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: report})
}

// ListAnnotations godoc
// @Summary Feedback and ratings of a report
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Success 200 {object} dto.APIResponse{data=models.Annotations}
// @Failure 404 {object} dto.APIResponse "Report not found"
// @Router /reports/{id}/annotations [get]
func (c *ReportController) ListAnnotations(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}

	annotations, err := c.reportService.ListAnnotations(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: annotations})
}

// AddFeedback godoc
// @Summary Add feedback to a report
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Param request body dto.FeedbackRequest true "Feedback"
// @Success 201 {object} dto.APIResponse{data=models.Feedback}
// @Failure 403 {object} dto.APIResponse "Only Principal Lecturers can add feedback"
// @Router /reports/{id}/feedback [post]
func (c *ReportController) AddFeedback(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req dto.FeedbackRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	fb, err := c.reportService.AddFeedback(ctx.Request.Context(), actor, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: fb})
}

// AddRating godoc
// @Summary Rate a lecture
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Param request body dto.RatingRequest true "Rating"
// @Success 201 {object} dto.APIResponse{data=models.Rating}
// @Failure 400 {object} dto.APIResponse "Rating must be between 1 and 5"
// @Failure 403 {object} dto.APIResponse "Only students can add ratings"
// @Router /reports/{id}/rating [post]
func (c *ReportController) AddRating(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req dto.RatingRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	rating, err := c.reportService.AddRating(ctx.Request.Context(), actor, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: rating})
}
