package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/luct/reporting/internal/app/models/dto"
	"github.com/luct/reporting/internal/app/services"
	"github.com/luct/reporting/internal/middleware"
)

// CatalogController handles courses and classes
type CatalogController struct {
	catalogService *services.CatalogService
	logger         zerolog.Logger
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(catalogService *services.CatalogService, logger zerolog.Logger) *CatalogController {
	return &CatalogController{
		catalogService: catalogService,
		logger:         logger,
	}
}

// ListCourses godoc
// @Summary List courses
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param q query string false "Filter by code, name or faculty"
// @Success 200 {object} dto.APIResponse{data=[]models.Course}
// @Router /courses [get]
func (c *CatalogController) ListCourses(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	courses, err := c.catalogService.ListCourses(ctx.Request.Context(), actor, ctx.Query("q"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: courses})
}

// CreateCourse godoc
// @Summary Create a course
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCourseRequest true "Course"
// @Success 201 {object} dto.APIResponse{data=models.Course}
// @Failure 403 {object} dto.APIResponse "Only Program Leaders can manage courses"
// @Failure 409 {object} dto.APIResponse "Course code already exists"
// @Router /courses [post]
func (c *CatalogController) CreateCourse(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	var req dto.CreateCourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course, err := c.catalogService.CreateCourse(ctx.Request.Context(), actor, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Int64("courseID", course.ID).Str("code", course.Code).Msg("Course created")
	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: course})
}

// ListClasses godoc
// @Summary List classes
// @Description Lecturers only see the classes assigned to them
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Class}
// @Router /classes [get]
func (c *CatalogController) ListClasses(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	classes, err := c.catalogService.ListClasses(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: classes})
}

// CreateClass godoc
// @Summary Create a class
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateClassRequest true "Class"
// @Success 201 {object} dto.APIResponse{data=models.Class}
// @Failure 404 {object} dto.APIResponse "Course not found"
// @Router /classes [post]
func (c *CatalogController) CreateClass(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	var req dto.CreateClassRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	class, err := c.catalogService.CreateClass(ctx.Request.Context(), actor, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: class})
}

// AssignLecturer godoc
// @Summary Assign a lecturer to a class
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Param request body dto.AssignLecturerRequest true "Lecturer"
// @Success 200 {object} dto.APIResponse{data=models.Class}
// @Router /classes/{id}/lecturer [put]
func (c *CatalogController) AssignLecturer(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req dto.AssignLecturerRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	class, err := c.catalogService.AssignLecturer(ctx.Request.Context(), actor, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: class})
}

// EnrollStudent godoc
// @Summary Enroll a student in a class
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Param request body dto.EnrollStudentRequest true "Student"
// @Success 201 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 409 {object} dto.APIResponse "Student already enrolled in class"
// @Router /classes/{id}/students [post]
func (c *CatalogController) EnrollStudent(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req dto.EnrollStudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.catalogService.EnrollStudent(ctx.Request.Context(), actor, id, req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: dto.SuccessResponse{Message: "Student enrolled"}})
}
