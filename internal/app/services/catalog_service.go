package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	appauth "github.com/luct/reporting/internal/app/auth"
	"github.com/luct/reporting/internal/app/models"
	"github.com/luct/reporting/internal/app/models/dto"
	"github.com/luct/reporting/internal/app/repositories"
	"github.com/luct/reporting/internal/app/search"
	"github.com/luct/reporting/internal/pkg/apperrors"
	"github.com/luct/reporting/internal/pkg/validation"
)

// CatalogService manages courses, classes and enrollments
type CatalogService struct {
	catalog repositories.CatalogStore
	users   repositories.UserStore
	policy  *appauth.AccessPolicy
	logger  zerolog.Logger
	now     Clock
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(repos *repositories.Repositories, policy *appauth.AccessPolicy, logger zerolog.Logger) *CatalogService {
	return &CatalogService{
		catalog: repos.Catalog,
		users:   repos.Users,
		policy:  policy,
		logger:  logger,
		now:     defaultClock,
	}
}

// ListCourses returns the course catalog, optionally narrowed by q
func (s *CatalogService) ListCourses(ctx context.Context, actor models.Actor, q string) ([]*models.Course, error) {
	if err := s.policy.Authorize(actor, appauth.ActionViewCourseCatalog); err != nil {
		return nil, err
	}
	return s.catalog.ListCourses(ctx, search.Build(string(search.TargetCourses), q, models.ReportScope{}))
}

// ListClasses returns the classes actor may see: lecturers get their own, everyone else all
func (s *CatalogService) ListClasses(ctx context.Context, actor models.Actor) ([]*models.Class, error) {
	if err := s.policy.Authorize(actor, appauth.ActionListClasses); err != nil {
		return nil, err
	}
	return s.catalog.ListClasses(ctx, s.policy.ClassScope(actor))
}

// CreateCourse adds a course to the catalog
func (s *CatalogService) CreateCourse(ctx context.Context, actor models.Actor, req dto.CreateCourseRequest) (*models.Course, error) {
	trim(&req.Code, &req.Name, &req.Type, &req.Faculty)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(actor, appauth.ActionManageCourse); err != nil {
		return nil, err
	}

	course := &models.Course{
		Code:      req.Code,
		Name:      req.Name,
		Type:      models.CourseType(req.Type),
		Credits:   req.Credits,
		Faculty:   req.Faculty,
		CreatedAt: s.now(),
	}
	if _, err := s.catalog.CreateCourse(ctx, course); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("courseID", course.ID).Str("courseCode", course.Code).Msg("Course created")
	return course, nil
}

// CreateClass opens a class under an existing course
func (s *CatalogService) CreateClass(ctx context.Context, actor models.Actor, req dto.CreateClassRequest) (*models.Class, error) {
	trim(&req.Name, &req.Venue, &req.ScheduledTime)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(actor, appauth.ActionManageCourse); err != nil {
		return nil, err
	}
	if req.LecturerID != nil {
		if err := s.requireRole(ctx, *req.LecturerID, models.RoleLecturer, "lecturer_id"); err != nil {
			return nil, err
		}
	}

	class := &models.Class{
		CourseID:        req.CourseID,
		LecturerID:      req.LecturerID,
		Name:            req.Name,
		TotalRegistered: req.TotalRegistered,
		Venue:           req.Venue,
		ScheduledTime:   req.ScheduledTime,
	}
	id, err := s.catalog.CreateClass(ctx, class)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("classID", id).Int64("courseID", class.CourseID).Msg("Class created")
	return s.catalog.GetClassByID(ctx, id)
}

// AssignLecturer makes a lecturer responsible for a class
func (s *CatalogService) AssignLecturer(ctx context.Context, actor models.Actor, classID int64, req dto.AssignLecturerRequest) (*models.Class, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(actor, appauth.ActionManageCourse); err != nil {
		return nil, err
	}
	if _, err := s.catalog.GetClassByID(ctx, classID); err != nil {
		return nil, err
	}
	if err := s.requireRole(ctx, req.LecturerID, models.RoleLecturer, "lecturer_id"); err != nil {
		return nil, err
	}

	if err := s.catalog.AssignLecturer(ctx, classID, req.LecturerID); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("classID", classID).Int64("lecturerID", req.LecturerID).Msg("Lecturer assigned")
	return s.catalog.GetClassByID(ctx, classID)
}

// EnrollStudent enrolls a student in a class
func (s *CatalogService) EnrollStudent(ctx context.Context, actor models.Actor, classID int64, req dto.EnrollStudentRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}
	if err := s.policy.Authorize(actor, appauth.ActionManageCourse); err != nil {
		return err
	}
	if _, err := s.catalog.GetClassByID(ctx, classID); err != nil {
		return err
	}
	if err := s.requireRole(ctx, req.StudentID, models.RoleStudent, "student_id"); err != nil {
		return err
	}

	if err := s.catalog.EnrollStudent(ctx, classID, req.StudentID); err != nil {
		return err
	}
	s.logger.Info().Int64("classID", classID).Int64("studentID", req.StudentID).Msg("Student enrolled")
	return nil
}

// requireRole checks that userID exists and holds role
func (s *CatalogService) requireRole(ctx context.Context, userID int64, role models.Role, field string) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if apperrors.Kind(err) == apperrors.KindNotFound {
			return apperrors.NewValidationError("Validation failed", map[string]string{
				field: fmt.Sprintf("user %d does not exist", userID),
			})
		}
		return err
	}
	if user.Role != role {
		return apperrors.NewValidationError("Validation failed", map[string]string{
			field: fmt.Sprintf("user %d is not a %s", userID, role.Label()),
		})
	}
	return nil
}
