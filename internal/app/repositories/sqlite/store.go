// Package sqlite is the embedded gorm-backed implementation of the repository stores.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/luct/reporting/internal/app/models"
	"github.com/luct/reporting/internal/app/repositories"
	"github.com/luct/reporting/internal/app/search"
	"github.com/luct/reporting/internal/pkg/apperrors"
	"github.com/luct/reporting/internal/pkg/dberrors"
	"github.com/luct/reporting/internal/pkg/logger"
)

// Store implements every repository interface on a single gorm connection
type Store struct {
	db *gorm.DB
}

var (
	_ repositories.UserStore       = (*Store)(nil)
	_ repositories.CatalogStore    = (*Store)(nil)
	_ repositories.ReportStore     = (*Store)(nil)
	_ repositories.AnnotationStore = (*Store)(nil)
)

// Open opens (creating if needed) the database at dsn and migrates the schema
func Open(dsn string) (*Store, error) {
	if err := ensureDirectory(dsn); err != nil {
		return nil, err
	}

	db, err := gorm.Open(gormsqlite.Open(withForeignKeys(dsn)), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	// SQLite allows a single writer
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&userRecord{}, &courseRecord{}, &classRecord{}, &enrollmentRecord{},
		&reportRecord{}, &feedbackRecord{}, &ratingRecord{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	logger.Info().Str("driver", "sqlite").Str("dsn", dsn).Msg("Database opened")
	return &Store{db: db}, nil
}

// NewRepositories exposes the store through the repository set
func (s *Store) NewRepositories() *repositories.Repositories {
	return &repositories.Repositories{
		Users:       s,
		Catalog:     s,
		Reports:     s,
		Annotations: s,
	}
}

// Close releases the underlying connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

func ensureDirectory(dsn string) error {
	candidate := strings.TrimSpace(dsn)
	if candidate == "" || strings.Contains(candidate, ":memory:") || strings.Contains(candidate, "mode=memory") {
		return nil
	}
	candidate = strings.TrimPrefix(candidate, "file:")
	if idx := strings.Index(candidate, "?"); idx >= 0 {
		candidate = candidate[:idx]
	}
	dir := filepath.Dir(candidate)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sqlite directory %q: %w", dir, err)
	}
	return nil
}

// Users

// CreateUser creates a new user
func (s *Store) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	rec := userRecord{
		Email:     user.Email,
		Password:  user.Password,
		Role:      string(user.Role),
		Name:      user.Name,
		Faculty:   user.Faculty,
		CreatedAt: user.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.ErrEmailAlreadyExists
		}
		return 0, fmt.Errorf("error creating user: %w", err)
	}
	user.ID = rec.ID
	user.CreatedAt = rec.CreatedAt.UTC()
	return rec.ID, nil
}

// GetUserByEmail retrieves a user by email
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email = ?", email)
}

// GetUserByID retrieves a user by ID
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

func (s *Store) getUser(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	var rec userRecord
	err := s.db.WithContext(ctx).Where(where, arg).Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return rec.toModel(), nil
}

// SearchUsers matches name or email. Password hashes are cleared.
// Text is filtered in Go since SQLite's LOWER only folds ASCII.
func (s *Store) SearchUsers(ctx context.Context, q search.Query) ([]*models.User, error) {
	var recs []userRecord
	tx := s.db.WithContext(ctx).Omit("password").Order("name ASC").Order("id ASC")
	if err := tx.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("error searching users: %w", err)
	}
	users := make([]*models.User, 0, len(recs))
	for i := range recs {
		u := recs[i].toModel()
		u.Password = ""
		if q.MatchesUser(u) {
			users = append(users, u)
		}
	}
	return users, nil
}

// Catalog

func (s *Store) classQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Table("classes AS c").
		Select("c.id, c.course_id, c.lecturer_id, c.class_name, c.total_registered_students, c.venue, c.scheduled_time, " +
			"cr.course_code, cr.course_name, cr.faculty AS course_faculty").
		Joins("JOIN courses cr ON cr.id = c.course_id")
}

// GetClassByID retrieves a class with its course details
func (s *Store) GetClassByID(ctx context.Context, id int64) (*models.Class, error) {
	var rows []classRow
	if err := s.classQuery(ctx).Where("c.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("error getting class: %w", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrClassNotFound
	}
	return rows[0].toModel(), nil
}

// GetCourseFaculty returns the faculty owning the course of classID
func (s *Store) GetCourseFaculty(ctx context.Context, classID int64) (string, error) {
	class, err := s.GetClassByID(ctx, classID)
	if err != nil {
		return "", err
	}
	return class.CourseFaculty, nil
}

// ListEnrolledClasses returns the class ids a student is enrolled in
func (s *Store) ListEnrolledClasses(ctx context.Context, studentID int64) ([]int64, error) {
	ids := []int64{}
	err := s.db.WithContext(ctx).Model(&enrollmentRecord{}).
		Where("student_id = ?", studentID).
		Order("class_id").
		Pluck("class_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("error querying enrolled classes: %w", err)
	}
	return ids, nil
}

// ListClasses retrieves classes, optionally only those of one lecturer
func (s *Store) ListClasses(ctx context.Context, lecturerID *int64) ([]*models.Class, error) {
	tx := s.classQuery(ctx).Order("cr.course_code ASC, c.class_name ASC, c.id ASC")
	if lecturerID != nil {
		tx = tx.Where("c.lecturer_id = ?", *lecturerID)
	}

	var rows []classRow
	if err := tx.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("error querying classes: %w", err)
	}
	classes := make([]*models.Class, 0, len(rows))
	for i := range rows {
		classes = append(classes, rows[i].toModel())
	}
	return classes, nil
}

// ListCourses retrieves courses whose code or name matches q
func (s *Store) ListCourses(ctx context.Context, q search.Query) ([]*models.Course, error) {
	var recs []courseRecord
	tx := s.db.WithContext(ctx).Order("course_code ASC").Order("id ASC")
	if err := tx.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("error querying courses: %w", err)
	}
	courses := make([]*models.Course, 0, len(recs))
	for i := range recs {
		if c := recs[i].toModel(); q.MatchesCourse(c) {
			courses = append(courses, c)
		}
	}
	return courses, nil
}

// CreateCourse creates a new course
func (s *Store) CreateCourse(ctx context.Context, course *models.Course) (int64, error) {
	rec := courseRecord{
		Code:      course.Code,
		Name:      course.Name,
		Type:      string(course.Type),
		Credits:   course.Credits,
		Faculty:   course.Faculty,
		CreatedAt: course.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.ErrCourseCodeExists
		}
		return 0, fmt.Errorf("error creating course: %w", err)
	}
	course.ID = rec.ID
	course.CreatedAt = rec.CreatedAt.UTC()
	return rec.ID, nil
}

// CreateClass creates a new class
func (s *Store) CreateClass(ctx context.Context, class *models.Class) (int64, error) {
	rec := classRecord{
		CourseID:        class.CourseID,
		LecturerID:      class.LecturerID,
		Name:            class.Name,
		TotalRegistered: class.TotalRegistered,
		Venue:           class.Venue,
		ScheduledTime:   class.ScheduledTime,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.ErrCourseNotFound
		}
		return 0, fmt.Errorf("error creating class: %w", err)
	}
	class.ID = rec.ID
	return rec.ID, nil
}

// AssignLecturer sets the lecturer of a class
func (s *Store) AssignLecturer(ctx context.Context, classID, lecturerID int64) error {
	res := s.db.WithContext(ctx).Model(&classRecord{}).Where("id = ?", classID).Update("lecturer_id", lecturerID)
	if res.Error != nil {
		return fmt.Errorf("error assigning lecturer: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrClassNotFound
	}
	return nil
}

// EnrollStudent adds a student to a class
func (s *Store) EnrollStudent(ctx context.Context, classID, studentID int64) error {
	rec := enrollmentRecord{ClassID: classID, StudentID: studentID}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		switch {
		case dberrors.IsUniqueViolation(err):
			return apperrors.ErrAlreadyEnrolled
		case dberrors.IsForeignKeyViolation(err):
			return apperrors.ErrClassNotFound
		}
		return fmt.Errorf("error enrolling student: %w", err)
	}
	return nil
}

// Reports

func (s *Store) reportQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Table("lecture_reports AS lr").
		Select("lr.id, lr.class_id, lr.lecturer_id, lr.week_of_reporting, lr.date_of_lecture, " +
			"lr.actual_students_present, lr.topic_taught, lr.learning_outcomes, lr.lecturer_recommendations, lr.created_at, " +
			"c.class_name, cr.course_code, cr.course_name, cr.faculty AS course_faculty, u.name AS lecturer_name").
		Joins("JOIN classes c ON c.id = lr.class_id").
		Joins("JOIN courses cr ON cr.id = c.course_id").
		Joins("JOIN users u ON u.id = lr.lecturer_id")
}

// CreateReport creates a new lecture report
func (s *Store) CreateReport(ctx context.Context, report *models.LectureReport) (int64, error) {
	rec := reportRecord{
		ClassID:                 report.ClassID,
		LecturerID:              report.LecturerID,
		WeekOfReporting:         report.WeekOfReporting,
		DateOfLecture:           report.DateOfLecture,
		ActualStudentsPresent:   report.ActualStudentsPresent,
		TopicTaught:             report.TopicTaught,
		LearningOutcomes:        report.LearningOutcomes,
		LecturerRecommendations: report.LecturerRecommendations,
		CreatedAt:               report.CreatedAt.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.ErrClassNotFound
		}
		return 0, fmt.Errorf("error creating report: %w", err)
	}
	report.ID = rec.ID
	return rec.ID, nil
}

// GetReportByID retrieves a report with its class, course and lecturer
func (s *Store) GetReportByID(ctx context.Context, id int64) (*models.ReportDetails, error) {
	var rows []reportRow
	if err := s.reportQuery(ctx).Where("lr.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("error getting report: %w", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrReportNotFound
	}
	return rows[0].toModel(), nil
}

// ListReports retrieves reports visible under q.Scope and matching q.Text, newest first
func (s *Store) ListReports(ctx context.Context, q search.Query) ([]*models.ReportDetails, error) {
	if q.Scope.Empty() {
		return []*models.ReportDetails{}, nil
	}

	tx := s.reportQuery(ctx).Order("lr.created_at DESC, lr.id DESC")
	switch q.Scope.Kind {
	case models.ScopeOwn:
		tx = tx.Where("lr.lecturer_id = ?", q.Scope.LecturerID)
	case models.ScopeEnrolled:
		tx = tx.Where("lr.class_id IN ?", q.Scope.ClassIDs)
	case models.ScopeFaculty:
		tx = tx.Where("cr.faculty = ?", q.Scope.Faculty)
	}
	var rows []reportRow
	if err := tx.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("error querying reports: %w", err)
	}
	reports := make([]*models.ReportDetails, 0, len(rows))
	for i := range rows {
		if r := rows[i].toModel(); q.MatchesReport(r) {
			reports = append(reports, r)
		}
	}
	// stored timestamps are text; re-sort on the parsed values
	search.SortReports(reports)
	return reports, nil
}

// Annotations

// CreateFeedback appends a feedback entry
func (s *Store) CreateFeedback(ctx context.Context, fb *models.Feedback) (int64, error) {
	rec := feedbackRecord{
		ReportID:            fb.ReportID,
		PrincipalLecturerID: fb.PrincipalLecturerID,
		FeedbackText:        fb.FeedbackText,
		CreatedAt:           fb.CreatedAt.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.ErrReportNotFound
		}
		return 0, fmt.Errorf("error creating feedback: %w", err)
	}
	fb.ID = rec.ID
	return rec.ID, nil
}

// CreateRating appends a rating entry
func (s *Store) CreateRating(ctx context.Context, rating *models.Rating) (int64, error) {
	rec := ratingRecord{
		ReportID:    rating.ReportID,
		StudentID:   rating.StudentID,
		RatingValue: rating.RatingValue,
		Comment:     rating.Comment,
		CreatedAt:   rating.CreatedAt.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.ErrReportNotFound
		}
		return 0, fmt.Errorf("error creating rating: %w", err)
	}
	rating.ID = rec.ID
	return rec.ID, nil
}

// ListAnnotations returns every feedback and rating of a report, oldest first
func (s *Store) ListAnnotations(ctx context.Context, reportID int64) ([]models.Feedback, []models.Rating, error) {
	var fbRecs []feedbackRecord
	if err := s.db.WithContext(ctx).Where("report_id = ?", reportID).Order("created_at ASC").Order("id ASC").Find(&fbRecs).Error; err != nil {
		return nil, nil, fmt.Errorf("error querying feedback: %w", err)
	}
	var rtRecs []ratingRecord
	if err := s.db.WithContext(ctx).Where("report_id = ?", reportID).Order("created_at ASC").Order("id ASC").Find(&rtRecs).Error; err != nil {
		return nil, nil, fmt.Errorf("error querying ratings: %w", err)
	}

	feedback := make([]models.Feedback, 0, len(fbRecs))
	for _, r := range fbRecs {
		feedback = append(feedback, models.Feedback{
			ID:                  r.ID,
			ReportID:            r.ReportID,
			PrincipalLecturerID: r.PrincipalLecturerID,
			FeedbackText:        r.FeedbackText,
			CreatedAt:           r.CreatedAt.UTC(),
		})
	}
	ratings := make([]models.Rating, 0, len(rtRecs))
	for _, r := range rtRecs {
		ratings = append(ratings, models.Rating{
			ID:          r.ID,
			ReportID:    r.ReportID,
			StudentID:   r.StudentID,
			RatingValue: r.RatingValue,
			Comment:     r.Comment,
			CreatedAt:   r.CreatedAt.UTC(),
		})
	}
	return feedback, ratings, nil
}
