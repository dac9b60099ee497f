package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/luct/reporting/internal/app/models"
	"github.com/luct/reporting/internal/app/search"
	"github.com/luct/reporting/internal/pkg/apperrors"
	"github.com/luct/reporting/internal/pkg/dberrors"
	"github.com/luct/reporting/internal/pkg/logger"
)

var classColumns = []string{
	"c.id", "c.course_id", "c.lecturer_id", "c.class_name", "c.total_registered_students",
	"c.venue", "c.scheduled_time", "cr.course_code", "cr.course_name", "cr.faculty",
}

// CatalogRepository handles course, class and enrollment database operations
type CatalogRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func (r *CatalogRepository) classQuery() squirrel.SelectBuilder {
	return r.sb.Select(classColumns...).
		From("classes c").
		Join("courses cr ON cr.id = c.course_id")
}

func scanClass(row pgx.Row) (*models.Class, error) {
	c := &models.Class{}
	err := row.Scan(&c.ID, &c.CourseID, &c.LecturerID, &c.Name, &c.TotalRegistered,
		&c.Venue, &c.ScheduledTime, &c.CourseCode, &c.CourseName, &c.CourseFaculty)
	return c, err
}

// GetClassByID retrieves a class with its course details
func (r *CatalogRepository) GetClassByID(ctx context.Context, id int64) (*models.Class, error) {
	sql, args, err := r.classQuery().Where(squirrel.Eq{"c.id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get class query: %w", err)
	}

	c, err := scanClass(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrClassNotFound
		}
		return nil, fmt.Errorf("error getting class: %w", err)
	}
	return c, nil
}

// GetCourseFaculty returns the faculty owning the course of classID
func (r *CatalogRepository) GetCourseFaculty(ctx context.Context, classID int64) (string, error) {
	sql, args, err := r.sb.Select("cr.faculty").
		From("classes c").
		Join("courses cr ON cr.id = c.course_id").
		Where(squirrel.Eq{"c.id": classID}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to build course faculty query: %w", err)
	}

	var faculty string
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&faculty); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrClassNotFound
		}
		return "", fmt.Errorf("error getting course faculty: %w", err)
	}
	return faculty, nil
}

// ListEnrolledClasses returns the class ids a student is enrolled in
func (r *CatalogRepository) ListEnrolledClasses(ctx context.Context, studentID int64) ([]int64, error) {
	sql, args, err := r.sb.Select("class_id").
		From("class_enrollments").
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("class_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build enrolled classes query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying enrolled classes: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("error scanning enrolled classes: %w", err)
	}
	return ids, nil
}

// ListClasses retrieves classes, optionally only those of one lecturer
func (r *CatalogRepository) ListClasses(ctx context.Context, lecturerID *int64) ([]*models.Class, error) {
	query := r.classQuery().OrderBy("cr.course_code ASC", "c.class_name ASC", "c.id ASC")
	if lecturerID != nil {
		query = query.Where(squirrel.Eq{"c.lecturer_id": *lecturerID})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list classes query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying classes: %w", err)
	}
	defer rows.Close()

	classes := []*models.Class{}
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning class row: %w", err)
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// ListCourses retrieves courses whose code or name matches q
func (r *CatalogRepository) ListCourses(ctx context.Context, q search.Query) ([]*models.Course, error) {
	query := r.sb.Select("id", "course_code", "course_name", "course_type", "credits", "faculty", "created_at").
		From("courses").
		OrderBy("course_code ASC", "id ASC")
	if f := textFilter(q, map[search.Field]string{
		search.FieldCourseCode: "course_code",
		search.FieldCourseName: "course_name",
	}); f != nil {
		query = query.Where(f)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list courses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying courses: %w", err)
	}
	defer rows.Close()

	courses := []*models.Course{}
	for rows.Next() {
		c := &models.Course{}
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Type, &c.Credits, &c.Faculty, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning course row: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// CreateCourse creates a new course
func (r *CatalogRepository) CreateCourse(ctx context.Context, course *models.Course) (int64, error) {
	sql, args, err := r.sb.Insert("courses").
		Columns("course_code", "course_name", "course_type", "credits", "faculty").
		Values(course.Code, course.Name, course.Type, course.Credits, course.Faculty).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create course query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&course.ID, &course.CreatedAt); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.ErrCourseCodeExists
		}
		logger.Error().Err(err).Str("courseCode", course.Code).Msg("Error creating course")
		return 0, fmt.Errorf("error creating course: %w", err)
	}
	return course.ID, nil
}

// CreateClass creates a new class
func (r *CatalogRepository) CreateClass(ctx context.Context, class *models.Class) (int64, error) {
	sql, args, err := r.sb.Insert("classes").
		Columns("course_id", "lecturer_id", "class_name", "total_registered_students", "venue", "scheduled_time").
		Values(class.CourseID, class.LecturerID, class.Name, class.TotalRegistered, class.Venue, class.ScheduledTime).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create class query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&class.ID); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Str("className", class.Name).Msg("Error creating class")
		return 0, fmt.Errorf("error creating class: %w", err)
	}
	return class.ID, nil
}

// AssignLecturer sets the lecturer of a class
func (r *CatalogRepository) AssignLecturer(ctx context.Context, classID, lecturerID int64) error {
	sql, args, err := r.sb.Update("classes").
		Set("lecturer_id", lecturerID).
		Where(squirrel.Eq{"id": classID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build assign lecturer query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error assigning lecturer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrClassNotFound
	}
	return nil
}

// EnrollStudent adds a student to a class
func (r *CatalogRepository) EnrollStudent(ctx context.Context, classID, studentID int64) error {
	sql, args, err := r.sb.Insert("class_enrollments").
		Columns("class_id", "student_id").
		Values(classID, studentID).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build enroll student query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
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
