package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/luct/reporting/internal/app/models"
	"github.com/luct/reporting/internal/app/search"
)

// UserStore persists accounts
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	SearchUsers(ctx context.Context, q search.Query) ([]*models.User, error)
}

// CatalogStore holds courses, classes and enrollments
type CatalogStore interface {
	GetClassByID(ctx context.Context, id int64) (*models.Class, error)
	GetCourseFaculty(ctx context.Context, classID int64) (string, error)
	ListEnrolledClasses(ctx context.Context, studentID int64) ([]int64, error)
	// ListClasses returns every class, or only those taught by lecturerID when it is set
	ListClasses(ctx context.Context, lecturerID *int64) ([]*models.Class, error)
	ListCourses(ctx context.Context, q search.Query) ([]*models.Course, error)
	CreateCourse(ctx context.Context, course *models.Course) (int64, error)
	CreateClass(ctx context.Context, class *models.Class) (int64, error)
	AssignLecturer(ctx context.Context, classID, lecturerID int64) error
	EnrollStudent(ctx context.Context, classID, studentID int64) error
}

// ReportStore holds lecture reports
type ReportStore interface {
	CreateReport(ctx context.Context, report *models.LectureReport) (int64, error)
	GetReportByID(ctx context.Context, id int64) (*models.ReportDetails, error)
	// ListReports returns reports inside q.Scope matching q.Text, newest first
	ListReports(ctx context.Context, q search.Query) ([]*models.ReportDetails, error)
}

// AnnotationStore holds feedback and ratings. Writes are single appends.
type AnnotationStore interface {
	CreateFeedback(ctx context.Context, feedback *models.Feedback) (int64, error)
	CreateRating(ctx context.Context, rating *models.Rating) (int64, error)
	ListAnnotations(ctx context.Context, reportID int64) ([]models.Feedback, []models.Rating, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	Users       UserStore
	Catalog     CatalogStore
	Reports     ReportStore
	Annotations AnnotationStore
}

// NewRepositories initializes all repositories on a PostgreSQL pool
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(db),
		Catalog:     NewCatalogRepository(db),
		Reports:     NewReportRepository(db),
		Annotations: NewAnnotationRepository(db),
	}
}

func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// textFilter builds an OR of ILIKE conditions over cols for q, nil when q has no text
func textFilter(q search.Query, cols map[search.Field]string) squirrel.Sqlizer {
	if !q.HasText() {
		return nil
	}
	or := squirrel.Or{}
	for _, f := range q.Fields {
		col, ok := cols[f]
		if !ok {
			continue
		}
		or = append(or, squirrel.ILike{col: q.Pattern()})
	}
	return or
}
