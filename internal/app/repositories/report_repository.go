package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/luct/reporting/internal/app/models"
	"github.com/luct/reporting/internal/app/search"
	"github.com/luct/reporting/internal/pkg/apperrors"
	"github.com/luct/reporting/internal/pkg/dberrors"
	"github.com/luct/reporting/internal/pkg/logger"
)

var reportColumns = []string{
	"lr.id", "lr.class_id", "lr.lecturer_id", "lr.week_of_reporting",
	"to_char(lr.date_of_lecture, 'YYYY-MM-DD')", "lr.actual_students_present",
	"lr.topic_taught", "lr.learning_outcomes", "lr.lecturer_recommendations", "lr.created_at",
	"c.class_name", "cr.course_code", "cr.course_name", "cr.faculty", "u.name",
}

var reportTextColumns = map[search.Field]string{
	search.FieldTopicTaught:  "lr.topic_taught",
	search.FieldCourseName:   "cr.course_name",
	search.FieldLecturerName: "u.name",
}

// ReportRepository handles lecture report database operations
type ReportRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func (r *ReportRepository) detailsQuery() squirrel.SelectBuilder {
	return r.sb.Select(reportColumns...).
		From("lecture_reports lr").
		Join("classes c ON c.id = lr.class_id").
		Join("courses cr ON cr.id = c.course_id").
		Join("users u ON u.id = lr.lecturer_id")
}

func scanReport(row pgx.Row) (*models.ReportDetails, error) {
	d := &models.ReportDetails{}
	err := row.Scan(&d.ID, &d.ClassID, &d.LecturerID, &d.WeekOfReporting,
		&d.DateOfLecture, &d.ActualStudentsPresent,
		&d.TopicTaught, &d.LearningOutcomes, &d.LecturerRecommendations, &d.CreatedAt,
		&d.ClassName, &d.CourseCode, &d.CourseName, &d.CourseFaculty, &d.LecturerName)
	return d, err
}

// scopeFilter translates a visibility scope into a WHERE condition.
// ok is false when the scope can match nothing.
func scopeFilter(scope models.ReportScope) (cond squirrel.Sqlizer, ok bool) {
	switch scope.Kind {
	case models.ScopeAll:
		return nil, true
	case models.ScopeOwn:
		return squirrel.Eq{"lr.lecturer_id": scope.LecturerID}, true
	case models.ScopeFaculty:
		return squirrel.Eq{"cr.faculty": scope.Faculty}, true
	case models.ScopeEnrolled:
		if len(scope.ClassIDs) == 0 {
			return nil, false
		}
		return squirrel.Eq{"lr.class_id": scope.ClassIDs}, true
	default:
		return nil, false
	}
}

// CreateReport creates a new lecture report
func (r *ReportRepository) CreateReport(ctx context.Context, report *models.LectureReport) (int64, error) {
	date, err := time.Parse("2006-01-02", report.DateOfLecture)
	if err != nil {
		return 0, fmt.Errorf("invalid date of lecture %q: %w", report.DateOfLecture, err)
	}

	sql, args, err := r.sb.Insert("lecture_reports").
		Columns("class_id", "lecturer_id", "week_of_reporting", "date_of_lecture",
			"actual_students_present", "topic_taught", "learning_outcomes",
			"lecturer_recommendations", "created_at").
		Values(report.ClassID, report.LecturerID, report.WeekOfReporting, date,
			report.ActualStudentsPresent, report.TopicTaught, report.LearningOutcomes,
			report.LecturerRecommendations, report.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create report query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&report.ID); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.ErrClassNotFound
		}
		logger.Error().Err(err).Int64("classID", report.ClassID).Msg("Error creating report")
		return 0, fmt.Errorf("error creating report: %w", err)
	}
	return report.ID, nil
}

// GetReportByID retrieves a report with its class, course and lecturer
func (r *ReportRepository) GetReportByID(ctx context.Context, id int64) (*models.ReportDetails, error) {
	sql, args, err := r.detailsQuery().Where(squirrel.Eq{"lr.id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get report query: %w", err)
	}

	d, err := scanReport(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrReportNotFound
		}
		return nil, fmt.Errorf("error getting report: %w", err)
	}
	return d, nil
}

// ListReports retrieves reports visible under q.Scope and matching q.Text
func (r *ReportRepository) ListReports(ctx context.Context, q search.Query) ([]*models.ReportDetails, error) {
	cond, ok := scopeFilter(q.Scope)
	if !ok {
		return []*models.ReportDetails{}, nil
	}

	query := r.detailsQuery().OrderBy("lr.created_at DESC", "lr.id DESC")
	if cond != nil {
		query = query.Where(cond)
	}
	if f := textFilter(q, reportTextColumns); f != nil {
		query = query.Where(f)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list reports query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("scope", string(q.Scope.Kind)).Msg("Error querying reports")
		return nil, fmt.Errorf("error querying reports: %w", err)
	}
	defer rows.Close()

	reports := []*models.ReportDetails{}
	for rows.Next() {
		d, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning report row: %w", err)
		}
		reports = append(reports, d)
	}
	return reports, rows.Err()
}
