package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/luct/reporting/internal/app/models"
	"github.com/luct/reporting/internal/pkg/apperrors"
	"github.com/luct/reporting/internal/pkg/dberrors"
)

// AnnotationRepository handles feedback and rating database operations
type AnnotationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAnnotationRepository creates a new AnnotationRepository
func NewAnnotationRepository(db *pgxpool.Pool) *AnnotationRepository {
	return &AnnotationRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// CreateFeedback appends a feedback entry
func (r *AnnotationRepository) CreateFeedback(ctx context.Context, fb *models.Feedback) (int64, error) {
	sql, args, err := r.sb.Insert("feedback").
		Columns("report_id", "principal_lecturer_id", "feedback_text", "created_at").
		Values(fb.ReportID, fb.PrincipalLecturerID, fb.FeedbackText, fb.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create feedback query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&fb.ID); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.ErrReportNotFound
		}
		return 0, fmt.Errorf("error creating feedback: %w", err)
	}
	return fb.ID, nil
}

// CreateRating appends a rating entry
func (r *AnnotationRepository) CreateRating(ctx context.Context, rating *models.Rating) (int64, error) {
	sql, args, err := r.sb.Insert("ratings").
		Columns("report_id", "student_id", "rating_value", "comment", "created_at").
		Values(rating.ReportID, rating.StudentID, rating.RatingValue, rating.Comment, rating.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create rating query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&rating.ID); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.ErrReportNotFound
		}
		return 0, fmt.Errorf("error creating rating: %w", err)
	}
	return rating.ID, nil
}

// ListAnnotations returns every feedback and rating of a report, oldest first
func (r *AnnotationRepository) ListAnnotations(ctx context.Context, reportID int64) ([]models.Feedback, []models.Rating, error) {
	fbSQL, fbArgs, err := r.sb.Select("id", "report_id", "principal_lecturer_id", "feedback_text", "created_at").
		From("feedback").
		Where(squirrel.Eq{"report_id": reportID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build list feedback query: %w", err)
	}

	rows, err := r.db.Query(ctx, fbSQL, fbArgs...)
	if err != nil {
		return nil, nil, fmt.Errorf("error querying feedback: %w", err)
	}
	feedback, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Feedback, error) {
		var f models.Feedback
		err := row.Scan(&f.ID, &f.ReportID, &f.PrincipalLecturerID, &f.FeedbackText, &f.CreatedAt)
		return f, err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("error scanning feedback: %w", err)
	}

	rtSQL, rtArgs, err := r.sb.Select("id", "report_id", "student_id", "rating_value", "comment", "created_at").
		From("ratings").
		Where(squirrel.Eq{"report_id": reportID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build list ratings query: %w", err)
	}

	rows, err = r.db.Query(ctx, rtSQL, rtArgs...)
	if err != nil {
		return nil, nil, fmt.Errorf("error querying ratings: %w", err)
	}
	ratings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Rating, error) {
		var rt models.Rating
		err := row.Scan(&rt.ID, &rt.ReportID, &rt.StudentID, &rt.RatingValue, &rt.Comment, &rt.CreatedAt)
		return rt, err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("error scanning ratings: %w", err)
	}

	return feedback, ratings, nil
}
