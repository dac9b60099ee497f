package services

import (
	"context"

	"github.com/rs/zerolog"

	appauth "github.com/luct/reporting/internal/app/auth"
	"github.com/luct/reporting/internal/app/models"
	"github.com/luct/reporting/internal/app/models/dto"
	"github.com/luct/reporting/internal/app/repositories"
	"github.com/luct/reporting/internal/app/search"
	"github.com/luct/reporting/internal/pkg/apperrors"
	"github.com/luct/reporting/internal/pkg/validation"
)

// ReportService sequences validation, policy, persistence and notification for lecture reports
type ReportService struct {
	reports     repositories.ReportStore
	annotations repositories.AnnotationStore
	catalog     repositories.CatalogStore
	policy      *appauth.AccessPolicy
	events      EventPublisher
	logger      zerolog.Logger
	now         Clock
}

// NewReportService creates a new ReportService. events may be nil.
func NewReportService(
	repos *repositories.Repositories,
	policy *appauth.AccessPolicy,
	events EventPublisher,
	logger zerolog.Logger,
) *ReportService {
	if events == nil {
		events = noopPublisher{}
	}
	return &ReportService{
		reports:     repos.Reports,
		annotations: repos.Annotations,
		catalog:     repos.Catalog,
		policy:      policy,
		events:      events,
		logger:      logger,
		now:         defaultClock,
	}
}

// WithClock replaces the time source, returning the service for chaining
func (s *ReportService) WithClock(now Clock) *ReportService {
	s.now = now
	return s
}

// SubmitReport stores a new lecture report authored by actor
func (s *ReportService) SubmitReport(ctx context.Context, actor models.Actor, req dto.SubmitReportRequest) (*models.ReportDetails, error) {
	// blank checks run on a trimmed copy; the stored text is exactly what was submitted
	checked := req
	trim(&checked.WeekOfReporting, &checked.TopicTaught, &checked.LearningOutcomes, &checked.LecturerRecommendations)
	if err := validation.Struct(checked); err != nil {
		return nil, err
	}

	if err := s.policy.Authorize(actor, appauth.ActionSubmitReport); err != nil {
		s.logger.Warn().Int64("actorID", actor.ID).Str("role", string(actor.Role)).Msg("Report submission denied")
		return nil, err
	}

	if _, err := s.catalog.GetClassByID(ctx, req.ClassID); err != nil {
		return nil, err
	}

	if req.LecturerID != nil && *req.LecturerID != actor.ID {
		s.logger.Warn().
			Int64("actorID", actor.ID).
			Int64("suppliedLecturerID", *req.LecturerID).
			Msg("Ignoring lecturer_id supplied in report payload")
	}

	report := &models.LectureReport{
		ClassID:                 req.ClassID,
		LecturerID:              actor.ID,
		WeekOfReporting:         req.WeekOfReporting,
		DateOfLecture:           req.DateOfLecture,
		ActualStudentsPresent:   *req.ActualStudentsPresent,
		TopicTaught:             req.TopicTaught,
		LearningOutcomes:        req.LearningOutcomes,
		LecturerRecommendations: req.LecturerRecommendations,
		CreatedAt:               s.now(),
	}
	id, err := s.reports.CreateReport(ctx, report)
	if err != nil {
		return nil, err
	}

	details, err := s.reports.GetReportByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("reportID", id).Int64("classID", report.ClassID).Int64("lecturerID", actor.ID).Msg("Lecture report submitted")
	s.publish(models.EventReportSubmitted, actor, details)
	return details, nil
}

// AddFeedback appends principal lecturer feedback to a report
func (s *ReportService) AddFeedback(ctx context.Context, actor models.Actor, reportID int64, req dto.FeedbackRequest) (*models.Feedback, error) {
	checked := req
	trim(&checked.FeedbackText)
	if err := validation.Struct(checked); err != nil {
		return nil, err
	}

	report, err := s.resolveForAnnotation(ctx, actor, appauth.ActionAddFeedback, reportID)
	if err != nil {
		return nil, err
	}

	fb := &models.Feedback{
		ReportID:            report.ID,
		PrincipalLecturerID: actor.ID,
		FeedbackText:        req.FeedbackText,
		CreatedAt:           s.now(),
	}
	if _, err := s.annotations.CreateFeedback(ctx, fb); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("reportID", report.ID).Int64("feedbackID", fb.ID).Msg("Feedback added")
	s.publish(models.EventFeedbackAdded, actor, report)
	return fb, nil
}

// AddRating appends a student rating to a report
func (s *ReportService) AddRating(ctx context.Context, actor models.Actor, reportID int64, req dto.RatingRequest) (*models.Rating, error) {
	checked := req
	trim(&checked.Comment)
	if err := validation.Struct(checked); err != nil {
		return nil, err
	}

	report, err := s.resolveForAnnotation(ctx, actor, appauth.ActionAddRating, reportID)
	if err != nil {
		return nil, err
	}

	rating := &models.Rating{
		ReportID:    report.ID,
		StudentID:   actor.ID,
		RatingValue: *req.RatingValue,
		Comment:     req.Comment,
		CreatedAt:   s.now(),
	}
	if _, err := s.annotations.CreateRating(ctx, rating); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("reportID", report.ID).Int("rating", rating.RatingValue).Msg("Rating added")
	s.publish(models.EventRatingAdded, actor, report)
	return rating, nil
}

// resolveForAnnotation checks the role, resolves the report and applies the annotation scope rule
func (s *ReportService) resolveForAnnotation(ctx context.Context, actor models.Actor, action appauth.Action, reportID int64) (*models.ReportDetails, error) {
	if err := s.policy.Authorize(actor, action); err != nil {
		s.logger.Warn().Int64("actorID", actor.ID).Str("action", string(action)).Msg("Annotation denied")
		return nil, err
	}

	report, err := s.reports.GetReportByID(ctx, reportID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.AuthorizeAnnotation(ctx, actor, action, report); err != nil {
		return nil, err
	}
	return report, nil
}

// ListReports returns every report actor may see, newest first
func (s *ReportService) ListReports(ctx context.Context, actor models.Actor) ([]*models.ReportDetails, error) {
	return s.SearchReports(ctx, actor, "")
}

// SearchReports returns the visible reports whose topic, course name or lecturer name contains q
func (s *ReportService) SearchReports(ctx context.Context, actor models.Actor, q string) ([]*models.ReportDetails, error) {
	if err := s.policy.Authorize(actor, appauth.ActionListReports); err != nil {
		return nil, err
	}
	scope, err := s.policy.ReportScope(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.reports.ListReports(ctx, search.Build(string(search.TargetReports), q, scope))
}

// GetReport returns one report. Reports outside actor's scope are reported as not found.
func (s *ReportService) GetReport(ctx context.Context, actor models.Actor, reportID int64) (*models.ReportDetails, error) {
	report, err := s.reports.GetReportByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	visible, err := s.policy.CanView(ctx, actor, report)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, apperrors.ErrReportNotFound
	}
	return report, nil
}

// ListAnnotations returns a visible report's feedback and ratings with a summary computed from the stored ratings
func (s *ReportService) ListAnnotations(ctx context.Context, actor models.Actor, reportID int64) (*models.Annotations, error) {
	if _, err := s.GetReport(ctx, actor, reportID); err != nil {
		return nil, err
	}

	feedback, ratings, err := s.annotations.ListAnnotations(ctx, reportID)
	if err != nil {
		return nil, err
	}
	return &models.Annotations{
		ReportID: reportID,
		Feedback: feedback,
		Ratings:  ratings,
		Summary:  models.Summarize(ratings),
	}, nil
}

func (s *ReportService) publish(kind models.ReportEventType, actor models.Actor, report *models.ReportDetails) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("event", string(kind)).Msg("Event publisher panicked")
		}
	}()
	s.events.Publish(models.ReportEvent{
		Type:     kind,
		ReportID: report.ID,
		ActorID:  actor.ID,
		At:       s.now(),
		Report:   report,
	})
}
