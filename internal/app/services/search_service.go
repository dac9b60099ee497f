package services

import (
	"context"

	"github.com/rs/zerolog"

	appauth "github.com/luct/reporting/internal/app/auth"
	"github.com/luct/reporting/internal/app/models"
	"github.com/luct/reporting/internal/app/models/dto"
	"github.com/luct/reporting/internal/app/repositories"
	"github.com/luct/reporting/internal/app/search"
)

// SearchService runs free-text searches within the actor's visibility
type SearchService struct {
	repos  *repositories.Repositories
	policy *appauth.AccessPolicy
	logger zerolog.Logger
}

// NewSearchService creates a new SearchService
func NewSearchService(repos *repositories.Repositories, policy *appauth.AccessPolicy, logger zerolog.Logger) *SearchService {
	return &SearchService{
		repos:  repos,
		policy: policy,
		logger: logger,
	}
}

// Search matches q against the collection named by target. Unknown targets search reports.
func (s *SearchService) Search(ctx context.Context, actor models.Actor, target, q string) (*dto.SearchResult, error) {
	if err := s.policy.Authorize(actor, appauth.ActionSearch); err != nil {
		return nil, err
	}

	query := search.Build(target, q, models.ReportScope{})
	result := &dto.SearchResult{Type: string(query.Target), Query: query.Text}

	switch query.Target {
	case search.TargetCourses:
		courses, err := s.repos.Catalog.ListCourses(ctx, query)
		if err != nil {
			return nil, err
		}
		result.Courses = courses
	case search.TargetUsers:
		users, err := s.repos.Users.SearchUsers(ctx, query)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			u.Password = ""
		}
		result.Users = users
	default:
		scope, err := s.policy.ReportScope(ctx, actor)
		if err != nil {
			return nil, err
		}
		query.Scope = scope
		reports, err := s.repos.Reports.ListReports(ctx, query)
		if err != nil {
			return nil, err
		}
		result.Reports = reports
	}

	s.logger.Debug().Str("type", result.Type).Str("q", query.Text).Int64("actorID", actor.ID).Msg("Search executed")
	return result, nil
}
