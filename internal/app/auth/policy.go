package auth

import (
	"context"
	"fmt"

	"github.com/luct/reporting/internal/app/models"
	"github.com/luct/reporting/internal/pkg/apperrors"
)

// Action is something an actor asks to do
type Action string

const (
	ActionListReports       Action = "list-reports"
	ActionSubmitReport      Action = "submit-report"
	ActionAddFeedback       Action = "add-feedback"
	ActionAddRating         Action = "add-rating"
	ActionManageCourse      Action = "manage-course"
	ActionViewCourseCatalog Action = "view-course-catalog"
	ActionListClasses       Action = "list-classes"
	ActionSearch            Action = "search"
	ActionExportReports     Action = "export-reports"
)

// rule restricts an action to a single role. Actions without a rule are open to every valid role.
type rule struct {
	role   models.Role
	reason string
}

var writeRules = map[Action]rule{
	ActionSubmitReport: {role: models.RoleLecturer, reason: "Only Lecturers can submit reports"},
	ActionAddFeedback:  {role: models.RolePrincipalLecturer, reason: "Only Principal Lecturers can add feedback"},
	ActionAddRating:    {role: models.RoleStudent, reason: "Only students can add ratings"},
	ActionManageCourse: {role: models.RoleProgramLeader, reason: "Only Program Leaders can manage courses"},
}

// EnrollmentLookup resolves the classes a student attends
type EnrollmentLookup interface {
	ListEnrolledClasses(ctx context.Context, studentID int64) ([]int64, error)
}

// Option configures an AccessPolicy
type Option func(*AccessPolicy)

// WithStrictAnnotationScope additionally confines feedback and ratings to reports
// inside the actor's read scope.
func WithStrictAnnotationScope(strict bool) Option {
	return func(p *AccessPolicy) {
		p.strictAnnotations = strict
	}
}

// AccessPolicy decides what an actor may see and do. It is the only place
// in the application that branches on role.
type AccessPolicy struct {
	enrollments       EnrollmentLookup
	strictAnnotations bool
}

// NewAccessPolicy creates a new AccessPolicy
func NewAccessPolicy(enrollments EnrollmentLookup, opts ...Option) *AccessPolicy {
	p := &AccessPolicy{enrollments: enrollments}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Authorize returns nil when actor may perform action, or a forbidden error with a readable reason
func (p *AccessPolicy) Authorize(actor models.Actor, action Action) error {
	if !actor.Role.Valid() {
		return apperrors.NewForbiddenError(fmt.Sprintf("Unknown role %q", actor.Role))
	}
	r, restricted := writeRules[action]
	if !restricted {
		return nil
	}
	if actor.Role != r.role {
		return apperrors.NewForbiddenError(r.reason)
	}
	return nil
}

// ReportScope returns the visibility predicate for actor's report reads
func (p *AccessPolicy) ReportScope(ctx context.Context, actor models.Actor) (models.ReportScope, error) {
	switch actor.Role {
	case models.RoleLecturer:
		return models.ReportScope{Kind: models.ScopeOwn, LecturerID: actor.ID}, nil
	case models.RoleStudent:
		classIDs, err := p.enrollments.ListEnrolledClasses(ctx, actor.ID)
		if err != nil {
			return models.ReportScope{}, fmt.Errorf("resolve enrolled classes: %w", err)
		}
		return models.ReportScope{Kind: models.ScopeEnrolled, ClassIDs: classIDs}, nil
	case models.RolePrincipalLecturer:
		return models.ReportScope{Kind: models.ScopeFaculty, Faculty: actor.Faculty}, nil
	case models.RoleProgramLeader:
		return models.AllReports(), nil
	default:
		return models.ReportScope{Kind: models.ScopeNone}, apperrors.NewForbiddenError(fmt.Sprintf("Unknown role %q", actor.Role))
	}
}

// CanView reports whether actor may read report
func (p *AccessPolicy) CanView(ctx context.Context, actor models.Actor, report *models.ReportDetails) (bool, error) {
	scope, err := p.ReportScope(ctx, actor)
	if err != nil {
		return false, err
	}
	return scope.Allows(report), nil
}

// AuthorizeAnnotation checks an add-feedback or add-rating request against a resolved report.
// The role check always applies; the scope check only in strict mode.
func (p *AccessPolicy) AuthorizeAnnotation(ctx context.Context, actor models.Actor, action Action, report *models.ReportDetails) error {
	if err := p.Authorize(actor, action); err != nil {
		return err
	}
	if !p.strictAnnotations {
		return nil
	}
	visible, err := p.CanView(ctx, actor, report)
	if err != nil {
		return err
	}
	if !visible {
		return apperrors.NewForbiddenError("Report is outside your reporting scope")
	}
	return nil
}

// ClassScope returns the lecturer filter for class listings, nil meaning every class
func (p *AccessPolicy) ClassScope(actor models.Actor) *int64 {
	if actor.Role == models.RoleLecturer {
		id := actor.ID
		return &id
	}
	return nil
}

// StrictAnnotationScope reports whether annotation writes are confined to the read scope
func (p *AccessPolicy) StrictAnnotationScope() bool {
	return p.strictAnnotations
}
