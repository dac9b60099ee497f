package services

import (
	"strings"
	"time"

	"github.com/luct/reporting/internal/app/models"
)

// Services defined in this package:
// - AuthService: registration, login and profile lookup
// - ReportService: the report lifecycle (submit, feedback, rating, scoped reads)
// - CatalogService: courses, classes and enrollments
// - SearchService: scoped free-text search over reports, courses and users
// - ExportService: spreadsheet rendering of scoped report lists

// EventPublisher receives report events after successful mutations
type EventPublisher interface {
	Publish(event models.ReportEvent)
}

type noopPublisher struct{}

func (noopPublisher) Publish(models.ReportEvent) {}

// Clock returns the current time
type Clock func() time.Time

func defaultClock() time.Time {
	// postgres keeps microseconds
	return time.Now().UTC().Truncate(time.Microsecond)
}

func trim(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
