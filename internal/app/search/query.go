// Package search builds storage-agnostic free-text queries scoped by report visibility.
package search

import (
	"sort"
	"strings"

	"github.com/luct/reporting/internal/app/models"
)

// Target is the collection a search runs against
type Target string

const (
	TargetReports Target = "reports"
	TargetCourses Target = "courses"
	TargetUsers   Target = "users"
)

// ParseTarget maps a request value onto a Target. Unknown values search reports.
func ParseTarget(s string) Target {
	switch t := Target(strings.ToLower(strings.TrimSpace(s))); t {
	case TargetCourses, TargetUsers:
		return t
	default:
		return TargetReports
	}
}

// Field is a searchable column
type Field string

const (
	FieldTopicTaught  Field = "topic_taught"
	FieldCourseName   Field = "course_name"
	FieldLecturerName Field = "lecturer_name"
	FieldCourseCode   Field = "course_code"
	FieldUserName     Field = "name"
	FieldUserEmail    Field = "email"
)

var targetFields = map[Target][]Field{
	TargetReports: {FieldTopicTaught, FieldCourseName, FieldLecturerName},
	TargetCourses: {FieldCourseCode, FieldCourseName},
	TargetUsers:   {FieldUserName, FieldUserEmail},
}

// Query describes a filter. Text is matched case-insensitively as an
// unanchored substring against any of Fields. Scope only applies to reports.
type Query struct {
	Target Target
	Text   string
	Fields []Field
	Scope  models.ReportScope
}

// Build creates a query for target narrowed by q within scope
func Build(target string, q string, scope models.ReportScope) Query {
	t := ParseTarget(target)
	fields := make([]Field, len(targetFields[t]))
	copy(fields, targetFields[t])
	return Query{
		Target: t,
		Text:   strings.TrimSpace(q),
		Fields: fields,
		Scope:  scope,
	}
}

// HasText reports whether the query narrows by text at all
func (q Query) HasText() bool {
	return q.Text != ""
}

// Pattern returns the LIKE pattern for Text, lowercased with metacharacters escaped by a backslash
func (q Query) Pattern() string {
	return "%" + EscapeLike(strings.ToLower(q.Text)) + "%"
}

// Matches reports whether any of values contains Text, ignoring case
func (q Query) Matches(values ...string) bool {
	if !q.HasText() {
		return true
	}
	needle := strings.ToLower(q.Text)
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

// MatchesReport applies both the visibility scope and the text filter
func (q Query) MatchesReport(r *models.ReportDetails) bool {
	if !q.Scope.Allows(r) {
		return false
	}
	return q.Matches(r.TopicTaught, r.CourseName, r.LecturerName)
}

// MatchesCourse applies the text filter to a course
func (q Query) MatchesCourse(c *models.Course) bool {
	return q.Matches(c.Code, c.Name)
}

// MatchesUser applies the text filter to a user
func (q Query) MatchesUser(u *models.User) bool {
	return q.Matches(u.Name, u.Email)
}

// EscapeLike escapes %, _ and the escape character itself
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// SortReports orders reports newest first, ties broken by id descending
func SortReports(reports []*models.ReportDetails) {
	sort.SliceStable(reports, func(i, j int) bool {
		a, b := reports[i], reports[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}
