package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/luct/reporting/internal/app/models"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in   string
		want Target
	}{
		{"reports", TargetReports},
		{"courses", TargetCourses},
		{" Users ", TargetUsers},
		{"", TargetReports},
		{"lecturers", TargetReports},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTarget(tt.in))
		})
	}
}

func TestBuildFields(t *testing.T) {
	q := Build("courses", "  BIOP ", models.AllReports())
	assert.Equal(t, TargetCourses, q.Target)
	assert.Equal(t, "BIOP", q.Text)
	assert.Equal(t, []Field{FieldCourseCode, FieldCourseName}, q.Fields)

	q = Build("other", "x", models.AllReports())
	assert.Equal(t, []Field{FieldTopicTaught, FieldCourseName, FieldLecturerName}, q.Fields)
}

func TestPatternEscapes(t *testing.T) {
	q := Build("reports", "50%_Off", models.AllReports())
	assert.Equal(t, `%50\%\_off%`, q.Pattern())
}

func TestMatches(t *testing.T) {
	q := Build("courses", "biop", models.AllReports())
	assert.True(t, q.MatchesCourse(&models.Course{Code: "BIOP2110", Name: "Object Oriented Programming"}))
	assert.True(t, q.MatchesCourse(&models.Course{Code: "X1", Name: "Intro to Biop stuff"}))
	assert.False(t, q.MatchesCourse(&models.Course{Code: "BBMG1120", Name: "Marketing"}))

	empty := Build("users", "", models.AllReports())
	assert.True(t, empty.MatchesUser(&models.User{Name: "anyone"}))
}

func TestMatchesReportAppliesScope(t *testing.T) {
	r := &models.ReportDetails{
		LectureReport: models.LectureReport{ID: 1, LecturerID: 2, ClassID: 5, TopicTaught: "Recursion"},
		CourseFaculty: "Business",
	}

	prl := Build("reports", "", models.ReportScope{Kind: models.ScopeFaculty, Faculty: "Faculty of ICT (FICT)"})
	assert.False(t, prl.MatchesReport(r))

	own := Build("reports", "recur", models.ReportScope{Kind: models.ScopeOwn, LecturerID: 2})
	assert.True(t, own.MatchesReport(r))

	miss := Build("reports", "graphs", models.ReportScope{Kind: models.ScopeOwn, LecturerID: 2})
	assert.False(t, miss.MatchesReport(r))
}

func TestSortReports(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	reports := []*models.ReportDetails{
		{LectureReport: models.LectureReport{ID: 1, CreatedAt: base}},
		{LectureReport: models.LectureReport{ID: 3, CreatedAt: base}},
		{LectureReport: models.LectureReport{ID: 2, CreatedAt: base.Add(time.Hour)}},
	}
	SortReports(reports)

	ids := make([]int64, 0, len(reports))
	for _, r := range reports {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int64{2, 3, 1}, ids)
}
