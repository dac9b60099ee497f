package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luct/reporting/internal/app/models"
	"github.com/luct/reporting/internal/app/models/dto"
	"github.com/luct/reporting/internal/pkg/apperrors"
)

func TestCreateCourse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	req := dto.CreateCourseRequest{Code: " BIWE2110 ", Name: "Web Engineering", Type: "Major", Credits: 10, Faculty: ictFaculty}

	_, err := env.catalog.CreateCourse(ctx, env.prl, req)
	assert.Equal(t, "Only Program Leaders can manage courses", apperrors.Message(err))

	course, err := env.catalog.CreateCourse(ctx, env.leader, req)
	require.NoError(t, err)
	assert.NotZero(t, course.ID)
	assert.Equal(t, "BIWE2110", course.Code)
	assert.Equal(t, models.CourseTypeMajor, course.Type)

	_, err = env.catalog.CreateCourse(ctx, env.leader, req)
	assert.ErrorIs(t, err, apperrors.ErrCourseCodeExists)

	bad := req
	bad.Type = "Elective"
	_, err = env.catalog.CreateCourse(ctx, env.leader, bad)
	assert.Equal(t, apperrors.KindValidation, apperrors.Kind(err))
	assert.Contains(t, apperrors.FieldErrors(err), "course_type")
}

func TestCreateClassAndAssignLecturer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.catalog.CreateClass(ctx, env.leader, dto.CreateClassRequest{
		CourseID: env.ictClass.CourseID, LecturerID: &env.student.ID, Name: "BSCSM Y3",
	})
	assert.Equal(t, apperrors.KindValidation, apperrors.Kind(err))
	assert.Contains(t, apperrors.FieldErrors(err), "lecturer_id")

	_, err = env.catalog.CreateClass(ctx, env.leader, dto.CreateClassRequest{CourseID: 9999, Name: "Ghost"})
	assert.Equal(t, apperrors.KindNotFound, apperrors.Kind(err))

	class, err := env.catalog.CreateClass(ctx, env.leader, dto.CreateClassRequest{
		CourseID: env.ictClass.CourseID, Name: "BSCSM Y3", Venue: "Lab 1", TotalRegistered: 25,
	})
	require.NoError(t, err)
	assert.Nil(t, class.LecturerID)
	assert.Equal(t, "BIOP2110", class.CourseCode)
	assert.Equal(t, ictFaculty, class.CourseFaculty)

	assigned, err := env.catalog.AssignLecturer(ctx, env.leader, class.ID, dto.AssignLecturerRequest{LecturerID: env.bizLecturer.ID})
	require.NoError(t, err)
	require.NotNil(t, assigned.LecturerID)
	assert.Equal(t, env.bizLecturer.ID, *assigned.LecturerID)

	_, err = env.catalog.AssignLecturer(ctx, env.lecturer, class.ID, dto.AssignLecturerRequest{LecturerID: env.lecturer.ID})
	assert.Equal(t, apperrors.KindForbidden, apperrors.Kind(err))

	_, err = env.catalog.AssignLecturer(ctx, env.leader, 9999, dto.AssignLecturerRequest{LecturerID: env.lecturer.ID})
	assert.Equal(t, apperrors.KindNotFound, apperrors.Kind(err))
}

func TestEnrollStudent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.catalog.EnrollStudent(ctx, env.leader, env.ictClass.ID, dto.EnrollStudentRequest{StudentID: env.outsider.ID})
	require.NoError(t, err)

	report := env.submit(t, env.lecturer, env.ictClass.ID, "Inheritance")
	visible, err := env.reports.ListReports(ctx, env.outsider)
	require.NoError(t, err)
	assert.Contains(t, reportIDs(visible), report.ID)

	err = env.catalog.EnrollStudent(ctx, env.leader, env.ictClass.ID, dto.EnrollStudentRequest{StudentID: env.outsider.ID})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyEnrolled)

	err = env.catalog.EnrollStudent(ctx, env.leader, env.ictClass.ID, dto.EnrollStudentRequest{StudentID: env.lecturer.ID})
	assert.Equal(t, apperrors.KindValidation, apperrors.Kind(err))
}

func TestListClassesForLecturer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	classes, err := env.catalog.ListClasses(ctx, env.lecturer)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, env.ictClass.ID, classes[0].ID)

	classes, err = env.catalog.ListClasses(ctx, env.leader)
	require.NoError(t, err)
	assert.Len(t, classes, 2)
}
