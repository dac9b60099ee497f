// Package seed creates demo accounts, courses and classes on an empty database
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/luct/reporting/internal/app/models"
	"github.com/luct/reporting/internal/app/repositories"
	"github.com/luct/reporting/internal/app/search"
	"github.com/luct/reporting/internal/pkg/apperrors"
	"github.com/luct/reporting/internal/pkg/auth"
)

// DefaultFaculty owns every seeded course
const DefaultFaculty = "Faculty of ICT (FICT)"

type seedUser struct {
	Email string
	Name  string
	Role  models.Role
}

type seedCourse struct {
	Code    string
	Name    string
	Type    models.CourseType
	Credits int
	Classes []seedClass
}

type seedClass struct {
	Name          string
	Venue         string
	ScheduledTime string
	Registered    int
}

var defaultUsers = []seedUser{
	{Email: "student@luct.ac.ls", Name: "Kgotso Nkosi", Role: models.RoleStudent},
	{Email: "lecturer@luct.ac.ls", Name: "Dr. Thabo Moloi", Role: models.RoleLecturer},
	{Email: "prl@luct.ac.ls", Name: "Palesa Nthati", Role: models.RolePrincipalLecturer},
	{Email: "pl@luct.ac.ls", Name: "Teboho Ramaisa", Role: models.RoleProgramLeader},
}

var defaultCourses = []seedCourse{
	{
		Code: "BIWA2110", Name: "Web Application Development", Type: models.CourseTypeMajor, Credits: 10,
		Classes: []seedClass{
			{Name: "BSCIT Y2 S1", Venue: "Hall 6", ScheduledTime: "Monday 08:30", Registered: 45},
			{Name: "DIT Y2 S1", Venue: "Room 3", ScheduledTime: "Wednesday 10:30", Registered: 38},
		},
	},
	{
		Code: "BIOP2110", Name: "Object Oriented Programming I", Type: models.CourseTypeMajor, Credits: 10,
		Classes: []seedClass{
			{Name: "BSCIT Y2 S1", Venue: "Lab 2", ScheduledTime: "Tuesday 14:00", Registered: 42},
		},
	},
	{
		Code: "BBCO2108", Name: "Concepts of Organization", Type: models.CourseTypeMinor, Credits: 8,
		Classes: []seedClass{
			{Name: "BSCIT Y1 S2", Venue: "Hall 2", ScheduledTime: "Friday 09:00", Registered: 60},
		},
	},
}

// CreateDefaultData creates the demo users, courses and classes that don't exist yet.
// The lecturer teaches every seeded class and the student is enrolled in all of them.
func CreateDefaultData(ctx context.Context, repos *repositories.Repositories, password string, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (users/courses/classes)...")

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	var finalErr error
	accounts := make(map[models.Role]*models.User, len(defaultUsers))
	for _, su := range defaultUsers {
		user, err := ensureUser(ctx, repos.Users, su, hash)
		if err != nil {
			lgr.Error().Err(err).Str("email", su.Email).Msg("Error creating seed user")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		accounts[su.Role] = user
	}

	for _, sc := range defaultCourses {
		course, created, err := ensureCourse(ctx, repos.Catalog, sc)
		if err != nil {
			lgr.Error().Err(err).Str("code", sc.Code).Msg("Error creating seed course")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if !created {
			// classes were seeded together with the course
			continue
		}
		for _, cl := range sc.Classes {
			if err := createClass(ctx, repos.Catalog, course.ID, cl, accounts); err != nil {
				lgr.Error().Err(err).Str("class", cl.Name).Msg("Error creating seed class")
				finalErr = errors.Join(finalErr, err)
			}
		}
	}

	if finalErr == nil {
		lgr.Info().Int("users", len(accounts)).Int("courses", len(defaultCourses)).Msg("Default data ready")
	}
	return finalErr
}

func ensureUser(ctx context.Context, users repositories.UserStore, su seedUser, hash string) (*models.User, error) {
	existing, err := users.GetUserByEmail(ctx, su.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}

	user := &models.User{
		Email:    su.Email,
		Password: hash,
		Role:     su.Role,
		Name:     su.Name,
		Faculty:  DefaultFaculty,
	}
	id, err := users.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id
	return user, nil
}

func ensureCourse(ctx context.Context, catalog repositories.CatalogStore, sc seedCourse) (*models.Course, bool, error) {
	course := &models.Course{
		Code:    sc.Code,
		Name:    sc.Name,
		Type:    sc.Type,
		Credits: sc.Credits,
		Faculty: DefaultFaculty,
	}
	id, err := catalog.CreateCourse(ctx, course)
	if err == nil {
		course.ID = id
		return course, true, nil
	}
	if !errors.Is(err, apperrors.ErrCourseCodeExists) {
		return nil, false, err
	}

	existing, err := catalog.ListCourses(ctx, search.Build(string(search.TargetCourses), sc.Code, models.ReportScope{}))
	if err != nil {
		return nil, false, err
	}
	for _, c := range existing {
		if c.Code == sc.Code {
			return c, false, nil
		}
	}
	return nil, false, apperrors.ErrCourseNotFound
}

func createClass(ctx context.Context, catalog repositories.CatalogStore, courseID int64, cl seedClass, accounts map[models.Role]*models.User) error {
	class := &models.Class{
		CourseID:        courseID,
		Name:            cl.Name,
		TotalRegistered: cl.Registered,
		Venue:           cl.Venue,
		ScheduledTime:   cl.ScheduledTime,
	}
	if lecturer, ok := accounts[models.RoleLecturer]; ok {
		class.LecturerID = &lecturer.ID
	}

	id, err := catalog.CreateClass(ctx, class)
	if err != nil {
		return err
	}
	if student, ok := accounts[models.RoleStudent]; ok {
		if err := catalog.EnrollStudent(ctx, id, student.ID); err != nil && !errors.Is(err, apperrors.ErrAlreadyEnrolled) {
			return err
		}
	}
	return nil
}
