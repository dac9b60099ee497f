package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appauth "github.com/luct/reporting/internal/app/auth"
	"github.com/luct/reporting/internal/app/models"
	"github.com/luct/reporting/internal/app/models/dto"
	"github.com/luct/reporting/internal/app/repositories"
	"github.com/luct/reporting/internal/app/repositories/sqlite"
	"github.com/luct/reporting/internal/pkg/auth"
)

const (
	ictFaculty      = "Faculty of ICT (FICT)"
	businessFaculty = "Business"
)

func init() {
	auth.BcryptCost = bcrypt.MinCost
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.ReportEvent
}

func (p *recordingPublisher) Publish(e models.ReportEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Types() []models.ReportEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]models.ReportEventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

type panickingPublisher struct{}

func (panickingPublisher) Publish(models.ReportEvent) { panic("subscriber gone") }

// stepClock advances one second per call so creation order is unambiguous
func stepClock(start time.Time) Clock {
	var mu sync.Mutex
	n := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return start.Add(time.Duration(n) * time.Second)
	}
}

type testEnv struct {
	repos   *repositories.Repositories
	policy  *appauth.AccessPolicy
	events  *recordingPublisher
	reports *ReportService
	catalog *CatalogService
	search  *SearchService

	lecturer, bizLecturer models.Actor
	student, outsider     models.Actor
	prl, bizPrl           models.Actor
	leader                models.Actor

	ictClass, bizClass *models.Class
}

func newTestEnv(t *testing.T, opts ...appauth.Option) *testEnv {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "services.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	repos := store.NewRepositories()
	policy := appauth.NewAccessPolicy(repos.Catalog, opts...)
	events := &recordingPublisher{}
	clock := stepClock(time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))

	env := &testEnv{
		repos:   repos,
		policy:  policy,
		events:  events,
		reports: NewReportService(repos, policy, events, zerolog.Nop()).WithClock(clock),
		catalog: NewCatalogService(repos, policy, zerolog.Nop()),
		search:  NewSearchService(repos, policy, zerolog.Nop()),
	}

	mkUser := func(email string, role models.Role, name, faculty string) models.Actor {
		u := &models.User{Email: email, Password: "not-a-login", Role: role, Name: name, Faculty: faculty}
		_, err := repos.Users.CreateUser(ctx, u)
		require.NoError(t, err)
		return u.Actor()
	}
	env.lecturer = mkUser("thabo@luct.ac.ls", models.RoleLecturer, "Thabo Mokoena", ictFaculty)
	env.bizLecturer = mkUser("lerato@luct.ac.ls", models.RoleLecturer, "Lerato Dlamini", businessFaculty)
	env.student = mkUser("palesa@luct.ac.ls", models.RoleStudent, "Palesa Nthabiseng", ictFaculty)
	env.outsider = mkUser("karabo@luct.ac.ls", models.RoleStudent, "Karabo Sello", businessFaculty)
	env.prl = mkUser("prl.ict@luct.ac.ls", models.RolePrincipalLecturer, "Mpho Letsie", ictFaculty)
	env.bizPrl = mkUser("prl.biz@luct.ac.ls", models.RolePrincipalLecturer, "Nthabeleng Moloi", businessFaculty)
	env.leader = mkUser("pl@luct.ac.ls", models.RoleProgramLeader, "Teboho Ramaisa", ictFaculty)

	ict := &models.Course{Code: "BIOP2110", Name: "Object Oriented Programming", Type: models.CourseTypeMajor, Credits: 12, Faculty: ictFaculty}
	_, err = repos.Catalog.CreateCourse(ctx, ict)
	require.NoError(t, err)
	biz := &models.Course{Code: "BBMG1120", Name: "Principles of Marketing", Type: models.CourseTypeMinor, Credits: 8, Faculty: businessFaculty}
	_, err = repos.Catalog.CreateCourse(ctx, biz)
	require.NoError(t, err)

	env.ictClass = &models.Class{CourseID: ict.ID, LecturerID: &env.lecturer.ID, Name: "BSCSM Y2", TotalRegistered: 40}
	_, err = repos.Catalog.CreateClass(ctx, env.ictClass)
	require.NoError(t, err)
	env.bizClass = &models.Class{CourseID: biz.ID, LecturerID: &env.bizLecturer.ID, Name: "DBM Y1", TotalRegistered: 55}
	_, err = repos.Catalog.CreateClass(ctx, env.bizClass)
	require.NoError(t, err)

	require.NoError(t, repos.Catalog.EnrollStudent(ctx, env.ictClass.ID, env.student.ID))
	require.NoError(t, repos.Catalog.EnrollStudent(ctx, env.bizClass.ID, env.outsider.ID))
	return env
}

func intPtr(v int) *int { return &v }

func submitRequest(classID int64, topic string) dto.SubmitReportRequest {
	return dto.SubmitReportRequest{
		ClassID:                 classID,
		WeekOfReporting:         "Week 3",
		DateOfLecture:           "2025-03-10",
		ActualStudentsPresent:   intPtr(31),
		TopicTaught:             topic,
		LearningOutcomes:        "Students can explain the topic",
		LecturerRecommendations: "More lab time",
	}
}

// submit files one report per (lecturer, class) pair and returns them in submission order
func (e *testEnv) submit(t *testing.T, actor models.Actor, classID int64, topic string) *models.ReportDetails {
	t.Helper()
	report, err := e.reports.SubmitReport(context.Background(), actor, submitRequest(classID, topic))
	require.NoError(t, err)
	return report
}

func reportIDs(reports []*models.ReportDetails) []int64 {
	ids := make([]int64, 0, len(reports))
	for _, r := range reports {
		ids = append(ids, r.ID)
	}
	return ids
}
