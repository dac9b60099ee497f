package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appauth "github.com/luct/reporting/internal/app/auth"
	"github.com/luct/reporting/internal/app/controllers"
	"github.com/luct/reporting/internal/app/export"
	"github.com/luct/reporting/internal/app/models"
	"github.com/luct/reporting/internal/app/repositories/sqlite"
	"github.com/luct/reporting/internal/app/routes"
	"github.com/luct/reporting/internal/app/services"
	"github.com/luct/reporting/internal/middleware"
	"github.com/luct/reporting/internal/pkg/auth"
)

const ictFaculty = "Faculty of ICT (FICT)"

type apiEnv struct {
	router *gin.Engine
	tokens map[models.Role]string
	users  map[models.Role]*models.User
	class  *models.Class
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth.BcryptCost = bcrypt.MinCost
	ctx := context.Background()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "api.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	repos := store.NewRepositories()

	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "test"})
	policy := appauth.NewAccessPolicy(repos.Catalog)
	nop := zerolog.Nop()

	reportService := services.NewReportService(repos, policy, nil, nop)
	router := gin.New()
	routes.SetupRouter(router, routes.Controllers{
		Auth:    controllers.NewAuthController(services.NewAuthService(repos.Users, jwtService, nop), nop),
		Reports: controllers.NewReportController(reportService, nop),
		Catalog: controllers.NewCatalogController(services.NewCatalogService(repos, policy, nop), nop),
		Search:  controllers.NewSearchController(services.NewSearchService(repos, policy, nop), nop),
		Export:  controllers.NewExportController(services.NewExportService(reportService, policy, nil, 0, nop), nop),
	}, middleware.NewAuthMiddleware(jwtService))

	env := &apiEnv{router: router, tokens: map[models.Role]string{}, users: map[models.Role]*models.User{}}
	for i, role := range models.Roles {
		u := &models.User{Email: string(role) + "@luct.ac.ls", Password: "unused", Role: role, Name: role.Label(), Faculty: ictFaculty}
		_, err := repos.Users.CreateUser(ctx, u)
		require.NoError(t, err, i)
		token, _, err := jwtService.GenerateAccessToken(u)
		require.NoError(t, err)
		env.tokens[role] = token
		env.users[role] = u
	}

	course := &models.Course{Code: "BIOP2110", Name: "Object Oriented Programming", Type: models.CourseTypeMajor, Credits: 12, Faculty: ictFaculty}
	_, err = repos.Catalog.CreateCourse(ctx, course)
	require.NoError(t, err)
	env.class = &models.Class{CourseID: course.ID, LecturerID: &env.users[models.RoleLecturer].ID, Name: "BSCSM Y2"}
	_, err = repos.Catalog.CreateClass(ctx, env.class)
	require.NoError(t, err)
	require.NoError(t, repos.Catalog.EnrollStudent(ctx, env.class.ID, env.users[models.RoleStudent].ID))
	return env
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func (e *apiEnv) do(t *testing.T, role models.Role, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token, ok := e.tokens[role]; ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (e *apiEnv) submitReport(t *testing.T) int64 {
	t.Helper()
	rec, env := e.do(t, models.RoleLecturer, http.MethodPost, "/api/v1/reports", map[string]interface{}{
		"class_id":                 e.class.ID,
		"week_of_reporting":        "Week 3",
		"date_of_lecture":          "2025-03-10",
		"actual_students_present":  31,
		"topic_taught":             "Inheritance",
		"learning_outcomes":        "Students can explain inheritance",
		"lecturer_recommendations": "More lab time",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var report models.ReportDetails
	require.NoError(t, json.Unmarshal(env.Data, &report))
	return report.ID
}

func TestHealthAndAuthRequired(t *testing.T) {
	env := newAPIEnv(t)

	rec, _ := env.do(t, "", http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body := env.do(t, "", http.MethodGet, "/api/v1/reports", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "AUTH_008", body.Error.Code)
}

func TestRegisterLoginProfile(t *testing.T) {
	env := newAPIEnv(t)

	rec, _ := env.do(t, "", http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "neo@luct.ac.ls", "password": "correct-horse", "role": "student", "name": "Neo", "faculty": ictFaculty,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "correct-horse")

	rec, body := env.do(t, "", http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "neo@luct.ac.ls", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "AUTH_001", body.Error.Code)

	rec, body = env.do(t, "", http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "x@luct.ac.ls", "password": "correct-horse", "role": "dean", "name": "X", "faculty": ictFaculty,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body.Error.Fields, "role")

	rec, body = env.do(t, models.RoleLecturer, http.MethodGet, "/api/v1/profile", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var user models.User
	require.NoError(t, json.Unmarshal(body.Data, &user))
	assert.Equal(t, models.RoleLecturer, user.Role)
}

func TestReportWorkflowOverHTTP(t *testing.T) {
	env := newAPIEnv(t)
	id := env.submitReport(t)
	reportPath := "/api/v1/reports/" + strconv.FormatInt(id, 10)

	rec, body := env.do(t, models.RoleStudent, http.MethodPost, reportPath+"/feedback", map[string]string{"feedback_text": "Great"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Only Principal Lecturers can add feedback", body.Error.Message)

	rec, body = env.do(t, models.RoleStudent, http.MethodPost, reportPath+"/rating", map[string]int{"rating_value": 6})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body.Error.Fields, "rating_value")

	rec, _ = env.do(t, models.RolePrincipalLecturer, http.MethodPost, reportPath+"/feedback", map[string]string{"feedback_text": "Well structured"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec, _ = env.do(t, models.RoleStudent, http.MethodPost, reportPath+"/rating", map[string]interface{}{"rating_value": 4, "comment": "clear"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, body = env.do(t, models.RoleProgramLeader, http.MethodGet, reportPath+"/annotations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var annotations models.Annotations
	require.NoError(t, json.Unmarshal(body.Data, &annotations))
	assert.Len(t, annotations.Feedback, 1)
	assert.Equal(t, models.RatingSummary{Count: 1, Average: 4}, annotations.Summary)

	rec, body = env.do(t, models.RoleProgramLeader, http.MethodGet, "/api/v1/reports", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var reports []models.ReportDetails
	require.NoError(t, json.Unmarshal(body.Data, &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, env.users[models.RoleLecturer].ID, reports[0].LecturerID)

	rec, _ = env.do(t, models.RoleProgramLeader, http.MethodGet, "/api/v1/reports/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = env.do(t, models.RoleProgramLeader, http.MethodGet, "/api/v1/reports/9999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitReportForbiddenForStudent(t *testing.T) {
	env := newAPIEnv(t)

	rec, body := env.do(t, models.RoleStudent, http.MethodPost, "/api/v1/reports", map[string]interface{}{
		"class_id": env.class.ID, "week_of_reporting": "Week 1", "date_of_lecture": "2025-03-03",
		"actual_students_present": 10, "topic_taught": "Intro", "learning_outcomes": "x", "lecturer_recommendations": "y",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "RES_403", body.Error.Code)

	rec, _ = env.do(t, models.RoleLecturer, http.MethodPost, "/api/v1/reports", "not an object")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogAndSearchOverHTTP(t *testing.T) {
	env := newAPIEnv(t)

	course := map[string]interface{}{"course_code": "BIWE2110", "course_name": "Web Engineering", "course_type": "Major", "credits": 10, "faculty": ictFaculty}
	rec, _ := env.do(t, models.RoleLecturer, http.MethodPost, "/api/v1/courses", course)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = env.do(t, models.RoleProgramLeader, http.MethodPost, "/api/v1/courses", course)
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec, _ = env.do(t, models.RoleProgramLeader, http.MethodPost, "/api/v1/courses", course)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, body := env.do(t, models.RoleStudent, http.MethodGet, "/api/v1/search?type=courses&q=biop", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var result struct {
		Type    string          `json:"type"`
		Courses []models.Course `json:"courses"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &result))
	assert.Equal(t, "courses", result.Type)
	require.Len(t, result.Courses, 1)
	assert.Equal(t, "BIOP2110", result.Courses[0].Code)

	rec, _ = env.do(t, models.RoleProgramLeader, http.MethodPost, "/api/v1/classes/"+strconv.FormatInt(env.class.ID, 10)+"/students",
		map[string]int64{"student_id": env.users[models.RoleStudent].ID})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, body = env.do(t, models.RoleLecturer, http.MethodGet, "/api/v1/classes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var classes []models.Class
	require.NoError(t, json.Unmarshal(body.Data, &classes))
	assert.Len(t, classes, 1)
}

func TestExportOverHTTP(t *testing.T) {
	env := newAPIEnv(t)
	env.submitReport(t)

	rec, _ := env.do(t, models.RolePrincipalLecturer, http.MethodGet, "/api/v1/export/reports", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "lecture_reports_")
	assert.NotZero(t, rec.Body.Len())
}
