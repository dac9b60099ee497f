package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luct/reporting/internal/app/models"
	"github.com/luct/reporting/internal/app/models/dto"
	"github.com/luct/reporting/internal/pkg/apperrors"
	"github.com/luct/reporting/internal/pkg/auth"
)

func newAuthService(t *testing.T) (*AuthService, *auth.JWTService) {
	t.Helper()
	env := newTestEnv(t)
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "luct-reporting-test",
	})
	return NewAuthService(env.repos.Users, jwtService, zerolog.Nop()), jwtService
}

func TestRegisterAndLogin(t *testing.T) {
	svc, jwtService := newAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, dto.RegisterRequest{
		Email: " New.Lecturer@LUCT.ac.ls ", Password: "correct-horse", Role: "lecturer",
		Name: "Neo Phiri", Faculty: ictFaculty,
	})
	require.NoError(t, err)
	assert.Equal(t, "new.lecturer@luct.ac.ls", registered.User.Email)
	assert.Empty(t, registered.User.Password)
	assert.Equal(t, "Bearer", registered.Token.TokenType)

	claims, err := jwtService.ValidateAndExtractClaims(registered.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.Actor{ID: registered.User.ID, Role: models.RoleLecturer, Faculty: ictFaculty}, claims.Actor())

	loggedIn, err := svc.Login(ctx, dto.LoginRequest{Email: "NEW.LECTURER@luct.ac.ls", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	profile, err := svc.Profile(ctx, claims.Actor())
	require.NoError(t, err)
	assert.Equal(t, "Neo Phiri", profile.Name)
	assert.Empty(t, profile.Password)
}

func TestRegisterRejections(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()
	valid := dto.RegisterRequest{Email: "thabo@luct.ac.ls", Password: "correct-horse", Role: "lecturer", Name: "Thabo", Faculty: ictFaculty}

	_, err := svc.Register(ctx, valid)
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	badRole := valid
	badRole.Email = "dean@luct.ac.ls"
	badRole.Role = "dean"
	_, err = svc.Register(ctx, badRole)
	assert.Equal(t, apperrors.KindValidation, apperrors.Kind(err))

	short := valid
	short.Email = "short@luct.ac.ls"
	short.Password = "abc"
	_, err = svc.Register(ctx, short)
	assert.Contains(t, apperrors.FieldErrors(err), "password")

	for name, password := range map[string]string{
		"ascii over 72 bytes":     strings.Repeat("a", 80),
		"multibyte over 72 bytes": strings.Repeat("é", 40),
	} {
		long := valid
		long.Email = "long@luct.ac.ls"
		long.Password = password
		_, err = svc.Register(ctx, long)
		assert.Equal(t, apperrors.KindValidation, apperrors.Kind(err), name)
		assert.Contains(t, apperrors.FieldErrors(err), "password", name)
	}
}

func TestLoginFailures(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, dto.RegisterRequest{Email: "pl2@luct.ac.ls", Password: "correct-horse", Role: "program_leader", Name: "PL", Faculty: ictFaculty})
	require.NoError(t, err)

	for _, req := range []dto.LoginRequest{
		{Email: "pl2@luct.ac.ls", Password: "wrong-horse"},
		{Email: "nobody@luct.ac.ls", Password: "correct-horse"},
	} {
		_, err := svc.Login(ctx, req)
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		assert.Equal(t, apperrors.KindAuth, apperrors.Kind(err))
	}
}
