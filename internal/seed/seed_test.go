package seed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/luct/reporting/internal/app/models"
	"github.com/luct/reporting/internal/app/repositories/sqlite"
	"github.com/luct/reporting/internal/app/search"
	"github.com/luct/reporting/internal/pkg/auth"
)

func TestCreateDefaultDataIsIdempotent(t *testing.T) {
	auth.BcryptCost = bcrypt.MinCost
	ctx := context.Background()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "seed.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	repos := store.NewRepositories()

	require.NoError(t, CreateDefaultData(ctx, repos, "luct-demo-pass", zerolog.Nop()))
	require.NoError(t, CreateDefaultData(ctx, repos, "luct-demo-pass", zerolog.Nop()))

	lecturer, err := repos.Users.GetUserByEmail(ctx, "lecturer@luct.ac.ls")
	require.NoError(t, err)
	assert.Equal(t, models.RoleLecturer, lecturer.Role)
	assert.True(t, auth.CheckPassword(lecturer.Password, "luct-demo-pass"))

	courses, err := repos.Catalog.ListCourses(ctx, search.Build(string(search.TargetCourses), "", models.ReportScope{}))
	require.NoError(t, err)
	assert.Len(t, courses, len(defaultCourses))

	classes, err := repos.Catalog.ListClasses(ctx, &lecturer.ID)
	require.NoError(t, err)
	assert.Len(t, classes, 4)

	student, err := repos.Users.GetUserByEmail(ctx, "student@luct.ac.ls")
	require.NoError(t, err)
	enrolled, err := repos.Catalog.ListEnrolledClasses(ctx, student.ID)
	require.NoError(t, err)
	assert.Len(t, enrolled, 4)
}
