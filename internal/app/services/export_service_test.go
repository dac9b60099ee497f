package services

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/luct/reporting/internal/app/export"
	"github.com/luct/reporting/internal/pkg/filestorage"
)

func sheetRows(t *testing.T, data []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	return rows
}

func TestExportReportsIsScoped(t *testing.T) {
	env := newTestEnv(t)
	env.submit(t, env.lecturer, env.ictClass.ID, "Inheritance")
	env.submit(t, env.bizLecturer, env.bizClass.ID, "Pricing")
	svc := NewExportService(env.reports, env.policy, nil, 0, zerolog.Nop())

	data, name, err := svc.ExportReports(context.Background(), env.prl)
	require.NoError(t, err)
	assert.Regexp(t, `^lecture_reports_\d{8}_\d{6}\.xlsx$`, name)

	rows := sheetRows(t, data)
	require.Len(t, rows, 2)
	assert.Equal(t, export.Columns[0], rows[0][0])
	assert.Contains(t, rows[1], "Inheritance")

	data, _, err = svc.ExportReports(context.Background(), env.leader)
	require.NoError(t, err)
	assert.Len(t, sheetRows(t, data), 3)
}

func TestSnapshotPrunesOldFiles(t *testing.T) {
	env := newTestEnv(t)
	env.submit(t, env.lecturer, env.ictClass.ID, "Inheritance")

	storage, err := filestorage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewExportService(env.reports, env.policy, storage, 2, zerolog.Nop())
	svc.now = stepClock(time.Date(2025, 5, 1, 2, 0, 0, 0, time.UTC))

	for i := 0; i < 3; i++ {
		_, err := svc.Snapshot(context.Background())
		require.NoError(t, err)
	}

	files, err := storage.List(snapshotDir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "lecture_reports_20250501_020003.xlsx", files[0].Filename)
	assert.Len(t, sheetRows(t, mustRead(t, files[0].Path)), 2)
}

func TestSnapshotWithoutStorage(t *testing.T) {
	env := newTestEnv(t)
	svc := NewExportService(env.reports, env.policy, nil, 0, zerolog.Nop())

	_, err := svc.Snapshot(context.Background())
	assert.Error(t, err)
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}
