package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	appauth "github.com/luct/reporting/internal/app/auth"
	"github.com/luct/reporting/internal/app/export"
	"github.com/luct/reporting/internal/app/models"
	"github.com/luct/reporting/internal/pkg/filestorage"
)

const snapshotDir = "snapshots"

// SnapshotTimeout bounds one scheduled snapshot run
const SnapshotTimeout = 2 * time.Minute

// ExportService renders scoped report lists as spreadsheets
type ExportService struct {
	reports *ReportService
	policy  *appauth.AccessPolicy
	storage filestorage.FileStorage
	keep    int
	logger  zerolog.Logger
	now     Clock
}

// NewExportService creates a new ExportService. storage may be nil when snapshots are disabled.
func NewExportService(reports *ReportService, policy *appauth.AccessPolicy, storage filestorage.FileStorage, keep int, logger zerolog.Logger) *ExportService {
	return &ExportService{
		reports: reports,
		policy:  policy,
		storage: storage,
		keep:    keep,
		logger:  logger,
		now:     defaultClock,
	}
}

// ExportReports renders the reports visible to actor and returns the workbook with a download name
func (s *ExportService) ExportReports(ctx context.Context, actor models.Actor) ([]byte, string, error) {
	if err := s.policy.Authorize(actor, appauth.ActionExportReports); err != nil {
		return nil, "", err
	}
	reports, err := s.reports.ListReports(ctx, actor)
	if err != nil {
		return nil, "", err
	}

	data, err := export.RenderReports(reports)
	if err != nil {
		return nil, "", fmt.Errorf("render reports: %w", err)
	}
	s.logger.Info().Int64("actorID", actor.ID).Int("reports", len(reports)).Msg("Reports exported")
	return data, s.filename(), nil
}

// Snapshot writes a workbook of every report to storage and prunes old snapshots
func (s *ExportService) Snapshot(ctx context.Context) (string, error) {
	if s.storage == nil {
		return "", fmt.Errorf("snapshot storage is not configured")
	}

	// snapshots run with unrestricted visibility
	system := models.Actor{Role: models.RoleProgramLeader}
	data, name, err := s.ExportReports(ctx, system)
	if err != nil {
		return "", err
	}

	path, err := s.storage.SaveBytes(snapshotDir, name, data)
	if err != nil {
		return "", err
	}
	s.prune()
	return path, nil
}

func (s *ExportService) prune() {
	if s.keep <= 0 {
		return
	}
	files, err := s.storage.List(snapshotDir)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to list export snapshots")
		return
	}
	for i := s.keep; i < len(files); i++ {
		if err := s.storage.DeleteFile(files[i].Path); err != nil {
			s.logger.Warn().Err(err).Str("path", files[i].Path).Msg("Failed to prune export snapshot")
		}
	}
}

func (s *ExportService) filename() string {
	return fmt.Sprintf("lecture_reports_%s.xlsx", s.now().Format("20060102_150405"))
}
