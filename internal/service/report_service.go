package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/litrix/litrix-api/internal/models"
	appErrors "github.com/litrix/litrix-api/pkg/errors"
	"github.com/litrix/litrix-api/pkg/export"
	"github.com/litrix/litrix-api/pkg/jobs"
	"github.com/litrix/litrix-api/pkg/storage"
)

type reportRepository interface {
	Create(ctx context.Context, job *models.ReportJob) error
	GetByID(ctx context.Context, id string) (*models.ReportJob, error)
	UpdateStatus(ctx context.Context, id string, status models.ReportStatus) error
	Finish(ctx context.Context, id string, status models.ReportStatus, filePath, downloadToken, errorMessage string) error
}

// CreateReportRequest asks for a department metrics export.
type CreateReportRequest struct {
	College    string              `json:"college" validate:"required"`
	Department string              `json:"department" validate:"required"`
	Year       int                 `json:"year"`
	Format     models.ReportFormat `json:"format" validate:"required,oneof=csv pdf"`
}

// ReportService renders department metrics to CSV or PDF in the
// background. Callers get the job record immediately and poll it until
// the download token appears.
type ReportService struct {
	repo      reportRepository
	analytics *AnalyticsService
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	store     *storage.LocalStorage
	signer    *storage.SignedURLSigner
	queue     *jobs.Queue
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReportService constructs the report service and its render queue.
func NewReportService(repo reportRepository, analytics *AnalyticsService, store *storage.LocalStorage, signer *storage.SignedURLSigner, workers int, validate *validator.Validate, logger *zap.Logger) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ReportService{
		repo:      repo,
		analytics: analytics,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		store:     store,
		signer:    signer,
		validator: validate,
		logger:    logger,
	}
	s.queue = jobs.NewQueue("report-render", s.render, jobs.QueueConfig{
		Workers: workers,
		Logger:  logger,
	})
	return s
}

// Start launches the render workers.
func (s *ReportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the render queue.
func (s *ReportService) Stop() {
	s.queue.Stop()
}

// Create queues a report and returns the job record in QUEUED state.
func (s *ReportService) Create(ctx context.Context, createdBy string, req CreateReportRequest) (*models.ReportJob, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}

	job := &models.ReportJob{
		ID:         uuid.NewString(),
		College:    req.College,
		Department: req.Department,
		Year:       req.Year,
		Format:     req.Format,
		Status:     models.ReportStatusQueued,
		CreatedBy:  createdBy,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store report job")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "report-" + string(req.Format), Payload: job.ID}); err != nil {
		if finErr := s.repo.Finish(ctx, job.ID, models.ReportStatusFailed, "", "", "render queue unavailable"); finErr != nil {
			s.logger.Error("failed to fail stalled report", zap.String("report_id", job.ID), zap.Error(finErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue report")
	}

	return job, nil
}

// Get returns the job with its current status.
func (s *ReportService) Get(ctx context.Context, id string) (*models.ReportJob, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}
	return job, nil
}

// Download validates the signed token and opens the rendered file.
func (s *ReportService) Download(ctx context.Context, token string) (*models.ReportJob, string, error) {
	reportID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}

	job, err := s.Get(ctx, reportID)
	if err != nil {
		return nil, "", err
	}
	if job.Status != models.ReportStatusFinished || job.FilePath != relPath {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "report file not available")
	}
	return job, relPath, nil
}

// Open resolves the stored file for streaming.
func (s *ReportService) Open(relPath string) (string, error) {
	file, err := s.store.Open(relPath)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "report file missing")
	}
	name := file.Name()
	if err := file.Close(); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "report file unreadable")
	}
	return name, nil
}

// render aggregates, renders and stores one report. Outcomes land on the
// job record; the queue never re-attempts.
func (s *ReportService) render(ctx context.Context, job jobs.Job) error {
	id, ok := job.Payload.(string)
	if !ok {
		s.logger.Error("report render received unexpected payload", zap.Any("payload", job.Payload))
		return nil
	}

	if err := s.repo.UpdateStatus(ctx, id, models.ReportStatusProcessing); err != nil {
		s.logger.Error("failed to mark report processing", zap.String("report_id", id), zap.Error(err))
	}

	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("report vanished before render", zap.String("report_id", id), zap.Error(err))
		return nil
	}

	relPath, renderErr := s.renderToFile(ctx, record)
	if renderErr != nil {
		s.logger.Warn("report render failed", zap.String("report_id", id), zap.Error(renderErr))
		if err := s.repo.Finish(ctx, id, models.ReportStatusFailed, "", "", renderErr.Error()); err != nil {
			s.logger.Error("failed to record report failure", zap.String("report_id", id), zap.Error(err))
		}
		return nil
	}

	token, _, err := s.signer.Generate(id, relPath)
	if err != nil {
		if finErr := s.repo.Finish(ctx, id, models.ReportStatusFailed, "", "", "failed to sign download url"); finErr != nil {
			s.logger.Error("failed to record report failure", zap.String("report_id", id), zap.Error(finErr))
		}
		return nil
	}

	if err := s.repo.Finish(ctx, id, models.ReportStatusFinished, relPath, token, ""); err != nil {
		s.logger.Error("failed to finish report", zap.String("report_id", id), zap.Error(err))
	}
	return nil
}

func (s *ReportService) renderToFile(ctx context.Context, record *models.ReportJob) (string, error) {
	metrics, err := s.analytics.DepartmentMetrics(ctx, record.College, record.Department, record.Year)
	if err != nil {
		return "", err
	}

	dataset := buildReportDataset(metrics)
	dataset.Title = fmt.Sprintf("%s / %s research metrics", record.College, record.Department)

	var payload []byte
	switch record.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset)
	default:
		err = fmt.Errorf("unsupported report format %q", record.Format)
	}
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%s.%s", record.ID, record.Format)
	return s.store.Save(filename, payload)
}

// buildReportDataset flattens department metrics into the tabular form
// both exporters consume: one summary row per researcher plus a yearly
// breakdown block.
func buildReportDataset(metrics *models.DepartmentMetrics) export.Dataset {
	headers := []string{"scholar_id", "name", "publications", "citations", "h_index"}
	rows := make([]map[string]string, 0, len(metrics.Researchers)+len(metrics.YearlySeries))
	for _, r := range metrics.Researchers {
		rows = append(rows, map[string]string{
			"scholar_id":   r.ScholarID,
			"name":         r.Name,
			"publications": strconv.Itoa(r.Publications),
			"citations":    strconv.Itoa(r.Citations),
			"h_index":      strconv.Itoa(r.HIndex),
		})
	}
	for _, y := range metrics.YearlySeries {
		rows = append(rows, map[string]string{
			"scholar_id":   "year:" + strconv.Itoa(y.Year),
			"name":         "",
			"publications": strconv.Itoa(y.Publications),
			"citations":    strconv.Itoa(y.Citations),
			"h_index":      "",
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
