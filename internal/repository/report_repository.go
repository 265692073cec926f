package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/litrix/litrix-api/internal/models"
)

const reportColumns = `id, college, department, COALESCE(year, 0) AS year, format, status,
	COALESCE(file_path, '') AS file_path, COALESCE(download_token, '') AS download_token,
	created_by, created_at, finished_at, COALESCE(error_message, '') AS error_message`

// ReportRepository persists export job metadata.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create stores a queued report job.
func (r *ReportRepository) Create(ctx context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	if job.Status == "" {
		job.Status = models.ReportStatusQueued
	}
	const query = `INSERT INTO report_jobs (id, college, department, year, format, status, file_path, download_token, created_by, created_at, finished_at, error_message)
		VALUES (:id, :college, :department, :year, :format, :status, :file_path, :download_token, :created_by, :created_at, :finished_at, :error_message)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create report job: %w", err)
	}
	return nil
}

// GetByID returns one report job.
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*models.ReportJob, error) {
	query := fmt.Sprintf(`SELECT %s FROM report_jobs WHERE id = $1 LIMIT 1`, reportColumns)
	var job models.ReportJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find report job: %w", err)
	}
	return &job, nil
}

// UpdateStatus transitions a job's lifecycle state.
func (r *ReportRepository) UpdateStatus(ctx context.Context, id string, status models.ReportStatus) error {
	const query = `UPDATE report_jobs SET status = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("update report status: %w", err)
	}
	return nil
}

// Finish records the terminal outcome of a job.
func (r *ReportRepository) Finish(ctx context.Context, id string, status models.ReportStatus, filePath, downloadToken, errorMessage string) error {
	now := time.Now().UTC()
	const query = `UPDATE report_jobs SET status = $2, file_path = $3, download_token = $4, error_message = $5, finished_at = $6 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, filePath, downloadToken, errorMessage, now); err != nil {
		return fmt.Errorf("finish report job: %w", err)
	}
	return nil
}
