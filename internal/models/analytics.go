package models

import "time"

// YearlyMetrics is one row of the per-year rollup: how many publications
// appeared in the year and how many citations they gathered.
type YearlyMetrics struct {
	Year         int `json:"year"`
	Publications int `json:"publications"`
	Citations    int `json:"citations"`
}

// ResearcherImpact summarises one researcher for leaderboards.
type ResearcherImpact struct {
	ScholarID    string `json:"scholar_id"`
	Name         string `json:"name"`
	Publications int    `json:"publications"`
	Citations    int    `json:"citations"`
	HIndex       int    `json:"h_index"`
}

// DepartmentMetrics is the aggregate view dashboards render for a
// (college, department) scope, optionally filtered by year.
type DepartmentMetrics struct {
	College                string             `json:"college"`
	Department             string             `json:"department"`
	Year                   int                `json:"year,omitempty"`
	TotalResearchers       int                `json:"total_researchers"`
	TotalPublications      int                `json:"total_publications"`
	TotalCitations         int                `json:"total_citations"`
	PercentPublished       float64            `json:"percent_published"`
	AvgPublicationsPerHead float64            `json:"avg_publications_per_researcher"`
	AvgCitationsPerPaper   float64            `json:"avg_citations_per_publication"`
	YearlySeries           []YearlyMetrics    `json:"yearly_series"`
	Researchers            []ResearcherImpact `json:"researchers"`
	GeneratedAt            time.Time          `json:"generated_at"`
}

// SystemMetrics is a lightweight instrumentation snapshot for the admin
// dashboard.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

// ReportFormat enumerates supported export formats.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportStatus captures background job lifecycle states.
type ReportStatus string

const (
	ReportStatusQueued     ReportStatus = "QUEUED"
	ReportStatusProcessing ReportStatus = "PROCESSING"
	ReportStatusFinished   ReportStatus = "FINISHED"
	ReportStatusFailed     ReportStatus = "FAILED"
)

// ReportJob is persisted background export metadata.
type ReportJob struct {
	ID            string       `db:"id" json:"id"`
	College       string       `db:"college" json:"college"`
	Department    string       `db:"department" json:"department"`
	Year          int          `db:"year" json:"year,omitempty"`
	Format        ReportFormat `db:"format" json:"format"`
	Status        ReportStatus `db:"status" json:"status"`
	FilePath      string       `db:"file_path" json:"-"`
	DownloadToken string       `db:"download_token" json:"download_token,omitempty"`
	CreatedBy     string       `db:"created_by" json:"created_by"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	FinishedAt    *time.Time   `db:"finished_at" json:"finished_at,omitempty"`
	ErrorMessage  string       `db:"error_message" json:"error_message,omitempty"`
}
