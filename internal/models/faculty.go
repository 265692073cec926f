package models

import (
	"time"

	"github.com/lib/pq"
)

// FacultyProfile is a researcher's bibliometric profile, scoped under a
// (college, department) pair and keyed by scholar identifier. Profiles are
// created by an external scraping pipeline; this service reads them and
// allows administrative edits only.
type FacultyProfile struct {
	ScholarID   string         `db:"scholar_id" json:"scholar_id"`
	Name        string         `db:"name" json:"name"`
	Affiliation string         `db:"affiliation" json:"affiliation"`
	College     string         `db:"college" json:"college"`
	Department  string         `db:"department" json:"department"`
	Interests   pq.StringArray `db:"interests" json:"interests"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// FacultyFilter scopes faculty listings.
type FacultyFilter struct {
	College    string
	Department string
	Page       int
	PageSize   int
}
