package models

import (
	"time"

	"github.com/lib/pq"
)

// Publication is owned by exactly one faculty profile and is immutable from
// the application's viewpoint: it is ingested, aggregated, and displayed,
// never edited. Missing numeric fields default to zero; upstream documents
// may be partially populated during backfill and that is tolerated, not
// rejected.
type Publication struct {
	ID        string         `db:"id" json:"id"`
	ScholarID string         `db:"scholar_id" json:"scholar_id"`
	Title     string         `db:"title" json:"title"`
	Year      int            `db:"year" json:"year"`
	Citations int            `db:"citations" json:"citations"`
	Authors   pq.StringArray `db:"authors" json:"authors"`
	Abstract  string         `db:"abstract" json:"abstract"`
	Venue     string         `db:"venue" json:"venue"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// ResearcherPublications pairs a researcher with their publication list,
// the unit the metrics aggregator ranks and summarises.
type ResearcherPublications struct {
	ScholarID    string        `json:"scholar_id"`
	Name         string        `json:"name"`
	Publications []Publication `json:"publications"`
}
