package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/litrix/litrix-api/internal/models"
)

// publicationColumns tolerates partially populated documents: numeric
// fields default to zero and text fields to empty, matching the ingestion
// pipeline's backfill behaviour.
const publicationColumns = `id, scholar_id, title,
	COALESCE(year, 0) AS year,
	COALESCE(citations, 0) AS citations,
	COALESCE(authors, '{}') AS authors,
	COALESCE(abstract, '') AS abstract,
	COALESCE(venue, '') AS venue,
	created_at`

// PublicationRepository reads and ingests publications. Publications are
// immutable once stored; there is no update path.
type PublicationRepository struct {
	db *sqlx.DB
}

// NewPublicationRepository creates a new instance of PublicationRepository.
func NewPublicationRepository(db *sqlx.DB) *PublicationRepository {
	return &PublicationRepository{db: db}
}

// ListByScholar returns one researcher's publications, newest year first.
func (r *PublicationRepository) ListByScholar(ctx context.Context, scholarID string) ([]models.Publication, error) {
	query := fmt.Sprintf(`SELECT %s FROM publications WHERE scholar_id = $1 ORDER BY year DESC, title ASC`, publicationColumns)
	var publications []models.Publication
	if err := r.db.SelectContext(ctx, &publications, query, scholarID); err != nil {
		return nil, fmt.Errorf("list publications for %s: %w", scholarID, err)
	}
	return publications, nil
}

// Create ingests a new publication record.
func (r *PublicationRepository) Create(ctx context.Context, pub *models.Publication) error {
	if pub.ID == "" {
		pub.ID = uuid.NewString()
	}
	if pub.CreatedAt.IsZero() {
		pub.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO publications (id, scholar_id, title, year, citations, authors, abstract, venue, created_at)
		VALUES (:id, :scholar_id, :title, :year, :citations, :authors, :abstract, :venue, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, pub); err != nil {
		return fmt.Errorf("create publication: %w", err)
	}
	return nil
}
