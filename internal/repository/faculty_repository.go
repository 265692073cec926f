package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/litrix/litrix-api/internal/models"
)

// facultyColumns applies the same normalization policy as accounts: the
// scholar id is coalesced from the legacy column and text fields are never
// NULL.
const facultyColumns = `COALESCE(NULLIF(scholar_id, ''), NULLIF(scholar_id_legacy, ''), '') AS scholar_id,
	name,
	COALESCE(affiliation, '') AS affiliation,
	COALESCE(college, '') AS college,
	COALESCE(department, '') AS department,
	COALESCE(interests, '{}') AS interests,
	created_at, updated_at`

// FacultyRepository reads and administers faculty profiles.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository creates a new instance of FacultyRepository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

// GetByScholarID returns a single profile.
func (r *FacultyRepository) GetByScholarID(ctx context.Context, scholarID string) (*models.FacultyProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM faculty_profiles WHERE scholar_id = $1 OR scholar_id_legacy = $1 LIMIT 1`, facultyColumns)
	var profile models.FacultyProfile
	if err := r.db.GetContext(ctx, &profile, query, scholarID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find faculty profile: %w", err)
	}
	return &profile, nil
}

// ListByDepartment returns profiles scoped to a (college, department) pair.
func (r *FacultyRepository) ListByDepartment(ctx context.Context, college, department string) ([]models.FacultyProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM faculty_profiles WHERE college = $1 AND department = $2 ORDER BY name ASC`, facultyColumns)
	var profiles []models.FacultyProfile
	if err := r.db.SelectContext(ctx, &profiles, query, college, department); err != nil {
		return nil, fmt.Errorf("list faculty profiles: %w", err)
	}
	return profiles, nil
}

// ListAll returns every profile, used by the admin dashboard and search.
func (r *FacultyRepository) ListAll(ctx context.Context) ([]models.FacultyProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM faculty_profiles ORDER BY name ASC`, facultyColumns)
	var profiles []models.FacultyProfile
	if err := r.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, fmt.Errorf("list all faculty profiles: %w", err)
	}
	return profiles, nil
}

// Update applies an administrative edit to profile fields.
func (r *FacultyRepository) Update(ctx context.Context, profile *models.FacultyProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	const query = `UPDATE faculty_profiles SET name = :name, affiliation = :affiliation, interests = :interests, updated_at = :updated_at
		WHERE scholar_id = :scholar_id`
	result, err := r.db.NamedExecContext(ctx, query, profile)
	if err != nil {
		return fmt.Errorf("update faculty profile: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
