package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/litrix/litrix-api/internal/models"
	"github.com/litrix/litrix-api/pkg/docpath"
	appErrors "github.com/litrix/litrix-api/pkg/errors"
)

type facultyRepository interface {
	GetByScholarID(ctx context.Context, scholarID string) (*models.FacultyProfile, error)
	ListByDepartment(ctx context.Context, college, department string) ([]models.FacultyProfile, error)
	ListAll(ctx context.Context) ([]models.FacultyProfile, error)
	Update(ctx context.Context, profile *models.FacultyProfile) error
}

// UpdateFacultyRequest carries the editable subset of a profile. Scholar
// ID, college and department are managed by the ingest pipeline and are
// not editable here.
type UpdateFacultyRequest struct {
	Name        string   `json:"name" validate:"required"`
	Affiliation string   `json:"affiliation"`
	Interests   []string `json:"interests"`
}

// FacultyService reads and administers faculty profiles.
type FacultyService struct {
	repo      facultyRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFacultyService constructs the faculty service.
func NewFacultyService(repo facultyRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *FacultyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacultyService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Get returns one faculty profile by scholar ID.
func (s *FacultyService) Get(ctx context.Context, scholarID string) (*models.FacultyProfile, error) {
	profile, err := s.repo.GetByScholarID(ctx, scholarID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty profile")
	}
	return profile, nil
}

// ListByDepartment returns every profile under a (college, department)
// pair.
func (s *FacultyService) ListByDepartment(ctx context.Context, college, department string) ([]models.FacultyProfile, error) {
	if college == "" || department == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "college and department are required")
	}
	profiles, err := s.repo.ListByDepartment(ctx, college, department)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculty")
	}
	return profiles, nil
}

// ListAll returns every profile in the system.
func (s *FacultyService) ListAll(ctx context.Context) ([]models.FacultyProfile, error) {
	profiles, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculty")
	}
	return profiles, nil
}

// Update applies administrative edits to a profile and invalidates the
// cached analytics for its department subtree.
func (s *FacultyService) Update(ctx context.Context, scholarID string, req UpdateFacultyRequest) (*models.FacultyProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faculty payload")
	}

	profile, err := s.Get(ctx, scholarID)
	if err != nil {
		return nil, err
	}

	profile.Name = req.Name
	profile.Affiliation = req.Affiliation
	profile.Interests = pq.StringArray(req.Interests)

	if err := s.repo.Update(ctx, profile); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update faculty profile")
	}

	s.invalidateDepartment(ctx, profile.College, profile.Department)
	return profile, nil
}

func (s *FacultyService) invalidateDepartment(ctx context.Context, college, department string) {
	key, err := docpath.Department(college, department)
	if err != nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "analytics/"+key+"*"); err != nil {
		s.logger.Warn("analytics cache invalidation failed",
			zap.String("college", college),
			zap.String("department", department),
			zap.Error(err))
	}
}
