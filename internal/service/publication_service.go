package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/litrix/litrix-api/internal/models"
	appErrors "github.com/litrix/litrix-api/pkg/errors"
)

type publicationRepository interface {
	ListByScholar(ctx context.Context, scholarID string) ([]models.Publication, error)
	Create(ctx context.Context, pub *models.Publication) error
}

type publicationFacultyRepository interface {
	GetByScholarID(ctx context.Context, scholarID string) (*models.FacultyProfile, error)
	ListByDepartment(ctx context.Context, college, department string) ([]models.FacultyProfile, error)
}

type notificationPublisher interface {
	Publish(ctx context.Context, n *models.Notification) error
}

// IngestPublicationRequest is the payload accepted from the scraping
// pipeline. Only scholar ID and title are mandatory; everything else may
// trickle in on later backfill passes.
type IngestPublicationRequest struct {
	ScholarID string   `json:"scholar_id" validate:"required"`
	Title     string   `json:"title" validate:"required"`
	Year      int      `json:"year"`
	Citations int      `json:"citations" validate:"gte=0"`
	Authors   []string `json:"authors"`
	Abstract  string   `json:"abstract"`
	Venue     string   `json:"venue"`
}

// PublicationService reads publication lists and ingests new records.
type PublicationService struct {
	pubs          publicationRepository
	faculty       publicationFacultyRepository
	notifications notificationPublisher
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewPublicationService constructs the publication service.
func NewPublicationService(pubs publicationRepository, faculty publicationFacultyRepository, notifications notificationPublisher, validate *validator.Validate, logger *zap.Logger) *PublicationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PublicationService{
		pubs:          pubs,
		faculty:       faculty,
		notifications: notifications,
		validator:     validate,
		logger:        logger,
	}
}

// ListByScholar returns every publication owned by the scholar ID.
func (s *PublicationService) ListByScholar(ctx context.Context, scholarID string) ([]models.Publication, error) {
	if scholarID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "scholar id is required")
	}
	pubs, err := s.pubs.ListByScholar(ctx, scholarID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list publications")
	}
	return pubs, nil
}

// ListByDepartment flattens the department's publication corpus into a
// single list, ordered by the department's faculty listing.
func (s *PublicationService) ListByDepartment(ctx context.Context, college, department string) ([]models.Publication, error) {
	if college == "" || department == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "college and department are required")
	}
	group, err := s.CollectDepartment(ctx, college, department)
	if err != nil {
		return nil, err
	}
	var pubs []models.Publication
	for _, researcher := range group {
		pubs = append(pubs, researcher.Publications...)
	}
	return pubs, nil
}

// CollectDepartment loads the publication lists for every faculty member
// in a department, fetching per researcher concurrently. Any single fetch
// failure fails the collection; partial aggregates would silently skew
// the metrics built on top.
func (s *PublicationService) CollectDepartment(ctx context.Context, college, department string) ([]models.ResearcherPublications, error) {
	profiles, err := s.faculty.ListByDepartment(ctx, college, department)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list department faculty")
	}

	group := make([]models.ResearcherPublications, len(profiles))
	errs := make([]error, len(profiles))
	var wg sync.WaitGroup
	for i, profile := range profiles {
		wg.Add(1)
		go func(i int, profile models.FacultyProfile) {
			defer wg.Done()
			pubs, err := s.pubs.ListByScholar(ctx, profile.ScholarID)
			if err != nil {
				errs[i] = fmt.Errorf("publications for %s: %w", profile.ScholarID, err)
				return
			}
			group[i] = models.ResearcherPublications{
				ScholarID:    profile.ScholarID,
				Name:         profile.Name,
				Publications: pubs,
			}
		}(i, profile)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to collect department publications")
		}
	}
	return group, nil
}

// Ingest records a new publication and notifies the owning researcher's
// department feed. The notification is best effort; the record is already
// durable when it fires.
func (s *PublicationService) Ingest(ctx context.Context, req IngestPublicationRequest) (*models.Publication, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid publication payload")
	}

	profile, err := s.faculty.GetByScholarID(ctx, req.ScholarID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no faculty profile for scholar id")
	}

	pub := &models.Publication{
		ID:        uuid.NewString(),
		ScholarID: req.ScholarID,
		Title:     req.Title,
		Year:      req.Year,
		Citations: req.Citations,
		Authors:   pq.StringArray(req.Authors),
		Abstract:  req.Abstract,
		Venue:     req.Venue,
	}

	if err := s.pubs.Create(ctx, pub); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store publication")
	}

	if s.notifications != nil {
		department := profile.Department
		notification := &models.Notification{
			Department: &department,
			Title:      "New publication",
			Message:    fmt.Sprintf("%s published %q", profile.Name, pub.Title),
			Type:       models.NotificationTypeNewPublication,
		}
		if err := s.notifications.Publish(ctx, notification); err != nil {
			s.logger.Warn("publication notification failed",
				zap.String("scholar_id", pub.ScholarID),
				zap.Error(err))
		}
	}

	return pub, nil
}
