package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/litrix/litrix-api/internal/models"
	"github.com/litrix/litrix-api/pkg/docpath"
	appErrors "github.com/litrix/litrix-api/pkg/errors"
)

type dashboardFacultyRepository interface {
	ListAll(ctx context.Context) ([]models.FacultyProfile, error)
}

type dashboardPublicationRepository interface {
	ListByScholar(ctx context.Context, scholarID string) ([]models.Publication, error)
}

// AdminDashboard is the system-wide view for admins and academic admins.
type AdminDashboard struct {
	TotalFaculty      int                       `json:"total_faculty"`
	TotalPublications int                       `json:"total_publications"`
	TotalCitations    int                       `json:"total_citations"`
	TopResearchers    []models.ResearcherImpact `json:"top_researchers"`
	YearlySeries      []models.YearlyMetrics    `json:"yearly_series"`
	System            models.SystemMetrics      `json:"system"`
	GeneratedAt       time.Time                 `json:"generated_at"`
}

// ResearcherDashboard is a researcher's own-profile view.
type ResearcherDashboard struct {
	Profile      models.FacultyProfile   `json:"profile"`
	Impact       models.ResearcherImpact `json:"impact"`
	YearlySeries []models.YearlyMetrics  `json:"yearly_series"`
	Publications []models.Publication    `json:"publications"`
	GeneratedAt  time.Time               `json:"generated_at"`
}

// DashboardService assembles the role-scoped landing views. Department
// admins see their department metrics, admins see the whole system,
// researchers see their own corpus.
type DashboardService struct {
	faculty   dashboardFacultyRepository
	pubs      dashboardPublicationRepository
	analytics *AnalyticsService
	facultySv *FacultyService
	metrics   *MetricsService
	cache     *CacheService
	cacheTTL  time.Duration
	topN      int
	logger    *zap.Logger
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(faculty dashboardFacultyRepository, pubs dashboardPublicationRepository, analytics *AnalyticsService, facultySv *FacultyService, metrics *MetricsService, cache *CacheService, cacheTTL time.Duration, topN int, logger *zap.Logger) *DashboardService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	if topN <= 0 {
		topN = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		faculty:   faculty,
		pubs:      pubs,
		analytics: analytics,
		facultySv: facultySv,
		metrics:   metrics,
		cache:     cache,
		cacheTTL:  cacheTTL,
		topN:      topN,
		logger:    logger,
	}
}

// Admin builds the system-wide dashboard. The aggregate body is cached;
// the instrumentation snapshot is stamped fresh on every call.
func (s *DashboardService) Admin(ctx context.Context) (*AdminDashboard, error) {
	cacheKey := docpath.New("dashboards").Child("admin").MustString()

	var dashboard AdminDashboard
	if hit, err := s.cache.Get(ctx, cacheKey, &dashboard); err == nil && hit {
		dashboard.System = s.metrics.Snapshot()
		return &dashboard, nil
	}

	profiles, err := s.faculty.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculty")
	}

	// Per-researcher fetches are independent; issue them all at once so
	// the build is bounded by the slowest single lookup.
	group := make([]models.ResearcherPublications, len(profiles))
	errs := make([]error, len(profiles))
	var wg sync.WaitGroup
	for i, profile := range profiles {
		wg.Add(1)
		go func(i int, profile models.FacultyProfile) {
			defer wg.Done()
			pubs, err := s.pubs.ListByScholar(ctx, profile.ScholarID)
			if err != nil {
				errs[i] = err
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

	var allPubs []models.Publication
	for i := range group {
		if errs[i] != nil {
			return nil, appErrors.Wrap(errs[i], appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load publications")
		}
		allPubs = append(allPubs, group[i].Publications...)
	}

	totalCitations := 0
	for _, pub := range allPubs {
		totalCitations += pub.Citations
	}

	dashboard = AdminDashboard{
		TotalFaculty:      len(profiles),
		TotalPublications: len(allPubs),
		TotalCitations:    totalCitations,
		TopResearchers:    TopByHIndex(group, s.topN),
		YearlySeries:      YearlyRollup(allPubs),
		GeneratedAt:       time.Now().UTC(),
	}

	if err := s.cache.Set(ctx, cacheKey, dashboard, s.cacheTTL); err != nil {
		s.logger.Warn("admin dashboard cache store failed", zap.Error(err))
	}

	dashboard.System = s.metrics.Snapshot()
	return &dashboard, nil
}

// Department builds the view a department admin lands on.
func (s *DashboardService) Department(ctx context.Context, college, department string) (*models.DepartmentMetrics, error) {
	return s.analytics.DepartmentMetrics(ctx, college, department, 0)
}

// Researcher builds a researcher's own view from their scholar ID.
func (s *DashboardService) Researcher(ctx context.Context, scholarID string) (*ResearcherDashboard, error) {
	if scholarID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "account has no scholar id")
	}

	profile, err := s.facultySv.Get(ctx, scholarID)
	if err != nil {
		return nil, err
	}

	pubs, err := s.pubs.ListByScholar(ctx, scholarID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load publications")
	}

	impact := BuildResearcherImpact(models.ResearcherPublications{
		ScholarID:    scholarID,
		Name:         profile.Name,
		Publications: pubs,
	})

	return &ResearcherDashboard{
		Profile:      *profile,
		Impact:       impact,
		YearlySeries: YearlyRollup(pubs),
		Publications: pubs,
		GeneratedAt:  time.Now().UTC(),
	}, nil
}
