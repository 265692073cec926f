package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/litrix/litrix-api/internal/models"
	"github.com/litrix/litrix-api/pkg/docpath"
	appErrors "github.com/litrix/litrix-api/pkg/errors"
)

type publicationCollector interface {
	CollectDepartment(ctx context.Context, college, department string) ([]models.ResearcherPublications, error)
	ListByScholar(ctx context.Context, scholarID string) ([]models.Publication, error)
}

// AnalyticsService computes department-level citation metrics with a
// cache-aside layer in front. Aggregation itself is pure; everything
// stateful lives in the collector and the cache.
type AnalyticsService struct {
	collector publicationCollector
	cache     *CacheService
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewAnalyticsService constructs the analytics service.
func NewAnalyticsService(collector publicationCollector, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *AnalyticsService {
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{collector: collector, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// DepartmentMetrics aggregates the department's publication corpus. Year
// zero means all-time. Served from cache when fresh.
func (s *AnalyticsService) DepartmentMetrics(ctx context.Context, college, department string, year int) (*models.DepartmentMetrics, error) {
	metrics, _, err := s.DepartmentMetricsCached(ctx, college, department, year)
	return metrics, err
}

// DepartmentMetricsCached works like DepartmentMetrics and additionally
// reports whether the result came from cache, for callers that expose
// cache status to clients.
func (s *AnalyticsService) DepartmentMetricsCached(ctx context.Context, college, department string, year int) (*models.DepartmentMetrics, bool, error) {
	if college == "" || department == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "college and department are required")
	}

	cacheKey := s.metricsKey(college, department, year)
	if cacheKey != "" {
		var cached models.DepartmentMetrics
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	group, err := s.collector.CollectDepartment(ctx, college, department)
	if err != nil {
		return nil, false, err
	}

	metrics := s.aggregate(college, department, year, group)

	if cacheKey != "" {
		if err := s.cache.Set(ctx, cacheKey, metrics, s.cacheTTL); err != nil {
			s.logger.Warn("department metrics cache store failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return metrics, false, nil
}

// ResearcherMetrics summarises one researcher's corpus.
func (s *AnalyticsService) ResearcherMetrics(ctx context.Context, scholarID, name string) (*models.ResearcherImpact, []models.YearlyMetrics, error) {
	pubs, err := s.collector.ListByScholar(ctx, scholarID)
	if err != nil {
		return nil, nil, err
	}
	impact := BuildResearcherImpact(models.ResearcherPublications{
		ScholarID:    scholarID,
		Name:         name,
		Publications: pubs,
	})
	return &impact, YearlyRollup(pubs), nil
}

func (s *AnalyticsService) aggregate(college, department string, year int, group []models.ResearcherPublications) *models.DepartmentMetrics {
	var allPubs []models.Publication
	for _, researcher := range group {
		allPubs = append(allPubs, researcher.Publications...)
	}
	scoped := FilterByYear(allPubs, year)

	totalCitations := 0
	for _, pub := range scoped {
		totalCitations += pub.Citations
	}

	return &models.DepartmentMetrics{
		College:                college,
		Department:             department,
		Year:                   year,
		TotalResearchers:       len(group),
		TotalPublications:      len(scoped),
		TotalCitations:         totalCitations,
		PercentPublished:       PercentPublished(group, year),
		AvgPublicationsPerHead: AvgPublicationsPerResearcher(group, year),
		AvgCitationsPerPaper:   AvgCitationsPerPublication(allPubs),
		YearlySeries:           YearlyRollup(allPubs),
		Researchers:            TopByHIndex(group, 0),
		GeneratedAt:            time.Now().UTC(),
	}
}

func (s *AnalyticsService) metricsKey(college, department string, year int) string {
	key, err := docpath.New("analytics").
		Child("colleges").Child(college).
		Child("departments").Child(department).
		Child("years").Child(strconv.Itoa(year)).
		String()
	if err != nil {
		return ""
	}
	return key
}
