package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litrix/litrix-api/internal/models"
	appErrors "github.com/litrix/litrix-api/pkg/errors"
)

type stubCollector struct {
	group     []models.ResearcherPublications
	byScholar map[string][]models.Publication
	calls     int
}

func (c *stubCollector) CollectDepartment(ctx context.Context, college, department string) ([]models.ResearcherPublications, error) {
	c.calls++
	return c.group, nil
}

func (c *stubCollector) ListByScholar(ctx context.Context, scholarID string) ([]models.Publication, error) {
	return c.byScholar[scholarID], nil
}

func TestDepartmentMetricsAggregation(t *testing.T) {
	collector := &stubCollector{group: []models.ResearcherPublications{
		{ScholarID: "a", Name: "A", Publications: []models.Publication{
			{Year: 2024, Citations: 10},
			{Year: 2024, Citations: 8},
			{Year: 2023, Citations: 5},
		}},
		{ScholarID: "b", Name: "B", Publications: []models.Publication{
			{Year: 2024, Citations: 2},
		}},
		{ScholarID: "c", Name: "C"},
	}}
	svc := NewAnalyticsService(collector, nil, 0, nil)

	metrics, err := svc.DepartmentMetrics(context.Background(), "Science", "Physics", 2024)

	require.NoError(t, err)
	assert.Equal(t, 3, metrics.TotalResearchers)
	assert.Equal(t, 3, metrics.TotalPublications)
	assert.Equal(t, 20, metrics.TotalCitations)
	assert.InDelta(t, 66.666, metrics.PercentPublished, 0.01)
	assert.InDelta(t, 1.0, metrics.AvgPublicationsPerHead, 1e-9)
	assert.InDelta(t, 25.0/4.0, metrics.AvgCitationsPerPaper, 1e-9)
	require.Len(t, metrics.YearlySeries, 2)
	assert.Equal(t, 2023, metrics.YearlySeries[0].Year)
	require.NotEmpty(t, metrics.Researchers)
	assert.Equal(t, "a", metrics.Researchers[0].ScholarID)
}

func TestDepartmentMetricsEmptyDepartment(t *testing.T) {
	svc := NewAnalyticsService(&stubCollector{}, nil, 0, nil)

	metrics, err := svc.DepartmentMetrics(context.Background(), "Science", "Ghost", 0)

	require.NoError(t, err)
	assert.Zero(t, metrics.TotalResearchers)
	assert.Zero(t, metrics.PercentPublished)
	assert.Zero(t, metrics.AvgCitationsPerPaper)
}

func TestDepartmentMetricsRequiresScope(t *testing.T) {
	svc := NewAnalyticsService(&stubCollector{}, nil, 0, nil)

	_, err := svc.DepartmentMetrics(context.Background(), "", "Physics", 0)

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestResearcherMetrics(t *testing.T) {
	collector := &stubCollector{byScholar: map[string][]models.Publication{
		"sch-1": {
			{Year: 2022, Citations: 10},
			{Year: 2023, Citations: 8},
			{Year: 2023, Citations: 5},
			{Year: 2024, Citations: 3},
			{Year: 2024, Citations: 1},
		},
	}}
	svc := NewAnalyticsService(collector, nil, 0, nil)

	impact, series, err := svc.ResearcherMetrics(context.Background(), "sch-1", "Maria Santos")

	require.NoError(t, err)
	assert.Equal(t, 3, impact.HIndex)
	assert.Equal(t, 5, impact.Publications)
	assert.Equal(t, 27, impact.Citations)
	require.Len(t, series, 3)
	assert.Equal(t, 2022, series[0].Year)
}
