package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litrix/litrix-api/internal/models"
	"github.com/litrix/litrix-api/internal/service"
)

type fakeCollector struct {
	group []models.ResearcherPublications
}

func (c *fakeCollector) CollectDepartment(ctx context.Context, college, department string) ([]models.ResearcherPublications, error) {
	return c.group, nil
}

func (c *fakeCollector) ListByScholar(ctx context.Context, scholarID string) ([]models.Publication, error) {
	return nil, nil
}

func TestDepartmentMetricsHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	collector := &fakeCollector{group: []models.ResearcherPublications{
		{ScholarID: "s1", Name: "Maria Santos", Publications: []models.Publication{
			{Year: 2024, Citations: 10},
		}},
	}}
	svc := service.NewAnalyticsService(collector, nil, 0, nil)
	handler := NewAnalyticsHandler(svc, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/analytics/departments?college=Science&department=Physics", nil)

	handler.Department(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data models.DepartmentMetrics `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.TotalResearchers)
	assert.Equal(t, 1, envelope.Data.TotalPublications)
	assert.Equal(t, 10, envelope.Data.TotalCitations)
}

func TestDepartmentMetricsHandlerRequiresScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := service.NewAnalyticsService(&fakeCollector{}, nil, 0, nil)
	handler := NewAnalyticsHandler(svc, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/analytics/departments?college=Science", nil)

	handler.Department(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
