package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/litrix/litrix-api/internal/middleware"
	"github.com/litrix/litrix-api/internal/service"
	"github.com/litrix/litrix-api/pkg/response"
)

// AnalyticsHandler exposes the citation metrics endpoints.
type AnalyticsHandler struct {
	service *service.AnalyticsService
	faculty *service.FacultyService
}

// NewAnalyticsHandler creates a new handler.
func NewAnalyticsHandler(svc *service.AnalyticsService, faculty *service.FacultyService) *AnalyticsHandler {
	return &AnalyticsHandler{service: svc, faculty: faculty}
}

// Department godoc
// @Summary Department citation metrics
// @Description Aggregate metrics for a (college, department) scope; year=0 means all-time
// @Tags Analytics
// @Produce json
// @Param college query string true "College"
// @Param department query string true "Department"
// @Param year query int false "Year filter"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /analytics/departments [get]
func (h *AnalyticsHandler) Department(c *gin.Context) {
	year, _ := strconv.Atoi(c.DefaultQuery("year", "0"))

	metrics, fromCache, err := h.service.DepartmentMetricsCached(c.Request.Context(), c.Query("college"), c.Query("department"), year)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetCacheHit(c, fromCache)
	response.JSON(c, http.StatusOK, metrics, nil, middleware.ExtractMeta(c))
}

// Researcher godoc
// @Summary Researcher citation metrics
// @Tags Analytics
// @Produce json
// @Param scholarId path string true "Scholar ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /analytics/researchers/{scholarId} [get]
func (h *AnalyticsHandler) Researcher(c *gin.Context) {
	scholarID := c.Param("scholarId")

	profile, err := h.faculty.Get(c.Request.Context(), scholarID)
	if err != nil {
		response.Error(c, err)
		return
	}

	impact, series, err := h.service.ResearcherMetrics(c.Request.Context(), scholarID, profile.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"impact":        impact,
		"yearly_series": series,
	}, nil)
}
