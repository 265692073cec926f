package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/litrix/litrix-api/internal/service"
	appErrors "github.com/litrix/litrix-api/pkg/errors"
	"github.com/litrix/litrix-api/pkg/response"
)

// FacultyHandler exposes faculty profile endpoints.
type FacultyHandler struct {
	service *service.FacultyService
	search  *service.SearchService
	pubs    *service.PublicationService
}

// NewFacultyHandler creates a new handler.
func NewFacultyHandler(svc *service.FacultyService, search *service.SearchService, pubs *service.PublicationService) *FacultyHandler {
	return &FacultyHandler{service: svc, search: search, pubs: pubs}
}

// List godoc
// @Summary List faculty
// @Description List faculty, optionally scoped to a department
// @Tags Faculty
// @Produce json
// @Param college query string false "College"
// @Param department query string false "Department"
// @Success 200 {object} response.Envelope
// @Router /faculty [get]
func (h *FacultyHandler) List(c *gin.Context) {
	college := c.Query("college")
	department := c.Query("department")

	if college != "" || department != "" {
		profiles, err := h.service.ListByDepartment(c.Request.Context(), college, department)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, profiles, nil)
		return
	}

	profiles, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profiles, nil)
}

// Search godoc
// @Summary Fuzzy-search faculty by name
// @Tags Faculty
// @Produce json
// @Param q query string false "Name query"
// @Param college query string false "College scope"
// @Param department query string false "Department scope"
// @Success 200 {object} response.Envelope
// @Router /faculty/search [get]
func (h *FacultyHandler) Search(c *gin.Context) {
	results, err := h.search.Search(c.Request.Context(), c.Query("q"), service.SearchScope{
		College:    c.Query("college"),
		Department: c.Query("department"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// Get godoc
// @Summary Get one faculty profile
// @Tags Faculty
// @Produce json
// @Param scholarId path string true "Scholar ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faculty/{scholarId} [get]
func (h *FacultyHandler) Get(c *gin.Context) {
	profile, err := h.service.Get(c.Request.Context(), c.Param("scholarId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Update godoc
// @Summary Edit a faculty profile
// @Tags Faculty
// @Accept json
// @Produce json
// @Param scholarId path string true "Scholar ID"
// @Param payload body service.UpdateFacultyRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faculty/{scholarId} [put]
func (h *FacultyHandler) Update(c *gin.Context) {
	var req service.UpdateFacultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid faculty payload"))
		return
	}

	profile, err := h.service.Update(c.Request.Context(), c.Param("scholarId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Publications godoc
// @Summary List a faculty member's publications
// @Tags Publications
// @Produce json
// @Param scholarId path string true "Scholar ID"
// @Success 200 {object} response.Envelope
// @Router /faculty/{scholarId}/publications [get]
func (h *FacultyHandler) Publications(c *gin.Context) {
	pubs, err := h.pubs.ListByScholar(c.Request.Context(), c.Param("scholarId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pubs, nil)
}

// ListPublications godoc
// @Summary List a department's publications
// @Tags Publications
// @Produce json
// @Param college query string true "College"
// @Param department query string true "Department"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /publications [get]
func (h *FacultyHandler) ListPublications(c *gin.Context) {
	pubs, err := h.pubs.ListByDepartment(c.Request.Context(), c.Query("college"), c.Query("department"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pubs, nil)
}

// IngestPublication godoc
// @Summary Ingest a publication record
// @Description Record a publication scraped for a faculty member
// @Tags Publications
// @Accept json
// @Produce json
// @Param payload body service.IngestPublicationRequest true "Publication payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /publications/ingest [post]
func (h *FacultyHandler) IngestPublication(c *gin.Context) {
	var req service.IngestPublicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid publication payload"))
		return
	}

	pub, err := h.pubs.Ingest(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, pub)
}
