package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/litrix/litrix-api/internal/models"
	"github.com/litrix/litrix-api/internal/service"
	appErrors "github.com/litrix/litrix-api/pkg/errors"
	"github.com/litrix/litrix-api/pkg/response"
)

// DashboardHandler serves the role-scoped landing views. One endpoint;
// the caller's resolved role picks the shape.
type DashboardHandler struct {
	service  *service.DashboardService
	identity *service.IdentityService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc *service.DashboardService, identity *service.IdentityService) *DashboardHandler {
	return &DashboardHandler{service: svc, identity: identity}
}

// Show godoc
// @Summary Role-scoped dashboard
// @Description Admins get the system view, department admins their department, researchers their own corpus
// @Tags Dashboards
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Show(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	identity, err := h.identity.Resolve(c.Request.Context(), claims.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	switch identity.Role {
	case models.RoleAdmin, models.RoleAcademicAdmin:
		dashboard, err := h.service.Admin(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, dashboard, nil)
	case models.RoleDepartmentAdmin:
		dashboard, err := h.service.Department(c.Request.Context(), identity.College, identity.Department)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, dashboard, nil)
	case models.RoleResearcher:
		dashboard, err := h.service.Researcher(c.Request.Context(), identity.ScholarID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, dashboard, nil)
	default:
		response.Error(c, appErrors.ErrNoRole)
	}
}
