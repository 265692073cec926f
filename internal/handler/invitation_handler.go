package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/litrix/litrix-api/internal/service"
	appErrors "github.com/litrix/litrix-api/pkg/errors"
	"github.com/litrix/litrix-api/pkg/response"
)

// InvitationHandler exposes the invitation lifecycle endpoints.
type InvitationHandler struct {
	service *service.InvitationService
}

// NewInvitationHandler creates a new handler.
func NewInvitationHandler(svc *service.InvitationService) *InvitationHandler {
	return &InvitationHandler{service: svc}
}

// Create godoc
// @Summary Invite an account
// @Description Create an invitation; the email is dispatched in the background and the outcome lands on the record
// @Tags Invitations
// @Accept json
// @Produce json
// @Param payload body service.CreateInvitationRequest true "Invitation payload"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /invitations [post]
func (h *InvitationHandler) Create(c *gin.Context) {
	var req service.CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid invitation payload"))
		return
	}

	invitation, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Accepted(c, invitation)
}

// Get godoc
// @Summary Poll an invitation's dispatch state
// @Tags Invitations
// @Produce json
// @Param id path string true "Invitation ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /invitations/{id} [get]
func (h *InvitationHandler) Get(c *gin.Context) {
	invitation, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invitation, nil)
}
