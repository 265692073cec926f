package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/litrix/litrix-api/internal/models"
	"github.com/litrix/litrix-api/internal/service"
	appErrors "github.com/litrix/litrix-api/pkg/errors"
	"github.com/litrix/litrix-api/pkg/response"
)

// NotificationHandler exposes the backlog listing, the admin publish
// endpoint and the live SSE stream.
type NotificationHandler struct {
	service  *service.NotificationService
	identity *service.IdentityService
}

// NewNotificationHandler creates a new handler.
func NewNotificationHandler(svc *service.NotificationService, identity *service.IdentityService) *NotificationHandler {
	return &NotificationHandler{service: svc, identity: identity}
}

// List godoc
// @Summary List the caller's notification backlog
// @Tags Notifications
// @Produce json
// @Param limit query int false "Max entries"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	selector, err := h.callerSelector(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	notifications, err := h.service.List(c.Request.Context(), *selector, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notifications, nil)
}

// Publish godoc
// @Summary Publish a notification
// @Description Persist and fan out a notification to an account, role or department
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body models.Notification true "Notification payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /notifications [post]
func (h *NotificationHandler) Publish(c *gin.Context) {
	var notification models.Notification
	if err := c.ShouldBindJSON(&notification); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid notification payload"))
		return
	}

	if err := h.service.Publish(c.Request.Context(), &notification); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, notification)
}

// Stream godoc
// @Summary Live notification feed
// @Description Server-sent events: the persisted backlog first, then live entries
// @Tags Notifications
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Failure 401 {object} response.Envelope
// @Router /notifications/stream [get]
func (h *NotificationHandler) Stream(c *gin.Context) {
	selector, err := h.callerSelector(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	feed, err := h.service.Subscribe(c.Request.Context(), *selector)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Header("Connection", "keep-alive")
	c.Stream(func(w io.Writer) bool {
		delivery, open := <-feed
		if !open {
			return false
		}
		payload, err := json.Marshal(delivery)
		if err != nil {
			return true
		}
		c.SSEvent(string(delivery.Kind), string(payload))
		return true
	})
}

// callerSelector builds the feed selector for the authenticated caller:
// their account, their role, and their department when they have one.
func (h *NotificationHandler) callerSelector(c *gin.Context) (*models.NotificationSelector, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}

	identity, err := h.identity.Resolve(c.Request.Context(), claims.AccountID)
	if err != nil {
		return nil, err
	}

	return &models.NotificationSelector{
		AccountID:  identity.AccountID,
		Role:       identity.Role,
		Department: identity.Department,
	}, nil
}
