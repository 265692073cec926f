package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/litrix/litrix-api/internal/models"
	appErrors "github.com/litrix/litrix-api/pkg/errors"
	"github.com/litrix/litrix-api/pkg/jobs"
	"github.com/litrix/litrix-api/pkg/mailer"
)

type invitationRepository interface {
	Create(ctx context.Context, inv *models.Invitation) error
	GetByID(ctx context.Context, id string) (*models.Invitation, error)
	RecordDispatch(ctx context.Context, id string, sent bool, errorMessage string) error
}

// CreateInvitationRequest is the admin payload for inviting an account.
type CreateInvitationRequest struct {
	Email      string      `json:"email" validate:"required,email"`
	Role       models.Role `json:"role" validate:"required,oneof=ADMIN ACADEMIC_ADMIN DEPARTMENT_ADMIN RESEARCHER"`
	Department string      `json:"department"`
}

// InvitationService creates invitations and dispatches their emails in
// the background. Dispatch is fire-and-poll: Create returns as soon as
// the record is durable and the send outcome lands on the record for
// callers to poll. A failed send is never retried automatically; admins
// re-invite explicitly.
type InvitationService struct {
	repo      invitationRepository
	mail      mailer.Mailer
	metrics   *MetricsService
	queue     *jobs.Queue
	baseURL   string
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInvitationService constructs the invitation service and its dispatch
// queue. Start must be called before invitations are created.
func NewInvitationService(repo invitationRepository, mail mailer.Mailer, metrics *MetricsService, registrationBaseURL string, workers int, validate *validator.Validate, logger *zap.Logger) *InvitationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &InvitationService{
		repo:      repo,
		mail:      mail,
		metrics:   metrics,
		baseURL:   registrationBaseURL,
		validator: validate,
		logger:    logger,
	}
	s.queue = jobs.NewQueue("invitation-dispatch", s.dispatch, jobs.QueueConfig{
		Workers: workers,
		Logger:  logger,
	})
	return s
}

// Start launches the dispatch workers.
func (s *InvitationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the dispatch queue.
func (s *InvitationService) Stop() {
	s.queue.Stop()
}

// Create persists the invitation and enqueues its email. The response
// carries sent=false until the worker records the outcome.
func (s *InvitationService) Create(ctx context.Context, req CreateInvitationRequest) (*models.Invitation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid invitation payload")
	}

	token, err := generateInvitationToken()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate invitation token")
	}

	now := time.Now().UTC()
	invitation := &models.Invitation{
		ID:               uuid.NewString(),
		Email:            req.Email,
		Role:             req.Role,
		Department:       req.Department,
		Token:            token,
		RegistrationLink: s.registrationLink(token),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, invitation); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store invitation")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: invitation.ID, Type: "invitation-email", Payload: invitation.ID}); err != nil {
		// The record exists; surface the stalled dispatch on it.
		if recErr := s.repo.RecordDispatch(ctx, invitation.ID, false, "dispatch queue unavailable"); recErr != nil {
			s.logger.Error("failed to record stalled dispatch", zap.String("invitation_id", invitation.ID), zap.Error(recErr))
		}
		invitation.ErrorMessage = "dispatch queue unavailable"
	}

	return invitation, nil
}

// Get returns the invitation with its current dispatch state.
func (s *InvitationService) Get(ctx context.Context, id string) (*models.Invitation, error) {
	invitation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "invitation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load invitation")
	}
	return invitation, nil
}

// dispatch sends one invitation email and records the outcome on the
// record. It always returns nil: the queue must not re-attempt, the
// record is the retry surface.
func (s *InvitationService) dispatch(ctx context.Context, job jobs.Job) error {
	id, ok := job.Payload.(string)
	if !ok {
		s.logger.Error("invitation dispatch received unexpected payload", zap.Any("payload", job.Payload))
		return nil
	}

	invitation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("invitation vanished before dispatch", zap.String("invitation_id", id), zap.Error(err))
		return nil
	}

	email := mailer.InvitationEmail{
		To:               invitation.Email,
		RegistrationLink: invitation.RegistrationLink,
		Role:             string(invitation.Role),
		Department:       invitation.Department,
	}

	sendErr := s.mail.SendInvitation(ctx, email)
	s.metrics.RecordInvitationDispatch(sendErr == nil)

	outcome := ""
	if sendErr != nil {
		outcome = sendErr.Error()
		s.logger.Warn("invitation email failed",
			zap.String("invitation_id", id),
			zap.String("email", invitation.Email),
			zap.Error(sendErr))
	}

	if err := s.repo.RecordDispatch(ctx, id, sendErr == nil, outcome); err != nil {
		s.logger.Error("failed to record dispatch outcome", zap.String("invitation_id", id), zap.Error(err))
	}
	return nil
}

func (s *InvitationService) registrationLink(token string) string {
	link, err := url.Parse(s.baseURL)
	if err != nil || s.baseURL == "" {
		return ""
	}
	q := link.Query()
	q.Set("token", token)
	link.RawQuery = q.Encode()
	return link.String()
}

func generateInvitationToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
