package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litrix/litrix-api/internal/models"
	appErrors "github.com/litrix/litrix-api/pkg/errors"
	"github.com/litrix/litrix-api/pkg/mailer"
)

type stubInvitationRepo struct {
	mu       sync.Mutex
	byID     map[string]*models.Invitation
	outcomes map[string]string
}

func newStubInvitationRepo() *stubInvitationRepo {
	return &stubInvitationRepo{byID: map[string]*models.Invitation{}, outcomes: map[string]string{}}
}

func (r *stubInvitationRepo) Create(ctx context.Context, inv *models.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[inv.ID] = inv
	return nil
}

func (r *stubInvitationRepo) GetByID(ctx context.Context, id string) (*models.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv, ok := r.byID[id]; ok {
		clone := *inv
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (r *stubInvitationRepo) RecordDispatch(ctx context.Context, id string, sent bool, errorMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv, ok := r.byID[id]; ok {
		inv.Sent = sent
		inv.ErrorMessage = errorMessage
	}
	if sent {
		r.outcomes[id] = "sent"
	} else {
		r.outcomes[id] = errorMessage
	}
	return nil
}

func (r *stubInvitationRepo) outcome(id string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out, ok := r.outcomes[id]
	return out, ok
}

type stubMailer struct {
	mu   sync.Mutex
	sent []mailer.InvitationEmail
	fail error
}

func (m *stubMailer) SendInvitation(ctx context.Context, inv mailer.InvitationEmail) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, inv)
	return nil
}

func (m *stubMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func waitForOutcome(t *testing.T, repo *stubInvitationRepo, id string) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if out, ok := repo.outcome(id); ok {
			return out
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("dispatch outcome was never recorded")
	return ""
}

func TestCreateInvitationDispatchesEmail(t *testing.T) {
	repo := newStubInvitationRepo()
	mail := &stubMailer{}
	svc := NewInvitationService(repo, mail, nil, "https://litrix.edu/register", 1, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	invitation, err := svc.Create(ctx, CreateInvitationRequest{
		Email:      "newhire@litrix.edu",
		Role:       models.RoleResearcher,
		Department: "Physics",
	})

	require.NoError(t, err)
	assert.False(t, invitation.Sent, "create returns before dispatch completes")
	assert.Contains(t, invitation.RegistrationLink, "token=")

	assert.Equal(t, "sent", waitForOutcome(t, repo, invitation.ID))
	assert.Equal(t, 1, mail.sentCount())
}

func TestCreateInvitationRecordsSendFailure(t *testing.T) {
	repo := newStubInvitationRepo()
	mail := &stubMailer{fail: errors.New("provider unreachable")}
	svc := NewInvitationService(repo, mail, nil, "https://litrix.edu/register", 1, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	invitation, err := svc.Create(ctx, CreateInvitationRequest{
		Email: "newhire@litrix.edu",
		Role:  models.RoleResearcher,
	})
	require.NoError(t, err)

	outcome := waitForOutcome(t, repo, invitation.ID)
	assert.Contains(t, outcome, "provider unreachable")
	assert.Equal(t, 0, mail.sentCount(), "no retry after a failed send")
}

func TestCreateInvitationRejectsUnknownRole(t *testing.T) {
	svc := NewInvitationService(newStubInvitationRepo(), &stubMailer{}, nil, "https://litrix.edu/register", 1, nil, nil)

	_, err := svc.Create(context.Background(), CreateInvitationRequest{
		Email: "x@litrix.edu",
		Role:  models.Role("SUPERUSER"),
	})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGetUnknownInvitation(t *testing.T) {
	svc := NewInvitationService(newStubInvitationRepo(), &stubMailer{}, nil, "https://litrix.edu/register", 1, nil, nil)

	_, err := svc.Get(context.Background(), "missing")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
