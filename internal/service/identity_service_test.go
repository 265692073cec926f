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
)

type stubPartitionRepo struct {
	mu       sync.Mutex
	accounts map[models.Role]*models.Account
	failures map[models.Role]error
	probed   []models.Role
}

func (r *stubPartitionRepo) FindInPartition(ctx context.Context, role models.Role, id string) (*models.Account, error) {
	r.mu.Lock()
	r.probed = append(r.probed, role)
	r.mu.Unlock()
	if err, ok := r.failures[role]; ok {
		return nil, err
	}
	if account, ok := r.accounts[role]; ok {
		return account, nil
	}
	return nil, sql.ErrNoRows
}

func activeAccount(id string) *models.Account {
	return &models.Account{ID: id, Email: id + "@litrix.edu", Active: true}
}

func TestResolveSinglePartition(t *testing.T) {
	repo := &stubPartitionRepo{accounts: map[models.Role]*models.Account{
		models.RoleResearcher: activeAccount("acc-1"),
	}}
	svc := NewIdentityService(repo, nil, time.Hour, nil)

	identity, err := svc.Resolve(context.Background(), "acc-1")

	require.NoError(t, err)
	assert.Equal(t, models.RoleResearcher, identity.Role)
	assert.Equal(t, "acc-1", identity.AccountID)
	assert.Len(t, repo.probed, 4)
}

func TestResolveHighestPriorityWins(t *testing.T) {
	repo := &stubPartitionRepo{accounts: map[models.Role]*models.Account{
		models.RoleResearcher:    activeAccount("acc-1"),
		models.RoleAcademicAdmin: activeAccount("acc-1"),
	}}
	svc := NewIdentityService(repo, nil, time.Hour, nil)

	identity, err := svc.Resolve(context.Background(), "acc-1")

	require.NoError(t, err)
	assert.Equal(t, models.RoleAcademicAdmin, identity.Role)
}

func TestResolveNoRole(t *testing.T) {
	repo := &stubPartitionRepo{}
	svc := NewIdentityService(repo, nil, time.Hour, nil)

	_, err := svc.Resolve(context.Background(), "ghost")

	assert.ErrorIs(t, err, appErrors.ErrNoRole)
}

func TestResolveLookupFailureIsNotNoRole(t *testing.T) {
	repo := &stubPartitionRepo{
		accounts: map[models.Role]*models.Account{
			models.RoleResearcher: activeAccount("acc-1"),
		},
		failures: map[models.Role]error{
			models.RoleAdmin: errors.New("connection reset"),
		},
	}
	svc := NewIdentityService(repo, nil, time.Hour, nil)

	_, err := svc.Resolve(context.Background(), "acc-1")

	require.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrNoRole)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
}

func TestResolveDeactivatedAccount(t *testing.T) {
	account := activeAccount("acc-1")
	account.Active = false
	repo := &stubPartitionRepo{accounts: map[models.Role]*models.Account{
		models.RoleAdmin: account,
	}}
	svc := NewIdentityService(repo, nil, time.Hour, nil)

	_, err := svc.Resolve(context.Background(), "acc-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestResolveEmptyAccountID(t *testing.T) {
	svc := NewIdentityService(&stubPartitionRepo{}, nil, time.Hour, nil)

	_, err := svc.Resolve(context.Background(), "")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
