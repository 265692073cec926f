package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/litrix/litrix-api/internal/models"
	appErrors "github.com/litrix/litrix-api/pkg/errors"
)

type stubAuthAccounts struct {
	byEmail        map[string]*models.Account
	created        []*models.Account
	createdRole    models.Role
	refreshTokens  map[string]*models.RefreshToken
	revokedTokenID string
}

func newStubAuthAccounts() *stubAuthAccounts {
	return &stubAuthAccounts{
		byEmail:       map[string]*models.Account{},
		refreshTokens: map[string]*models.RefreshToken{},
	}
}

func (r *stubAuthAccounts) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	if account, ok := r.byEmail[email]; ok {
		return account, nil
	}
	return nil, sql.ErrNoRows
}

func (r *stubAuthAccounts) Create(ctx context.Context, role models.Role, account *models.Account) error {
	r.createdRole = role
	r.created = append(r.created, account)
	return nil
}

func (r *stubAuthAccounts) UpdateLastLogin(ctx context.Context, role models.Role, id string, ts time.Time) error {
	return nil
}

func (r *stubAuthAccounts) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	r.refreshTokens[token.Token] = token
	return nil
}

func (r *stubAuthAccounts) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if stored, ok := r.refreshTokens[token]; ok {
		return stored, nil
	}
	return nil, sql.ErrNoRows
}

func (r *stubAuthAccounts) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	r.revokedTokenID = id
	return nil
}

func (r *stubAuthAccounts) RevokeAccountRefreshTokens(ctx context.Context, accountID string) error {
	return nil
}

type stubAuthInvitations struct {
	byToken  map[string]*models.Invitation
	consumed []string
}

func (r *stubAuthInvitations) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	if inv, ok := r.byToken[token]; ok {
		return inv, nil
	}
	return nil, sql.ErrNoRows
}

func (r *stubAuthInvitations) MarkConsumed(ctx context.Context, id string) error {
	r.consumed = append(r.consumed, id)
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "litrix-api",
	}
}

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestLoginIssuesTokensWithResolvedRole(t *testing.T) {
	accounts := newStubAuthAccounts()
	accounts.byEmail["dean@litrix.edu"] = &models.Account{
		ID:           "acc-1",
		Email:        "dean@litrix.edu",
		PasswordHash: hashPassword(t, "correct horse"),
		Active:       true,
		Role:         models.RoleAcademicAdmin,
	}
	svc := NewAuthService(accounts, &stubAuthInvitations{}, nil, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "dean@litrix.edu",
		Password: "correct horse",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, models.RoleAcademicAdmin, resp.Identity.Role)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.AccountID)
	assert.Equal(t, models.RoleAcademicAdmin, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	accounts := newStubAuthAccounts()
	accounts.byEmail["dean@litrix.edu"] = &models.Account{
		ID:           "acc-1",
		Email:        "dean@litrix.edu",
		PasswordHash: hashPassword(t, "correct horse"),
		Active:       true,
		Role:         models.RoleAdmin,
	}
	svc := NewAuthService(accounts, &stubAuthInvitations{}, nil, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "dean@litrix.edu",
		Password: "wrong",
	})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownEmailLooksLikeBadCredentials(t *testing.T) {
	svc := NewAuthService(newStubAuthAccounts(), &stubAuthInvitations{}, nil, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@litrix.edu",
		Password: "whatever",
	})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestRegisterConsumesInvitation(t *testing.T) {
	accounts := newStubAuthAccounts()
	invitations := &stubAuthInvitations{byToken: map[string]*models.Invitation{
		"tok-1": {
			ID:         "inv-1",
			Email:      "newhire@litrix.edu",
			Role:       models.RoleResearcher,
			Department: "Physics",
		},
	}}
	svc := NewAuthService(accounts, invitations, nil, nil, nil, testAuthConfig())

	account, err := svc.Register(context.Background(), models.RegisterRequest{
		Token:       "tok-1",
		DisplayName: "New Hire",
		Password:    "long enough secret",
		ScholarID:   "SCH-9",
	})

	require.NoError(t, err)
	assert.Equal(t, models.RoleResearcher, accounts.createdRole)
	assert.Equal(t, "newhire@litrix.edu", account.Email)
	assert.Equal(t, "Physics", account.Department)
	assert.Equal(t, []string{"inv-1"}, invitations.consumed)
	assert.NotEqual(t, "long enough secret", account.PasswordHash)
}

func TestRegisterRejectsConsumedInvitation(t *testing.T) {
	invitations := &stubAuthInvitations{byToken: map[string]*models.Invitation{
		"tok-1": {ID: "inv-1", Email: "x@litrix.edu", Role: models.RoleResearcher, Consumed: true},
	}}
	svc := NewAuthService(newStubAuthAccounts(), invitations, nil, nil, nil, testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Token:       "tok-1",
		DisplayName: "X",
		Password:    "long enough secret",
	})

	assert.ErrorIs(t, err, appErrors.ErrInvitationConsumed)
	assert.Empty(t, invitations.consumed)
}

func TestLogoutRejectsForeignToken(t *testing.T) {
	accounts := newStubAuthAccounts()
	accounts.refreshTokens["tok"] = &models.RefreshToken{
		ID:        "rt-1",
		AccountID: "owner",
		Token:     "tok",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	identity := NewIdentityService(&stubPartitionRepo{}, nil, time.Hour, nil)
	svc := NewAuthService(accounts, &stubAuthInvitations{}, identity, nil, nil, testAuthConfig())

	err := svc.Logout(context.Background(), "intruder", "tok")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, accounts.revokedTokenID)
}
