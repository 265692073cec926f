package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/litrix/litrix-api/internal/models"
	"github.com/litrix/litrix-api/internal/service"
)

type fakeAuthAccounts struct {
	account *models.Account
}

func (r *fakeAuthAccounts) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	if r.account != nil && r.account.Email == email {
		return r.account, nil
	}
	return nil, sql.ErrNoRows
}

func (r *fakeAuthAccounts) Create(ctx context.Context, role models.Role, account *models.Account) error {
	return nil
}

func (r *fakeAuthAccounts) UpdateLastLogin(ctx context.Context, role models.Role, id string, ts time.Time) error {
	return nil
}

func (r *fakeAuthAccounts) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	return nil
}

func (r *fakeAuthAccounts) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	return nil, sql.ErrNoRows
}

func (r *fakeAuthAccounts) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	return nil
}

func (r *fakeAuthAccounts) RevokeAccountRefreshTokens(ctx context.Context, accountID string) error {
	return nil
}

type fakeAuthInvitations struct{}

func (r *fakeAuthInvitations) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	return nil, sql.ErrNoRows
}

func (r *fakeAuthInvitations) MarkConsumed(ctx context.Context, id string) error {
	return nil
}

func newTestAuthHandler(t *testing.T, password string) *AuthHandler {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	accounts := &fakeAuthAccounts{account: &models.Account{
		ID:           "acc-1",
		Email:        "dean@litrix.edu",
		PasswordHash: string(hash),
		Active:       true,
		Role:         models.RoleAcademicAdmin,
	}}
	svc := service.NewAuthService(accounts, &fakeAuthInvitations{}, nil, nil, nil, service.AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "litrix-api",
	})
	return NewAuthHandler(svc, nil)
}

func TestLoginHandlerSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestAuthHandler(t, "correct horse")

	body, _ := json.Marshal(models.LoginRequest{Email: "dean@litrix.edu", Password: "correct horse"})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.Equal(t, models.RoleAcademicAdmin, envelope.Data.Identity.Role)
}

func TestLoginHandlerBadCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestAuthHandler(t, "correct horse")

	body, _ := json.Marshal(models.LoginRequest{Email: "dean@litrix.edu", Password: "wrong"})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginHandlerMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestAuthHandler(t, "correct horse")

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte("{")))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
