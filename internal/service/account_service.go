package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/litrix/litrix-api/internal/models"
	appErrors "github.com/litrix/litrix-api/pkg/errors"
)

type accountRepository interface {
	FindInPartition(ctx context.Context, role models.Role, id string) (*models.Account, error)
	Create(ctx context.Context, role models.Role, account *models.Account) error
	MoveRole(ctx context.Context, id string, from, to models.Role) error
	Deactivate(ctx context.Context, role models.Role, id string) error
	List(ctx context.Context, filter models.AccountFilter) ([]models.Account, int, error)
	RevokeAccountRefreshTokens(ctx context.Context, accountID string) error
}

// CreateAccountRequest provisions an account directly, bypassing the
// invitation flow. Reserved for admins seeding the system.
type CreateAccountRequest struct {
	Email       string      `json:"email" validate:"required,email"`
	Password    string      `json:"password" validate:"required,min=8"`
	DisplayName string      `json:"display_name" validate:"required"`
	Role        models.Role `json:"role" validate:"required,oneof=ADMIN ACADEMIC_ADMIN DEPARTMENT_ADMIN RESEARCHER"`
	College     string      `json:"college"`
	Department  string      `json:"department"`
	ScholarID   string      `json:"scholar_id"`
}

// ChangeRoleRequest moves an account to another partition.
type ChangeRoleRequest struct {
	Role models.Role `json:"role" validate:"required,oneof=ADMIN ACADEMIC_ADMIN DEPARTMENT_ADMIN RESEARCHER"`
}

// AccountService administers accounts across the role partitions.
type AccountService struct {
	repo      accountRepository
	identity  *IdentityService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAccountService constructs the account service.
func NewAccountService(repo accountRepository, identity *IdentityService, validate *validator.Validate, logger *zap.Logger) *AccountService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{repo: repo, identity: identity, validator: validate, logger: logger}
}

// List returns accounts and pagination metadata.
func (s *AccountService) List(ctx context.Context, filter models.AccountFilter) ([]models.Account, *models.Pagination, error) {
	accounts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list accounts")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return accounts, pagination, nil
}

// Get loads one account by ID through the resolver, so the returned
// record carries its role.
func (s *AccountService) Get(ctx context.Context, id string) (*models.Account, error) {
	identity, err := s.identity.Resolve(ctx, id)
	if err != nil {
		if errors.Is(err, appErrors.ErrNoRole) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return nil, err
	}
	account, err := s.repo.FindInPartition(ctx, identity.Role, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}
	return account, nil
}

// Create provisions an account in the partition matching its role.
func (s *AccountService) Create(ctx context.Context, req CreateAccountRequest) (*models.Account, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid account payload")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	now := time.Now().UTC()
	account := &models.Account{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
		College:      req.College,
		Department:   req.Department,
		ScholarID:    req.ScholarID,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
		Role:         req.Role,
	}

	if err := s.repo.Create(ctx, req.Role, account); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create account")
	}
	return account, nil
}

// ChangeRole moves the account between partitions and drops its cached
// identity so the next request resolves the new role.
func (s *AccountService) ChangeRole(ctx context.Context, id string, req ChangeRoleRequest) (*models.Account, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid role payload")
	}

	identity, err := s.identity.Resolve(ctx, id)
	if err != nil {
		if errors.Is(err, appErrors.ErrNoRole) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return nil, err
	}

	if identity.Role == req.Role {
		return nil, appErrors.Clone(appErrors.ErrConflict, "account already holds that role")
	}

	if err := s.repo.MoveRole(ctx, id, identity.Role, req.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to change role")
	}

	if err := s.identity.Invalidate(ctx, id); err != nil {
		s.logger.Warn("failed to drop cached identity after role change", zap.String("account_id", id), zap.Error(err))
	}

	account, err := s.repo.FindInPartition(ctx, req.Role, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account after role change")
	}
	return account, nil
}

// Deactivate soft-deletes the account, revokes its sessions and drops
// the cached identity.
func (s *AccountService) Deactivate(ctx context.Context, id string) error {
	identity, err := s.identity.Resolve(ctx, id)
	if err != nil {
		if errors.Is(err, appErrors.ErrNoRole) {
			return appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return err
	}

	if err := s.repo.Deactivate(ctx, identity.Role, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate account")
	}

	if err := s.repo.RevokeAccountRefreshTokens(ctx, id); err != nil {
		s.logger.Warn("failed to revoke refresh tokens on deactivation", zap.String("account_id", id), zap.Error(err))
	}
	if err := s.identity.Invalidate(ctx, id); err != nil {
		s.logger.Warn("failed to drop cached identity on deactivation", zap.String("account_id", id), zap.Error(err))
	}
	return nil
}
