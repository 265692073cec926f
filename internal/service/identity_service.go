package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/litrix/litrix-api/internal/models"
	"github.com/litrix/litrix-api/pkg/docpath"
	appErrors "github.com/litrix/litrix-api/pkg/errors"
)

type identityAccountRepository interface {
	FindInPartition(ctx context.Context, role models.Role, id string) (*models.Account, error)
}

// IdentityService resolves which role partition an account lives in. Role
// is never stored on the account record, so every session bootstrap asks
// all four partitions and picks the highest-priority hit.
type IdentityService struct {
	repo       identityAccountRepository
	cache      *CacheService
	sessionTTL time.Duration
	logger     *zap.Logger
}

// NewIdentityService constructs the identity resolver.
func NewIdentityService(repo identityAccountRepository, cache *CacheService, sessionTTL time.Duration, logger *zap.Logger) *IdentityService {
	if sessionTTL <= 0 {
		sessionTTL = 12 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{repo: repo, cache: cache, sessionTTL: sessionTTL, logger: logger}
}

type partitionProbe struct {
	role    models.Role
	account *models.Account
	err     error
}

// Resolve returns the identity for the account ID, probing all four
// partitions concurrently. When an account appears in more than one
// partition the highest-priority role wins. A lookup failure in a
// partition at or above the best hit fails the whole resolution rather
// than silently demoting the account.
func (s *IdentityService) Resolve(ctx context.Context, accountID string) (*models.Identity, error) {
	if accountID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "account id is required")
	}

	if identity, ok := s.cachedIdentity(ctx, accountID); ok {
		return identity, nil
	}

	probes := make([]partitionProbe, len(models.RolePriority))
	var wg sync.WaitGroup
	for i, role := range models.RolePriority {
		wg.Add(1)
		go func(i int, role models.Role) {
			defer wg.Done()
			account, err := s.repo.FindInPartition(ctx, role, accountID)
			probes[i] = partitionProbe{role: role, account: account, err: err}
		}(i, role)
	}
	wg.Wait()

	// Walk in priority order. The first hit wins, but only if every
	// higher-priority probe answered definitively.
	for _, probe := range probes {
		if probe.err != nil {
			if errors.Is(probe.err, sql.ErrNoRows) {
				continue
			}
			s.logger.Error("partition probe failed",
				zap.String("account_id", accountID),
				zap.String("role", string(probe.role)),
				zap.Error(probe.err))
			return nil, appErrors.Wrap(probe.err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve role")
		}
		if probe.account == nil {
			continue
		}
		if !probe.account.Active {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "account is deactivated")
		}
		identity := &models.Identity{
			AccountID:   probe.account.ID,
			Role:        probe.role,
			Email:       probe.account.Email,
			DisplayName: probe.account.DisplayName,
			College:     probe.account.College,
			Department:  probe.account.Department,
			ScholarID:   probe.account.ScholarID,
		}
		s.storeIdentity(ctx, identity)
		return identity, nil
	}

	return nil, appErrors.ErrNoRole
}

// Invalidate drops the cached session identity. Called on logout, role
// changes and deactivation so the next request re-resolves.
func (s *IdentityService) Invalidate(ctx context.Context, accountID string) error {
	key, err := identityKey(accountID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid account id")
	}
	return s.cache.Invalidate(ctx, key)
}

func (s *IdentityService) cachedIdentity(ctx context.Context, accountID string) (*models.Identity, bool) {
	key, err := identityKey(accountID)
	if err != nil {
		return nil, false
	}
	var identity models.Identity
	hit, err := s.cache.Get(ctx, key, &identity)
	if err != nil || !hit {
		return nil, false
	}
	return &identity, true
}

func (s *IdentityService) storeIdentity(ctx context.Context, identity *models.Identity) {
	key, err := identityKey(identity.AccountID)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, identity, s.sessionTTL); err != nil {
		s.logger.Warn("identity cache store failed", zap.String("account_id", identity.AccountID), zap.Error(err))
	}
}

func identityKey(accountID string) (string, error) {
	return docpath.New("identity").Child("accounts").Child(accountID).String()
}
