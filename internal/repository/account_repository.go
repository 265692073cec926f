package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/litrix/litrix-api/internal/models"
)

// accountColumns selects the normalized account projection. Normalization
// happens here, once, at the data-access boundary: the canonical scholar id
// is whichever of the current or legacy column is populated, and
// college/department are never NULL in the returned record.
const accountColumns = `id, email, password_hash, display_name,
	COALESCE(college, '') AS college,
	COALESCE(department, '') AS department,
	COALESCE(NULLIF(scholar_id, ''), NULLIF(scholar_id_legacy, ''), '') AS scholar_id,
	active, last_login, created_at, updated_at`

// AccountRepository provides access to the four role partition tables.
type AccountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository creates a new instance of AccountRepository.
func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// FindInPartition looks up an account id in a single role partition.
// Returns sql.ErrNoRows when the partition does not contain the id.
func (r *AccountRepository) FindInPartition(ctx context.Context, role models.Role, id string) (*models.Account, error) {
	table := models.PartitionTable(role)
	if table == "" {
		return nil, fmt.Errorf("unknown role partition %q", role)
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 LIMIT 1`, accountColumns, table)
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find account in %s: %w", table, err)
	}
	account.Role = role
	return &account, nil
}

// FindByEmail probes partitions in priority order and returns the first
// match tagged with its role.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	for _, role := range models.RolePriority {
		table := models.PartitionTable(role)
		query := fmt.Sprintf(`SELECT %s FROM %s WHERE email = $1 LIMIT 1`, accountColumns, table)
		var account models.Account
		err := r.db.GetContext(ctx, &account, query, email)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("find account by email in %s: %w", table, err)
		}
		account.Role = role
		return &account, nil
	}
	return nil, sql.ErrNoRows
}

// Create inserts an account into the partition matching its role.
func (r *AccountRepository) Create(ctx context.Context, role models.Role, account *models.Account) error {
	table := models.PartitionTable(role)
	if table == "" {
		return fmt.Errorf("unknown role partition %q", role)
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now
	account.Role = role

	query := fmt.Sprintf(`INSERT INTO %s (id, email, password_hash, display_name, college, department, scholar_id, active, created_at, updated_at)
		VALUES (:id, :email, :password_hash, :display_name, :college, :department, :scholar_id, :active, :created_at, :updated_at)`, table)
	if _, err := r.db.NamedExecContext(ctx, query, account); err != nil {
		return fmt.Errorf("create account in %s: %w", table, err)
	}
	return nil
}

// MoveRole relocates an account between partitions in one transaction so a
// concurrent resolver never observes the account in both or neither.
func (r *AccountRepository) MoveRole(ctx context.Context, id string, from, to models.Role) error {
	fromTable := models.PartitionTable(from)
	toTable := models.PartitionTable(to)
	if fromTable == "" || toTable == "" {
		return fmt.Errorf("unknown role partition in move %q -> %q", from, to)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin role move: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	selectQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 LIMIT 1`, accountColumns, fromTable)
	var account models.Account
	if err := tx.GetContext(ctx, &account, selectQuery, id); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("load account for role move: %w", err)
	}

	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, fromTable)
	if _, err := tx.ExecContext(ctx, deleteQuery, id); err != nil {
		return fmt.Errorf("remove account from %s: %w", fromTable, err)
	}

	account.UpdatedAt = time.Now().UTC()
	insertQuery := fmt.Sprintf(`INSERT INTO %s (id, email, password_hash, display_name, college, department, scholar_id, active, created_at, updated_at)
		VALUES (:id, :email, :password_hash, :display_name, :college, :department, :scholar_id, :active, :created_at, :updated_at)`, toTable)
	if _, err := tx.NamedExecContext(ctx, insertQuery, account); err != nil {
		return fmt.Errorf("insert account into %s: %w", toTable, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit role move: %w", err)
	}
	return nil
}

// Deactivate soft-deletes an account within its partition. The domain
// never hard-deletes accounts.
func (r *AccountRepository) Deactivate(ctx context.Context, role models.Role, id string) error {
	table := models.PartitionTable(role)
	if table == "" {
		return fmt.Errorf("unknown role partition %q", role)
	}
	query := fmt.Sprintf(`UPDATE %s SET active = FALSE, updated_at = $2 WHERE id = $1`, table)
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate account in %s: %w", table, err)
	}
	return nil
}

// UpdateLastLogin stamps the last successful sign-in.
func (r *AccountRepository) UpdateLastLogin(ctx context.Context, role models.Role, id string, ts time.Time) error {
	table := models.PartitionTable(role)
	if table == "" {
		return fmt.Errorf("unknown role partition %q", role)
	}
	query := fmt.Sprintf(`UPDATE %s SET last_login = $2, updated_at = $2 WHERE id = $1`, table)
	if _, err := r.db.ExecContext(ctx, query, id, ts); err != nil {
		return fmt.Errorf("update last login in %s: %w", table, err)
	}
	return nil
}

// List returns accounts across partitions with role tags and a total count.
func (r *AccountRepository) List(ctx context.Context, filter models.AccountFilter) ([]models.Account, int, error) {
	roles := models.RolePriority
	if filter.Role != nil {
		roles = []models.Role{*filter.Role}
	}

	var selects []string
	var args []interface{}
	for _, role := range roles {
		table := models.PartitionTable(role)
		clause := fmt.Sprintf(`SELECT %s, '%s' AS role_tag FROM %s WHERE 1=1`, accountColumns, role, table)
		if filter.Department != "" {
			args = append(args, filter.Department)
			clause += fmt.Sprintf(" AND department = $%d", len(args))
		}
		if filter.Search != "" {
			args = append(args, "%"+strings.ToLower(filter.Search)+"%")
			clause += fmt.Sprintf(" AND (LOWER(email) LIKE $%d OR LOWER(display_name) LIKE $%d)", len(args), len(args))
		}
		selects = append(selects, clause)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	union := strings.Join(selects, " UNION ALL ")
	listQuery := fmt.Sprintf("SELECT * FROM (%s) accounts ORDER BY created_at DESC LIMIT %d OFFSET %d", union, pageSize, offset)

	type row struct {
		models.Account
		RoleTag models.Role `db:"role_tag"`
	}
	var rows []row
	if err := r.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}

	accounts := make([]models.Account, 0, len(rows))
	for _, rrow := range rows {
		account := rrow.Account
		account.Role = rrow.RoleTag
		accounts = append(accounts, account)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM (%s) accounts", union)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	return accounts, total, nil
}

// CreateRefreshToken persists a refresh token entry.
func (r *AccountRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO refresh_tokens (id, account_id, token, expires_at, created_at, revoked, revoked_at)
		VALUES (:id, :account_id, :token, :expires_at, :created_at, :revoked, :revoked_at)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken returns a refresh token by token string.
func (r *AccountRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const query = `SELECT id, account_id, token, expires_at, created_at, revoked, revoked_at FROM refresh_tokens WHERE token = $1 LIMIT 1`
	var rt models.RefreshToken
	if err := r.db.GetContext(ctx, &rt, query, token); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &rt, nil
}

// RevokeRefreshToken marks a token as revoked.
func (r *AccountRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, revokedAt); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAccountRefreshTokens revokes all refresh tokens for an account.
func (r *AccountRepository) RevokeAccountRefreshTokens(ctx context.Context, accountID string) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE account_id = $1 AND revoked = FALSE`
	if _, err := r.db.ExecContext(ctx, query, accountID, time.Now().UTC()); err != nil {
		return fmt.Errorf("revoke account refresh tokens: %w", err)
	}
	return nil
}
