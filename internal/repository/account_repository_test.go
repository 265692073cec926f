package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litrix/litrix-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func accountRows(id, email, scholarID string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "email", "password_hash", "display_name", "college", "department", "scholar_id", "active", "last_login", "created_at", "updated_at"}).
		AddRow(id, email, "hash", "Dr. Example", "engineering", "computer-science", scholarID, true, now, now, now)
}

func TestFindInPartition(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM admins WHERE id = \$1 LIMIT 1`).
		WithArgs("acc-1").
		WillReturnRows(accountRows("acc-1", "admin@litrix.edu", "sch-1"))

	account, err := repo.FindInPartition(context.Background(), models.RoleAdmin, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, account.Role)
	assert.Equal(t, "sch-1", account.ScholarID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindInPartitionNoRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM researchers WHERE id = \$1 LIMIT 1`).
		WithArgs("acc-404").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindInPartition(context.Background(), models.RoleResearcher, "acc-404")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByEmailProbesInPriorityOrder(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM admins WHERE email = \$1 LIMIT 1`).
		WithArgs("prof@litrix.edu").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`SELECT (.+) FROM academic_admins WHERE email = \$1 LIMIT 1`).
		WithArgs("prof@litrix.edu").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`SELECT (.+) FROM department_admins WHERE email = \$1 LIMIT 1`).
		WithArgs("prof@litrix.edu").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`SELECT (.+) FROM researchers WHERE email = \$1 LIMIT 1`).
		WithArgs("prof@litrix.edu").
		WillReturnRows(accountRows("acc-2", "prof@litrix.edu", "sch-2"))

	account, err := repo.FindByEmail(context.Background(), "prof@litrix.edu")
	require.NoError(t, err)
	assert.Equal(t, models.RoleResearcher, account.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoveRole(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM researchers WHERE id = \$1 LIMIT 1`).
		WithArgs("acc-3").
		WillReturnRows(accountRows("acc-3", "head@litrix.edu", "sch-3"))
	mock.ExpectExec(`DELETE FROM researchers WHERE id = \$1`).
		WithArgs("acc-3").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO department_admins").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.MoveRole(context.Background(), "acc-3", models.RoleResearcher, models.RoleDepartmentAdmin)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRefreshToken(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectExec("INSERT INTO refresh_tokens").WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.CreateRefreshToken(context.Background(), &models.RefreshToken{ID: "1", AccountID: "acc-1", Token: "token", ExpiresAt: time.Now(), CreatedAt: time.Now()})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
