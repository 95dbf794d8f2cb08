package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"recycle-backend/internal/apperror"
	"recycle-backend/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "balance", "created_at"}).AddRow(int64(3), int64(0), now))

	user := &models.User{Email: "a@b.c", HashedPassword: "hash", Bio: models.DefaultBio, IsActive: true, Options: models.DefaultUserOptions()}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, int64(3), user.ID)
	assert.Equal(t, now, user.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := repo.Create(context.Background(), &models.User{Email: "a@b.c"})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestUserRepository_UpdateOptionsMissingUser(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users`)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateOptions(context.Background(), 9, models.DefaultUserOptions())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_DailyTotals(t *testing.T) {
	mock := newMock(t)
	repo := NewReportRepository(mock)
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM rewards`)).
		WithArgs(int64(1), from, to).
		WillReturnRows(pgxmock.NewRows([]string{"day", "sum"}).AddRow("2024-03-02", int64(25)))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM expenses`)).
		WithArgs(int64(1), from, to).
		WillReturnRows(pgxmock.NewRows([]string{"day", "sum"}).
			AddRow("2024-03-02", int64(5)).
			AddRow("2024-03-04", int64(8)))

	rewards, expenses, err := repo.DailyTotals(context.Background(), 1, from, to)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"2024-03-02": 25}, rewards)
	assert.Equal(t, map[string]int64{"2024-03-02": 5, "2024-03-04": 8}, expenses)
	assert.NoError(t, mock.ExpectationsWereMet())
}
