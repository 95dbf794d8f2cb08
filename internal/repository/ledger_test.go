package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"recycle-backend/internal/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func expectLockUser(mock pgxmock.PgxPoolIface, userID int64) {
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM users WHERE id = $1 FOR UPDATE`)).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(userID))
}

func expectAdjust(mock pgxmock.PgxPoolIface, userID, delta, balance int64) {
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET balance = balance + $2 WHERE id = $1 RETURNING balance`)).
		WithArgs(userID, delta).
		WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow(balance))
}

func TestLedgerRepository_CreateReward(t *testing.T) {
	mock := newMock(t)
	repo := NewLedgerRepository(mock)
	now := time.Now().UTC()

	mock.ExpectBegin()
	expectLockUser(mock, 1)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT name FROM waste_types WHERE id = $1`)).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"name"}).AddRow("glass"))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO rewards`)).
		WithArgs(int64(1), int64(3), int64(15)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(9), now))
	expectAdjust(mock, 1, 15, 115)
	mock.ExpectCommit()

	reward, balance, err := repo.CreateReward(context.Background(), 1, 3, 15)
	require.NoError(t, err)
	assert.Equal(t, int64(115), balance)
	assert.Equal(t, int64(9), reward.ID)
	assert.Equal(t, "glass", reward.WasteType)
	assert.Equal(t, now, reward.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_CreateRewardNotFound(t *testing.T) {
	tests := []struct {
		name  string
		setup func(mock pgxmock.PgxPoolIface)
		want  string
	}{
		{
			name: "missing user",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM users WHERE id = $1 FOR UPDATE`)).
					WithArgs(int64(1)).
					WillReturnError(pgx.ErrNoRows)
			},
			want: "user 1",
		},
		{
			name: "missing waste type",
			setup: func(mock pgxmock.PgxPoolIface) {
				expectLockUser(mock, 1)
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT name FROM waste_types WHERE id = $1`)).
					WithArgs(int64(3)).
					WillReturnError(pgx.ErrNoRows)
			},
			want: "waste type 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			repo := NewLedgerRepository(mock)

			mock.ExpectBegin()
			tt.setup(mock)
			mock.ExpectRollback()

			_, _, err := repo.CreateReward(context.Background(), 1, 3, 15)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperror.ErrNotFound)
			assert.Contains(t, err.Error(), tt.want)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLedgerRepository_CreateExpenseAllowsNegativeBalance(t *testing.T) {
	mock := newMock(t)
	repo := NewLedgerRepository(mock)

	mock.ExpectBegin()
	expectLockUser(mock, 1)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO expenses`)).
		WithArgs(int64(1), "coffee", int64(15)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(4), time.Now()))
	expectAdjust(mock, 1, -15, -5)
	mock.ExpectCommit()

	expense, balance, err := repo.CreateExpense(context.Background(), 1, "coffee", 15)
	require.NoError(t, err)
	assert.Equal(t, int64(-5), balance)
	assert.Equal(t, int64(4), expense.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_UpdateExpenseAppliesDelta(t *testing.T) {
	mock := newMock(t)
	repo := NewLedgerRepository(mock)
	created := time.Now().UTC()

	mock.ExpectBegin()
	expectLockUser(mock, 1)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM expenses`)).
		WithArgs(int64(4), int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "description", "points", "created_at"}).
			AddRow(int64(4), int64(1), "coffee", int64(10), created))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE expenses SET description = $2, points = $3 WHERE id = $1`)).
		WithArgs(int64(4), "coffee", int64(4)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	expectAdjust(mock, 1, 6, 26)
	mock.ExpectCommit()

	points := int64(4)
	expense, balance, err := repo.UpdateExpense(context.Background(), 1, 4, nil, &points)
	require.NoError(t, err)
	assert.Equal(t, int64(26), balance)
	assert.Equal(t, int64(4), expense.Points)
	assert.Equal(t, "coffee", expense.Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_DeleteExpenseRestoresPoints(t *testing.T) {
	mock := newMock(t)
	repo := NewLedgerRepository(mock)

	mock.ExpectBegin()
	expectLockUser(mock, 1)
	mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM expenses WHERE id = $1 AND user_id = $2 RETURNING points`)).
		WithArgs(int64(4), int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"points"}).AddRow(int64(10)))
	expectAdjust(mock, 1, 10, 30)
	mock.ExpectCommit()

	balance, err := repo.DeleteExpense(context.Background(), 1, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(30), balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_DeleteExpenseNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewLedgerRepository(mock)

	mock.ExpectBegin()
	expectLockUser(mock, 1)
	mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM expenses`)).
		WithArgs(int64(4), int64(1)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.DeleteExpense(context.Background(), 1, 4)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_SumLedger(t *testing.T) {
	mock := newMock(t)
	repo := NewLedgerRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT`)).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(int64(42)))

	sum, err := repo.SumLedger(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(42), sum)
	assert.NoError(t, mock.ExpectationsWereMet())
}
