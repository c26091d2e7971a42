package lock

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*AdvisoryLock, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewEnvironmentLock(db, "prod"), mock
}

func getLockRows(v any) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"GET_LOCK"}).AddRow(v)
}

func releaseLockRows(v any) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"RELEASE_LOCK"}).AddRow(v)
}

func TestGenerateEnvironmentLockName(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		expected    string
	}{
		{"simple", "prod", "getversions:env:prod"},
		{"dashes and underscores", "eu-west_1", "getversions:env:eu-west_1"},
		{"unsafe characters", "prod env/1", "getversions:env:prod_env_1"},
		{"empty", "", "getversions:env:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GenerateEnvironmentLockName(tt.environment))
		})
	}
}

func TestGenerateEnvironmentLockName_Truncated(t *testing.T) {
	name := GenerateEnvironmentLockName(strings.Repeat("x", 100))
	assert.Len(t, name, maxLockNameLength)
	assert.True(t, strings.HasPrefix(name, "getversions:env:x"))
}

func TestAcquireAndRelease(t *testing.T) {
	l, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT GET_LOCK\(\?, \?\)`).
		WithArgs("getversions:env:prod", TimeoutShort).
		WillReturnRows(getLockRows(1))
	mock.ExpectQuery(`SELECT RELEASE_LOCK\(\?\)`).
		WithArgs("getversions:env:prod").
		WillReturnRows(releaseLockRows(1))

	acquired, err := l.AcquireLock(ctx, TimeoutShort)
	require.NoError(t, err)
	assert.True(t, acquired)
	assert.True(t, l.IsHeld())

	// Re-acquiring a held lock does not hit the database.
	acquired, err = l.AcquireLock(ctx, TimeoutShort)
	require.NoError(t, err)
	assert.True(t, acquired)

	released, err := l.ReleaseLock(ctx)
	require.NoError(t, err)
	assert.True(t, released)
	assert.False(t, l.IsHeld())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcquireLock_Timeout(t *testing.T) {
	l, mock := newMock(t)

	mock.ExpectQuery(`SELECT GET_LOCK`).WillReturnRows(getLockRows(0))

	acquired, err := l.AcquireLock(context.Background(), TimeoutImmediate)
	require.NoError(t, err)
	assert.False(t, acquired)
	assert.False(t, l.IsHeld())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcquireLock_NullResult(t *testing.T) {
	l, mock := newMock(t)

	mock.ExpectQuery(`SELECT GET_LOCK`).WillReturnRows(getLockRows(nil))

	_, err := l.AcquireLock(context.Background(), TimeoutShort)
	assert.Error(t, err)
	assert.False(t, l.IsHeld())
}

func TestAcquireLock_QueryError(t *testing.T) {
	l, mock := newMock(t)
	cause := errors.New("connection reset")

	mock.ExpectQuery(`SELECT GET_LOCK`).WillReturnError(cause)

	_, err := l.AcquireLock(context.Background(), TimeoutShort)
	assert.ErrorIs(t, err, cause)
}

func TestReleaseLock_NotHeld(t *testing.T) {
	l, mock := newMock(t)

	released, err := l.ReleaseLock(context.Background())
	require.NoError(t, err)
	assert.False(t, released)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcquireOrFail_HeldElsewhere(t *testing.T) {
	l, mock := newMock(t)

	mock.ExpectQuery(`SELECT GET_LOCK`).WillReturnRows(getLockRows(0))

	err := l.AcquireOrFail(context.Background(), TimeoutShort)
	assert.ErrorIs(t, err, ErrLockTimeout)
}

func TestWithEnvironmentLock_RunsAndReleases(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT GET_LOCK`).WillReturnRows(getLockRows(1))
	mock.ExpectQuery(`SELECT RELEASE_LOCK`).WillReturnRows(releaseLockRows(1))

	ran := false
	fnErr := errors.New("refresh failed")
	err = WithEnvironmentLock(context.Background(), db, "prod", func() error {
		ran = true
		return fnErr
	})

	assert.True(t, ran)
	assert.ErrorIs(t, err, fnErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithEnvironmentLock_Contended(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT GET_LOCK`).WillReturnRows(getLockRows(0))

	ran := false
	err = WithEnvironmentLock(context.Background(), db, "prod", func() error {
		ran = true
		return nil
	})

	assert.False(t, ran)
	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.NoError(t, mock.ExpectationsWereMet())
}
