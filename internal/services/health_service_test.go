package services

import (
	"context"
	"errors"
	"testing"

	"triviaapi/internal/observability"
	contextutils "triviaapi/internal/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHealthService(t *testing.T) (*HealthService, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	cleanup := func() {
		mock.ExpectClose()
		require.NoError(t, db.Close())
		require.NoError(t, mock.ExpectationsWereMet())
	}

	return NewHealthServiceWithLogger(db, observability.NewNopLogger()), mock, cleanup
}

func TestHealthService_Lifecycle(t *testing.T) {
	service, mock, cleanup := newTestHealthService(t)
	defer cleanup()

	assert.False(t, service.IsReady())

	mock.ExpectPing()
	require.NoError(t, service.Startup(context.Background()))
	assert.True(t, service.IsReady())

	require.NoError(t, service.Shutdown(context.Background()))
	assert.False(t, service.IsReady())
}

func TestHealthService_StartupFailsWhenDatabaseDown(t *testing.T) {
	service, mock, cleanup := newTestHealthService(t)
	defer cleanup()

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	err := service.Startup(context.Background())
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeServiceUnavailable, contextutils.GetErrorCode(err))
	assert.False(t, service.IsReady())
}

func TestHealthService_Check(t *testing.T) {
	service, mock, cleanup := newTestHealthService(t)
	defer cleanup()

	mock.ExpectPing()
	assert.NoError(t, service.Check(context.Background()))
}
