// internal/artifacts/store_test.go
package artifacts

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"connectorgen/internal/common/logger"
)

func TestStore_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO generated_artifacts").
		WithArgs(sqlmock.AnyArg(), "s1", "User", "search", "REST", "code text", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewStore(db, logger.NewTestLogger(t))
	store.Save(context.Background(), Record{
		SessionID:   "s1",
		ObjectClass: "User",
		Operation:   "search",
		Protocol:    "REST",
		Code:        "code text",
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveFailureIsBestEffort(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO generated_artifacts").
		WillReturnError(errors.New("connection refused"))

	store := NewStore(db, logger.NewTestLogger(t))
	store.Save(context.Background(), Record{SessionID: "s1"})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_NilDB(t *testing.T) {
	store := NewStore(nil, logger.NewTestLogger(t))
	store.Save(context.Background(), Record{SessionID: "s1"})
}
