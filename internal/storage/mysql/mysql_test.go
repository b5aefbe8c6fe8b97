package mysql

import (
	"context"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	driver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Snoopiam/sales-offer-sub000/internal/storage"
)

func newMock(t *testing.T, maxBytes int64) (*Storage, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewWithDB(db, maxBytes), mock
}

func TestGet_ReturnsStoredDocument(t *testing.T) {
	s, mock := newMock(t, 0)

	mock.ExpectQuery("SELECT doc FROM offer_state").
		WithArgs("sales_offer_state").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow(`{"version":1}`))

	doc, err := s.Get(context.Background(), "sales_offer_state")

	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, doc)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_MissingRowMapsToNotFound(t *testing.T) {
	s, mock := newMock(t, 0)

	mock.ExpectQuery("SELECT doc FROM offer_state").
		WithArgs("absent").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}))

	_, err := s.Get(context.Background(), "absent")

	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSet_Upserts(t *testing.T) {
	s, mock := newMock(t, 0)

	mock.ExpectExec("INSERT INTO offer_state").
		WithArgs("sales_offer_state", `{"version":1}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Set(context.Background(), "sales_offer_state", `{"version":1}`)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSet_ServerCapacityErrorMapsToQuota(t *testing.T) {
	s, mock := newMock(t, 0)

	mock.ExpectExec("INSERT INTO offer_state").
		WillReturnError(&driver.MySQLError{Number: 1153, Message: "Got a packet bigger than 'max_allowed_packet' bytes"})

	err := s.Set(context.Background(), "k", "v")

	assert.ErrorIs(t, err, storage.ErrQuotaExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSet_LocalLimitShortCircuits(t *testing.T) {
	// No Exec expectation: the oversized document must be rejected before it
	// reaches the server.
	s, mock := newMock(t, 8)

	err := s.Set(context.Background(), "k", strings.Repeat("x", 9))

	assert.ErrorIs(t, err, storage.ErrQuotaExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsCapacityErr(t *testing.T) {
	assert.True(t, isCapacityErr(&driver.MySQLError{Number: 1114}))
	assert.True(t, isCapacityErr(&driver.MySQLError{Number: 1406}))
	assert.False(t, isCapacityErr(&driver.MySQLError{Number: 1062}))
	assert.False(t, isCapacityErr(assert.AnError))
}
