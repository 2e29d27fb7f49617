package sqlite

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/fieldcodec/internal/domain"
	"github.com/listenupapp/fieldcodec/internal/store"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db, nil), mock
}

var maxIDQuery = regexp.QuoteMeta(`SELECT MAX(id) FROM contacts`)

func TestHighestContactID_Mock(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectQuery(maxIDQuery).WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))
	_, err := s.HighestContactID(ctx)
	assert.True(t, errors.Is(err, store.ErrNoContacts))

	mock.ExpectQuery(maxIDQuery).WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(int64(42)))
	id, err := s.HighestContactID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	boom := errors.New("database is locked")
	mock.ExpectQuery(maxIDQuery).WillReturnError(boom)
	_, err = s.HighestContactID(ctx)
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateContact_DefaultReadInsideTx(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(maxIDQuery).WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(int64(42)))
	mock.ExpectExec(`INSERT INTO contacts`).
		WithArgs("42", sqlmock.AnyArg(), "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(43, 1))
	mock.ExpectCommit()

	c := &domain.Contact{}
	require.NoError(t, s.CreateContact(context.Background(), c))
	assert.Equal(t, int64(43), c.ID)
	assert.Equal(t, "42", c.Slug.String())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateContact_RollsBack(t *testing.T) {
	tests := []struct {
		name    string
		execErr error
		want    error
	}{
		{"unique violation", errors.New("constraint failed: UNIQUE constraint failed: contacts.slug (2067)"), store.ErrAlreadyExists},
		{"io error", errors.New("disk I/O error"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t)

			mock.ExpectBegin()
			mock.ExpectExec(`INSERT INTO contacts`).WillReturnError(tt.execErr)
			mock.ExpectRollback()

			err := s.CreateContact(context.Background(), &domain.Contact{Slug: "ada"})
			require.Error(t, err)
			if tt.want != nil {
				assert.True(t, errors.Is(err, tt.want))
			} else {
				assert.ErrorIs(t, err, tt.execErr)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
