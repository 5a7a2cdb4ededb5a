package adapters

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"acquisitions/internal/feature/users/domain"
	"acquisitions/internal/feature/users/domain/entity"
)

// newPostgresMock opens GORM with the Postgres dialect on top of sqlmock,
// without TranslateError, so raw pgconn errors reach the repository.
func newPostgresMock(t *testing.T) (*userPostgres, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err, "failed to create sqlmock")
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err, "failed to open gorm on sqlmock")

	return NewUserPostgres(db), mock
}

func TestUserPostgres_Create_PostgresUniqueViolation(t *testing.T) {
	repo, mock := newPostgresMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "idx_users_email"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &entity.User{Name: "A", Email: "a@example.com", Password: "x"})

	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_Create_PostgresCheckViolation(t *testing.T) {
	repo, mock := newPostgresMock(t)

	pgErr := &pgconn.PgError{Code: pgerrcode.CheckViolation, ConstraintName: "chk_users_role"}
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).WillReturnError(pgErr)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &entity.User{Name: "A", Email: "a@example.com", Password: "x", Role: "root"})

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrEmailAlreadyExists)
	var got *pgconn.PgError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, pgerrcode.CheckViolation, got.Code)
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"gorm duplicated key", gorm.ErrDuplicatedKey, true},
		{"wrapped gorm duplicated key", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"postgres unique violation", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, true},
		{"postgres check violation", &pgconn.PgError{Code: pgerrcode.CheckViolation}, false},
		{"record not found", gorm.ErrRecordNotFound, false},
		{"other error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), domain.ErrUserNotFound)
	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey), domain.ErrEmailAlreadyExists)

	other := errors.New("boom")
	assert.Equal(t, other, translate(other))
}
