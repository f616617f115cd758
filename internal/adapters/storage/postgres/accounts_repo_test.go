package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"patitas-a-casa/internal/domain/accounts"
	"patitas-a-casa/internal/platform/apperr"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identity() accounts.Identity {
	return accounts.Identity{ID: "id-1", Username: "ana", Email: "ana@example.com", PasswordHash: "hash", CreatedAt: fixedTime}
}

func TestAccountsRepo_CreateIndividualAccount(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountsRepo(db)

	ind := accounts.Individual{ID: "ind-1", IdentityID: "id-1", FirstName: "Ana", LastName: "López", Phone: "3312345678", RegisteredAt: fixedTime}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO identities")).
		WithArgs("id-1", "ana", "ana@example.com", "hash", fixedTime).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO individuals")).
		WithArgs("ind-1", "id-1", "Ana", "López", "3312345678", fixedTime).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateIndividualAccount(context.Background(), identity(), ind))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountsRepo_CreateIdentityMapsUniqueViolations(t *testing.T) {
	tests := []struct {
		constraint string
		want       error
	}{
		{"identities_username_key", accounts.ErrUsernameTaken},
		{"identities_email_key", accounts.ErrEmailTaken},
	}
	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			db, mock := newMock(t)
			repo := NewAccountsRepo(db)

			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO identities")).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tt.constraint})

			err := repo.CreateIdentity(context.Background(), identity())
			assert.ErrorIs(t, err, tt.want)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAccountsRepo_CreateShelterAccountRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountsRepo(db)

	sh := accounts.Shelter{ID: "sh-1", IdentityID: "id-1", Name: "Huellitas", MaxCapacity: 10, Active: true, RegisteredAt: fixedTime}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO identities")).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "identities_email_key"})
	mock.ExpectRollback()

	err := repo.CreateShelterAccount(context.Background(), identity(), sh)
	assert.ErrorIs(t, err, accounts.ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountsRepo_CreateShelterAccountUnknownService(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountsRepo(db)

	sh := accounts.Shelter{ID: "sh-1", IdentityID: "id-1", Name: "Huellitas", Services: []accounts.ShelterService{{ID: "svc-x"}}}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO identities")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO shelters")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO shelter_services")).
		WithArgs("sh-1", "svc-x").
		WillReturnError(&pgconn.PgError{Code: "23503"})
	mock.ExpectRollback()

	err := repo.CreateShelterAccount(context.Background(), identity(), sh)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountsRepo_GetProfile(t *testing.T) {
	cols := []string{"id", "first_name", "last_name", "phone", "registered_at", "id"}

	t.Run("individual", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewAccountsRepo(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM identities idn")).
			WithArgs("id-1").
			WillReturnRows(sqlmock.NewRows(cols).AddRow("ind-1", "Ana", "López", "3312345678", fixedTime, nil))

		p, err := repo.GetProfile(context.Background(), "id-1")
		require.NoError(t, err)
		assert.Equal(t, accounts.KindIndividual, p.Kind)
		assert.Equal(t, "ind-1", p.ProfileID())
		assert.Equal(t, "Ana López", p.Individual.DisplayName())
		assert.Nil(t, p.Shelter)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("none", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewAccountsRepo(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM identities idn")).
			WithArgs("id-1").
			WillReturnRows(sqlmock.NewRows(cols).AddRow(nil, nil, nil, nil, nil, nil))

		p, err := repo.GetProfile(context.Background(), "id-1")
		require.NoError(t, err)
		assert.Equal(t, accounts.KindNone, p.Kind)
		assert.Empty(t, p.ProfileID())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown identity", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewAccountsRepo(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM identities idn")).
			WithArgs("nope").
			WillReturnRows(sqlmock.NewRows(cols))

		_, err := repo.GetProfile(context.Background(), "nope")
		assert.True(t, errors.Is(err, apperr.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountsRepo_CreateIndividualRejectsSecondProfile(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountsRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM identities WHERE id = $1 FOR UPDATE")).
		WithArgs("id-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("id-1"))
	mock.ExpectQuery(regexp.QuoteMeta("EXISTS (SELECT 1 FROM individuals WHERE identity_id = $1)")).
		WithArgs("id-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	err := repo.CreateIndividual(context.Background(), accounts.Individual{ID: "ind-2", IdentityID: "id-1"})
	assert.ErrorIs(t, err, accounts.ErrProfileExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountsRepo_ListActiveShelters(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountsRepo(db)

	shelterCols := []string{
		"id", "identity_id", "name", "phone",
		"state", "municipality", "postal_code", "street", "exterior_number", "directions",
		"responsible_first_name", "responsible_last_name", "responsible_email",
		"current_capacity", "max_capacity",
		"facebook", "instagram", "twitter", "website",
		"image1", "image2", "image3", "image4",
		"registered_at", "active",
	}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM shelters WHERE active")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(regexp.QuoteMeta("FROM shelters WHERE active ORDER BY name ASC, id ASC LIMIT $1 OFFSET $2")).
		WithArgs(10, 10).
		WillReturnRows(sqlmock.NewRows(shelterCols).AddRow(
			"sh-1", "id-9", "Zoé", "3300000000",
			"Jalisco", "Zapopan", "45000", "Av. Patria", "100", "",
			"Luis", "Pérez", "luis@example.com",
			3, 10,
			"", "", "", "",
			"shelters/a.jpg", "", "", "",
			fixedTime, true,
		))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE ss.shelter_id IN ($1)")).
		WithArgs("sh-1").
		WillReturnRows(sqlmock.NewRows([]string{"shelter_id", "id", "name", "description"}).
			AddRow("sh-1", "svc-1", "Adopción", "").
			AddRow("sh-1", "svc-2", "Rescate", ""))

	items, total, err := repo.ListActiveShelters(context.Background(), 10, 10)
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Zoé", items[0].Name)
	assert.Equal(t, "shelters/a.jpg", items[0].Images[0])
	assert.Equal(t, []string{"svc-1", "svc-2"}, items[0].ServiceIDs())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountsRepo_DeleteIdentityNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountsRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM identities WHERE id = $1")).
		WithArgs("nope").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteIdentity(context.Background(), "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
