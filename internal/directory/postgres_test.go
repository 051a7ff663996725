package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func principalRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "password_hash", "role", "name", "email", "store_id",
		"qr_code", "id_number", "association_name", "address", "phone", "balance",
	})
}

func TestPostgresFindByUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("from principals where username").
		WithArgs("store1").
		WillReturnRows(principalRows().AddRow(
			"2", "store1", "hash", "store", "ABC Diner", "", "STORE_001",
			"STORE_QR_001", "", "", "addr", "02-2345-6789", 0))

	p, err := NewPostgres(db).FindByUsername(context.Background(), "  Store1 ")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if p.Role != RoleStore || p.QRCode != "STORE_QR_001" {
		t.Fatalf("unexpected principal: %+v", p)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresFindByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("from principals where id").
		WithArgs("404").
		WillReturnRows(principalRows())

	if _, err := NewPostgres(db).FindByID(context.Background(), "404"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresSeed(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	seed := Seed()
	mock.ExpectBegin()
	for range seed {
		mock.ExpectExec("insert into principals").
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	if err := NewPostgres(db).Seed(context.Background(), seed); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
