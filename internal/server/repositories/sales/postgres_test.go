package sales

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/ventas/internal/server/models"
)

const (
	insertQ = `(?s)^INSERT\s+INTO\s+ventas\s*\(nombre_vendedor,\s*numero_serie,\s*foto_local,\s*foto_url,\s*fecha\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+id\s*$`
	listQ   = `(?s)^SELECT\s+id,\s*nombre_vendedor,\s*numero_serie,\s*foto_local,\s*foto_url,\s*fecha\s+FROM\s+ventas\s+ORDER\s+BY\s+fecha\s+DESC,\s*id\s+DESC\s*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(insertQ).
		WithArgs("ana", "SN-1", "k.jpg", "http://s3/ventas-fotos/k.jpg", at).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	got, err := repo.Create(context.Background(), &models.Sale{
		SalespersonID: "ana", SerialCode: "SN-1", PhotoKey: "k.jpg",
		PhotoURL: "http://s3/ventas-fotos/k.jpg", SubmittedAt: at,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 7 {
		t.Fatalf("unexpected sale: %+v", got)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Sale{})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	newer := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	older := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "nombre_vendedor", "numero_serie", "foto_local", "foto_url", "fecha"}).
		AddRow(int64(2), "ana", "SN-2", "b.png", "u2", newer).
		AddRow(int64(1), "luis", "SN-1", "a.jpg", "u1", older)
	mock.ExpectQuery(listQ).WillReturnRows(rows)

	got, err := repo.ListNewestFirst(context.Background())
	if err != nil {
		t.Fatalf("ListNewestFirst error: %v", err)
	}
	if len(got) != 2 || got[0].ID != 2 || got[1].SalespersonID != "luis" {
		t.Fatalf("unexpected sales: %+v", got)
	}
}

func TestListNewestFirst_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(listQ).WillReturnRows(sqlmock.NewRows([]string{"id", "nombre_vendedor", "numero_serie", "foto_local", "foto_url", "fecha"}))

	got, err := repo.ListNewestFirst(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestListNewestFirst_Errors(t *testing.T) {
	t.Run("query", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(listQ).WillReturnError(errors.New("boom"))
		if _, err := repo.ListNewestFirst(context.Background()); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("scan", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		rows := sqlmock.NewRows([]string{"id", "nombre_vendedor", "numero_serie", "foto_local", "foto_url", "fecha"}).
			AddRow("not-a-number", "ana", "SN", "k", "u", time.Now())
		mock.ExpectQuery(listQ).WillReturnRows(rows)
		if _, err := repo.ListNewestFirst(context.Background()); err == nil {
			t.Fatal("expected scan error")
		}
	})

	t.Run("rows", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		rows := sqlmock.NewRows([]string{"id", "nombre_vendedor", "numero_serie", "foto_local", "foto_url", "fecha"}).
			AddRow(int64(1), "ana", "SN", "k", "u", time.Now()).
			RowError(0, errors.New("row broke"))
		mock.ExpectQuery(listQ).WillReturnRows(rows)
		if _, err := repo.ListNewestFirst(context.Background()); err == nil {
			t.Fatal("expected rows error")
		}
	})
}
