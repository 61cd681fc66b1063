package reference

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestLookups(t *testing.T) {
	tests := []struct {
		name  string
		query string
		arg   string
		call  func(r *PostgresRepository, ctx context.Context, arg string) (bool, error)
	}{
		{
			name:  "blocked",
			query: `(?s)^SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+vendedores_bloqueados\s+WHERE\s+nombre_vendedor\s*=\s*\$1\)$`,
			arg:   "ana",
			call:  (*PostgresRepository).IsBlocked,
		},
		{
			name:  "registered",
			query: `(?s)^SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+vendedores_registrados\s+WHERE\s+nombre\s*=\s*\$1\)$`,
			arg:   "ana",
			call:  (*PostgresRepository).IsRegistered,
		},
		{
			name:  "serial",
			query: `(?s)^SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+series_validas\s+WHERE\s+codigo_serie\s*=\s*\$1\)$`,
			arg:   "SN-001",
			call:  (*PostgresRepository).IsValidSerial,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name+" found", func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			mock.ExpectQuery(tt.query).WithArgs(tt.arg).
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

			got, err := tt.call(repo, context.Background(), tt.arg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got {
				t.Fatal("expected true")
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})

		t.Run(tt.name+" absent", func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			mock.ExpectQuery(tt.query).WithArgs(tt.arg).
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

			got, err := tt.call(repo, context.Background(), tt.arg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got {
				t.Fatal("expected false")
			}
		})

		t.Run(tt.name+" db error", func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			mock.ExpectQuery(tt.query).WithArgs(tt.arg).
				WillReturnError(errors.New("db down"))

			_, err := tt.call(repo, context.Background(), tt.arg)
			if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
				t.Fatalf("expected wrapped db error, got %v", err)
			}
		})
	}
}

func TestUnblock(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+vendedores_bloqueados\s+WHERE\s+nombre_vendedor\s*=\s*\$1$`
	mock.ExpectExec(q).WithArgs("ana").WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Unblock(context.Background(), "ana"); err != nil {
		t.Fatalf("Unblock error: %v", err)
	}

	mock.ExpectExec(q).WithArgs("ana").WillReturnError(errors.New("locked"))
	if err := repo.Unblock(context.Background(), "ana"); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
