package lockouts

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

const (
	incrementQ = `(?s)^INSERT\s+INTO\s+seller_lockouts.*ON\s+CONFLICT\s*\(salesperson_id\)\s*DO\s+UPDATE.*failed_attempts\s*=\s*seller_lockouts\.failed_attempts\s*\+\s*1.*RETURNING\s+salesperson_id,\s*failed_attempts,\s*is_blocked,\s*last_failure_at\s*$`
	resetQ     = `(?s)^UPDATE\s+seller_lockouts\s+SET\s+failed_attempts\s*=\s*0\s+WHERE\s+salesperson_id\s*=\s*\$1\s+AND\s+NOT\s+is_blocked\s*$`
	getQ       = `(?s)^SELECT\s+salesperson_id,\s*failed_attempts,\s*is_blocked,\s*last_failure_at\s+FROM\s+seller_lockouts\s+WHERE\s+salesperson_id\s*=\s*\$1\s*$`
	clearQ     = `(?s)^DELETE\s+FROM\s+seller_lockouts\s+WHERE\s+salesperson_id\s*=\s*\$1$`
)

var cols = []string{"salesperson_id", "failed_attempts", "is_blocked", "last_failure_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestIncrement(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(incrementQ).
		WithArgs("ana", 3, at).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("ana", 3, true, at))

	st, err := repo.Increment(context.Background(), "ana", 3, at)
	if err != nil {
		t.Fatalf("Increment error: %v", err)
	}
	if st.FailedAttempts != 3 || !st.IsBlocked || st.LastFailureAt == nil || !st.LastFailureAt.Equal(at) {
		t.Fatalf("unexpected state: %+v", st)
	}
}

func TestIncrement_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(incrementQ).WillReturnError(errors.New("db down"))

	_, err := repo.Increment(context.Background(), "ana", 3, time.Now())
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestReset(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(resetQ).WithArgs("ana").WillReturnResult(sqlmock.NewResult(0, 1))
	// idempotent: no row is fine too
	mock.ExpectExec(resetQ).WithArgs("ana").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Reset(context.Background(), "ana"); err != nil {
		t.Fatalf("Reset error: %v", err)
	}
	if err := repo.Reset(context.Background(), "ana"); err != nil {
		t.Fatalf("second Reset error: %v", err)
	}

	mock.ExpectExec(resetQ).WithArgs("ana").WillReturnError(errors.New("boom"))
	if err := repo.Reset(context.Background(), "ana"); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGet(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(getQ).WithArgs("ana").
			WillReturnRows(sqlmock.NewRows(cols).AddRow("ana", 2, false, nil))

		st, err := repo.Get(context.Background(), "ana")
		if err != nil {
			t.Fatalf("Get error: %v", err)
		}
		if st.FailedAttempts != 2 || st.IsBlocked || st.LastFailureAt != nil {
			t.Fatalf("unexpected state: %+v", st)
		}
	})

	t.Run("absent is zero state", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(getQ).WithArgs("nadie").WillReturnError(sql.ErrNoRows)

		st, err := repo.Get(context.Background(), "nadie")
		if err != nil {
			t.Fatalf("Get error: %v", err)
		}
		if st.SalespersonID != "nadie" || st.FailedAttempts != 0 || st.IsBlocked {
			t.Fatalf("unexpected state: %+v", st)
		}
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(getQ).WithArgs("ana").WillReturnError(errors.New("db down"))
		if _, err := repo.Get(context.Background(), "ana"); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestClear(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(clearQ).WithArgs("ana").WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.Clear(context.Background(), "ana"); err != nil {
		t.Fatalf("Clear error: %v", err)
	}

	mock.ExpectExec(clearQ).WithArgs("ana").WillReturnError(errors.New("boom"))
	if err := repo.Clear(context.Background(), "ana"); err == nil {
		t.Fatal("expected error")
	}
}
