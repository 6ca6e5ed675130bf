package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var ts = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+users\s*\(username,\s*password,\s*first_name,\s*last_name,\s*phone,\s*join_at,\s*last_login_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7\)\s*RETURNING\s+join_at,\s*last_login_at\s*$`

	mock.ExpectQuery(q).
		WithArgs("alice", "hash", "Alice", "A", "555", ts, ts).
		WillReturnRows(sqlmock.NewRows([]string{"join_at", "last_login_at"}).AddRow(ts, ts))

	u := &models.User{Username: "alice", PasswordHash: "hash", FirstName: "Alice", LastName: "A", Phone: "555", JoinAt: ts, LastLoginAt: ts}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.Username != "alice" || !got.JoinAt.Equal(ts) || !got.LastLoginAt.Equal(ts) {
		t.Fatalf("unexpected user: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.User{Username: "alice"})
	if !errors.Is(err, common.ErrorConflict) {
		t.Fatalf("expected ErrorConflict, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users`).
		WillReturnError(errors.New("boom"))

	_, err := repo.Create(context.Background(), &models.User{Username: "alice"})
	if err == nil || errors.Is(err, common.ErrorConflict) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByUsername_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+username,\s*password,\s*first_name,\s*last_name,\s*phone,\s*join_at,\s*last_login_at\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1\s*$`
	rows := sqlmock.NewRows([]string{"username", "password", "first_name", "last_name", "phone", "join_at", "last_login_at"}).
		AddRow("bob", "h", "Bob", "B", "123", ts, nil)
	mock.ExpectQuery(q).WithArgs("bob").WillReturnRows(rows)

	u, err := repo.GetByUsername(context.Background(), "bob")
	if err != nil {
		t.Fatalf("GetByUsername error: %v", err)
	}
	if u.Username != "bob" || u.PasswordHash != "h" || u.Phone != "123" || !u.JoinAt.Equal(ts) {
		t.Fatalf("unexpected user: %+v", u)
	}
	if !u.LastLoginAt.IsZero() {
		t.Fatalf("null last_login_at should scan as zero time, got %v", u.LastLoginAt)
	}
}

func TestGetByUsername_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+username`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUsername(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestExists(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1\)$`
	mock.ExpectQuery(q).WithArgs("alice").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(q).WithArgs("ghost").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.Exists(context.Background(), "alice")
	if err != nil || !ok {
		t.Fatalf("Exists(alice) = %v, %v", ok, err)
	}
	ok, err = repo.Exists(context.Background(), "ghost")
	if err != nil || ok {
		t.Fatalf("Exists(ghost) = %v, %v", ok, err)
	}
}

func TestUpdateLastLogin(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+users\s+SET\s+last_login_at\s*=\s*\$2\s+WHERE\s+username\s*=\s*\$1\s*$`
	mock.ExpectExec(q).WithArgs("alice", ts).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("ghost", ts).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q).WithArgs("err", ts).WillReturnError(errors.New("boom"))

	if err := repo.UpdateLastLogin(context.Background(), "alice", ts); err != nil {
		t.Fatalf("UpdateLastLogin error: %v", err)
	}
	if err := repo.UpdateLastLogin(context.Background(), "ghost", ts); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
	if err := repo.UpdateLastLogin(context.Background(), "err", ts); err == nil {
		t.Fatalf("expected error")
	}
}

func TestList_OrderedSummaries(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+username,\s*first_name,\s*last_name,\s*phone\s+FROM\s+users\s+ORDER\s+BY\s+username\s*$`
	rows := sqlmock.NewRows([]string{"username", "first_name", "last_name", "phone"}).
		AddRow("alice", "Alice", "A", "1").
		AddRow("bob", "Bob", "B", "2")
	mock.ExpectQuery(q).WillReturnRows(rows)

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].Username != "alice" || got[1].Phone != "2" {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestList_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+username`).
		WillReturnRows(sqlmock.NewRows([]string{"username", "first_name", "last_name", "phone"}))

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestList_ScanError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+username`).
		WillReturnRows(sqlmock.NewRows([]string{"username"}).AddRow("alice"))

	if _, err := repo.List(context.Background()); err == nil {
		t.Fatalf("expected scan error")
	}
}
