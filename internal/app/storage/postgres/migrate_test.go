package postgres

import (
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

// expectMigratorSetup queues the driver handshake: database and schema
// discovery, advisory locking, and the version table existence check.
func expectMigratorSetup(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(".*").
		WillReturnRows(sqlmock.NewRows([]string{"current_database"}).AddRow("quizzer"))
	mock.ExpectQuery(".*").
		WillReturnRows(sqlmock.NewRows([]string{"current_schema"}).AddRow("public"))
	mock.ExpectQuery(".*").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	for i := 0; i < 6; i++ {
		mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	}
}

func TestMigrateFailsWhenDatabaseUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(".*").WillReturnError(errors.New("connection refused"))

	if err := Migrate(db); err == nil {
		t.Fatalf("expected migration against an unavailable database to fail")
	}
}

func TestMigrateNoChangeOnCurrentSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	expectMigratorSetup(mock)
	// Schema already at the latest embedded version: nothing to apply.
	mock.ExpectQuery(".*").
		WillReturnRows(sqlmock.NewRows([]string{"version", "dirty"}).AddRow(2, false))

	if err := Migrate(db); err != nil {
		t.Fatalf("re-running migrations on a current schema must succeed: %v", err)
	}
}

func TestMigrateReportsDirtySchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	expectMigratorSetup(mock)
	mock.ExpectQuery(".*").
		WillReturnRows(sqlmock.NewRows([]string{"version", "dirty"}).AddRow(1, true))

	if err := Migrate(db); err == nil {
		t.Fatalf("expected a dirty schema to abort the migration")
	}
}
