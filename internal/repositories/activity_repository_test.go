package repositories

import (
	"context"
	"testing"
	"time"

	intdb "dashboard/internal/db"
	"dashboard/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestActivityInsertMySQL(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO dashboard_activity").
		WithArgs("success", "brands", "7", `"Nike" has been deleted`, "rid-1", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(11, 1))

	repo := ActivityRepository{DB: db, Dialect: intdb.MySQL}
	id, err := repo.Insert(context.Background(), models.Activity{
		Kind: "success", Entity: "brands", TargetID: "7", Message: `"Nike" has been deleted`, RequestID: "rid-1",
	})
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if id != 11 {
		t.Fatalf("expected id 11, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestActivityInsertPostgresUsesReturning(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO dashboard_activity .* VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7\) RETURNING id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	repo := ActivityRepository{DB: db, Dialect: intdb.Postgres}
	id, err := repo.Insert(context.Background(), models.Activity{Kind: "error", Entity: "coupons", Message: "failed"})
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if id != 5 {
		t.Fatalf("expected id 5, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestActivityListFiltersAndPages(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM dashboard_activity WHERE 1=1 AND entity = \?`).
		WithArgs("brands").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(23))
	mock.ExpectQuery(`ORDER BY created_at DESC, id DESC\s+LIMIT \? OFFSET \?`).
		WithArgs("brands", 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "entity", "record_id", "message", "request_id", "actor", "created_at"}).
			AddRow(12, "success", "brands", "7", "deleted", "", "", now).
			AddRow(11, "error", "brands", "8", "failed", "rid", "ana", now))

	repo := ActivityRepository{DB: db, Dialect: intdb.MySQL}
	items, total, err := repo.List(context.Background(), ActivityFilter{Kind: "all", Entity: "brands", Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if total != 23 || len(items) != 2 {
		t.Fatalf("unexpected result total=%d items=%d", total, len(items))
	}
	if items[1].Actor != "ana" || items[0].TargetID != "7" {
		t.Fatalf("unexpected rows %+v", items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestActivityEnsureSchemaSkipsExistingTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("information_schema\\.tables").WithArgs("dashboard_activity").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS dashboard_activity").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("information_schema\\.tables").WithArgs("dashboard_activity").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("dashboard_activity"))

	repo := ActivityRepository{DB: db, Dialect: intdb.MySQL}
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("first EnsureSchema error: %v", err)
	}
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("second EnsureSchema error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
