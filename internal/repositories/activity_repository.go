package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"dashboard/internal/config"
	intdb "dashboard/internal/db"
	"dashboard/internal/domain/models"
	"dashboard/internal/utils"
)

const activityTable = "dashboard_activity"

// ActivityFilter selects one page of the activity log.
type ActivityFilter struct {
	Kind      string
	Entity    string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// ActivityRepository persists dashboard notifications in MySQL or Postgres.
type ActivityRepository struct {
	DB      *sql.DB
	Dialect intdb.Dialect
}

func (r ActivityRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return config.DB
}

func (r ActivityRepository) dialect() intdb.Dialect {
	if r.Dialect != "" {
		return r.Dialect
	}
	if config.DBDriver == string(intdb.Postgres) {
		return intdb.Postgres
	}
	return intdb.MySQL
}

// EnsureSchema creates the activity table when it does not exist yet.
func (r ActivityRepository) EnsureSchema(ctx context.Context) error {
	db := r.db()
	if db == nil {
		return fmt.Errorf("activity store: database not connected")
	}
	d := r.dialect()
	if intdb.HasTable(ctx, db, d, activityTable) {
		return nil
	}

	ddl := `
		CREATE TABLE IF NOT EXISTS ` + activityTable + ` (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			kind VARCHAR(16) NOT NULL,
			entity VARCHAR(64) NOT NULL,
			record_id VARCHAR(128) NULL,
			message TEXT NOT NULL,
			request_id VARCHAR(64) NULL,
			actor VARCHAR(128) NULL,
			created_at DATETIME NOT NULL,
			INDEX idx_activity_entity (entity, created_at)
		) CHARACTER SET utf8mb4`
	if d == intdb.Postgres {
		ddl = `
		CREATE TABLE IF NOT EXISTS ` + activityTable + ` (
			id BIGSERIAL PRIMARY KEY,
			kind VARCHAR(16) NOT NULL,
			entity VARCHAR(64) NOT NULL,
			record_id VARCHAR(128) NULL,
			message TEXT NOT NULL,
			request_id VARCHAR(64) NULL,
			actor VARCHAR(128) NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create %s: %w", activityTable, err)
	}
	return nil
}

// Insert stores one activity row and returns its id.
func (r ActivityRepository) Insert(ctx context.Context, a models.Activity) (int64, error) {
	db := r.db()
	if db == nil {
		return 0, fmt.Errorf("activity store: database not connected")
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = utils.NowUTC()
	}
	d := r.dialect()
	query := `INSERT INTO ` + activityTable + ` (kind, entity, record_id, message, request_id, actor, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	args := []any{a.Kind, a.Entity, intdb.NullIfEmpty(a.TargetID), a.Message, intdb.NullIfEmpty(a.RequestID), intdb.NullIfEmpty(a.Actor), a.CreatedAt}

	if d == intdb.Postgres {
		var id int64
		if err := db.QueryRowContext(ctx, d.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("insert activity: %w", err)
		}
		return id, nil
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert activity: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert activity: %w", err)
	}
	return id, nil
}

// List returns one page of activity plus the total row count for the filter.
func (r ActivityRepository) List(ctx context.Context, f ActivityFilter) ([]models.Activity, int, error) {
	db := r.db()
	if db == nil {
		return nil, 0, fmt.Errorf("activity store: database not connected")
	}
	d := r.dialect()
	f = normalizeActivityFilter(f)

	where := []string{"1=1"}
	args := []any{}
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, f.Kind)
	}
	if f.Entity != "" {
		where = append(where, "entity = ?")
		args = append(args, f.Entity)
	}
	whereSQL := strings.Join(where, " AND ")

	var total int
	if err := db.QueryRowContext(ctx, d.Rebind(`SELECT COUNT(*) FROM `+activityTable+` WHERE `+whereSQL), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count activity: %w", err)
	}

	orderCol := "created_at"
	if f.SortBy == "id" {
		orderCol = "id"
	}
	order := "DESC"
	if f.SortOrder == "asc" {
		order = "ASC"
	}

	query := `
		SELECT id, kind, entity, COALESCE(record_id,''), message, COALESCE(request_id,''), COALESCE(actor,''), created_at
		FROM ` + activityTable + `
		WHERE ` + whereSQL + `
		ORDER BY ` + orderCol + ` ` + order + `, id ` + order + `
		LIMIT ? OFFSET ?`
	pageArgs := append(append([]any{}, args...), f.Limit, (f.Page-1)*f.Limit)

	rows, err := db.QueryContext(ctx, d.Rebind(query), pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	out := []models.Activity{}
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.Kind, &a.Entity, &a.TargetID, &a.Message, &a.RequestID, &a.Actor, &a.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("read activity: %w", err)
	}
	return out, total, nil
}

func normalizeActivityFilter(f ActivityFilter) ActivityFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 200 {
		f.Limit = 200
	}
	f.Kind = strings.TrimSpace(f.Kind)
	f.Entity = strings.TrimSpace(f.Entity)
	if f.Kind == "all" {
		f.Kind = ""
	}
	if f.Entity == "all" {
		f.Entity = ""
	}
	f.SortOrder = strings.ToLower(strings.TrimSpace(f.SortOrder))
	return f
}
