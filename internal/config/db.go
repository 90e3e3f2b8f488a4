package config

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"dashboard/internal/utils"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	DB       *sql.DB
	DBDriver string
	dbMu     sync.Mutex
)

// ConnectDB initializes the shared DB connection (idempotent). Driver
// "none" leaves DB nil and the activity log in memory.
func ConnectDB(env Env) (*sql.DB, error) {
	dbMu.Lock()
	defer dbMu.Unlock()

	if DB != nil {
		return DB, nil
	}
	if env.DBDriver == "none" {
		return nil, nil
	}

	db, err := sql.Open(env.DBDriver, env.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", env.DBDriver, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(10 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", env.DBDriver, err)
	}

	DB = db
	DBDriver = env.DBDriver
	utils.LogEvent("", "db", "connect", "activity store connected")
	return DB, nil
}

func EnsureDB(ctx context.Context) error {
	dbMu.Lock()
	defer dbMu.Unlock()

	if DB == nil {
		return fmt.Errorf("database not connected")
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return DB.PingContext(ctx)
}

func CloseDB() {
	dbMu.Lock()
	defer dbMu.Unlock()

	if DB != nil {
		_ = DB.Close()
		DB = nil
	}
}
