package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"
)

var DB *sql.DB

type dialect struct {
	name string
	// positional is true for drivers that bind $1, $2 instead of ?.
	positional bool
	// returning is true when LastInsertId is unsupported and ids come from RETURNING.
	returning bool
	schema    []string
}

var dialects = map[string]*dialect{
	"sqlite3": {
		name: "sqlite3",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				email TEXT UNIQUE NOT NULL,
				password_hash TEXT NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS categories (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT UNIQUE NOT NULL,
				slug TEXT UNIQUE NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS reports (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL,
				category_id INTEGER,
				description TEXT NOT NULL,
				image TEXT,
				latitude REAL NOT NULL,
				longitude REAL NOT NULL,
				status TEXT NOT NULL DEFAULT 'pending',
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
				FOREIGN KEY (category_id) REFERENCES categories(id)
			)`,
			`CREATE TABLE IF NOT EXISTS api_sessions (
				token_id TEXT PRIMARY KEY,
				user_id INTEGER NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				expires_at DATETIME NOT NULL,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			)`,
		},
	},
	"pgx": {
		name:       "pgx",
		positional: true,
		returning:  true,
		schema: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id BIGSERIAL PRIMARY KEY,
				email TEXT UNIQUE NOT NULL,
				password_hash TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
			`CREATE TABLE IF NOT EXISTS categories (
				id BIGSERIAL PRIMARY KEY,
				name TEXT UNIQUE NOT NULL,
				slug TEXT UNIQUE NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS reports (
				id BIGSERIAL PRIMARY KEY,
				user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				category_id BIGINT REFERENCES categories(id),
				description TEXT NOT NULL,
				image TEXT,
				latitude DOUBLE PRECISION NOT NULL,
				longitude DOUBLE PRECISION NOT NULL,
				status TEXT NOT NULL DEFAULT 'pending',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
			`CREATE TABLE IF NOT EXISTS api_sessions (
				token_id TEXT PRIMARY KEY,
				user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				expires_at TIMESTAMPTZ NOT NULL
			)`,
		},
	},
	"mysql": {
		name: "mysql",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				email VARCHAR(255) UNIQUE NOT NULL,
				password_hash VARCHAR(255) NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS categories (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				name VARCHAR(128) UNIQUE NOT NULL,
				slug VARCHAR(128) UNIQUE NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS reports (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				user_id BIGINT NOT NULL,
				category_id BIGINT NULL,
				description TEXT NOT NULL,
				image VARCHAR(1024) NULL,
				latitude DOUBLE NOT NULL,
				longitude DOUBLE NOT NULL,
				status VARCHAR(32) NOT NULL DEFAULT 'pending',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
				FOREIGN KEY (category_id) REFERENCES categories(id)
			)`,
			`CREATE TABLE IF NOT EXISTS api_sessions (
				token_id VARCHAR(64) PRIMARY KEY,
				user_id BIGINT NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				expires_at DATETIME NOT NULL,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			)`,
		},
	},
}

var current = dialects["sqlite3"]

// SetDialect selects the SQL flavour without opening a connection.
func SetDialect(driver string) error {
	d, ok := dialects[driver]
	if !ok {
		return fmt.Errorf("unsupported database driver %q", driver)
	}
	current = d
	return nil
}

// InitDB opens the store, creates missing tables and seeds the default categories.
// For MySQL the DSN needs parseTime=true so timestamps scan into time.Time.
func InitDB(driver, dataSourceName string) error {
	if err := SetDialect(driver); err != nil {
		return err
	}

	var err error
	DB, err = sql.Open(driver, dataSourceName)
	if err != nil {
		return fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite3" {
		// One connection: keeps ":memory:" databases shared and avoids SQLITE_BUSY.
		DB.SetMaxOpenConns(1)
	}

	ctx := context.Background()
	if err := DB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", driver, err)
	}

	for _, stmt := range current.schema {
		if _, err := DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating tables: %w", err)
		}
	}

	if err := seedCategories(ctx); err != nil {
		return fmt.Errorf("seeding categories: %w", err)
	}

	log.WithFields(log.Fields{"driver": driver}).Info("database initialised")
	return nil
}

func rebind(query string) string {
	if !current.positional {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func insert(ctx context.Context, query string, args ...any) (int64, error) {
	if current.returning {
		var id int64
		err := DB.QueryRowContext(ctx, rebind(query)+" RETURNING id", args...).Scan(&id)
		return id, err
	}
	result, err := DB.ExecContext(ctx, rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return false
}
