// Package store persists projects, tasks and their related records in a relational database.
//
// The same queries run against MySQL (production) and SQLite (embedded use and tests);
// only the schema differs between the two drivers.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Config describes how to reach the database.
type Config struct {
	Driver   string
	User     string
	Password string
	Address  string
	Name     string
	// Path is the database file for the sqlite3 driver. ":memory:" is allowed.
	Path string
}

// Store wraps a database handle with the task board queries.
type Store struct {
	db     *sql.DB
	driver string
}

// DSN builds the data source name for cfg.Driver.
func DSN(cfg Config) (string, error) {
	switch cfg.Driver {
	case DriverMySQL:
		mc := mysql.Config{
			User:                 cfg.User,
			Passwd:               cfg.Password,
			Net:                  "tcp",
			Addr:                 cfg.Address,
			DBName:               cfg.Name,
			AllowNativePasswords: true,
			ParseTime:            true,
		}
		return mc.FormatDSN(), nil
	case DriverSQLite:
		path := cfg.Path
		if path == "" {
			path = ":memory:"
		}
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + "_foreign_keys=on", nil
	}
	return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// Open connects to the database described by cfg and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.Driver == DriverSQLite {
		// every connection to ":memory:" is a separate database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return New(db, cfg.Driver), nil
}

// New wraps an already opened database handle.
func New(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// EnsureSchema creates the tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	idColumn := "INT AUTO_INCREMENT PRIMARY KEY"
	if s.driver == DriverSQLite {
		idColumn = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf(stmt, idColumn)); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		userId %s,
		username VARCHAR(255) NOT NULL UNIQUE,
		profilePictureUrl VARCHAR(255)
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id %s,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		startDate DATETIME NULL,
		endDate DATETIME NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id %s,
		title VARCHAR(255) NOT NULL,
		description TEXT,
		status VARCHAR(32),
		priority VARCHAR(16),
		tags VARCHAR(255),
		startDate DATETIME NULL,
		dueDate DATETIME NULL,
		points INT,
		projectId INT NOT NULL,
		authorUserId INT NOT NULL,
		assignedUserId INT,
		FOREIGN KEY (projectId) REFERENCES projects(id),
		FOREIGN KEY (authorUserId) REFERENCES users(userId),
		FOREIGN KEY (assignedUserId) REFERENCES users(userId)
	)`,
	`CREATE TABLE IF NOT EXISTS attachments (
		id %s,
		fileURL VARCHAR(255) NOT NULL,
		fileName VARCHAR(255),
		taskId INT NOT NULL,
		uploadedById INT NOT NULL,
		FOREIGN KEY (taskId) REFERENCES tasks(id),
		FOREIGN KEY (uploadedById) REFERENCES users(userId)
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id %s,
		text TEXT NOT NULL,
		taskId INT NOT NULL,
		userId INT NOT NULL,
		FOREIGN KEY (taskId) REFERENCES tasks(id),
		FOREIGN KEY (userId) REFERENCES users(userId)
	)`,
}

type scanner interface {
	Scan(dest ...any) error
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
