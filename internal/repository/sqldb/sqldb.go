// Package sqldb implements the repository interfaces on top of database/sql.
//
// ONE CODE PATH, THREE BACKENDS:
// The store URL picks the driver:
//
//	sqlite:data/todolist.db    → modernc.org/sqlite (pure Go, no CGo)
//	postgres://host/db         → github.com/jackc/pgx/v5 via its stdlib adapter
//	mysql://host:3306/TodoList → github.com/go-sql-driver/mysql
//
// Every query is written once with ? markers and rebound per dialect, so the
// stores in user.go and todo.go never branch on the backend except where a
// generated id is read back (see insertID).
//
// CONNECTION SCOPE:
// sql.DB is a pool. Each store operation checks out one *sql.Conn, runs all of
// its statements on it and returns it with a deferred Close, on every path.
// Nothing is held between operations.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/xid"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"

	"github.com/sakif/todolist/internal/apperror"
)

// Options are the connection parameters produced by the config resolver.
type Options struct {
	URL      string
	User     string
	Password string
}

// DB wraps a sql.DB connection pool and implements the repository interfaces.
type DB struct {
	pool    *sql.DB
	dialect Dialect
}

// New opens the store described by opts, verifies it with a ping and creates
// the schema if it is missing.
func New(ctx context.Context, opts Options) (*DB, error) {
	pool, dialect, err := open(opts)
	if err != nil {
		return nil, err
	}

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("sqldb: pinging %s database: %w", dialect.Name, err)
	}

	db := &DB{pool: pool, dialect: dialect}

	if err := db.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("sqldb: running migrations: %w", err)
	}

	return db, nil
}

// Dialect reports which backend the store is talking to.
func (db *DB) Dialect() string {
	return db.dialect.Name
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.pool.Close()
}

// Ping checks that the datastore is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.PingContext(ctx)
}

func open(opts Options) (*sql.DB, Dialect, error) {
	raw := strings.TrimSpace(opts.URL)
	// JDBC-style URLs ("jdbc:mysql://...") are accepted as written.
	raw = strings.TrimPrefix(raw, "jdbc:")

	switch {
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return openPostgres(raw, opts)
	case strings.HasPrefix(raw, "mysql://"):
		return openMySQL(raw, opts)
	case strings.HasPrefix(raw, "sqlite:"), strings.HasPrefix(raw, "file:"), !strings.Contains(raw, "://"):
		return openSQLite(raw)
	default:
		return nil, Dialect{}, fmt.Errorf("sqldb: unsupported store URL %q", opts.URL)
	}
}

// openPostgres lets the explicit user/password override any credentials
// embedded in the URL.
func openPostgres(raw string, opts Options) (*sql.DB, Dialect, error) {
	cfg, err := pgx.ParseConfig(raw)
	if err != nil {
		return nil, Dialect{}, fmt.Errorf("sqldb: parsing postgres URL: %w", err)
	}
	if opts.User != "" {
		cfg.User = opts.User
	}
	if opts.Password != "" {
		cfg.Password = opts.Password
	}
	return stdlib.OpenDB(*cfg), postgresDialect, nil
}

// openMySQL converts mysql://host:port/dbname into the driver's DSN format.
// JDBC query parameters (useSSL, serverTimezone, ...) have no meaning for the
// Go driver and are dropped.
func openMySQL(raw string, opts Options) (*sql.DB, Dialect, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, Dialect{}, fmt.Errorf("sqldb: parsing mysql URL: %w", err)
	}

	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	if cfg.Addr == "" {
		cfg.Addr = "localhost:3306"
	}
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	// Report matched rows, not changed rows, so an UPDATE that rewrites the
	// same values is not mistaken for a missing row.
	cfg.ClientFoundRows = true
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}
	if opts.User != "" {
		cfg.User = opts.User
	}
	if opts.Password != "" {
		cfg.Passwd = opts.Password
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, Dialect{}, fmt.Errorf("sqldb: configuring mysql: %w", err)
	}
	return sql.OpenDB(connector), mysqlDialect, nil
}

// openSQLite opens a file or in-memory database. SQLite has no users, so the
// credentials are ignored.
//
// ":memory:" becomes a uniquely named shared-cache database: a plain
// ":memory:" DSN gives every pooled connection its own empty database.
func openSQLite(raw string) (*sql.DB, Dialect, error) {
	path := strings.TrimPrefix(raw, "sqlite:")
	path = strings.TrimPrefix(path, "//")

	memory := path == "" || path == ":memory:"
	dsn := path
	switch {
	case memory:
		dsn = fmt.Sprintf("file:todolist-%s?mode=memory&cache=shared", xid.New().String())
	case strings.HasPrefix(path, "file:"):
		// already a URI filename, use as given
	default:
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, Dialect{}, fmt.Errorf("sqldb: creating database directory %s: %w", dir, err)
			}
		}
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	dsn += sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if !memory {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, Dialect{}, fmt.Errorf("sqldb: opening sqlite database: %w", err)
	}
	if memory {
		// The shared in-memory database lives only while a connection is open.
		pool.SetMaxOpenConns(1)
	}
	return pool, sqliteDialect, nil
}

// migrate creates the tables if they do not exist yet. Statements run one at
// a time because the MySQL driver rejects multi-statement Exec by default.
func (db *DB) migrate(ctx context.Context) error {
	for _, stmt := range db.dialect.schema {
		if _, err := db.pool.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

// withConn runs fn on a connection checked out for this call only.
func (db *DB) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := db.pool.Conn(ctx)
	if err != nil {
		return apperror.Persistence("acquiring database connection", err)
	}
	defer conn.Close()

	return fn(conn)
}

// insertID runs an INSERT and returns the generated id. Zero affected rows or
// a missing id is a store-level invariant violation, reported the same way as
// a driver failure.
func (db *DB) insertID(ctx context.Context, conn *sql.Conn, entity, query string, args ...any) (int64, error) {
	if db.dialect.returning {
		var id int64
		err := conn.QueryRowContext(ctx, db.dialect.Rebind(query+" RETURNING id"), args...).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperror.Persistence(fmt.Sprintf("creating %s failed, no ID obtained", entity), nil)
		}
		if err != nil {
			return 0, apperror.Persistence(fmt.Sprintf("creating %s", entity), err)
		}
		return id, nil
	}

	result, err := conn.ExecContext(ctx, db.dialect.Rebind(query), args...)
	if err != nil {
		return 0, apperror.Persistence(fmt.Sprintf("creating %s", entity), err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperror.Persistence("checking rows affected", err)
	}
	if affected == 0 {
		return 0, apperror.Persistence(fmt.Sprintf("creating %s failed, no rows affected", entity), nil)
	}
	id, err := result.LastInsertId()
	if err != nil || id == 0 {
		return 0, apperror.Persistence(fmt.Sprintf("creating %s failed, no ID obtained", entity), err)
	}
	return id, nil
}
