package sqldb

import (
	"strconv"
	"strings"
)

// Dialect captures the handful of SQL differences between the supported
// backends: placeholder syntax, how a generated id comes back from an INSERT,
// and the DDL for the two tables.
type Dialect struct {
	Name string

	// dollarArgs selects $1, $2, ... instead of ?.
	dollarArgs bool
	// returning selects INSERT ... RETURNING id instead of LastInsertId.
	returning bool
	schema    []string
}

var (
	sqliteDialect = Dialect{
		Name:      "sqlite",
		returning: true,
		schema: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id       INTEGER PRIMARY KEY AUTOINCREMENT,
				username TEXT NOT NULL UNIQUE,
				password TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS todos (
				id      INTEGER PRIMARY KEY AUTOINCREMENT,
				content TEXT NOT NULL DEFAULT '',
				done    BOOLEAN NOT NULL DEFAULT 0,
				user_id INTEGER NOT NULL REFERENCES users(id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_todos_user_id ON todos(user_id)`,
		},
	}

	postgresDialect = Dialect{
		Name:       "postgres",
		dollarArgs: true,
		returning:  true,
		schema: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id       BIGSERIAL PRIMARY KEY,
				username TEXT NOT NULL UNIQUE,
				password TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS todos (
				id      BIGSERIAL PRIMARY KEY,
				content TEXT NOT NULL DEFAULT '',
				done    BOOLEAN NOT NULL DEFAULT FALSE,
				user_id BIGINT NOT NULL REFERENCES users(id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_todos_user_id ON todos(user_id)`,
		},
	}

	// MySQL has no RETURNING and no CREATE INDEX IF NOT EXISTS; the foreign
	// key gives user_id its index. username gets a binary collation because
	// the server default compares case-insensitively.
	mysqlDialect = Dialect{
		Name: "mysql",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id       BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
				username VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL UNIQUE,
				password VARCHAR(255) NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS todos (
				id      BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
				content TEXT NOT NULL,
				done    BOOLEAN NOT NULL DEFAULT FALSE,
				user_id BIGINT NOT NULL,
				FOREIGN KEY (user_id) REFERENCES users(id)
			)`,
		},
	}
)

// Placeholder returns the bind marker for the n-th argument (1-based).
func (d Dialect) Placeholder(n int) string {
	if d.dollarArgs {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Rebind rewrites a query written with ? markers into the dialect's syntax.
// Queries in this package never contain a literal question mark.
func (d Dialect) Rebind(query string) string {
	if !d.dollarArgs {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(d.Placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
