package sqldb

import (
	"errors"
	"strings"
)

// updateBuilder accumulates (column, value) pairs and emits one
// parameterized UPDATE statement. Column names come from this package,
// values are always bound through placeholders.
type updateBuilder struct {
	table     string
	sets      []string
	args      []any
	where     []string
	whereArgs []any
}

func newUpdate(table string) *updateBuilder {
	return &updateBuilder{table: table}
}

// Set adds column = value to the SET list.
func (b *updateBuilder) Set(column string, value any) *updateBuilder {
	b.sets = append(b.sets, column+" = ?")
	b.args = append(b.args, value)
	return b
}

// Where adds column = value to the WHERE clause; conditions are ANDed.
func (b *updateBuilder) Where(column string, value any) *updateBuilder {
	b.where = append(b.where, column+" = ?")
	b.whereArgs = append(b.whereArgs, value)
	return b
}

// Build renders the statement for the given dialect. SET arguments come
// first, followed by WHERE arguments, matching placeholder order.
func (b *updateBuilder) Build(d Dialect) (string, []any, error) {
	if len(b.sets) == 0 {
		return "", nil, errors.New("sqldb: update has no columns to set")
	}
	if len(b.where) == 0 {
		return "", nil, errors.New("sqldb: refusing to build update without a WHERE clause")
	}

	query := "UPDATE " + b.table +
		" SET " + strings.Join(b.sets, ", ") +
		" WHERE " + strings.Join(b.where, " AND ")

	args := make([]any, 0, len(b.args)+len(b.whereArgs))
	args = append(args, b.args...)
	args = append(args, b.whereArgs...)

	return d.Rebind(query), args, nil
}
