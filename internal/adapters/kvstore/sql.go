package kvstore

import (
	"time"

	sq "github.com/Masterminds/squirrel"
)

const tableName = "kv_store"

// Schema is shared by the SQLite and Postgres stores.
const Schema = `
CREATE TABLE IF NOT EXISTS kv_store (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at BIGINT NOT NULL
);
`

// statements builds the three statements of a key-value table for one placeholder dialect.
type statements struct {
	qb sq.StatementBuilderType
}

func newStatements(format sq.PlaceholderFormat) statements {
	return statements{qb: sq.StatementBuilder.PlaceholderFormat(format)}
}

func (s statements) get(key string) (string, []interface{}, error) {
	return s.qb.Select("value").From(tableName).Where(sq.Eq{"key": key}).ToSql()
}

// upsert works for both SQLite (3.24+) and Postgres.
func (s statements) upsert(key string, value []byte, now time.Time) (string, []interface{}, error) {
	return s.qb.Insert(tableName).
		Columns("key", "value", "updated_at").
		Values(key, string(value), now.UnixMilli()).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
		ToSql()
}

func (s statements) delete(keys []string) (string, []interface{}, error) {
	return s.qb.Delete(tableName).Where(sq.Eq{"key": keys}).ToSql()
}
