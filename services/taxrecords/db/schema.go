package db

import (
	"database/sql"
	_ "embed"

	"taxrecords-backend/lib/sqliteutil"
)

//go:embed schema.sql
var schema string

func Open(path string) (*sql.DB, error) {
	return sqliteutil.OpenDB(schema, path)
}
