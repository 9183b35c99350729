package ent

import "entgo.io/ent/dialect"

const (
	// Driver names
	DriverMySQL    = dialect.MySQL
	DriverPostgres = dialect.Postgres
	DriverSQLite   = dialect.SQLite

	// Struct tags consulted for column names, in order.
	TagSQL  = "sql"
	TagJSON = "json"

	// Column holding the entity key.
	ColumnID = "id"

	// Soft delete columns
	SoftDeleteAtColumnName = "deleted_at"
)
