package catalog

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const (
	TableProducts   = "products"
	TableCategories = "categories"
)

var productDDL = map[string]string{
	dialect.MySQL: `CREATE TABLE IF NOT EXISTS products (
	id CHAR(36) PRIMARY KEY,
	name VARCHAR(120) NOT NULL,
	sku VARCHAR(32) NOT NULL,
	category_id BIGINT NOT NULL,
	price DECIMAL(12,2) NOT NULL DEFAULT 0
)`,
	dialect.Postgres: `CREATE TABLE IF NOT EXISTS products (
	id CHAR(36) PRIMARY KEY,
	name VARCHAR(120) NOT NULL,
	sku VARCHAR(32) NOT NULL,
	category_id BIGINT NOT NULL,
	price NUMERIC(12,2) NOT NULL DEFAULT 0
)`,
	dialect.SQLite: `CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	sku TEXT NOT NULL,
	category_id INTEGER NOT NULL,
	price TEXT NOT NULL DEFAULT '0'
)`,
}

// Migrate creates the products table when it is missing.
func Migrate(ctx context.Context, drv *entsql.Driver) error {
	ddl, ok := productDDL[drv.Dialect()]
	if !ok {
		return fmt.Errorf("no products schema for dialect %q", drv.Dialect())
	}
	return drv.Exec(ctx, ddl, []any{}, nil)
}
