package ent

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	pkgerrors "github.com/pkg/errors"

	"github.com/huynhanx03/go-crud/pkg/settings"
	"github.com/huynhanx03/go-crud/pkg/utils"
)

// DSN renders the driver specific data source name for cfg.
func DSN(cfg settings.Database) (string, error) {
	switch cfg.Driver {
	case DriverMySQL:
		// clientFoundRows makes UPDATE report matched rather than changed rows.
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=True&clientFoundRows=true",
			cfg.Username,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.Database,
		), nil
	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s password=%s sslmode=disable",
			cfg.Host,
			cfg.Port,
			cfg.Username,
			cfg.Database,
			cfg.Password,
		), nil
	case DriverSQLite:
		return fmt.Sprintf("file:%s?cache=shared&_fk=1", cfg.Database), nil
	default:
		return "", fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}
}

// NewDriver opens a pooled connection and wraps it in an Ent SQL driver.
func NewDriver(cfg settings.Database) (*entsql.Driver, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to open database connection")
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(utils.ToDuration(cfg.ConnMaxLifetime))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, pkgerrors.Wrap(err, "failed to ping database")
	}

	return entsql.OpenDB(cfg.Driver, db), nil
}
