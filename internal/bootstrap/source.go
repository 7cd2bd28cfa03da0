// Package bootstrap builds the configured dataset source.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"supplier_ranker/internal/adapters/csvsource"
	"supplier_ranker/internal/adapters/remote"
	"supplier_ranker/internal/domain"
	"supplier_ranker/internal/shared"
	mysqlrepo "supplier_ranker/internal/storage/mysql"
)

// Source returns the source selected by cfg.DataSource and a func that
// releases its resources.
func Source(cfg shared.Config) (domain.SupplierSource, func(), error) {
	noop := func() {}
	switch cfg.DataSource {
	case shared.SourceCSV:
		return csvsource.New(cfg.DataPath), noop, nil

	case shared.SourceURL:
		src, err := remote.New(cfg.DataURL, cfg.DataToken, 1)
		if err != nil {
			return nil, noop, err
		}
		return src, noop, nil

	case shared.SourceMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, noop, fmt.Errorf("sql.Open: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, noop, fmt.Errorf("%w: db ping: %v", domain.ErrDataLoad, err)
		}
		log.Info().Msg("database connection ok")
		return mysqlrepo.New(db, "suppliers"), func() { _ = db.Close() }, nil
	}
	return nil, noop, fmt.Errorf("unknown data source %q", cfg.DataSource)
}
