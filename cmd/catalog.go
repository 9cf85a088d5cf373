package cmd

import (
	"context"
	"log/slog"

	"github.com/eufgis/fgrdb/internal/iodb"
	"github.com/eufgis/fgrdb/internal/iomem"
	"github.com/eufgis/fgrdb/internal/iostore"
	"github.com/eufgis/fgrdb/pkg/catalog"
	"github.com/eufgis/fgrdb/pkg/species"
	"github.com/eufgis/fgrdb/pkg/store"
	"github.com/gnames/gn"
)

// openCatalog creates a catalog backed by PostgreSQL, or by an
// in-memory store if memory is true. The returned function releases
// the resources of the catalog.
func openCatalog(
	ctx context.Context,
	memory bool,
) (*catalog.Catalog, func(), error) {
	names := species.NewPool(cfg.JobsNumber)

	if memory {
		st := iomem.New()
		gn.Warn("Using in-memory store, data will be lost on exit")
		return catalog.New(cfg, st, names), func() {
			closeStore(st)
			names.Close()
		}, nil
	}

	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		names.Close()
		return nil, nil, err
	}
	gn.Info("Connected to database: <em>%s@%s:%d/%s</em>",
		cfg.Database.User, cfg.Database.Host,
		cfg.Database.Port, cfg.Database.Database)

	st := iostore.New(op.Pool(), cfg.Catalog)
	return catalog.New(cfg, st, names), func() {
		closeStore(st)
		op.Close()
		names.Close()
	}, nil
}

func closeStore(st store.Store) {
	if err := st.Close(); err != nil {
		slog.Warn("Cannot close store", "error", err)
	}
}
