package providers

import (
	"context"
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/listenupapp/fieldcodec/internal/config"
	"github.com/listenupapp/fieldcodec/internal/logger"
	"github.com/listenupapp/fieldcodec/internal/store"
	"github.com/listenupapp/fieldcodec/internal/store/badgerdb"
	"github.com/listenupapp/fieldcodec/internal/store/postgres"
	"github.com/listenupapp/fieldcodec/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the configured contact store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	st, err := OpenStore(context.Background(), cfg.Store, log)
	if err != nil {
		return nil, err
	}
	return &StoreHandle{Store: st}, nil
}

// OpenStore opens the backend named in cfg.
func OpenStore(ctx context.Context, cfg config.StoreConfig, log *logger.Logger) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		if err := os.MkdirAll(cfg.DataPath, 0o750); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		return sqlite.Open(cfg.SQLitePath(), log.Logger)

	case config.BackendBadger:
		if err := os.MkdirAll(cfg.DataPath, 0o750); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		return badgerdb.Open(badgerdb.Options{Path: cfg.BadgerPath()}, log.Logger)

	case config.BackendPostgres:
		return postgres.Open(ctx, cfg.PostgresURL, postgres.WithLogger(log.Logger))

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
