package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/listenupapp/fieldcodec/internal/config"
	"github.com/listenupapp/fieldcodec/internal/logger"
	"github.com/listenupapp/fieldcodec/internal/schema"
	"github.com/listenupapp/fieldcodec/internal/store"
)

// ProvideSchema builds the field registry and installs it as the store's
// codec source.
func ProvideSchema(i do.Injector) (*schema.Live, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	st := do.MustInvoke[*StoreHandle](i)

	return BuildSchema(cfg.Schema, st.Store, log)
}

// BuildSchema loads the configured schema, or the built-in one, and wires it to st.
func BuildSchema(cfg config.SchemaConfig, st store.Store, log *logger.Logger) (*schema.Live, error) {
	s := schema.Default()
	if cfg.Path != "" {
		loaded, err := schema.Load(cfg.Path)
		if err != nil {
			return nil, err
		}
		s = loaded
	}

	r, err := schema.Build(s, schemaDeps(st, log))
	if err != nil {
		return nil, err
	}
	live, err := schema.NewLive(r)
	if err != nil {
		return nil, err
	}
	st.SetCodecs(live)

	log.Info("field schema loaded", "fields", len(s.Fields), "path", cfg.Path)
	return live, nil
}

func schemaDeps(st store.Store, log *logger.Logger) schema.Deps {
	return schema.Deps{
		Keys:   store.Keys(st),
		Logger: log.With("component", "codec"),
	}
}

// SchemaWatcherHandle wraps the schema file watcher for lifecycle management.
// Watcher is nil when watching is disabled.
type SchemaWatcherHandle struct {
	*schema.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SchemaWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Close()
}

// ProvideSchemaWatcher starts reloading the schema file on change when enabled.
func ProvideSchemaWatcher(i do.Injector) (*SchemaWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	st := do.MustInvoke[*StoreHandle](i)
	live := do.MustInvoke[*schema.Live](i)

	if !cfg.Schema.Watch {
		return &SchemaWatcherHandle{}, nil
	}

	w, err := schema.NewWatcher(cfg.Schema.Path, live, schemaDeps(st.Store, log), log.Logger, schema.WatchOptions{})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := w.Run(ctx); err != nil {
			log.Error("schema watcher error", "error", err)
		}
	}()

	log.Info("watching field schema", "path", cfg.Schema.Path)
	return &SchemaWatcherHandle{Watcher: w, cancel: cancel}, nil
}
