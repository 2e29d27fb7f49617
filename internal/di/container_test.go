package di

import (
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/fieldcodec/internal/config"
	"github.com/listenupapp/fieldcodec/internal/di/providers"
	"github.com/listenupapp/fieldcodec/internal/service"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	return &config.Config{
		App:    config.AppConfig{Environment: "test"},
		Logger: config.LoggerConfig{Level: "error"},
		Store: config.StoreConfig{
			Backend:  backend,
			DataPath: t.TempDir(),
		},
	}
}

func TestBootstrap(t *testing.T) {
	for _, backend := range []string{config.BackendSQLite, config.BackendBadger} {
		t.Run(backend, func(t *testing.T) {
			injector := NewContainer(testConfig(t, backend))
			defer injector.Shutdown()
			require.NoError(t, Bootstrap(injector))

			fields := do.MustInvoke[*service.FieldService](injector)
			assert.Len(t, fields.Fields(), 3)

			st := do.MustInvoke[*providers.StoreHandle](injector)
			require.NoError(t, st.Ping(t.Context()))

			watcher := do.MustInvoke[*providers.SchemaWatcherHandle](injector)
			assert.Nil(t, watcher.Watcher)
		})
	}
}

func TestBootstrap_UnknownBackend(t *testing.T) {
	injector := NewContainer(testConfig(t, "mongo"))
	err := Bootstrap(injector)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo")
}
