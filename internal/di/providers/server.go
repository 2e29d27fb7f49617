package providers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/listenupapp/fieldcodec/internal/api"
	"github.com/listenupapp/fieldcodec/internal/config"
	"github.com/listenupapp/fieldcodec/internal/logger"
	"github.com/listenupapp/fieldcodec/internal/ratelimit"
	"github.com/listenupapp/fieldcodec/internal/service"
)

// RateLimiterHandle wraps the per-client limiter. Limiter is nil when limiting is off.
type RateLimiterHandle struct {
	Limiter *ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	if h.Limiter != nil {
		h.Limiter.Stop()
	}
	return nil
}

// ProvideRateLimiter provides the per-client request limiter.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	if cfg.Server.RateLimit == 0 {
		return &RateLimiterHandle{}, nil
	}
	return &RateLimiterHandle{Limiter: ratelimit.New(cfg.Server.RateLimit, cfg.Server.RateBurst)}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	timeout time.Duration
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server and starts it in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	st := do.MustInvoke[*StoreHandle](i)
	limiter := do.MustInvoke[*RateLimiterHandle](i)

	// The watcher only has to exist; it swaps codecs in place.
	_ = do.MustInvoke[*SchemaWatcherHandle](i)

	services := &api.Services{
		Contacts: do.MustInvoke[*service.ContactService](i),
		Fields:   do.MustInvoke[*service.FieldService](i),
	}

	handler := api.NewServer(st.Store, services, api.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		RateLimiter:    limiter.Limiter,
		TrustProxy:     cfg.Server.TrustProxy,
	}, log.Logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, timeout: cfg.Server.ShutdownTimeout}, nil
}
