package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/cart"
	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/coupon"
	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/order"
	"github.com/shubham90-developer/Total-Health-sub003/internal/handler"
	"github.com/shubham90-developer/Total-Health-sub003/pkg/health"
	"github.com/shubham90-developer/Total-Health-sub003/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("storage", cfg.Storage.Driver),
	)

	st, err := openStores(ctx, lg, cfg.Storage)
	if err != nil {
		return errors.Wrap(err, "open storage")
	}
	defer st.Close()

	healthSvc := health.New()
	if st.Ping != nil {
		healthSvc.AddReadinessCheck(cfg.Storage.Driver, st.Ping, health.WithTimeout(5*time.Second))
	}
	healthSvc.AddLivenessCheck("goroutines", health.GoroutineCountCheck(10000))
	healthSvc.AddLivenessCheck("gc-pause", health.GCMaxPauseCheck(time.Second))
	healthSvc.Start(ctx, 10*time.Second)
	defer healthSvc.Stop()

	tp := m.TracerProvider()
	cartSvc := cart.NewService(st.Carts, st.Menu,
		cart.WithMaxWriteAttempts(cfg.Cart.MaxWriteAttempts),
		cart.WithTracerProvider(tp),
	)
	couponSvc := coupon.NewService(st.Coupons, cartSvc, st.Menu, tp)
	orderSvc := order.NewService(cartSvc, couponSvc, st.Orders)

	h, err := handler.New(handler.Config{
		JWTSecret:    []byte(cfg.Auth.JWTSecret),
		APIKeyPepper: []byte(cfg.Auth.APIKeyPepper),
	}, handler.Deps{
		Menu:    st.Menu,
		Carts:   cartSvc,
		Coupons: couponSvc,
		Orders:  orderSvc,
		APIKeys: st.APIKeys,
		Health:  healthSvc,
		Meter:   m.MeterProvider(),
	})
	if err != nil {
		return errors.Wrap(err, "create handler")
	}
	router := h.Router()
	routeFinder := httpmiddleware.MakeRouteFinder(router)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(router,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowCredentials: cfg.CORS.AllowCredentials,
				ExposeHeaders:    []string{httpmiddleware.RequestIDHeader, "Retry-After"},
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:     cfg.RateLimit.Max,
				Window:  cfg.RateLimit.Window,
				KeyFunc: httpmiddleware.HeaderOrIP("Authorization"),
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("restro-api", routeFinder, m),
			httpmiddleware.LogRequests(routeFinder),
			httpmiddleware.Labeler(routeFinder),
		),
	}
	healthSvc.SetReady(true)

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
