// Package server wires configuration, storage, services and transports
// together and runs the eventhub server until it is signalled to stop.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/eventhub/internal/logging"
	"github.com/dmitrijs2005/eventhub/internal/server/auth"
	"github.com/dmitrijs2005/eventhub/internal/server/config"
	"github.com/dmitrijs2005/eventhub/internal/server/notify"
	"github.com/dmitrijs2005/eventhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/eventhub/internal/server/rest"
	"github.com/dmitrijs2005/eventhub/internal/server/services"
	"github.com/dmitrijs2005/eventhub/internal/server/storage"
	"github.com/dmitrijs2005/eventhub/internal/server/throttle"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/eventhub/internal/server/grpc"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	httpServer *rest.HTTPServer
	grpcServer *gs.HealthServer
	closers    []func() error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	app := &App{config: c, logger: logger}

	db, rm, err := repomanager.Open(c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.closers = append(app.closers, sqlDB.Close)

	if err := rm.RunMigrations(ctx, db); err != nil {
		app.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	tokens, err := auth.NewTokenService(auth.SigningConfigFrom(c))
	if err != nil {
		app.Close()
		return nil, err
	}
	hasher := auth.NewPasswordHasher(c.BcryptCost)

	var limiter throttle.LoginLimiter = throttle.Nop{}
	if c.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		app.closers = append(app.closers, rdb.Close)
		limiter = throttle.NewRedisLimiter(rdb, c.LoginMaxAttempts, c.LoginAttemptWindow)
	}

	var images storage.ImageStore = storage.Disabled{}
	if c.S3Bucket != "" {
		s3, err := storage.NewS3Store(ctx, storage.Config{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Bucket:       c.S3Bucket,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("image storage: %w", err)
		}
		images = s3
	}

	notifiers := notify.Multi{}
	if c.NATSURL != "" {
		nc, err := notify.ConnectNATS(c.NATSURL)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("nats: %w", err)
		}
		app.closers = append(app.closers, func() error { nc.Close(); return nil })
		notifiers = append(notifiers, notify.NewNATSNotifier(nc, logger))
	}
	if c.SendGridAPIKey != "" {
		notifiers = append(notifiers, notify.NewSendGridNotifier(c.SendGridAPIKey, c.MailFrom, logger))
	}

	us := services.NewUserService(db, rm, hasher, tokens, limiter, c, logger)
	es := services.NewEventService(db, rm, images, notifiers, logger)
	rs := services.NewRegistrationService(db, rm, notifiers, logger)

	app.httpServer = rest.NewHTTPServer(c.EndpointAddrHTTP, logger, us, es, rs, tokens,
		rest.RateLimit{RPS: c.RateLimitRPS, Burst: c.RateLimitBurst})
	if c.EndpointAddrGRPC != "" {
		app.grpcServer = gs.NewHealthServer(c.EndpointAddrGRPC, logger, sqlDB.PingContext)
	}

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

type runner interface {
	Run(ctx context.Context) error
}

func (app *App) start(ctx context.Context, cancelFunc context.CancelFunc, name string, r runner) {
	if err := r.Run(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
	}
}

// Run blocks until a signal arrives or one of the servers fails, then
// releases every resource NewApp acquired.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.start(ctx, cancelFunc, "http", app.httpServer)
	}()

	if app.grpcServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.start(ctx, cancelFunc, "grpc", app.grpcServer)
		}()
	}

	wg.Wait()
	app.Close()
	app.logger.Info(context.Background(), "App stopped")
}

// Close releases connections in reverse order of acquisition.
func (app *App) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
	app.closers = nil
}
