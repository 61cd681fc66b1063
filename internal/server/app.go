// Package server initializes and runs the ventas HTTP service.
// It opens the database, applies migrations, selects the lockout backend and
// notification sinks, and serves until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/ventas/internal/logging"
	"github.com/dmitrijs2005/ventas/internal/server/config"
	"github.com/dmitrijs2005/ventas/internal/server/httpapi"
	"github.com/dmitrijs2005/ventas/internal/server/lockout"
	"github.com/dmitrijs2005/ventas/internal/server/notify"
	"github.com/dmitrijs2005/ventas/internal/server/photos"
	"github.com/dmitrijs2005/ventas/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/ventas/internal/server/retryx"
	"github.com/dmitrijs2005/ventas/internal/server/services"
	"github.com/dmitrijs2005/ventas/internal/server/validation"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	dispatcher *notify.Dispatcher
	server     *httpapi.Server
	closers    []func()
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	app := &App{config: c, logger: logger}

	db, err := OpenDB(ctx, c.DatabaseDSN, c.ExternalCallTimeout)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.db = db
	app.closers = append(app.closers, func() { _ = db.Close() })

	rm := repomanager.NewPostgresRepositoryManager()
	if c.RunMigrations {
		if err := rm.RunMigrations(ctx, db); err != nil {
			app.close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		logger.Info(ctx, "migrations applied")
	}

	store, closeStore, err := OpenLockoutStore(ctx, c, db)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("lockout store: %w", err)
	}
	app.closers = append(app.closers, closeStore)
	logger.Info(ctx, "lockout backend ready", "backend", c.LockoutBackend)

	policy := retryx.Policy{Timeout: c.ExternalCallTimeout, Retries: c.RetryAttempts, BaseDelay: c.RetryBaseDelay}

	photoStore, err := photos.NewS3Store(ctx, photos.Settings{
		Endpoint:      c.S3BaseEndpoint,
		Region:        c.S3Region,
		Bucket:        c.S3Bucket,
		AccessKey:     c.S3AccessKey,
		SecretKey:     c.S3SecretKey,
		PublicBaseURL: c.S3PublicBaseURL,
	}, policy, logger)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("photo storage: %w", err)
	}

	notifier, closeNotifier := buildNotifier(c, logger)
	app.closers = append(app.closers, closeNotifier)
	app.dispatcher = notify.NewDispatcher(notifier, c.ExternalCallTimeout, logger)

	tracker := lockout.NewTracker(store)
	pipeline := validation.NewPipeline(tracker, rm.Reference(db), policy, logger)
	saleService := services.NewSaleService(db, rm, pipeline, tracker, photoStore, app.dispatcher, c.ExternalCallTimeout, logger)

	handler := httpapi.NewHandler(saleService, c.MaxPhotoBytes, logger)
	router := httpapi.NewRouter(handler, httpapi.RouterOptions{
		APIKey:         c.APIKey,
		AllowedOrigins: c.CORSAllowedOrigins,
		RequestTimeout: requestTimeout(c),
	})
	app.server = httpapi.NewServer(c.ServerAddr, router, logger)

	if c.APIKey == "" {
		logger.Warn(ctx, "API_KEY is empty, GET /sales will reject every request")
	}

	return app, nil
}

// requestTimeout leaves room for the lookups, the reset, the upload and the insert.
func requestTimeout(c *config.Config) time.Duration {
	return time.Duration(c.RetryAttempts+1)*c.ExternalCallTimeout*3 + 2*c.ExternalCallTimeout
}

func buildNotifier(c *config.Config, logger logging.Logger) (notify.Notifier, func()) {
	sinks := notify.Fanout{notify.NewLogNotifier(logger)}
	closeFn := func() {}

	if email := notify.NewEmailNotifier(notify.EmailSettings{
		Host:       c.SMTPHost,
		Port:       c.SMTPPort,
		Username:   c.SMTPUsername,
		Password:   c.SMTPPassword,
		From:       c.SMTPFrom,
		To:         c.AlertRecipient,
		Encryption: c.SMTPEncryption,
	}); email != nil {
		sinks = append(sinks, email)
	}

	if c.AMQPURL != "" {
		producer, err := notify.NewAMQPNotifier(c.AMQPURL, c.AMQPExchange, logger)
		if err != nil {
			// broker outages must not keep the service down
			logger.Warn(context.Background(), "RabbitMQ unavailable, lockout events will only be logged", "error", err)
		} else {
			sinks = append(sinks, producer)
			closeFn = producer.Close
		}
	}

	return sinks, closeFn
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

func (app *App) close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		app.closers[i]()
	}
}

// Run serves HTTP until a signal arrives, then drains pending notifications
// and releases resources.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	var (
		wg     sync.WaitGroup
		runErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			runErr = err
			cancelFunc()
		}
	}()
	wg.Wait()

	drainCtx, cancel := context.WithTimeout(context.Background(), app.config.ExternalCallTimeout*2)
	defer cancel()
	if err := app.dispatcher.Close(drainCtx); err != nil {
		app.logger.Warn(drainCtx, "pending notifications dropped", "error", err)
	}
	app.close()

	app.logger.Info(context.Background(), "App stopped")
	return runErr
}
