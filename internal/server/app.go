// Package server wires the authkeeper components together and runs the
// gRPC and metrics listeners until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/avatars"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/mailer"
	"github.com/dmitrijs2005/authkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/authkeeper/internal/server/grpc"
)

// runner is a long-lived listener stopped by canceling its context.
type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	runners []runner
	// closers run in order after every runner has returned.
	closers []func()
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	reg := metrics.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("metrics init error: %w", err)
	}

	store, err := avatars.NewS3Store(ctx, avatars.S3Options{
		Region:        c.S3Region,
		AccessKey:     c.S3RootUser,
		SecretKey:     c.S3RootPassword,
		BaseEndpoint:  c.S3BaseEndpoint,
		Bucket:        c.S3Bucket,
		PublicBaseURL: c.AvatarPublicBaseURL,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	sender := mailer.NewSMTPSender(c.SMTPHost, c.SMTPPort, c.EmailSender, c.SMTPUser, c.SMTPPassword, c.SMTPSSL)
	dispatcher := mailer.NewDispatcher(sender, c.MailWorkers, c.MailQueueSize, logger)
	dispatcher.OnResult(m.MailResult)

	ss := newSessionService(db, rm, c, dispatcher, avatars.NewCopier(store, nil), m, logger)

	app := &App{
		config:  c,
		logger:  logger,
		runners: []runner{gs.NewGRPCServer(c.EndpointAddrGRPC, logger, ss, gs.WithCallerSecret(c.OAuthCallerSecret))},
		closers: []func(){dispatcher.Close, func() { _ = db.Close() }},
	}
	if c.MetricsAddr != "" {
		app.runners = append(app.runners, metrics.NewServer(c.MetricsAddr, reg, logger))
	}

	return app, nil
}

func newSessionService(db *sql.DB, rm repomanager.RepositoryManager, c *config.Config, mq services.MailQueue,
	ac services.AvatarCopier, rec services.Recorder, logger logging.Logger) *services.SessionService {

	tokens := services.NewTokenIssuer(db, rm, c, logger)
	verifications := services.NewVerificationManager(db, rm, tokens, mq, c, logger)
	oauth := services.NewOAuthResolver(db, rm, ac, logger)

	return services.NewSessionService(db, rm, tokens, verifications, oauth, c, rec, logger)
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

// Run blocks until ctx is canceled, a signal arrives or a listener fails.
// The first listener error is returned.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	g, gctx := errgroup.WithContext(ctx)
	for _, r := range app.runners {
		r := r
		g.Go(func() error { return r.Run(gctx) })
	}

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "listener failed", "error", err)
	}

	for _, closeFn := range app.closers {
		closeFn()
	}

	app.logger.Info(ctx, "App stopped")
	return err
}
