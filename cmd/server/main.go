// @title                       Academy Admin API
// @version                     1.0
// @description                 Admin area backend: authorization gate, admin elevation, activity notifications and site content.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/circuitcraft/academy-admin/internal/api"
	"github.com/circuitcraft/academy-admin/internal/core/domain"
	"github.com/circuitcraft/academy-admin/internal/core/ports"
	"github.com/circuitcraft/academy-admin/internal/core/service"
	"github.com/circuitcraft/academy-admin/internal/infrastructure/config"
	mongostore "github.com/circuitcraft/academy-admin/internal/infrastructure/db/mongo"
	redisstore "github.com/circuitcraft/academy-admin/internal/infrastructure/db/redis"
	opshttp "github.com/circuitcraft/academy-admin/internal/infrastructure/http"
	"github.com/circuitcraft/academy-admin/internal/infrastructure/identity"
	"github.com/circuitcraft/academy-admin/internal/infrastructure/mail"
	"github.com/circuitcraft/academy-admin/internal/infrastructure/queue"
	"github.com/circuitcraft/academy-admin/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "academy-admin",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	// --- Stores ---
	profiles := mongostore.NewProfileRepository(db)
	identities := mongostore.NewIdentityRepository(db)
	activity := mongostore.NewActivityRepository(db)
	catalog := mongostore.NewCatalogRepository(db)

	courses, err := mongostore.NewContentRepository[*domain.Course](db, domain.ContentCourses)
	if err != nil {
		return err
	}
	workshops, err := mongostore.NewContentRepository[*domain.Workshop](db, domain.ContentWorkshops)
	if err != nil {
		return err
	}
	electronics, err := mongostore.NewContentRepository[*domain.Electronic](db, domain.ContentElectronics)
	if err != nil {
		return err
	}
	projects, err := mongostore.NewContentRepository[*domain.Project](db, domain.ContentProjects)
	if err != nil {
		return err
	}

	for _, ix := range []interface{ EnsureIndexes(context.Context) error }{
		profiles, identities, activity, courses, workshops, electronics, projects,
	} {
		if err := ix.EnsureIndexes(ctx); err != nil {
			return err
		}
	}

	// --- Mail ---
	var sender mail.Sender = mail.NewLogSender(logger.Component("mail"))
	if cfg.Mail.ResendAPIKey != "" {
		sender = mail.NewResendSender(cfg.Mail.ResendAPIKey, cfg.Mail.From, logger.Component("mail"))
	}
	mailer, err := mail.NewConfirmationMailer(sender, cfg.Mail.ConfirmURL)
	if err != nil {
		return err
	}

	// --- Session events: redis pub/sub → sharded local dispatch ---
	dispatcher := queue.NewDispatcher(cfg.SessionWorkers, logger.Component("dispatcher"))
	dispatcher.Start(ctx)
	bus := redisstore.NewSessionEventBus(rdb, logger.Component("session-bus"))

	resolver := service.NewProfileResolver(profiles, logger.Component("profiles"))
	provider := identity.NewProvider(
		identities,
		redisstore.NewRevocationStore(rdb),
		bus,
		dispatcher,
		identity.Options{
			Secret:      cfg.JWTSecret,
			TTL:         cfg.SessionTTL,
			AutoConfirm: cfg.AuthAutoConfirm,
			ConfirmTTL:  cfg.Mail.ConfirmTTL,
			Provisioner: resolver,
			Mailer:      mailer,
		},
		logger.Component("identity"),
	)

	// --- Services ---
	access := service.NewAccessService(provider, resolver, logger.Component("access"))
	elevation := service.NewElevationService(profiles, provider, logger.Component("elevation"))

	if err := bootstrapAdmin(ctx, cfg.Bootstrap, elevation, log); err != nil {
		return err
	}

	e := api.NewRouter(api.Dependencies{
		Access:    access,
		Elevation: elevation,
		Notifications: service.NewNotificationService(service.NotificationSources{
			Contacts:      activity,
			Registrations: activity,
			Enrollments:   activity,
			Workshops:     catalog,
			Courses:       catalog,
			Profiles:      profiles,
		}, logger.Component("notifications")),
		Settings:       service.NewSettingsService(profiles, provider, logger.Component("settings")),
		Watchers:       service.NewGateFactory(access, provider, logger.Component("gate")),
		Courses:        service.NewContentService[*domain.Course](domain.ContentCourses, courses, logger.Component("content")),
		Workshops:      service.NewContentService[*domain.Workshop](domain.ContentWorkshops, workshops, logger.Component("content")),
		Electronics:    service.NewContentService[*domain.Electronic](domain.ContentElectronics, electronics, logger.Component("content")),
		Projects:       service.NewContentService[*domain.Project](domain.ContentProjects, projects, logger.Component("content")),
		LoginRateLimit: cfg.LoginRateLimit,
		Log:            logger.Component("http"),
	})
	opshttp.RegisterOps(e, db, rdb)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return bus.Run(gctx, dispatcher.Enqueue)
	})

	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// bootstrapAdmin creates the configured first admin when no admin exists.
func bootstrapAdmin(ctx context.Context, cfg config.BootstrapConfig, elevation ports.ElevationService, log zerolog.Logger) error {
	if !cfg.Enabled() {
		return nil
	}
	res, err := elevation.Bootstrap(ctx, ports.AdminGrantRequest{
		Email:    cfg.Email,
		FullName: cfg.Name,
		Password: cfg.Password,
	})
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if res == nil {
		log.Debug().Msg("admin exists, bootstrap skipped")
		return nil
	}
	log.Info().Str("email", res.Email).Str("outcome", string(res.Outcome)).Msg("bootstrap admin ready")
	return nil
}
