// Package app assembles the services, integrations and HTTP routes from the
// configuration. Optional integrations stay nil when their settings are
// absent.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mamadbah2/telelbirds/internal/config"
	"github.com/mamadbah2/telelbirds/internal/domain/models"
	"github.com/mamadbah2/telelbirds/internal/repository/mongodb"
	"github.com/mamadbah2/telelbirds/internal/repository/postgres"
	"github.com/mamadbah2/telelbirds/internal/repository/sheets"
	"github.com/mamadbah2/telelbirds/internal/server/handlers"
	"github.com/mamadbah2/telelbirds/internal/server/middleware"
	"github.com/mamadbah2/telelbirds/internal/server/router"
	"github.com/mamadbah2/telelbirds/internal/service/accounts"
	"github.com/mamadbah2/telelbirds/internal/service/blog"
	"github.com/mamadbah2/telelbirds/internal/service/core"
	"github.com/mamadbah2/telelbirds/internal/service/farm"
	"github.com/mamadbah2/telelbirds/internal/service/media"
	"github.com/mamadbah2/telelbirds/internal/service/notify"
	"github.com/mamadbah2/telelbirds/internal/service/reporting"
	"github.com/mamadbah2/telelbirds/pkg/clients/mailchimp"
	"github.com/mamadbah2/telelbirds/pkg/clients/mailer"
	redisclient "github.com/mamadbah2/telelbirds/pkg/clients/redis"
	"github.com/mamadbah2/telelbirds/pkg/clients/storage"
	"github.com/mamadbah2/telelbirds/pkg/clients/whatsapp"
)

// App holds the wired services.
type App struct {
	Config    *config.Config
	DB        *gorm.DB
	Accounts  *accounts.Service
	Blog      *blog.Service
	Core      *core.Service
	Reporting *reporting.Service
	Bucket    *storage.Bucket

	logger    *zap.Logger
	whatsapp  whatsapp.Client
	photos    handlers.PhotoUploader
	limiter   middleware.Limiter
	mongo     *mongodb.MongoDBRepository
	redis     *goredis.Client
	customers *postgres.Store[models.Customer]
}

// New connects to the database and every configured integration.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, logger: logger}

	db, err := postgres.Open(cfg.Database, logger.Named("repo.postgres"))
	if err != nil {
		return nil, err
	}
	a.DB = db

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(db); err != nil {
			a.Close(ctx)
			return nil, err
		}
		logger.Info("database schema migrated")
	}

	if err := a.connectIntegrations(ctx); err != nil {
		a.Close(ctx)
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Reporting.Timezone, err)
	}

	a.Accounts = accounts.NewService(postgres.NewAccountRepository(db), cfg.Auth, logger.Named("svc.accounts"))
	a.Blog = blog.NewService(postgres.NewBlogRepository(db), logger.Named("svc.blog"))
	a.Core = core.NewService(cfg.Site, cfg.Mailchimp.ListID, a.mailSender(), a.subscriber(), a.Blog, logger.Named("svc.core"))
	a.Reporting = reporting.NewService(postgres.NewFarmRepository(db), loc, logger.Named("svc.reporting"), a.reportingOptions(ctx)...)
	a.customers = postgres.NewStore[models.Customer](db)

	return a, nil
}

func (a *App) connectIntegrations(ctx context.Context) error {
	cfg := a.Config

	if cfg.MongoDB.URI != "" {
		repo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			return fmt.Errorf("init mongodb repository: %w", err)
		}
		a.mongo = repo
	} else {
		a.logger.Warn("MONGODB_URI missing, snapshot archive disabled")
	}

	if cfg.Redis.URL != "" {
		rdb, err := redisclient.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		a.redis = rdb
		a.limiter = middleware.NewRedisLimiter(rdb, router.DefaultRateLimit, router.DefaultRateWindow)
	} else {
		a.logger.Warn("REDIS_URL missing, rate limiting is per instance")
	}

	if cfg.Storage.Bucket != "" {
		bucket, err := storage.NewBucket(ctx, cfg.Storage, a.logger.Named("clients.storage"))
		if err != nil {
			return err
		}
		a.Bucket = bucket
		a.photos = media.NewService(bucket, a.logger.Named("svc.media"))
	} else {
		a.logger.Warn("STORAGE_BUCKET missing, photo uploads disabled")
	}

	if cfg.WhatsApp.AccessToken != "" {
		a.whatsapp = whatsapp.NewClient(cfg.WhatsApp)
	} else {
		a.logger.Warn("WHATSAPP_TOKEN missing, notifications disabled")
	}

	return nil
}

func (a *App) mailSender() mailer.Sender {
	if a.Config.SMTP.Host == "" {
		a.logger.Warn("SMTP_HOST missing, help e-mails disabled")
		return nil
	}
	return mailer.NewMailer(a.Config.SMTP)
}

func (a *App) subscriber() mailchimp.Subscriber {
	if a.Config.Mailchimp.APIKey == "" {
		a.logger.Warn("MAILCHIMP_API_KEY missing, mailing list disabled")
		return nil
	}
	client, err := mailchimp.NewClient(a.Config.Mailchimp)
	if err != nil {
		a.logger.Error("mailing list disabled", zap.Error(err))
		return nil
	}
	return client
}

func (a *App) reportingOptions(ctx context.Context) []reporting.Option {
	var opts []reporting.Option
	if a.mongo != nil {
		opts = append(opts, reporting.WithArchive(a.mongo))
	}

	if a.Config.Sheets.SpreadsheetID != "" {
		repo, err := sheets.NewGoogleSheetRepository(ctx, a.Config.Sheets, a.logger.Named("repo.sheets"))
		if err != nil {
			a.logger.Error("snapshot export disabled", zap.Error(err))
		} else {
			opts = append(opts, reporting.WithExporter(sheets.NewSnapshotExporter(repo)))
		}
	}

	if a.whatsapp != nil && a.Config.WhatsApp.ManagerPhone != "" {
		opts = append(opts, reporting.WithManagerMessages(a.whatsapp, a.Config.WhatsApp.ManagerPhone))
	}
	return opts
}

func resource[T any, PT farm.Entity[T]](name string, db *gorm.DB, photos handlers.PhotoUploader, logger *zap.Logger, preload []string, hooks ...farm.Hook[T]) handlers.Routes {
	svc := farm.NewService[T, PT](postgres.NewStore[T](db, preload...), logger.Named("svc."+name), hooks...)
	return handlers.NewResourceHandler(name, svc, photos, logger.Named("handlers."+name))
}

// Resources builds the admin handlers of every farm table and of the blog ads.
func (a *App) Resources() []handlers.Routes {
	db, log, photos := a.DB, a.logger, a.photos
	notifier := notify.NewNotifier(a.whatsapp, a.customers, a.Config.WhatsApp.VetPhone, log.Named("svc.notify"))

	return []handlers.Routes{
		resource[models.Breed]("breeds", db, photos, log, nil),
		resource[models.Breeders]("breeders", db, photos, log, []string{"Breed"}),
		resource[models.Customer]("customers", db, photos, log, nil),
		resource[models.Eggs]("eggs", db, photos, log, []string{"Customer", "Breed"}),
		resource[models.CustomerRequest]("customer-requests", db, photos, log, []string{"Eggs"}),
		resource[models.Hatchery]("hatcheries", db, photos, log, nil),
		resource[models.Incubator]("incubators", db, photos, log, []string{"Hatchery"}),
		resource[models.IncubatorCapacity]("incubator-capacities", db, photos, log, []string{"Incubator"}),
		resource[models.EggSetting]("egg-settings", db, photos, log, []string{"Incubator", "Customer", "Breeders"}),
		resource[models.Incubation]("incubations", db, photos, log, []string{"EggSetting", "Customer", "Breeders"}),
		resource[models.Candling]("candlings", db, photos, log, []string{"Incubation", "Customer", "Breeders"}),
		resource[models.Hatching]("hatchings", db, photos, log, []string{"Candling", "Customer", "Breeders"}, notifier.HatchingHook()),
		resource[models.Holding]("holdings", db, photos, log, []string{"Hatching", "Customer", "Breeders"}),
		resource[models.Chicks]("chicks", db, photos, log, []string{"Breed"}),
		resource[models.Mortality]("mortalities", db, photos, log, []string{"Chicks"}, notifier.MortalityHook()),
		resource[models.ChicksSold]("chicks-sold", db, photos, log, []string{"Chicks"}),
		resource[models.ChicksAvailable]("chicks-available", db, photos, log, []string{"Breed"}),
		resource[models.BlogAd]("blog-ads", db, photos, log, nil),
	}
}

// Router builds the HTTP engine.
func (a *App) Router() *gin.Engine {
	baseURL := "https://" + a.Config.Site.Domain
	return router.New(router.Handlers{
		Core:      handlers.NewCoreHandler(a.Core, a.Accounts, baseURL, a.logger.Named("handlers.core")),
		Blog:      handlers.NewBlogHandler(a.Blog, a.Core, baseURL, a.logger.Named("handlers.blog")),
		Accounts:  handlers.NewAccountHandler(a.Accounts, a.logger.Named("handlers.accounts")),
		Reports:   handlers.NewReportHandler(a.Reporting, a.logger.Named("handlers.reports")),
		Resources: a.Resources(),
	}, router.Deps{
		Tokens:         a.Accounts,
		Limiter:        a.limiter,
		TrustedProxies: a.Config.Server.TrustedProxies,
	}, a.logger.Named("router"))
}

// Close releases every connection. It is safe on a partially built App.
func (a *App) Close(ctx context.Context) {
	var errs []error
	if a.mongo != nil {
		errs = append(errs, a.mongo.Close(ctx))
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, postgres.Close(a.DB))
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Error("failed to close connections", zap.Error(err))
	}
}
