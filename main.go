package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"mx-social/domain/model"
	"mx-social/domain/repository"
	"mx-social/infrastructure/cache"
	"mx-social/infrastructure/clients/tiktok"
	"mx-social/infrastructure/clients/youtube"
	"mx-social/infrastructure/configuration"
	"mx-social/infrastructure/logger"
	"mx-social/infrastructure/media"
	"mx-social/infrastructure/persistence"
	"mx-social/infrastructure/pubsub"
	"mx-social/infrastructure/realtime"
	"mx-social/infrastructure/servicebus"
	httpHandler "mx-social/interfaces/http"
	"mx-social/server"
	"mx-social/usecase"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")

	app := configuration.C.App

	primaryDb, useMSSQL, err := InitiateDatabase()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Database initialization failed")
		os.Exit(1)
	}
	if useMSSQL {
		if err := persistence.EnsureSocialSchemaMSSQL(primaryDb); err != nil {
			logger.GetLogger().WithField("error", err).Error("failed ensuring social schema")
		}
	} else {
		if err := persistence.EnsureSocialSchema(primaryDb); err != nil {
			logger.GetLogger().WithField("error", err).Error("failed ensuring social schema")
		}
	}

	// Platform catalog lives in MySQL; fall back to the static catalog from
	// configuration when that database is absent.
	var platformRepository repository.IMediaPlatform
	if catalogDb, err := persistence.NewPlatformDB(); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Platform catalog database not available - using static catalog")
		platformRepository = persistence.NewStaticPlatformCatalog()
	} else {
		if err := persistence.SeedPlatforms(catalogDb); err != nil {
			logger.GetLogger().WithField("error", err).Error("failed seeding platform catalog")
		}
		platformRepository = persistence.NewMediaPlatformRepository(catalogDb)
	}

	mongoDb, err := persistence.NewMongoDb(
		configuration.C.Database.Mongo.Host,
		configuration.C.Database.Mongo.Port,
		configuration.C.Database.Mongo.User,
		configuration.C.Database.Mongo.Password,
		configuration.C.Database.Mongo.Name,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB not available - continuing without publish audit trail")
		mongoDb = nil
	} else if err := mongoDb.Ping(ctx, nil); err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB ping failed - continuing without publish audit trail")
		mongoDb = nil
	}
	publishAudit := persistence.NewPublishAuditMongo(mongoDb)

	var authStateStore repository.IAuthState
	redisClient, err := cache.NewCache(
		ctx,
		fmt.Sprintf("%s:%s", configuration.C.RedisClient.Host, configuration.C.RedisClient.Port),
		configuration.C.RedisClient.Username,
		configuration.C.RedisClient.Password,
	)
	if err != nil || redisClient == nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - keeping authorization state in memory")
		authStateStore = cache.NewMemoryAuthStateStore()
	} else {
		authStateStore = cache.NewRedisAuthStateStore(redisClient)
	}

	pubSubClient, err := pubsub.NewClient(ctx, configuration.C.Pubsub.ProjectID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("PubSub not available - continuing without post events")
		pubSubClient = nil
	}
	azServiceBusClient, err := servicebus.NewServiceBus(ctx, configuration.C.ServiceBus.Namespace)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - continuing without post events")
		azServiceBusClient = nil
	}

	var accountRepository repository.ISocialAccount
	var postRepository repository.ISocialPost
	var userRepository repository.IUser
	if useMSSQL {
		accountRepository = persistence.NewSocialAccountRepositoryMSSQL(primaryDb)
		postRepository = persistence.NewSocialPostRepositoryMSSQL(primaryDb)
		userRepository = persistence.NewUserRepositoryMSSQL(primaryDb)
	} else {
		accountRepository = persistence.NewSocialAccountRepository(primaryDb)
		postRepository = persistence.NewSocialPostRepository(primaryDb)
		userRepository = persistence.NewUserRepository(primaryDb)
	}

	mediaResolver := media.NewDiskResolver(configuration.C.Media.Dir, configuration.C.Media.PublicBaseURL)
	sharedHTTPClient := &http.Client{Timeout: 5 * time.Minute}
	adapters := usecase.AdapterRegistry{
		model.PlatformTikTok:  tiktok.NewAccount(sharedHTTPClient, accountRepository, mediaResolver),
		model.PlatformYouTube: youtube.NewAccount(sharedHTTPClient, accountRepository, mediaResolver),
	}

	postHub := realtime.NewPostHub()
	postEvents := []repository.IPostEvents{
		pubsub.NewPostEvents(pubSubClient, configuration.C.Pubsub.Topic),
		servicebus.NewPostEvents(azServiceBusClient, configuration.C.ServiceBus.Queue),
	}

	userUsecase := usecase.NewUserUsecase(userRepository, app.SecretKey)
	accountUsecase := usecase.NewAccountUsecase(platformRepository, accountRepository, authStateStore, adapters)
	publishUsecase := usecase.NewPublishUsecase(postRepository, accountRepository, platformRepository, adapters, postHub, publishAudit, postEvents...)
	reportUsecase := usecase.NewReportUsecase(accountRepository, platformRepository, adapters)
	maintenanceUsecase := usecase.NewMaintenanceUsecase(accountUsecase, publishUsecase, configuration.C.Cron.BatchSize)

	cronSpec := configuration.C.Cron.Spec
	if cronSpec == "" {
		cronSpec = "@every 5m"
	}
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cronSpec, func() {
		sweepCtx, cancelSweep := context.WithTimeout(ctx, 4*time.Minute)
		defer cancelSweep()
		if err := maintenanceUsecase.RunSweep(sweepCtx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Maintenance sweep failed")
		}
	}); err != nil {
		logger.GetLogger().WithField("error", err).Error("Invalid cron spec - maintenance sweep disabled")
	} else {
		scheduler.Start()
		defer scheduler.Stop()
	}

	userHandler := httpHandler.NewUserHandler(userUsecase)
	accountHandler := httpHandler.NewAccountHandler(accountUsecase)
	postHandler := httpHandler.NewPostHandler(publishUsecase)
	reportHandler := httpHandler.NewReportHandler(reportUsecase)

	router := server.InitiateRouter(
		userHandler,
		accountHandler,
		postHandler,
		reportHandler,
		func(c *gin.Context) { postHub.Serve(c) },
		userRepository,
	)

	port := app.Port
	logger.GetLogger().WithFields(map[string]interface{}{"port": port, "tls": app.TLSEnabled}).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}
		if app.TLSEnabled {
			cert := app.TLSCertFile
			key := app.TLSKeyFile
			if cert == "" || key == "" {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
			} else {
				if err := httpServer.ListenAndServeTLS(cert, key); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			}
		}
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

// InitiateDatabase opens the primary relational store. The second return
// reports whether it is MSSQL so callers can pick matching repositories.
func InitiateDatabase() (*sql.DB, bool, error) {
	env := os.Getenv("ENV")
	if v := os.Getenv("DB_VENDOR"); v == "mssql" || env == "production" || env == "prod" {
		mssql, err := persistence.NewMSSQLDB()
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Cannot connect to MSSQL")
			return nil, false, err
		}
		return mssql, true, nil
	}

	postgres, err := persistence.NewPostgreSQLDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot connect to PostgreSQL")
		return nil, false, err
	}
	return postgres, false, nil
}
