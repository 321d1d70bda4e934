package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mx-social/domain/model"
	"mx-social/domain/repository"
	"mx-social/infrastructure/cache"
	"mx-social/infrastructure/clients/tiktok"
	"mx-social/infrastructure/clients/youtube"
	"mx-social/infrastructure/configuration"
	"mx-social/infrastructure/logger"
	"mx-social/infrastructure/media"
	"mx-social/infrastructure/persistence"
	"mx-social/infrastructure/realtime"
	"mx-social/usecase"
)

var rootCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one maintenance sweep (token refresh + due post publishing)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSweep(cmd.Context())
	},
}

func init() {
	configuration.LoadEnvFromFile("config.env", ".env")
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.GetLogger().WithField("error", err).Error("Sweep failed")
		os.Exit(1)
	}
	fmt.Println("Cron run successfully!")
}

func runSweep(ctx context.Context) error {
	db, useMSSQL, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	var accountRepository repository.ISocialAccount
	var postRepository repository.ISocialPost
	if useMSSQL {
		accountRepository = persistence.NewSocialAccountRepositoryMSSQL(db)
		postRepository = persistence.NewSocialPostRepositoryMSSQL(db)
	} else {
		accountRepository = persistence.NewSocialAccountRepository(db)
		postRepository = persistence.NewSocialPostRepository(db)
	}

	var platformRepository repository.IMediaPlatform
	if catalogDb, err := persistence.NewPlatformDB(); err != nil {
		platformRepository = persistence.NewStaticPlatformCatalog()
	} else {
		platformRepository = persistence.NewMediaPlatformRepository(catalogDb)
	}

	mediaResolver := media.NewDiskResolver(configuration.C.Media.Dir, configuration.C.Media.PublicBaseURL)
	httpClient := &http.Client{Timeout: 5 * time.Minute}
	adapters := usecase.AdapterRegistry{
		model.PlatformTikTok:  tiktok.NewAccount(httpClient, accountRepository, mediaResolver),
		model.PlatformYouTube: youtube.NewAccount(httpClient, accountRepository, mediaResolver),
	}

	accountUsecase := usecase.NewAccountUsecase(platformRepository, accountRepository, cache.NewMemoryAuthStateStore(), adapters)
	publishUsecase := usecase.NewPublishUsecase(postRepository, accountRepository, platformRepository, adapters, realtime.NewPostHub(), persistence.NewPublishAuditMongo(nil))
	maintenance := usecase.NewMaintenanceUsecase(accountUsecase, publishUsecase, configuration.C.Cron.BatchSize)

	return maintenance.RunSweep(ctx)
}

func openDatabase() (*sql.DB, bool, error) {
	env := os.Getenv("ENV")
	if v := os.Getenv("DB_VENDOR"); v == "mssql" || env == "production" || env == "prod" {
		db, err := persistence.NewMSSQLDB()
		return db, true, err
	}
	db, err := persistence.NewPostgreSQLDB()
	return db, false, err
}
