package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/pblonline/ops-dashboard/internal/api"
	"github.com/pblonline/ops-dashboard/internal/api/customers"
	"github.com/pblonline/ops-dashboard/internal/api/email"
	"github.com/pblonline/ops-dashboard/internal/api/jobs"
	mailchimpapi "github.com/pblonline/ops-dashboard/internal/api/mailchimp"
	"github.com/pblonline/ops-dashboard/internal/api/tasks"
	youtubeapi "github.com/pblonline/ops-dashboard/internal/api/youtube"
	"github.com/pblonline/ops-dashboard/internal/autosave"
	"github.com/pblonline/ops-dashboard/internal/clients/mailchimp"
	"github.com/pblonline/ops-dashboard/internal/clients/vimeo"
	"github.com/pblonline/ops-dashboard/internal/clients/youtube"
	"github.com/pblonline/ops-dashboard/internal/config"
	"github.com/pblonline/ops-dashboard/internal/llm"
	"github.com/pblonline/ops-dashboard/internal/loaders"
	"github.com/pblonline/ops-dashboard/internal/processors"
	"github.com/pblonline/ops-dashboard/internal/reconcile"
	"github.com/pblonline/ops-dashboard/internal/shared"
	"github.com/pblonline/ops-dashboard/internal/types"
	"github.com/pblonline/ops-dashboard/internal/utils"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}
	if err := utils.InitLogger(cfg.LogLevel, cfg.Debug, cfg.ServiceName); err != nil {
		panic(err)
	}
	defer utils.Zlog.Sync()

	ctx := context.Background()

	db, err := loaders.NewPostgresClient(cfg.DatabaseURL, cfg.WorkerCount*2+4, cfg.BatchSize)
	if err != nil {
		utils.Zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		utils.Zlog.Fatal("Failed to migrate database", zap.Error(err))
	}

	rules, err := reconcile.LoadRules(cfg.ReconcileRulesFile)
	if err != nil {
		utils.Zlog.Fatal("Failed to load reconcile rules", zap.Error(err))
	}
	rec := reconcile.New(rules)

	var videoStore youtubeapi.VideoStore = db
	if cfg.DatastoreProjectID != "" {
		ds, err := loaders.NewVideoDatastore(ctx, cfg.DatastoreProjectID)
		if err != nil {
			utils.Zlog.Fatal("Failed to connect to datastore", zap.Error(err))
		}
		defer ds.Close()
		videoStore = ds
		utils.Zlog.Info("Caching videos in Cloud Datastore", zap.String("project", cfg.DatastoreProjectID))
	}

	src := jobs.Sources{
		VimeoProductID: cfg.VimeoProductID,
		VimeoProduct:   rules.ActiveProduct,
		MailchimpList:  cfg.MailchimpListID,
		YouTubeChannel: cfg.YouTubeChannelID,
	}

	if cfg.VimeoAPIKey != "" {
		vc, err := vimeo.NewClient(cfg.VimeoAPIKey)
		if err != nil {
			utils.Zlog.Fatal("Failed to create Vimeo OTT client", zap.Error(err))
		}
		if cfg.VimeoProductID != "" {
			if p, err := vc.GetProduct(ctx, cfg.VimeoProductID); err != nil {
				utils.Zlog.Warn("Could not fetch Vimeo OTT product, using rules product name", zap.Error(err))
			} else if p.Name != "" {
				src.VimeoProduct = p.Name
			}
		}
		src.Vimeo = vc
	}

	var (
		mcAPI     mailchimpapi.Client
		mcReports email.ReportSource
	)
	if cfg.MailchimpAPIKey != "" {
		mc, err := mailchimp.NewClient(cfg.MailchimpAPIKey, cfg.MailchimpServerPrefix)
		if err != nil {
			utils.Zlog.Fatal("Failed to create Mailchimp client", zap.Error(err))
		}
		src.Mailchimp = mc
		mcAPI = mc
		mcReports = mc
	}

	if cfg.YouTubeAPIKey != "" {
		yt, err := youtube.NewClient(ctx, option.WithAPIKey(cfg.YouTubeAPIKey))
		if err != nil {
			utils.Zlog.Fatal("Failed to create YouTube client", zap.Error(err))
		}
		src.YouTube = yt
	}

	var gen llm.Generator
	if keys := splitKeys(cfg.GeminiAPIKey); len(keys) > 0 {
		g, err := llm.NewGeminiGenerator(ctx, keys, cfg.GeminiModel)
		if err != nil {
			utils.Zlog.Fatal("Failed to create Gemini client", zap.Error(err))
		}
		gen = g
	}

	var oauthCfg *oauth2.Config
	if cfg.GoogleOAuthClientID != "" && cfg.GoogleOAuthSecret != "" {
		oauthCfg = youtube.OAuthConfig(cfg.GoogleOAuthClientID, cfg.GoogleOAuthSecret, cfg.GoogleOAuthRedirectURL)
	}
	newEditor := func(ctx context.Context, ts oauth2.TokenSource) (youtubeapi.VideoEditor, error) {
		return youtube.NewClient(ctx, option.WithTokenSource(ts))
	}

	queueCapacity := cfg.BatchSize * cfg.WorkerCount
	if queueCapacity <= 0 {
		queueCapacity = 100
	}
	workers := jobs.NewWorkerPool(cfg.WorkerCount, queueCapacity, db)
	jobService := jobs.NewService(src, db, videoStore, db, workers)
	workers.Start()

	autosaver := autosave.New(cfg.AutosaveDebounce,
		func(pending, next types.DraftPatch) types.DraftPatch { return pending.Merge(next) },
		func(ctx context.Context, id string, p types.DraftPatch) error {
			_, err := db.UpdateDraft(ctx, id, p)
			return err
		})

	factory := processors.NewFactory(&types.Config{
		ChunkSize:    cfg.PromptChunkSize,
		ChunkOverlap: cfg.PromptChunkOverlap,
	})

	services := api.Services{
		Customers: customers.NewService(db, rec, jobService),
		Mailchimp: mailchimpapi.NewService(mcAPI, db, rec, jobService, cfg.MailchimpListID),
		Email:     email.NewService(db, autosaver, gen, mcReports, factory),
		Tasks:     tasks.NewService(db),
		YouTube:   youtubeapi.NewService(videoStore, db, jobService, gen, factory, oauthCfg, newEditor),
		Jobs:      jobService,
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(shared.Recovery(), shared.RequestLogger(), shared.CORS(cfg.AllowedOrigins))
	api.SetupRoutes(router, cfg, db, services)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.Zlog.Info("Starting server",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment),
			zap.Bool("vimeo", src.Vimeo != nil),
			zap.Bool("mailchimp", src.Mailchimp != nil),
			zap.Bool("youtube", src.YouTube != nil),
			zap.Bool("gemini", gen != nil),
			zap.Bool("googleOAuth", oauthCfg != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Zlog.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.Zlog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Zlog.Error("Server shutdown failed", zap.Error(err))
	}
	if failed := autosaver.FlushAll(shutdownCtx); failed > 0 {
		utils.Zlog.Error("Some draft autosaves were lost", zap.Int("failed", failed))
	}
	workers.Stop(shutdownCtx)
}

// splitKeys reads a comma-separated key list.
func splitKeys(raw string) []string {
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
