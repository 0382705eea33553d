package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ayush/smart-research-assistant/internal/config"
	"github.com/ayush/smart-research-assistant/internal/middleware"
	"github.com/ayush/smart-research-assistant/internal/research"
	"github.com/ayush/smart-research-assistant/internal/session"
	"github.com/ayush/smart-research-assistant/internal/store"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), a.cfg, a.log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// ── Sessions ─────────────────────────────────────────────
	var sessionStore session.Store
	switch cfg.SessionBackend {
	case config.SessionRedis:
		rdb, err := store.NewRedisClient(ctx, store.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		sessionStore = session.NewRedisStore(rdb, cfg.SessionTTL)
	default:
		sessionStore = session.NewMemoryStore(cfg.SessionTTL)
	}

	// ── MinIO ────────────────────────────────────────────────
	var (
		fileStore      research.FileStore
		sessionArchive session.Archive
	)
	if cfg.ArchiveEnabled() {
		archive, err := store.NewExportArchive(ctx, store.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,

			ExpirePrefix: research.ExportPrefix,
			ExpireAfter:  cfg.SessionTTL,
		})
		if err != nil {
			return err
		}
		fileStore, sessionArchive = archive, archive
	}

	// ── Generation ───────────────────────────────────────────
	gen, err := newGenerator(ctx, cfg, log)
	if err != nil {
		return err
	}

	// ── Handlers ─────────────────────────────────────────────
	sessions := session.NewManager(sessionStore, cfg.InitialCredits, cfg.SessionTTL, sessionArchive, log)
	svc := research.NewService(gen, cfg.CostPerReport, log)
	researchHandler := research.NewHandler(svc, sessions, fileStore, cfg.MaxUploadBytes(), log)
	sessionHandler := session.NewHandler(sessions)

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(cfg, log, sessions, sessionHandler, researchHandler),
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("backend listening",
			zap.String("addr", srv.Addr),
			zap.String("provider", cfg.LLMProvider),
			zap.String("sessions", cfg.SessionBackend),
			zap.Bool("archive", cfg.ArchiveEnabled()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

func newRouter(cfg *config.Config, log *zap.Logger, sessions *session.Manager, sessionHandler *session.Handler, researchHandler *research.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Origins(),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Session-scoped routes
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Session(sessions))

		r.Get("/session", sessionHandler.Show)
		r.Post("/session", sessionHandler.Reset)
		r.Delete("/session", sessionHandler.Destroy)

		r.Get("/live-feed", researchHandler.ListLiveFeed)
		r.Post("/live-feed", researchHandler.CreateLiveFeed)

		r.Post("/reports", researchHandler.CreateReport)
		r.Get("/reports/last", researchHandler.LastReport)
		r.Get("/reports/last/{format}", researchHandler.Export)

		r.Get("/billing", researchHandler.Billing)
	})
	return r
}
