package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "dashboard/internal/config"
	intdb "dashboard/internal/db"
	router "dashboard/internal/http"
	"dashboard/internal/repositories"
	"dashboard/internal/services"
	"dashboard/internal/store"
	"dashboard/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}
	log, err := utils.InitLogger(gin.Mode() != gin.ReleaseMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if err := env.Validate(); err != nil {
		return fmt.Errorf("invalid environment: %w", err)
	}

	activityStore, err := openActivityStore(ctx, env)
	if err != nil {
		return err
	}
	defer intconfig.CloseDB()

	viewStore, err := intconfig.NewViewStore(env.ViewsFile)
	if err != nil {
		return err
	}
	viewStore.EnableHotReload()

	activity := services.NewActivityService(activityStore)
	client := store.NewClient(env.StoreAPIURL, env.StoreAPIToken, env.StoreAPITimeout)
	views := services.NewViewService(client, viewStore.Current, activity, env.ViewIdleTimeout)
	viewStore.Subscribe(views.DefinitionsReloaded)
	defer views.CloseAll()

	// Router (Gin engine)
	r := router.NewRouter(env, views, activity)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      env.StoreAPITimeout + 20*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweepLoop(sweepCtx, views, env.ViewIdleTimeout)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", env.AppAddr), zap.String("store_api", env.StoreAPIURL))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server stopped cleanly")
	return nil
}

// openActivityStore connects the activity database. Driver "none" keeps the
// log in memory and returns a nil store.
func openActivityStore(ctx context.Context, env intconfig.Env) (services.ActivityStore, error) {
	db, err := intconfig.ConnectDB(env)
	if err != nil {
		return nil, fmt.Errorf("connect activity store: %w", err)
	}
	if db == nil {
		utils.LogEvent("", "db", "connect", "no database configured, activity kept in memory")
		return nil, nil
	}
	repo := repositories.ActivityRepository{DB: db, Dialect: intdb.Dialect(env.DBDriver)}
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func sweepLoop(ctx context.Context, views *services.ViewService, idle time.Duration) {
	every := idle / 4
	if every < time.Minute {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := views.Sweep(); n > 0 {
				utils.LogEvent("", "views", "sweep", "idle views closed", zap.Int("closed", n), zap.Int("mounted", views.Count()))
			}
		}
	}
}
