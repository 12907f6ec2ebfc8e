package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dcode-github/cozycorner/cache"
	"github.com/dcode-github/cozycorner/config"
	"github.com/dcode-github/cozycorner/logger"
	"github.com/dcode-github/cozycorner/notify"
	"github.com/dcode-github/cozycorner/routes"
	"github.com/dcode-github/cozycorner/services"
	"github.com/dcode-github/cozycorner/storage"
	"github.com/dcode-github/cozycorner/store"
	"github.com/dcode-github/cozycorner/utils"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		logger.Error("Server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger.Init(cfg.Env)
	return serve(ctx, cfg)
}

// serve wires the application from cfg and blocks until ctx is cancelled or
// the listener fails. Resources opened along the way are released in
// reverse order on every return path.
func serve(ctx context.Context, cfg *config.Config) error {
	var cleanups []func()
	defer func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}()

	st, err := openStore(ctx, cfg, &cleanups)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	var searchCache services.SearchCache
	if cfg.Redis.Addr != "" {
		redisClient, err := config.InitRedis(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		sc := cache.NewSearchCache(redisClient, cfg.Search.CacheTTL, cfg.Search.InvalidatorWorkers)
		searchCache = sc
		cleanups = append(cleanups, func() {
			sc.Close()
			redisClient.Close()
		})
	}

	var publisher notify.Publisher
	if cfg.AMQP.URL != "" {
		p, err := notify.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Queue)
		if err != nil {
			return fmt.Errorf("connect to amqp broker: %w", err)
		}
		publisher = p
		cleanups = append(cleanups, func() { p.Close() })
	}

	files, err := storage.New(storage.Config(cfg.Storage))
	if err != nil {
		return fmt.Errorf("initialise file storage: %w", err)
	}
	var uploadsDir string
	if local, ok := files.(*storage.LocalStorage); ok {
		uploadsDir = local.BasePath()
	}

	hook := notify.NewDispatcher(st.Notifications, publisher)
	router := mux.NewRouter()
	routes.Routes(router, routes.Services{
		Auth:            services.NewAuthService(st.Users, utils.NewTokenManager(cfg.JWT.Key, cfg.JWT.TTL)),
		Properties:      services.NewPropertyService(st.Properties, st.Users, searchCache),
		Appointments:    services.NewAppointmentService(st.Appointments, st.Properties, hook),
		Notifications:   services.NewNotificationService(st.Notifications),
		Favorites:       services.NewFavoriteService(st.Favorites, st.Properties),
		Recommendations: services.NewRecommendationService(st.Recommendations, st.Users, st.Properties, hook),
		Contacts:        services.NewContactService(st.Contacts),
		Uploads:         services.NewUploadService(files),
		UploadsDir:      uploadsDir,
	})

	corsOptions := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	handler := corsOptions.Handler(router)

	server := &http.Server{
		Addr:           ":" + cfg.Server.Port,
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server running", "port", cfg.Server.Port, "store", cfg.Store.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Server gracefully stopped")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, cleanups *[]func()) (*store.Store, error) {
	if cfg.Store.Driver == "memory" {
		logger.Warn("Using in-memory store; data is lost on restart")
		return store.NewMemory(), nil
	}

	client, err := config.ConnectDB(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}
	*cleanups = append(*cleanups, func() { config.CloseDBConnection(context.Background(), client) })

	db := client.Database(cfg.Mongo.Database)
	if err := store.EnsureIndexes(ctx, db); err != nil {
		return nil, err
	}
	return store.NewMongo(db), nil
}
