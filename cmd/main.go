package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payment-collect-visa/internal/clients"
	"payment-collect-visa/internal/config"
	"payment-collect-visa/internal/currency"
	"payment-collect-visa/internal/debliqc"
	"payment-collect-visa/internal/repository"
	"payment-collect-visa/internal/service"
	"payment-collect-visa/internal/transport/auth"
	"payment-collect-visa/internal/transport/rest"
	"payment-collect-visa/internal/transport/websocket"
	"payment-collect-visa/pkg/database/postgres"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system env or defaults")
	}

	// top-level context, cancelled on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := config.Load()

	db := mustInitPostgres(cfg.Postgres)
	defer postgres.Close(db)

	redisClient := mustInitRedis(cfg.Redis)
	defer redisClient.Close()

	var (
		files        service.FileStore
		localStorage *clients.StorageClient
	)
	switch cfg.Storage.Driver {
	case "s3":
		s3Client, err := clients.NewS3Client(ctx, clients.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Bucket:          cfg.S3.Bucket,
			UseSSL:          cfg.S3.UseSSL,
			Region:          cfg.S3.Region,
			Prefix:          cfg.S3.Prefix,
			URLTTL:          time.Duration(cfg.S3.URLTTLMinutes) * time.Minute,
		})
		if err != nil {
			log.Fatalf("s3 init error: %v", err)
		}
		files = s3Client
	case "local", "":
		storageClient, err := clients.NewLocalStorage(cfg.Storage.Dir, cfg.Storage.PublicPrefix, cfg.Storage.ExternalURL)
		if err != nil {
			log.Fatalf("storage init error: %v", err)
		}
		files = storageClient
		localStorage = storageClient
	default:
		log.Fatalf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}

	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)
	wsClient := clients.NewWebSocketClient(wsHub)

	invoiceRepo := repository.NewInvoiceRepository(db)
	configRepo := repository.NewConfigurationRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	collectRepo := repository.NewCollectRepository(db)
	tokenRepo := repository.NewPersonalAccessTokenRepository(db)

	visa := service.NewVisaPayMode(
		invoiceRepo,
		configRepo,
		transactionRepo,
		collectRepo,
		files,
		currency.NewRounder(),
		service.VisaOptions{
			CompanyID:     cfg.Collect.CompanyID,
			Layout:        debliqc.Layout{Separator: cfg.Collect.Separator, EOL: cfg.Collect.EOL},
			ReturnCharset: cfg.Collect.ReturnCharset,
		},
	)
	collectSvc := service.NewCollectService(
		redisClient,
		wsClient,
		time.Duration(cfg.Collect.StatusTTL)*time.Minute,
		visa,
	)

	sanctumMiddleware := auth.SanctumMiddleware(tokenRepo)

	handler := rest.NewHandler(collectSvc, collectSvc)
	router := handler.InitRouterWithAuth(sanctumMiddleware)

	// public root router: /files, /health and /metrics stay open, the rest goes through auth
	root := chi.NewRouter()

	if localStorage != nil {
		root.Get(cfg.Storage.PublicPrefix+"/{file}", func(w http.ResponseWriter, r *http.Request) {
			file := chi.URLParam(r, "file")
			path, err := localStorage.Path(file)
			if err != nil {
				http.NotFound(w, r)
				return
			}
			if _, err := os.Stat(path); err != nil {
				if os.IsNotExist(err) {
					http.NotFound(w, r)
					return
				}
				http.Error(w, "failed to access file", http.StatusInternalServerError)
				return
			}

			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", clients.OriginalName(file)))
			http.ServeFile(w, r, path)
		})
	}

	root.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"status":"ok","ws_users":%d}`, wsHub.UserCount())
	})

	root.Handle("/metrics", promhttp.Handler())

	router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		userID, err := auth.GetUserID(r.Context())
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		log.Printf("[WS] connected: user_id=%d", userID)
		wsHub.HandleWebSocket(w, r, userID)
	})

	root.Mount("/", router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      withCORS(root),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on :%s\n", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			srvErr <- err
			return
		}
		srvErr <- nil
	}()

	if localStorage != nil && cfg.Storage.CleanupAfterHours > 0 {
		maxAge := time.Duration(cfg.Storage.CleanupAfterHours) * time.Hour
		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := localStorage.CleanupOlderThan(maxAge); err != nil {
						log.Printf("storage cleanup error: %v", err)
					}
				}
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-srvErr:
		if err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	case sig := <-stop:
		log.Printf("Shutdown signal received: %v", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server Shutdown error: %v", err)
		}

		// running collects still write to postgres and redis
		collectSvc.Wait()
		cancel()

		log.Println("Shutdown complete")
	}
}

func mustInitPostgres(cfg config.PostgresConfig) *sql.DB {
	db, err := postgres.NewPostgresConnection(postgres.ConnectionInfo{
		Host:         cfg.Host,
		Port:         cfg.Port,
		Username:     cfg.User,
		DBName:       cfg.DBName,
		SSLMode:      cfg.SSLMode,
		Password:     cfg.Password,
		MaxOpenConns: cfg.MaxOpenConns,
	})
	if err != nil {
		log.Fatalf("postgres init error: %v", err)
	}
	return db
}

func mustInitRedis(cfg config.RedisConfig) *clients.RedisClient {
	client, err := clients.NewRedisClient(clients.RedisConfig{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		MaxRetries:  cfg.MaxRetries,
		DialTimeout: time.Duration(cfg.DialTimeout) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		Prefix:      cfg.Prefix,
	})
	if err != nil {
		log.Fatalf("redis init error: %v", err)
	}
	return client
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")

			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
