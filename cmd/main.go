package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"tallermatch/internal/backend"
	"tallermatch/internal/cache"
	"tallermatch/internal/cart"
	"tallermatch/internal/config"
	"tallermatch/internal/handlers"
	"tallermatch/internal/models"
	"tallermatch/internal/realtime"
	"tallermatch/internal/services"
	"tallermatch/internal/session"
	"tallermatch/internal/storage"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger

	requestHandler    *handlers.RequestHandler
	cartHandler       *handlers.CartHandler
	settlementHandler *handlers.SettlementHandler
	eventsHandler     *handlers.EventsHandler
	healthHandler     *handlers.HealthHandler

	relayHub  *RelayHub
	cartStore *cart.Store
	router    *realtime.Router
	sessions  *session.Manager
}

// appLogger adapts the two stdlib loggers to the Infof/Errorf interfaces
// the internal packages accept.
type appLogger struct {
	info *log.Logger
	err  *log.Logger
}

func (l appLogger) Infof(format string, args ...interface{})  { l.info.Printf(format, args...) }
func (l appLogger) Errorf(format string, args ...interface{}) { l.err.Printf(format, args...) }

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, continuing with system environment")
	}

	cfg := config.LoadConfig()

	addr := flag.String("addr", cfg.Server.Address, "HTTP network address")
	flag.Parse()
	if *addr == "" {
		*addr = ":8090"
	}

	infoLog := log.New(os.Stdout, "INFO\t", log.Ldate|log.Ltime)
	errorLog := log.New(os.Stderr, "ERROR\t", log.Ldate|log.Ltime|log.Lshortfile)
	logger := appLogger{info: infoLog, err: errorLog}

	kv, db, err := openKV(cfg)
	if err != nil {
		errorLog.Fatal(err)
	}
	if db != nil {
		defer db.Close()
	}

	var cacheStore cache.Store
	var inspector handlers.CacheInspector
	switch cfg.Cache.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		cacheStore = cache.NewRedisStore(rdb, "tallermatch", logger)
	default:
		mem := cache.NewMemoryStore()
		cacheStore = mem
		inspector = mem
	}

	sessions, err := session.NewManager(cfg.Session.SigningKey)
	if err != nil {
		errorLog.Fatal(err)
	}

	api := backend.NewClient(&http.Client{Timeout: 15 * time.Second}, cfg.Backend.BaseURL)

	svc := services.NewRequestService(api, cacheStore, logger, services.TTLs{
		All:    config.Duration(cfg.Cache.AllTTL, 5*time.Minute),
		Active: config.Duration(cfg.Cache.ActiveTTL, 2*time.Minute),
		Detail: config.Duration(cfg.Cache.DetailTTL, 2*time.Minute),
	})

	debounce := time.Duration(cfg.Cart.DebounceMS) * time.Millisecond
	cartStore := cart.NewStore(kv, logger, debounce)
	if err := cartStore.Load(context.Background()); err != nil {
		errorLog.Fatal(err)
	}

	router := realtime.NewRouter(cfg.Backend.WSURL, svc, logger, 0)

	relayHub := NewRelayHub()
	go relayHub.Run()

	app := &application{
		errorLog:          errorLog,
		infoLog:           infoLog,
		requestHandler:    &handlers.RequestHandler{Service: svc},
		cartHandler:       &handlers.CartHandler{Store: cartStore},
		settlementHandler: &handlers.SettlementHandler{},
		eventsHandler:     &handlers.EventsHandler{Router: router},
		healthHandler:     &handlers.HealthHandler{Router: router, Cache: inspector},
		relayHub:          relayHub,
		cartStore:         cartStore,
		router:            router,
		sessions:          sessions,
	}

	router.Subscribe(models.EventNewOffer, relayHub.Broadcast)
	router.Subscribe(models.EventRequestAwarded, relayHub.Broadcast)
	if err := router.Connect(context.Background()); err != nil {
		// Cached reads and the cart still work while the push channel is
		// down; /health exposes the error.
		errorLog.Printf("push channel unavailable: %v", err)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:         *addr,
		ErrorLog:     errorLog,
		Handler:      c.Handler(app.routes()),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		infoLog.Printf("Starting server on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errorLog.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	infoLog.Println("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)

	router.Close()
	cartStore.Close(ctx)
}

// openKV picks the cart blob store from config. The SQL profile returns
// the *sql.DB so main can close it on exit.
func openKV(cfg config.Config) (storage.KV, *sql.DB, error) {
	switch cfg.Storage.Backend {
	case "s3":
		kv, err := storage.NewS3KV(storage.S3Config{
			AccessKey: cfg.Storage.S3.AccessKey,
			SecretKey: cfg.Storage.S3.SecretKey,
			Bucket:    cfg.Storage.S3.Bucket,
			Region:    cfg.Storage.S3.Region,
			Endpoint:  cfg.Storage.S3.Endpoint,
			Prefix:    cfg.Storage.S3.Prefix,
		})
		return kv, nil, err
	default:
		db, err := sql.Open(cfg.Storage.Driver, cfg.Storage.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err = db.Ping(); err != nil {
			return nil, nil, err
		}
		kv, err := storage.NewSQLKV(db, cfg.Storage.Driver)
		if err != nil {
			return nil, nil, err
		}
		return kv, db, nil
	}
}
