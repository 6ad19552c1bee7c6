package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"messenger/pkg/logger"
	"messenger/pkg/media"
	"messenger/pkg/middleware"
	"messenger/pkg/post"
	"messenger/pkg/search"
	"messenger/pkg/sessions"
	"messenger/pkg/user"
)

func main() {
	seedOnly := flag.Bool("seed", false, "fill the stores with fake users and posts, print a token and exit")
	flag.Parse()

	cfg, err := readConfig()
	if err != nil {
		log.Fatalln("main:", err)
	}

	var zlog *zap.SugaredLogger
	if cfg.LogFile != "" {
		zlog = logger.RunWithFile(cfg.LogLevel, cfg.LogFile)
	} else {
		zlog = logger.Run(cfg.LogLevel)
	}
	defer zlog.Sync()

	db, err := sql.Open("pgx", cfg.PostgresDSN)
	if err != nil {
		zlog.Fatalf("main: unable to connect to database: %v", err)
	}
	defer db.Close()

	startCtx, startCtxCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer startCtxCancel()
	if err := db.PingContext(startCtx); err != nil {
		zlog.Fatalf("main: unable to reach PostgreSQL: %v", err)
	}

	redisPool := &redis.Pool{
		MaxIdle:     10,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			return redis.DialURL(cfg.RedisAddr)
		},
	}
	defer redisPool.Close()
	if err := pingRedis(startCtx, redisPool); err != nil {
		zlog.Fatalf("main: can't connect to Redis: %v", err)
	}

	mongoClient, err := mongo.Connect(startCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		zlog.Fatalf("main: can't connect to MongoDB: %v", err)
	}
	if err := mongoClient.Ping(startCtx, nil); err != nil {
		zlog.Fatalf("main: unable to connect to MongoDB: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			zlog.Errorf("main: failed disconnecting from MongoDB: %v", err)
		}
	}()

	postsCol := mongoClient.Database(cfg.MongoDB).Collection("posts")
	if err := post.EnsureIndexes(startCtx, postsCol); err != nil {
		zlog.Fatalf("main: %v", err)
	}

	usersRepo := user.NewUserRepo(db)
	if err := usersRepo.EnsureSchema(startCtx); err != nil {
		zlog.Fatalf("main: %v", err)
	}
	postsRepo := post.NewPostRepo(postsCol)
	sessionManager := sessions.NewSessionManager(cfg.SecretKey, redisPool)

	if *seedOnly {
		// Generate fake content to have better UI experience
		token, err := seed(context.Background(), usersRepo, postsRepo, sessionManager)
		if err != nil {
			zlog.Fatalf("main: seeding failed: %v", err)
		}
		zlog.Infof("seed: done, token of the first user: %s", token)
		return
	}

	uploader, err := media.NewCloudinaryUploader(cfg.CloudinaryURL, cfg.CloudinaryFolder)
	if err != nil {
		zlog.Fatalf("main: %v", err)
	}

	postService := post.NewService(postsRepo, usersRepo, uploader)
	postHandler := post.NewPostHandler(postService)
	searchHandler := search.NewSearchHandler(search.NewService(usersRepo, postService))

	r := mux.NewRouter()

	logMiddleware := middleware.NewLoggingMiddleware(zlog)
	r.Use(logMiddleware.SetupTracing)
	r.Use(logMiddleware.SetupLogging)
	r.Use(logMiddleware.AccessLog)
	r.Use(middleware.Metrics)

	r.HandleFunc("/health", healthHandler(map[string]healthCheck{
		"postgres": db.PingContext,
		"mongo":    func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
		"redis":    func(ctx context.Context) error { return pingRedis(ctx, redisPool) },
	})).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	auth := middleware.NewAuthMiddleware(sessionManager, usersRepo)
	api.Use(auth.Middleware)
	postHandler.Routes(api)
	searchHandler.Routes(api)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		zlog.Infof("Serving at http://localhost%s/", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatalf("main: server failed: %v", err)
		}
	}()

	<-ctx.Done()
	zlog.Info("main: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Errorf("main: graceful shutdown failed: %v", err)
	}
}

func pingRedis(ctx context.Context, pool *redis.Pool) error {
	conn, err := pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	_, err = conn.Do("PING")
	return err
}
