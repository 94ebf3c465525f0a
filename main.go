package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"car-rental-service/internal/auth"
	"car-rental-service/internal/config"
	"car-rental-service/internal/handler"
	"car-rental-service/internal/logging"
	mongoclient "car-rental-service/internal/mongo"
	"car-rental-service/internal/repository"
	"car-rental-service/internal/service"
	"car-rental-service/internal/storage"
)

const shutdownTimeout = 10 * time.Second

var newLogger = logging.New

func main() {
	os.Exit(start())
}

// start returns the process exit code so deferred cleanup, including the final
// logger flush, runs before the process exits.
func start() int {
	envErr := godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Printf("config: %v", err)
		return 1
	}
	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Printf("logger: %v", err)
		return 1
	}
	defer logger.Sync()

	if envErr != nil {
		logger.Debug("no .env file loaded", zap.Error(envErr))
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return 1
	}
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", zap.Error(err))
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	var mongoDB *mongo.Database
	if cfg.NeedsMongo() {
		client, err := mongoclient.NewMongoClient(ctx, cfg.MongoURL, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Warn("mongo disconnect", zap.Error(err))
			}
		}()
		mongoDB = client.Database(cfg.MongoDatabase)
	}

	stores, ping, closeStore, err := openStores(ctx, cfg, mongoDB)
	if err != nil {
		return err
	}
	defer closeStore()

	objects, photos, err := openObjectStore(ctx, cfg, mongoDB)
	if err != nil {
		return err
	}

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	services := handler.Services{
		Auth:     service.NewAuthService(stores.Users, tokens),
		Listings: service.NewListingService(stores.Listings, cfg.EnforceOwnership),
		Bookings: service.NewBookingService(stores.Bookings),
		Uploads:  service.NewUploadService(objects),
	}
	router := handler.NewRouter(services, handler.RouterConfig{
		CORSOrigins:    cfg.CORSOrigins,
		UploadMaxFiles: cfg.UploadMaxFiles,
		Photos:         photos,
		Ping:           ping,
	}, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("car rental service listening",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.StoreDriver),
			zap.String("media", cfg.MediaBackend),
			zap.Bool("enforce_ownership", cfg.EnforceOwnership),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStores(ctx context.Context, cfg *config.Config, mongoDB *mongo.Database) (repository.Stores, func(context.Context) error, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		if err := repository.EnsureMongoIndexes(ctx, mongoDB); err != nil {
			return repository.Stores{}, nil, nil, err
		}
		ping := func(ctx context.Context) error {
			return mongoDB.Client().Ping(ctx, readpref.Primary())
		}
		return repository.NewMongoStores(mongoDB), ping, func() {}, nil

	case config.DriverPostgres, config.DriverSQLite:
		db, err := sqlx.ConnectContext(ctx, cfg.StoreDriver, cfg.DatabaseURL)
		if err != nil {
			return repository.Stores{}, nil, nil, fmt.Errorf("%s connect: %w", cfg.StoreDriver, err)
		}
		if cfg.StoreDriver == config.DriverSQLite {
			db.SetMaxOpenConns(1)
		}
		if err := repository.MigrateSQL(ctx, db); err != nil {
			db.Close()
			return repository.Stores{}, nil, nil, err
		}
		return repository.NewSQLStores(db), db.PingContext, func() { db.Close() }, nil
	}
	return repository.Stores{}, nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func openObjectStore(ctx context.Context, cfg *config.Config, mongoDB *mongo.Database) (storage.ObjectStore, storage.ObjectReader, error) {
	if cfg.MediaBackend == config.MediaGridFS {
		gfs := storage.NewGridFSStore(mongoDB, cfg.PublicBaseURL)
		return gfs, gfs, nil
	}
	s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Endpoint:  cfg.S3Endpoint,
	})
	if err != nil {
		return nil, nil, err
	}
	return s3Store, nil, nil
}
