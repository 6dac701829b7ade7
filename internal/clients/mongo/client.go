package mongo

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"taskboard/internal/config"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var (
	// ErrNotInitialized is returned by Shutdown and Ping before a successful Init.
	ErrNotInitialized = errors.New("mongo client not initialized")
	// ErrShutdown is returned by Shutdown after the first call.
	ErrShutdown = errors.New("mongo client already shut down")
)

var (
	drv driver = liveDriver{}

	client       *mongo.Client
	db           *mongo.Database
	shutdownDone bool
	mu           sync.Mutex
)

// Init connects and pings MongoDB. The first successful call wins; later
// calls return the same client. A failed connect or ping leaves nothing
// behind, so Init may be retried.
func Init(ctx context.Context, cfg config.Config, log *slog.Logger) (*mongo.Client, *mongo.Database, error) {
	mu.Lock()
	defer mu.Unlock()

	if client != nil && db != nil {
		return client, db, nil
	}

	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetConnectTimeout(10 * time.Second).
		SetAppName("taskboard")

	ctx, cancel := WithRepoTimeout(ctx, 10*time.Second)
	defer cancel()

	cli, err := drv.Connect(ctx, opts)
	if err != nil {
		log.Error("failed to connect to mongo", "err", err)
		return nil, nil, err
	}

	if err := drv.Ping(ctx, cli); err != nil {
		log.Error("failed to ping mongo", "err", err)
		if derr := drv.Disconnect(context.WithoutCancel(ctx), cli); derr != nil {
			log.Warn("failed to disconnect after ping failure", "err", derr)
		}
		return nil, nil, err
	}

	client = cli
	db = cli.Database(cfg.MongoDBName)
	shutdownDone = false

	log.Info("successfully connected to mongo", "db", cfg.MongoDBName)
	return client, db, nil
}

// Client returns the singleton MongoDB client instance.
func Client() *mongo.Client {
	mu.Lock()
	defer mu.Unlock()
	return client
}

// DB returns the singleton MongoDB database instance.
func DB() *mongo.Database {
	mu.Lock()
	defer mu.Unlock()
	return db
}

// Ping checks the connection; the health endpoint calls it on every probe.
func Ping(ctx context.Context) error {
	mu.Lock()
	cli := client
	mu.Unlock()

	if cli == nil {
		return ErrNotInitialized
	}

	ctx, cancel := WithRepoTimeout(ctx, 2*time.Second)
	defer cancel()
	return drv.Ping(ctx, cli)
}

// Shutdown disconnects the client. The first call reports
// ErrNotInitialized if Init never succeeded; every later call reports
// ErrShutdown.
func Shutdown(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()

	if shutdownDone {
		return ErrShutdown
	}
	shutdownDone = true

	if client == nil {
		return ErrNotInitialized
	}

	ctx, cancel := WithRepoTimeout(ctx, 5*time.Second)
	defer cancel()

	err := drv.Disconnect(ctx, client)

	client = nil
	db = nil

	return err
}
