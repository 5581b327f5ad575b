package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raushankrgupta/marketchoice-admin/api"
	"github.com/raushankrgupta/marketchoice-admin/auth"
	"github.com/raushankrgupta/marketchoice-admin/cache"
	"github.com/raushankrgupta/marketchoice-admin/catalog"
	"github.com/raushankrgupta/marketchoice-admin/config"
	"github.com/raushankrgupta/marketchoice-admin/scrapers"
	"github.com/raushankrgupta/marketchoice-admin/scrapers/base"
	"github.com/raushankrgupta/marketchoice-admin/scrapers/render"
	"github.com/raushankrgupta/marketchoice-admin/store"
	"github.com/raushankrgupta/marketchoice-admin/utils"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	documentsCollection = "documents"
	usersCollection     = "users"
	loginBurst          = 5
	loginWindow         = 15 * time.Minute
	imageTimeout        = 30 * time.Second
	idleTimeout         = 120 * time.Second
)

func main() {
	config.LoadConfig()
	logger := utils.NewLogger(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

func run(ctx context.Context, logger *logrus.Logger) error {
	var mongoClient *mongo.Client
	if config.StoreDriver == "mongo" || config.AuthStrategy == "mongo" {
		client, err := store.ConnectMongo(ctx, config.MongoURI)
		if err != nil {
			return err
		}
		mongoClient = client
		defer mongoClient.Disconnect(context.Background())
		logger.Info("Connected to MongoDB")
	}

	gateway, err := openGateway(ctx, mongoClient, logger)
	if err != nil {
		return err
	}

	local, closeLocal, err := cache.Open(config.CacheDriver, cache.Options{
		Path:          config.CachePath,
		RedisAddress:  config.RedisAddress,
		RedisPassword: config.RedisPassword,
		RedisDB:       config.RedisDB,
	})
	if err != nil {
		return fmt.Errorf("opening local cache: %w", err)
	}
	defer closeLocal()

	console := catalog.NewConsole(gateway.Documents, local, logger)
	if err := console.Load(ctx); err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	defer console.Close()

	importer, proxyCount, err := newImporter(logger)
	if err != nil {
		return err
	}

	authenticator, err := newAuthenticator(mongoClient)
	if err != nil {
		return fmt.Errorf("configuring auth: %w", err)
	}
	tokens, err := auth.NewTokenIssuer(config.JWTSecret, config.TokenTTL)
	if err != nil {
		return fmt.Errorf("configuring tokens: %w", err)
	}

	server := &api.Server{
		Console:      console,
		Importer:     importer,
		Blobs:        gateway.Blobs,
		Auth:         auth.NewThrottled(authenticator, loginBurst, loginWindow),
		Tokens:       tokens,
		MirrorImages: config.ImportMirrorImages,
		ImageClient:  &http.Client{Timeout: imageTimeout},
		Logger:       logger,
	}

	httpServer := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      writeTimeout(config.RenderTimeout, config.ProxyTimeout, proxyCount),
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s...", config.Port)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

func openGateway(ctx context.Context, mongoClient *mongo.Client, logger logrus.FieldLogger) (store.Gateway, error) {
	var gw store.Gateway
	memory := store.NewMemory()

	switch config.StoreDriver {
	case "mongo":
		gw.Documents = store.NewMongoDocuments(mongoClient, config.MongoDatabase, documentsCollection, logger)
	case "memory":
		logger.Warn("Using in-memory document store, edits are lost on restart")
		gw.Documents = memory
	default:
		return gw, fmt.Errorf("unknown store driver %q", config.StoreDriver)
	}

	switch config.BlobDriver {
	case "s3":
		blobs, err := store.NewS3Blobs(ctx, config.AWSRegion, config.AWSBucketName)
		if err != nil {
			return gw, fmt.Errorf("initializing S3: %w", err)
		}
		gw.Blobs = blobs
		logger.Info("Initialized S3")
	case "memory":
		gw.Blobs = memory
	default:
		return gw, fmt.Errorf("unknown blob driver %q", config.BlobDriver)
	}
	return gw, nil
}

// writeTimeout bounds a response by the slowest import: the render call,
// one pass over the proxy chain and an image download.
func writeTimeout(renderTimeout, proxyTimeout time.Duration, proxies int) time.Duration {
	return renderTimeout + time.Duration(proxies)*proxyTimeout + imageTimeout + 10*time.Second
}

func newImporter(logger logrus.FieldLogger) (*scrapers.Importer, int, error) {
	renderer, err := render.NewService(render.Config{
		Engine:           config.RenderEngine,
		MicrolinkURL:     config.MicrolinkURL,
		MicrolinkAPIKey:  config.MicrolinkAPIKey,
		ChromeDriverPath: config.ChromeDriverPath,
		Client:           &http.Client{Timeout: config.RenderTimeout},
		SettleDelay:      2 * time.Second,
	}, logger)
	if err != nil {
		return nil, 0, err
	}

	proxies, err := base.ParseProxyChain(config.ProxyChain)
	if err != nil {
		return nil, 0, fmt.Errorf("parsing proxy chain: %w", err)
	}
	pages := base.NewProxyChain(proxies, base.NewFetcher(config.ProxyTimeout), config.ProxyTimeout, logger)

	return scrapers.NewImporter(renderer, pages, config.RenderTimeout, logger), len(proxies), nil
}

func newAuthenticator(mongoClient *mongo.Client) (auth.Authenticator, error) {
	switch config.AuthStrategy {
	case "local":
		return auth.NewLocalAuthenticator(config.AdminUsername, config.AdminPasswordHash)
	case "mongo":
		return auth.NewMongoAuthenticator(mongoClient.Database(config.MongoDatabase).Collection(usersCollection)), nil
	}
	return nil, fmt.Errorf("unknown auth strategy %q", config.AuthStrategy)
}
