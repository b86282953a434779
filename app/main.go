package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"

	"skypost/app/bluesky"
	"skypost/app/cfg"
	"skypost/app/feed"
	"skypost/app/pipeline"
	"skypost/app/scrape"
	"skypost/app/store"
)

func main() {
	// .env is for local runs; deployments configure via the environment.
	_ = godotenv.Load()

	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting skypost", "version", appCfg.Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("Failed to load AWS configuration", "error", err)
		os.Exit(1)
	}
	subscriptions := store.New(dynamodb.NewFromConfig(awsCfg), appCfg.FeedsTable)

	httpClient := &http.Client{Timeout: time.Duration(appCfg.FetchTimeout) * time.Second}

	client, err := bluesky.Login(ctx, httpClient, appCfg.PDSHost, appCfg.BskyIdentifier, appCfg.BskyPassword)
	if err != nil {
		slog.Error("Failed to create Bluesky session", "error", err)
		os.Exit(1)
	}
	slog.Info("Bluesky session created", "handle", client.Handle())

	syncPipeline := pipeline.New(
		subscriptions,
		feed.NewFetcher(httpClient, appCfg.UserAgent),
		scrape.NewExtractor(httpClient, appCfg.UserAgent),
		scrape.NewThumbnailer(httpClient, appCfg.UserAgent),
		client,
	)

	if appCfg.RunInterval <= 0 {
		if err := syncPipeline.Run(ctx); err != nil {
			slog.Error("Sync run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	interval := time.Duration(appCfg.RunInterval) * time.Second
	slog.Info("Running on interval", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := syncPipeline.Run(ctx); err != nil {
		slog.Error("Sync run failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("Shutting down")
			return
		case <-ticker.C:
			if err := syncPipeline.Run(ctx); err != nil {
				slog.Error("Sync run failed", "error", err)
			}
		}
	}
}
