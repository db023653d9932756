package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/quotekeeper/internal/client/app"
	"github.com/dmitrijs2005/quotekeeper/internal/client/auth"
	"github.com/dmitrijs2005/quotekeeper/internal/client/cli"
	"github.com/dmitrijs2005/quotekeeper/internal/client/config"
	"github.com/dmitrijs2005/quotekeeper/internal/logging"
)

// Set with -ldflags "-X main.buildVersion=...".
var (
	buildVersion = "N/A"
	buildDate    = "N/A"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

func run() error {
	cfg := config.LoadConfig()

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogFormat, level, os.Stderr)
	if err != nil {
		return err
	}

	fmt.Printf("quotekeeper %s (%s)\n", buildVersion, buildDate)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}

	channel := auth.NewGoTrueChannel(cfg.AuthURL, cfg.AnonKey,
		auth.WithHTTPClient(httpClient),
		auth.WithLogger(logger.With("component", "auth")),
		auth.WithRefreshMargin(cfg.RefreshMargin),
	)
	defer channel.Close()

	core := app.New(channel, app.Options{
		APIBaseURL: cfg.APIBaseURL,
		APIKey:     cfg.AnonKey,
		HTTPClient: httpClient,
		Logger:     logger,
	})

	return cli.NewApp(core, channel, os.Stdin, os.Stdout, logger).Run(ctx)
}
