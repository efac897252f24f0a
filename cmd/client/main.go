package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/freightdesk/internal/client/cli"
	"github.com/dmitrijs2005/freightdesk/internal/client/config"
	"github.com/dmitrijs2005/freightdesk/internal/logging"
)

// release is set at build time with -ldflags "-X main.release=...".
var release = "dev"

func main() {

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	if err := logging.InitSentry(cfg.SentryDSN, cfg.Environment, release); err != nil {
		log.Printf("sentry disabled: %v", err)
	}
	defer logging.FlushSentry()

	// the REPL owns stdout, logs go to stderr
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat, cfg.SentryDSN != "")

	ctx := context.Background()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
