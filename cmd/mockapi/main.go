package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/freightdesk/internal/logging"
	"github.com/dmitrijs2005/freightdesk/internal/mockapi"
	"github.com/dmitrijs2005/freightdesk/internal/mockapi/config"
)

func initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func main() {

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat, false)

	srv, err := mockapi.NewServer(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()
	initSignalHandler(cancelFunc)

	if err := srv.Run(ctx); err != nil {
		logger.Error(ctx, err.Error())
		os.Exit(1)
	}

}
