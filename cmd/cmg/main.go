package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/cmgshare/internal/cli"
	"github.com/dmitrijs2005/cmgshare/internal/config"
	"github.com/dmitrijs2005/cmgshare/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cfg := config.LoadConfig()
	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)

	app := cli.NewApp(cfg, logger, os.Stdin, os.Stdout, os.Stderr)
	code := app.Run(ctx, os.Args[1:])

	stop()
	os.Exit(code)
}
