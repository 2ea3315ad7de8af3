package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"policyxray/internal/platform/config"
	"policyxray/internal/services/cli"
)

func main() {
	config.LoadDotEnv(".env")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
