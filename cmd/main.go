package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/storefront-backend/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		fmt.Printf("Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	application.Start()

	errCh := make(chan error, 1)
	go func() {
		errCh <- application.Run(":" + application.Cfg.Port)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			application.Log.Error("Server failed", "error", err)
			application.Close()
			os.Exit(1)
		}
	case sig := <-sigCh:
		application.Log.Info("Shutting down", "signal", sig.String())
	}
}
