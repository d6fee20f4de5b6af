// Package main is the container entrypoint for the AI Quizzer service. It
// runs database migrations and then serves the HTTP API; any failure before
// the listener is up terminates the process with a non-zero exit code.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ai-quizzer/quizzer/internal/app/runtime"
)

func main() {
	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

	application, err := runtime.NewApplication()
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		log.Fatalf("server failed: %v", err)
	}

	if err := application.Shutdown(context.Background()); err != nil {
		log.Fatalf("shutdown failed: %v", err)
	}
}
