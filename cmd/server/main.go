package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/yourusername/coin-chaos/internal/server"
)

func main() {
	addr := flag.String("addr", ":8765", "HTTP service address")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("[CONFIG] no .env file, using environment")
	}

	password := os.Getenv("LOBBY_PASSWORD")
	if password == "" {
		password = "default_pass_123"
		log.Printf("[CONFIG] LOBBY_PASSWORD not set, using default")
	}
	listenAddr := *addr
	if port := os.Getenv("PORT"); port != "" {
		listenAddr = ":" + port
	}

	srv := server.New(password, server.DefaultTuning())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(listenAddr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("[SERVER] %v", err)
		}
	case sig := <-sigCh:
		log.Printf("[SERVER] received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("[SERVER] shutdown error: %v", err)
		}
	}
}
