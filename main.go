package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	c "capm.service/core"
	r "capm.service/data/repos"
)

func main() {
	// initialize context and signal handler, listen for interrupt and term signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// load in environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not loaded: %v", err)
	}

	settings, err := c.LoadSettings()
	if err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}
	log.SetLevel(settings.LogLevel)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	// get postgres connection
	postgresConnection, err := r.GetPostgresConnection(ctx, settings.DatabaseUrl)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer postgresConnection.Close()

	sc := &c.ServiceContext{
		Context:            ctx,
		PostgresConnection: postgresConnection,
		Predictor:          c.LinearTrendPredictor{},
		Settings:           settings,
	}

	log.Printf("Benchmark %s, risk free rate %v, capm formula %s", settings.Benchmark, settings.RiskFreeRate, settings.Formula)

	// get http server, makes all of the endpoints and routes
	s := c.GetHttpServer(sc)

	// start http server in goroutine
	go func() {
		log.Printf("Starting capm server on %s", s.Addr)
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// wait here until the context is closed (ie, ctrl+C)
	<-ctx.Done()
	log.Println("Received shutdown signal, shutting down gracefully...")

	// this gives the server 10 seconds to shutdown gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped successfully")
}
