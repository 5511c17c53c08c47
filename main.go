package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"cosmic/assistant"
	"cosmic/config"
	"cosmic/provider"
	"cosmic/server"
	"cosmic/storage"
)

const Version = "v0.01.00"

const shutdownTimeout = 10 * time.Second

func main() {
	initConfig := flag.String("init-config", "", "write a commented config template to `path` and exit")
	issueToken := flag.String("issue-token", "", "print a bearer token for `user` and exit")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("cosmic %s\n", Version)
		return
	}

	if *initConfig != "" {
		if err := config.CreateDefaultConfig(*initConfig); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config written to %s\n", *initConfig)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *issueToken != "" {
		tokens, err := server.NewTokenService(cfg.JWTSecret)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot issue token: %v\n", err)
			os.Exit(1)
		}
		token, err := tokens.Issue(*issueToken)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot issue token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	logger := config.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	sessionStorage, err := storage.NewSessionStorage(cfg.DataDir())
	if err != nil {
		logger.Error("Failed to initialize session storage", "error", err)
		os.Exit(1)
	}
	defer sessionStorage.Close()

	// Provider selection happens once; the choice holds until restart
	sel := provider.Select(cfg.AIConfig(), logger)
	svc := assistant.New(sel, assistant.WithLogger(logger))

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.New(server.OptionsFromConfig(cfg), svc, sessionStorage, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		status := svc.Status()
		logger.Info("Server starting",
			"addr", srv.Addr,
			"version", Version,
			"provider", status.Provider,
			"model", status.Model,
			"fallback_only", status.FallbackOnly)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", "error", err)
		}
	}
}
