package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"catalogue-adapter/internal/adapter"
	"catalogue-adapter/internal/api"
	"catalogue-adapter/internal/auth"
	"catalogue-adapter/internal/ckan"
	"catalogue-adapter/internal/config"
	"catalogue-adapter/internal/logging"
	"catalogue-adapter/internal/mcp"
	"catalogue-adapter/internal/tls"
)

func main() {
	ctx := context.Background()

	// Initialize logging
	logger := logging.NewLogger()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		log.Fatalf("Configuration loading failed: %v", err)
	}
	logger.Info("Configuration loaded: ckan_url=%s environment=%s", cfg.CKAN.URL, cfg.Environment)

	if cfg.CKAN.URL == "" {
		log.Fatalf("CKAN URL is not configured")
	}
	if cfg.IsDevelopment() {
		logger.Warn("Running in development mode: CKAN TLS certificate verification is disabled")
	}

	logger.Info("Starting Metadata Catalogue Adapter")

	// Initialize the CKAN action client and the adapter over it
	invoker := ckan.NewClient(ckan.ClientOptions{
		BaseURL:       cfg.CKAN.URL,
		SkipTLSVerify: cfg.IsDevelopment(),
	})
	catalogue := adapter.New(invoker, logger)

	logger.Info("Adapter layer initialized")

	// Create Echo server
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware("catalogue-adapter"))

	// Initialize authentication
	authz, err := auth.New(ctx, cfg.Auth.Issuer, logger)
	if err != nil {
		logger.Error("failed to initialize auth: %v", err)
		log.Fatalf("auth initialization failed: %v", err)
	}

	// Mount the catalogue API behind the bearer-token middleware
	catalogueGroup := e.Group("/catalogue")
	catalogueGroup.Use(authz.RequireToken())
	api.NewServer(catalogue).Register(catalogueGroup)

	e.GET("/health", api.Health)

	logger.Info("Catalogue API handlers mounted")

	// Mount MCP protocol handlers
	if cfg.MCP.Enable {
		mcpServer := mcp.NewServer(catalogue, cfg.MCP.ServiceToken)
		mcpHandlers := http.NewServeMux()
		mcp.MountHTTPHandlers(mcpHandlers, mcpServer.GetMCPServer())
		e.Any("/mcp/*", echo.WrapHandler(mcpHandlers))

		logger.Info("MCP protocol handlers mounted")
	}

	// Create HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown handling
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server starting: address=%s tls=%v", addr, cfg.TLS.Enable)
		if cfg.TLS.Enable {
			if cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "" {
				logger.Error("TLS enabled but cert/key file not provided")
				serverErrors <- server.ListenAndServe()
				return
			}
			// generate if missing and hostnames provided
			if _, err := os.Stat(cfg.TLS.CertFile); os.IsNotExist(err) {
				if len(cfg.TLS.Hostnames) > 0 {
					if err := tls.GenerateSelfSignedCert(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.Hostnames); err != nil {
						logger.Error("failed to generate self-signed cert: %v", err)
					}
				}
			}
			serverErrors <- server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			serverErrors <- server.ListenAndServe()
		}
	}()

	// Wait for shutdown signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			logger.Error("Server error: %v", err)
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		logger.Info("Shutdown signal received: %v", sig)

		// Create shutdown context with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error: %v", err)
			if err := server.Close(); err != nil {
				logger.Error("Server close error: %v", err)
			}
		}

		logger.Info("Server stopped gracefully")
	}
}
