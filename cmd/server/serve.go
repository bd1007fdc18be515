package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/hamudi896/LagerAppENV/internal/adapter/handler"
	"github.com/hamudi896/LagerAppENV/internal/adapter/handler/rpc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and gRPC servers",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger := ledger.cfg, ledger.logger

	// Initialize gRPC server
	grpcServer := grpc.NewServer()
	rpc.RegisterLedgerServer(grpcServer, handler.NewGRPCHandler(ledger.ledger, ledger.aggregator, logger))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return err
	}

	go func() {
		logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", "error", err)
		}
	}()

	// Initialize HTTP server
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	httpHandler := handler.NewHTTPHandler(ledger.catalog, ledger.ledger, ledger.aggregator, ledger.exporter, logger)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpHandler.Router(ledger.metrics.Handler()),
	}

	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown", "error", err)
	}
	logger.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")
	return nil
}
