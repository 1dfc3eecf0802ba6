// cmd/server/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/SyedDaiam9101/classifier-service/internal/admin"
	"github.com/SyedDaiam9101/classifier-service/internal/classifier"
	"github.com/SyedDaiam9101/classifier-service/internal/config"
	"github.com/SyedDaiam9101/classifier-service/internal/handler"
	"github.com/SyedDaiam9101/classifier-service/internal/inference"
	"github.com/SyedDaiam9101/classifier-service/internal/logging"
	"github.com/SyedDaiam9101/classifier-service/internal/metrics"
	"github.com/SyedDaiam9101/classifier-service/internal/tracing"
)

const (
	serviceName = "classifier-service"
	version     = "1.0.0"
)

func main() {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Serve a pre-trained classifier over HTTP and gRPC",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(configFile, cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return serve(cfg, logger)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (optional)")
	config.RegisterFlags(rootCmd.PersistentFlags())

	predictCmd := &cobra.Command{
		Use:   "predict F1 F2 F3 F4",
		Short: "Load the model and classify one feature vector",
		Args:  cobra.ExactArgs(inference.NumFeatures),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(configFile, cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return predictOnce(cmd.Context(), cfg, args)
		},
	}
	rootCmd.AddCommand(predictCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func setup(configFile string, cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	zap.ReplaceGlobals(logger)
	return cfg, logger, nil
}

func loadEngine(cfg *config.Config, logger *zap.Logger) (inference.Engine, error) {
	if cfg.UseMock {
		logger.Warn("using mock inference engine")
	} else {
		logger.Info("loading model", zap.String("path", cfg.Model), zap.String("format", cfg.ModelFormat))
	}

	engine, err := inference.Load(cfg.ModelOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	metrics.SetModelInfo(cfg.Model, fmt.Sprintf("%T", engine))
	logger.Info("model loaded", zap.String("engine", fmt.Sprintf("%T", engine)))
	return engine, nil
}

func serve(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("starting service",
		zap.String("service", serviceName),
		zap.Int("port", cfg.Port),
		zap.Int("grpc_port", cfg.GRPCPort),
		zap.Int("metrics_port", cfg.MetricsPort),
		zap.String("model", cfg.Model),
		zap.Bool("otel", cfg.OTELEnabled),
	)

	// Initialize OpenTelemetry tracer
	if cfg.OTELEnabled {
		tracerShutdown, err := tracing.Init(serviceName, version, cfg.OTELEndpoint, logger)
		if err != nil {
			logger.Warn("failed to initialize tracer", zap.Error(err))
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tracerShutdown(ctx); err != nil {
					logger.Warn("tracer shutdown", zap.Error(err))
				}
			}()
		}
	}

	// The model is loaded once; the service cannot start without it.
	engine, err := loadEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Warn("failed to release model", zap.Error(err))
		}
	}()

	h := handler.New(classifier.New(engine))
	opts := handler.Options{Gzip: cfg.Gzip, Tracing: cfg.OTELEnabled}

	healthServer := health.NewServer()

	gin.SetMode(gin.ReleaseMode)
	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler.NewRouter(h, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}
	adminServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler:           admin.NewMux(healthServer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var grpcServer *grpc.Server
	var grpcLis net.Listener
	if cfg.GRPCPort != 0 {
		grpcServer = handler.NewGRPCServer(h, healthServer, opts)
		addr := fmt.Sprintf(":%d", cfg.GRPCPort)
		grpcLis, err = net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", addr, err)
		}
	}

	errCh := make(chan error, 3)
	go func() {
		logger.Info("admin server listening", zap.String("addr", adminServer.Addr))
		if err := adminServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("admin server: %w", err)
		}
	}()
	go func() {
		logger.Info("http server listening", zap.String("addr", apiServer.Addr))
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	if grpcServer != nil {
		go func() {
			logger.Info("grpc server listening", zap.String("addr", grpcLis.Addr().String()))
			if err := grpcServer.Serve(grpcLis); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	metrics.SetHealthy()
	logger.Info("service is ready to accept requests")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal, shutting down gracefully")
	case runErr = <-errCh:
		logger.Error("server failed", zap.Error(runErr))
	}

	healthServer.Shutdown()
	metrics.SetUnhealthy()

	// Give load balancers time to observe the unhealthy status
	if runErr == nil && cfg.ShutdownGrace > 0 {
		time.Sleep(cfg.ShutdownGrace)
	}

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", zap.Error(err))
	}
	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("admin server shutdown", zap.Error(err))
	}

	logger.Info("server shutdown complete")
	return runErr
}

func predictOnce(ctx context.Context, cfg *config.Config, args []string) error {
	engine, err := loadEngine(cfg, zap.L())
	if err != nil {
		return err
	}
	defer engine.Close()

	var v classifier.FeatureVector
	for i, arg := range args {
		f, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return fmt.Errorf("feature %d: %q is not a number", i, arg)
		}
		v[i] = f
	}

	pred, err := classifier.New(engine).Predict(ctx, v)
	if err != nil {
		return err
	}
	return json.NewEncoder(os.Stdout).Encode(pred)
}
