package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/lexiqai/intro-scorer/internal/api"
	"github.com/lexiqai/intro-scorer/internal/config"
	"github.com/lexiqai/intro-scorer/internal/observability"
	"github.com/lexiqai/intro-scorer/internal/scoring"
	"github.com/lexiqai/intro-scorer/internal/sentiment"
	"github.com/lexiqai/intro-scorer/internal/stt"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	caseSource, err := scoring.ParseCaseSource(cfg.GrammarCaseSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid grammar case source")
	}
	fillerMode, err := scoring.ParseFillerMode(cfg.FillerMatchMode)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid filler match mode")
	}

	logger.Info().
		Str("port", cfg.Port).
		Str("grpc_port", cfg.GRPCPort).
		Str("log_level", cfg.LogLevel).
		Str("grammar_case_source", string(caseSource)).
		Str("filler_match_mode", string(fillerMode)).
		Str("sentiment_engine", cfg.SentimentEngine).
		Bool("stt_enabled", cfg.STTEnabled()).
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Msg("Intro Scorer Service starting")

	// Load the sentiment engine up front so a bad build fails at boot
	analyzer, err := sentiment.NewEngine(cfg.SentimentEngine)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load sentiment analyzer")
	}
	evaluator := scoring.NewEvaluator(
		scoring.WithAnalyzer(analyzer),
		scoring.WithCaseSource(caseSource),
		scoring.WithFillerMode(fillerMode),
	)

	var transcriber stt.Transcriber
	if dg, err := stt.NewDeepgramClient(cfg); err == nil {
		transcriber = dg
		logger.Info().Str("model", cfg.DeepgramModel).Msg("Deepgram transcription enabled")
	} else if errors.Is(err, stt.ErrNotConfigured) {
		logger.Warn().Msg("DEEPGRAM_API_KEY not set, audio evaluation disabled")
	} else {
		logger.Fatal().Err(err).Msg("Failed to create Deepgram client")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      api.NewServer(cfg, evaluator, transcriber).Routes(),
		ReadTimeout:  time.Duration(cfg.HTTPReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTPWriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.HTTPIdleTimeout) * time.Second,
	}

	// gRPC health service for orchestrators that probe over gRPC
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(observability.ServiceName, healthpb.HealthCheckResponse_SERVING)

	grpcListener, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		logger.Fatal().Err(err).Str("grpc_port", cfg.GRPCPort).Msg("Failed to listen for gRPC")
	}

	go func() {
		logger.Info().Str("grpc_port", cfg.GRPCPort).Msg("gRPC health server listening")
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Fatal().Err(err).Msg("gRPC server failed")
		}
	}()

	// Start server in a goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("endpoint", fmt.Sprintf("ws://localhost:%s/ws/evaluate", cfg.Port)).
			Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")
	healthServer.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	grpcServer.GracefulStop()

	logger.Info().Msg("Server exited gracefully")
}
