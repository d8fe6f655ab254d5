package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/basislabs/basis-edge-go/api"
	"github.com/basislabs/basis-edge-go/audit"
	"github.com/basislabs/basis-edge-go/chain"
	"github.com/basislabs/basis-edge-go/config"
	"github.com/basislabs/basis-edge-go/gate"
	"github.com/basislabs/basis-edge-go/replay"
	"github.com/basislabs/basis-edge-go/telemetry"
	"github.com/basislabs/basis-edge-go/types"
	"github.com/basislabs/basis-edge-go/witness"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize telemetry
	if err := telemetry.Init("basis-edge"); err != nil {
		panic(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	}
	defer telemetry.Shutdown()

	telemetry.Logger.Info("Starting Basis Edge", zap.String("node", cfg.NodeName))

	// Build the witness signer; a bad key is fatal before any request
	signer, err := witness.NewSigner(cfg.PrivateKey, cfg.WitnessID)
	if err != nil {
		telemetry.Logger.Fatal("Failed to build witness signer", zap.Error(err))
	}
	telemetry.Logger.Info("Witness signer ready", zap.String("signer", signer.Address()))

	// Connect to redis; the replay store is security-critical so an
	// unreachable store is fatal
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		telemetry.Logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	store := replay.NewRedisStore(redisClient)

	// Connect to PostgreSQL for the audit trail when configured
	var recorder *audit.Recorder
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			telemetry.Logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		recorder = audit.NewRecorder(db, telemetry.Logger)
		if err := recorder.InitDB(); err != nil {
			telemetry.Logger.Fatal("Failed to initialize audit table", zap.Error(err))
		}
	}

	// Build the payment gate
	paymentGate := gate.New(
		store,
		gate.ChainVerifier{Config: chain.VerifierConfig{
			RPCURL:       cfg.RPCURL,
			TokenAddress: cfg.TokenAddress,
			MinAmount:    cfg.MinAmount,
			Timeout:      cfg.VerifyTimeout,
		}},
		recorder,
		telemetry.Logger,
		gate.Config{
			Recipient: cfg.RecipientAddress,
			Advert: types.PaymentContext{
				Chain:     cfg.Chain,
				Network:   cfg.Network,
				Currency:  cfg.Currency,
				Amount:    cfg.Price,
				Recipient: cfg.RecipientAddress,
			},
		},
	)

	// Build the router
	r := chi.NewRouter()
	r.Use(telemetry.RequestLogging)

	r.Get("/healthz", api.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		v1.With(paymentGate.Middleware(types.OperationTimestamping)).
			Post("/timestamp", api.Endpoint(types.OperationTimestamping, api.TimestampHandler(), signer, cfg.NodeName))
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Start the server
	go func() {
		telemetry.Logger.Info("Basis Edge listening", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetry.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	telemetry.Logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		telemetry.Logger.Error("Server forced to shutdown", zap.Error(err))
	}
}
