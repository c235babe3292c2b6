// Package main provides the game server binary that hosts tic-tac-toe
// sessions behind a gRPC service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/cory-johannsen/tictactoe/internal/config"
	"github.com/cory-johannsen/tictactoe/internal/game/session"
	"github.com/cory-johannsen/tictactoe/internal/gameserver"
	"github.com/cory-johannsen/tictactoe/internal/gameserver/tictacv1"
	"github.com/cory-johannsen/tictactoe/internal/observability"
	"github.com/cory-johannsen/tictactoe/internal/server"
	"github.com/cory-johannsen/tictactoe/internal/storage/postgres"
)

const (
	serviceName = "tictactoe-gameserver"

	// memoryResultCapacity bounds match history when no database is configured.
	memoryResultCapacity = 1000
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file; empty = defaults and environment only")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, serviceName)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()
	observability.RedirectGRPCLogs(logger)

	logger.Info("starting game server",
		zap.String("grpc_addr", cfg.GameServer.Addr()),
		zap.Bool("database", cfg.Database.Enabled),
	)

	lifecycle := server.NewLifecycle(logger, server.DefaultShutdownTimeout)

	// Match results go to PostgreSQL when enabled, otherwise to memory.
	var store gameserver.ResultStore
	if cfg.Database.Enabled {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		store = pool.Results()

		lifecycle.Add("postgres", &server.FuncService{
			StartFn: func(ctx context.Context) error {
				ticker := time.NewTicker(30 * time.Second)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return nil
					case <-ticker.C:
						if err := pool.Health(ctx, 5*time.Second); err != nil {
							logger.Warn("database health check failed", zap.Error(err))
						}
					}
				}
			},
			StopFn: func(context.Context) error {
				pool.Close()
				return nil
			},
		})
	} else {
		store = gameserver.NewMemoryResultStore(memoryResultCapacity)
		logger.Info("database disabled, keeping match results in memory",
			zap.Int("capacity", memoryResultCapacity),
		)
	}

	writer := gameserver.NewResultWriter(store, cfg.GameServer.ResultBuffer, logger.Named("results"))
	// Stop waits for the queue to drain so the pool, stopped after it, is
	// still open for the final writes.
	writerDone := make(chan struct{})
	lifecycle.Add("results", &server.FuncService{
		StartFn: func(ctx context.Context) error {
			defer close(writerDone)
			return writer.Run(ctx)
		},
		StopFn: func(ctx context.Context) error {
			select {
			case <-writerDone:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})

	registry := session.NewRegistry(
		session.WithLogger(logger.Named("session")),
		session.WithResultObserver(writer.Enqueue),
		session.WithEmptyTTL(cfg.GameServer.EmptySessionTTL),
	)

	sweeper := session.NewSweeper(registry, cfg.GameServer.SweepInterval, logger.Named("sweeper"))
	lifecycle.Add("sweeper", &server.FuncService{
		StartFn: func(ctx context.Context) error {
			sweeper.Run(ctx)
			return nil
		},
	})

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(observability.UnaryServerLogger(logger)),
		grpc.ChainStreamInterceptor(observability.StreamServerLogger(logger)),
	)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	tictacv1.RegisterTicTacToeServiceServer(grpcServer,
		gameserver.NewSessionService(registry, store, cfg.GameServer, logger.Named("grpc")),
	)

	lifecycle.Add("grpc", &server.FuncService{
		StartFn: func(context.Context) error {
			lis, err := net.Listen("tcp", cfg.GameServer.Addr())
			if err != nil {
				return fmt.Errorf("listening on %s: %w", cfg.GameServer.Addr(), err)
			}
			logger.Info("gRPC server listening",
				zap.String("addr", lis.Addr().String()),
			)
			healthServer.SetServingStatus(tictacv1.TicTacToeService_ServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)
			return grpcServer.Serve(lis)
		},
		StopFn: func(ctx context.Context) error {
			healthServer.Shutdown()
			// Closing every session completes the participant streams so
			// GracefulStop does not wait on them.
			registry.Shutdown()

			stopped := make(chan struct{})
			go func() {
				grpcServer.GracefulStop()
				close(stopped)
			}()
			select {
			case <-stopped:
				return nil
			case <-ctx.Done():
				grpcServer.Stop()
				return ctx.Err()
			}
		},
	})

	logger.Info("game server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("grpc_addr", cfg.GameServer.Addr()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
