package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/tobias-fyi/xebec/internal/blockchain"
	"github.com/tobias-fyi/xebec/internal/config"
	"github.com/tobias-fyi/xebec/internal/events"
	handlers "github.com/tobias-fyi/xebec/internal/handlers/http"
	"github.com/tobias-fyi/xebec/internal/logging"
)

const (
	shutdownTimeout = 5 * time.Second
	pollInterval    = time.Second
)

// Server holds everything the node process owns.
type Server struct {
	ID         string
	StartTimer time.Time

	Blockchain *blockchain.Blockchain

	redisClient redis.UniversalClient
	ginEngine   *gin.Engine
	httpServer  *http.Server
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		color.Red("invalid configuration: %v", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Log)
	slog.SetDefault(log)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := &Server{
		ID:         cfg.NodeID,
		StartTimer: time.Now(),
		Blockchain: blockchain.New(
			blockchain.WithDifficulty(cfg.Difficulty),
			blockchain.WithLogger(log),
		),
	}

	opts := []handlers.Option{handlers.WithLogger(log)}
	if cfg.EventsEnabled() {
		s.redisClient = events.NewClient(cfg.RedisAddrs)
		defer s.redisClient.Close()

		if err := s.redisClient.Ping(ctx).Err(); err != nil {
			color.Red("could not reach Redis at %v: %v", cfg.RedisAddrs, err)
		} else {
			color.Green("connected to Redis, announcing blocks on %q", cfg.Channel)
		}
		opts = append(opts, handlers.WithPublisher(events.NewPublisher(s.redisClient, cfg.Channel, s.ID)))
	}
	s.ginEngine = handlers.New(s.Blockchain, opts...).Router()

	go s.RunBlockListener(ctx)

	genesis := s.Blockchain.LastBlock()
	color.Cyan("===========================================")
	color.Cyan("  LEDGER NODE")
	color.Cyan("===========================================")
	color.White("Node ID:      %s", s.ID)
	color.White("API:          %s", cfg.Addr())
	color.White("Difficulty:   %d", s.Blockchain.Difficulty())
	color.White("Genesis hash: %s", blockchain.Hash(genesis))
	color.Cyan("===========================================")

	if err := s.RunAPI(ctx, cfg.Addr()); err != nil {
		slog.Error("api stopped", "error", err)
		os.Exit(1)
	}
	color.Yellow("node %s stopped after %s with %d blocks", s.ID, time.Since(s.StartTimer).Round(time.Second), s.Blockchain.Len())
}

// RunAPI serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) RunAPI(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.ginEngine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		color.Green("gin API listening on %s", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
