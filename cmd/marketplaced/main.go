package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/config"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/config/di"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/event"
	"go.uber.org/zap"
)

const archiveInterval = 5 * time.Second

func main() {
	config.Init()

	container, err := di.NewContainer()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}
	defer func() {
		if err := container.Delete(); err != nil {
			zap.L().With(zap.Error(err)).Error("Failed to close container")
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := container.GetConfig()
	events := container.GetEventManager()

	events.AddEventListener(event.AllEvents, func(e entity.Event) {
		zap.L().With(zap.String("type", string(e.Type)), zap.Uint64("sequence", e.Sequence)).Debug("Marketplace: Event committed")
	})

	if len(cfg.ElasticSearch.Hosts) > 0 {
		a, err := container.GetArchive()
		if err != nil {
			zap.L().With(zap.Error(err)).Fatal("Failed to start archive")
		}
		if err := a.InstallMapping(ctx); err != nil {
			zap.L().With(zap.Error(err)).Fatal("Failed to install archive mapping")
		}
		events.AddEventListener(event.AllEvents, a.Add)
		go a.Run(ctx, archiveInterval)
	}

	if cfg.Aws.QueueUrl != "" {
		m, err := container.GetMessenger()
		if err != nil {
			zap.L().With(zap.Error(err)).Fatal("Failed to start messenger")
		}
		events.AddEventListener(event.AllEvents, func(e entity.Event) {
			if err := m.SendMessage(context.Background(), e); err != nil {
				zap.L().With(zap.Error(err), zap.String("id", e.ID)).Error("Failed to publish event")
			}
		})
	}

	server := &http.Server{Addr: ":" + cfg.ApiPort, Handler: container.GetServer().Router()}
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zap.L().With(zap.Error(err)).Error("Failed to shut down API")
		}
	}()

	zap.L().With(
		zap.String("port", cfg.ApiPort),
		zap.String("registry", cfg.Registry),
		zap.String("marketplace", container.GetMarketplace().Address().String()),
	).Info("Marketplace Started")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zap.L().With(zap.Error(err)).Error("Failed to start marketplace")
	}
}
