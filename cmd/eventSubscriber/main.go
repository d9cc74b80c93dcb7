package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/config"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/config/di"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/messenger"
	"github.com/aws/aws-sdk-go/service/sqs"
	"go.uber.org/zap"
)

func main() {
	config.Init()

	container, err := di.NewContainer()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}
	messageService, err := container.GetMessenger()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to start messenger")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	zap.L().Info("Subscribing to marketplace events")
	messages := make(chan *sqs.Message, 10)
	go func() {
		if err := messageService.PollMessages(ctx, messages); err != nil && ctx.Err() == nil {
			zap.L().With(zap.Error(err)).Error("Failed to poll messages")
			cancel()
		}
	}()

	for message := range messages {
		e, err := messenger.DecodeEvent(message)
		if err != nil {
			zap.L().With(zap.Error(err)).Error("Failed to read message")
			continue
		}
		zap.L().With(
			zap.String("type", string(e.Type)),
			zap.Uint64("sequence", e.Sequence),
			zap.String("collection", e.Collection.String()),
			zap.String("tokenId", e.TokenID),
		).Info("Marketplace event")

		if err := messageService.DeleteMessage(ctx, message); err != nil {
			zap.L().With(zap.Error(err)).Error("Failed to delete message")
		}
	}
}
