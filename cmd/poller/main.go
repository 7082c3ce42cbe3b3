package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/vkurushin/wordchain/internal/config"
	"github.com/vkurushin/wordchain/internal/logger"
	"github.com/vkurushin/wordchain/internal/queue"
	"github.com/vkurushin/wordchain/internal/vk"
)

// The poller is a separate process so chat ingestion survives bot
// restarts: updates wait in the durable queue until a worker is back.
func main() {
	logger.Init()
	cfg := config.Load()
	if cfg.VKToken == "" || cfg.VKGroupID == "" {
		log.Fatal().Msg("VK_TOKEN and VK_GROUP_ID are required")
	}

	publisher, err := queue.NewPublisher(cfg.AmqpURL, cfg.QueueName)
	if err != nil {
		log.Fatal().Err(err).Msg("Queue connection failed")
	}
	defer publisher.Close()

	client := vk.NewClient(cfg.VKToken, cfg.VKGroupID, cfg.VKAPIVersion)
	poller := vk.NewLongPoller(client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutting down poller")
		cancel()
	}()

	log.Info().Str("group", cfg.VKGroupID).Str("queue", cfg.QueueName).Msg("Poller starting")
	if err := poller.Run(ctx, publisher.Publish); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("Long poller failed")
	}
	log.Info().Msg("Poller stopped")
}
