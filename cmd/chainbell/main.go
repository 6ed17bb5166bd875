package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chainbell/chainbell/internal/addrbook"
	"github.com/chainbell/chainbell/internal/chainpoll"
	"github.com/chainbell/chainbell/internal/classify"
	"github.com/chainbell/chainbell/internal/config"
	"github.com/chainbell/chainbell/internal/handlers/cli"
	"github.com/chainbell/chainbell/internal/infra/blockchain/ethereum"
	"github.com/chainbell/chainbell/internal/infra/explorer/etherscan"
	"github.com/chainbell/chainbell/internal/infra/messaging/telegram"
	"github.com/chainbell/chainbell/internal/infra/storage/redis"
	"github.com/chainbell/chainbell/internal/notify"
	"github.com/chainbell/chainbell/internal/pkg/logger"
	"github.com/chainbell/chainbell/internal/pkg/resilience/retry"
	"github.com/chainbell/chainbell/internal/pkg/telemetry"
	transporthttp "github.com/chainbell/chainbell/internal/pkg/transport/http"
	"github.com/chainbell/chainbell/internal/pkg/transport/jsonrpc"
	"github.com/chainbell/chainbell/internal/relay"
	"github.com/chainbell/chainbell/internal/txdetail"

	"github.com/go-telegram/bot"
	"github.com/joho/godotenv"
)

const serviceName = "chainbell"

func main() {
	ctx := context.Background()

	// Best effort: a missing .env file just means the environment is already set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	if cfg.OtelEnabled {
		shutdown, err := telemetry.Init(ctx, serviceName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "telemetry init error: %v\n", err)
			os.Exit(1)
		}
		defer shutdown(ctx)
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(ctx, cfg); err != nil {
		logger.Fatal(ctx, "chainbell terminated", "error", err)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	book, err := addrbook.New(cfg.Addresses, cfg.Names)
	if err != nil {
		return fmt.Errorf("building address registry: %w", err)
	}

	nodeConn := jsonrpc.NewClient(transporthttp.NewClient().StandardClient(), cfg.ProviderEndpoint())
	ethClient := ethereum.NewClient(nodeConn,
		ethereum.WithPollInterval(time.Duration(cfg.PollIntervalSeconds)*time.Second),
	)

	explorer := etherscan.NewClient(transporthttp.NewClient(), cfg.EtherscanAPIKey)

	telegramBot, err := bot.New(cfg.TelegramBotToken)
	if err != nil {
		return fmt.Errorf("creating telegram bot: %w", err)
	}
	messenger := telegram.NewMessenger(telegramBot, cfg.ChatID)

	var (
		checkpoints chainpoll.CheckpointStorage = chainpoll.NewMemoryCheckpoint()
		guard       notify.DeliveryGuard        = notify.NewMemoryDeliveryGuard()
	)
	if cfg.RedisAddr != "" {
		store, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer store.Close()

		checkpoints = store
		guard = store
	}

	poller := chainpoll.New(
		map[string]chainpoll.Blockchain{"ethereum": ethClient},
		chainpoll.WithCheckpointStorage(checkpoints),
		chainpoll.WithRetry(retry.New()),
	)

	relayer := relay.New(
		poller,
		book,
		txdetail.New(explorer),
		classify.New(ethereum.NewTokenDirectory(ethClient)),
		notify.New(messenger, notify.WithDeliveryGuard(guard)),
		relay.WithCheckpointStorage(checkpoints),
	)

	return cli.Run(ctx, relayer)
}
