package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"telegram-gateway-bot/internal/adapters/exporter"
	"telegram-gateway-bot/internal/adapters/imgbb"
	"telegram-gateway-bot/internal/bot"
	"telegram-gateway-bot/internal/core/services"
	"telegram-gateway-bot/internal/domain"
	"telegram-gateway-bot/internal/log"
	"telegram-gateway-bot/internal/pkg/config"
	"telegram-gateway-bot/internal/registry"
	"telegram-gateway-bot/internal/server"
	"telegram-gateway-bot/internal/telegram"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}

// run инкапсулирует всю логику инициализации и запуска приложения.
func run() error {
	// 1. Загрузка и валидация конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		// Логгер еще не инициализирован, выводим в stderr
		_, _ = fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Инициализация логгера с маскировкой токенов
	logger := log.New(cfg.Logging, os.Stdout, cfg.Bot.Token, cfg.Relay.ImgBBAPIKey)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Хранилище пользователей
	users, err := registry.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("failed to open user registry: %w", err)
	}
	defer func() {
		if err := users.Close(); err != nil {
			logger.Error("failed to close user registry", slog.String("error", err.Error()))
		}
	}()

	// 4. Клиент Telegram
	api, err := telegram.NewBotAPI(cfg.Bot, logger)
	if err != nil {
		return fmt.Errorf("failed to create telegram client: %w", err)
	}
	gateway := telegram.NewGateway(api, logger.With(slog.String("component", "telegram")))

	// 5. Сервисы
	communities := make([]domain.CommunityHandle, 0, len(cfg.Membership.RequiredChannels))
	for _, ch := range cfg.Membership.RequiredChannels {
		communities = append(communities, domain.CommunityHandle(ch))
	}
	verifier := services.NewMembershipVerifier(gateway, communities,
		services.WithCheckTimeout(cfg.Membership.CheckTimeout()),
		services.WithMembershipLogger(logger.With(slog.String("component", "membership"))),
	)
	relay := services.NewMediaRelay(gateway,
		imgbb.NewClient(cfg.Relay.ImgBBEndpoint, cfg.Relay.ImgBBAPIKey, nil),
		services.WithFetchTimeout(cfg.Relay.FetchTimeout()),
		services.WithUploadTimeout(cfg.Relay.UploadTimeout()),
		services.WithMaxImageBytes(cfg.Relay.MaxImageBytes),
		services.WithRelayLogger(logger.With(slog.String("component", "relay"))),
	)
	delivery := telegram.NewGateway(
		telegram.DeliveryAPI(api, cfg.Broadcast.SendTimeout()),
		logger.With(slog.String("component", "telegram"), slog.String("client", "delivery")),
	)
	broadcaster := services.NewBroadcastEngine(users, delivery, cfg.Bot.AdminID,
		services.WithPoolSize(cfg.Broadcast.PoolSize),
		services.WithSendTimeout(cfg.Broadcast.SendTimeout()),
		services.WithBroadcastLogger(logger.With(slog.String("component", "broadcast"))),
	)

	b := bot.NewBot(api, cfg.Bot, cfg.Assets, bot.Services{
		Verifier:    verifier,
		Relay:       relay,
		Broadcaster: broadcaster,
		Registry:    users,
		Exporter:    exporter.NewExcelExporter(),
	}, logger.With(slog.String("component", "bot")))

	srv := server.New(cfg.Address(), logger.With(slog.String("component", "server")))

	// 6. Запуск бота и сервера, graceful shutdown
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting bot", slog.Int("communities", len(communities)))
		b.Start(gctx)
		logger.Info("Bot stopped")
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting server", slog.String("addr", cfg.Address()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Signal received, shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Application exited gracefully")
	return nil
}
