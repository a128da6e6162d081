package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"github.com/hector-hyrivera/sparky-bot/internal/announce"
	"github.com/hector-hyrivera/sparky-bot/internal/bot"
	"github.com/hector-hyrivera/sparky-bot/internal/cache"
	"github.com/hector-hyrivera/sparky-bot/internal/config"
	"github.com/hector-hyrivera/sparky-bot/internal/discord"
	"github.com/hector-hyrivera/sparky-bot/internal/pogo"
	"github.com/hector-hyrivera/sparky-bot/internal/store"
)

func main() {
	// Load .env if present.
	_ = godotenv.Load()

	cfg := config.Load()

	if cfg.PublicKey == "" {
		log.Fatal("DISCORD_PUBLIC_KEY is required. Get it from the Discord developer portal.")
	}
	publicKey, err := discord.ParsePublicKey(cfg.PublicKey)
	if err != nil {
		log.Fatalf("public key: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Redis ---
	st, err := store.New(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer st.Close()
	log.Println("redis connected")

	// --- Feed datasets behind the TTL cache ---
	data := pogo.NewDatasets(cfg, cache.New())

	// --- Discord REST client + announcement scheduler ---
	client := discord.NewClient(cfg.BotToken)
	announcer := announce.New(data, st, client, cfg.AnnounceInterval)
	if cfg.AnnounceEnabled {
		if cfg.BotToken == "" {
			log.Fatal("DISCORD_TOKEN is required when announcements are enabled.")
		}
		go announcer.Start(ctx)
	} else {
		log.Println("announcement scheduler disabled")
	}

	// --- Interaction handler ---
	h := bot.New(data, st, announcer)

	// --- Fiber HTTP Server ---
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Post("/interactions", discord.VerifyMiddleware(publicKey), h.HandleInteraction)

	// --- Graceful shutdown ---
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	log.Printf("server starting on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
