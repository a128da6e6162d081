package config

import (
	"os"
	"strconv"
)

const (
	// DefaultCacheTTLSec is how long fetched feed data stays valid.
	DefaultCacheTTLSec = 300
	// DefaultAnnounceIntervalSec is seconds between announcement scheduler ticks.
	DefaultAnnounceIntervalSec = 1800
)

type Config struct {
	Port             string
	RedisURL         string
	PublicKey        string // Discord application public key (hex), verifies webhook signatures
	BotToken         string
	ApplicationID    string
	GuildID          string // optional, register commands per-guild for faster updates
	CacheTTL         int    // seconds fetched feed data stays cached
	AnnounceEnabled  bool
	AnnounceInterval int // seconds between announcement scheduler ticks

	PokedexURL    string
	RaidBossURL   string
	ResearchURL   string
	EggsURL       string
	EventsURL     string
	RocketURL     string
	PromoCodesURL string
}

func Load() *Config {
	return &Config{
		Port:             getEnv("PORT", "8080"),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
		PublicKey:        getEnv("DISCORD_PUBLIC_KEY", ""),
		BotToken:         getEnv("DISCORD_TOKEN", ""),
		ApplicationID:    getEnv("DISCORD_CLIENT_ID", ""),
		GuildID:          getEnv("DISCORD_GUILD_ID", ""),
		CacheTTL:         getEnvInt("CACHE_TTL", DefaultCacheTTLSec),
		AnnounceEnabled:  getEnvBool("ANNOUNCE_ENABLED", true),
		AnnounceInterval: getEnvInt("ANNOUNCE_INTERVAL", DefaultAnnounceIntervalSec),

		PokedexURL:    getEnv("POKEDEX_URL", "https://pokemon-go-api.github.io/pokemon-go-api/api/pokedex.json"),
		RaidBossURL:   getEnv("RAID_BOSS_URL", "https://pokemon-go-api.github.io/pokemon-go-api/api/raidboss.json"),
		ResearchURL:   getEnv("RESEARCH_URL", "https://raw.githubusercontent.com/bigfoott/ScrapedDuck/data/research.json"),
		EggsURL:       getEnv("EGGS_URL", "https://raw.githubusercontent.com/bigfoott/ScrapedDuck/data/eggs.json"),
		EventsURL:     getEnv("EVENTS_URL", "https://raw.githubusercontent.com/bigfoott/ScrapedDuck/data/events.json"),
		RocketURL:     getEnv("ROCKET_URL", "https://raw.githubusercontent.com/bigfoott/ScrapedDuck/data/grunts.json"),
		PromoCodesURL: getEnv("PROMO_CODES_URL", "https://raw.githubusercontent.com/bigfoott/ScrapedDuck/data/promos.json"),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}
