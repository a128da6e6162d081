// Command register pushes the slash-command definitions to Discord. Run it
// once after deploying or whenever a command definition changes. With
// GUILD_ID set the commands are registered guild-scoped (instant, good for
// testing); otherwise they are registered globally.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"github.com/hector-hyrivera/sparky-bot/internal/config"
)

const apiBase = "https://discord.com/api/v10"

// Discord application command option types.
const (
	optString  = 3
	optChannel = 7
)

type commandOption struct {
	Type         int    `json:"type"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Required     bool   `json:"required,omitempty"`
	Autocomplete bool   `json:"autocomplete,omitempty"`
}

type commandDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Options     []commandOption `json:"options,omitempty"`
}

func commands() []commandDef {
	return []commandDef{
		{
			Name:        "pokemon",
			Description: "Get information about a Pokemon",
			Options: []commandOption{
				{Type: optString, Name: "name", Description: "Pokemon name", Required: true, Autocomplete: true},
			},
		},
		{
			Name:        "hundo",
			Description: "Get the perfect CP values for a raid boss",
			Options: []commandOption{
				{Type: optString, Name: "pokemon", Description: "Raid boss name", Required: true, Autocomplete: true},
			},
		},
		{
			Name:        "currentraids",
			Description: "List the current raid bosses by tier",
		},
		{
			Name:        "raidboss",
			Description: "Get details for a current raid boss",
			Options: []commandOption{
				{Type: optString, Name: "name", Description: "Raid boss name", Required: true, Autocomplete: true},
			},
		},
		{
			Name:        "research",
			Description: "Look up a field research task and its rewards",
			Options: []commandOption{
				{Type: optString, Name: "task", Description: "Research task text", Required: true, Autocomplete: true},
			},
		},
		{
			Name:        "egg",
			Description: "See what hatches from an egg type",
			Options: []commandOption{
				{Type: optString, Name: "type", Description: "Egg type", Required: true, Autocomplete: true},
			},
		},
		{
			Name:        "events",
			Description: "List current and upcoming events, or show one in detail",
			Options: []commandOption{
				{Type: optString, Name: "event", Description: "Event to show", Autocomplete: true},
			},
		},
		{
			Name:        "rocket",
			Description: "Get a Team GO Rocket leader or grunt lineup",
			Options: []commandOption{
				{Type: optString, Name: "name", Description: "Leader or grunt name", Required: true, Autocomplete: true},
			},
		},
		{
			Name:        "promocodes",
			Description: "List active promo codes",
		},
		{
			Name:        "eventschannel",
			Description: "Show or set the channel for event announcements",
			Options: []commandOption{
				{Type: optChannel, Name: "channel", Description: "Channel to announce events in"},
			},
		},
		{
			Name:        "raidschannel",
			Description: "Show or set the channel for the weekly raid summary",
			Options: []commandOption{
				{Type: optChannel, Name: "channel", Description: "Channel to post the weekly raid summary in"},
			},
		},
		{
			Name:        "eventsrun",
			Description: "Trigger an immediate event announcement check",
		},
	}
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.BotToken == "" || cfg.ApplicationID == "" {
		log.Fatal("DISCORD_TOKEN and DISCORD_CLIENT_ID are required")
	}

	url := fmt.Sprintf("%s/applications/%s/commands", apiBase, cfg.ApplicationID)
	scope := "global"
	if cfg.GuildID != "" {
		url = fmt.Sprintf("%s/applications/%s/guilds/%s/commands", apiBase, cfg.ApplicationID, cfg.GuildID)
		scope = "guild " + cfg.GuildID
	}

	body, err := json.Marshal(commands())
	if err != nil {
		log.Fatalf("encode commands: %v", err)
	}

	// Bulk overwrite: commands absent from the payload are removed.
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bot "+cfg.BotToken)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("register commands: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Fatalf("register commands: unexpected status %d: %s", resp.StatusCode, excerpt)
	}
	log.Printf("registered %d commands (%s)", len(commands()), scope)
}
