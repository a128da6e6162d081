// Package bot dispatches inbound Discord interactions to command and
// autocomplete handlers. Every interaction terminates in exactly one HTTP
// response; handler faults surface as an apologetic message with HTTP 200,
// because Discord expects 200 even for logical failures.
package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hector-hyrivera/sparky-bot/internal/compose"
	"github.com/hector-hyrivera/sparky-bot/internal/discord"
	"github.com/hector-hyrivera/sparky-bot/internal/pogo"
	"github.com/hector-hyrivera/sparky-bot/internal/resolve"
)

const msgInternalError = "Sorry, an error occurred while processing your request."

// Settings is the channel configuration surface of the store.
type Settings interface {
	EventsChannel(ctx context.Context) (string, error)
	SetEventsChannel(ctx context.Context, channelID string) error
	RaidsChannel(ctx context.Context) (string, error)
	SetRaidsChannel(ctx context.Context, channelID string) error
}

// Runner triggers an immediate announcement pass (the /eventsrun command).
type Runner interface {
	RunEvents(ctx context.Context) error
}

type commandFunc func(ctx context.Context, data discord.InteractionData) discord.MessageData
type autocompleteFunc func(ctx context.Context, typed string) []discord.Choice

type Handler struct {
	data     *pogo.Datasets
	settings Settings
	runner   Runner
	now      func() time.Time

	commands     map[string]commandFunc
	autocomplete map[string]autocompleteFunc
}

func New(data *pogo.Datasets, settings Settings, runner Runner) *Handler {
	h := &Handler{
		data:     data,
		settings: settings,
		runner:   runner,
		now:      time.Now,
	}
	h.commands = map[string]commandFunc{
		"pokemon":       h.handlePokemon,
		"hundo":         h.handleHundo,
		"currentraids":  h.handleCurrentRaids,
		"raidboss":      h.handleRaidBoss,
		"research":      h.handleResearch,
		"egg":           h.handleEgg,
		"events":        h.handleEvents,
		"rocket":        h.handleRocket,
		"promocodes":    h.handlePromoCodes,
		"eventschannel": h.handleEventsChannel,
		"raidschannel":  h.handleRaidsChannel,
		"eventsrun":     h.handleEventsRun,
	}
	h.autocomplete = map[string]autocompleteFunc{
		"pokemon":  h.autocompletePokemon,
		"hundo":    h.autocompleteRaidBoss,
		"raidboss": h.autocompleteRaidBoss,
		"research": h.autocompleteResearch,
		"egg":      h.autocompleteEgg,
		"events":   h.autocompleteEvents,
		"rocket":   h.autocompleteRocket,
	}
	return h
}

// HandleInteraction is the webhook endpoint. Signature verification has
// already happened in middleware.
func (h *Handler) HandleInteraction(c *fiber.Ctx) error {
	var inter discord.Interaction
	if err := json.Unmarshal(c.Body(), &inter); err != nil {
		log.Printf("[bot] unparsable interaction body: %v", err)
		return c.Status(fiber.StatusBadRequest).SendString("invalid JSON")
	}

	switch inter.Type {
	case discord.InteractionPing:
		return c.JSON(discord.Response{Type: discord.ResponsePong})

	case discord.InteractionCommand:
		data := h.runCommand(c.Context(), inter.Data)
		return c.JSON(discord.Response{Type: discord.ResponseChannelMessage, Data: data})

	case discord.InteractionAutocomplete:
		choices := h.runAutocomplete(c.Context(), inter.Data)
		return c.JSON(discord.Response{
			Type: discord.ResponseAutocompleteResult,
			Data: discord.AutocompleteData{Choices: choices},
		})
	}

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unsupported interaction type"})
}

// runCommand looks up and executes a command handler, converting panics
// into the generic apology.
func (h *Handler) runCommand(ctx context.Context, data discord.InteractionData) (out discord.MessageData) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[bot] command %q panicked: %v", data.Name, r)
			out = discord.MessageData{Content: msgInternalError}
		}
	}()

	handler, ok := h.commands[data.Name]
	if !ok {
		log.Printf("[bot] unknown command %q", data.Name)
		return discord.MessageData{Content: "Unknown command."}
	}
	return handler(ctx, data)
}

func (h *Handler) runAutocomplete(ctx context.Context, data discord.InteractionData) (choices []discord.Choice) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[bot] autocomplete %q panicked: %v", data.Name, r)
			choices = []discord.Choice{}
		}
	}()

	gen, ok := h.autocomplete[data.Name]
	if !ok {
		return []discord.Choice{}
	}
	if choices = gen(ctx, data.FocusedValue()); choices == nil {
		choices = []discord.Choice{}
	}
	return choices
}

// ── command handlers ─────────────────────────────────────────────────

func (h *Handler) handlePokemon(ctx context.Context, data discord.InteractionData) discord.MessageData {
	name := data.OptionValue("name")
	if name == "" {
		return discord.MessageData{Content: "Pokemon name is required."}
	}
	dex, err := h.data.Pokedex(ctx)
	if err != nil {
		return discord.MessageData{Content: "Sorry, I couldn't fetch the Pokédex data at the moment."}
	}
	p := resolve.Species(dex, name)
	if p == nil {
		return discord.MessageData{Content: fmt.Sprintf("Sorry, I couldn't find information for %s.", name)}
	}
	base := resolve.BaseByID(dex, p.ID)
	return discord.MessageData{Embeds: []discord.Embed{compose.Pokemon(p, base)}}
}

func (h *Handler) handleHundo(ctx context.Context, data discord.InteractionData) discord.MessageData {
	name := data.OptionValue("pokemon")
	if name == "" {
		return discord.MessageData{Content: "Pokemon name is required."}
	}
	raids, err := h.data.Raids(ctx)
	if err != nil {
		return discord.MessageData{Content: "Sorry, I couldn't fetch the raid data at the moment."}
	}
	boss, ok := resolve.RaidBoss(raids.Bosses, name)
	if !ok {
		return discord.MessageData{Content: fmt.Sprintf("Couldn't find %s in the current raid bosses.", name)}
	}
	base := resolve.BaseByID(raids.Pokedex, boss.ID)
	return discord.MessageData{Embeds: []discord.Embed{compose.Hundo(boss, base)}}
}

func (h *Handler) handleCurrentRaids(ctx context.Context, _ discord.InteractionData) discord.MessageData {
	raids, err := h.data.Raids(ctx)
	if err != nil {
		return discord.MessageData{Content: "Sorry, I couldn't fetch the raid data at the moment."}
	}
	embeds := compose.CurrentRaids(raids)
	if len(embeds) == 0 {
		return discord.MessageData{Content: "There are no raid bosses listed right now."}
	}
	if len(embeds) > discord.MaxEmbedsPerMessage {
		embeds = embeds[:discord.MaxEmbedsPerMessage]
	}
	return discord.MessageData{Embeds: embeds}
}

func (h *Handler) handleRaidBoss(ctx context.Context, data discord.InteractionData) discord.MessageData {
	name := data.OptionValue("name")
	if name == "" {
		return discord.MessageData{Content: "Boss name is required."}
	}
	raids, err := h.data.Raids(ctx)
	if err != nil {
		return discord.MessageData{Content: "Sorry, I couldn't fetch the raid data at the moment."}
	}
	boss, ok := resolve.RaidBoss(raids.Bosses, name)
	if !ok {
		return discord.MessageData{Content: fmt.Sprintf("Couldn't find %s in the current raid bosses.", name)}
	}
	base := resolve.BaseByID(raids.Pokedex, boss.ID)
	return discord.MessageData{Embeds: compose.RaidBoss(boss, base)}
}

func (h *Handler) handleResearch(ctx context.Context, data discord.InteractionData) discord.MessageData {
	query := data.OptionValue("task")
	if query == "" {
		return discord.MessageData{Content: "Research task is required."}
	}
	research, err := h.data.Research(ctx)
	if err != nil || len(research.Tasks) == 0 {
		return discord.MessageData{Content: "Sorry, I couldn't fetch the research data at the moment."}
	}
	task, ok := resolve.Match(research.Tasks, func(t pogo.ResearchTask) []string {
		return []string{t.Text}
	}, query)
	if !ok {
		return discord.MessageData{Content: fmt.Sprintf("Couldn't find research task: %q", query)}
	}
	return discord.MessageData{Embeds: []discord.Embed{compose.Research(task)}}
}

func (h *Handler) handleEgg(ctx context.Context, data discord.InteractionData) discord.MessageData {
	eggType := data.OptionValue("type")
	if eggType == "" {
		return discord.MessageData{Content: "Egg type is required."}
	}
	eggs, err := h.data.Eggs(ctx)
	if err != nil {
		return discord.MessageData{Content: "Sorry, I couldn't fetch egg data at this time."}
	}
	var pool []pogo.EggEntry
	for _, e := range eggs {
		if strings.EqualFold(e.EggType, eggType) {
			pool = append(pool, e)
		}
	}
	if len(pool) == 0 {
		return discord.MessageData{Content: fmt.Sprintf("Sorry, I couldn't find information for %q eggs.", eggType)}
	}
	return discord.MessageData{Embeds: []discord.Embed{compose.Egg(eggType, pool)}}
}

func (h *Handler) handleEvents(ctx context.Context, data discord.InteractionData) discord.MessageData {
	events, err := h.data.Events(ctx)
	if err != nil || len(events) == 0 {
		return discord.MessageData{Content: "Sorry, I couldn't fetch the events data at the moment."}
	}

	selected := data.OptionValue("event")
	if selected == "" {
		return discord.MessageData{Content: compose.EventSummary(events, h.now())}
	}
	for _, ev := range events {
		if ev.EventID == selected {
			return discord.MessageData{Embeds: []discord.Embed{compose.Event(ev)}}
		}
	}
	return discord.MessageData{Content: "Event not found."}
}

func (h *Handler) handleRocket(ctx context.Context, data discord.InteractionData) discord.MessageData {
	name := data.OptionValue("name")
	if name == "" {
		return discord.MessageData{Content: "Leader or grunt name is required."}
	}
	lineups, err := h.data.Rockets(ctx)
	if err != nil {
		return discord.MessageData{Content: "Sorry, I couldn't fetch the Team GO Rocket data at the moment."}
	}
	lineup, ok := resolve.Match(lineups, func(r pogo.RocketLineup) []string {
		return []string{r.Name, r.Title}
	}, name)
	if !ok {
		return discord.MessageData{Content: fmt.Sprintf("Couldn't find a Team GO Rocket lineup for %s.", name)}
	}
	return discord.MessageData{Embeds: []discord.Embed{compose.Rocket(lineup)}}
}

func (h *Handler) handlePromoCodes(ctx context.Context, _ discord.InteractionData) discord.MessageData {
	codes, err := h.data.PromoCodes(ctx)
	if err != nil {
		return discord.MessageData{Content: "Sorry, I couldn't fetch the promo code data at the moment."}
	}
	if len(codes) == 0 {
		return discord.MessageData{Content: "There are no active promo codes right now."}
	}
	return discord.MessageData{Embeds: []discord.Embed{compose.PromoCodes(codes)}}
}

func (h *Handler) handleEventsChannel(ctx context.Context, data discord.InteractionData) discord.MessageData {
	if channelID := data.OptionValue("channel"); channelID != "" {
		if err := h.settings.SetEventsChannel(ctx, channelID); err != nil {
			log.Printf("[bot] set events channel: %v", err)
			return discord.MessageData{Content: msgInternalError}
		}
		return discord.MessageData{Content: fmt.Sprintf("Event announcements will be posted in <#%s>.", channelID)}
	}
	channelID, err := h.settings.EventsChannel(ctx)
	if err != nil {
		log.Printf("[bot] get events channel: %v", err)
		return discord.MessageData{Content: msgInternalError}
	}
	if channelID == "" {
		return discord.MessageData{Content: "No events channel is configured yet."}
	}
	return discord.MessageData{Content: fmt.Sprintf("Event announcements currently go to <#%s>.", channelID)}
}

func (h *Handler) handleRaidsChannel(ctx context.Context, data discord.InteractionData) discord.MessageData {
	if channelID := data.OptionValue("channel"); channelID != "" {
		if err := h.settings.SetRaidsChannel(ctx, channelID); err != nil {
			log.Printf("[bot] set raids channel: %v", err)
			return discord.MessageData{Content: msgInternalError}
		}
		return discord.MessageData{Content: fmt.Sprintf("The weekly raids summary will be posted in <#%s>.", channelID)}
	}
	channelID, err := h.settings.RaidsChannel(ctx)
	if err != nil {
		log.Printf("[bot] get raids channel: %v", err)
		return discord.MessageData{Content: msgInternalError}
	}
	if channelID == "" {
		return discord.MessageData{Content: "No raids channel is configured yet."}
	}
	return discord.MessageData{Content: fmt.Sprintf("The weekly raids summary currently goes to <#%s>.", channelID)}
}

func (h *Handler) handleEventsRun(_ context.Context, _ discord.InteractionData) discord.MessageData {
	// Runs detached; the interaction must be answered within Discord's
	// three-second window and a full pass can exceed it.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := h.runner.RunEvents(ctx); err != nil {
			log.Printf("[bot] manual events run failed: %v", err)
		}
	}()
	return discord.MessageData{Content: "Events check triggered."}
}
