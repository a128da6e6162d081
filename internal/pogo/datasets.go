package pogo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/hector-hyrivera/sparky-bot/internal/cache"
	"github.com/hector-hyrivera/sparky-bot/internal/config"
)

// Cache keys, one per feed.
const (
	keyPokedex    = "pokedex"
	keyRaids      = "raids"
	keyResearch   = "research"
	keyEggs       = "eggs"
	keyRockets    = "rockets"
	keyPromoCodes = "promocodes"
	keyEvents     = "events"
)

// tierOrder is the emission order for the tier-keyed raid schema.
var tierOrder = []string{"mega", "lvl5", "lvl4", "lvl3", "lvl2", "lvl1"}

// RaidData is the normalized raid feed: a flat tier-ordered boss list plus
// the companion pokedex slice some revisions ship for asset lookups.
type RaidData struct {
	Bosses  []RaidBoss
	Pokedex []*Species
}

// ResearchData is the normalized research feed.
type ResearchData struct {
	Tasks        []ResearchTask
	Breakthrough *ResearchTask
}

// Datasets exposes every upstream feed behind the TTL cache. A failed fetch
// returns an error; the cached copy is only replaced on success.
type Datasets struct {
	cfg    *config.Config
	cache  *cache.Cache
	client *http.Client
	ttl    time.Duration
}

func NewDatasets(cfg *config.Config, c *cache.Cache) *Datasets {
	return &Datasets{
		cfg:    cfg,
		cache:  c,
		client: newFeedClient(),
		ttl:    time.Duration(cfg.CacheTTL) * time.Second,
	}
}

// Pokedex returns all species records.
func (d *Datasets) Pokedex(ctx context.Context) ([]*Species, error) {
	if v, ok := d.cache.Get(keyPokedex); ok {
		return v.([]*Species), nil
	}
	var dex []*Species
	if err := fetchJSON(ctx, d.client, d.cfg.PokedexURL, &dex, func() bool { return len(dex) > 0 }); err != nil {
		log.Printf("[pogo] pokedex fetch failed: %v", err)
		return nil, err
	}
	d.cache.Set(keyPokedex, dex, d.ttl)
	return dex, nil
}

// Raids returns the normalized raid boss feed. Both upstream schema
// revisions (tier-keyed object and flat array with a tier field) come out as
// the same ordered sequence.
func (d *Datasets) Raids(ctx context.Context) (*RaidData, error) {
	if v, ok := d.cache.Get(keyRaids); ok {
		return v.(*RaidData), nil
	}
	var raw json.RawMessage
	if err := fetchJSON(ctx, d.client, d.cfg.RaidBossURL, &raw, func() bool { return looksLikeRaidFeed(raw) }); err != nil {
		log.Printf("[pogo] raid fetch failed: %v", err)
		return nil, err
	}
	data, err := normalizeRaids(raw)
	if err != nil {
		log.Printf("[pogo] raid normalize failed for %s: %v", d.cfg.RaidBossURL, err)
		return nil, err
	}
	d.cache.Set(keyRaids, data, d.ttl)
	return data, nil
}

// Research returns the normalized research feed. The bare-array and
// {tasks:[...]} revisions come out as the same task sequence.
func (d *Datasets) Research(ctx context.Context) (*ResearchData, error) {
	if v, ok := d.cache.Get(keyResearch); ok {
		return v.(*ResearchData), nil
	}
	var raw json.RawMessage
	if err := fetchJSON(ctx, d.client, d.cfg.ResearchURL, &raw, func() bool { return looksLikeResearchFeed(raw) }); err != nil {
		log.Printf("[pogo] research fetch failed: %v", err)
		return nil, err
	}
	data, err := normalizeResearch(raw)
	if err != nil {
		log.Printf("[pogo] research normalize failed for %s: %v", d.cfg.ResearchURL, err)
		return nil, err
	}
	d.cache.Set(keyResearch, data, d.ttl)
	return data, nil
}

// Eggs returns the current egg pool.
func (d *Datasets) Eggs(ctx context.Context) ([]EggEntry, error) {
	if v, ok := d.cache.Get(keyEggs); ok {
		return v.([]EggEntry), nil
	}
	var eggs []EggEntry
	if err := fetchJSON(ctx, d.client, d.cfg.EggsURL, &eggs, func() bool { return len(eggs) > 0 }); err != nil {
		log.Printf("[pogo] egg fetch failed: %v", err)
		return nil, err
	}
	d.cache.Set(keyEggs, eggs, d.ttl)
	return eggs, nil
}

// Rockets returns the current Team GO Rocket lineups.
func (d *Datasets) Rockets(ctx context.Context) ([]RocketLineup, error) {
	if v, ok := d.cache.Get(keyRockets); ok {
		return v.([]RocketLineup), nil
	}
	var wire []rocketLineupWire
	if err := fetchJSON(ctx, d.client, d.cfg.RocketURL, &wire, nil); err != nil {
		log.Printf("[pogo] rocket fetch failed: %v", err)
		return nil, err
	}
	lineups := make([]RocketLineup, 0, len(wire))
	for _, w := range wire {
		lineups = append(lineups, w.normalize())
	}
	d.cache.Set(keyRockets, lineups, d.ttl)
	return lineups, nil
}

// PromoCodes returns the currently known promo codes.
func (d *Datasets) PromoCodes(ctx context.Context) ([]PromoCode, error) {
	if v, ok := d.cache.Get(keyPromoCodes); ok {
		return v.([]PromoCode), nil
	}
	var codes []PromoCode
	if err := fetchJSON(ctx, d.client, d.cfg.PromoCodesURL, &codes, nil); err != nil {
		log.Printf("[pogo] promo code fetch failed: %v", err)
		return nil, err
	}
	d.cache.Set(keyPromoCodes, codes, d.ttl)
	return codes, nil
}

// Events returns all scraped events, past and future.
func (d *Datasets) Events(ctx context.Context) ([]Event, error) {
	if v, ok := d.cache.Get(keyEvents); ok {
		return v.([]Event), nil
	}
	var events []Event
	if err := fetchJSON(ctx, d.client, d.cfg.EventsURL, &events, nil); err != nil {
		log.Printf("[pogo] events fetch failed: %v", err)
		return nil, err
	}
	d.cache.Set(keyEvents, events, d.ttl)
	return events, nil
}

// ── raid schema normalization ────────────────────────────────────────

type tieredRaidFile struct {
	CurrentList map[string][]RaidBoss `json:"currentList"`
	Pokedex     []*Species            `json:"pokedex"`
}

func looksLikeRaidFeed(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return false
	}
	if trimmed[0] == '[' {
		return true
	}
	if trimmed[0] != '{' {
		return false
	}
	var probe struct {
		CurrentList json.RawMessage `json:"currentList"`
	}
	return json.Unmarshal(raw, &probe) == nil && len(probe.CurrentList) > 0
}

// normalizeRaids flattens either raid schema revision into one tier-ordered
// boss sequence. Tier-keyed input is emitted mega first, then lvl5 down to
// lvl1; unknown tier keys follow in sorted order so nothing is dropped.
func normalizeRaids(raw json.RawMessage) (*RaidData, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var bosses []RaidBoss
		if err := json.Unmarshal(raw, &bosses); err != nil {
			return nil, fmt.Errorf("flat raid list: %w", err)
		}
		return &RaidData{Bosses: bosses}, nil
	}

	var file tieredRaidFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("tiered raid list: %w", err)
	}

	seen := make(map[string]bool, len(tierOrder))
	var bosses []RaidBoss
	appendTier := func(tier string) {
		for _, b := range file.CurrentList[tier] {
			if b.Tier == "" {
				b.Tier = tier
			}
			bosses = append(bosses, b)
		}
		seen[tier] = true
	}
	for _, tier := range tierOrder {
		appendTier(tier)
	}
	var extra []string
	for tier := range file.CurrentList {
		if !seen[tier] {
			extra = append(extra, tier)
		}
	}
	sort.Strings(extra)
	for _, tier := range extra {
		appendTier(tier)
	}
	return &RaidData{Bosses: bosses, Pokedex: file.Pokedex}, nil
}

// ── research schema normalization ────────────────────────────────────

type wrappedResearchFile struct {
	Tasks        []ResearchTask `json:"tasks"`
	Breakthrough *ResearchTask  `json:"breakthrough"`
}

func looksLikeResearchFeed(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return false
	}
	if trimmed[0] == '[' {
		return true
	}
	if trimmed[0] != '{' {
		return false
	}
	var probe struct {
		Tasks json.RawMessage `json:"tasks"`
	}
	return json.Unmarshal(raw, &probe) == nil && len(probe.Tasks) > 0
}

func normalizeResearch(raw json.RawMessage) (*ResearchData, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var tasks []ResearchTask
		if err := json.Unmarshal(raw, &tasks); err != nil {
			return nil, fmt.Errorf("bare research list: %w", err)
		}
		return &ResearchData{Tasks: tasks}, nil
	}
	var file wrappedResearchFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("wrapped research list: %w", err)
	}
	return &ResearchData{Tasks: file.Tasks, Breakthrough: file.Breakthrough}, nil
}

// ── rocket lineup normalization ──────────────────────────────────────

type rocketLineupWire struct {
	Name       string `json:"name"`
	Title      string `json:"title"`
	Image      string `json:"image"`
	Encounters struct {
		First  []RocketPokemon `json:"first"`
		Second []RocketPokemon `json:"second"`
		Third  []RocketPokemon `json:"third"`
	} `json:"encounters"`
}

func (w rocketLineupWire) normalize() RocketLineup {
	return RocketLineup{
		Name:  w.Name,
		Title: w.Title,
		Image: w.Image,
		Slots: [][]RocketPokemon{w.Encounters.First, w.Encounters.Second, w.Encounters.Third},
	}
}
