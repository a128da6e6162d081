package pogo

import (
	"sort"
	"strings"
	"time"
)

// Species is one Pokédex entry. Region forms and mega evolutions nest
// records of the same shape under id-keyed maps.
type Species struct {
	ID               string              `json:"id"`
	FormID           string              `json:"formId"`
	DexNr            int                 `json:"dexNr"`
	Names            map[string]string   `json:"names"`
	Stats            Stats               `json:"stats"`
	PrimaryType      *Type               `json:"primaryType"`
	SecondaryType    *Type               `json:"secondaryType"`
	Assets           *Assets             `json:"assets"`
	AssetForms       []AssetForm         `json:"assetForms"`
	RegionForms      map[string]*Species `json:"regionForms"`
	MegaEvolutions   map[string]*Species `json:"megaEvolutions"`
	HasMegaEvolution bool                `json:"hasMegaEvolution"`
}

type Stats struct {
	Stamina int `json:"stamina"`
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
}

type Type struct {
	Type  string            `json:"type"`
	Names map[string]string `json:"names"`
}

type Assets struct {
	Image      string `json:"image"`
	ShinyImage string `json:"shinyImage"`
}

type AssetForm struct {
	Form       string `json:"form"`
	Costume    string `json:"costume"`
	Image      string `json:"image"`
	ShinyImage string `json:"shinyImage"`
}

// Name returns the English display name.
func (s *Species) Name() string {
	if s == nil {
		return ""
	}
	return s.Names["English"]
}

// FormName returns the human-readable form qualifier (form id with
// underscores as spaces), or "" for base entries.
func (s *Species) FormName() string {
	if s == nil || s.FormID == "" || s.FormID == s.ID {
		return ""
	}
	return strings.ReplaceAll(s.FormID, "_", " ")
}

// RegionFormIDs returns region form ids in sorted order. Go maps do not
// preserve upstream JSON key order, so resolution order is pinned to a
// stable sort of the ids instead.
func (s *Species) RegionFormIDs() []string {
	if len(s.RegionForms) == 0 {
		return nil
	}
	ids := make([]string, 0, len(s.RegionForms))
	for id := range s.RegionForms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MegaEvolutionIDs returns mega/primal evolution ids in sorted order.
func (s *Species) MegaEvolutionIDs() []string {
	if len(s.MegaEvolutions) == 0 {
		return nil
	}
	ids := make([]string, 0, len(s.MegaEvolutions))
	for id := range s.MegaEvolutions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TypeName returns the English name of a type record.
func (t *Type) Name() string {
	if t == nil {
		return ""
	}
	return t.Names["English"]
}

// RaidBoss is one normalized raid boss entry. Tier is always populated,
// regardless of which upstream schema revision supplied the record.
type RaidBoss struct {
	ID           string             `json:"id"`
	FormID       string             `json:"formId"`
	Names        map[string]string  `json:"names"`
	Tier         string             `json:"tier"`
	Types        []string           `json:"types"`
	CPRange      []int              `json:"cpRange"`
	CPRangeBoost []int              `json:"cpRangeBoost"`
	Shiny        bool               `json:"shiny"`
	Counter      map[string]float64 `json:"counter"`
	Weather      []string           `json:"weather"`
	Assets       *Assets            `json:"assets"`
}

// Name returns the English display name.
func (b RaidBoss) Name() string {
	return b.Names["English"]
}

// PerfectCP returns the top of the normal CP range, or 0 if absent.
func (b RaidBoss) PerfectCP() int {
	if len(b.CPRange) < 2 {
		return 0
	}
	return b.CPRange[1]
}

// PerfectCPBoosted returns the top of the weather-boosted CP range, or 0.
func (b RaidBoss) PerfectCPBoosted() int {
	if len(b.CPRangeBoost) < 2 {
		return 0
	}
	return b.CPRangeBoost[1]
}

// ResearchTask is one field research task with its reward pool.
type ResearchTask struct {
	Text     string           `json:"text"`
	Type     string           `json:"type"`
	Category string           `json:"category"`
	Rewards  []ResearchReward `json:"rewards"`
}

type ResearchReward struct {
	Name        string       `json:"name"`
	CombatPower *CombatPower `json:"combatPower"`
	CanBeShiny  bool         `json:"canBeShiny"`
	Image       string       `json:"image"`
}

type CombatPower struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// EggEntry is one Pokémon in the current egg pool.
type EggEntry struct {
	Name            string       `json:"name"`
	EggType         string       `json:"eggType"`
	CanBeShiny      bool         `json:"canBeShiny"`
	IsAdventureSync bool         `json:"isAdventureSync"`
	IsRegional      bool         `json:"isRegional"`
	IsGiftExchange  bool         `json:"isGiftExchange"`
	Rarity          int          `json:"rarity"`
	CombatPower     *CombatPower `json:"combatPower"`
	Image           string       `json:"image"`
}

// RocketLineup is one Team GO Rocket leader or grunt with their three
// encounter slots.
type RocketLineup struct {
	Name  string            `json:"name"`
	Title string            `json:"title"`
	Image string            `json:"image"`
	Slots [][]RocketPokemon `json:"-"`
}

type RocketPokemon struct {
	Name        string   `json:"name"`
	Types       []string `json:"types"`
	CanBeCaught bool     `json:"canBeCaught"`
	CanBeShiny  bool     `json:"canBeShiny"`
	Image       string   `json:"image"`
}

// PromoCode is one redeemable promo code.
type PromoCode struct {
	Code   string `json:"code"`
	Reward string `json:"reward"`
	Link   string `json:"link"`
}

// Event is one scraped in-game event.
type Event struct {
	EventID   string     `json:"eventID"`
	Name      string     `json:"name"`
	EventType string     `json:"eventType"`
	Heading   string     `json:"heading"`
	Link      string     `json:"link"`
	Image     string     `json:"image"`
	Start     string     `json:"start"`
	End       string     `json:"end"`
	ExtraData *EventData `json:"extraData"`
}

// eventTimeLayouts covers the timestamp shapes the scraper has emitted:
// zoned RFC3339 and zone-less local times with or without milliseconds.
var eventTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
}

func parseEventTime(s string) (time.Time, bool) {
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// StartTime parses the event start timestamp.
func (e Event) StartTime() (time.Time, bool) {
	return parseEventTime(e.Start)
}

// EndTime parses the event end timestamp.
func (e Event) EndTime() (time.Time, bool) {
	return parseEventTime(e.End)
}

type EventData struct {
	Generic      *GenericEventData      `json:"generic"`
	CommunityDay *CommunityDayEventData `json:"communityday"`
}

type GenericEventData struct {
	HasSpawns             bool `json:"hasSpawns"`
	HasFieldResearchTasks bool `json:"hasFieldResearchTasks"`
}

type CommunityDayEventData struct {
	Spawns           []NamedImage      `json:"spawns"`
	Bonuses          []TextImage       `json:"bonuses"`
	BonusDisclaimers []string          `json:"bonusDisclaimers"`
	Shinies          []NamedImage      `json:"shinies"`
	SpecialResearch  []SpecialResearch `json:"specialresearch"`
}

type NamedImage struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

type TextImage struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

type SpecialResearch struct {
	Name    string                `json:"name"`
	Step    int                   `json:"step"`
	Tasks   []SpecialResearchTask `json:"tasks"`
	Rewards []TextImage           `json:"rewards"`
}

type SpecialResearchTask struct {
	Text   string     `json:"text"`
	Reward *TextImage `json:"reward"`
}
