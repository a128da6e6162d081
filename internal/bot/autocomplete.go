package bot

import (
	"context"
	"strings"

	"github.com/hector-hyrivera/sparky-bot/internal/discord"
	"github.com/hector-hyrivera/sparky-bot/internal/resolve"
)

// popularPokemon is what an empty pokemon query suggests, instead of the
// first 25 dex entries (which would all be Kanto starters and early bugs).
var popularPokemon = []string{
	"Pikachu", "Charizard", "Mewtwo", "Eevee", "Dragonite",
	"Tyranitar", "Rayquaza", "Garchomp", "Lucario", "Greninja",
}

// choiceSet accumulates autocomplete choices with case-insensitive
// deduplication on the display name, capped at the Discord limit.
type choiceSet struct {
	seen    map[string]bool
	choices []discord.Choice
}

func newChoiceSet() *choiceSet {
	return &choiceSet{seen: make(map[string]bool)}
}

func (s *choiceSet) full() bool {
	return len(s.choices) >= discord.MaxAutocompleteChoices
}

// add records a choice unless its name was already taken. Dedupe happens on
// the full name before any truncation, so two tasks that only differ past
// the display limit still both appear.
func (s *choiceSet) add(name, value string) {
	if s.full() || name == "" {
		return
	}
	key := strings.ToLower(name)
	if s.seen[key] {
		return
	}
	s.seen[key] = true
	s.choices = append(s.choices, discord.Choice{Name: truncateChoiceName(name), Value: value})
}

// truncateChoiceName keeps a display name inside Discord's 100-character
// choice limit, marking the cut with an ellipsis.
func truncateChoiceName(name string) string {
	if len(name) <= 100 {
		return name
	}
	return name[:97] + "..."
}

// truncateChoiceValue caps a value at the same limit but without the
// ellipsis: the bare prefix still resolves through the substring phase of
// the lookup, where an "..." suffix would match nothing.
func truncateChoiceValue(value string) string {
	if len(value) <= 100 {
		return value
	}
	return value[:100]
}

func matchesQuery(name, query string) bool {
	return query == "" || strings.Contains(strings.ToLower(name), query)
}

func (h *Handler) autocompletePokemon(ctx context.Context, typed string) []discord.Choice {
	query := strings.ToLower(strings.TrimSpace(typed))
	set := newChoiceSet()

	if query == "" {
		for _, name := range popularPokemon {
			set.add(name, name)
		}
		return set.choices
	}

	dex, err := h.data.Pokedex(ctx)
	if err != nil {
		return nil
	}
	for _, p := range resolve.Flatten(dex) {
		if set.full() {
			break
		}
		display := p.Name()
		if form := p.FormName(); form != "" {
			display = display + " (" + form + ")"
		}
		for _, candidate := range resolve.SpeciesCandidates(p) {
			if matchesQuery(candidate, query) {
				set.add(display, candidate)
				break
			}
		}
	}
	return set.choices
}

// autocompleteRaidBoss serves both /raidboss and /hundo; the candidate pool
// is whatever is currently in raids, so an empty query just lists the
// rotation.
func (h *Handler) autocompleteRaidBoss(ctx context.Context, typed string) []discord.Choice {
	query := strings.ToLower(strings.TrimSpace(typed))
	raids, err := h.data.Raids(ctx)
	if err != nil {
		return nil
	}
	set := newChoiceSet()
	for _, b := range raids.Bosses {
		if set.full() {
			break
		}
		for _, candidate := range resolve.RaidBossCandidates(b) {
			if matchesQuery(candidate, query) {
				set.add(candidate, candidate)
				break
			}
		}
	}
	return set.choices
}

func (h *Handler) autocompleteResearch(ctx context.Context, typed string) []discord.Choice {
	query := strings.ToLower(strings.TrimSpace(typed))
	research, err := h.data.Research(ctx)
	if err != nil {
		return nil
	}
	set := newChoiceSet()
	for _, task := range research.Tasks {
		if set.full() {
			break
		}
		if matchesQuery(task.Text, query) {
			set.add(task.Text, truncateChoiceValue(task.Text))
		}
	}
	return set.choices
}

func (h *Handler) autocompleteEgg(ctx context.Context, typed string) []discord.Choice {
	query := strings.ToLower(strings.TrimSpace(typed))
	eggs, err := h.data.Eggs(ctx)
	if err != nil {
		return nil
	}
	set := newChoiceSet()
	for _, e := range eggs {
		if set.full() {
			break
		}
		if matchesQuery(e.EggType, query) {
			set.add(e.EggType, e.EggType)
		}
	}
	return set.choices
}

// autocompleteEvents suggests events that have not ended yet; the stored
// value is the event id, which /events resolves exactly.
func (h *Handler) autocompleteEvents(ctx context.Context, typed string) []discord.Choice {
	query := strings.ToLower(strings.TrimSpace(typed))
	events, err := h.data.Events(ctx)
	if err != nil {
		return nil
	}
	now := h.now()
	set := newChoiceSet()
	for _, ev := range events {
		if set.full() {
			break
		}
		if end, ok := ev.EndTime(); ok && end.Before(now) {
			continue
		}
		if matchesQuery(ev.Name, query) {
			set.add(ev.Name, ev.EventID)
		}
	}
	return set.choices
}

func (h *Handler) autocompleteRocket(ctx context.Context, typed string) []discord.Choice {
	query := strings.ToLower(strings.TrimSpace(typed))
	lineups, err := h.data.Rockets(ctx)
	if err != nil {
		return nil
	}
	set := newChoiceSet()
	for _, r := range lineups {
		if set.full() {
			break
		}
		if matchesQuery(r.Name, query) {
			set.add(r.Name, r.Name)
		}
	}
	return set.choices
}
