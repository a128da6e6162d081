package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hector-hyrivera/sparky-bot/internal/cache"
	"github.com/hector-hyrivera/sparky-bot/internal/config"
	"github.com/hector-hyrivera/sparky-bot/internal/discord"
	"github.com/hector-hyrivera/sparky-bot/internal/pogo"
)

type fakeSettings struct {
	events string
	raids  string
}

func (f *fakeSettings) EventsChannel(context.Context) (string, error) { return f.events, nil }
func (f *fakeSettings) SetEventsChannel(_ context.Context, id string) error {
	f.events = id
	return nil
}
func (f *fakeSettings) RaidsChannel(context.Context) (string, error) { return f.raids, nil }
func (f *fakeSettings) SetRaidsChannel(_ context.Context, id string) error {
	f.raids = id
	return nil
}

type fakeRunner struct{ runs atomic.Int32 }

func (f *fakeRunner) RunEvents(context.Context) error {
	f.runs.Add(1)
	return nil
}

func testPokedexJSON(t *testing.T) []byte {
	t.Helper()
	dex := []*pogo.Species{
		{
			ID: "PIKACHU", FormID: "PIKACHU",
			Names:       map[string]string{"English": "Pikachu"},
			Stats:       pogo.Stats{Stamina: 111, Attack: 112, Defense: 96},
			PrimaryType: &pogo.Type{Type: "POKEMON_TYPE_ELECTRIC", Names: map[string]string{"English": "Electric"}},
		},
	}
	// Enough lookalike entries to overflow the autocomplete limit, plus a
	// case-variant duplicate that must be deduplicated.
	for i := 1; i <= 30; i++ {
		name := fmt.Sprintf("Monferno%02d", i)
		dex = append(dex, &pogo.Species{
			ID: strings.ToUpper(name), FormID: strings.ToUpper(name),
			Names: map[string]string{"English": name},
		})
	}
	dex = append(dex, &pogo.Species{
		ID: "MONFERNO01_COPY", FormID: "MONFERNO01_COPY",
		Names: map[string]string{"English": "MONFERNO01"},
	})
	raw, err := json.Marshal(dex)
	if err != nil {
		t.Fatalf("marshal pokedex: %v", err)
	}
	return raw
}

func newTestHandler(t *testing.T) (*Handler, *fakeSettings, *fakeRunner) {
	t.Helper()
	pokedexJSON := testPokedexJSON(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pokedex":
			_, _ = w.Write(pokedexJSON)
		case "/raids":
			_, _ = w.Write([]byte(`[{"id": "RAYQUAZA", "names": {"English": "Rayquaza"}, "tier": "lvl5", "cpRange": [2102, 2191]}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		CacheTTL:    config.DefaultCacheTTLSec,
		PokedexURL:  srv.URL + "/pokedex",
		RaidBossURL: srv.URL + "/raids",
	}
	settings := &fakeSettings{}
	runner := &fakeRunner{}
	return New(pogo.NewDatasets(cfg, cache.New()), settings, runner), settings, runner
}

func postInteraction(t *testing.T, h *Handler, payload string) (*http.Response, discord.Response) {
	t.Helper()
	app := fiber.New()
	app.Post("/interactions", h.HandleInteraction)

	req := httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewReader([]byte(payload)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}

	var parsed discord.Response
	if resp.StatusCode == http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if err := json.Unmarshal(body, &parsed); err != nil {
			t.Fatalf("decode response %q: %v", body, err)
		}
	}
	return resp, parsed
}

// decodeData re-marshals the untyped response payload into the wanted shape.
func decodeData[T any](t *testing.T, data any) T {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("re-marshal data: %v", err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	return out
}

func TestHandleInteractionPing(t *testing.T) {
	t.Parallel()
	h, _, _ := newTestHandler(t)
	resp, parsed := postInteraction(t, h, `{"type": 1}`)
	if resp.StatusCode != http.StatusOK || parsed.Type != discord.ResponsePong {
		t.Fatalf("ping: status %d, type %d", resp.StatusCode, parsed.Type)
	}
}

func TestHandleInteractionBadJSON(t *testing.T) {
	t.Parallel()
	h, _, _ := newTestHandler(t)
	resp, _ := postInteraction(t, h, `{"type": `)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad JSON: status %d, want 400", resp.StatusCode)
	}
}

func TestHandleInteractionUnknownType(t *testing.T) {
	t.Parallel()
	h, _, _ := newTestHandler(t)
	resp, _ := postInteraction(t, h, `{"type": 9}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown type: status %d, want 400", resp.StatusCode)
	}
}

func TestPokemonCommand(t *testing.T) {
	t.Parallel()
	h, _, _ := newTestHandler(t)
	resp, parsed := postInteraction(t, h,
		`{"type": 2, "data": {"name": "pokemon", "options": [{"name": "name", "value": "pikachu"}]}}`)
	if resp.StatusCode != http.StatusOK || parsed.Type != discord.ResponseChannelMessage {
		t.Fatalf("status %d, type %d", resp.StatusCode, parsed.Type)
	}
	msg := decodeData[discord.MessageData](t, parsed.Data)
	if len(msg.Embeds) != 1 {
		t.Fatalf("embeds = %d, want 1 (content: %q)", len(msg.Embeds), msg.Content)
	}
	embed := msg.Embeds[0]
	if embed.Title != "Pikachu" {
		t.Errorf("title = %q", embed.Title)
	}
	for _, want := range []string{"Stamina: 111", "Attack: 112", "Defense: 96", "Type: Electric"} {
		if !strings.Contains(embed.Description, want) {
			t.Errorf("description missing %q:\n%s", want, embed.Description)
		}
	}
}

func TestPokemonCommandMiss(t *testing.T) {
	t.Parallel()
	h, _, _ := newTestHandler(t)
	resp, parsed := postInteraction(t, h,
		`{"type": 2, "data": {"name": "pokemon", "options": [{"name": "name", "value": "zzzz"}]}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200 even on a miss", resp.StatusCode)
	}
	msg := decodeData[discord.MessageData](t, parsed.Data)
	if !strings.Contains(msg.Content, "couldn't find information for zzzz") {
		t.Errorf("content = %q", msg.Content)
	}
}

func TestUnknownCommand(t *testing.T) {
	t.Parallel()
	h, _, _ := newTestHandler(t)
	resp, parsed := postInteraction(t, h, `{"type": 2, "data": {"name": "doesnotexist"}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}
	msg := decodeData[discord.MessageData](t, parsed.Data)
	if msg.Content != "Unknown command." {
		t.Errorf("content = %q", msg.Content)
	}
}

func TestAutocompletePokemonCapsAndDedupes(t *testing.T) {
	t.Parallel()
	h, _, _ := newTestHandler(t)
	resp, parsed := postInteraction(t, h,
		`{"type": 4, "data": {"name": "pokemon", "options": [{"name": "name", "value": "monferno", "focused": true}]}}`)
	if resp.StatusCode != http.StatusOK || parsed.Type != discord.ResponseAutocompleteResult {
		t.Fatalf("status %d, type %d", resp.StatusCode, parsed.Type)
	}
	ac := decodeData[discord.AutocompleteData](t, parsed.Data)
	if len(ac.Choices) != discord.MaxAutocompleteChoices {
		t.Fatalf("choices = %d, want the %d cap", len(ac.Choices), discord.MaxAutocompleteChoices)
	}
	seen := make(map[string]bool)
	for _, c := range ac.Choices {
		key := strings.ToLower(c.Name)
		if seen[key] {
			t.Errorf("duplicate choice %q", c.Name)
		}
		seen[key] = true
	}
}

func TestAutocompletePokemonEmptyQueryIsPopularList(t *testing.T) {
	t.Parallel()
	h, _, _ := newTestHandler(t)
	_, parsed := postInteraction(t, h,
		`{"type": 4, "data": {"name": "pokemon", "options": [{"name": "name", "value": "", "focused": true}]}}`)
	ac := decodeData[discord.AutocompleteData](t, parsed.Data)
	if len(ac.Choices) != len(popularPokemon) {
		t.Fatalf("choices = %d, want %d", len(ac.Choices), len(popularPokemon))
	}
	if ac.Choices[0].Name != "Pikachu" {
		t.Errorf("first choice = %q, want Pikachu", ac.Choices[0].Name)
	}
}

func TestAutocompleteUnknownCommandReturnsEmpty(t *testing.T) {
	t.Parallel()
	h, _, _ := newTestHandler(t)
	resp, parsed := postInteraction(t, h, `{"type": 4, "data": {"name": "doesnotexist"}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}
	ac := decodeData[discord.AutocompleteData](t, parsed.Data)
	if len(ac.Choices) != 0 {
		t.Errorf("choices = %v, want none", ac.Choices)
	}
}

func TestHundoCommand(t *testing.T) {
	t.Parallel()
	h, _, _ := newTestHandler(t)
	_, parsed := postInteraction(t, h,
		`{"type": 2, "data": {"name": "hundo", "options": [{"name": "pokemon", "value": "rayquaza"}]}}`)
	msg := decodeData[discord.MessageData](t, parsed.Data)
	if len(msg.Embeds) != 1 || !strings.Contains(msg.Embeds[0].Title, "Rayquaza") {
		t.Fatalf("unexpected reply: %+v", msg)
	}
	if len(msg.Embeds[0].Fields) != 1 || !strings.Contains(msg.Embeds[0].Fields[0].Value, "2191") {
		t.Errorf("fields = %+v, want the perfect CP", msg.Embeds[0].Fields)
	}
}

func TestEventsChannelCommand(t *testing.T) {
	t.Parallel()
	h, settings, _ := newTestHandler(t)

	_, parsed := postInteraction(t, h, `{"type": 2, "data": {"name": "eventschannel"}}`)
	msg := decodeData[discord.MessageData](t, parsed.Data)
	if !strings.Contains(msg.Content, "No events channel") {
		t.Errorf("unset reply = %q", msg.Content)
	}

	_, parsed = postInteraction(t, h,
		`{"type": 2, "data": {"name": "eventschannel", "options": [{"name": "channel", "value": "123456"}]}}`)
	msg = decodeData[discord.MessageData](t, parsed.Data)
	if !strings.Contains(msg.Content, "<#123456>") {
		t.Errorf("set reply = %q", msg.Content)
	}
	if settings.events != "123456" {
		t.Errorf("stored channel = %q", settings.events)
	}
}

func TestEventsRunCommand(t *testing.T) {
	t.Parallel()
	h, _, runner := newTestHandler(t)
	_, parsed := postInteraction(t, h, `{"type": 2, "data": {"name": "eventsrun"}}`)
	msg := decodeData[discord.MessageData](t, parsed.Data)
	if msg.Content != "Events check triggered." {
		t.Fatalf("content = %q", msg.Content)
	}
	// The pass runs detached from the interaction.
	deadline := time.Now().Add(2 * time.Second)
	for runner.runs.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("runner was never invoked")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestCommandFetchFailureStaysHTTP200(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	cfg := &config.Config{CacheTTL: config.DefaultCacheTTLSec, PokedexURL: srv.URL}
	h := New(pogo.NewDatasets(cfg, cache.New()), &fakeSettings{}, &fakeRunner{})

	resp, parsed := postInteraction(t, h,
		`{"type": 2, "data": {"name": "pokemon", "options": [{"name": "name", "value": "pikachu"}]}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}
	msg := decodeData[discord.MessageData](t, parsed.Data)
	if !strings.Contains(msg.Content, "couldn't fetch") {
		t.Errorf("content = %q", msg.Content)
	}
}

func TestResearchAutocompleteRoundTripLongTask(t *testing.T) {
	t.Parallel()
	longTask := "Catch 20 Pokemon with Weather Boost while it is raining somewhere on the planet and the wind is blowing hard"
	if len(longTask) <= 100 {
		t.Fatalf("fixture task is %d chars, need > 100", len(longTask))
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		body, _ := json.Marshal([]pogo.ResearchTask{{Text: longTask, Rewards: []pogo.ResearchReward{{Name: "Chansey"}}}})
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	cfg := &config.Config{CacheTTL: config.DefaultCacheTTLSec, ResearchURL: srv.URL}
	h := New(pogo.NewDatasets(cfg, cache.New()), &fakeSettings{}, &fakeRunner{})

	_, parsed := postInteraction(t, h,
		`{"type": 4, "data": {"name": "research", "options": [{"name": "task", "value": "catch 20", "focused": true}]}}`)
	ac := decodeData[discord.AutocompleteData](t, parsed.Data)
	if len(ac.Choices) != 1 {
		t.Fatalf("choices = %d, want 1", len(ac.Choices))
	}
	choice := ac.Choices[0]
	if len(choice.Name) != 100 || !strings.HasSuffix(choice.Name, "...") {
		t.Errorf("display name = %q", choice.Name)
	}
	// The value must stay resolvable: a bare prefix, never an ellipsis.
	if len(choice.Value) > 100 || strings.Contains(choice.Value, "...") {
		t.Fatalf("value = %q", choice.Value)
	}

	payload, _ := json.Marshal(map[string]any{
		"type": 2,
		"data": map[string]any{
			"name":    "research",
			"options": []map[string]any{{"name": "task", "value": choice.Value}},
		},
	})
	_, parsed = postInteraction(t, h, string(payload))
	msg := decodeData[discord.MessageData](t, parsed.Data)
	if len(msg.Embeds) != 1 || msg.Embeds[0].Description != longTask {
		t.Fatalf("selecting the suggestion did not resolve the task: %+v", msg)
	}
}

func TestTruncateChoiceName(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("a", 150)
	got := truncateChoiceName(long)
	if len(got) != 100 || !strings.HasSuffix(got, "...") {
		t.Errorf("len = %d, suffix ok = %v", len(got), strings.HasSuffix(got, "..."))
	}
	if short := truncateChoiceName("short"); short != "short" {
		t.Errorf("short name altered: %q", short)
	}
}
