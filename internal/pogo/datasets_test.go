package pogo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/hector-hyrivera/sparky-bot/internal/cache"
	"github.com/hector-hyrivera/sparky-bot/internal/config"
)

func newTestDatasets(cfg *config.Config) *Datasets {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = config.DefaultCacheTTLSec
	}
	return NewDatasets(cfg, cache.New())
}

func serveJSON(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const tieredRaidJSON = `{
	"currentList": {
		"lvl1": [{"id": "KLINK", "names": {"English": "Klink"}}],
		"mega": [{"id": "BEEDRILL_MEGA", "names": {"English": "Mega Beedrill"}}],
		"lvl5": [{"id": "RAYQUAZA", "names": {"English": "Rayquaza"}, "tier": "lvl5"}]
	},
	"pokedex": [{"id": "RAYQUAZA", "names": {"English": "Rayquaza"}}]
}`

const flatRaidJSON = `[
	{"id": "BEEDRILL_MEGA", "names": {"English": "Mega Beedrill"}, "tier": "mega"},
	{"id": "RAYQUAZA", "names": {"English": "Rayquaza"}, "tier": "lvl5"},
	{"id": "KLINK", "names": {"English": "Klink"}, "tier": "lvl1"}
]`

func TestRaidsNormalizesBothSchemas(t *testing.T) {
	t.Parallel()

	for name, body := range map[string]string{
		"tiered": tieredRaidJSON,
		"flat":   flatRaidJSON,
	} {
		body := body
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			srv := serveJSON(t, body)
			d := newTestDatasets(&config.Config{RaidBossURL: srv.URL})

			data, err := d.Raids(context.Background())
			if err != nil {
				t.Fatalf("Raids() error = %v", err)
			}
			got := make([]string, 0, len(data.Bosses))
			for _, b := range data.Bosses {
				got = append(got, b.ID+"/"+b.Tier)
			}
			want := []string{"BEEDRILL_MEGA/mega", "RAYQUAZA/lvl5", "KLINK/lvl1"}
			if len(got) != len(want) {
				t.Fatalf("Raids() returned %v, want %v", got, want)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("boss[%d] = %q, want %q", i, got[i], want[i])
				}
			}
		})
	}
}

func TestRaidsKeepsUnknownTiers(t *testing.T) {
	t.Parallel()
	srv := serveJSON(t, `{"currentList": {
		"shadow": [{"id": "SHADOW_MEWTWO", "names": {"English": "Mewtwo"}}],
		"lvl5": [{"id": "KYOGRE", "names": {"English": "Kyogre"}}]
	}}`)
	d := newTestDatasets(&config.Config{RaidBossURL: srv.URL})

	data, err := d.Raids(context.Background())
	if err != nil {
		t.Fatalf("Raids() error = %v", err)
	}
	if len(data.Bosses) != 2 {
		t.Fatalf("got %d bosses, want 2", len(data.Bosses))
	}
	// Known tiers come first; the unknown key trails.
	if data.Bosses[0].ID != "KYOGRE" || data.Bosses[1].Tier != "shadow" {
		t.Errorf("unexpected order: %q then %q/%q", data.Bosses[0].ID, data.Bosses[1].ID, data.Bosses[1].Tier)
	}
}

func TestResearchNormalizesBothSchemas(t *testing.T) {
	t.Parallel()

	bare := `[{"text": "Catch 5 Pokemon", "rewards": [{"name": "Chansey"}]}]`
	wrapped := `{"tasks": [{"text": "Catch 5 Pokemon", "rewards": [{"name": "Chansey"}]}],
		"breakthrough": {"text": "Research Breakthrough"}}`

	for name, body := range map[string]string{"bare": bare, "wrapped": wrapped} {
		body := body
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			srv := serveJSON(t, body)
			d := newTestDatasets(&config.Config{ResearchURL: srv.URL})

			data, err := d.Research(context.Background())
			if err != nil {
				t.Fatalf("Research() error = %v", err)
			}
			if len(data.Tasks) != 1 || data.Tasks[0].Text != "Catch 5 Pokemon" {
				t.Fatalf("Research() tasks = %+v", data.Tasks)
			}
		})
	}
}

func TestPokedexCachesAcrossCalls(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`[{"id": "PIKACHU", "names": {"English": "Pikachu"}}]`))
	}))
	t.Cleanup(srv.Close)
	d := newTestDatasets(&config.Config{PokedexURL: srv.URL})

	for i := 0; i < 3; i++ {
		dex, err := d.Pokedex(context.Background())
		if err != nil {
			t.Fatalf("Pokedex() call %d error = %v", i, err)
		}
		if len(dex) != 1 {
			t.Fatalf("Pokedex() call %d returned %d entries", i, len(dex))
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("upstream hit %d times, want 1", got)
	}
}

func TestPokedexRejectsEmptyFeed(t *testing.T) {
	t.Parallel()
	srv := serveJSON(t, `[]`)
	d := newTestDatasets(&config.Config{PokedexURL: srv.URL})

	if _, err := d.Pokedex(context.Background()); err == nil {
		t.Fatal("Pokedex() on empty feed: want error, got nil")
	}
	// The failed result must not poison the cache.
	if _, ok := d.cache.Get(keyPokedex); ok {
		t.Error("failed fetch was cached")
	}
}

func TestFetchRejectsNon2xx(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)
	d := newTestDatasets(&config.Config{EggsURL: srv.URL})

	if _, err := d.Eggs(context.Background()); err == nil {
		t.Fatal("Eggs() on 502: want error, got nil")
	}
}

func TestRocketsNormalizeEncounterSlots(t *testing.T) {
	t.Parallel()
	srv := serveJSON(t, `[{
		"name": "Cliff", "title": "Team GO Rocket Leader",
		"encounters": {
			"first": [{"name": "Machop"}],
			"second": [{"name": "Snorlax"}, {"name": "Magmar"}],
			"third": [{"name": "Tyranitar"}]
		}
	}]`)
	d := newTestDatasets(&config.Config{RocketURL: srv.URL})

	lineups, err := d.Rockets(context.Background())
	if err != nil {
		t.Fatalf("Rockets() error = %v", err)
	}
	if len(lineups) != 1 {
		t.Fatalf("got %d lineups, want 1", len(lineups))
	}
	slots := lineups[0].Slots
	if len(slots) != 3 || len(slots[0]) != 1 || len(slots[1]) != 2 || len(slots[2]) != 1 {
		t.Errorf("slot sizes = %d/%d/%d, want 1/2/1", len(slots[0]), len(slots[1]), len(slots[2]))
	}
}
