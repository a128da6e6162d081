// Package resolve maps free-text queries to at most one record in a
// fetched dataset. The general algorithm is two-phase: an exact
// case-insensitive pass over every candidate string, then a substring pass
// only if the exact pass found nothing. Ties break to the first record in
// dataset order.
package resolve

import (
	"strings"

	"github.com/hector-hyrivera/sparky-bot/internal/pogo"
)

// Match runs the two-phase search over records. names yields the candidate
// strings for one record; empty candidates are skipped. The first record
// whose candidate equals the query wins; failing that, the first whose
// candidate contains the query.
func Match[T any](records []T, names func(T) []string, query string) (T, bool) {
	var zero T
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return zero, false
	}

	for _, r := range records {
		for _, n := range names(r) {
			if n != "" && strings.ToLower(n) == q {
				return r, true
			}
		}
	}
	for _, r := range records {
		for _, n := range names(r) {
			if n != "" && strings.Contains(strings.ToLower(n), q) {
				return r, true
			}
		}
	}
	return zero, false
}

// Flatten returns each base species followed by its region forms, forms in
// sorted-id order. Mega and primal evolutions are deliberately left out of
// the searchable sequence; SpecialForm handles those.
func Flatten(dex []*pogo.Species) []*pogo.Species {
	all := make([]*pogo.Species, 0, len(dex))
	for _, p := range dex {
		all = append(all, p)
		for _, id := range p.RegionFormIDs() {
			if form := p.RegionForms[id]; form != nil {
				all = append(all, form)
			}
		}
	}
	return all
}

// SpeciesCandidates returns the strings a species entry can be found by:
// its display name, its form id with underscores as spaces, and the
// "base name + form" combination.
func SpeciesCandidates(p *pogo.Species) []string {
	base := p.Name()
	form := p.FormName()
	if form == "" {
		return []string{base}
	}
	return []string{base, form, base + " " + form}
}

// Species resolves a query against the pokédex, trying the two-phase match
// over bases and region forms first and the mega/primal fallback second.
func Species(dex []*pogo.Species, query string) *pogo.Species {
	if p, ok := Match(Flatten(dex), SpeciesCandidates, query); ok {
		return p
	}
	return SpecialForm(dex, query)
}

// RaidBossCandidates mirrors SpeciesCandidates for normalized raid records.
func RaidBossCandidates(b pogo.RaidBoss) []string {
	base := b.Name()
	if b.FormID == "" || b.FormID == b.ID {
		return []string{base}
	}
	form := strings.ReplaceAll(b.FormID, "_", " ")
	return []string{base, form, base + " " + form}
}

// RaidBoss resolves a query against the normalized raid boss list.
func RaidBoss(bosses []pogo.RaidBoss, query string) (pogo.RaidBoss, bool) {
	return Match(bosses, RaidBossCandidates, query)
}

// BaseByID returns the top-level pokédex entry with the given id, used to
// reach a form variant's parent for asset lookups.
func BaseByID(dex []*pogo.Species, id string) *pogo.Species {
	for _, p := range dex {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// SpecialForm is the best-effort fallback for mega and primal evolutions,
// which live outside the flattened search sequence. It only answers when it
// is confident: an exact evolution display-name match, or a "mega <base>
// [x|y]" / "primal <base>" pattern that pins down a single evolution.
// Anything ambiguous returns nil rather than a guess.
func SpecialForm(dex []*pogo.Species, query string) *pogo.Species {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	// Exact display-name or evolution-id match across all evolutions.
	for _, p := range dex {
		for _, id := range p.MegaEvolutionIDs() {
			evo := p.MegaEvolutions[id]
			if evo == nil {
				continue
			}
			idName := strings.ToLower(strings.ReplaceAll(id, "_", " "))
			if strings.ToLower(evo.Name()) == q || idName == q {
				return evo
			}
		}
	}

	fields := strings.Fields(q)
	if len(fields) < 2 {
		return nil
	}
	prefix := fields[0]
	if prefix != "mega" && prefix != "primal" {
		return nil
	}
	rest := fields[1:]

	// A trailing X/Y selects between paired mega forms.
	variant := ""
	if last := rest[len(rest)-1]; len(rest) > 1 && (last == "x" || last == "y") {
		variant = strings.ToUpper(last)
		rest = rest[:len(rest)-1]
	}

	base := findBaseByName(dex, strings.Join(rest, " "))
	if base == nil || len(base.MegaEvolutions) == 0 {
		return nil
	}
	ids := base.MegaEvolutionIDs()

	if variant != "" {
		for _, id := range ids {
			if strings.HasSuffix(strings.ToUpper(id), "_"+variant) {
				return base.MegaEvolutions[id]
			}
		}
		return nil
	}

	if prefix == "primal" {
		for _, id := range ids {
			if strings.Contains(strings.ToUpper(id), "PRIMAL") {
				return base.MegaEvolutions[id]
			}
		}
		return nil
	}

	if len(ids) == 1 {
		return base.MegaEvolutions[ids[0]]
	}

	// Multiple megas and no variant given: accept only an unambiguous
	// default (the single id without an X/Y suffix).
	var def *pogo.Species
	for _, id := range ids {
		upper := strings.ToUpper(id)
		if strings.HasSuffix(upper, "_X") || strings.HasSuffix(upper, "_Y") {
			continue
		}
		if def != nil {
			return nil
		}
		def = base.MegaEvolutions[id]
	}
	return def
}

func findBaseByName(dex []*pogo.Species, name string) *pogo.Species {
	for _, p := range dex {
		if strings.ToLower(p.Name()) == name {
			return p
		}
	}
	return nil
}
