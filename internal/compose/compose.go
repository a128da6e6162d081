// Package compose renders resolved records into Discord embeds. Every
// function is a pure transformation of its inputs; missing optional fields
// omit their line instead of rendering a placeholder.
package compose

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hector-hyrivera/sparky-bot/internal/discord"
	"github.com/hector-hyrivera/sparky-bot/internal/pogo"
)

// BestImage picks the image for a species or form: the record's own image,
// then a matching entry in the base record's asset-form list, then the base
// record's image, then the fixed placeholder.
func BestImage(p, base *pogo.Species) string {
	if p != nil && p.Assets != nil && p.Assets.Image != "" {
		return p.Assets.Image
	}
	if p != nil && base != nil && p.FormID != "" {
		formKey := strings.ToUpper(strings.TrimPrefix(p.FormID, p.ID+"_"))
		name := strings.ToLower(p.Name())
		for _, af := range base.AssetForms {
			if af.Form == "" || af.Image == "" {
				continue
			}
			if strings.ToUpper(af.Form) == formKey || strings.Contains(name, strings.ToLower(af.Form)) {
				return af.Image
			}
		}
	}
	if base != nil && base.Assets != nil && base.Assets.Image != "" {
		return base.Assets.Image
	}
	return discord.DefaultImage
}

// BestBossImage is BestImage for normalized raid records.
func BestBossImage(b pogo.RaidBoss, base *pogo.Species) string {
	if b.Assets != nil && b.Assets.Image != "" {
		return b.Assets.Image
	}
	if base != nil && b.FormID != "" {
		formKey := strings.ToUpper(strings.TrimPrefix(b.FormID, b.ID+"_"))
		name := strings.ToLower(b.Name())
		for _, af := range base.AssetForms {
			if af.Form == "" || af.Image == "" {
				continue
			}
			if strings.ToUpper(af.Form) == formKey || strings.Contains(name, strings.ToLower(af.Form)) {
				return af.Image
			}
		}
	}
	if base != nil && base.Assets != nil && base.Assets.Image != "" {
		return base.Assets.Image
	}
	return discord.DefaultImage
}

// Pokemon renders the /pokemon reply.
func Pokemon(p, base *pogo.Species) discord.Embed {
	var bld strings.Builder
	fmt.Fprintf(&bld, "**%s**\n", p.Name())
	if form := p.FormName(); form != "" {
		fmt.Fprintf(&bld, "🔄 Form: %s\n", form)
	}

	types := []string{p.PrimaryType.Name()}
	if p.SecondaryType != nil {
		types = append(types, p.SecondaryType.Name())
	}
	fmt.Fprintf(&bld, "🏷️ Type: %s\n", strings.Join(types, ", "))

	bld.WriteString("\n📊 **Base Stats**:\n")
	fmt.Fprintf(&bld, "❤️ Stamina: %d\n", p.Stats.Stamina)
	fmt.Fprintf(&bld, "⚔️ Attack: %d\n", p.Stats.Attack)
	fmt.Fprintf(&bld, "🛡️ Defense: %d\n", p.Stats.Defense)

	embed := discord.NewEmbed(p.Name(), discord.ColorGreen, bld.String())
	embed.SetImage(BestImage(p, base))
	return embed
}

// TierStyle is the display treatment derived from a raid tier label.
type TierStyle struct {
	Title    string // plural heading for tier summaries
	Singular string // per-boss qualifier
	Color    int
}

// StyleForTier derives title and color by pattern-matching the tier label,
// never by exact equality; upstream tier-label text has changed across
// revisions.
func StyleForTier(tier string) TierStyle {
	t := strings.ToLower(tier)
	if strings.Contains(t, "mega") {
		return TierStyle{Title: "🔄 Mega Raids", Singular: "Mega Raid", Color: discord.ColorRed}
	}
	for _, r := range t {
		if r < '1' || r > '9' {
			continue
		}
		n := int(r - '0')
		color := discord.ColorDiscordBlue
		switch r {
		case '5':
			color = discord.ColorOrange
		case '3':
			color = discord.ColorBlue
		case '1':
			color = discord.ColorGreen
		}
		return TierStyle{
			Title:    fmt.Sprintf("%s Level %d Raids", strings.Repeat("⭐", n), n),
			Singular: fmt.Sprintf("Level %d Raid", n),
			Color:    color,
		}
	}
	return TierStyle{Title: tier, Singular: tier, Color: discord.ColorDiscordBlue}
}

// counterNames returns counter type names sorted by multiplier, strongest
// first. Equal multipliers fall back to name order so output is stable.
func counterNames(counter map[string]float64) []string {
	names := make([]string, 0, len(counter))
	for name := range counter {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counter[names[i]] != counter[names[j]] {
			return counter[names[i]] > counter[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

func shinyMark(shiny bool) string {
	if shiny {
		return "✅"
	}
	return "❌"
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// raidBossField renders one boss as a summary-embed field.
func raidBossField(b pogo.RaidBoss) discord.EmbedField {
	var lines []string
	if cp := b.PerfectCP(); cp > 0 {
		lines = append(lines, fmt.Sprintf("🏆 Perfect IV CP: **%d**", cp))
	}
	if cp := b.PerfectCPBoosted(); cp > 0 {
		lines = append(lines, fmt.Sprintf("☀️ Perfect IV CP (Weather Boosted): **%d**", cp))
	}
	if len(b.Counter) > 0 {
		lines = append(lines, "⚔️ Weak to: "+strings.Join(counterNames(b.Counter), ", "))
	}
	lines = append(lines, "✨ Shiny? "+shinyMark(b.Shiny))
	return discord.EmbedField{Name: b.Name(), Value: strings.Join(lines, "\n"), Inline: true}
}

// CurrentRaids renders the tier-grouped raid summary, one embed per tier in
// normalized feed order.
func CurrentRaids(data *pogo.RaidData) []discord.Embed {
	var tiers []string
	byTier := make(map[string][]pogo.RaidBoss)
	for _, b := range data.Bosses {
		if _, ok := byTier[b.Tier]; !ok {
			tiers = append(tiers, b.Tier)
		}
		byTier[b.Tier] = append(byTier[b.Tier], b)
	}

	embeds := make([]discord.Embed, 0, len(tiers))
	for _, tier := range tiers {
		bosses := byTier[tier]
		style := StyleForTier(tier)
		embed := discord.NewEmbed(style.Title, style.Color, "")
		for _, b := range bosses {
			embed.Fields = append(embed.Fields, raidBossField(b))
		}
		first := bosses[0]
		embed.SetThumbnail(BestBossImage(first, resolveBase(data.Pokedex, first)))
		embeds = append(embeds, embed)
	}
	return embeds
}

func resolveBase(dex []*pogo.Species, b pogo.RaidBoss) *pogo.Species {
	for _, p := range dex {
		if p.ID == b.ID {
			return p
		}
	}
	return nil
}

// Hundo renders the /hundo reply: just the perfect-IV CP pair.
func Hundo(b pogo.RaidBoss, base *pogo.Species) discord.Embed {
	embed := discord.NewEmbed(fmt.Sprintf("🏆 Perfect IV CP for %s", b.Name()), discord.ColorGreen, "")
	if cp := b.PerfectCP(); cp > 0 {
		embed.AddField("🎯 Normal CP", fmt.Sprintf("**%d**", cp), true)
	}
	if cp := b.PerfectCPBoosted(); cp > 0 {
		embed.AddField("☀️ Weather Boosted CP", fmt.Sprintf("**%d**", cp), true)
	}
	embed.SetImage(BestBossImage(b, base))
	return embed
}

// RaidBoss renders the detailed /raidboss reply; a second embed carries the
// shiny artwork when the boss can be shiny and one exists.
func RaidBoss(b pogo.RaidBoss, base *pogo.Species) []discord.Embed {
	style := StyleForTier(b.Tier)

	var bld strings.Builder
	if len(b.Types) > 0 {
		fmt.Fprintf(&bld, "**Types**: %s\n\n", strings.Join(b.Types, ", "))
	}
	if cp := b.PerfectCP(); cp > 0 {
		fmt.Fprintf(&bld, "🏆 **Perfect IV CP**: %d\n", cp)
	}
	if cp := b.PerfectCPBoosted(); cp > 0 {
		fmt.Fprintf(&bld, "☀️ **Perfect IV CP (Weather Boosted)**: %d\n", cp)
	}
	bld.WriteString("\n")
	if len(b.Counter) > 0 {
		parts := make([]string, 0, len(b.Counter))
		for _, name := range counterNames(b.Counter) {
			parts = append(parts, fmt.Sprintf("%s (%sx)", name, strconv.FormatFloat(b.Counter[name], 'g', -1, 64)))
		}
		fmt.Fprintf(&bld, "⚔️ **Weak to**: %s\n\n", strings.Join(parts, ", "))
	}
	if len(b.Weather) > 0 {
		boosted := make([]string, 0, len(b.Weather))
		for _, w := range b.Weather {
			boosted = append(boosted, titleCase(w))
		}
		fmt.Fprintf(&bld, "🌤️ **Boosted in**: %s weather\n\n", strings.Join(boosted, ", "))
	}
	if b.Shiny {
		bld.WriteString("✨ **Shiny Available**: Yes ✅")
	} else {
		bld.WriteString("✨ **Shiny Available**: No ❌")
	}

	title := b.Name()
	if style.Singular != "" {
		title = fmt.Sprintf("%s - %s", b.Name(), style.Singular)
	}
	main := discord.NewEmbed(title, style.Color, bld.String())
	main.SetImage(BestBossImage(b, base))
	embeds := []discord.Embed{main}

	if b.Shiny && b.Assets != nil && b.Assets.ShinyImage != "" {
		shiny := discord.NewEmbed(fmt.Sprintf("%s - Shiny Form", b.Name()), style.Color, "")
		shiny.SetImage(b.Assets.ShinyImage)
		embeds = append(embeds, shiny)
	}
	return embeds
}

// Research renders one research task with its reward pool. Rewards keep
// upstream order; they are not re-sorted.
func Research(task pogo.ResearchTask) discord.Embed {
	embed := discord.NewEmbed("Research Task", discord.ColorDiscordBlue, task.Text)
	embed.SetFooter(discord.FooterLeekDuck)

	if len(task.Rewards) > 0 {
		lines := make([]string, 0, len(task.Rewards))
		for _, r := range task.Rewards {
			line := fmt.Sprintf("**%s**", r.Name)
			if r.CombatPower != nil {
				line += fmt.Sprintf(" (CP: %d-%d)", r.CombatPower.Min, r.CombatPower.Max)
			}
			if r.CanBeShiny {
				line += " ✨"
			}
			lines = append(lines, line)
		}
		embed.AddField("Possible Rewards", strings.Join(lines, "\n"), false)
		if task.Rewards[0].Image != "" {
			embed.SetThumbnail(task.Rewards[0].Image)
		}
	} else {
		embed.AddField("Rewards", "No reward information available", false)
	}

	if task.Type != "" {
		embed.AddField("Type", task.Type, true)
	}
	if task.Category != "" {
		embed.AddField("Category", task.Category, true)
	}
	return embed
}

// Egg renders the hatch pool for one egg-type bucket, grouped by
// shiny / non-shiny / adventure-sync / regional.
func Egg(eggType string, entries []pogo.EggEntry) discord.Embed {
	embed := discord.NewEmbed(
		fmt.Sprintf("%s Eggs", eggType),
		discord.ColorDeepSkyBlue,
		fmt.Sprintf("Here are Pokémon that can hatch from %s eggs:", eggType),
	)
	embed.SetFooter(discord.FooterLeekDuck)

	var shiny, nonShiny, adventureSync, regional []string
	for _, e := range entries {
		if e.CanBeShiny {
			shiny = append(shiny, e.Name+" ✨")
		} else {
			nonShiny = append(nonShiny, e.Name)
		}
		if e.IsAdventureSync {
			adventureSync = append(adventureSync, e.Name)
		}
		if e.IsRegional {
			regional = append(regional, e.Name)
		}
	}
	if len(shiny) > 0 {
		embed.AddField("Can be Shiny", strings.Join(shiny, ", "), false)
	}
	if len(nonShiny) > 0 {
		embed.AddField("Cannot be Shiny", strings.Join(nonShiny, ", "), false)
	}
	if len(adventureSync) > 0 {
		embed.AddField("Adventure Sync Exclusive", strings.Join(adventureSync, ", "), false)
	}
	if len(regional) > 0 {
		embed.AddField("Regional Exclusive", strings.Join(regional, ", "), false)
	}
	if len(entries) > 0 && entries[0].Image != "" {
		embed.SetThumbnail(entries[0].Image)
	}
	return embed
}

// Rocket renders one Team GO Rocket lineup with its three encounter slots.
func Rocket(r pogo.RocketLineup) discord.Embed {
	title := r.Name
	if r.Title != "" && r.Title != r.Name {
		title = fmt.Sprintf("%s — %s", r.Name, r.Title)
	}
	embed := discord.NewEmbed(title, discord.ColorDiscordBlue, "")
	embed.SetFooter(discord.FooterLeekDuck)

	for i, slot := range r.Slots {
		if len(slot) == 0 {
			continue
		}
		lines := make([]string, 0, len(slot))
		for _, p := range slot {
			line := "• " + p.Name
			if len(p.Types) > 0 {
				line += fmt.Sprintf(" (%s)", strings.Join(p.Types, ", "))
			}
			if p.CanBeCaught {
				line += " 🎯"
			}
			if p.CanBeShiny {
				line += " ✨"
			}
			lines = append(lines, line)
		}
		embed.AddField(fmt.Sprintf("Slot %d", i+1), strings.Join(lines, "\n"), true)
	}
	if r.Image != "" {
		embed.SetThumbnail(r.Image)
	}
	return embed
}

// PromoCodes renders all active promo codes in one embed.
func PromoCodes(codes []pogo.PromoCode) discord.Embed {
	embed := discord.NewEmbed("🎁 Active Promo Codes", discord.ColorDeepSkyBlue, "")
	embed.SetFooter(discord.FooterLeekDuck)
	for _, c := range codes {
		value := c.Reward
		if c.Link != "" {
			value += fmt.Sprintf("\n[Redeem](%s)", c.Link)
		}
		embed.AddField(c.Code, value, false)
	}
	return embed
}

// eventTypeColors is the palette for event embeds, keyed by event-type tag.
var eventTypeColors = map[string]int{
	"community-day":              0x43e97b,
	"research":                   0x3fa7d6,
	"raid-day":                   0xf7b32b,
	"go-rocket-takeover":         0x7d5fff,
	"event":                      0x00b894,
	"timed-research":             0x00cec9,
	"raid-battles":               0xfd79a8,
	"team-go-rocket":             0x636e72,
	"live-event":                 0x6c5ce7,
	"limited-research":           0x81ecec,
	"raid-hour":                  0xe17055,
	"giovanni-special-research":  0x2d3436,
	"pokemon-go-fest":            0xff7675,
	"research-breakthrough":      0x0984e3,
	"raid-weekend":               0xf1c40f,
	"global-challenge":           0x00b894,
	"special-research":           0x00bfff,
	"go-battle-league":           0x636e72,
	"safari-zone":                0x00cec9,
	"elite-raids":                0xd35400,
	"ticketed-event":             0x6ab04c,
	"location-specific":          0x4834d4,
	"bonus-hour":                 0x00b894,
	"pokemon-spotlight-hour":     0xfdcb6e,
	"potential-ultra-unlock":     0x00bfff,
	"update":                     0x636e72,
	"season":                     0x00b894,
	"pokemon-go-tour":            0xe17055,
}

const (
	eventDateLayout     = "Jan 2, 2006"
	eventDateTimeLayout = "Jan 2, 2006 3:04 PM"
)

func formatEventDate(raw string) string {
	if t, ok := (pogo.Event{Start: raw}).StartTime(); ok {
		return t.Format(eventDateLayout)
	}
	return raw
}

func formatEventDateTime(raw string) string {
	if t, ok := (pogo.Event{Start: raw}).StartTime(); ok {
		return t.Format(eventDateTimeLayout)
	}
	return raw
}

// EventSummary renders the no-selection /events reply: a bullet list of
// events that have not yet ended.
func EventSummary(events []pogo.Event, now time.Time) string {
	var bld strings.Builder
	bld.WriteString("Current & upcoming events:\n\n")
	for _, ev := range events {
		if end, ok := ev.EndTime(); ok && end.Before(now) {
			continue
		}
		fmt.Fprintf(&bld, "• **%s**: %s - %s\n", ev.Name, formatEventDate(ev.Start), formatEventDate(ev.End))
	}
	bld.WriteString("\nSelect an event for details.")
	return bld.String()
}

// Event renders one event in full, including the community-day extras when
// present.
func Event(ev pogo.Event) discord.Embed {
	var bld strings.Builder
	if ev.Heading != "" {
		fmt.Fprintf(&bld, "**%s**\n", ev.Heading)
	}
	fmt.Fprintf(&bld, "🗓️ **Start:** %s\n", formatEventDateTime(ev.Start))
	fmt.Fprintf(&bld, "🗓️ **End:** %s\n", formatEventDateTime(ev.End))
	if ev.EventType != "" {
		fmt.Fprintf(&bld, "\n**Type:** %s\n", strings.ReplaceAll(ev.EventType, "-", " "))
	}
	if ev.ExtraData != nil && ev.ExtraData.Generic != nil {
		var extras []string
		if ev.ExtraData.Generic.HasSpawns {
			extras = append(extras, "Spawns")
		}
		if ev.ExtraData.Generic.HasFieldResearchTasks {
			extras = append(extras, "Field Research Tasks")
		}
		if len(extras) > 0 {
			fmt.Fprintf(&bld, "\nIncludes: %s", strings.Join(extras, ", "))
		}
	}
	if ev.Link != "" {
		fmt.Fprintf(&bld, "\n[More Info](%s)", ev.Link)
	}

	color, ok := eventTypeColors[strings.ToLower(ev.EventType)]
	if !ok {
		color = discord.ColorDiscordBlue
	}
	embed := discord.NewEmbed(ev.Name, color, bld.String())
	embed.SetFooter(discord.FooterLeekDuck)
	if ev.Image != "" {
		embed.SetImage(ev.Image)
	}

	if ev.ExtraData != nil && ev.ExtraData.CommunityDay != nil {
		addCommunityDayFields(&embed, ev.ExtraData.CommunityDay)
	}
	return embed
}

func addCommunityDayFields(embed *discord.Embed, cd *pogo.CommunityDayEventData) {
	if len(cd.Spawns) > 0 {
		parts := make([]string, 0, len(cd.Spawns))
		for _, s := range cd.Spawns {
			parts = append(parts, namedImageLink(s, "🖼️"))
		}
		embed.AddField("Spawns", strings.Join(parts, ", "), false)
	}
	if len(cd.Bonuses) > 0 {
		parts := make([]string, 0, len(cd.Bonuses))
		for _, b := range cd.Bonuses {
			parts = append(parts, textImageLink(b, "🖼️"))
		}
		embed.AddField("Bonuses", strings.Join(parts, "\n"), false)
	}
	if len(cd.Shinies) > 0 {
		parts := make([]string, 0, len(cd.Shinies))
		for _, s := range cd.Shinies {
			parts = append(parts, namedImageLink(s, "✨"))
		}
		embed.AddField("Shinies", strings.Join(parts, ", "), false)
	}
	if len(cd.BonusDisclaimers) > 0 {
		embed.AddField("Bonus Disclaimers", strings.Join(cd.BonusDisclaimers, "\n"), false)
	}
	for _, sr := range cd.SpecialResearch {
		var bld strings.Builder
		fmt.Fprintf(&bld, "**%s**\n", sr.Name)
		for i, task := range sr.Tasks {
			if i > 0 {
				bld.WriteString("\n")
			}
			fmt.Fprintf(&bld, "• %s", task.Text)
			if task.Reward != nil {
				fmt.Fprintf(&bld, " → %s", textImageLink(*task.Reward, "🎁"))
			}
		}
		if len(sr.Rewards) > 0 {
			parts := make([]string, 0, len(sr.Rewards))
			for _, r := range sr.Rewards {
				parts = append(parts, textImageLink(r, "🎁"))
			}
			fmt.Fprintf(&bld, "\nRewards: %s", strings.Join(parts, ", "))
		}
		name := "Special Research"
		if sr.Step > 0 {
			name = fmt.Sprintf("Special Research (Step %d)", sr.Step)
		}
		embed.AddField(name, bld.String(), false)
	}
}

func namedImageLink(n pogo.NamedImage, marker string) string {
	if n.Image == "" {
		return n.Name
	}
	return fmt.Sprintf("%s [%s](%s)", n.Name, marker, n.Image)
}

func textImageLink(t pogo.TextImage, marker string) string {
	if t.Image == "" {
		return t.Text
	}
	return fmt.Sprintf("%s [%s](%s)", t.Text, marker, t.Image)
}
