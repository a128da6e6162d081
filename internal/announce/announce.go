// Package announce is the background scheduler: it diffs the events feed
// against the stored announced-id set and posts new events, and posts a
// weekly raid summary gated by a per-day date key. Overlapping ticks are
// not guarded; idempotency rests entirely on the persisted state, so the
// worst case under a duplicate tick is a redundant post.
package announce

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hector-hyrivera/sparky-bot/internal/compose"
	"github.com/hector-hyrivera/sparky-bot/internal/discord"
	"github.com/hector-hyrivera/sparky-bot/internal/pogo"
)

// State is the persisted announcement bookkeeping, implemented by
// store.Store.
type State interface {
	AnnouncedEventIDs(ctx context.Context) (map[string]bool, bool, error)
	SetAnnouncedEventIDs(ctx context.Context, ids map[string]bool) error
	LastRaidPostDate(ctx context.Context) (string, error)
	SetLastRaidPostDate(ctx context.Context, date string) error
	EventsChannel(ctx context.Context) (string, error)
	RaidsChannel(ctx context.Context) (string, error)
}

// Poster sends composed messages to a channel, implemented by
// discord.Client.
type Poster interface {
	PostMessage(ctx context.Context, channelID, content string, embeds []discord.Embed) error
}

type Announcer struct {
	data     *pogo.Datasets
	state    State
	poster   Poster
	interval time.Duration
	now      func() time.Time
}

func New(data *pogo.Datasets, state State, poster Poster, intervalSec int) *Announcer {
	return &Announcer{
		data:     data,
		state:    state,
		poster:   poster,
		interval: time.Duration(intervalSec) * time.Second,
		now:      time.Now,
	}
}

// Start runs the tick loop: one immediate pass, then one per interval.
// Blocks until ctx is cancelled.
func (a *Announcer) Start(ctx context.Context) {
	log.Printf("[announce] scheduler started (interval %s)", a.interval)
	a.tick(ctx)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[announce] scheduler stopped")
			return
		case <-ticker.C:
			a.tick(ctx)
		}
	}
}

func (a *Announcer) tick(ctx context.Context) {
	if err := a.RunEvents(ctx); err != nil {
		log.Printf("[announce] events pass failed: %v", err)
	}
	if err := a.RunWeeklyRaids(ctx); err != nil {
		log.Printf("[announce] weekly raids pass failed: %v", err)
	}
}

// RunEvents announces events not yet in the stored id set. On the very
// first run (no stored set) it seeds state from the whole current feed and
// announces only events that start strictly in the future, so history is
// never replayed.
func (a *Announcer) RunEvents(ctx context.Context) error {
	channelID, err := a.state.EventsChannel(ctx)
	if err != nil {
		return err
	}
	if channelID == "" {
		return nil
	}

	events, err := a.data.Events(ctx)
	if err != nil {
		return fmt.Errorf("fetch events: %w", err)
	}

	announced, exists, err := a.state.AnnouncedEventIDs(ctx)
	if err != nil {
		return err
	}

	now := a.now()
	if !exists {
		log.Printf("[announce] first run, seeding state from %d events", len(events))
		seeded := make(map[string]bool, len(events))
		for _, ev := range events {
			seeded[ev.EventID] = true
			start, ok := ev.StartTime()
			if !ok || !start.After(now) {
				continue
			}
			a.postEvent(ctx, channelID, ev)
		}
		return a.state.SetAnnouncedEventIDs(ctx, seeded)
	}

	posted := 0
	for _, ev := range events {
		if announced[ev.EventID] {
			continue
		}
		// Skipped ids still enter the set; they are logged, not retried.
		announced[ev.EventID] = true
		if ev.Image == "" {
			log.Printf("[announce] event %s (%s) has no image, skipping", ev.EventID, ev.Name)
			continue
		}
		a.postEvent(ctx, channelID, ev)
		posted++
	}
	if posted > 0 {
		log.Printf("[announce] posted %d new events", posted)
	}
	return a.state.SetAnnouncedEventIDs(ctx, announced)
}

func (a *Announcer) postEvent(ctx context.Context, channelID string, ev pogo.Event) {
	embed := compose.Event(ev)
	if err := a.poster.PostMessage(ctx, channelID, "", []discord.Embed{embed}); err != nil {
		log.Printf("[announce] post event %s failed: %v", ev.EventID, err)
	}
}

// RunWeeklyRaids posts the raid summary on Mondays (UTC), at most once per
// calendar day regardless of how many ticks land on that Monday.
func (a *Announcer) RunWeeklyRaids(ctx context.Context) error {
	now := a.now().UTC()
	if now.Weekday() != time.Monday {
		return nil
	}

	channelID, err := a.state.RaidsChannel(ctx)
	if err != nil {
		return err
	}
	if channelID == "" {
		return nil
	}

	today := now.Format("2006-01-02")
	last, err := a.state.LastRaidPostDate(ctx)
	if err != nil {
		return err
	}
	if last == today {
		return nil
	}

	raids, err := a.data.Raids(ctx)
	if err != nil {
		return fmt.Errorf("fetch raids: %w", err)
	}
	embeds := compose.CurrentRaids(raids)
	if len(embeds) == 0 {
		log.Println("[announce] no raid bosses to summarize, skipping weekly post")
		return nil
	}
	if err := a.poster.PostMessage(ctx, channelID, "📅 This week's raid bosses:", embeds); err != nil {
		return fmt.Errorf("post weekly raids: %w", err)
	}
	log.Printf("[announce] posted weekly raid summary for %s", today)
	return a.state.SetLastRaidPostDate(ctx, today)
}
