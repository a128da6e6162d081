// Package store keeps the bot's small persistent state in Redis: which
// events were already announced, when the weekly raid summary last posted,
// and which channels announcements go to.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

const (
	keyAnnouncedEvents  = "sparky:announced_events"
	keyLastRaidPostDate = "sparky:last_raid_post_date"
	keyEventsChannel    = "sparky:events_channel"
	keyRaidsChannel     = "sparky:raids_channel"
)

type Store struct {
	Client *redis.Client
}

func New(redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Store{Client: client}, nil
}

func (s *Store) Close() error {
	return s.Client.Close()
}

// AnnouncedEventIDs returns the set of already-announced event ids. The
// second return is false when no set has ever been stored, which the
// scheduler treats as a first run.
func (s *Store) AnnouncedEventIDs(ctx context.Context) (map[string]bool, bool, error) {
	val, err := s.Client.Get(ctx, keyAnnouncedEvents).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get announced events: %w", err)
	}
	var ids []string
	if err := json.Unmarshal([]byte(val), &ids); err != nil {
		return nil, false, fmt.Errorf("decode announced events: %w", err)
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, true, nil
}

// SetAnnouncedEventIDs stores the full announced-id set as a JSON array.
// Ids are sorted so the stored value is stable.
func (s *Store) SetAnnouncedEventIDs(ctx context.Context, ids map[string]bool) error {
	list := make([]string, 0, len(ids))
	for id := range ids {
		list = append(list, id)
	}
	sort.Strings(list)
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode announced events: %w", err)
	}
	if err := s.Client.Set(ctx, keyAnnouncedEvents, raw, 0).Err(); err != nil {
		return fmt.Errorf("set announced events: %w", err)
	}
	return nil
}

// LastRaidPostDate returns the UTC date string ("2006-01-02") of the last
// weekly raid summary, or "" when none was ever posted.
func (s *Store) LastRaidPostDate(ctx context.Context) (string, error) {
	val, err := s.Client.Get(ctx, keyLastRaidPostDate).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get last raid post date: %w", err)
	}
	return val, nil
}

func (s *Store) SetLastRaidPostDate(ctx context.Context, date string) error {
	if err := s.Client.Set(ctx, keyLastRaidPostDate, date, 0).Err(); err != nil {
		return fmt.Errorf("set last raid post date: %w", err)
	}
	return nil
}

// EventsChannel returns the channel id for event announcements, "" if unset.
func (s *Store) EventsChannel(ctx context.Context) (string, error) {
	return s.channel(ctx, keyEventsChannel)
}

func (s *Store) SetEventsChannel(ctx context.Context, channelID string) error {
	if err := s.Client.Set(ctx, keyEventsChannel, channelID, 0).Err(); err != nil {
		return fmt.Errorf("set events channel: %w", err)
	}
	return nil
}

// RaidsChannel returns the channel id for the weekly raid summary, "" if unset.
func (s *Store) RaidsChannel(ctx context.Context) (string, error) {
	return s.channel(ctx, keyRaidsChannel)
}

func (s *Store) SetRaidsChannel(ctx context.Context, channelID string) error {
	if err := s.Client.Set(ctx, keyRaidsChannel, channelID, 0).Err(); err != nil {
		return fmt.Errorf("set raids channel: %w", err)
	}
	return nil
}

func (s *Store) channel(ctx context.Context, key string) (string, error) {
	val, err := s.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return val, nil
}
