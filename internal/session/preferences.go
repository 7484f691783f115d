package session

import (
	"context"
	"fmt"
	"strconv"
)

const (
	KeyNotifyMessages = "urlchatroom_notify_messages"
	KeyNotifyMentions = "urlchatroom_notify_mentions"
)

// Preferences are the per-category notification switches.
type Preferences struct {
	NotifyMessages bool
	NotifyMentions bool
}

func DefaultPreferences() Preferences {
	return Preferences{NotifyMessages: false, NotifyMentions: true}
}

func (s *Store) LoadPreferences(ctx context.Context) (Preferences, error) {
	prefs := DefaultPreferences()

	values, err := s.kv.Get(ctx, KeyNotifyMessages, KeyNotifyMentions)
	if err != nil {
		return prefs, fmt.Errorf("load preferences: %w", err)
	}
	if v, err := strconv.ParseBool(values[KeyNotifyMessages]); err == nil {
		prefs.NotifyMessages = v
	}
	if v, err := strconv.ParseBool(values[KeyNotifyMentions]); err == nil {
		prefs.NotifyMentions = v
	}
	return prefs, nil
}

func (s *Store) SavePreferences(ctx context.Context, prefs Preferences) error {
	err := s.kv.Set(ctx, map[string]string{
		KeyNotifyMessages: strconv.FormatBool(prefs.NotifyMessages),
		KeyNotifyMentions: strconv.FormatBool(prefs.NotifyMentions),
	})
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
