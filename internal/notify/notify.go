// Package notify decides which inbound messages deserve a notification and
// delivers them.
package notify

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"url-chatroom/internal/dto"
	"url-chatroom/internal/session"

	"github.com/patrickmn/go-cache"
)

type Kind string

const (
	KindMessage Kind = "message"
	KindMention Kind = "mention"
)

type Notification struct {
	Kind    Kind
	Title   string
	Body    string
	Message dto.Message
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

const bodyLimit = 140

// IsMention reports whether content names displayName as a whole word,
// ignoring case. Word characters are Unicode letters, digits and underscore.
func IsMention(content, displayName string) bool {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return false
	}
	re, err := mentionPattern(name)
	if err != nil {
		return false
	}
	return re.MatchString(content)
}

// Compiled mention patterns keyed by display name.
var mentionPatterns = cache.New(30*time.Minute, time.Hour)

func mentionPattern(name string) (*regexp.Regexp, error) {
	if v, ok := mentionPatterns.Get(name); ok {
		return v.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(`(?i)(?:^|[^\p{L}\p{N}_])` + regexp.QuoteMeta(name) + `(?:[^\p{L}\p{N}_]|$)`)
	if err != nil {
		return nil, err
	}
	mentionPatterns.SetDefault(name, re)
	return re, nil
}

// Evaluate returns the notification msg warrants for user under prefs. The
// user's own messages never notify; a mention wins over a plain message.
func Evaluate(msg dto.Message, user *dto.User, prefs session.Preferences) (Notification, bool) {
	if user != nil && strings.EqualFold(strings.TrimSpace(msg.ClientId), strings.TrimSpace(user.DisplayName)) {
		return Notification{}, false
	}

	if user != nil && prefs.NotifyMentions && IsMention(msg.Content, user.DisplayName) {
		return Notification{
			Kind:    KindMention,
			Title:   msg.ClientId + " mentioned you",
			Body:    truncate(msg.Content, bodyLimit),
			Message: msg,
		}, true
	}

	if prefs.NotifyMessages {
		return Notification{
			Kind:    KindMessage,
			Title:   "New message from " + msg.ClientId,
			Body:    truncate(msg.Content, bodyLimit),
			Message: msg,
		}, true
	}
	return Notification{}, false
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}

// Multi fans a notification out to every notifier and returns the first error.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) error {
	var first error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type Nop struct{}

func (Nop) Notify(context.Context, Notification) error { return nil }
