package main

import (
	"context"
	"strings"
	"testing"

	"url-chatroom/internal/chat"
	"url-chatroom/internal/pkg/logger"
	"url-chatroom/internal/session"
	"url-chatroom/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(t *testing.T) *chat.Controller {
	t.Helper()
	sessions := session.NewStore(storage.NewMemoryStore(), logger.NewNop())
	return chat.NewController(chat.Options{
		Tab:      staticTab("https://example.com/"),
		Renderer: newTerminalRenderer(&strings.Builder{}),
		Sessions: sessions,
		Logger:   logger.NewNop(),
	})
}

func TestParseNotify(t *testing.T) {
	controller := newTestController(t)
	defaults := session.DefaultPreferences()

	tests := []struct {
		name    string
		arg     string
		want    session.Preferences
		wantErr bool
	}{
		{name: "enable messages", arg: "messages on", want: session.Preferences{NotifyMessages: true, NotifyMentions: defaults.NotifyMentions}},
		{name: "disable mentions", arg: "Mentions OFF", want: session.Preferences{NotifyMessages: defaults.NotifyMessages, NotifyMentions: false}},
		{name: "missing state", arg: "messages", wantErr: true},
		{name: "unknown category", arg: "replies on", wantErr: true},
		{name: "unknown state", arg: "messages maybe", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseNotify(controller, tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStaticTab(t *testing.T) {
	url, err := staticTab("https://example.com/a").ActiveURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", url)

	_, err = staticTab("").ActiveURL(context.Background())
	assert.Error(t, err)
}

func TestStringField(t *testing.T) {
	data := map[string]interface{}{"title": "Mentioned", "id": float64(42), "flag": true}
	assert.Equal(t, "Mentioned", stringField(data, "title"))
	assert.Equal(t, "42", stringField(data, "id"))
	assert.Equal(t, "true", stringField(data, "flag"))
	assert.Equal(t, "", stringField(data, "missing"))
}

func TestRendererWritesMessages(t *testing.T) {
	var out strings.Builder
	r := newTerminalRenderer(&out)

	r.Page("https://example.com/article")
	r.Status("Ready")
	r.User(nil)
	r.ClearMessages()

	assert.Equal(t, 2, strings.Count(out.String(), "# https://example.com/article"))
	assert.Contains(t, out.String(), "-- Ready")
	assert.Contains(t, out.String(), "Not signed in")
}
