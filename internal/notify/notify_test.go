package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"url-chatroom/internal/dto"
	"url-chatroom/internal/session"
	"url-chatroom/pkg/events"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMention(t *testing.T) {
	tests := []struct {
		content string
		name    string
		want    bool
	}{
		{"Hey Ana!", "Ana", true},
		{"hey ana, look", "Ana", true},
		{"ANA", "ana", true},
		{"Anais is here", "Ana", false},
		{"Banana", "Ana", false},
		{"ana_b said hi", "ana", false},
		{"(Ana Maria) joined", "Ana Maria", true},
		{"olá José.", "josé", true},
		{"Joséphine", "José", false},
		{"a+b=c", "a+b", true},
		{"anything", "", false},
		{"anything", "   ", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsMention(tt.content, tt.name), "%q in %q", tt.name, tt.content)
	}
}

func TestMentionPatternIsCompiledOnce(t *testing.T) {
	first, err := mentionPattern("Zoë")
	require.NoError(t, err)
	second, err := mentionPattern("Zoë")
	require.NoError(t, err)
	assert.Same(t, first, second)

	other, err := mentionPattern("Ana")
	require.NoError(t, err)
	assert.NotSame(t, first, other)
}

func TestEvaluate(t *testing.T) {
	ana := &dto.User{Id: 1, DisplayName: "Ana"}
	both := session.Preferences{NotifyMessages: true, NotifyMentions: true}
	mentionsOnly := session.DefaultPreferences()
	none := session.Preferences{}

	tests := []struct {
		name  string
		msg   dto.Message
		user  *dto.User
		prefs session.Preferences
		want  Kind
		ok    bool
	}{
		{"own message never notifies", dto.Message{ClientId: "ana", Content: "Ana here"}, ana, both, "", false},
		{"mention wins", dto.Message{ClientId: "Bob", Content: "hi Ana"}, ana, both, KindMention, true},
		{"plain message", dto.Message{ClientId: "Bob", Content: "hello"}, ana, both, KindMessage, true},
		{"defaults mention", dto.Message{ClientId: "Bob", Content: "ping @Ana"}, ana, mentionsOnly, KindMention, true},
		{"defaults plain", dto.Message{ClientId: "Bob", Content: "hello"}, ana, mentionsOnly, "", false},
		{"mention disabled falls back", dto.Message{ClientId: "Bob", Content: "hi Ana"}, ana, session.Preferences{NotifyMessages: true}, KindMessage, true},
		{"everything off", dto.Message{ClientId: "Bob", Content: "hi Ana"}, ana, none, "", false},
		{"signed out plain", dto.Message{ClientId: "Bob", Content: "hi Ana"}, nil, both, KindMessage, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := Evaluate(tt.msg, tt.user, tt.prefs)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, n.Kind)
		})
	}
}

func TestEvaluateTruncatesBody(t *testing.T) {
	long := strings.Repeat("é", 300)
	n, ok := Evaluate(dto.Message{ClientId: "Bob", Content: long}, nil, session.Preferences{NotifyMessages: true})
	require.True(t, ok)
	assert.Equal(t, bodyLimit, len([]rune(n.Body)))
	assert.Equal(t, "New message from Bob", n.Title)
}

func TestTerminalNotifier(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	n := NewTerminalNotifier(&buf, true)

	require.NoError(t, n.Notify(context.Background(), Notification{Kind: KindMention, Title: "Bob mentioned you", Body: "hi Ana"}))
	assert.Equal(t, "\a🔔 Bob mentioned you: hi Ana\n", buf.String())
}

type recordingPublisher struct {
	published []events.Event
	err       error
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	r.published = append(r.published, e)
	return r.err
}

func TestNatsNotifier(t *testing.T) {
	pub := &recordingPublisher{}
	n := NewNatsNotifier(pub, "client-1")

	err := n.Notify(context.Background(), Notification{
		Kind:    KindMessage,
		Title:   "New message from Bob",
		Body:    "hello",
		Message: dto.Message{Id: 4, ThreadKey: "url:https://example.com/", ClientId: "Bob"},
	})
	require.NoError(t, err)
	require.Len(t, pub.published, 1)
	assert.Equal(t, events.ChatNotification, pub.published[0].EventType())
	assert.Equal(t, "url:https://example.com/", pub.published[0].Payload()["thread_key"])
	assert.Equal(t, "client-1", pub.published[0].Payload()["client_id"])
}

func TestMultiReturnsFirstErrorButNotifiesAll(t *testing.T) {
	failing := &recordingPublisher{err: errors.New("bus down")}
	ok := &recordingPublisher{}
	m := Multi{NewNatsNotifier(failing, "c"), NewNatsNotifier(ok, "c")}

	err := m.Notify(context.Background(), Notification{Kind: KindMessage})
	assert.EqualError(t, err, "bus down")
	assert.Len(t, ok.published, 1)
	assert.NoError(t, Nop{}.Notify(context.Background(), Notification{}))
}
