package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"url-chatroom/internal/bootstrap"
	"url-chatroom/internal/chat"
	"url-chatroom/internal/chaterr"
	"url-chatroom/internal/config"
	"url-chatroom/internal/pkg/logger"
	"url-chatroom/internal/session"
	"url-chatroom/pkg/events"
	pktNats "url-chatroom/pkg/nats"
	"url-chatroom/pkg/urlnorm"

	"github.com/fatih/color"
)

// parseNotify applies "messages|mentions on|off" to the current preferences.
func parseNotify(controller *chat.Controller, arg string) (session.Preferences, error) {
	prefs := controller.Preferences()
	fields := strings.Fields(arg)
	if len(fields) != 2 {
		return prefs, errors.New("usage: /notify messages|mentions on|off")
	}

	var on bool
	switch strings.ToLower(fields[1]) {
	case "on":
		on = true
	case "off":
	default:
		return prefs, errors.New("usage: /notify messages|mentions on|off")
	}

	switch strings.ToLower(fields[0]) {
	case "messages":
		prefs.NotifyMessages = on
	case "mentions":
		prefs.NotifyMentions = on
	default:
		return prefs, errors.New("usage: /notify messages|mentions on|off")
	}
	return prefs, nil
}

func runKey(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: urlchat key <url>")
	}
	normalized, err := urlnorm.Normalize(args[0])
	if err != nil {
		return err
	}
	key, err := urlnorm.ThreadKey(args[0])
	if err != nil {
		return err
	}
	fmt.Println(normalized)
	fmt.Println(key)
	return nil
}

func runLogin(ctx context.Context, cfg *config.Config, log logger.ILogger) error {
	container, err := bootstrap.NewClientContainer(ctx, cfg, log, color.Output)
	if err != nil {
		return err
	}
	defer container.Close()

	if _, err := container.Sessions.Load(ctx); err != nil {
		return err
	}
	user, err := container.Identity.SignIn(ctx)
	if err != nil {
		return errors.New(chaterr.Message(err, "Google sign-in failed"))
	}
	fmt.Printf("Signed in as %s <%s>\n", user.DisplayName, user.Email)
	return nil
}

func runLogout(ctx context.Context, cfg *config.Config, log logger.ILogger) error {
	container, err := bootstrap.NewClientContainer(ctx, cfg, log, color.Output)
	if err != nil {
		return err
	}
	defer container.Close()

	if _, err := container.Sessions.Load(ctx); err != nil {
		return err
	}
	if err := container.Identity.SignOut(ctx); err != nil {
		return errors.New(chaterr.Message(err, "Failed to sign out"))
	}
	fmt.Println("Signed out")
	return nil
}

func runLogs(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("logs", flag.ContinueOnError)
	level := fs.String("level", "", "only show entries of this level")
	module := fs.String("module", "", "only show entries of this module")
	limit := fs.Int("n", 50, "number of entries")
	if err := fs.Parse(args); err != nil {
		return err
	}

	entries, err := logger.ReadLogs(cfg.App.LogFilePath, *level, *module, *limit)
	if err != nil {
		return err
	}
	dim := color.New(color.FgHiBlack)
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		dim.Printf("%s %-5s %s ", e.Timestamp, strings.ToUpper(e.Level), e.Module)
		fmt.Print(e.Message)
		if len(e.Details) > 0 {
			details, _ := json.Marshal(e.Details)
			dim.Printf(" %s", details)
		}
		fmt.Println()
	}
	return nil
}

func runNotifications(ctx context.Context, cfg *config.Config) error {
	if cfg.Notify.NatsURL == "" {
		return errors.New("NOTIFY_NATS_URL is not set")
	}

	sub, err := pktNats.NewSubscriber(cfg.Notify.NatsURL)
	if err != nil {
		return err
	}
	defer sub.Close()

	title := color.New(color.FgYellow, color.Bold)
	err = sub.Subscribe(ctx, events.ChatNotification, func(_ context.Context, event events.Event) error {
		data := event.Payload()
		title.Printf("🔔 %s", stringField(data, "title"))
		fmt.Printf(": %s  (%s)\n", stringField(data, "body"), stringField(data, "thread_key"))
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Println("Waiting for notifications, press Ctrl+C to stop")
	<-ctx.Done()
	return nil
}

func stringField(data map[string]interface{}, key string) string {
	switch v := data[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
