// Command urlchat is a terminal client for URL chat rooms: everyone viewing
// the same page shares one room.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"url-chatroom/internal/config"
	"url-chatroom/internal/pkg/logger"

	"go.uber.org/zap/zapcore"
)

const usage = `usage: urlchat <command> [arguments]

commands:
  room <url>          join the chat room of a page
  key <url>           print the normalized URL and thread key of a page
  login               sign in with Google
  logout              sign out and revoke the Google credential
  logs [flags]        show recent client log entries
  notifications       print notifications published on the NATS bus
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	level := zapcore.InfoLevel
	if !cfg.IsProduction() {
		level = zapcore.DebugLevel
	}
	// File only, so log lines never interleave with the chat.
	log := logger.NewIsolatedLogger(cfg.App.LogFilePath, level)
	defer log.Sync()

	args := os.Args[2:]
	var err error
	switch os.Args[1] {
	case "room":
		err = runRoom(ctx, cfg, log, args)
	case "key":
		err = runKey(args)
	case "login":
		err = runLogin(ctx, cfg, log)
	case "logout":
		err = runLogout(ctx, cfg, log)
	case "logs":
		err = runLogs(cfg, args)
	case "notifications":
		err = runNotifications(ctx, cfg)
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
