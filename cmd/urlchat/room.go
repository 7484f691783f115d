package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"url-chatroom/internal/bootstrap"
	"url-chatroom/internal/chat"
	"url-chatroom/internal/config"
	"url-chatroom/internal/pkg/logger"

	"github.com/fatih/color"
)

const roomHelp = `commands: /nick <name>  /login  /logout  /notify messages|mentions on|off  /help  /quit`

// staticTab stands in for the browser's active tab.
type staticTab string

func (t staticTab) ActiveURL(context.Context) (string, error) {
	if t == "" {
		return "", errors.New("no active tab URL")
	}
	return string(t), nil
}

func runRoom(ctx context.Context, cfg *config.Config, log logger.ILogger, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: urlchat room <url>")
	}

	container, err := bootstrap.NewClientContainer(ctx, cfg, log, color.Output)
	if err != nil {
		return err
	}
	defer container.Close()

	renderer := newTerminalRenderer(color.Output)
	controller := container.Controller(staticTab(args[0]), renderer, log, cfg.App.HistoryLimit)

	if err := controller.Activate(ctx); err != nil {
		return err
	}
	defer controller.Deactivate()

	renderer.Status(roomHelp)
	return readLoop(ctx, os.Stdin, controller, renderer)
}

func readLoop(ctx context.Context, in io.Reader, controller *chat.Controller, renderer *terminalRenderer) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := handleLine(ctx, line, controller, renderer); quit {
				return nil
			}
		}
	}
}

// handleLine runs one input line. Failures are already rendered as status
// lines by the controller, so their errors are dropped here.
func handleLine(ctx context.Context, line string, controller *chat.Controller, renderer *terminalRenderer) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		_ = controller.Send(ctx, line)
		return false
	}

	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	switch cmd {
	case "/quit", "/exit":
		return true
	case "/help":
		renderer.Status(roomHelp)
	case "/login":
		_ = controller.SignIn(ctx)
	case "/logout":
		_ = controller.SignOut(ctx)
	case "/nick":
		_ = controller.UpdateDisplayName(ctx, rest)
	case "/notify":
		prefs, err := parseNotify(controller, rest)
		if err != nil {
			renderer.Status(err.Error())
			return false
		}
		_ = controller.SetPreferences(ctx, prefs)
	default:
		renderer.Status(fmt.Sprintf("Unknown command %s", cmd))
	}
	return false
}
