package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// TerminalNotifier rings the terminal bell and prints a highlighted line.
type TerminalNotifier struct {
	mu      sync.Mutex
	out     io.Writer
	bell    bool
	mention *color.Color
	message *color.Color
}

func NewTerminalNotifier(out io.Writer, bell bool) *TerminalNotifier {
	return &TerminalNotifier{
		out:     out,
		bell:    bell,
		mention: color.New(color.FgYellow, color.Bold),
		message: color.New(color.FgCyan),
	}
}

func (t *TerminalNotifier) Notify(_ context.Context, n Notification) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	c := t.message
	if n.Kind == KindMention {
		c = t.mention
	}
	if t.bell {
		if _, err := io.WriteString(t.out, "\a"); err != nil {
			return err
		}
	}
	_, err := c.Fprintf(t.out, "🔔 %s: %s\n", n.Title, n.Body)
	if err != nil {
		return fmt.Errorf("write notification: %w", err)
	}
	return nil
}
