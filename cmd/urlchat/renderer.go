package main

import (
	"fmt"
	"io"
	"sync"

	"url-chatroom/internal/dto"

	"github.com/fatih/color"
)

// terminalRenderer prints the room to a terminal. Calls may arrive from the
// feed goroutine, so writes are serialized.
type terminalRenderer struct {
	mu   sync.Mutex
	out  io.Writer
	page string

	header *color.Color
	meta   *color.Color
	status *color.Color
	states map[string]*color.Color
}

func newTerminalRenderer(out io.Writer) *terminalRenderer {
	return &terminalRenderer{
		out:    out,
		header: color.New(color.FgCyan, color.Bold),
		meta:   color.New(color.FgHiBlack),
		status: color.New(color.Italic),
		states: map[string]*color.Color{
			"connected":    color.New(color.FgGreen, color.Bold),
			"reconnecting": color.New(color.FgYellow, color.Bold),
			"offline":      color.New(color.FgRed, color.Bold),
		},
	}
}

// Page prints the room header. It is repeated after every clear.
func (r *terminalRenderer) Page(normalizedURL string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.page = normalizedURL
	r.printPageLocked()
}

func (r *terminalRenderer) printPageLocked() {
	if r.page == "" {
		return
	}
	r.header.Fprintf(r.out, "# %s\n", r.page)
}

func (r *terminalRenderer) ClearMessages() {
	r.mu.Lock()
	defer r.mu.Unlock()
	// ANSI clear screen + home.
	fmt.Fprint(r.out, "\033[2J\033[H")
	r.printPageLocked()
}

func (r *terminalRenderer) RenderMessage(msg dto.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sender := msg.ClientId
	if sender == "" {
		sender = "unknown"
	}
	r.meta.Fprintf(r.out, "%s • %s\n", sender, msg.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintln(r.out, msg.Content)
}

func (r *terminalRenderer) Status(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.Fprintf(r.out, "-- %s\n", text)
}

func (r *terminalRenderer) ConnectionState(state string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.states[state]
	if !ok {
		c = r.states["offline"]
	}
	c.Fprintf(r.out, "[%s]\n", state)
}

func (r *terminalRenderer) User(user *dto.User) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user == nil {
		fmt.Fprintln(r.out, "Not signed in (type /login)")
		return
	}
	fmt.Fprintf(r.out, "Signed in as %s <%s>\n", user.DisplayName, user.Email)
}
