package mail

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/krampus/pkg/notify"
)

// ConsoleTransport prints messages instead of sending them.
type ConsoleTransport struct {
	w io.Writer
}

// NewConsoleTransport returns a transport printing to w.
func NewConsoleTransport(w io.Writer) *ConsoleTransport {
	return &ConsoleTransport{w: w}
}

// Name implements Transport.
func (t *ConsoleTransport) Name() string { return "console" }

// Send implements Transport.
func (t *ConsoleTransport) Send(ctx context.Context, msg notify.Message) error {
	_, err := fmt.Fprintf(t.w, "from: %s\nto: %s\nsubject: %s\nmessage-id: %s\nmessage:\n%s\n%s\n",
		msg.From, msg.To, msg.Subject, msg.ID, strings.TrimRight(msg.Body, "\n"), strings.Repeat("-", 40))
	return err
}

var _ Transport = (*ConsoleTransport)(nil)
