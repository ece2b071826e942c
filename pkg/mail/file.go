package mail

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matzehuels/krampus/pkg/notify"
)

// FileTransport writes each message to <dir>/<message id>.eml.
type FileTransport struct {
	dir string
}

// NewFileTransport creates dir if needed and returns a transport writing into it.
func NewFileTransport(dir string) (*FileTransport, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &FileTransport{dir: dir}, nil
}

// Name implements Transport.
func (t *FileTransport) Name() string { return "file" }

// Dir returns the output directory.
func (t *FileTransport) Dir() string { return t.dir }

// Path returns the file msg is written to.
func (t *FileTransport) Path(msg notify.Message) string {
	name := msg.ID
	if name == "" {
		name = msg.To
	}
	return filepath.Join(t.dir, filepath.Base(name)+".eml")
}

// Send implements Transport. Files are readable by the owner only, since
// they reveal the draw.
func (t *FileTransport) Send(ctx context.Context, msg notify.Message) error {
	f, err := os.OpenFile(t.Path(msg), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if _, err := msg.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write message: %w", err)
	}
	return f.Close()
}

var _ Transport = (*FileTransport)(nil)
