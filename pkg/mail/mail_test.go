package mail

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/krampus/pkg/errors"
	"github.com/matzehuels/krampus/pkg/notify"
)

func init() {
	retryDelay = time.Millisecond
}

func testMessages(n int) []notify.Message {
	msgs := make([]notify.Message, n)
	for i := range msgs {
		msgs[i] = notify.Message{
			ID:      fmt.Sprintf("id-%d@krampus", i),
			From:    "santa@example.com",
			To:      fmt.Sprintf("p%d@example.com", i),
			Subject: "Draw",
			Body:    fmt.Sprintf("hello %d\n", i),
		}
	}
	return msgs
}

// fakeTransport fails according to a script of errors, one per Send call.
type fakeTransport struct {
	script []error
	calls  int
	sent   []string
}

func (f *fakeTransport) Name() string { return "fake" }

func (f *fakeTransport) Send(ctx context.Context, msg notify.Message) error {
	f.calls++
	if len(f.script) > 0 {
		err := f.script[0]
		f.script = f.script[1:]
		if err != nil {
			return err
		}
	}
	f.sent = append(f.sent, msg.To)
	return nil
}

func TestDeliver(t *testing.T) {
	ft := &fakeTransport{}
	n, err := Deliver(context.Background(), ft, testMessages(3))
	if err != nil {
		t.Fatalf("Deliver() error: %v", err)
	}
	if n != 3 || len(ft.sent) != 3 {
		t.Errorf("delivered %d (sent %v), want 3", n, ft.sent)
	}
}

func TestDeliverRetriesTransient(t *testing.T) {
	ft := &fakeTransport{script: []error{Retryable(stderrors.New("busy")), nil}}
	n, err := Deliver(context.Background(), ft, testMessages(2))
	if err != nil {
		t.Fatalf("Deliver() error: %v", err)
	}
	if n != 2 {
		t.Errorf("delivered %d, want 2", n)
	}
	if ft.calls != 3 {
		t.Errorf("Send calls = %d, want 3", ft.calls)
	}
}

func TestDeliverStopsOnPermanent(t *testing.T) {
	ft := &fakeTransport{script: []error{nil, stderrors.New("mailbox unavailable")}}
	n, err := Deliver(context.Background(), ft, testMessages(3))
	if !errors.Is(err, errors.ErrCodeDelivery) {
		t.Fatalf("Deliver() error = %v, want %s", err, errors.ErrCodeDelivery)
	}
	if n != 1 {
		t.Errorf("delivered %d, want 1", n)
	}
	if ft.calls != 2 {
		t.Errorf("Send calls = %d, want 2", ft.calls)
	}
	if !strings.Contains(err.Error(), "message 2 of 3") {
		t.Errorf("error %q should locate the failing message", err)
	}
}

func TestDeliverCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ft := &fakeTransport{}
	n, err := Deliver(ctx, ft, testMessages(2))
	if err != context.Canceled {
		t.Errorf("Deliver() error = %v, want context.Canceled", err)
	}
	if n != 0 || ft.calls != 0 {
		t.Errorf("delivered %d with %d calls, want none", n, ft.calls)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	base := stderrors.New("temporary")
	err := Retryable(base)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != base.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if !stderrors.Is(err, base) {
		t.Error("Retryable error should unwrap to its cause")
	}
	if IsRetryable(base) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	permanent := stderrors.New("permanent")

	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return permanent
	})
	if err != permanent || calls != 1 {
		t.Errorf("non-retryable: err = %v, calls = %d; want permanent, 1", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return Retryable(permanent)
	})
	if !IsRetryable(err) || calls != 3 {
		t.Errorf("always retryable: err = %v, calls = %d; want retryable, 3", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(stderrors.New("busy"))
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

func TestFileTransport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	ft, err := NewFileTransport(dir)
	if err != nil {
		t.Fatalf("NewFileTransport() error: %v", err)
	}

	msgs := testMessages(2)
	if _, err := Deliver(context.Background(), ft, msgs); err != nil {
		t.Fatalf("Deliver() error: %v", err)
	}

	for _, msg := range msgs {
		data, err := os.ReadFile(ft.Path(msg))
		if err != nil {
			t.Fatalf("read %s: %v", ft.Path(msg), err)
		}
		for _, want := range []string{"To: <" + msg.To + ">", "Message-ID: <" + msg.ID + ">", strings.TrimSpace(msg.Body)} {
			if !bytes.Contains(data, []byte(want)) {
				t.Errorf("%s missing %q:\n%s", ft.Path(msg), want, data)
			}
		}
		info, err := os.Stat(ft.Path(msg))
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("file mode = %v, want 0600", info.Mode().Perm())
		}
	}
}

func TestFileTransportPathSanitized(t *testing.T) {
	ft := &FileTransport{dir: "/tmp/out"}
	got := ft.Path(notify.Message{ID: "../../etc/passwd"})
	if got != filepath.Join("/tmp/out", "passwd.eml") {
		t.Errorf("Path() = %q, should stay inside the output dir", got)
	}
}

func TestConsoleTransport(t *testing.T) {
	var buf bytes.Buffer
	ct := NewConsoleTransport(&buf)
	if _, err := Deliver(context.Background(), ct, testMessages(1)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"from: santa@example.com", "to: p0@example.com", "subject: Draw", "hello 0"} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %q:\n%s", want, out)
		}
	}
}

// fakeSMTP runs a minimal SMTP server answering RCPT with rcptCode.
type fakeSMTP struct {
	addr  *net.TCPAddr
	rcpts atomic.Int32
	data  chan string
}

func newFakeSMTP(t *testing.T, rcptCode int) *fakeSMTP {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	s := &fakeSMTP{addr: ln.Addr().(*net.TCPAddr), data: make(chan string, 16)}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go s.serve(conn, rcptCode)
		}
	}()
	return s
}

func (s *fakeSMTP) serve(conn net.Conn, rcptCode int) {
	tp := textproto.NewConn(conn)
	defer tp.Close()

	tp.PrintfLine("220 fake ESMTP")
	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		verb, _, _ := strings.Cut(line, " ")
		switch strings.ToUpper(verb) {
		case "EHLO", "HELO":
			tp.PrintfLine("250 fake")
		case "RCPT":
			s.rcpts.Add(1)
			tp.PrintfLine("%d recipient", rcptCode)
		case "DATA":
			tp.PrintfLine("354 go ahead")
			data, err := tp.ReadDotBytes()
			if err != nil {
				return
			}
			s.data <- string(data)
			tp.PrintfLine("250 queued")
		case "QUIT":
			tp.PrintfLine("221 bye")
			return
		default:
			tp.PrintfLine("250 ok")
		}
	}
}

func (s *fakeSMTP) transport(t *testing.T) *SMTPTransport {
	t.Helper()
	tr, err := NewSMTPTransport(SMTPConfig{Host: "127.0.0.1", Port: s.addr.Port, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewSMTPTransport() error: %v", err)
	}
	return tr
}

func TestSMTPTransportSend(t *testing.T) {
	srv := newFakeSMTP(t, 250)
	tr := srv.transport(t)

	msgs := testMessages(1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := Deliver(ctx, tr, msgs); err != nil {
		t.Fatalf("Deliver() error: %v", err)
	}

	select {
	case data := <-srv.data:
		if !strings.Contains(data, "To: <p0@example.com>") || !strings.Contains(data, "hello 0") {
			t.Errorf("server received:\n%s", data)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not receive DATA")
	}
}

func TestSMTPTransportErrors(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		wantRcpts int32
	}{
		{"transient retried", 451, 3},
		{"permanent not retried", 550, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newFakeSMTP(t, tt.code)
			tr := srv.transport(t)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_, err := Deliver(ctx, tr, testMessages(1))
			if !errors.Is(err, errors.ErrCodeDelivery) {
				t.Fatalf("Deliver() error = %v, want %s", err, errors.ErrCodeDelivery)
			}
			if got := srv.rcpts.Load(); got != tt.wantRcpts {
				t.Errorf("RCPT commands = %d, want %d", got, tt.wantRcpts)
			}
		})
	}
}

func TestSMTPTransportDialFailureRetryable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	tr, err := NewSMTPTransport(SMTPConfig{Host: "127.0.0.1", Port: port, Timeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	err = tr.Send(context.Background(), testMessages(1)[0])
	if !IsRetryable(err) {
		t.Errorf("Send() to a closed port error = %v, want retryable", err)
	}
}

func TestSMTPTransportRequiresSender(t *testing.T) {
	tr, err := NewSMTPTransport(SMTPConfig{Host: "127.0.0.1"})
	if err != nil {
		t.Fatal(err)
	}
	err = tr.Send(context.Background(), notify.Message{To: "a@example.com"})
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Send() error = %v, want %s", err, errors.ErrCodeInvalidConfig)
	}
}

func TestNewSMTPTransportDefaults(t *testing.T) {
	if _, err := NewSMTPTransport(SMTPConfig{}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("NewSMTPTransport() without host error = %v, want %s", err, errors.ErrCodeInvalidConfig)
	}

	tr, err := NewSMTPTransport(SMTPConfig{Host: "smtp.example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Addr() != "smtp.example.com:587" {
		t.Errorf("Addr() = %q, want smtp.example.com:587", tr.Addr())
	}
}
