package mail

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"strconv"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/matzehuels/krampus/pkg/errors"
	"github.com/matzehuels/krampus/pkg/notify"
)

// SubmissionPort is the standard SMTP submission port.
const SubmissionPort = 587

// SMTPConfig describes an SMTP submission server.
type SMTPConfig struct {
	Host      string
	Port      int    // Defaults to SubmissionPort
	Username  string // Empty disables authentication
	Password  string
	HelloName string        // EHLO name; defaults to "localhost"
	Timeout   time.Duration // Connection timeout; defaults to 30s
}

// SMTPTransport sends messages through an SMTP server, one connection per
// message. STARTTLS is used whenever the server offers it.
type SMTPTransport struct {
	cfg    SMTPConfig
	dialer *net.Dialer
}

// NewSMTPTransport validates cfg and returns a transport.
func NewSMTPTransport(cfg SMTPConfig) (*SMTPTransport, error) {
	if cfg.Host == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "smtp host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = SubmissionPort
	}
	if cfg.HelloName == "" {
		cfg.HelloName = "localhost"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SMTPTransport{cfg: cfg, dialer: &net.Dialer{Timeout: cfg.Timeout}}, nil
}

// Name implements Transport.
func (t *SMTPTransport) Name() string { return "smtp" }

// Addr returns host:port of the server.
func (t *SMTPTransport) Addr() string {
	return net.JoinHostPort(t.cfg.Host, strconv.Itoa(t.cfg.Port))
}

// client builds a go-mail client whose dialer records connection failures
// in dialErr.
func (t *SMTPTransport) client(dialErr *error) (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(t.cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
		gomail.WithHELO(t.cfg.HelloName),
		gomail.WithTimeout(t.cfg.Timeout),
		gomail.WithDialContextFunc(func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := t.dialer.DialContext(ctx, network, addr)
			if err != nil {
				*dialErr = err
			}
			return conn, err
		}),
	}
	if t.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(t.cfg.Username),
			gomail.WithPassword(t.cfg.Password),
		)
	}
	c, err := gomail.NewClient(t.cfg.Host, opts...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "smtp client")
	}
	return c, nil
}

// Send implements Transport. Connection failures and 4xx replies are
// retryable; 5xx replies are not.
func (t *SMTPTransport) Send(ctx context.Context, msg notify.Message) error {
	if msg.From == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "a sender address is required to send mail")
	}
	m, err := msg.Msg()
	if err != nil {
		return err
	}

	var dialErr error
	c, err := t.client(&dialErr)
	if err != nil {
		return err
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		if dialErr != nil {
			return Retryable(fmt.Errorf("dial %s: %w", t.Addr(), dialErr))
		}
		return classify(err)
	}
	return nil
}

// classify marks transient SMTP failures as retryable.
func classify(err error) error {
	var sendErr *gomail.SendError
	if stderrors.As(err, &sendErr) {
		if sendErr.IsTemp() {
			return Retryable(err)
		}
		return err
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return Retryable(err)
	}
	return err
}

var _ Transport = (*SMTPTransport)(nil)
