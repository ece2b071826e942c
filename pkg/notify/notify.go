package notify

import (
	"bytes"
	"embed"
	"io"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	gomail "github.com/wneessen/go-mail"

	"github.com/matzehuels/krampus/pkg/errors"
	"github.com/matzehuels/krampus/pkg/match"
)

//go:embed templates/*.tmpl
var builtin embed.FS

// DefaultTemplate is the built-in template used when none is configured.
const DefaultTemplate = "en"

// DefaultSubject is the subject used when none is configured.
const DefaultSubject = "Your secret santa draw"

// Builtin returns the names of the built-in templates.
func Builtin() []string {
	return []string{"en", "fr"}
}

// Options configures message headers.
type Options struct {
	Sender  string    // From address; may be empty for console previews
	Subject string    // Defaults to DefaultSubject
	RunID   uuid.UUID // Namespace for Message-IDs; uuid.Nil is allowed
	Date    time.Time // Date header; zero uses the time of writing
}

// Message is one rendered notification.
type Message struct {
	ID      string
	From    string
	To      string
	Subject string
	Date    time.Time
	Body    string
}

// Renderer turns matches into messages.
type Renderer struct {
	tmpl *template.Template
	opts Options
}

// NewRenderer loads the template called name, either a built-in ("en", "fr")
// or a path to a template file. An empty name selects DefaultTemplate.
func NewRenderer(name string, opts Options) (*Renderer, error) {
	if name == "" {
		name = DefaultTemplate
	}
	if opts.Subject == "" {
		opts.Subject = DefaultSubject
	}

	src, err := load(name)
	if err != nil {
		return nil, err
	}
	tmpl, err := Parse(name, src)
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl, opts: opts}, nil
}

func load(name string) (string, error) {
	if data, err := builtin.ReadFile("templates/" + name + ".tmpl"); err == nil {
		return string(data), nil
	}
	data, err := os.ReadFile(name)
	if os.IsNotExist(err) {
		return "", errors.Wrap(errors.ErrCodeFileNotFound, err,
			"template %q is neither built in (%s) nor a readable file", name, strings.Join(Builtin(), ", "))
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidTemplate, err, "read template %s", name)
	}
	return string(data), nil
}

// Parse compiles template source. Missing keys are errors.
func Parse(name, src string) (*template.Template, error) {
	tmpl, err := template.New(name).
		Option("missingkey=error").
		Funcs(template.FuncMap{"join": strings.Join, "upper": strings.ToUpper}).
		Parse(src)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTemplate, err, "parse template %s", name)
	}
	return tmpl, nil
}

// Render produces the message for one giver.
func (r *Renderer) Render(m match.Match) (Message, error) {
	var body bytes.Buffer
	if err := r.tmpl.Execute(&body, m); err != nil {
		return Message{}, errors.Wrap(errors.ErrCodeInvalidTemplate, err, "render message for %s", m.From.Name)
	}
	return Message{
		ID:      messageID(r.opts.RunID, m.From.Name),
		From:    r.opts.Sender,
		To:      m.From.Email,
		Subject: r.opts.Subject,
		Date:    r.opts.Date,
		Body:    body.String(),
	}, nil
}

// RenderAll renders every match of an assignment, in order.
func (r *Renderer) RenderAll(a match.Assignment) ([]Message, error) {
	msgs := make([]Message, 0, len(a))
	for _, m := range a {
		msg, err := r.Render(m)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// messageID keys on the giver's name, which is unique within a roster;
// emails may be shared.
func messageID(run uuid.UUID, giver string) string {
	return uuid.NewSHA1(run, []byte(giver)).String() + "@krampus"
}

// Msg builds the go-mail message. The body is sent as UTF-8 text/plain with
// quoted-printable encoding; non-ASCII subjects are Q-encoded.
func (m Message) Msg() (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if m.From != "" {
		if err := msg.From(m.From); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "sender %q", m.From)
		}
	}
	if err := msg.To(m.To); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "recipient %q", m.To)
	}
	msg.Subject(m.Subject)
	if !m.Date.IsZero() {
		msg.SetDateWithValue(m.Date)
	}
	if m.ID != "" {
		msg.SetMessageIDWithValue(m.ID)
	}
	msg.SetBodyString(gomail.TypeTextPlain, m.Body)
	return msg, nil
}

// WriteTo writes the message in RFC 5322 form, as sent over SMTP or stored
// in a .eml file.
func (m Message) WriteTo(w io.Writer) (int64, error) {
	msg, err := m.Msg()
	if err != nil {
		return 0, err
	}
	return msg.WriteTo(w)
}
