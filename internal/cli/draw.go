package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/krampus/pkg/config"
	"github.com/matzehuels/krampus/pkg/errors"
	"github.com/matzehuels/krampus/pkg/mail"
	"github.com/matzehuels/krampus/pkg/notify"
	"github.com/matzehuels/krampus/pkg/pipeline"
)

// drawOpts holds the flags of the draw command.
type drawOpts struct {
	ntheme      int    // themes per participant, 0 for len(themes)/n
	template    string // built-in template name or file
	test        bool   // print messages instead of sending
	outDir      string // write .eml files instead of sending
	seed        uint64 // 0 picks a random seed
	maxAttempts int
	sender      string
	subject     string
	yes         bool // skip the confirmation before sending mail
}

// merge fills every flag the user did not set from cfg.
func (o *drawOpts) merge(flags *pflag.FlagSet, cfg *config.Config) {
	if !flags.Changed("ntheme") && cfg.Draw.ThemesPerParticipant > 0 {
		o.ntheme = cfg.Draw.ThemesPerParticipant
	}
	if !flags.Changed("template") && cfg.Draw.Template != "" {
		o.template = cfg.Draw.Template
	}
	if !flags.Changed("max-attempts") && cfg.Draw.MaxAttempts > 0 {
		o.maxAttempts = cfg.Draw.MaxAttempts
	}
	if !flags.Changed("from") && cfg.Mail.Sender != "" {
		o.sender = cfg.Mail.Sender
	}
	if !flags.Changed("subject") && cfg.Mail.Subject != "" {
		o.subject = cfg.Mail.Subject
	}
}

func (o *drawOpts) pipelineOptions(participants, themes string) pipeline.Options {
	return pipeline.Options{
		ParticipantsPath:     participants,
		ThemesPath:           themes,
		ThemesPerParticipant: o.ntheme,
		MaxAttempts:          o.maxAttempts,
		Seed:                 o.seed,
		Template:             o.template,
		Sender:               o.sender,
		Subject:              o.subject,
	}
}

// transport picks where messages go: the console for --test, a directory
// for --out-dir, otherwise the configured SMTP server.
func (o *drawOpts) transport(cmd *cobra.Command, cfg *config.Config) (mail.Transport, error) {
	switch {
	case o.test:
		return mail.NewConsoleTransport(cmd.OutOrStdout()), nil
	case o.outDir != "":
		return mail.NewFileTransport(o.outDir)
	}
	if o.sender == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"a sender address is required to send mail; use --from or set mail.sender")
	}
	timeout, err := cfg.SMTP.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	return mail.NewSMTPTransport(mail.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		HelloName: cfg.SMTP.HelloName,
		Timeout:   timeout,
	})
}

func (c *CLI) drawCommand() *cobra.Command {
	var opts drawOpts

	cmd := &cobra.Command{
		Use:   "draw <participants.csv> <themes.txt>",
		Short: "Draw the assignment and notify every giver",
		Long: `Draw a secret santa assignment and send every giver a message naming the
person they give to and their gift themes.

The participants file is CSV with a header row and the columns name, email
and optionally except. The themes file lists one theme per line; the themes
are shuffled and split evenly between the givers.

By default messages go out through the SMTP server from the config file,
after a confirmation. Use --test to print them instead, or --out-dir to write
them as .eml files.`,
		Example: `  krampus draw participants.csv themes.txt --test
  krampus draw participants.csv themes.txt --ntheme 2 --template fr
  krampus draw participants.csv themes.txt --out-dir out/`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts.merge(cmd.Flags(), cfg)
			return c.runDraw(cmd.Context(), cmd, args[0], args[1], opts, cfg)
		},
	}

	cmd.Flags().IntVarP(&opts.ntheme, "ntheme", "n", 0, "themes per participant (default: as many as the list allows)")
	cmd.Flags().StringVarP(&opts.template, "template", "t", notify.DefaultTemplate, "message template: en, fr or a template file")
	cmd.Flags().BoolVar(&opts.test, "test", false, "print the messages instead of sending them")
	cmd.Flags().StringVarP(&opts.outDir, "out-dir", "o", "", "write the messages as .eml files into this directory")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed for a reproducible draw (default: random)")
	cmd.Flags().IntVar(&opts.maxAttempts, "max-attempts", 0, "draws tried before the exclusions are declared unsatisfiable")
	cmd.Flags().StringVar(&opts.sender, "from", "", "sender address")
	cmd.Flags().StringVar(&opts.subject, "subject", "", "message subject")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "send without asking for confirmation")
	cmd.MarkFlagsMutuallyExclusive("test", "out-dir")

	return cmd
}

func (c *CLI) runDraw(ctx context.Context, cmd *cobra.Command, participants, themes string, opts drawOpts, cfg *config.Config) error {
	logger := loggerFromContext(ctx)

	// Resolve the transport first so a missing SMTP setup fails before the draw.
	t, err := opts.transport(cmd, cfg)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	runner := pipeline.NewRunner(logger)
	result, err := runner.Prepare(ctx, opts.pipelineOptions(participants, themes))
	if err != nil {
		return err
	}
	logger.Debug("draw seed", "seed", result.Seed, "run", result.RunID)
	prog.done(fmt.Sprintf("Drew %d matches", len(result.Assignment)))

	srv, isSMTP := t.(*mail.SMTPTransport)
	if isSMTP && !opts.yes {
		prompt := fmt.Sprintf("Send %d messages through %s?", len(result.Messages), srv.Addr())
		ok, err := confirm(ctx, cmd.InOrStdin(), cmd.ErrOrStderr(), prompt)
		if err != nil {
			return err
		}
		if !ok {
			printWarning("Nothing was sent")
			return nil
		}
	}

	var sent int
	if isSMTP {
		spinner := newSpinner(ctx, "Sending messages...")
		spinner.Start()
		sent, err = runner.Deliver(ctx, &progressTransport{Transport: t, spinner: spinner, total: len(result.Messages)}, result)
		spinner.Stop()
	} else {
		sent, err = runner.Deliver(ctx, t, result)
	}
	if err != nil {
		if sent > 0 {
			printWarning("%d of %d messages were sent before the failure", sent, len(result.Messages))
		}
		return err
	}

	printDrawSummary(result, t)
	return nil
}

func printDrawSummary(result *pipeline.Result, t mail.Transport) {
	switch t := t.(type) {
	case *mail.ConsoleTransport:
		printSuccess("Printed %d messages, nothing was sent", result.Delivered)
	case *mail.FileTransport:
		printSuccess("Wrote %d messages", result.Delivered)
		printFile(t.Dir())
	default:
		printSuccess("Sent %d messages", result.Delivered)
	}
	printDetail("%d themes each, %d unused", result.Stats.ThemesPerParticipant, result.Stats.UnusedThemes)
}

// progressTransport reports delivery progress on a spinner.
type progressTransport struct {
	mail.Transport
	spinner *Spinner
	total   int
	sent    int
}

func (p *progressTransport) Send(ctx context.Context, msg notify.Message) error {
	p.spinner.SetMessage("Sending %d/%d...", p.sent+1, p.total)
	if err := p.Transport.Send(ctx, msg); err != nil {
		return err
	}
	p.sent++
	return nil
}
