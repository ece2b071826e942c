package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/krampus/pkg/mail"
	"github.com/matzehuels/krampus/pkg/match"
	"github.com/matzehuels/krampus/pkg/notify"
	"github.com/matzehuels/krampus/pkg/roster"
	"github.com/matzehuels/krampus/pkg/themes"
)

// Runner executes draws. It holds no per-run state, so one Runner may serve
// concurrent runs with different options.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger selects log.Default().
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute runs load → draw → render → deliver.
func (r *Runner) Execute(ctx context.Context, opts Options, t mail.Transport) (*Result, error) {
	result, err := r.Prepare(ctx, opts)
	if err != nil {
		return nil, err
	}
	if _, err := r.Deliver(ctx, t, result); err != nil {
		return result, err
	}
	return result, nil
}

// Prepare runs every stage except delivery.
func (r *Runner) Prepare(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	loadStart := time.Now()
	in, err := r.Load(opts)
	if err != nil {
		return nil, err
	}
	loadTime := time.Since(loadStart)

	result, err := r.Draw(ctx, opts, in)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = loadTime

	if err := r.Render(opts, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Load reads and validates the input files named by opts.
func (r *Runner) Load(opts Options) (*Input, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger

	participants, err := roster.ImportParticipants(opts.ParticipantsPath)
	if err != nil {
		return nil, err
	}
	if err := roster.Validate(participants); err != nil {
		return nil, fmt.Errorf("%s: %w", opts.ParticipantsPath, err)
	}

	var list []string
	if opts.ThemesPath != "" {
		if list, err = roster.ImportThemes(opts.ThemesPath); err != nil {
			return nil, err
		}
	}

	in := &Input{
		Participants: participants,
		Themes:       list,
		Warnings:     roster.Warnings(participants),
	}
	for _, w := range in.Warnings {
		logger.Warn(w)
	}
	logger.Info("loaded input", "participants", len(participants), "themes", len(list))
	return in, nil
}

// Draw shuffles the themes, matches givers to receivers and assigns the
// theme chunks. The result has no messages yet.
//
// Theme shortage is checked before any matching, so a draw that cannot give
// everyone their themes fails without consuming randomness.
func (r *Runner) Draw(ctx context.Context, opts Options, in *Input) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger
	start := time.Now()
	n := len(in.Participants)

	k, err := themes.PerParticipant(len(in.Themes), n, opts.ThemesPerParticipant)
	if err != nil {
		return nil, err
	}
	if k == 0 && len(in.Themes) > 0 {
		logger.Warn("fewer themes than participants, nobody gets a theme",
			"themes", len(in.Themes), "participants", n)
	}

	rng := NewRand(opts.Seed)
	logger.Debug("seeded generator", "seed", opts.Seed)

	shuffled := themes.Shuffle(rng, in.Themes)
	chunks := themes.Partition(shuffled, n, k)

	m := &match.Matcher{MaxAttempts: opts.MaxAttempts}
	pairs, stats, err := m.Match(ctx, rng, in.Participants)
	if err != nil {
		return nil, err
	}
	assignment, err := match.Assign(pairs, chunks)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:      uuid.New(),
		Seed:       opts.Seed,
		Assignment: assignment,
		Stats: Stats{
			Participants:         n,
			Themes:               len(in.Themes),
			ThemesPerParticipant: k,
			UnusedThemes:         len(in.Themes) - n*k,
			Match:                stats,
			DrawTime:             time.Since(start),
		},
	}
	logger.Info("drew assignment",
		"participants", n,
		"themes_each", k,
		"draws", stats.Draws,
		"duration", result.Stats.DrawTime)
	return result, nil
}

// Render fills result.Messages from result.Assignment.
func (r *Runner) Render(opts Options, result *Result) error {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	start := time.Now()

	date := opts.Date
	if date.IsZero() {
		date = time.Now()
	}
	renderer, err := notify.NewRenderer(opts.Template, notify.Options{
		Sender:  opts.Sender,
		Subject: opts.Subject,
		RunID:   result.RunID,
		Date:    date,
	})
	if err != nil {
		return err
	}
	msgs, err := renderer.RenderAll(result.Assignment)
	if err != nil {
		return err
	}

	result.Messages = msgs
	result.Stats.RenderTime = time.Since(start)
	opts.Logger.Debug("rendered messages", "count", len(msgs), "template", opts.Template)
	return nil
}

// Deliver hands result.Messages to t and records how many went out.
func (r *Runner) Deliver(ctx context.Context, t mail.Transport, result *Result) (int, error) {
	start := time.Now()
	sent, err := mail.Deliver(ctx, t, result.Messages)
	result.Delivered = sent
	result.Stats.DeliverTime = time.Since(start)
	if err != nil {
		r.Logger.Error("delivery stopped", "transport", t.Name(), "sent", sent, "total", len(result.Messages))
		return sent, err
	}
	r.Logger.Info("delivered messages", "transport", t.Name(), "count", sent, "duration", result.Stats.DeliverTime)
	return sent, nil
}

// applyLogger gives opts the runner's logger unless it carries its own.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
