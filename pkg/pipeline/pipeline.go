// Package pipeline runs a complete secret santa draw.
//
// A run has four stages:
//
//  1. Load: read and validate the participants and theme files
//  2. Draw: shuffle the themes, draw an exclusion-respecting derangement and
//     give every giver a disjoint chunk of themes
//  3. Render: turn each giver's match into a message
//  4. Deliver: hand the messages to a mail transport
//
// All randomness comes from one PCG generator seeded from Options.Seed, so a
// run with a fixed seed and the same inputs always produces the same
// assignment.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	opts := pipeline.Options{
//	    ParticipantsPath: "participants.csv",
//	    ThemesPath:       "themes.txt",
//	    Sender:           "santa@example.com",
//	}
//	result, err := runner.Execute(ctx, opts, mail.NewConsoleTransport(os.Stdout))
//
// Run the stages separately to confirm before sending:
//
//	result, err := runner.Prepare(ctx, opts)
//	// ... ask the user
//	sent, err := runner.Deliver(ctx, transport, result)
package pipeline

import (
	"io"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/krampus/pkg/errors"
	"github.com/matzehuels/krampus/pkg/match"
	"github.com/matzehuels/krampus/pkg/notify"
	"github.com/matzehuels/krampus/pkg/roster"
)

// Options contains all configuration for a draw.
type Options struct {
	ParticipantsPath string `json:"participants_path"`
	ThemesPath       string `json:"themes_path,omitempty"` // Empty means no themes

	// ThemesPerParticipant overrides the default len(themes)/n. Zero keeps
	// the default.
	ThemesPerParticipant int `json:"themes_per_participant,omitempty"`

	// MaxAttempts bounds the derangements drawn before the exclusions are
	// declared unsatisfiable. Zero selects match.DefaultMaxAttempts.
	MaxAttempts int `json:"max_attempts,omitempty"`

	// Seed seeds the generator. Zero picks a random seed, reported in
	// Result.Seed.
	Seed uint64 `json:"seed,omitempty"`

	Template string    `json:"template,omitempty"` // Built-in name or file path
	Sender   string    `json:"sender,omitempty"`
	Subject  string    `json:"subject,omitempty"`
	Date     time.Time `json:"-"` // Date header; zero uses the time of the draw

	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.ParticipantsPath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "participants file is required")
	}
	if o.MaxAttempts < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max attempts must not be negative, got %d", o.MaxAttempts)
	}
	if o.ThemesPerParticipant < 0 {
		return errors.New(errors.ErrCodeInvalidInput,
			"themes per participant must not be negative, got %d", o.ThemesPerParticipant)
	}
	if o.Sender != "" {
		if err := errors.ValidateEmail(o.Sender); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "sender")
		}
	}

	if o.MaxAttempts == 0 {
		o.MaxAttempts = match.DefaultMaxAttempts
	}
	if o.Seed == 0 {
		o.Seed = rand.Uint64()
	}
	if o.Template == "" {
		o.Template = notify.DefaultTemplate
	}
	if o.Subject == "" {
		o.Subject = notify.DefaultSubject
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// NewRand returns the generator used for a draw with the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// Input is the loaded and validated content of the input files.
type Input struct {
	Participants []roster.Participant
	Themes       []string
	Warnings     []string // Non-fatal roster problems
}

// Result contains the outputs of a run.
type Result struct {
	// RunID namespaces the Message-IDs of this run.
	RunID uuid.UUID

	// Seed is the generator seed, so a draw can be reproduced.
	Seed uint64

	// Assignment holds one match per participant, in roster order.
	Assignment match.Assignment

	// Messages holds one rendered message per participant, in roster order.
	Messages []notify.Message

	// Delivered counts messages handed to the transport.
	Delivered int

	Stats Stats
}

// Stats contains run statistics. None of them reveal a pairing.
type Stats struct {
	Participants         int
	Themes               int
	ThemesPerParticipant int
	UnusedThemes         int

	Match match.Stats

	LoadTime    time.Duration
	DrawTime    time.Duration
	RenderTime  time.Duration
	DeliverTime time.Duration
}
