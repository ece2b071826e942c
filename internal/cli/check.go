package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/krampus/pkg/pipeline"
)

// checkOpts holds the flags of the check command.
type checkOpts struct {
	ntheme      int
	maxAttempts int
	quiet       bool // skip the roster table
}

func (c *CLI) checkCommand() *cobra.Command {
	var opts checkOpts

	cmd := &cobra.Command{
		Use:   "check <participants.csv> [themes.txt]",
		Short: "Validate the input files and prove a draw is possible",
		Long: `Check reads the participants file and the optional themes file, reports
problems and runs a trial draw to prove the exclusions can be satisfied.
The trial draw is thrown away and never printed.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("ntheme") && cfg.Draw.ThemesPerParticipant > 0 {
				opts.ntheme = cfg.Draw.ThemesPerParticipant
			}
			if !cmd.Flags().Changed("max-attempts") && cfg.Draw.MaxAttempts > 0 {
				opts.maxAttempts = cfg.Draw.MaxAttempts
			}

			var themes string
			if len(args) > 1 {
				themes = args[1]
			}
			return runCheck(cmd.Context(), args[0], themes, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.ntheme, "ntheme", "n", 0, "themes per participant to check for")
	cmd.Flags().IntVar(&opts.maxAttempts, "max-attempts", 0, "draws tried before the exclusions are declared unsatisfiable")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not print the roster table")

	return cmd
}

func runCheck(ctx context.Context, participants, themes string, opts checkOpts) error {
	logger := loggerFromContext(ctx)
	runner := pipeline.NewRunner(logger)
	popts := pipeline.Options{
		ParticipantsPath:     participants,
		ThemesPath:           themes,
		ThemesPerParticipant: opts.ntheme,
		MaxAttempts:          opts.maxAttempts,
	}

	in, err := runner.Load(popts)
	if err != nil {
		return err
	}
	if !opts.quiet {
		printRosterTable(in.Participants)
	}
	for _, w := range in.Warnings {
		printWarning("%s", w)
	}

	result, err := runner.Draw(ctx, popts, in)
	if err != nil {
		return err
	}

	printSuccess("A valid draw exists for %d participants", len(in.Participants))
	printDetail("found after %d draws", result.Stats.Match.Draws)
	if themes != "" {
		printKeyValue("Themes", fmt.Sprint(result.Stats.Themes))
		printKeyValue("Per giver", fmt.Sprint(result.Stats.ThemesPerParticipant))
		printKeyValue("Unused", fmt.Sprint(result.Stats.UnusedThemes))
	}
	printNewline()
	printNextStep("Preview the messages", fmt.Sprintf("krampus draw %s %s --test", participants, themesArg(themes)))
	return nil
}

func themesArg(themes string) string {
	if themes == "" {
		return "<themes.txt>"
	}
	return themes
}
