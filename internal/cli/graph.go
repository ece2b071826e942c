package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/krampus/pkg/errors"
	"github.com/matzehuels/krampus/pkg/render"
	"github.com/matzehuels/krampus/pkg/roster"
)

// graphOpts holds the flags of the graph command.
type graphOpts struct {
	output   string // .dot or .svg file; stdout (DOT) if empty
	detailed bool
}

func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOpts

	cmd := &cobra.Command{
		Use:   "graph <participants.csv>",
		Short: "Render the exclusion graph",
		Long: `Graph draws one node per participant and an edge to the person they must
not give to. The output format follows the file extension: .dot writes
Graphviz source, .svg renders the graph. Without -o the DOT source goes to
standard output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd.Context(), cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (.dot or .svg)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include email addresses in the nodes")

	return cmd
}

func runGraph(ctx context.Context, cmd *cobra.Command, path string, opts graphOpts) error {
	logger := loggerFromContext(ctx)

	participants, err := roster.ImportParticipants(path)
	if err != nil {
		return err
	}
	if err := roster.Validate(participants); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	dot := render.ToDOT(participants, render.Options{Detailed: opts.detailed})

	if opts.output == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), dot)
		return err
	}

	var data []byte
	switch ext := strings.ToLower(filepath.Ext(opts.output)); ext {
	case ".dot", ".gv":
		data = []byte(dot)
	case ".svg":
		prog := newProgress(logger)
		if data, err = render.RenderSVG(ctx, dot); err != nil {
			return err
		}
		prog.done("Rendered SVG")
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported output format %q (use .dot or .svg)", ext)
	}

	if err := os.WriteFile(opts.output, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "write %s", opts.output)
	}
	printSuccess("Wrote exclusion graph")
	printFile(opts.output)
	return nil
}
