package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/cxd309/coaster-engine/internal/config"
	"github.com/cxd309/coaster-engine/internal/graph"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [scene]",
		Short: "prints the segments, loops and validation problems of a scene's track",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readScene(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			g, err := graph.NewGraph(input.GraphData)
			if err != nil {
				return err
			}
			return inspectGraph(cmd.OutOrStdout(), g)
		},
	}
	cmd.Flags().BoolVar(&config.StdinYAML, "yaml", false,
		"parse a scene read from stdin as YAML")
	return cmd
}

func inspectGraph(out io.Writer, g *graph.Graph) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEGMENT\tLENGTH\tPREVIOUS\tNEXT")
	for _, h := range g.Handles() {
		s, _ := g.Segment(h)
		fmt.Fprintf(tw, "%s\t%.3f\t%s\t%s\n",
			s.ID, s.Length, linkLabel(g, s.Links.Previous), linkLabel(g, s.Links.Next))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\ntotal length %.3f m\n", g.TotalLength())

	for _, l := range g.Loops() {
		kind := "chain"
		if l.Closed {
			kind = "loop"
		}
		names := lo.Map(l.Segments, func(h graph.Handle, _ int) graph.SegmentID { return g.Name(h) })
		fmt.Fprintf(out, "%s %.3f m: %v\n", kind, l.Length, names)
	}

	verr := g.Validate()
	for _, issue := range multierr.Errors(verr) {
		fmt.Fprintf(out, "problem: %v\n", issue)
	}
	if verr != nil && config.Strict {
		return fmt.Errorf("graph has %d problem(s)", len(multierr.Errors(verr)))
	}
	return nil
}

func linkLabel(g *graph.Graph, h graph.Handle) string {
	switch h {
	case graph.NoSegment:
		return "-"
	case graph.Unresolved:
		return "?"
	}
	return g.Name(h)
}
