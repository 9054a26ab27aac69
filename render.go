package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github/itish2003/physolve/diagram"
)

func newRenderCmd(configPath *string) *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the diagrams in a narrative file",
		Long: `Render every [DIAGRAM: ...] marker in a narrative file to PNG, without
calling the model. Each diagram is written as diagram-<ordinal>.png.

Examples:
  physolve render --in solution.md --out ./diagrams`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(*configPath, false)
			if err != nil {
				return err
			}
			pipeline, err := diagram.NewPipeline(logrus.NewEntry(logger), diagram.RenderOptions{Width: cfg.Diagram.Width, Height: cfg.Diagram.Height})
			if err != nil {
				return err
			}
			return runRender(cmd, pipeline, in, out)
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "Narrative file to read (required)")
	cmd.Flags().StringVar(&out, "out", ".", "Directory for the PNG files")
	cmd.MarkFlagRequired("in")

	return cmd
}

func runRender(cmd *cobra.Command, pipeline *diagram.Pipeline, in, out string) error {
	narrative, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("could not read narrative: %w", err)
	}
	result, err := pipeline.Process(string(narrative))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("could not create output directory: %w", err)
	}

	w := cmd.OutOrStdout()
	for _, d := range result.Diagrams {
		if d.Image == nil {
			fmt.Fprintf(w, "diagram %d failed: %v\n", d.Ordinal, d.Err)
			continue
		}
		data, err := d.Image.Decoded()
		if err != nil {
			return fmt.Errorf("diagram %d: %w", d.Ordinal, err)
		}
		path := filepath.Join(out, fmt.Sprintf("diagram-%d.png", d.Ordinal))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("could not write %s: %w", path, err)
		}
		fmt.Fprintf(w, "%s  %s  %q\n", path, d.Spec.Kind, d.Description)
	}
	fmt.Fprintf(w, "%d diagram(s), %d failed\n", len(result.Diagrams), result.Failed())
	return nil
}
