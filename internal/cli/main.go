package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/forPelevin/brollplan/internal/domain/matching"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "brollplan",
		Short:        "Plan B-roll cutaways over a narration video",
		SilenceUsage: true,
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.AddCommand(generateCmd(), planCmd(), renderCmd(), serveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <video>",
		Short: "Transcribe a narration video and plan cutaways from clip metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args[0])
		},
	}
	cmd.Flags().String("clips-meta", "", "Clip metadata file (.json or .yaml)")
	cmd.Flags().String("out", "out", "Output directory")
	cmd.Flags().String("render-clips", "", "JSON file mapping clip ids to media; renders final.mp4 when set")
	cmd.Flags().Bool("subs", false, "Burn narration captions into the rendered video")
	matchingFlags(cmd)
	return cmd
}

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <transcript.json>",
		Short: "Plan cutaways from an existing transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, args[0])
		},
	}
	cmd.Flags().String("clips-meta", "", "Clip metadata file (.json or .yaml)")
	cmd.Flags().String("out", "out", "Output directory")
	matchingFlags(cmd)
	return cmd
}

func renderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <timeline.json> <video>",
		Short: "Composite a planned timeline over the narration video",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], args[1])
		},
	}
	cmd.Flags().String("clips", "", "JSON file mapping clip ids to media files")
	cmd.Flags().String("out", "final.mp4", "Output video path")
	cmd.Flags().String("transcript", "", "Transcript to burn in as captions")
	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve timeline generation over HTTP (PORT, default 8000)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}
}

func matchingFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("threshold", matching.DefaultSimilarityThreshold, "Minimum cosine similarity for a cutaway")
	cmd.Flags().Int("min", matching.DefaultMinInsertions, "Insertions to aim for before giving up")
	cmd.Flags().Int("max", matching.DefaultMaxInsertions, "Upper bound on insertions")
}

func matchingConfig(cmd *cobra.Command) matching.Config {
	threshold, _ := cmd.Flags().GetFloat64("threshold")
	minN, _ := cmd.Flags().GetInt("min")
	maxN, _ := cmd.Flags().GetInt("max")
	return matching.Config{
		SimilarityThreshold: threshold,
		MinInsertions:       minN,
		MaxInsertions:       maxN,
	}
}
