package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/forPelevin/brollplan/internal/domain/timeline"
	"github.com/forPelevin/brollplan/internal/pipeline"
)

func runGenerate(cmd *cobra.Command, input string) error {
	outDir, _ := cmd.Flags().GetString("out")
	clipsMeta, _ := cmd.Flags().GetString("clips-meta")
	renderClips, _ := cmd.Flags().GetString("render-clips")
	subs, _ := cmd.Flags().GetBool("subs")

	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg := pipeline.Config{
		InputVideo:    absIn,
		ClipMetadata:  clipsMeta,
		OutDir:        outDir,
		Matching:      matchingConfig(cmd),
		Providers:     providersFromEnv(),
		Log:           log,
		ClipPaths:     renderClips,
		BurnSubtitles: subs,
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Hour)
	defer cancel()

	out, err := pipeline.Run(ctx, cfg)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), timeline.Summary(out.Timeline))
	fmt.Fprintf(cmd.OutOrStdout(), "\nTimeline: %s\n", out.TimelinePath)
	if out.VideoPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Video: %s\n", out.VideoPath)
	}
	return nil
}

func runPlan(cmd *cobra.Command, transcript string) error {
	outDir, _ := cmd.Flags().GetString("out")
	clipsMeta, _ := cmd.Flags().GetString("clips-meta")

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg := pipeline.PlanConfig{
		Transcript:   transcript,
		ClipMetadata: clipsMeta,
		OutDir:       outDir,
		Matching:     matchingConfig(cmd),
		Providers:    providersFromEnv(),
		Log:          log,
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Minute)
	defer cancel()

	out, err := pipeline.Plan(ctx, cfg)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), timeline.Summary(out.Timeline))
	fmt.Fprintf(cmd.OutOrStdout(), "\nTimeline: %s\n", out.TimelinePath)
	return nil
}

func runRender(cmd *cobra.Command, timelinePath, video string) error {
	clips, _ := cmd.Flags().GetString("clips")
	outVideo, _ := cmd.Flags().GetString("out")
	transcript, _ := cmd.Flags().GetString("transcript")
	if clips == "" {
		return fmt.Errorf("config: --clips is required")
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Hour)
	defer cancel()

	err = pipeline.Render(ctx, pipeline.RenderConfig{
		Timeline:       timelinePath,
		NarrationVideo: video,
		ClipPaths:      clips,
		OutVideo:       outVideo,
		Transcript:     transcript,
		Providers:      providersFromEnv(),
		Log:            log,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Video: %s\n", outVideo)
	return nil
}
