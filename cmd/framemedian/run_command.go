package main

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"framemedian/pkg/clip"
	"framemedian/pkg/config"
	"framemedian/pkg/frameio"
	"framemedian/pkg/median"
	"framemedian/pkg/report"
)

type runFlags struct {
	mode    string
	clips   []string
	low     int
	high    int
	radius  int
	sync    int
	samples int
	planes  []int
	debug   bool
	out     string
	workers int
	first   int
	last    int
}

// apply overlays the flags the user set on cfg
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Filter.Mode = f.mode
	}
	if flags.Changed("clips") {
		cfg.Input.Clips = f.clips
	}
	if flags.Changed("low") {
		cfg.Filter.Low = f.low
	}
	if flags.Changed("high") {
		cfg.Filter.High = f.high
	}
	if flags.Changed("radius") {
		cfg.Filter.Radius = f.radius
	}
	if flags.Changed("sync") {
		cfg.Filter.Sync = f.sync
	}
	if flags.Changed("samples") {
		cfg.Filter.Samples = f.samples
	}
	if flags.Changed("planes") {
		cfg.Filter.Planes = f.planes
	}
	if flags.Changed("debug") {
		cfg.Filter.Debug = f.debug
	}
	if flags.Changed("out") {
		cfg.Output.Dir = f.out
	}
	if flags.Changed("workers") {
		cfg.Processing.Workers = f.workers
	}
	if flags.Changed("first") {
		cfg.Output.First = f.first
	}
	if flags.Changed("last") {
		cfg.Output.Last = f.last
	}
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Filter image sequences and write the result as PNG frames",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg := *loaded
			flags.apply(cmd, &cfg)

			logger, err := ctx.logger(&cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts, err := cfg.FilterOptions()
			if err != nil {
				return err
			}
			if len(cfg.Input.Clips) == 0 {
				return fmt.Errorf("no input clips (set input.clips or --clips)")
			}

			seqs, err := frameio.OpenDirs(cmd.Context(), cfg.Input.Clips)
			if err != nil {
				return fmt.Errorf("open clips: %w", err)
			}
			clips := make([]clip.Clip, len(seqs))
			for i, s := range seqs {
				clips[i] = s
			}

			filter, err := median.New(clips, opts, logger)
			if err != nil {
				return err
			}
			defer filter.Close()

			out := cmd.OutOrStdout()
			info := filter.Info()
			fmt.Fprintf(out, "Filtering %d clip(s) of %d frames (%s %dx%d) with %s\n",
				len(clips), info.NumFrames, info.Format.Name, info.Width, info.Height, filter.Kernel())

			collector := report.NewCollector()
			var written atomic.Int64
			start := time.Now()
			err = filter.Render(cmd.Context(), cfg.Output.First, cfg.Output.Last, cfg.Processing.Workers, func(o median.Output) error {
				if _, err := frameio.SaveNumbered(cfg.Output.Dir, o.N, o.Frame); err != nil {
					return err
				}
				collector.Add(o.Alignment)
				written.Add(1)
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Wrote %d frames to %s in %.2f seconds\n", written.Load(), cfg.Output.Dir, time.Since(start).Seconds())
			if filter.Synced() {
				fmt.Fprintln(out, "\nAlignment summary:")
				fmt.Fprintln(out, collector.Table())
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.mode, "mode", "", "Filter mode: median, temporalmedian or medianblend")
	f.StringSliceVar(&flags.clips, "clips", nil, "Image sequence directories, one per clip")
	f.IntVar(&flags.low, "low", 1, "Values discarded below the blended range (medianblend)")
	f.IntVar(&flags.high, "high", 1, "Values discarded above the blended range (medianblend)")
	f.IntVar(&flags.radius, "radius", 1, "Temporal radius (temporalmedian)")
	f.IntVar(&flags.sync, "sync", 0, "Alignment search radius; 0 disables synchronization")
	f.IntVar(&flags.samples, "samples", 4096, "Pixels compared per candidate frame; 0 compares all")
	f.IntSliceVar(&flags.planes, "planes", nil, "Planes to process; others are copied from the first clip")
	f.BoolVar(&flags.debug, "debug", false, "Attach diagnostic properties to output frames")
	f.StringVarP(&flags.out, "out", "o", "", "Output directory")
	f.IntVarP(&flags.workers, "workers", "j", 0, "Frames computed concurrently; 0 uses every core")
	f.IntVar(&flags.first, "first", 0, "First frame to render")
	f.IntVar(&flags.last, "last", -1, "Last frame to render; -1 renders to the end")
	return cmd
}
