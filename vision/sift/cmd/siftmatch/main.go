// Package main matches the SIFT descriptors of two images and plots the result.
package main

import (
	"context"
	"os"

	"github.com/edaniels/golog"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"go.viam.com/sift/rimage"
	"go.viam.com/sift/vision/sift"
)

const (
	flagConfig = "config"
	flagNorm   = "norm"
	flagRatio  = "ratio"
	flagOut    = "out"
	flagDebug  = "debug"
)

type options struct {
	configFile string
	matching   sift.MatchingConfig
	outFile    string
}

// summary describes one matching run.
type summary struct {
	descriptors1   int
	descriptors2   int
	matches        int
	meanDistance   float64
	medianDistance float64
}

func main() {
	var logger golog.Logger

	app := &cli.App{
		Name:      "siftmatch",
		Usage:     "match the SIFT features of two images",
		ArgsUsage: "<image1> <image2>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load detector configuration from `FILE`",
			},
			&cli.StringFlag{
				Name:  flagNorm,
				Value: string(sift.NormL2),
				Usage: "feature distance, one of l1, l2, linf",
			},
			&cli.Float64Flag{
				Name:  flagRatio,
				Value: sift.DefaultMatchingConfig().RMax,
				Usage: "largest accepted nearest to second nearest distance ratio",
			},
			&cli.StringFlag{
				Name:  flagOut,
				Value: "matches.png",
				Usage: "write the match plot to `FILE`",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool(flagDebug) {
				logger = golog.NewDebugLogger("siftmatch")
			} else {
				logger = golog.NewLogger("siftmatch")
			}
			return nil
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return errors.New("expected exactly two image files")
			}
			opts := options{
				configFile: c.String(flagConfig),
				matching: sift.MatchingConfig{
					Norm: sift.Norm(c.String(flagNorm)),
					RMax: c.Float64(flagRatio),
				},
				outFile: c.String(flagOut),
			}
			s, err := runMatch(c.Context, c.Args().Get(0), c.Args().Get(1), opts, logger)
			if err != nil {
				return err
			}
			logger.Infow("matched images",
				"descriptors1", s.descriptors1,
				"descriptors2", s.descriptors2,
				"matches", s.matches,
				"mean_distance", s.meanDistance,
				"median_distance", s.medianDistance,
				"plot", opts.outFile,
			)
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		if logger == nil {
			logger = golog.NewLogger("siftmatch")
		}
		logger.Fatal(err)
	}
}

// runMatch detects the descriptors of both images concurrently, matches them and saves
// the match plot when opts.outFile is set.
func runMatch(ctx context.Context, file1, file2 string, opts options, logger golog.Logger) (*summary, error) {
	cfg := sift.DefaultConfig()
	if opts.configFile != "" {
		var err error
		if cfg, err = sift.LoadConfig(opts.configFile); err != nil {
			return nil, err
		}
	}
	if err := opts.matching.Validate(flagNorm); err != nil {
		return nil, err
	}

	files := [2]string{file1, file2}
	var imgs [2]*rimage.FloatImage
	var descs [2][]*sift.SiftDescriptor
	g, gctx := errgroup.WithContext(ctx)
	for i := range files {
		g.Go(func() error {
			img, err := rimage.ReadFloatImageFromFile(files[i])
			if err != nil {
				return err
			}
			ds, err := sift.DetectDescriptors(gctx, img, cfg, logger)
			if err != nil {
				return errors.Wrapf(err, "cannot detect features of %q", files[i])
			}
			logger.Debugw("detected descriptors", "file", files[i], "descriptors", len(ds))
			imgs[i], descs[i] = img, ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	matches, err := sift.MatchDescriptors(ctx, descs[0], descs[1], &opts.matching, logger)
	if err != nil {
		return nil, err
	}
	s := &summary{descriptors1: len(descs[0]), descriptors2: len(descs[1]), matches: len(matches)}
	if len(matches) > 0 {
		distances := make(stats.Float64Data, 0, len(matches))
		for _, m := range matches {
			distances = append(distances, m.Distance)
		}
		if s.meanDistance, err = distances.Mean(); err != nil {
			return nil, err
		}
		if s.medianDistance, err = distances.Median(); err != nil {
			return nil, err
		}
	}

	if opts.outFile != "" {
		plot := sift.PlotMatches(imgs[0].ToGray(), imgs[1].ToGray(), matches)
		if err := sift.SavePlot(plot, opts.outFile); err != nil {
			return nil, errors.Wrapf(err, "cannot save plot to %q", opts.outFile)
		}
	}
	return s, nil
}
