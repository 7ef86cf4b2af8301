package main

import (
	"fmt"
	"strings"

	"github.com/keagan/promoreel/internal/captions"
	"github.com/keagan/promoreel/internal/config"
	"github.com/keagan/promoreel/internal/logging"
	"github.com/keagan/promoreel/internal/overlays"
	"github.com/keagan/promoreel/internal/pipeline"
	"github.com/keagan/promoreel/pkg/util"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// pass1Flags are shared by build, make and segments
type pass1Flags struct {
	videos     []string
	photos     []string
	target     float64
	transition string
	fade       float64
	resolution string
	logo       string
	seed       int64
}

func (f *pass1Flags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.videos, "video", nil, "input video (repeatable)")
	cmd.Flags().StringSliceVar(&f.photos, "photo", nil, "input photo (repeatable, max 6)")
	cmd.Flags().Float64Var(&f.target, "target", 0, "target duration in seconds (15-60)")
	cmd.Flags().StringVar(&f.transition, "transition", "", "crossfade, fadeToBlack or none")
	cmd.Flags().Float64Var(&f.fade, "fade", 0, "transition duration in seconds (0.2-1.5)")
	cmd.Flags().StringVar(&f.resolution, "resolution", "", "360p, 720p, 1080p or original")
	cmd.Flags().StringVar(&f.logo, "logo", "", "logo image baked into the base track")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "shuffle segments with this seed (0 keeps source order)")
}

func (f *pass1Flags) request() pipeline.Pass1Request {
	req := pipeline.Pass1Request{
		TargetDuration: f.target,
		Transition:     f.transition,
		Fade:           f.fade,
		Resolution:     f.resolution,
		Logo:           f.logo,
		Seed:           f.seed,
		Progress:       progressLogger("pass 1"),
	}
	for _, v := range f.videos {
		req.Inputs = append(req.Inputs, pipeline.Input{Path: v, Kind: "video"})
	}
	for _, p := range f.photos {
		req.Inputs = append(req.Inputs, pipeline.Input{Path: p, Kind: "photo"})
	}
	return req
}

// pass2Flags are shared by captions and make
type pass2Flags struct {
	description string
	count       int
	palette     []string
	align       string
	ctaLabel    string
	ctaName     string
	ctaContact  string
	ctaDuration float64
	noGrade     bool
	bgm         string
	bgmVolume   float64
	origVolume  float64
	logo        string
	output      string
}

func (f *pass2Flags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "promo description text")
	cmd.Flags().IntVarP(&f.count, "captions", "n", 0, "number of captions (1-5)")
	cmd.Flags().StringSliceVar(&f.palette, "palette", nil, "detail caption colors (names or #RRGGBB)")
	cmd.Flags().StringVar(&f.align, "align", "", "caption alignment: center, left or right")
	cmd.Flags().StringVar(&f.ctaLabel, "cta-label", "", "CTA label (default \"HUBUNGI :\")")
	cmd.Flags().StringVar(&f.ctaName, "cta-name", "", "CTA name line")
	cmd.Flags().StringVar(&f.ctaContact, "cta-contact", "", "CTA contact, rendered as WA: <contact>")
	cmd.Flags().Float64Var(&f.ctaDuration, "cta-duration", 0, "CTA duration in seconds (2-8)")
	cmd.Flags().BoolVar(&f.noGrade, "no-grade", false, "disable the color grade")
	cmd.Flags().StringVar(&f.bgm, "bgm", "", "background music file")
	cmd.Flags().Float64Var(&f.bgmVolume, "bgm-volume", -1, "background music volume 0-1")
	cmd.Flags().Float64Var(&f.origVolume, "orig-volume", -1, "original audio volume 0-1")
	cmd.Flags().StringVar(&f.logo, "overlay-logo", "", "logo pasted on every overlay")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output directory")
}

func (f *pass2Flags) request() pipeline.Pass2Request {
	req := pipeline.Pass2Request{
		Description:  f.description,
		CaptionCount: f.count,
		Palette:      f.palette,
		Align:        f.align,
		CTA:          overlays.CTA{Label: f.ctaLabel, Name: f.ctaName, Contact: f.ctaContact},
		CTADuration:  f.ctaDuration,
		BGM:          f.bgm,
		OutputDir:    f.output,
		Progress:     progressLogger("pass 2"),
	}
	if f.noGrade {
		req.Grade = &pipeline.GradeOptions{Enabled: false}
	}
	if f.bgmVolume >= 0 {
		req.BGMVolume = &f.bgmVolume
	}
	if f.origVolume >= 0 {
		req.OrigVolume = &f.origVolume
	}
	if f.logo != "" {
		on := true
		req.Logo = f.logo
		req.LogoOverlays = &on
	}
	return req
}

// progressLogger logs roughly every tenth of a pass
func progressLogger(pass string) pipeline.ProgressFunc {
	logger := logging.WithComponent("cli")
	last := -1
	return func(done, total int) {
		if total <= 0 {
			return
		}
		pct := done * 100 / total
		if pct/10 == last/10 && done != total {
			return
		}
		last = pct
		logger.Info().Str("pass", pass).Int("frames", done).Int("total", total).Msgf("%d%%", pct)
	}
}

func printWarnings(w pipeline.Warnings) {
	for _, msg := range w {
		fmt.Println("warning:", msg)
	}
}

var (
	buildFlags    pass1Flags
	captionsFlags pass2Flags
	makeP1Flags   pass1Flags
	makeP2Flags   pass2Flags
	splitCount    int
	segmentsFlags pass1Flags
	thumbsDir     string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Pass 1: cut the inputs into a base track",
	RunE: func(cmd *cobra.Command, args []string) error {
		pipe, closeStore, err := openPipeline(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		res, err := pipe.Pass1(cmd.Context(), buildFlags.request())
		if err != nil {
			return err
		}
		printWarnings(res.Warnings)
		fmt.Printf("artifact %s\n%s (%.1fs, %dx%d)\n",
			res.Artifact.ID, res.Artifact.Path, res.Artifact.Duration, res.Artifact.Width, res.Artifact.Height)
		return nil
	},
}

var captionsCmd = &cobra.Command{
	Use:   "captions <artifact-id|pass1.mp4>",
	Short: "Pass 2: render captions, CTA and audio over a base track",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pipe, closeStore, err := openPipeline(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		req := captionsFlags.request()
		req.Artifact = args[0]
		res, err := pipe.Pass2(cmd.Context(), req)
		if err != nil {
			return err
		}
		printResult(res)
		return nil
	},
}

var makeCmd = &cobra.Command{
	Use:   "make",
	Short: "Run Pass 1 and Pass 2 in one go",
	RunE: func(cmd *cobra.Command, args []string) error {
		pipe, closeStore, err := openPipeline(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		res, err := pipe.Make(cmd.Context(), makeP1Flags.request(), makeP2Flags.request())
		if err != nil {
			return err
		}
		printResult(res)
		return nil
	},
}

func printResult(res *pipeline.Result) {
	printWarnings(res.Warnings)
	for _, line := range captions.Describe(res.Captions) {
		fmt.Println(line)
	}
	fmt.Println(res.Path)
}

var splitCmd = &cobra.Command{
	Use:   "split [description]",
	Short: "Preview caption segmentation",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		tok, err := captions.DetectTokenizer()
		if err != nil {
			log.Warn().Err(err).Msg("punkt tokenizer unavailable, using regex sentence splitter")
		}

		n := splitCount
		if n == 0 {
			n = cfg.Captions.Count
		}
		if n < pipeline.MinCaptions || n > pipeline.MaxCaptions {
			return fmt.Errorf("caption count %d outside %d-%d", n, pipeline.MinCaptions, pipeline.MaxCaptions)
		}

		text := strings.Join(args, " ")
		fmt.Printf("tokenizer: %s\n", tok.Name())
		for _, line := range captions.Describe(captions.SplitWords(text, n, cfg.Captions.MaxWords, tok)) {
			fmt.Println(line)
		}
		return nil
	},
}

var segmentsCmd = &cobra.Command{
	Use:   "segments",
	Short: "Preview smart-cut segments",
	RunE: func(cmd *cobra.Command, args []string) error {
		pipe, closeStore, err := openPipeline(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		req := segmentsFlags.request()
		req.Progress = nil
		preview, err := pipe.Segments(cmd.Context(), req, thumbsDir)
		if preview != nil {
			for _, s := range preview.Skipped {
				fmt.Printf("skipped %s (too short)\n", s)
			}
		}
		if err != nil {
			return err
		}
		for i, s := range preview.Segments {
			line := fmt.Sprintf("%2d. %s %s-%s (%.2fs)", i+1, s.Source, util.FormatSeconds(s.Segment.Start), util.FormatSeconds(s.Segment.End), s.Segment.Duration())
			if s.Thumbnail != "" {
				line += " " + s.Thumbnail
			}
			fmt.Println(line)
		}
		fmt.Printf("total %.2fs\n", preview.Total)
		return nil
	},
}

func init() {
	buildFlags.register(buildCmd)
	captionsFlags.register(captionsCmd)
	makeP1Flags.register(makeCmd)
	makeP2Flags.register(makeCmd)
	segmentsFlags.register(segmentsCmd)
	segmentsCmd.Flags().StringVar(&thumbsDir, "thumbs", "", "write a thumbnail per segment into this directory")
	splitCmd.Flags().IntVarP(&splitCount, "captions", "n", 0, "number of captions (1-5)")
}
