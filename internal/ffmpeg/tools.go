package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/keagan/promoreel/pkg/util"
)

// CompressOptions configures Compress
type CompressOptions struct {
	Width        int
	CRF          int
	Preset       string
	ProgressFunc ProgressFunc
}

func compressArgs(input, output string, opts CompressOptions) []string {
	if opts.Width <= 0 {
		opts.Width = CompressWidth
	}
	if opts.CRF == 0 {
		opts.CRF = CompressCRF
	}
	if opts.Preset == "" {
		opts.Preset = "fast"
	}
	return []string{
		"-i", input,
		"-vf", NewFilterBuilder().ScaleWidth(opts.Width, -2).Build(),
		"-c:v", DefaultVideoCodec,
		"-crf", strconv.Itoa(opts.CRF),
		"-preset", opts.Preset,
		"-c:a", DefaultAudioCodec,
		"-b:a", "128k",
		"-movflags", "+faststart",
		output,
	}
}

// Compress re-encodes an oversized input to a smaller H.264 file
func (e *Executor) Compress(ctx context.Context, input, output string, opts CompressOptions) error {
	e.logger.Info().
		Str("input", input).
		Str("output", output).
		Int64("size_bytes", util.FileSize(input)).
		Msg("compressing input")

	err := e.Run(ctx, RunOptions{
		Args:            compressArgs(input, output, opts),
		ProgressHandler: opts.ProgressFunc,
		LogHandler: func(line string) {
			e.logger.Trace().Str("ffmpeg", line).Msg("compress output")
		},
	})
	if err != nil {
		_ = os.Remove(output)
		return fmt.Errorf("compression failed: %w", err)
	}

	e.logger.Info().
		Str("output", output).
		Int64("size_bytes", util.FileSize(output)).
		Msg("compression complete")
	return nil
}

func thumbnailArgs(input string, at float64, output string) []string {
	return []string{
		"-ss", util.FormatArg(at),
		"-i", input,
		"-frames:v", "1",
		"-vf", NewFilterBuilder().ScaleWidth(ThumbnailWidth, -1).Build(),
		"-q:v", "3",
		output,
	}
}

// Thumbnail grabs one small JPEG frame at the given second
func (e *Executor) Thumbnail(ctx context.Context, input string, at float64, output string) error {
	err := e.Run(ctx, RunOptions{
		Args: thumbnailArgs(input, at, output),
		LogHandler: func(line string) {
			e.logger.Trace().Str("ffmpeg", line).Msg("thumbnail output")
		},
	})
	if err != nil {
		return fmt.Errorf("thumbnail at %.2fs failed: %w", at, err)
	}
	if !util.FileExists(output) {
		return fmt.Errorf("thumbnail at %.2fs produced no file", at)
	}
	return nil
}
