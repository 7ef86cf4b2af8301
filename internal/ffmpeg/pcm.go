package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/keagan/promoreel/internal/audio"
	"github.com/keagan/promoreel/pkg/util"
)

// PCMOptions selects the audio range and layout to decode
type PCMOptions struct {
	Start    float64
	Duration float64
	Rate     int
	Channels int
}

func pcmArgs(input string, opts PCMOptions) []string {
	var args []string
	if opts.Start > 0 {
		args = append(args, "-ss", util.FormatArg(opts.Start))
	}
	if opts.Duration > 0 {
		args = append(args, "-t", util.FormatArg(opts.Duration))
	}
	return append(args,
		"-i", input,
		"-vn", "-sn",
		"-f", rawAudioFormat,
		"-acodec", "pcm_f32le",
		"-ar", strconv.Itoa(opts.Rate),
		"-ac", strconv.Itoa(opts.Channels),
		"pipe:1",
	)
}

// DecodePCM decodes an audio stream into an interleaved float32 track
func (e *Executor) DecodePCM(ctx context.Context, input string, opts PCMOptions) (*audio.Track, error) {
	if opts.Rate <= 0 {
		opts.Rate = DefaultSampleRate
	}
	if opts.Channels <= 0 {
		opts.Channels = DefaultChannels
	}

	e.logger.Debug().
		Str("input", input).
		Float64("start", opts.Start).
		Float64("duration", opts.Duration).
		Msg("decoding audio")

	var buf bytes.Buffer
	err := e.Run(ctx, RunOptions{
		Args:   pcmArgs(input, opts),
		Stdout: &buf,
		LogHandler: func(line string) {
			e.logger.Trace().Str("ffmpeg", line).Msg("audio decode")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("audio decode failed for %s: %w", input, err)
	}

	track, err := audio.ReadF32LE(&buf, opts.Rate, opts.Channels)
	if err != nil {
		return nil, err
	}
	if track.Frames() == 0 {
		return nil, fmt.Errorf("audio decode produced no samples for %s", input)
	}
	return track, nil
}
