package media

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/keagan/promoreel/internal/ffmpeg"
	"github.com/keagan/promoreel/pkg/util"
	"github.com/rs/zerolog"
)

// Kind distinguishes decodable videos from still images
type Kind string

const (
	KindVideo Kind = "video"
	KindPhoto Kind = "photo"
)

// ErrUnsupported is returned for inputs that are neither video nor image
var ErrUnsupported = errors.New("media: unsupported input")

// KindOf infers the source kind from the file extension
func KindOf(path string) Kind {
	if util.IsImagePath(path) {
		return KindPhoto
	}
	return KindVideo
}

// ParseKind accepts "video", "photo" or "image"; empty means infer from path
func ParseKind(s, path string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return KindOf(path), nil
	case "video":
		return KindVideo, nil
	case "photo", "image":
		return KindPhoto, nil
	}
	return "", fmt.Errorf("%w: kind %q", ErrUnsupported, s)
}

// Source is an opened input. It is immutable apart from the decoders its
// clips start, which Close releases.
type Source interface {
	Kind() Kind
	Path() string
	// Size is the display size after rotation
	Size() (int, int)
	// Duration in seconds; zero for photos
	Duration() float64
	Close() error
}

// Opener opens sources through one ffmpeg executor
type Opener struct {
	logger zerolog.Logger
	ff     *ffmpeg.Executor
	fps    float64
}

// NewOpener creates an opener. fps is the frame rate segment clips sample at.
func NewOpener(logger zerolog.Logger, ff *ffmpeg.Executor, fps float64) *Opener {
	if fps <= 0 {
		fps = ffmpeg.DefaultFPS
	}
	return &Opener{
		logger: logger.With().Str("component", "media").Logger(),
		ff:     ff,
		fps:    fps,
	}
}

// Open probes or decodes path. ctx bounds the lifetime of every decoder the
// returned source starts.
func (o *Opener) Open(ctx context.Context, path string, kind Kind) (Source, error) {
	if !util.FileExists(path) {
		return nil, fmt.Errorf("input %s does not exist", path)
	}
	if kind == "" {
		kind = KindOf(path)
	}

	switch kind {
	case KindPhoto:
		p, err := OpenPhoto(path)
		if err != nil {
			return nil, err
		}
		o.logger.Debug().
			Str("path", filepath.Base(path)).
			Int("width", p.width).
			Int("height", p.height).
			Msg("opened photo")
		return p, nil
	case KindVideo:
		info, err := o.ff.Probe(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("probe %s: %w", path, err)
		}
		if !info.HasVideo {
			return nil, fmt.Errorf("%w: %s has no video stream", ErrUnsupported, path)
		}
		v := &VideoSource{
			ctx:    ctx,
			logger: o.logger.With().Str("source", filepath.Base(path)).Logger(),
			ff:     o.ff,
			info:   info,
			fps:    o.fps,
		}
		v.logger.Debug().
			Float64("duration", info.Seconds()).
			Int("width", info.Width).
			Int("height", info.Height).
			Bool("audio", info.HasAudio).
			Msg("opened video")
		return v, nil
	}
	return nil, fmt.Errorf("%w: kind %q", ErrUnsupported, kind)
}
