package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/keagan/promoreel/internal/audio"
	"github.com/keagan/promoreel/internal/captions"
	"github.com/keagan/promoreel/internal/config"
	"github.com/keagan/promoreel/internal/ffmpeg"
	"github.com/keagan/promoreel/internal/media"
	"github.com/keagan/promoreel/internal/store"
	"github.com/keagan/promoreel/pkg/util"
	"github.com/rs/zerolog"
)

// Pipeline orchestrates Pass 1 (base track) and Pass 2 (overlays and audio)
type Pipeline struct {
	logger    zerolog.Logger
	cfg       *config.Config
	ffmpeg    *ffmpeg.Executor
	store     store.Store
	tokenizer captions.SentenceTokenizer
	opener    *media.Opener
}

// New creates a pipeline. The sentence tokenizer is chosen once here.
func New(logger zerolog.Logger, cfg *config.Config, st store.Store) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if st == nil {
		return nil, fmt.Errorf("artifact store is required")
	}

	ffmpegExec, err := ffmpeg.New(logger, cfg.FFmpeg.Threads)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ffmpeg: %w", err)
	}

	logger = logger.With().Str("component", "pipeline").Logger()
	tok, err := captions.DetectTokenizer()
	if err != nil {
		logger.Warn().Err(err).Msg("punkt tokenizer unavailable, using regex sentence splitter")
	}
	logger.Debug().Str("tokenizer", tok.Name()).Msg("sentence tokenizer selected")

	for _, dir := range []string{cfg.WorkDir, cfg.OutputDir} {
		if err := util.EnsureDir(dir); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	return &Pipeline{
		logger:    logger,
		cfg:       cfg,
		ffmpeg:    ffmpegExec,
		store:     st,
		tokenizer: tok,
		opener:    media.NewOpener(logger, ffmpegExec, cfg.FFmpeg.FPS),
	}, nil
}

// Tokenizer returns the sentence tokenizer in use
func (p *Pipeline) Tokenizer() captions.SentenceTokenizer { return p.tokenizer }

// Store returns the artifact store
func (p *Pipeline) Store() store.Store { return p.store }

// Make runs Pass 1 and then Pass 2 on its artifact
func (p *Pipeline) Make(ctx context.Context, p1 Pass1Request, p2 Pass2Request) (*Result, error) {
	first, err := p.Pass1(ctx, p1)
	if err != nil {
		return nil, err
	}
	p2.Artifact = first.Artifact.ID
	if p2.Logo == "" {
		p2.Logo = p1.Logo
	}
	res, err := p.Pass2(ctx, p2)
	if err != nil {
		return nil, err
	}
	res.Warnings = append(append(Warnings{}, first.Warnings...), res.Warnings...)
	return res, nil
}

// writePCM stores a mixed track as a session temp file for the encoder
func (p *Pipeline) writePCM(sid, name string, t *audio.Track) (string, error) {
	path := util.SessionPath(p.cfg.TempDir, sid, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create audio temp file: %w", err)
	}
	if err := t.WriteF32LE(f); err != nil {
		f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write audio temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

func (p *Pipeline) cleanupSession(sid string) {
	if n := util.CleanupSession(p.cfg.TempDir, sid); n > 0 {
		p.logger.Debug().Str("session", sid).Int("files", n).Msg("removed temp files")
	}
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
