package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/keagan/promoreel/internal/captions"
	"github.com/keagan/promoreel/internal/media"
	"github.com/keagan/promoreel/internal/timeline"
	"github.com/keagan/promoreel/pkg/util"
)

// SplitPreview returns the captions Pass 2 would render for description
func (p *Pipeline) SplitPreview(description string, n int) ([]string, error) {
	if n == 0 {
		n = p.cfg.Captions.Count
	}
	if n < MinCaptions || n > MaxCaptions {
		return nil, validationError("split", "caption count %d outside %d-%d", n, MinCaptions, MaxCaptions)
	}
	return captions.SplitWords(description, n, p.cfg.Captions.MaxWords, p.tokenizer), nil
}

// SegmentPreview is one smart-cut segment with an optional thumbnail
type SegmentPreview struct {
	Source    string           `json:"source"`
	Segment   timeline.Segment `json:"segment"`
	Thumbnail string           `json:"thumbnail,omitempty"`
}

// SegmentsPreview is the smart-cut outcome for a set of videos
type SegmentsPreview struct {
	Segments []SegmentPreview `json:"segments"`
	Total    float64          `json:"total"`
	Skipped  []string         `json:"skipped,omitempty"`
}

// Segments runs the smart cut over the video inputs without rendering.
// When thumbsDir is set a thumbnail of every segment's midpoint is written there.
func (p *Pipeline) Segments(ctx context.Context, req Pass1Request, thumbsDir string) (*SegmentsPreview, error) {
	const op = "segments"
	plan, err := p.planPass1(req)
	if err != nil {
		return nil, err
	}

	var paths []string
	var durations []float64
	for i, in := range plan.inputs {
		if plan.kinds[i] != media.KindVideo {
			continue
		}
		info, err := p.ffmpeg.Probe(ctx, in.Path)
		if err != nil {
			return nil, renderError(op, err)
		}
		paths = append(paths, in.Path)
		durations = append(durations, info.Seconds())
	}
	if len(paths) == 0 {
		return nil, validationError(op, "no video inputs")
	}

	cut, err := timeline.SmartCut(durations, plan.target, timeline.CutOptions{
		MinSeg: p.cfg.Timeline.MinSegment,
		MaxSeg: p.cfg.Timeline.MaxSegment,
		Floor:  p.cfg.Timeline.MinSource,
	}, plan.rng)
	out := &SegmentsPreview{}
	if cut != nil {
		for _, idx := range cut.Skipped {
			out.Skipped = append(out.Skipped, paths[idx])
		}
	}
	if err != nil {
		return out, &Error{Kind: KindValidation, Op: op, Err: err}
	}
	out.Total = cut.Total

	if thumbsDir != "" {
		if err := util.EnsureDir(thumbsDir); err != nil {
			return nil, renderError(op, err)
		}
	}
	for i, seg := range cut.Segments {
		sp := SegmentPreview{Source: paths[seg.SourceIndex], Segment: seg}
		if thumbsDir != "" {
			thumb := filepath.Join(thumbsDir, fmt.Sprintf("seg_%02d.jpg", i+1))
			if err := p.ffmpeg.Thumbnail(ctx, sp.Source, seg.Mid(), thumb); err != nil {
				p.logger.Warn().Err(err).Int("segment", i+1).Msg("thumbnail failed")
			} else {
				sp.Thumbnail = thumb
			}
		}
		out.Segments = append(out.Segments, sp)
	}
	return out, nil
}
