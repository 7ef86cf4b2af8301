package pipeline

import (
	"github.com/keagan/promoreel/internal/overlays"
	"github.com/keagan/promoreel/internal/store"
)

// Input is one source file
type Input struct {
	Path string `json:"path" jsonschema:"required"`
	// Kind is inferred from the extension when empty
	Kind string `json:"kind,omitempty" jsonschema:"enum=video,enum=photo"`
}

// Pass1Request builds the base track
type Pass1Request struct {
	Inputs         []Input `json:"inputs" jsonschema:"required,minItems=1"`
	TargetDuration float64 `json:"target_duration,omitempty" jsonschema:"minimum=15,maximum=60,default=30"`
	Transition     string  `json:"transition,omitempty" jsonschema:"enum=crossfade,enum=fadeToBlack,enum=none"`
	Fade           float64 `json:"fade,omitempty" jsonschema:"minimum=0.2,maximum=1.5,default=0.5"`
	Resolution     string  `json:"resolution,omitempty" jsonschema:"enum=360p,enum=720p,enum=1080p,enum=original"`
	Logo           string  `json:"logo,omitempty"`
	// Seed shuffles the candidate segments; 0 keeps source order
	Seed int64 `json:"seed,omitempty"`

	Progress ProgressFunc `json:"-"`
}

// GradeOptions overrides the configured color grade
type GradeOptions struct {
	Enabled    bool    `json:"enabled"`
	Brightness float64 `json:"brightness,omitempty" jsonschema:"minimum=0,maximum=3"`
	Contrast   float64 `json:"contrast,omitempty" jsonschema:"minimum=0,maximum=3"`
	Saturation float64 `json:"saturation,omitempty" jsonschema:"minimum=0,maximum=3"`
	Sharpness  float64 `json:"sharpness,omitempty" jsonschema:"minimum=0,maximum=3"`
}

// Pass2Request composites captions, CTA, grade and audio over a Pass 1 artifact
type Pass2Request struct {
	// Artifact is an artifact ID or the path of a Pass 1 video
	Artifact     string        `json:"artifact,omitempty"`
	Description  string        `json:"description"`
	CaptionCount int           `json:"caption_count,omitempty" jsonschema:"minimum=1,maximum=5,default=3"`
	Palette      []string      `json:"palette,omitempty" jsonschema:"maxItems=4"`
	Align        string        `json:"align,omitempty" jsonschema:"enum=center,enum=left,enum=right"`
	CTA          overlays.CTA  `json:"cta"`
	CTADuration  float64       `json:"cta_duration,omitempty" jsonschema:"minimum=2,maximum=8,default=4"`
	Grade        *GradeOptions `json:"grade,omitempty"`
	BGM          string        `json:"bgm,omitempty"`
	BGMVolume    *float64      `json:"bgm_volume,omitempty" jsonschema:"minimum=0,maximum=1"`
	OrigVolume   *float64      `json:"original_volume,omitempty" jsonschema:"minimum=0,maximum=1"`
	Logo         string        `json:"logo,omitempty"`
	LogoOverlays *bool         `json:"logo_on_overlays,omitempty"`
	OutputDir    string        `json:"-"`

	Progress ProgressFunc `json:"-"`
}

// ProgressFunc receives frame progress of a pass
type ProgressFunc func(done, total int)

// Pass1Result is the outcome of Pass 1
type Pass1Result struct {
	Artifact *store.Artifact `json:"artifact"`
	Warnings Warnings        `json:"warnings,omitempty"`
}

// Result is the outcome of Pass 2
type Result struct {
	Path     string   `json:"path"`
	Artifact string   `json:"artifact"`
	Captions []string `json:"captions"`
	Duration float64  `json:"duration"`
	Warnings Warnings `json:"warnings,omitempty"`
}
