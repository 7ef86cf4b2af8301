package ffmpeg

import (
	"io"
	"time"
)

// MediaInfo contains metadata about a video, image or audio file
type MediaInfo struct {
	FilePath   string
	Duration   time.Duration
	Width      int
	Height     int
	FPS        float64
	Bitrate    int64
	Rotation   int
	HasVideo   bool
	VideoCodec string
	HasAudio   bool
	AudioCodec string
	SampleRate int
}

// Seconds returns the duration in seconds
func (m *MediaInfo) Seconds() float64 {
	return m.Duration.Seconds()
}

// DisplaySize returns width and height after applying the rotation tag
func (m *MediaInfo) DisplaySize() (int, int) {
	switch ((m.Rotation % 360) + 360) % 360 {
	case 90, 270:
		return m.Height, m.Width
	default:
		return m.Width, m.Height
	}
}

// Progress represents ffmpeg progress data
type Progress struct {
	Frame int
	FPS   float64
	Time  string
	Speed string
}

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args            []string
	ProgressHandler func(*Progress)
	LogHandler      func(line string)
	// Stdin is fed to the process when set
	Stdin io.Reader
	// Stdout receives raw process output instead of line logging when set
	Stdout io.Writer
}

// Default encoding settings
const (
	DefaultCRF        = 23
	DefaultPreset     = "medium"
	DefaultVideoCodec = "libx264"
	DefaultAudioCodec = "aac"
	DefaultPixFmt     = "yuv420p"
	DefaultFPS        = 24.0
	DefaultSampleRate = 48000
	DefaultChannels   = 2
	CompressWidth     = 720
	CompressCRF       = 22
	ThumbnailWidth    = 240
	rawPixFmt         = "rgba"
	rawAudioFormat    = "f32le"
	bytesPerPixel     = 4
)

// ProgressFunc is a callback for progress updates during ffmpeg operations.
// Called periodically with progress information as the operation executes.
type ProgressFunc func(*Progress)
