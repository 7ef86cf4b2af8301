package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatSeconds converts seconds to an ffmpeg timestamp (HH:MM:SS.mmm)
func FormatSeconds(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	hours := int(sec / 3600)
	minutes := int((sec - float64(hours*3600)) / 60)
	secs := sec - float64(hours*3600) - float64(minutes*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", hours, minutes, secs)
}

// FormatArg formats seconds as a plain ffmpeg numeric argument (e.g. "4.25")
func FormatArg(sec float64) string {
	return strconv.FormatFloat(math.Round(sec*1000)/1000, 'f', -1, 64)
}

// ParseFrameRate parses frame rate from ffprobe format (e.g., "30000/1001")
func ParseFrameRate(s string) float64 {
	parts := strings.Split(s, "/")
	if len(parts) == 1 {
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0
		}
		return v
	}
	if len(parts) != 2 {
		return 0
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}
