package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Duration   string `json:"duration"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	PixFmt     string `json:"pix_fmt"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return Parse(output)
}

// Parse decodes raw ffprobe JSON output.
func Parse(output []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// VideoStreamCount returns the number of video streams discovered.
func (r Result) VideoStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			count++
		}
	}
	return count
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			count++
		}
	}
	return count
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
// Falls back to the longest stream duration when the container omits one.
func (r Result) DurationSeconds() float64 {
	if parsed, ok := parseFloat(r.Format.Duration); ok {
		return parsed
	}
	longest := 0.0
	for _, stream := range r.Streams {
		if parsed, ok := parseFloat(stream.Duration); ok && parsed > longest {
			longest = parsed
		}
	}
	return longest
}

// SampleRate returns the sample rate of the first audio stream, or 0 when absent.
func (r Result) SampleRate() int {
	for _, stream := range r.Streams {
		if !strings.EqualFold(stream.CodecType, "audio") {
			continue
		}
		if rate, err := strconv.Atoi(strings.TrimSpace(stream.SampleRate)); err == nil {
			return rate
		}
	}
	return 0
}

// HasAlpha reports whether the first video stream uses a pixel format with an
// alpha channel, which overlay images need to avoid rectangular borders.
func (r Result) HasAlpha() bool {
	for _, stream := range r.Streams {
		if !strings.EqualFold(stream.CodecType, "video") {
			continue
		}
		return containsAlphaFormat(strings.ToLower(stream.PixFmt))
	}
	return false
}

func containsAlphaFormat(pix string) bool {
	switch {
	case strings.HasPrefix(pix, "yuva"),
		strings.HasPrefix(pix, "rgba"),
		strings.HasPrefix(pix, "bgra"),
		strings.HasPrefix(pix, "argb"),
		strings.HasPrefix(pix, "abgr"),
		strings.HasPrefix(pix, "gbrap"),
		strings.HasPrefix(pix, "ya"),
		pix == "pal8":
		return true
	default:
		return false
	}
}

// SizeBytes returns the reported container size in bytes, or 0 when unavailable.
func (r Result) SizeBytes() int64 {
	if parsed, ok := parseFloat(r.Format.Size); ok && parsed > 0 {
		return int64(parsed)
	}
	return 0
}

func parseFloat(value string) (float64, bool) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}
