package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"mediascan/internal/fingerprint"
	"mediascan/internal/logging"
	"mediascan/internal/mediatypes"
	"mediascan/internal/metrics"
)

// defaultVideoDuration is assumed when the duration probe fails, so frame
// sampling still produces timestamps strictly inside the clip.
const defaultVideoDuration = 10.0

// Video extracts metadata for a video file. Size and timestamps come from
// the filesystem; width and height come from probing the first video
// stream. Probe failures (missing tool, timeout, malformed output) leave
// the dimensions unset and the extraction still succeeds. Only a digest
// is computed, videos carry no perceptual fingerprint.
func (e *Extractor) Video(ctx context.Context, path string) (*Metadata, error) {
	meta, err := statMetadata(path, mediatypes.KindVideo)
	if err != nil {
		return nil, err
	}

	if width, height, err := e.probeDimensions(ctx, path); err != nil {
		logging.Warn("ffprobe failed for %s: %v", path, err)
	} else {
		meta.Width = width
		meta.Height = height
	}

	digest, err := fingerprint.Digest(path)
	if err != nil {
		return nil, err
	}
	meta.Digest = digest

	return meta, nil
}

type probeStream struct {
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
}

// probeDimensions returns the width and height of the first video stream.
func (e *Extractor) probeDimensions(ctx context.Context, path string) (int, int, error) {
	out, err := e.runTool(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		path,
	)
	if err != nil {
		return 0, 0, err
	}

	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return 0, 0, fmt.Errorf("malformed ffprobe output: %w", err)
	}

	for _, stream := range probe.Streams {
		if stream.CodecType == "video" {
			return stream.Width, stream.Height, nil
		}
	}
	return 0, 0, errors.New("no video stream found")
}

// probeDuration returns the clip duration in seconds, falling back to
// defaultVideoDuration when the probe fails in any way.
func (e *Extractor) probeDuration(ctx context.Context, path string) float64 {
	out, err := e.runTool(ctx, "ffprobe",
		"-v", "quiet",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		logging.Warn("duration probe failed for %s: %v", path, err)
		return defaultVideoDuration
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil || duration <= 0 {
		logging.Warn("unusable duration %q for %s", strings.TrimSpace(string(out)), path)
		return defaultVideoDuration
	}
	return duration
}

// SampleFrames extracts n frames at evenly spaced timestamps strictly
// inside (0, duration) into temporary JPEG files, returned in timestamp
// order. A frame whose output is empty is discarded and its temp file
// removed immediately. Every temp file not part of the returned slice is
// removed before SampleFrames returns, including on tool failure or
// timeout. One frame's failure does not abort the remaining frames.
//
// The caller owns the returned files and must remove them when done.
func (e *Extractor) SampleFrames(ctx context.Context, path string, n int) (frames []string, err error) {
	if n <= 0 {
		return nil, nil
	}

	var created []string
	defer func() {
		kept := make(map[string]bool, len(frames))
		for _, f := range frames {
			kept[f] = true
		}
		for _, tmp := range created {
			if kept[tmp] {
				continue
			}
			if rmErr := os.Remove(tmp); rmErr != nil && !os.IsNotExist(rmErr) {
				logging.Warn("failed to remove temp frame %s: %v", tmp, rmErr)
			}
		}
	}()

	duration := e.probeDuration(ctx, path)

	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			return frames, ctx.Err()
		}

		timestamp := duration * float64(i+1) / float64(n+1)

		tmp, tmpErr := os.CreateTemp("", "mediascan-frame-*.jpg")
		if tmpErr != nil {
			return frames, fmt.Errorf("failed to create temp frame file: %w", tmpErr)
		}
		if closeErr := tmp.Close(); closeErr != nil {
			logging.Warn("failed to close temp frame file %s: %v", tmp.Name(), closeErr)
		}
		created = append(created, tmp.Name())

		if _, toolErr := e.runTool(ctx, "ffmpeg",
			"-ss", strconv.FormatFloat(timestamp, 'f', 2, 64),
			"-i", path,
			"-vframes", "1",
			"-y",
			"-q:v", "2",
			tmp.Name(),
		); toolErr != nil {
			logging.Warn("frame extraction at %.2fs failed for %s: %v", timestamp, path, toolErr)
			continue
		}

		info, statErr := os.Stat(tmp.Name())
		if statErr != nil || info.Size() == 0 {
			// Empty output: ffmpeg exited zero but wrote nothing usable.
			if rmErr := os.Remove(tmp.Name()); rmErr != nil && !os.IsNotExist(rmErr) {
				logging.Warn("failed to remove empty frame %s: %v", tmp.Name(), rmErr)
			}
			continue
		}

		frames = append(frames, tmp.Name())
	}

	return frames, nil
}

// runTool invokes an external binary with a per-invocation timeout and
// records tool metrics. Timeouts and non-zero exits come back as errors
// for the caller to degrade on.
func (e *Extractor) runTool(ctx context.Context, tool string, args ...string) ([]byte, error) {
	toolCtx, cancel := context.WithTimeout(ctx, e.toolTimeout)
	defer cancel()

	cmd := exec.CommandContext(toolCtx, tool, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	metrics.ToolDuration.WithLabelValues(tool).Observe(time.Since(start).Seconds())

	switch {
	case runErr == nil:
		metrics.ToolInvocations.WithLabelValues(tool, "ok").Inc()
		return stdout.Bytes(), nil
	case errors.Is(toolCtx.Err(), context.DeadlineExceeded):
		metrics.ToolInvocations.WithLabelValues(tool, "timeout").Inc()
		return nil, fmt.Errorf("%s timed out after %v", tool, e.toolTimeout)
	default:
		metrics.ToolInvocations.WithLabelValues(tool, "error").Inc()
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", tool, runErr, msg)
		}
		return nil, fmt.Errorf("%s: %w", tool, runErr)
	}
}
