// Package media wraps ffmpeg for the simple container conversions around
// the capture core: WAV to MP3 for storage, and pulling the audio track
// out of a video so it can be transcribed.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const ffmpegBin = "ffmpeg"

// Installed reports whether ffmpeg is available on PATH.
func Installed() bool {
	_, err := exec.LookPath(ffmpegBin)
	return err == nil
}

// ConvertToMP3 encodes wavPath to a 128 kbps MP3 next to it. With
// deleteWAV the source file is removed after a successful conversion.
func ConvertToMP3(ctx context.Context, wavPath string, deleteWAV bool) (string, error) {
	mp3Path := replaceExt(wavPath, ".mp3")

	args := []string{
		"-i", wavPath,
		"-codec:a", "libmp3lame",
		"-b:a", "128k",
		"-y",
		mp3Path,
	}
	if err := run(ctx, args); err != nil {
		return "", err
	}

	if deleteWAV {
		if err := os.Remove(wavPath); err != nil {
			return mp3Path, fmt.Errorf("remove source wav: %w", err)
		}
	}
	return mp3Path, nil
}

// ExtractAudio pulls the audio track out of a video container. format is
// "mp3" or "wav"; wav output matches the recorder's format (44.1 kHz
// stereo s16le) so it can feed straight into transcription.
func ExtractAudio(ctx context.Context, videoPath, format string) (string, error) {
	audioPath := replaceExt(videoPath, "."+format)

	args := []string{"-i", videoPath, "-vn"}
	if format == "mp3" {
		args = append(args, "-acodec", "libmp3lame", "-q:a", "4")
	} else {
		args = append(args, "-acodec", "pcm_s16le", "-ar", "44100", "-ac", "2")
	}
	args = append(args, "-y", audioPath)

	if err := run(ctx, args); err != nil {
		return "", err
	}
	return audioPath, nil
}

func run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, ffmpegBin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg failed: %w: %s", err, lastLine(stderr.String()))
	}
	return nil
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// lastLine trims ffmpeg's banner down to the line that states the error.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
