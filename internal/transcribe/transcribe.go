// Package transcribe runs speech-to-text on finished recordings. The
// whisper command line tool is treated as an opaque long-running worker:
// it gets a closed audio file, reports progress, and can be cancelled
// through the context.
package transcribe

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SupportedLanguages lists the languages offered for transcription, in
// whisper's expected spelling. An empty language means auto-detect.
var SupportedLanguages = []string{"German", "English", "French", "Spanish", "Italian"}

// AvailableModels lists the whisper model sizes.
var AvailableModels = []string{"tiny", "base", "small", "medium", "large"}

// Options configures one transcription run.
type Options struct {
	Model    string
	Language string // one of SupportedLanguages, "" for auto-detect
	// OutputDir receives the .txt transcript; empty means next to the
	// audio file.
	OutputDir string
}

// ProgressFunc receives integer percentages in [0,100].
type ProgressFunc func(percent int)

type Transcriber struct {
	bin string
	log zerolog.Logger
}

// New returns a transcriber using the whisper binary on PATH.
func New(log zerolog.Logger) *Transcriber {
	return &Transcriber{bin: "whisper", log: log}
}

// Installed reports whether the whisper tool is available.
func (t *Transcriber) Installed() bool {
	_, err := exec.LookPath(t.bin)
	return err == nil
}

// Transcribe runs whisper on audioPath and returns the transcript path.
// Progress is derived from the segment end timestamps whisper prints,
// measured against the audio duration. Cancelling ctx kills the worker.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string, opts Options, onProgress ProgressFunc) (string, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return "", fmt.Errorf("audio file not found: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "small"
	}
	outDir := opts.OutputDir
	if outDir == "" {
		outDir = filepath.Dir(audioPath)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	args := []string{
		audioPath,
		"--model", model,
		"--output_format", "txt",
		"--output_dir", outDir,
	}
	if opts.Language != "" {
		args = append(args, "--language", opts.Language)
	}

	total, err := audioDuration(audioPath)
	if err != nil {
		// Progress degrades to start/done without a known duration.
		t.log.Warn().Err(err).Str("path", audioPath).Msg("Could not determine audio duration")
	}

	cmd := exec.CommandContext(ctx, t.bin, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("create stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout // whisper logs progress lines on both

	t.log.Info().Str("path", audioPath).Str("model", model).Msg("Transcription started")
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("start whisper: %w", err)
	}

	reportSegments(stdout, total, onProgress)

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("whisper failed: %w", err)
	}
	if onProgress != nil {
		onProgress(100)
	}

	stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	outPath := filepath.Join(outDir, stem+".txt")
	if _, err := os.Stat(outPath); err != nil {
		return "", fmt.Errorf("whisper produced no transcript: %w", err)
	}
	t.log.Info().Str("path", outPath).Msg("Transcription finished")
	return outPath, nil
}

// reportSegments scans worker output for segment timestamps and converts
// the latest end time into a percentage of the total duration.
func reportSegments(r io.Reader, total time.Duration, onProgress ProgressFunc) {
	scanner := bufio.NewScanner(r)
	last := -1
	for scanner.Scan() {
		if onProgress == nil || total <= 0 {
			continue
		}
		end, ok := segmentEnd(scanner.Text())
		if !ok {
			continue
		}
		percent := int(end * 100 / total)
		if percent > 100 {
			percent = 100
		}
		if percent != last {
			last = percent
			onProgress(percent)
		}
	}
}
