package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/conversiontraffic/record-and-transcribe/internal/audio"
	"github.com/conversiontraffic/record-and-transcribe/internal/capture"
	"github.com/conversiontraffic/record-and-transcribe/internal/config"
	"github.com/conversiontraffic/record-and-transcribe/internal/logging"
	"github.com/conversiontraffic/record-and-transcribe/internal/media"
	"github.com/conversiontraffic/record-and-transcribe/internal/transcribe"
	"github.com/conversiontraffic/record-and-transcribe/internal/update"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
)

var (
	cfg *config.Config
	log zerolog.Logger
)

func main() {
	root := &cobra.Command{
		Use:     "record-transcribe",
		Short:   "Record microphone and system audio, optionally transcribe it",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log = logging.NewWithLevel(cfg.LogLevel)
			return nil
		},
	}

	root.AddCommand(devicesCmd(), recordCmd(), monitorCmd(), transcribeCmd(), updateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func devicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List input and loopback devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := audio.NewHost()
			if err != nil {
				return err
			}
			defer host.Close()

			inputs, err := audio.ListInputDevices(host)
			if err != nil {
				log.Error().Err(err).Msg("Device enumeration failed")
			}
			fmt.Println("Input devices (microphones):")
			for _, d := range inputs {
				fmt.Printf("  [%d] %s (%d ch)\n", d.Index, d.Name, d.Channels)
			}

			loopbacks, err := audio.ListLoopbackDevices(host)
			if err != nil {
				log.Error().Err(err).Msg("Device enumeration failed")
			}
			fmt.Println("\nLoopback devices (system audio):")
			for _, d := range loopbacks {
				fmt.Printf("  [%d] %s (%d ch)\n", d.Index, d.Name, d.Channels)
			}
			return nil
		},
	}
}

func recordCmd() *cobra.Command {
	var (
		micIndex  int
		loopIndex int
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record until interrupted, then optionally transcribe",
		RunE: func(cmd *cobra.Command, args []string) error {
			if micIndex < 0 && loopIndex < 0 {
				return fmt.Errorf("select at least one device (see 'record-transcribe devices')")
			}
			if outputDir == "" {
				outputDir = cfg.OutputDir
			}

			host, err := audio.NewHost()
			if err != nil {
				return err
			}
			defer host.Close()

			mic, err := pickDevice(host, audio.ListInputDevices, micIndex)
			if err != nil {
				return err
			}
			loopback, err := pickDevice(host, audio.ListLoopbackDevices, loopIndex)
			if err != nil {
				return err
			}

			session := capture.New(host, log)
			path, err := session.StartRecording(mic, loopback, outputDir)
			if err != nil {
				return err
			}
			fmt.Printf("Recording to %s (Ctrl+C to stop)\n", path)

			// Remember the selection for next time.
			if mic != nil {
				cfg.MicDevice = mic.Name
			}
			if loopback != nil {
				cfg.LoopbackDevice = loopback.Name
			}
			if err := cfg.Save(); err != nil {
				log.Warn().Err(err).Msg("Failed to save config")
			}

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()

		Loop:
			for {
				select {
				case <-sigChan:
					break Loop
				case <-ticker.C:
					micLevel, loopLevel := session.Levels()
					fmt.Printf("\r%s  mic %3d  system %3d", formatDuration(session.Duration()), micLevel, loopLevel)
				}
			}
			fmt.Println()

			path, ok := session.StopRecording()
			if !ok {
				return fmt.Errorf("no recording was active")
			}
			fmt.Printf("Saved %s\n", path)
			notify("Recording saved", filepath.Base(path))

			if cfg.AutoTranscribe {
				if err := runTranscription(cmd.Context(), path, cfg.Language, cfg.Model, "", false); err != nil {
					return err
				}
			}
			if cfg.ConvertMP3 {
				mp3, err := media.ConvertToMP3(cmd.Context(), path, cfg.DeleteWAV)
				if err != nil {
					return err
				}
				fmt.Printf("Converted to %s\n", mp3)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&micIndex, "mic", -1, "microphone device index (-1 for none)")
	cmd.Flags().IntVar(&loopIndex, "loopback", -1, "loopback device index (-1 for none)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default from config)")
	return cmd
}

func monitorCmd() *cobra.Command {
	var (
		micIndex  int
		loopIndex int
	)

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Show live input levels without recording",
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := audio.NewHost()
			if err != nil {
				return err
			}
			defer host.Close()

			mic, err := pickDevice(host, audio.ListInputDevices, micIndex)
			if err != nil {
				return err
			}
			loopback, err := pickDevice(host, audio.ListLoopbackDevices, loopIndex)
			if err != nil {
				return err
			}

			session := capture.New(host, log)
			session.StartPreview(mic, loopback)
			defer session.StopPreview()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			ticker := time.NewTicker(200 * time.Millisecond)
			defer ticker.Stop()

			for {
				select {
				case <-sigChan:
					fmt.Println()
					return nil
				case <-ticker.C:
					micLevel, loopLevel := session.Levels()
					fmt.Printf("\rmic %3d  system %3d", micLevel, loopLevel)
				}
			}
		},
	}

	cmd.Flags().IntVar(&micIndex, "mic", -1, "microphone device index (-1 for none)")
	cmd.Flags().IntVar(&loopIndex, "loopback", -1, "loopback device index (-1 for none)")
	return cmd
}

func transcribeCmd() *cobra.Command {
	var (
		language  string
		model     string
		outputDir string
		toClip    bool
	)

	cmd := &cobra.Command{
		Use:   "transcribe <audio-or-video-file>",
		Short: "Transcribe a recording with whisper",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if language == "" {
				language = cfg.Language
			}
			if model == "" {
				model = cfg.Model
			}
			return runTranscription(cmd.Context(), args[0], language, model, outputDir, toClip)
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "audio language (default from config, empty for auto)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "whisper model: "+strings.Join(transcribe.AvailableModels, ", "))
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "transcript directory (default next to the audio file)")
	cmd.Flags().BoolVar(&toClip, "clipboard", false, "copy the transcript to the clipboard")
	return cmd
}

func updateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Check for a newer release",
		RunE: func(cmd *cobra.Command, args []string) error {
			rel, err := update.Check(cmd.Context(), Version, log)
			if err != nil {
				return err
			}
			if rel == nil {
				fmt.Println("Up to date.")
				return nil
			}
			fmt.Printf("Downloading %s %s...\n", rel.AssetName, rel.Version)
			path, err := update.Download(cmd.Context(), rel, func(p int) {
				fmt.Printf("\r%3d%%", p)
			})
			if err != nil {
				return err
			}
			fmt.Printf("\nInstaller saved to %s\n", path)
			return nil
		},
	}
}

// runTranscription handles video extraction, the whisper worker and the
// post-run conveniences (clipboard, notification).
func runTranscription(ctx context.Context, path, language, model, outputDir string, toClip bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Cancel the worker on Ctrl+C rather than orphaning it.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if isVideo(path) {
		fmt.Println("Extracting audio track...")
		extracted, err := media.ExtractAudio(ctx, path, "wav")
		if err != nil {
			return err
		}
		defer os.Remove(extracted)
		path = extracted
	}

	tr := transcribe.New(log)
	if !tr.Installed() {
		return fmt.Errorf("whisper not found on PATH (install with: pip install -U openai-whisper)")
	}

	out, err := tr.Transcribe(ctx, path, transcribe.Options{
		Model:     model,
		Language:  language,
		OutputDir: outputDir,
	}, func(p int) {
		fmt.Printf("\rTranscribing... %3d%%", p)
	})
	fmt.Println()
	if err != nil {
		return err
	}
	fmt.Printf("Transcript saved to %s\n", out)
	notify("Transcription finished", filepath.Base(out))

	if toClip {
		text, err := os.ReadFile(out)
		if err != nil {
			return err
		}
		if err := clipboard.WriteAll(string(text)); err != nil {
			log.Warn().Err(err).Msg("Clipboard unavailable")
		}
	}
	return nil
}

// pickDevice resolves a catalog index chosen by the user to its device
// descriptor. index -1 means the source is not requested.
func pickDevice(host audio.Host, list func(audio.Host) ([]audio.Device, error), index int) (*audio.Device, error) {
	if index < 0 {
		return nil, nil
	}
	devs, err := list(host)
	if err != nil {
		return nil, err
	}
	for _, d := range devs {
		if d.Index == index {
			return &d, nil
		}
	}
	return nil, fmt.Errorf("no device with index %d", index)
}

func notify(title, body string) {
	if cfg == nil || !cfg.Notifications {
		return
	}
	if err := beeep.Notify(title, body, ""); err != nil {
		log.Debug().Err(err).Msg("Notification failed")
	}
}

func isVideo(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".mkv", ".avi", ".mov", ".webm":
		return true
	}
	return false
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}
