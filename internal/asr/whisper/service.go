// Package whisper implements the local offline ASR backend. Media is first
// normalized to a mono 16kHz WAV with ffmpeg, then transcribed by the whisper
// CLI, whose JSON output supplies the transcript text. No network is
// involved and no usage metric exists, so cost is always reported as zero.
package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Command names for external tools.
const (
	DefaultWhisperCommand = "whisper"
	DefaultFFmpegCommand  = "ffmpeg"
	DefaultModel          = "base"
)

// Config captures runtime settings for whisper operations.
type Config struct {
	// Model is the whisper model to use (e.g. "base", "small").
	Model string
	// WhisperBinary overrides the whisper CLI path.
	WhisperBinary string
	// FFmpegBinary overrides the ffmpeg path.
	FFmpegBinary string
}

// Service runs the local transcription toolchain.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a whisper service with the given configuration.
func NewService(cfg Config) *Service {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.WhisperBinary == "" {
		cfg.WhisperBinary = DefaultWhisperCommand
	}
	if cfg.FFmpegBinary == "" {
		cfg.FFmpegBinary = DefaultFFmpegCommand
	}
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	return s.cfg.Model
}

// NormalizeAudio re-encodes source into a mono 16kHz WAV at dest, the input
// format the whisper CLI handles best.
func (s *Service) NormalizeAudio(ctx context.Context, source, dest string) error {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
	if err := s.run(ctx, s.cfg.FFmpegBinary, args...); err != nil {
		return fmt.Errorf("ffmpeg normalize: %w", err)
	}
	return nil
}

// TranscribeFile transcribes a normalized WAV file and returns the text.
// outputDir is where the whisper CLI writes its JSON output.
func (s *Service) TranscribeFile(ctx context.Context, source, outputDir, language string) (string, error) {
	if source == "" {
		return "", fmt.Errorf("transcribe: source path required")
	}
	if outputDir == "" {
		outputDir = filepath.Dir(source)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("transcribe: ensure output dir: %w", err)
	}

	args := []string{
		source,
		"--model", s.cfg.Model,
		"--output_format", "json",
		"--output_dir", outputDir,
		"--fp16", "False",
		"--verbose", "False",
	}
	if language != "" {
		args = append(args, "--language", language)
	}
	if err := s.run(ctx, s.cfg.WhisperBinary, args...); err != nil {
		return "", fmt.Errorf("whisper: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return loadTranscriptText(filepath.Join(outputDir, baseName+".json"))
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Segment represents a transcribed segment from whisper JSON output.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type whisperPayload struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

// loadTranscriptText loads and concatenates text from a whisper JSON file.
// Segment text is preferred; the top-level text field is the fallback for
// older CLI versions that omit segments.
func loadTranscriptText(jsonPath string) (string, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return "", fmt.Errorf("read whisper output: %w", err)
	}
	var payload whisperPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("parse whisper json: %w", err)
	}
	var parts []string
	for _, seg := range payload.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return strings.TrimSpace(payload.Text), nil
	}
	return strings.Join(parts, " "), nil
}
