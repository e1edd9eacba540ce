package whisper

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestNormalizeAudioBuildsMonoPCMCommand(t *testing.T) {
	service := NewService(Config{})
	var gotName string
	var gotArgs []string
	service.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		return nil
	})

	if err := service.NormalizeAudio(context.Background(), "/tmp/in.mp4", "/tmp/out.wav"); err != nil {
		t.Fatalf("NormalizeAudio: %v", err)
	}
	if gotName != DefaultFFmpegCommand {
		t.Fatalf("command = %q, want %q", gotName, DefaultFFmpegCommand)
	}
	for _, want := range [][]string{
		{"-ac", "1"},
		{"-ar", "16000"},
		{"-c:a", "pcm_s16le"},
	} {
		if !containsSequence(gotArgs, want) {
			t.Errorf("args %v missing %v", gotArgs, want)
		}
	}
	if gotArgs[len(gotArgs)-1] != "/tmp/out.wav" {
		t.Errorf("last arg = %q, want output path", gotArgs[len(gotArgs)-1])
	}
}

func TestTranscribeFileReadsSegmentedOutput(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "clip.wav")
	if err := os.WriteFile(source, []byte("wav"), 0o644); err != nil {
		t.Fatal(err)
	}

	service := NewService(Config{Model: "small"})
	var gotArgs []string
	service.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		if name != DefaultWhisperCommand {
			t.Fatalf("command = %q, want %q", name, DefaultWhisperCommand)
		}
		gotArgs = args
		payload := `{"text":" hello world ","segments":[{"text":" hello","start":0,"end":1.2},{"text":"world ","start":1.2,"end":2}]}`
		return os.WriteFile(filepath.Join(dir, "clip.json"), []byte(payload), 0o644)
	})

	text, err := service.TranscribeFile(context.Background(), source, dir, "zh")
	if err != nil {
		t.Fatalf("TranscribeFile: %v", err)
	}
	if text != "hello world" {
		t.Errorf("text = %q, want %q", text, "hello world")
	}
	if !containsSequence(gotArgs, []string{"--model", "small"}) {
		t.Errorf("args %v missing model flag", gotArgs)
	}
	if !containsSequence(gotArgs, []string{"--language", "zh"}) {
		t.Errorf("args %v missing language flag", gotArgs)
	}
}

func TestTranscribeFileFallsBackToTopLevelText(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "clip.wav")

	service := NewService(Config{})
	service.WithCommandRunner(func(_ context.Context, _ string, _ ...string) error {
		return os.WriteFile(filepath.Join(dir, "clip.json"), []byte(`{"text":"  plain text  ","segments":[]}`), 0o644)
	})

	text, err := service.TranscribeFile(context.Background(), source, dir, "")
	if err != nil {
		t.Fatalf("TranscribeFile: %v", err)
	}
	if text != "plain text" {
		t.Errorf("text = %q, want %q", text, "plain text")
	}
}

func TestTranscribeFileOmitsLanguageWhenEmpty(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "clip.wav")

	service := NewService(Config{})
	service.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		if slices.Contains(args, "--language") {
			t.Errorf("args %v should not carry language flag", args)
		}
		return os.WriteFile(filepath.Join(dir, "clip.json"), []byte(`{"text":"ok"}`), 0o644)
	})

	if _, err := service.TranscribeFile(context.Background(), source, dir, ""); err != nil {
		t.Fatalf("TranscribeFile: %v", err)
	}
}

func containsSequence(haystack, needle []string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if slices.Equal(haystack[i:i+len(needle)], needle) {
			return true
		}
	}
	return false
}
