// Package deps reports the availability of external binaries the local
// transcription backend shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"vidscribe/internal/config"
)

// Requirement defines an external dependency vidscribe relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// ForConfig derives the binary requirements implied by the configuration.
// Only the local whisper backend shells out; vendor backends are pure HTTP.
func ForConfig(cfg *config.Config) []Requirement {
	if !cfg.Providers.Whisper.Enabled {
		return nil
	}
	return []Requirement{
		{
			Name:        "ffmpeg",
			Command:     cfg.Providers.Whisper.FFmpegBinary,
			Description: "normalizes fetched media to mono 16 kHz WAV",
		},
		{
			Name:        "whisper",
			Command:     cfg.Providers.Whisper.WhisperBinary,
			Description: "local speech-to-text CLI",
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of unavailable non-optional dependencies.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
