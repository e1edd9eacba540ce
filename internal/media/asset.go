package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Asset is a fetched media artifact held on local disk for the duration of a
// single resolution. SourceURL records the remote location the bytes came
// from so providers that accept media by reference can reuse it.
type Asset struct {
	Path            string
	SourceURL       string
	MIMEType        string
	SizeBytes       int64
	DurationSeconds float64
}

// IsVideo reports whether the asset looks like a video container rather than
// a bare audio stream, judged by MIME type first and extension as fallback.
func (a Asset) IsVideo() bool {
	if strings.HasPrefix(a.MIMEType, "video/") {
		return true
	}
	if strings.HasPrefix(a.MIMEType, "audio/") {
		return false
	}
	switch strings.ToLower(filepath.Ext(a.Path)) {
	case ".mp4", ".mov", ".avi", ".webm", ".mkv":
		return true
	}
	return false
}

// Scratch is the temporary directory owning one resolution's media assets.
// It is created once per resolution and removed when the resolution reaches
// its terminal state, on every exit path.
type Scratch struct {
	dir string
}

// NewScratch creates a scratch directory for the given resolution ID under
// baseDir.
func NewScratch(baseDir, resolutionID string) (*Scratch, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("scratch: base directory required")
	}
	dir := filepath.Join(baseDir, resolutionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("scratch: create %s: %w", dir, err)
	}
	return &Scratch{dir: dir}, nil
}

// Dir returns the scratch directory path.
func (s *Scratch) Dir() string {
	if s == nil {
		return ""
	}
	return s.dir
}

// Path joins name onto the scratch directory.
func (s *Scratch) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Close removes the scratch directory and everything inside it.
func (s *Scratch) Close() error {
	if s == nil || s.dir == "" {
		return nil
	}
	err := os.RemoveAll(s.dir)
	s.dir = ""
	return err
}
