package locator

import (
	"sort"
	"strings"
)

// ResultKind discriminates the three locate outcomes.
type ResultKind string

const (
	KindSubtitles ResultKind = "subtitles"
	KindDownload  ResultKind = "download"
	KindNotFound  ResultKind = "not_found"
)

// Cue is a single native subtitle line with its start offset.
type Cue struct {
	StartMS int64
	Text    string
}

// Result is the locate outcome. Subtitles and a download URL are never both
// populated; native subtitles win when the platform supplies them.
type Result struct {
	Kind            ResultKind
	Cues            []Cue
	DownloadURL     string
	Title           string
	Author          string
	DurationSeconds float64
}

// SortCues orders cues by start time ascending, stable so equal start times
// keep their payload order.
func SortCues(cues []Cue) {
	sort.SliceStable(cues, func(i, j int) bool {
		return cues[i].StartMS < cues[j].StartMS
	})
}

// JoinCues flattens an ordered cue list into transcript text, one cue per
// line, dropping empty lines.
func JoinCues(cues []Cue) string {
	lines := make([]string, 0, len(cues))
	for _, cue := range cues {
		if text := strings.TrimSpace(cue.Text); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n")
}
